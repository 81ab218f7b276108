// Package session handles authentication against the storefront backend:
// logging in, keeping the token in an encrypted file store, and restoring
// it on the next run.
package session

import (
	"context"
	"strings"

	"github.com/crmarques/storectl/api"
	"github.com/crmarques/storectl/faults"
	"github.com/crmarques/storectl/resource"
	"github.com/crmarques/storectl/storefront"
)

// Client is the slice of the REST client the manager needs.
type Client interface {
	Get(ctx context.Context, path string, opts *api.RequestOptions) (resource.Value, error)
	Post(ctx context.Context, path string, body any, opts *api.RequestOptions) (resource.Value, error)
	SetSessionToken(token string)
}

// Manager logs in and out of one backend and keeps the token for the
// active context in the store. A nil store keeps the session in memory
// only.
type Manager struct {
	client      Client
	store       *Store
	contextName string
}

func NewManager(client Client, store *Store, contextName string) *Manager {
	return &Manager{
		client:      client,
		store:       store,
		contextName: strings.TrimSpace(contextName),
	}
}

// Login authenticates with the backend, installs the returned token on the
// client, and persists it. The signed-in account is returned.
func (m *Manager) Login(ctx context.Context, email string, password string) (resource.Fields, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, validationError("email is required", nil)
	}
	if password == "" {
		return nil, validationError("password is required", nil)
	}

	value, err := m.client.Post(ctx, storefront.LoginPath, map[string]any{
		"email":    email,
		"password": password,
	}, nil)
	if err != nil {
		return nil, err
	}

	body, err := resource.AsFields(value)
	if err != nil {
		return nil, err
	}

	token, _ := body["token"].(string)
	if strings.TrimSpace(token) == "" {
		return nil, faults.NewTypedError(faults.AuthError, "login response did not include a token", nil)
	}

	user, err := resource.AsFields(body["user"])
	if err != nil {
		user = resource.Fields{}
	}

	m.client.SetSessionToken(token)
	if m.store != nil && m.contextName != "" {
		userEmail, _ := user["email"].(string)
		if userEmail == "" {
			userEmail = email
		}
		if err := m.store.Put(m.contextName, Record{Token: token, Email: userEmail}); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// Logout tells the backend to revoke the session and forgets the stored
// token. The local token is cleared even when the backend call fails.
func (m *Manager) Logout(ctx context.Context) error {
	_, requestErr := m.client.Post(ctx, storefront.LogoutPath, nil, nil)

	m.client.SetSessionToken("")
	if m.store != nil && m.contextName != "" {
		if err := m.store.Delete(m.contextName); err != nil {
			return err
		}
	}

	if requestErr != nil && !faults.IsCategory(requestErr, faults.AuthError) {
		return requestErr
	}
	return nil
}

// Restore installs the stored token for the context, if one exists. It
// reports whether a session was restored.
func (m *Manager) Restore() (bool, error) {
	if m.store == nil || m.contextName == "" {
		return false, nil
	}

	record, err := m.store.Get(m.contextName)
	if err != nil {
		if faults.IsCategory(err, faults.NotFoundError) {
			return false, nil
		}
		return false, err
	}

	m.client.SetSessionToken(record.Token)
	return true, nil
}

// CurrentUser fetches the signed-in account.
func (m *Manager) CurrentUser(ctx context.Context) (resource.Fields, error) {
	value, err := m.client.Get(ctx, storefront.ProfilePath, &api.RequestOptions{
		Extract: storefront.UserEnvelope,
	})
	if err != nil {
		return nil, err
	}
	return resource.AsFields(value)
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
