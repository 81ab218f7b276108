// Package binder keeps a local copy of a REST resource in sync with the
// backend: load it, edit fields, save only what changed, and surface the
// outcome as notices instead of raised errors.
package binder

import (
	"context"

	"github.com/crmarques/storectl/api"
	"github.com/crmarques/storectl/faults"
	"github.com/crmarques/storectl/resource"
)

// Result reports the outcome of a save, create, or delete. Operations never
// panic; a failure comes back as OK=false with the typed error attached.
type Result struct {
	OK  bool
	Err error
}

// Client is the slice of the REST client the bindings need.
type Client interface {
	Get(ctx context.Context, path string, opts *api.RequestOptions) (resource.Value, error)
	Post(ctx context.Context, path string, body any, opts *api.RequestOptions) (resource.Value, error)
	Patch(ctx context.Context, path string, body any, opts *api.RequestOptions) (resource.Value, error)
	Delete(ctx context.Context, path string) error
}

// Notifier receives user-facing status messages. A nil notifier silences
// them.
type Notifier interface {
	Success(message string) string
	Error(message string) string
	Info(message string) string
}

// Confirmer asks the user to approve a destructive operation.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

func notifySuccess(notifier Notifier, message string) {
	if notifier != nil {
		notifier.Success(message)
	}
}

func notifyError(notifier Notifier, err error) {
	if notifier != nil {
		notifier.Error(faults.UserMessage(err))
	}
}

func notifyInfo(notifier Notifier, message string) {
	if notifier != nil {
		notifier.Info(message)
	}
}
