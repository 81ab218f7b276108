package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultMediaType   = "application/json"

	// DefaultSessionCookie is the httpOnly cookie the backend reads the
	// session token from.
	DefaultSessionCookie = "auth_token"
)

// Config carries the connection settings for one storefront backend.
type Config struct {
	BaseURL        string
	DefaultHeaders map[string]string
	SessionCookie  string
	Timeout        time.Duration
}

// Client issues requests against the storefront REST backend. It normalizes
// resource paths onto the versioned API root, always attaches the session
// cookie when one is set, and converts error payloads into typed errors with
// a uniform user-facing message.
type Client struct {
	baseURL        *url.URL
	defaultHeaders map[string]string
	client         *http.Client
	cookieName     string
	sessionToken   string
	debugf         func(format string, args ...any)
}

type ClientOption func(*Client)

// WithHTTPClient replaces the underlying transport, used by tests and by
// callers that need custom TLS settings.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if c == nil || httpClient == nil {
			return
		}
		c.client = httpClient
	}
}

// WithDebugf installs a request/response trace sink.
func WithDebugf(debugf func(format string, args ...any)) ClientOption {
	return func(c *Client) {
		if c == nil {
			return
		}
		c.debugf = debugf
	}
}

func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	baseURL, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	cookieName := strings.TrimSpace(cfg.SessionCookie)
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}

	client := &Client{
		baseURL:        baseURL,
		defaultHeaders: cloneStringMap(cfg.DefaultHeaders),
		client:         &http.Client{Timeout: timeout},
		cookieName:     cookieName,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(client)
	}
	return client, nil
}

// SetSessionToken installs the session token attached as the auth cookie on
// every subsequent request. An empty token clears the session.
func (c *Client) SetSessionToken(token string) {
	if c == nil {
		return
	}
	c.sessionToken = strings.TrimSpace(token)
}

func (c *Client) SessionToken() string {
	if c == nil {
		return ""
	}
	return c.sessionToken
}

func (c *Client) SessionCookieName() string {
	if c == nil {
		return DefaultSessionCookie
	}
	return c.cookieName
}

func parseBaseURL(raw string) (*url.URL, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, validationError("storefront.base-url is required", nil)
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return nil, validationError("storefront.base-url is invalid", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, validationError("storefront.base-url must use http or https", nil)
	}
	if parsed.Host == "" {
		return nil, validationError("storefront.base-url host is required", nil)
	}

	return parsed, nil
}

func cloneStringMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}

	cloned := make(map[string]string, len(values))
	for key, value := range values {
		cloned[key] = value
	}
	return cloned
}
