package binder

import (
	"context"

	"github.com/crmarques/storectl/api"
	"github.com/crmarques/storectl/extract"
	"github.com/crmarques/storectl/resource"
)

// Creator binds a not-yet-existing resource: collect field values locally,
// then POST them to a collection path.
type Creator struct {
	client    Client
	path      string
	keys      []string
	extractor extract.Extractor
	notifier  Notifier

	successMessage string

	fields resource.Fields
}

type CreatorOption func(*Creator)

// WithCreateKeys restricts the POST body to the given keys.
func WithCreateKeys(keys ...string) CreatorOption {
	return func(c *Creator) { c.keys = keys }
}

func WithCreateExtractor(extractor extract.Extractor) CreatorOption {
	return func(c *Creator) { c.extractor = extractor }
}

func WithCreateNotifier(notifier Notifier) CreatorOption {
	return func(c *Creator) { c.notifier = notifier }
}

func WithCreatedMessage(message string) CreatorOption {
	return func(c *Creator) { c.successMessage = message }
}

func NewCreator(client Client, path string, opts ...CreatorOption) *Creator {
	creator := &Creator{
		client:         client,
		path:           path,
		successMessage: "Created",
		fields:         resource.Fields{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(creator)
		}
	}
	return creator
}

func (c *Creator) SetField(key string, value resource.Value) {
	if normalized, err := resource.Normalize(value); err == nil {
		value = normalized
	}
	c.fields[key] = value
}

func (c *Creator) Field(key string) resource.Value {
	return c.fields[key]
}

// Create POSTs the collected fields, restricted to the configured keys, and
// returns the created resource as the server reported it.
func (c *Creator) Create(ctx context.Context) (resource.Fields, Result) {
	body := c.body()
	if len(body) == 0 {
		err := validationError("nothing to create: no fields are set", nil)
		notifyError(c.notifier, err)
		return nil, Result{Err: err}
	}

	value, err := c.client.Post(ctx, c.path, body, c.requestOptions())
	if err != nil {
		notifyError(c.notifier, err)
		return nil, Result{Err: err}
	}

	created, err := resource.AsFields(value)
	if err != nil {
		notifyError(c.notifier, err)
		return nil, Result{Err: err}
	}

	notifySuccess(c.notifier, c.successMessage)
	return created, Result{OK: true}
}

func (c *Creator) body() resource.Fields {
	if len(c.keys) == 0 {
		return c.fields.Clone()
	}

	body := resource.Fields{}
	for _, key := range c.keys {
		if value, ok := c.fields[key]; ok {
			body[key] = value
		}
	}
	return body
}

func (c *Creator) requestOptions() *api.RequestOptions {
	if c.extractor == nil {
		return nil
	}
	return &api.RequestOptions{Extract: c.extractor}
}
