package binder

import (
	"context"
	"sync"

	"github.com/crmarques/storectl/api"
	"github.com/crmarques/storectl/extract"
	"github.com/crmarques/storectl/resource"
)

// Updater binds one existing resource: it holds the last server state as a
// baseline, tracks local edits, and saves only the changed keys via PATCH.
// Save and Delete reject overlapping calls so a slow request cannot race a
// second one.
type Updater struct {
	client    Client
	path      string
	keys      []string
	extractor extract.Extractor
	notifier  Notifier
	confirmer Confirmer

	successMessage string
	deletedMessage string

	mutex    sync.Mutex
	current  resource.Fields
	baseline resource.Fields
	loaded   bool
	inFlight bool
}

type UpdaterOption func(*Updater)

// WithKeys restricts editing and saving to the given keys. Without it every
// key of the loaded resource participates.
func WithKeys(keys ...string) UpdaterOption {
	return func(u *Updater) { u.keys = keys }
}

// WithExtractor unwraps an envelope from load and save responses before the
// body replaces the local state.
func WithExtractor(extractor extract.Extractor) UpdaterOption {
	return func(u *Updater) { u.extractor = extractor }
}

func WithNotifier(notifier Notifier) UpdaterOption {
	return func(u *Updater) { u.notifier = notifier }
}

// WithConfirmer gates Delete behind a confirmation prompt. A declined
// prompt aborts silently.
func WithConfirmer(confirmer Confirmer) UpdaterOption {
	return func(u *Updater) { u.confirmer = confirmer }
}

func WithSuccessMessage(message string) UpdaterOption {
	return func(u *Updater) { u.successMessage = message }
}

func WithDeletedMessage(message string) UpdaterOption {
	return func(u *Updater) { u.deletedMessage = message }
}

func NewUpdater(client Client, path string, opts ...UpdaterOption) *Updater {
	updater := &Updater{
		client:         client,
		path:           path,
		successMessage: "Changes saved",
		deletedMessage: "Deleted",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(updater)
		}
	}
	return updater
}

// Load fetches the resource and resets both the local state and the
// baseline to the server copy. A canceled context discards the response so
// a stale fetch cannot overwrite newer state.
func (u *Updater) Load(ctx context.Context) error {
	value, err := u.client.Get(ctx, u.path, u.requestOptions())
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	fields, err := resource.AsFields(value)
	if err != nil {
		return err
	}

	u.mutex.Lock()
	defer u.mutex.Unlock()
	u.current = fields
	u.baseline = fields.Clone()
	u.loaded = true
	return nil
}

// Seed installs an already-fetched server copy without a network call.
func (u *Updater) Seed(fields resource.Fields) {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	u.current = fields.Clone()
	u.baseline = fields.Clone()
	u.loaded = true
}

func (u *Updater) Loaded() bool {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return u.loaded
}

// SetField records a local edit. Keys outside the configured set are
// ignored. The value is normalized so an edit and its decoded baseline
// share the same numeric form.
func (u *Updater) SetField(key string, value resource.Value) {
	if !u.editableKey(key) {
		return
	}
	if normalized, err := resource.Normalize(value); err == nil {
		value = normalized
	}

	u.mutex.Lock()
	defer u.mutex.Unlock()
	if u.current == nil {
		u.current = resource.Fields{}
	}
	u.current[key] = value
}

func (u *Updater) Field(key string) resource.Value {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	if u.current == nil {
		return nil
	}
	return u.current[key]
}

// Data returns a copy of the current local state.
func (u *Updater) Data() resource.Fields {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return u.current.Clone()
}

// DirtyPatch returns the keys whose local value differs from the baseline.
func (u *Updater) DirtyPatch() resource.Patch {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return resource.ShallowDiff(u.current, u.baseline, u.keys)
}

func (u *Updater) IsDirty() bool {
	return len(u.DirtyPatch()) > 0
}

// Save PATCHes the dirty keys. With nothing dirty it reports success
// without a network call. On success the response body, when present,
// becomes the new state and baseline; an empty body keeps the local state
// and advances the baseline to match it. A response body that is not an
// object fails the save and leaves the baseline untouched.
func (u *Updater) Save(ctx context.Context) Result {
	if !u.begin() {
		return Result{Err: operationInFlightError()}
	}
	defer u.end()

	patch := u.DirtyPatch()
	if len(patch) == 0 {
		notifyInfo(u.notifier, "No changes to save")
		return Result{OK: true}
	}

	value, err := u.client.Patch(ctx, u.path, patch, u.requestOptions())
	if err != nil {
		notifyError(u.notifier, err)
		return Result{Err: err}
	}

	u.mutex.Lock()
	if value != nil {
		fields, fieldsErr := resource.AsFields(value)
		if fieldsErr != nil {
			u.mutex.Unlock()
			notifyError(u.notifier, fieldsErr)
			return Result{Err: fieldsErr}
		}
		u.current = fields
		u.baseline = fields.Clone()
	} else {
		u.baseline = u.current.Clone()
	}
	u.mutex.Unlock()

	notifySuccess(u.notifier, u.successMessage)
	return Result{OK: true}
}

// Delete removes the resource, asking the confirmer first when one is
// configured. A declined confirmation aborts without a notice or a network
// call.
func (u *Updater) Delete(ctx context.Context) Result {
	if !u.begin() {
		return Result{Err: operationInFlightError()}
	}
	defer u.end()

	if u.confirmer != nil {
		approved, err := u.confirmer.Confirm("Delete this resource?")
		if err != nil {
			notifyError(u.notifier, err)
			return Result{Err: err}
		}
		if !approved {
			return Result{}
		}
	}

	if err := u.client.Delete(ctx, u.path); err != nil {
		notifyError(u.notifier, err)
		return Result{Err: err}
	}

	notifySuccess(u.notifier, u.deletedMessage)
	return Result{OK: true}
}

// Busy reports whether a save or delete is currently in flight.
func (u *Updater) Busy() bool {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return u.inFlight
}

func (u *Updater) begin() bool {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	if u.inFlight {
		return false
	}
	u.inFlight = true
	return true
}

func (u *Updater) end() {
	u.mutex.Lock()
	u.inFlight = false
	u.mutex.Unlock()
}

func (u *Updater) editableKey(key string) bool {
	if len(u.keys) == 0 {
		return true
	}
	for _, candidate := range u.keys {
		if candidate == key {
			return true
		}
	}
	return false
}

func (u *Updater) requestOptions() *api.RequestOptions {
	if u.extractor == nil {
		return nil
	}
	return &api.RequestOptions{Extract: u.extractor}
}
