package binder

import (
	"context"
	"sync"
	"time"

	"github.com/crmarques/storectl/api"
	"github.com/crmarques/storectl/extract"
	"github.com/crmarques/storectl/resource"
)

// Validator checks a candidate value before it is saved. A non-nil error
// blocks the save and is surfaced as an error notice.
type Validator func(value resource.Value) error

// Field binds a single key of a resource and autosaves edits: each Set
// applies the value locally right away and schedules a PATCH after the
// debounce window. A failed save rolls the value back to the last server
// copy.
type Field struct {
	client    Client
	path      string
	key       string
	extractor extract.Extractor
	notifier  Notifier
	validate  Validator
	debounce  time.Duration

	successMessage string

	mutex    sync.Mutex
	value    resource.Value
	baseline resource.Value
	timer    *time.Timer
	closed   bool
	lastErr  error
}

type FieldOption func(*Field)

// WithDebounce sets how long after the last edit the save fires. Zero saves
// immediately.
func WithDebounce(debounce time.Duration) FieldOption {
	return func(f *Field) { f.debounce = debounce }
}

func WithValidator(validate Validator) FieldOption {
	return func(f *Field) { f.validate = validate }
}

func WithFieldExtractor(extractor extract.Extractor) FieldOption {
	return func(f *Field) { f.extractor = extractor }
}

func WithFieldNotifier(notifier Notifier) FieldOption {
	return func(f *Field) { f.notifier = notifier }
}

func WithSavedMessage(message string) FieldOption {
	return func(f *Field) { f.successMessage = message }
}

func NewField(client Client, path string, key string, opts ...FieldOption) *Field {
	field := &Field{
		client:         client,
		path:           path,
		key:            key,
		successMessage: "Saved",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(field)
		}
	}
	return field
}

// Seed installs the server copy of the field without triggering a save.
func (f *Field) Seed(value resource.Value) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.value = value
	f.baseline = value
}

func (f *Field) Value() resource.Value {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.value
}

// Err returns the error left by the last rejected or failed edit. A
// subsequent accepted Set or successful save clears it.
func (f *Field) Err() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.lastErr
}

func (f *Field) setErr(err error) {
	f.mutex.Lock()
	f.lastErr = err
	f.mutex.Unlock()
}

// Set applies the value locally and schedules a save. Setting the value the
// server already has cancels any pending save instead. A failing validator
// leaves the current value untouched and records the error, readable via
// Err until an accepted edit or successful save clears it.
func (f *Field) Set(value resource.Value) {
	if f.validate != nil {
		if err := f.validate(value); err != nil {
			f.setErr(err)
			notifyError(f.notifier, err)
			return
		}
	}
	if normalized, err := resource.Normalize(value); err == nil {
		value = normalized
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.closed {
		return
	}
	f.lastErr = nil

	f.value = value
	if resource.ShallowEqual(value, f.baseline) {
		f.stopTimerLocked()
		return
	}

	if f.debounce <= 0 {
		f.stopTimerLocked()
		go f.save()
		return
	}

	f.stopTimerLocked()
	f.timer = time.AfterFunc(f.debounce, f.save)
}

// Flush saves a pending edit immediately instead of waiting for the
// debounce window.
func (f *Field) Flush() Result {
	f.mutex.Lock()
	f.stopTimerLocked()
	pending := !resource.ShallowEqual(f.value, f.baseline)
	f.mutex.Unlock()

	if !pending {
		return Result{OK: true}
	}
	return f.saveNow()
}

// Close cancels any pending save.
func (f *Field) Close() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.closed = true
	f.stopTimerLocked()
}

func (f *Field) save() {
	f.saveNow()
}

func (f *Field) saveNow() Result {
	f.mutex.Lock()
	if f.closed {
		f.mutex.Unlock()
		return Result{}
	}
	value := f.value
	previousBaseline := f.baseline
	// Optimistic: the baseline moves first so a Set back to the old value
	// during the request still counts as an edit.
	f.baseline = value
	f.mutex.Unlock()

	patch := resource.Patch{f.key: value}
	response, err := f.client.Patch(context.Background(), f.path, patch, f.requestOptions())
	if err != nil {
		f.mutex.Lock()
		f.baseline = previousBaseline
		if resource.ShallowEqual(f.value, value) {
			f.value = previousBaseline
		}
		f.lastErr = err
		f.mutex.Unlock()
		notifyError(f.notifier, err)
		return Result{Err: err}
	}

	if response != nil {
		if fields, fieldsErr := resource.AsFields(response); fieldsErr == nil {
			if serverValue, ok := fields[f.key]; ok {
				f.mutex.Lock()
				f.baseline = serverValue
				if resource.ShallowEqual(f.value, value) {
					f.value = serverValue
				}
				f.mutex.Unlock()
			}
		}
	}

	f.mutex.Lock()
	f.lastErr = nil
	f.mutex.Unlock()

	notifySuccess(f.notifier, f.successMessage)
	return Result{OK: true}
}

func (f *Field) stopTimerLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

func (f *Field) requestOptions() *api.RequestOptions {
	if f.extractor == nil {
		return nil
	}
	return &api.RequestOptions{Extract: f.extractor}
}
