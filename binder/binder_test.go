package binder

import (
	"context"
	"sync"

	"github.com/crmarques/storectl/api"
	"github.com/crmarques/storectl/resource"
)

type fakeClient struct {
	mutex sync.Mutex

	getValue resource.Value
	getErr   error

	patchValue resource.Value
	patchErr   error
	onPatch    func()

	postValue resource.Value
	postErr   error

	deleteErr error

	patches []resource.Patch
	posts   []resource.Fields
	deletes []string
}

func (f *fakeClient) Get(ctx context.Context, path string, opts *api.RequestOptions) (resource.Value, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.getValue, f.getErr
}

func (f *fakeClient) Patch(ctx context.Context, path string, body any, opts *api.RequestOptions) (resource.Value, error) {
	f.mutex.Lock()
	if patch, ok := body.(resource.Patch); ok {
		f.patches = append(f.patches, patch)
	}
	onPatch := f.onPatch
	value, err := f.patchValue, f.patchErr
	f.mutex.Unlock()

	if onPatch != nil {
		onPatch()
	}
	return value, err
}

func (f *fakeClient) Post(ctx context.Context, path string, body any, opts *api.RequestOptions) (resource.Value, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if fields, ok := body.(resource.Fields); ok {
		f.posts = append(f.posts, fields)
	}
	return f.postValue, f.postErr
}

func (f *fakeClient) Delete(ctx context.Context, path string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.deletes = append(f.deletes, path)
	return f.deleteErr
}

func (f *fakeClient) patchCount() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.patches)
}

func (f *fakeClient) lastPatch() resource.Patch {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if len(f.patches) == 0 {
		return nil
	}
	return f.patches[len(f.patches)-1]
}

func (f *fakeClient) deleteCount() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.deletes)
}

type recordingNotifier struct {
	mutex     sync.Mutex
	successes []string
	errors    []string
	infos     []string
}

func (r *recordingNotifier) Success(message string) string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.successes = append(r.successes, message)
	return message
}

func (r *recordingNotifier) Error(message string) string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.errors = append(r.errors, message)
	return message
}

func (r *recordingNotifier) Info(message string) string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.infos = append(r.infos, message)
	return message
}

func (r *recordingNotifier) counts() (successes int, errors int, infos int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.successes), len(r.errors), len(r.infos)
}

type stubConfirmer struct {
	approved bool
	err      error
	asked    int
}

func (s *stubConfirmer) Confirm(prompt string) (bool, error) {
	s.asked++
	return s.approved, s.err
}
