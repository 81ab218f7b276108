package binder

import (
	"context"
	"testing"

	"github.com/crmarques/storectl/faults"
)

func TestCreatorCreate(t *testing.T) {
	t.Parallel()

	t.Run("posts_configured_keys_only", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{postValue: map[string]any{"id": int64(7), "name": "Mugs", "slug": "mugs"}}
		notifier := &recordingNotifier{}
		creator := NewCreator(client, "shops",
			WithCreateKeys("name"),
			WithCreateNotifier(notifier),
		)

		creator.SetField("name", "Mugs")
		creator.SetField("internal_note", "should not be sent")

		created, result := creator.Create(context.Background())
		if !result.OK {
			t.Fatalf("Create failed: %v", result.Err)
		}
		if created["id"] != int64(7) {
			t.Fatalf("unexpected created resource: %v", created)
		}

		client.mutex.Lock()
		defer client.mutex.Unlock()
		if len(client.posts) != 1 {
			t.Fatalf("expected 1 post, got %d", len(client.posts))
		}
		if _, found := client.posts[0]["internal_note"]; found {
			t.Fatalf("excluded key was posted: %v", client.posts[0])
		}
		if client.posts[0]["name"] != "Mugs" {
			t.Fatalf("unexpected post body: %v", client.posts[0])
		}
	})

	t.Run("empty_body_rejected", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{}
		creator := NewCreator(client, "shops")

		_, result := creator.Create(context.Background())
		if result.OK || !faults.IsCategory(result.Err, faults.ValidationError) {
			t.Fatalf("expected validation error, got %+v", result)
		}
		client.mutex.Lock()
		defer client.mutex.Unlock()
		if len(client.posts) != 0 {
			t.Fatal("empty create must not hit the network")
		}
	})

	t.Run("failure_notifies_with_server_message", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{postErr: faults.NewFieldError(
			faults.ValidationError,
			"slug: already exists",
			map[string][]string{"slug": {"already exists"}},
		)}
		notifier := &recordingNotifier{}
		creator := NewCreator(client, "shops", WithCreateNotifier(notifier))

		creator.SetField("name", "Mugs")
		_, result := creator.Create(context.Background())
		if result.OK || result.Err == nil {
			t.Fatal("expected failed result")
		}

		notifier.mutex.Lock()
		defer notifier.mutex.Unlock()
		if len(notifier.errors) != 1 || notifier.errors[0] != "slug: already exists" {
			t.Fatalf("unexpected error notices: %v", notifier.errors)
		}
	})
}
