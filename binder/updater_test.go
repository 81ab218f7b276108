package binder

import (
	"context"
	"testing"
	"time"

	"github.com/crmarques/storectl/faults"
	"github.com/crmarques/storectl/resource"
)

func TestUpdaterLoad(t *testing.T) {
	t.Parallel()

	t.Run("load_resets_state_and_baseline", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{getValue: map[string]any{"id": int64(5), "name": "Mugs"}}
		updater := NewUpdater(client, "shops/5")

		if err := updater.Load(context.Background()); err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if !updater.Loaded() {
			t.Fatal("expected Loaded to report true")
		}
		if updater.Field("name") != "Mugs" {
			t.Fatalf("unexpected field value: %v", updater.Field("name"))
		}
		if updater.IsDirty() {
			t.Fatal("freshly loaded resource should not be dirty")
		}
	})

	t.Run("load_error_propagates", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{getErr: faults.NewTypedError(faults.NotFoundError, "Not found", nil)}
		updater := NewUpdater(client, "shops/5")

		err := updater.Load(context.Background())
		if !faults.IsCategory(err, faults.NotFoundError) {
			t.Fatalf("expected not-found error, got %v", err)
		}
	})

	t.Run("canceled_context_discards_response", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{getValue: map[string]any{"name": "Stale"}}
		updater := NewUpdater(client, "shops/5")
		updater.Seed(resource.Fields{"name": "Fresh"})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := updater.Load(ctx); err == nil {
			t.Fatal("expected error for canceled context")
		}
		if updater.Field("name") != "Fresh" {
			t.Fatalf("stale response overwrote state: %v", updater.Field("name"))
		}
	})
}

func TestUpdaterDirtyTracking(t *testing.T) {
	t.Parallel()

	t.Run("set_field_marks_key_dirty", func(t *testing.T) {
		t.Parallel()

		updater := NewUpdater(&fakeClient{}, "shops/5")
		updater.Seed(resource.Fields{"name": "Mugs", "slug": "mugs"})

		updater.SetField("name", "Fine Mugs")
		patch := updater.DirtyPatch()
		if len(patch) != 1 || patch["name"] != "Fine Mugs" {
			t.Fatalf("unexpected dirty patch: %v", patch)
		}
	})

	t.Run("reverted_edit_is_clean", func(t *testing.T) {
		t.Parallel()

		updater := NewUpdater(&fakeClient{}, "shops/5")
		updater.Seed(resource.Fields{"name": "Mugs"})

		updater.SetField("name", "Fine Mugs")
		updater.SetField("name", "Mugs")
		if updater.IsDirty() {
			t.Fatal("reverted edit should not be dirty")
		}
	})

	t.Run("numeric_edit_matching_baseline_is_clean", func(t *testing.T) {
		t.Parallel()

		// Flag parsing yields float64 while decoded baselines hold int64 for
		// whole numbers; both forms of the same value must compare equal.
		updater := NewUpdater(&fakeClient{}, "shops/5/products/12")
		updater.Seed(resource.Fields{"stock_quantity": int64(5), "base_price": 14.5})

		updater.SetField("stock_quantity", float64(5))
		updater.SetField("base_price", 14.5)
		if patch := updater.DirtyPatch(); len(patch) != 0 {
			t.Fatalf("identical values marked dirty: %v", patch)
		}

		updater.SetField("stock_quantity", float64(6))
		patch := updater.DirtyPatch()
		if len(patch) != 1 || patch["stock_quantity"] != int64(6) {
			t.Fatalf("unexpected dirty patch: %v", patch)
		}
	})

	t.Run("keys_outside_configured_set_ignored", func(t *testing.T) {
		t.Parallel()

		updater := NewUpdater(&fakeClient{}, "shops/5", WithKeys("name"))
		updater.Seed(resource.Fields{"name": "Mugs", "slug": "mugs"})

		updater.SetField("slug", "other")
		if updater.IsDirty() {
			t.Fatal("edit to excluded key should be ignored")
		}
	})
}

func TestUpdaterSave(t *testing.T) {
	t.Parallel()

	t.Run("patches_only_dirty_keys", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{patchValue: map[string]any{"name": "Fine Mugs", "slug": "fine-mugs"}}
		notifier := &recordingNotifier{}
		updater := NewUpdater(client, "shops/5", WithNotifier(notifier))
		updater.Seed(resource.Fields{"name": "Mugs", "slug": "mugs"})

		updater.SetField("name", "Fine Mugs")
		result := updater.Save(context.Background())
		if !result.OK {
			t.Fatalf("Save failed: %v", result.Err)
		}

		patch := client.lastPatch()
		if len(patch) != 1 || patch["name"] != "Fine Mugs" {
			t.Fatalf("unexpected patch body: %v", patch)
		}
		if updater.Field("slug") != "fine-mugs" {
			t.Fatalf("server response did not replace state: %v", updater.Field("slug"))
		}
		if updater.IsDirty() {
			t.Fatal("saved resource should be clean")
		}
		if successes, _, _ := notifier.counts(); successes != 1 {
			t.Fatalf("expected 1 success notice, got %d", successes)
		}
	})

	t.Run("no_changes_skips_network", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{}
		notifier := &recordingNotifier{}
		updater := NewUpdater(client, "shops/5", WithNotifier(notifier))
		updater.Seed(resource.Fields{"name": "Mugs"})

		result := updater.Save(context.Background())
		if !result.OK {
			t.Fatalf("Save failed: %v", result.Err)
		}
		if client.patchCount() != 0 {
			t.Fatal("clean save should not hit the network")
		}
		if _, _, infos := notifier.counts(); infos != 1 {
			t.Fatalf("expected 1 info notice, got %d", infos)
		}
	})

	t.Run("empty_response_advances_baseline", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{}
		updater := NewUpdater(client, "shops/5")
		updater.Seed(resource.Fields{"name": "Mugs"})

		updater.SetField("name", "Fine Mugs")
		if result := updater.Save(context.Background()); !result.OK {
			t.Fatalf("Save failed: %v", result.Err)
		}
		if updater.Field("name") != "Fine Mugs" {
			t.Fatalf("local edit was lost: %v", updater.Field("name"))
		}
		if updater.IsDirty() {
			t.Fatal("baseline should match saved state")
		}
	})

	t.Run("failure_keeps_dirty_state_and_notifies", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{patchErr: faults.NewFieldError(
			faults.ValidationError,
			"name: too long",
			map[string][]string{"name": {"too long"}},
		)}
		notifier := &recordingNotifier{}
		updater := NewUpdater(client, "shops/5", WithNotifier(notifier))
		updater.Seed(resource.Fields{"name": "Mugs"})

		updater.SetField("name", "Fine Mugs")
		result := updater.Save(context.Background())
		if result.OK || result.Err == nil {
			t.Fatal("expected failed result")
		}
		if !updater.IsDirty() {
			t.Fatal("failed save should keep the edit dirty")
		}

		notifier.mutex.Lock()
		defer notifier.mutex.Unlock()
		if len(notifier.errors) != 1 || notifier.errors[0] != "name: too long" {
			t.Fatalf("unexpected error notices: %v", notifier.errors)
		}
	})

	t.Run("non_object_response_fails_save", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{patchValue: []any{"unexpected"}}
		notifier := &recordingNotifier{}
		updater := NewUpdater(client, "shops/5", WithNotifier(notifier))
		updater.Seed(resource.Fields{"name": "Mugs"})

		updater.SetField("name", "Fine Mugs")
		result := updater.Save(context.Background())
		if result.OK || result.Err == nil {
			t.Fatal("expected failed result for a non-object response")
		}
		if !updater.IsDirty() {
			t.Fatal("baseline must not advance on a malformed response")
		}
		if _, errors, _ := notifier.counts(); errors != 1 {
			t.Fatalf("expected 1 error notice, got %d", errors)
		}
	})

	t.Run("rejects_overlapping_operations", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		release := make(chan struct{})
		client := &fakeClient{onPatch: func() {
			close(started)
			<-release
		}}
		updater := NewUpdater(client, "shops/5")
		updater.Seed(resource.Fields{"name": "Mugs"})
		updater.SetField("name", "Fine Mugs")

		done := make(chan Result, 1)
		go func() { done <- updater.Save(context.Background()) }()
		<-started

		if !updater.Busy() {
			t.Fatal("expected updater to report busy while saving")
		}
		if result := updater.Delete(context.Background()); result.Err == nil {
			t.Fatal("expected overlapping delete to be rejected")
		} else if !faults.IsCategory(result.Err, faults.ConflictError) {
			t.Fatalf("unexpected error: %v", result.Err)
		}

		close(release)
		select {
		case result := <-done:
			if !result.OK {
				t.Fatalf("initial save failed: %v", result.Err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("save never finished")
		}
	})
}

func TestUpdaterDelete(t *testing.T) {
	t.Parallel()

	t.Run("declined_confirmation_aborts_silently", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{}
		notifier := &recordingNotifier{}
		confirmer := &stubConfirmer{approved: false}
		updater := NewUpdater(client, "shops/5", WithNotifier(notifier), WithConfirmer(confirmer))

		result := updater.Delete(context.Background())
		if result.OK || result.Err != nil {
			t.Fatalf("declined delete should be a quiet no-op, got %+v", result)
		}
		if client.deleteCount() != 0 {
			t.Fatal("declined delete must not hit the network")
		}
		if successes, errors, infos := notifier.counts(); successes+errors+infos != 0 {
			t.Fatal("declined delete must not notify")
		}
	})

	t.Run("confirmed_delete_succeeds", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{}
		notifier := &recordingNotifier{}
		confirmer := &stubConfirmer{approved: true}
		updater := NewUpdater(client, "shops/5", WithNotifier(notifier), WithConfirmer(confirmer))

		result := updater.Delete(context.Background())
		if !result.OK {
			t.Fatalf("Delete failed: %v", result.Err)
		}
		if client.deleteCount() != 1 {
			t.Fatalf("expected 1 delete call, got %d", client.deleteCount())
		}
		if successes, _, _ := notifier.counts(); successes != 1 {
			t.Fatalf("expected 1 success notice, got %d", successes)
		}
	})

	t.Run("delete_without_confirmer_proceeds", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{}
		updater := NewUpdater(client, "shops/5")

		if result := updater.Delete(context.Background()); !result.OK {
			t.Fatalf("Delete failed: %v", result.Err)
		}
		if client.deleteCount() != 1 {
			t.Fatal("expected delete call")
		}
	})

	t.Run("delete_failure_notifies", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{deleteErr: faults.NewTypedError(faults.NotFoundError, "Not found", nil)}
		notifier := &recordingNotifier{}
		updater := NewUpdater(client, "shops/5", WithNotifier(notifier))

		result := updater.Delete(context.Background())
		if result.OK || result.Err == nil {
			t.Fatal("expected failed result")
		}
		if _, errors, _ := notifier.counts(); errors != 1 {
			t.Fatalf("expected 1 error notice, got %d", errors)
		}
	})
}
