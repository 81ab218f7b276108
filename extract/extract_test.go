package extract

import "testing"

func TestKey(t *testing.T) {
	t.Parallel()

	t.Run("unwraps_envelope", func(t *testing.T) {
		t.Parallel()

		raw := map[string]any{"user": map[string]any{"email": "a@b.c"}}
		value, err := Key("user")(raw)
		if err != nil {
			t.Fatalf("Key returned error: %v", err)
		}
		object, ok := value.(map[string]any)
		if !ok || object["email"] != "a@b.c" {
			t.Fatalf("unexpected value: %v", value)
		}
	})

	t.Run("missing_key_passes_through", func(t *testing.T) {
		t.Parallel()

		raw := map[string]any{"email": "a@b.c"}
		value, err := Key("user")(raw)
		if err != nil {
			t.Fatalf("Key returned error: %v", err)
		}
		if object, ok := value.(map[string]any); !ok || object["email"] != "a@b.c" {
			t.Fatalf("expected passthrough, got %v", value)
		}
	})

	t.Run("non_object_passes_through", func(t *testing.T) {
		t.Parallel()

		value, err := Key("user")("bare")
		if err != nil || value != "bare" {
			t.Fatalf("expected passthrough, got %v, %v", value, err)
		}
	})
}

func TestJQ(t *testing.T) {
	t.Parallel()

	t.Run("selects_nested_value", func(t *testing.T) {
		t.Parallel()

		raw := map[string]any{"data": map[string]any{"shop": map[string]any{"name": "Mugs"}}}
		value, err := JQ(".data.shop")(raw)
		if err != nil {
			t.Fatalf("JQ returned error: %v", err)
		}
		object, ok := value.(map[string]any)
		if !ok || object["name"] != "Mugs" {
			t.Fatalf("unexpected value: %v", value)
		}
	})

	t.Run("invalid_expression_fails", func(t *testing.T) {
		t.Parallel()

		if _, err := JQ(".data[")(map[string]any{}); err == nil {
			t.Fatal("expected error for invalid expression")
		}
	})

	t.Run("empty_expression_passes_through", func(t *testing.T) {
		t.Parallel()

		value, err := JQ("  ")("x")
		if err != nil || value != "x" {
			t.Fatalf("expected passthrough, got %v, %v", value, err)
		}
	})

	t.Run("multiple_results_collected", func(t *testing.T) {
		t.Parallel()

		raw := map[string]any{"items": []any{"a", "b"}}
		value, err := JQ(".items[]")(raw)
		if err != nil {
			t.Fatalf("JQ returned error: %v", err)
		}
		results, ok := value.([]any)
		if !ok || len(results) != 2 {
			t.Fatalf("unexpected value: %v", value)
		}
	})
}
