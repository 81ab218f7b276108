package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/crmarques/storectl/extract"
	"github.com/crmarques/storectl/faults"
)

func mustClient(t *testing.T, cfg Config, opts ...ClientOption) *Client {
	t.Helper()

	client, err := NewClient(cfg, opts...)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		baseURL string
	}{
		{"empty_base_url", ""},
		{"missing_scheme", "backend.example.com"},
		{"unsupported_scheme", "ftp://backend.example.com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NewClient(Config{BaseURL: tc.baseURL}); err == nil {
				t.Fatalf("expected error for base URL %q", tc.baseURL)
			}
		})
	}
}

func TestClientGet(t *testing.T) {
	t.Parallel()

	t.Run("decodes_json_body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/shops/5/" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id": 5, "name": "Mugs"}`))
		}))
		defer server.Close()

		client := mustClient(t, Config{BaseURL: server.URL})
		value, err := client.Get(context.Background(), "shops/5", nil)
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}

		object, ok := value.(map[string]any)
		if !ok {
			t.Fatalf("expected object, got %T", value)
		}
		if object["id"] != int64(5) || object["name"] != "Mugs" {
			t.Fatalf("unexpected object: %v", object)
		}
	})

	t.Run("empty_body_yields_nil", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := mustClient(t, Config{BaseURL: server.URL})
		value, err := client.Get(context.Background(), "shops/5", nil)
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if value != nil {
			t.Fatalf("expected nil value, got %v", value)
		}
	})

	t.Run("extractor_unwraps_envelope", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"user": {"email": "owner@example.com"}}`))
		}))
		defer server.Close()

		client := mustClient(t, Config{BaseURL: server.URL})
		value, err := client.Get(context.Background(), "auth/me", &RequestOptions{Extract: extract.Key("user")})
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}

		object, ok := value.(map[string]any)
		if !ok || object["email"] != "owner@example.com" {
			t.Fatalf("unexpected value: %v", value)
		}
	})

	t.Run("nil_query_values_skipped", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query := r.URL.Query()
			if query.Get("status") != "active" {
				t.Errorf("missing status parameter: %s", r.URL.RawQuery)
			}
			if query.Has("category") {
				t.Errorf("nil parameter was sent: %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client := mustClient(t, Config{BaseURL: server.URL})
		_, err := client.Get(context.Background(), "shops/1/products", &RequestOptions{
			Query: map[string]any{"status": "active", "category": nil},
		})
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
	})
}

func TestClientErrorMessages(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMessage string
		wantCat     faults.ErrorCategory
	}{
		{
			name:        "field_errors_flattened",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `{"email": ["already exists"]}`,
			wantMessage: "email: already exists",
			wantCat:     faults.ValidationError,
		},
		{
			name:        "detail_wins",
			status:      http.StatusNotFound,
			contentType: "application/json",
			body:        `{"detail": "Not found"}`,
			wantMessage: "Not found",
			wantCat:     faults.NotFoundError,
		},
		{
			name:        "non_json_body_falls_back_to_status",
			status:      http.StatusInternalServerError,
			contentType: "text/html",
			body:        "<html>boom</html>",
			wantMessage: "500 Internal Server Error",
			wantCat:     faults.TransportError,
		},
		{
			name:        "multiple_fields_sorted",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `{"sku": ["required"], "base_price": ["must be positive", "too low"]}`,
			wantMessage: "base_price: must be positive, too low | sku: required",
			wantCat:     faults.ValidationError,
		},
		{
			name:        "unauthorized_is_auth_error",
			status:      http.StatusUnauthorized,
			contentType: "application/json",
			body:        `{"detail": "Authentication credentials were not provided."}`,
			wantMessage: "Authentication credentials were not provided.",
			wantCat:     faults.AuthError,
		},
		{
			name:        "conflict_category",
			status:      http.StatusConflict,
			contentType: "application/json",
			body:        `{"detail": "Slug already taken"}`,
			wantMessage: "Slug already taken",
			wantCat:     faults.ConflictError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tc.contentType)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := mustClient(t, Config{BaseURL: server.URL})
			_, err := client.Get(context.Background(), "shops/5", nil)
			if err == nil {
				t.Fatal("expected error")
			}

			var typed *faults.TypedError
			if !errors.As(err, &typed) {
				t.Fatalf("expected typed error, got %T: %v", err, err)
			}
			if typed.Message != tc.wantMessage {
				t.Fatalf("message = %q, want %q", typed.Message, tc.wantMessage)
			}
			if !faults.IsCategory(err, tc.wantCat) {
				t.Fatalf("category = %s, want %s", typed.Category, tc.wantCat)
			}
		})
	}
}

func TestClientCredentials(t *testing.T) {
	t.Parallel()

	t.Run("session_cookie_attached", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(DefaultSessionCookie)
			if err != nil || cookie.Value != "tok-123" {
				t.Errorf("missing session cookie: %v", err)
			}
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := mustClient(t, Config{BaseURL: server.URL})
		client.SetSessionToken("tok-123")
		if _, err := client.Get(context.Background(), "auth/me", nil); err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
	})

	t.Run("no_cookie_without_token", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.Cookies()) != 0 {
				t.Errorf("unexpected cookies: %v", r.Cookies())
			}
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := mustClient(t, Config{BaseURL: server.URL})
		if _, err := client.Get(context.Background(), "shops", nil); err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
	})

	t.Run("default_headers_applied", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Tenant") != "acme" {
				t.Errorf("missing default header, got %q", r.Header.Get("X-Tenant"))
			}
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := mustClient(t, Config{
			BaseURL:        server.URL,
			DefaultHeaders: map[string]string{"X-Tenant": "acme"},
		})
		if _, err := client.Get(context.Background(), "shops", nil); err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
	})
}

func TestClientPatch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type: %s", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"name":"New name"`) {
			t.Errorf("unexpected body: %s", body)
		}
		_, _ = w.Write([]byte(`{"id": 5, "name": "New name"}`))
	}))
	defer server.Close()

	client := mustClient(t, Config{BaseURL: server.URL})
	value, err := client.Patch(context.Background(), "shops/5", map[string]any{"name": "New name"}, nil)
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	if object, ok := value.(map[string]any); !ok || object["name"] != "New name" {
		t.Fatalf("unexpected value: %v", value)
	}
}

func TestClientUpload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
			return
		}
		if r.FormValue("alt_text") != "Front view" {
			t.Errorf("missing alt_text field: %q", r.FormValue("alt_text"))
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
			return
		}
		defer file.Close()
		if header.Filename != "front.png" {
			t.Errorf("unexpected filename: %s", header.Filename)
		}
		contents, _ := io.ReadAll(file)
		if string(contents) != "png-bytes" {
			t.Errorf("unexpected file contents: %s", contents)
		}
		_, _ = w.Write([]byte(`{"id": 9, "url": "/media/front.png", "sort_order": 0}`))
	}))
	defer server.Close()

	client := mustClient(t, Config{BaseURL: server.URL})
	value, err := client.Upload(
		context.Background(),
		"shops/1/products/2/images/upload",
		"front.png",
		strings.NewReader("png-bytes"),
		map[string]string{"alt_text": "Front view"},
		nil,
	)
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if object, ok := value.(map[string]any); !ok || object["id"] != int64(9) {
		t.Fatalf("unexpected value: %v", value)
	}
}
