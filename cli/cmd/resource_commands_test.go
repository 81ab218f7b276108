package cmd_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func TestShopGetPrintsResource(t *testing.T) {
	home := setTempHome(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/shops/5/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":5,"name":"Mug Store","status":"active"}`)
	}))
	defer server.Close()

	contextPath := filepath.Join(home, "context.yaml")
	writeContextConfig(t, contextPath, server.URL)
	addContext(t, "test", contextPath)

	root := newRootCommand()
	command := findCommand(t, root, "shop", "get")
	command.SetContext(context.Background())
	var outBuf bytes.Buffer
	command.SetOut(&outBuf)
	command.SetErr(io.Discard)

	if err := command.RunE(command, []string{"5"}); err != nil {
		t.Fatalf("RunE: %v", err)
	}
	if !strings.Contains(outBuf.String(), "name: Mug Store") {
		t.Fatalf("expected shop in output, got %q", outBuf.String())
	}
}

func TestProductUpdatePatchesOnlyChangedFields(t *testing.T) {
	home := setTempHome(t)

	var patched map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/shops/5/products/12/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			io.WriteString(w, `{"id":12,"name":"Mug","base_price":10,"currency":"EUR"}`)
		case http.MethodPatch:
			if err := json.NewDecoder(r.Body).Decode(&patched); err != nil {
				t.Errorf("decode patch body: %v", err)
			}
			io.WriteString(w, `{"id":12,"name":"Mug","base_price":14.5,"currency":"EUR"}`)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer server.Close()

	contextPath := filepath.Join(home, "context.yaml")
	writeContextConfig(t, contextPath, server.URL)
	addContext(t, "test", contextPath)

	root := newRootCommand()
	command := findCommand(t, root, "product", "update")
	command.SetContext(context.Background())
	var outBuf, errBuf bytes.Buffer
	command.SetOut(&outBuf)
	command.SetErr(&errBuf)

	if err := command.Flags().Set("shop", "5"); err != nil {
		t.Fatalf("set shop: %v", err)
	}
	if err := command.Flags().Set("set", "base_price=14.5"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	if err := command.RunE(command, []string{"12"}); err != nil {
		t.Fatalf("RunE: %v", err)
	}

	if len(patched) != 1 {
		t.Fatalf("expected a single patched field, got %#v", patched)
	}
	if patched["base_price"] != 14.5 {
		t.Fatalf("expected base_price 14.5, got %#v", patched["base_price"])
	}
	if !strings.Contains(errBuf.String(), "Changes saved") {
		t.Fatalf("expected save notice, got %q", errBuf.String())
	}
	if !strings.Contains(outBuf.String(), "base_price: 14.5") {
		t.Fatalf("expected updated product in output, got %q", outBuf.String())
	}
}

func TestShopUpdateSurfacesFieldErrors(t *testing.T) {
	home := setTempHome(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			io.WriteString(w, `{"id":5,"name":"Mug Store"}`)
		case http.MethodPatch:
			w.WriteHeader(http.StatusUnprocessableEntity)
			io.WriteString(w, `{"errors":{"name":["too long"]}}`)
		}
	}))
	defer server.Close()

	contextPath := filepath.Join(home, "context.yaml")
	writeContextConfig(t, contextPath, server.URL)
	addContext(t, "test", contextPath)

	root := newRootCommand()
	command := findCommand(t, root, "shop", "update")
	command.SetContext(context.Background())
	var errBuf bytes.Buffer
	command.SetOut(io.Discard)
	command.SetErr(&errBuf)

	if err := command.Flags().Set("set", "name=Very Long Name"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	if err := command.RunE(command, []string{"5"}); err == nil {
		t.Fatalf("expected error for rejected update")
	}
	if !strings.Contains(errBuf.String(), "name: too long") {
		t.Fatalf("expected field error notice, got %q", errBuf.String())
	}
}
