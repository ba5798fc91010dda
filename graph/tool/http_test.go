package tool

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPTool_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("X-Token"); got != "secret" {
			t.Errorf("expected header X-Token=secret, got %q", got)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	ht := NewHTTPTool(nil)
	out, err := ht.Call(context.Background(), map[string]interface{}{
		"url": srv.URL,
		"headers": map[string]interface{}{
			"X-Token": "secret",
		},
	})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if out != `{"ok":true}` {
		t.Errorf("unexpected body: %q", out)
	}
}

func TestHTTPTool_Post(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"q":"hi"}` {
			t.Errorf("unexpected request body: %q", body)
		}
		_, _ = w.Write([]byte("created"))
	}))
	defer srv.Close()

	ht := NewHTTPTool(nil)
	out, err := ht.Call(context.Background(), map[string]interface{}{
		"url":    srv.URL,
		"method": "post",
		"body":   `{"q":"hi"}`,
	})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if out != "created" {
		t.Errorf("unexpected body: %q", out)
	}
}

func TestHTTPTool_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	ht := NewHTTPTool(nil)
	_, err := ht.Call(context.Background(), map[string]interface{}{"url": srv.URL})
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestHTTPTool_ArgumentValidation(t *testing.T) {
	ht := NewHTTPTool(nil)
	ctx := context.Background()

	if _, err := ht.Call(ctx, map[string]interface{}{}); err == nil {
		t.Error("expected error for missing url")
	}
	if _, err := ht.Call(ctx, map[string]interface{}{"url": "http://example.com", "method": "DELETE"}); err == nil {
		t.Error("expected error for unsupported method")
	}
}
