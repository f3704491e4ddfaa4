package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","node_id":1,"uuid":"abc-123","role":"parent","name":"widget-core","version":"1.0.0","uptime":"5s","connections":2}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	hs, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if hs.NodeID != 1 || hs.UUID != "abc-123" || hs.Role != "parent" || hs.Connections != 2 {
		t.Fatalf("unexpected health: %+v", hs)
	}
}

func TestHealthServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"store unavailable"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	if _, err := c.Health(context.Background()); err == nil || !strings.Contains(err.Error(), "store unavailable") {
		t.Fatalf("expected server error to surface, got %v", err)
	}
}

func TestHealthUnreachable(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := c.Health(context.Background()); err == nil {
		t.Fatalf("expected connection error")
	}
}

func TestDefaults(t *testing.T) {
	c := New(Config{})
	if c.baseURL != "http://localhost:8080" {
		t.Fatalf("unexpected default base URL: %q", c.baseURL)
	}
	if c.client.Timeout == 0 {
		t.Fatalf("expected default timeout")
	}
}
