package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLivenessEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handleLiveness(rec, req)

	resp := rec.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if string(body) != livenessBody {
		t.Errorf("expected body %q, got %q", livenessBody, string(body))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestNewServerDefaultAddr(t *testing.T) {
	s := NewServer("")
	if s.httpServer.Addr != DefaultAddr {
		t.Errorf("expected default addr %q, got %q", DefaultAddr, s.httpServer.Addr)
	}

	s = NewServer(":8080")
	if s.httpServer.Addr != ":8080" {
		t.Errorf("expected addr :8080, got %q", s.httpServer.Addr)
	}
}
