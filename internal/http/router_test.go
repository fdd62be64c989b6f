package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"bindery/internal/config"
	"bindery/internal/metrics"
	"bindery/internal/store"
)

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(cfg, store.New(nil), logger)
}

func TestHealthzShallow(t *testing.T) {
	srv := newTestServer(t, &config.Config{})

	resp, err := srv.App().Test(httptest.NewRequest("GET", "/healthz", nil), -1)
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status = %q", body["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.Reset()
	srv := newTestServer(t, &config.Config{})

	// Generate one measured request first.
	resp, err := srv.App().Test(httptest.NewRequest("GET", "/healthz", nil), -1)
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()

	resp, err = srv.App().Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type = %q", ct)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), `bindery_http_requests_total{method="GET",path="/healthz",status="200"}`) {
		t.Fatalf("missing request counter:\n%s", raw)
	}
}

func TestRequestIDEchoedToLogs(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	srv := NewServer(&config.Config{}, store.New(nil), logger)

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-test-123")
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()

	if !strings.Contains(buf.String(), "req-test-123") {
		t.Fatalf("request id not logged:\n%s", buf.String())
	}
}
