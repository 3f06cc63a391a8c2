package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(url string) *Client {
	return New(Config{
		URL:           url,
		Model:         "test-model",
		MaxTokens:     256,
		Timeout:       5 * time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}, testLogger())
}

func TestComplete_ReturnsRawBody(t *testing.T) {
	var gotReq completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		io.WriteString(w, `Sure! [{"english":"Q?"}]`)
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Complete(context.Background(), "clean this up")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != `Sure! [{"english":"Q?"}]` {
		t.Fatalf("body = %q", got)
	}
	if gotReq.Model != "test-model" || gotReq.Prompt != "clean this up" || gotReq.MaxTokens != 256 {
		t.Fatalf("unexpected request: %+v", gotReq)
	}
}

func TestComplete_NonSuccessStatusIsStatusError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), "p")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", statusErr.StatusCode)
	}
	// Status responses are never retried at the transport layer.
	if calls != 1 {
		t.Fatalf("expected 1 request, got %d", calls)
	}
}

func TestComplete_TransportFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	_, err := newTestClient(srv.URL).Complete(context.Background(), "p")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
}

func TestComplete_RetriesTransportFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// Kill the connection without a response.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("hijacking not supported")
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Fatalf("hijack failed: %v", err)
			}
			conn.Close()
			return
		}
		io.WriteString(w, "[]")
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Complete(context.Background(), "p")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "[]" {
		t.Fatalf("body = %q", got)
	}
	if calls != 2 {
		t.Fatalf("expected 2 requests, got %d", calls)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("0123456789abc", 10); got != "0123456789...[truncated]" {
		t.Fatalf("got %q", got)
	}
}
