package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(srv *httptest.Server, headers map[string]string) *Client {
	return NewClient(headers, WithHTTPClient(srv.Client()), WithRetry(3, time.Millisecond))
}

func TestClientGetBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("User-Agent"); got != "accessmap-test" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Write([]byte(`{"type":"Topology"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv, map[string]string{"User-Agent": "accessmap-test"})
	data, err := c.GetBytes(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetBytes() error: %v", err)
	}
	if string(data) != `{"type":"Topology"}` {
		t.Errorf("GetBytes() = %q", data)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	data, err := newTestClient(srv, nil).GetBytes(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetBytes() error: %v", err)
	}
	if string(data) != "ok" || calls.Load() != 3 {
		t.Errorf("GetBytes() = %q after %d calls", data, calls.Load())
	}
}

func TestClientStatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantErr   error
		wantCalls int32
	}{
		{"not found", http.StatusNotFound, ErrNotFound, 1},
		{"forbidden", http.StatusForbidden, ErrNetwork, 1},
		{"server error", http.StatusInternalServerError, ErrNetwork, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := newTestClient(srv, nil).GetBytes(context.Background(), srv.URL)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GetBytes() error = %v, want %v", err, tt.wantErr)
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.wantCalls)
			}
		})
	}
}
