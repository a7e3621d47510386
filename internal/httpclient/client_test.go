package httpclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewClientTransport(t *testing.T) {
	client := NewClient(2 * time.Second)
	defer client.CloseIdleConnections()

	if client.Timeout != 2*time.Second {
		t.Errorf("Timeout = %s, want 2s", client.Timeout)
	}
	tr, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("Transport is %T, want *http.Transport", client.Transport)
	}
	if tr.MaxIdleConnsPerHost < 5 {
		t.Errorf("MaxIdleConnsPerHost = %d, want room for the five concurrent quote fetches", tr.MaxIdleConnsPerHost)
	}
	if tr.IdleConnTimeout <= 0 || tr.TLSHandshakeTimeout <= 0 {
		t.Errorf("transport timeouts unset: idle=%s tls=%s", tr.IdleConnTimeout, tr.TLSHandshakeTimeout)
	}
}

func TestNewClientTimesOutSlowServer(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(40 * time.Millisecond)
	defer client.CloseIdleConnections()

	resp, err := client.Get(server.URL)
	if err == nil {
		resp.Body.Close()
		t.Fatal("expected the client timeout to fire")
	}
	var netErr net.Error
	if !errors.Is(err, context.DeadlineExceeded) && !(errors.As(err, &netErr) && netErr.Timeout()) {
		t.Fatalf("expected a timeout error, got %v", err)
	}
}

func TestNewClientNegativeTimeout(t *testing.T) {
	client := NewClient(-time.Second)
	if client.Timeout != 0 {
		t.Fatalf("expected negative timeout to be clamped to 0, got %s", client.Timeout)
	}
}

func TestReadBody(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantStatus int
	}{
		{name: "ok", status: http.StatusOK, body: `{"ok":true}`},
		{name: "no content", status: http.StatusNoContent},
		{name: "rate limited", status: http.StatusTooManyRequests, body: " slow down \n", wantErr: true, wantStatus: 429},
		{name: "server error", status: http.StatusInternalServerError, body: strings.Repeat("x", 4096), wantErr: true, wantStatus: 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			resp, err := http.Get(server.URL)
			if err != nil {
				t.Fatalf("GET failed: %v", err)
			}
			body, err := ReadBody(resp)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if string(body) != tt.body {
					t.Fatalf("body = %q, want %q", body, tt.body)
				}
				return
			}

			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("expected *HTTPError, got %T (%v)", err, err)
			}
			if httpErr.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", httpErr.StatusCode, tt.wantStatus)
			}
			if len(httpErr.Body) > maxLoggedBodyBytes {
				t.Errorf("body snippet not truncated: %d bytes", len(httpErr.Body))
			}
			if strings.TrimSpace(httpErr.Body) != httpErr.Body {
				t.Errorf("body snippet not trimmed: %q", httpErr.Body)
			}
		})
	}
}

func TestHTTPErrorMessage(t *testing.T) {
	if got := (&HTTPError{StatusCode: 404}).Error(); got != "HTTP 404" {
		t.Errorf("unexpected message %q", got)
	}
	if got := (&HTTPError{StatusCode: 500, Body: "boom"}).Error(); got != "HTTP 500: boom" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestHTTPErrorCategory(t *testing.T) {
	tests := map[int]string{
		429: "HTTP 429 Too Many Requests",
		503: "HTTP 503 Service Unavailable",
		599: "HTTP 599",
	}
	for code, want := range tests {
		if got := (&HTTPError{StatusCode: code, Body: "ignored"}).ErrorCategory(); got != want {
			t.Errorf("ErrorCategory(%d) = %q, want %q", code, got, want)
		}
	}
}
