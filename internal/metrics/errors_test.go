package metrics_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"testing"

	"github.com/torosent/crankbench/internal/metrics"
)

type quoteFault struct{}

func (quoteFault) Error() string { return "bad quote" }

type rateLimited struct{}

func (rateLimited) Error() string         { return "slow down" }
func (rateLimited) ErrorCategory() string { return "Throttled" }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type TLSHandshakeFailure struct{}

func (*TLSHandshakeFailure) Error() string { return "handshake" }

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "Unknown error"},
		{"categorizer", rateLimited{}, "Throttled"},
		{"wrapped categorizer", fmt.Errorf("attempt 2: %w", rateLimited{}), "Throttled"},
		{"deadline", context.DeadlineExceeded, "Context deadline exceeded"},
		{"deadline inside url error", &url.Error{Op: "Get", URL: "http://x", Err: context.DeadlineExceeded}, "Context deadline exceeded"},
		{"canceled", fmt.Errorf("fetch: %w", context.Canceled), "Canceled"},
		{"net timeout", &url.Error{Op: "Get", URL: "http://x", Err: timeoutErr{}}, "Network timeout"},
		{"url error", &url.Error{Op: "Get", URL: "http://x", Err: errors.New("refused")}, "Request URL error"},
		{"path error", &fs.PathError{Op: "open", Path: "a.txt", Err: fs.ErrNotExist}, "File access error"},
		{"plain", errors.New("boom"), "Error"},
		{"fmt wrapper around custom type", fmt.Errorf("unit 3: %w", quoteFault{}), "Quote Fault (metrics_test)"},
		{"acronym", &TLSHandshakeFailure{}, "TLS Handshake Failure (metrics_test)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := metrics.Categorize(tt.err); got != tt.want {
				t.Errorf("Categorize(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorTally(t *testing.T) {
	tally := metrics.NewErrorTally()
	tally.Record(&fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist})
	tally.Record(&fs.PathError{Op: "read", Path: "y", Err: fs.ErrClosed})
	tally.Record(rateLimited{})
	tally.Record(nil)

	got := tally.Breakdown()
	if got["File access error"] != 2 || got["Throttled"] != 1 || len(got) != 2 {
		t.Errorf("Breakdown() = %v", got)
	}

	got["File access error"] = 99
	if tally.Breakdown()["File access error"] != 2 {
		t.Error("Breakdown() must return a copy")
	}

	tally.Reset()
	if len(tally.Breakdown()) != 0 {
		t.Errorf("expected empty breakdown after reset")
	}
	tally.Record(quoteFault{})
	if tally.Breakdown()["Quote Fault (metrics_test)"] != 1 {
		t.Errorf("tally unusable after reset: %v", tally.Breakdown())
	}
}
