package metrics_test

import (
	"sync"
	"testing"

	"github.com/torosent/crankbench/internal/metrics"
)

func TestStoreAppendAssignsWriteOrder(t *testing.T) {
	s := metrics.NewStore()
	s.AddRecord(1.5, 25, "120")
	s.AddRecord(2.5, 50, "120")

	recs := s.Snapshot()
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	for i, r := range recs {
		if r.Index != i {
			t.Errorf("record %d has index %d", i, r.Index)
		}
	}
	if recs[1].ElapsedMs != 2.5 || recs[1].LoadPercent != 50 {
		t.Errorf("unexpected record %+v", recs[1])
	}
}

func TestStoreClampsInvariants(t *testing.T) {
	s := metrics.NewStore()
	rec := s.AddRecord(-3, 140, "")

	if rec.ElapsedMs != 0 {
		t.Errorf("expected elapsed clamped to 0, got %v", rec.ElapsedMs)
	}
	if rec.LoadPercent != 100 {
		t.Errorf("expected load clamped to 100, got %v", rec.LoadPercent)
	}
	if rec.Result != metrics.FailureToken {
		t.Errorf("expected empty result replaced by %q, got %q", metrics.FailureToken, rec.Result)
	}

	rec = s.AddRecord(1, -5, "ok")
	if rec.LoadPercent != 0 {
		t.Errorf("expected load clamped to 0, got %v", rec.LoadPercent)
	}
}

func TestStoreClearIsIdempotent(t *testing.T) {
	s := metrics.NewStore()
	for i := 0; i < 50; i++ {
		s.AddRecord(float64(i), 10, "x")
		s.AddPrice(float64(i))
	}

	s.Clear()
	if got := s.Results(); len(got) != 0 {
		t.Fatalf("expected no results after clear, got %d", len(got))
	}
	if got := s.Prices(); len(got) != 0 {
		t.Fatalf("expected no prices after clear, got %d", len(got))
	}

	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("expected empty store after second clear, got %d", s.Len())
	}
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	s := metrics.NewStore()
	s.AddRecord(1, 1, "a")

	snap := s.Snapshot()
	snap[0].Result = "mutated"

	if got := s.Results()[0]; got != "a" {
		t.Fatalf("snapshot mutation leaked into store: %q", got)
	}
}

func TestStoreColumnsHaveEqualLength(t *testing.T) {
	s := metrics.NewStore()
	for i := 0; i < 7; i++ {
		s.AddRecord(float64(i), float64(i*10), "r")
	}

	times, loads, results := s.ExecutionTimes(), s.ThreadLoads(), s.Results()
	if len(times) != 7 || len(loads) != 7 || len(results) != 7 {
		t.Fatalf("column lengths differ: %d %d %d", len(times), len(loads), len(results))
	}
	if loads[3] != 30 || times[6] != 6 {
		t.Errorf("unexpected column values: loads=%v times=%v", loads, times)
	}
}

func TestStoreConcurrentWriters(t *testing.T) {
	s := metrics.NewStore()

	var wg sync.WaitGroup
	workers := 10
	perWorker := 100

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				s.AddRecord(1, 50, "ok")
			}
		}()
	}
	wg.Wait()

	recs := s.Snapshot()
	if len(recs) != workers*perWorker {
		t.Fatalf("expected %d records, got %d", workers*perWorker, len(recs))
	}
	seen := make(map[int]bool, len(recs))
	for _, r := range recs {
		if seen[r.Index] {
			t.Fatalf("duplicate index %d", r.Index)
		}
		seen[r.Index] = true
	}
}
