package workload_test

import (
	"testing"

	"github.com/torosent/crankbench/internal/workload"
)

func TestPartitionCoversRangeExactly(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		parts      int
		wantParts  int
	}{
		{"even split", 2, 31, 5, 5},
		{"remainder", 2, 30, 5, 5},
		{"single part", 2, 10000, 1, 1},
		{"more parts than numbers", 2, 4, 10, 3},
		{"single number", 7, 7, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranges, err := workload.Partition(tt.start, tt.end, tt.parts)
			if err != nil {
				t.Fatalf("Partition error: %v", err)
			}
			if len(ranges) != tt.wantParts {
				t.Fatalf("got %d parts, want %d", len(ranges), tt.wantParts)
			}
			next := tt.start
			for i, r := range ranges {
				if r.Start != next {
					t.Fatalf("part %d starts at %d, want %d (gap or overlap)", i, r.Start, next)
				}
				if r.Len() == 0 {
					t.Fatalf("part %d is empty: %v", i, r)
				}
				next = r.End + 1
			}
			if next != tt.end+1 {
				t.Fatalf("partitions end at %d, want %d", next-1, tt.end)
			}
		})
	}
}

func TestPartitionLastAbsorbsRemainder(t *testing.T) {
	ranges, err := workload.Partition(2, 30, 5)
	if err != nil {
		t.Fatal(err)
	}
	// 29 numbers over 5 parts: four parts of 5 and a last part of 9.
	for i, r := range ranges[:4] {
		if r.Len() != 5 {
			t.Errorf("part %d has %d numbers, want 5", i, r.Len())
		}
	}
	if last := ranges[4]; last != (workload.Range{Start: 22, End: 30}) {
		t.Errorf("last part = %v, want [22, 30]", last)
	}
}

func TestPartitionPrimeCountsMatchOracle(t *testing.T) {
	for _, parts := range []int{1, 2, 3, 7, 16} {
		ranges, err := workload.Partition(2, 5000, parts)
		if err != nil {
			t.Fatal(err)
		}
		sum := 0
		for _, r := range ranges {
			sum += workload.CountPrimes(r)
		}
		oracle := workload.CountPrimes(workload.Range{Start: 2, End: 5000})
		if sum != oracle {
			t.Errorf("parts=%d: partition sum %d != sequential %d", parts, sum, oracle)
		}
	}
}

func TestPartitionRejectsInvalidInput(t *testing.T) {
	if _, err := workload.Partition(10, 2, 3); err == nil {
		t.Error("expected error for empty range")
	}
	if _, err := workload.Partition(2, 10, 0); err == nil {
		t.Error("expected error for zero parts")
	}
}
