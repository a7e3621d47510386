package load_test

import (
	"math"
	"testing"

	"github.com/torosent/crankbench/internal/load"
)

func TestSingle(t *testing.T) {
	tests := []struct {
		name string
		occ  load.Occupancy
		want float64
	}{
		{"idle", load.Occupancy{Available: 4, PoolSize: 4}, 0},
		{"half", load.Occupancy{Available: 2, PoolSize: 4}, 50},
		{"full", load.Occupancy{Available: 0, PoolSize: 4}, 100},
		{"negative available", load.Occupancy{Available: -3, PoolSize: 4}, 100},
		{"over-reported available", load.Occupancy{Available: 9, PoolSize: 4}, 0},
		{"empty pool", load.Occupancy{Available: 0, PoolSize: 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := load.Single(tt.occ)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Single(%+v) = %v, want %v", tt.occ, got, tt.want)
			}
		})
	}
}

func TestBracketedAveragesSamples(t *testing.T) {
	before := load.Occupancy{Available: 4, PoolSize: 8}
	after := load.Occupancy{Available: 0, PoolSize: 8}

	got := load.Bracketed(before, after)
	if got != 75 {
		t.Fatalf("Bracketed = %v, want 75", got)
	}
}

func TestBracketedStaysInRange(t *testing.T) {
	for avail := -2; avail <= 10; avail++ {
		for size := 0; size <= 8; size++ {
			occ := load.Occupancy{Available: avail, PoolSize: size}
			got := load.Bracketed(occ, occ)
			if got < 0 || got > 100 {
				t.Fatalf("Bracketed(%+v) = %v out of range", occ, got)
			}
		}
	}
}

func TestFixedSampler(t *testing.T) {
	var s load.Sampler = load.Fixed{Available: 1, PoolSize: 2}
	if got := s.Sample(); got.Available != 1 || got.PoolSize != 2 {
		t.Fatalf("unexpected sample %+v", got)
	}
}
