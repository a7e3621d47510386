package runner

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExponentialGap(t *testing.T) {
	tests := []struct {
		name      string
		perSecond float64
		sample    float64
		want      time.Duration
	}{
		{"unit sample at 200/s", 200, 1, 5 * time.Millisecond},
		{"double sample at 10/s", 10, 2, 200 * time.Millisecond},
		{"zero rate", 0, 1, 0},
		{"saturates", 1e-12, 1e12, time.Duration(1<<63 - 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exponentialGap(tt.perSecond, tt.sample); got != tt.want {
				t.Errorf("exponentialGap(%g, %g) = %s, want %s", tt.perSecond, tt.sample, got, tt.want)
			}
		})
	}
}

func TestBurstFor(t *testing.T) {
	for perSecond, want := range map[float64]int{0.5: 1, 1: 1, 2.5: 3, 20: 20} {
		if got := burstFor(perSecond); got != want {
			t.Errorf("burstFor(%g) = %d, want %d", perSecond, got, want)
		}
	}
}

func TestPoissonPacerHonoursCancellation(t *testing.T) {
	p := poissonPacer(0.000001, func() float64 { return 1 })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("wait() = %v, want context.Canceled", err)
	}
}

func TestNewPacer(t *testing.T) {
	if p := newPacer(LimiterOptions{}); p != nil {
		t.Fatal("expected no pacer without a rate")
	}
	var nilPacer pacer
	if err := nilPacer.wait(context.Background()); err != nil {
		t.Fatalf("nil pacer wait() = %v", err)
	}

	draws := 0
	p := newPacer(LimiterOptions{
		RatePerSecond:  1000,
		ArrivalModel:   ArrivalModelPoisson,
		PoissonSampler: func() float64 { draws++; return 0 },
	})
	for i := 0; i < 3; i++ {
		if err := p.wait(context.Background()); err != nil {
			t.Fatalf("wait() = %v", err)
		}
	}
	if draws != 3 {
		t.Errorf("sampler called %d times, want 3", draws)
	}

	uniform := newPacer(LimiterOptions{RatePerSecond: 20})
	start := time.Now()
	for i := 0; i < 20; i++ {
		if err := uniform.wait(context.Background()); err != nil {
			t.Fatalf("uniform wait() = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("a full burst should be admitted without waiting, took %s", elapsed)
	}
}

func TestSeededExpSamplerIsDeterministic(t *testing.T) {
	a, b := seededExpSampler(42), seededExpSampler(42)
	for i := 0; i < 5; i++ {
		x, y := a(), b()
		if x != y {
			t.Fatalf("draw %d: %g != %g", i, x, y)
		}
		if x < 0 {
			t.Fatalf("draw %d negative: %g", i, x)
		}
	}
}
