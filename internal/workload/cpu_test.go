package workload_test

import (
	"math"
	"testing"

	"github.com/torosent/crankbench/internal/workload"
)

func TestFactorial(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{n: -3, want: "1"},
		{n: 0, want: "1"},
		{n: 1, want: "1"},
		{n: 5, want: "120"},
		{n: 20, want: "2432902008176640000"},
		{n: 25, want: "15511210043330985984000000"},
	}
	for _, tt := range tests {
		if got := workload.Factorial(tt.n).String(); got != tt.want {
			t.Errorf("Factorial(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

func TestBurnFactorials(t *testing.T) {
	if got := workload.BurnFactorials(0); got != 0 {
		t.Errorf("zero rounds should return 0, got %v", got)
	}
	if got := workload.BurnFactorials(2); !math.IsInf(got, 1) {
		t.Errorf("expected +Inf product, got %v", got)
	}
}

func TestIsPrimeMatchesSieve(t *testing.T) {
	const limit = 2000
	composite := make([]bool, limit+1)
	for i := 2; i*i <= limit; i++ {
		if !composite[i] {
			for j := i * i; j <= limit; j += i {
				composite[j] = true
			}
		}
	}
	for n := -2; n <= limit; n++ {
		want := n >= 2 && !composite[n]
		if got := workload.IsPrime(n); got != want {
			t.Errorf("IsPrime(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestCountPrimes(t *testing.T) {
	tests := []struct {
		r    workload.Range
		want int
	}{
		{workload.Range{Start: 2, End: 30}, 10},
		{workload.Range{Start: 2, End: 100}, 25},
		{workload.Range{Start: 2, End: 10000}, 1229},
		{workload.Range{Start: 14, End: 16}, 0},
		{workload.Range{Start: 10, End: 2}, 0},
	}
	for _, tt := range tests {
		if got := workload.CountPrimes(tt.r); got != tt.want {
			t.Errorf("CountPrimes(%v) = %d, want %d", tt.r, got, tt.want)
		}
	}
}
