package workload

import (
	"math"
	"math/big"
)

// burnSpan is the length of the floating-point product computed per burn round.
const burnSpan = 10_000

// BurnFactorials repeats a floating-point factorial product rounds times and
// returns the last product. The value overflows to +Inf and is only returned so
// the compiler cannot drop the loop.
func BurnFactorials(rounds int) float64 {
	var product float64
	for r := 0; r < rounds; r++ {
		product = 1
		for i := 1; i <= burnSpan; i++ {
			product *= float64(i)
		}
	}
	return product
}

// Factorial returns n! using exact integer arithmetic. n < 0 yields 1.
func Factorial(n int) *big.Int {
	result := big.NewInt(1)
	if n < 2 {
		return result
	}
	return result.MulRange(1, int64(n))
}

// IsPrime reports whether n is prime using trial division up to sqrt(n).
func IsPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n < 4 {
		return true
	}
	if n%2 == 0 {
		return false
	}
	limit := int(math.Sqrt(float64(n)))
	for d := 3; d <= limit; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// CountPrimes returns the number of primes in the closed range r.
func CountPrimes(r Range) int {
	count := 0
	for n := r.Start; n <= r.End; n++ {
		if IsPrime(n) {
			count++
		}
	}
	return count
}
