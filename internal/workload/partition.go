package workload

import "fmt"

// Range is a closed integer interval [Start, End].
type Range struct {
	Start int
	End   int
}

// Len returns the number of integers in r, or 0 for an empty range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Start, r.End)
}

// Partition splits [start, end] into parts contiguous, non-overlapping ranges.
// Every range gets (end-start+1)/parts integers and the last one absorbs the
// remainder. parts is reduced to the range length when it is larger, so no
// partition is ever empty.
func Partition(start, end, parts int) ([]Range, error) {
	if end < start {
		return nil, fmt.Errorf("empty range [%d, %d]", start, end)
	}
	if parts <= 0 {
		return nil, fmt.Errorf("parts must be positive, got %d", parts)
	}
	total := end - start + 1
	if parts > total {
		parts = total
	}

	chunk := total / parts
	out := make([]Range, 0, parts)
	lo := start
	for i := 0; i < parts; i++ {
		hi := lo + chunk - 1
		if i == parts-1 {
			hi = end
		}
		out = append(out, Range{Start: lo, End: hi})
		lo = hi + 1
	}
	return out, nil
}
