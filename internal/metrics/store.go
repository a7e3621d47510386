package metrics

import "sync"

// FailureToken is the result recorded for a unit that failed after all retries.
const FailureToken = "ERR"

// Record is one measured unit of work. Records are never modified after they are appended.
type Record struct {
	Index       int     `json:"index" yaml:"index"`
	ElapsedMs   float64 `json:"elapsed_ms" yaml:"elapsed_ms"`
	LoadPercent float64 `json:"load_percent" yaml:"load_percent"`
	Result      string  `json:"result" yaml:"result"`
}

// Store is the append-only sink shared by all concurrent units of a run.
type Store struct {
	mu      sync.Mutex
	records []Record
	prices  []float64
}

func NewStore() *Store {
	return &Store{}
}

// Clear discards all records and price samples. It must not race with a running scenario.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.prices = nil
}

// AddRecord appends a record and returns it. Index is the write position, which under
// concurrent execution is completion order rather than submission order.
func (s *Store) AddRecord(elapsedMs, loadPercent float64, result string) Record {
	if elapsedMs < 0 {
		elapsedMs = 0
	}
	if loadPercent < 0 {
		loadPercent = 0
	}
	if loadPercent > 100 {
		loadPercent = 100
	}
	if result == "" {
		result = FailureToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec := Record{
		Index:       len(s.records),
		ElapsedMs:   elapsedMs,
		LoadPercent: loadPercent,
		Result:      result,
	}
	s.records = append(s.records, rec)
	return rec
}

// AddPrice appends one quote sample.
func (s *Store) AddPrice(price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices = append(s.prices, price)
}

// Snapshot returns a copy of the records written so far.
func (s *Store) Snapshot() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Prices returns a copy of the price samples.
func (s *Store) Prices() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.prices))
	copy(out, s.prices)
	return out
}

// Len returns the number of records written so far.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// ExecutionTimes returns the elapsed-time column in record order.
func (s *Store) ExecutionTimes() []float64 {
	recs := s.Snapshot()
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i] = r.ElapsedMs
	}
	return out
}

// ThreadLoads returns the load column in record order.
func (s *Store) ThreadLoads() []float64 {
	recs := s.Snapshot()
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i] = r.LoadPercent
	}
	return out
}

// Results returns the result-token column in record order.
func (s *Store) Results() []string {
	recs := s.Snapshot()
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Result
	}
	return out
}
