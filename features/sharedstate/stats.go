package sharedstate

import "github.com/on-the-ground/composable_ive_go/shared"

// Stats is the value both tabs share.
type Stats struct {
	Count          int `json:"count"`
	MaxCount       int `json:"maxCount"`
	MinCount       int `json:"minCount"`
	NumberOfCounts int `json:"numberOfCounts"`
}

func (s *Stats) Increment() {
	s.Count++
	s.NumberOfCounts++
	s.MaxCount = max(s.Count, s.MaxCount)
}

func (s *Stats) Decrement() {
	s.Count--
	s.NumberOfCounts++
	s.MinCount = min(s.Count, s.MinCount)
}

const StatsKeyName = "stats"

// StatsKey is where the stats live on backend.
func StatsKey(backend *shared.Backend) shared.Key[Stats] {
	return shared.NewKey[Stats](backend, StatsKeyName)
}

func isPrime(p int) bool {
	if p <= 1 {
		return false
	}
	if p <= 3 {
		return true
	}
	for i := 2; i*i <= p; i++ {
		if p%i == 0 {
			return false
		}
	}
	return true
}
