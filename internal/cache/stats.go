package cache

import (
	"fmt"
	"sync/atomic"
)

// Stats counts cache lookups. The zero value is ready to use.
type Stats struct {
	hits   atomic.Int64
	misses atomic.Int64
}

func (s *Stats) recordHit() {
	s.hits.Add(1)
}

func (s *Stats) recordMiss() {
	s.misses.Add(1)
}

func (s *Stats) Hits() int64 {
	return s.hits.Load()
}

func (s *Stats) Misses() int64 {
	return s.misses.Load()
}

// HitRate returns hits over lookups, or 0 without lookups.
func (s *Stats) HitRate() float64 {
	total := s.Hits() + s.Misses()
	if total == 0 {
		return 0
	}

	return float64(s.Hits()) / float64(total)
}

func (s *Stats) String() string {
	if s.Hits() == 0 && s.Misses() == 0 {
		return "Cache stats: no lookups"
	}

	return fmt.Sprintf("Cache stats: hits=%d misses=%d hit_rate=%.1f%%", s.Hits(), s.Misses(), s.HitRate()*100)
}
