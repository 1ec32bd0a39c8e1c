package matcher

import "sort"

// Stats counts match outcomes per strategy tag, globally and per country.
type Stats struct {
	Global     map[string]int
	PerCountry map[string]map[string]int
}

// NewStats returns empty counters.
func NewStats() *Stats {
	return &Stats{
		Global:     make(map[string]int),
		PerCountry: make(map[string]map[string]int),
	}
}

// Add records one outcome.
func (s *Stats) Add(strategy, country string) {
	s.Global[strategy]++
	counter, ok := s.PerCountry[country]
	if !ok {
		counter = make(map[string]int)
		s.PerCountry[country] = counter
	}
	counter[strategy]++
}

// Total is the number of outcomes recorded.
func (s *Stats) Total() int {
	total := 0
	for _, n := range s.Global {
		total += n
	}
	return total
}

// Countries returns the seen country keys, sorted.
func (s *Stats) Countries() []string {
	out := make([]string, 0, len(s.PerCountry))
	for country := range s.PerCountry {
		out = append(out, country)
	}
	sort.Strings(out)
	return out
}
