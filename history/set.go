package history

import "time"

// Set holds one history per server address. The set of addresses is fixed
// at construction, so lookups need no locking.
type Set struct {
	order     []string
	histories map[string]*History
}

// NewSet creates an empty history of the given capacity for every address.
// Duplicate addresses share one history.
func NewSet(capacity int, addresses ...string) *Set {
	s := &Set{histories: make(map[string]*History, len(addresses))}
	for _, addr := range addresses {
		if _, found := s.histories[addr]; found {
			continue
		}
		s.order = append(s.order, addr)
		s.histories[addr] = New(capacity)
	}
	return s
}

// Get returns the history of addr.
func (s *Set) Get(addr string) (*History, bool) {
	h, found := s.histories[addr]
	return h, found
}

// Addresses returns the addresses in construction order.
func (s *Set) Addresses() []string {
	return append([]string(nil), s.order...)
}

// Snapshot copies every history. Each history is copied under its own lock,
// so the result is consistent per server.
func (s *Set) Snapshot() map[string][]Sample {
	result := make(map[string][]Sample, len(s.histories))
	for addr, h := range s.histories {
		result[addr] = h.Snapshot()
	}
	return result
}

// Max returns the highest RTT across all histories.
func (s *Set) Max() (time.Duration, bool) {
	var max time.Duration
	found := false
	for _, h := range s.histories {
		if m, ok := h.Max(); ok && (!found || m > max) {
			max = m
			found = true
		}
	}
	return max, found
}
