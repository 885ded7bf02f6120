package history

import (
	"math"
	"sync"
	"time"
)

// Sample stores the information about a single ping, in particular
// the round-trip time or whether the packet was lost.
type Sample struct {
	RTT  time.Duration
	Lost bool
	At   time.Time
}

// Missing returns a lost sample taken at t.
func Missing(t time.Time) Sample {
	return Sample{Lost: true, At: t}
}

// Millis returns the RTT in milliseconds, or NaN for a lost sample.
func (s Sample) Millis() float64 {
	if s.Lost {
		return math.NaN()
	}
	return float64(s.RTT) / float64(time.Millisecond)
}

// History represents the ping history for a single server. It keeps the
// newest Cap() samples and evicts the oldest one first.
type History struct {
	samples []Sample
	start   int
	count   int
	sync.RWMutex
}

// New creates a history holding up to capacity samples (at least one).
func New(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{samples: make([]Sample, capacity)}
}

// Add appends s, evicting the oldest sample when the history is full.
func (h *History) Add(s Sample) {
	h.Lock()
	defer h.Unlock()

	size := len(h.samples)
	if h.count < size {
		h.samples[(h.start+h.count)%size] = s
		h.count++
		return
	}

	h.samples[h.start] = s
	h.start = (h.start + 1) % size
}

// AddResult saves a ping result into the history. A non-nil err marks the
// sample as lost.
func (h *History) AddResult(rtt time.Duration, err error, at time.Time) {
	if err != nil {
		h.Add(Missing(at))
		return
	}
	h.Add(Sample{RTT: rtt, At: at})
}

// Len returns the number of stored samples.
func (h *History) Len() int {
	h.RLock()
	defer h.RUnlock()
	return h.count
}

// Cap returns the maximum number of samples.
func (h *History) Cap() int {
	return len(h.samples)
}

// Snapshot returns a copy of the samples, oldest first.
func (h *History) Snapshot() []Sample {
	h.RLock()
	defer h.RUnlock()

	result := make([]Sample, h.count)
	for i := range result {
		result[i] = h.at(i)
	}
	return result
}

// Last returns the newest sample.
func (h *History) Last() (Sample, bool) {
	h.RLock()
	defer h.RUnlock()

	if h.count == 0 {
		return Sample{}, false
	}
	return h.at(h.count - 1), true
}

// Max returns the highest RTT of all samples which were not lost.
func (h *History) Max() (time.Duration, bool) {
	h.RLock()
	defer h.RUnlock()

	var max time.Duration
	found := false
	for i := 0; i < h.count; i++ {
		s := h.at(i)
		if s.Lost {
			continue
		}
		if !found || s.RTT > max {
			max = s.RTT
			found = true
		}
	}
	return max, found
}

// at needs to be called with the lock held.
func (h *History) at(i int) Sample {
	return h.samples[(h.start+i)%len(h.samples)]
}
