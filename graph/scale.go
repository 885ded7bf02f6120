package graph

import (
	"math"
	"sync"
)

// Scaler maintains the vertical axis scale in millis. It expands at once to
// fit a new peak and otherwise shrinks geometrically by the decay rate per
// observation, never below its floor.
type Scaler struct {
	floor    float64
	decay    float64
	headroom float64
	current  float64
	mu       sync.RWMutex
}

// NewScaler creates a scaler which never goes below floor. The scale starts
// at the floor.
func NewScaler(floor, decay, headroom float64) *Scaler {
	if floor <= 0 || math.IsNaN(floor) {
		floor = 1
	}
	if decay <= 0 || decay > 1 {
		decay = 1
	}
	if headroom < 1 {
		headroom = 1
	}

	return &Scaler{
		floor:    floor,
		decay:    decay,
		headroom: headroom,
		current:  floor,
	}
}

// Observe feeds the highest latency currently visible and returns the new
// scale. NaN (nothing observed) lets the scale decay towards the floor.
func (s *Scaler) Observe(maxMillis float64) float64 {
	target := s.floor
	if !math.IsNaN(maxMillis) && maxMillis*s.headroom > target {
		target = maxMillis * s.headroom
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current < target {
		s.current = target
	} else {
		s.current = math.Max(target, s.current*s.decay)
	}
	return s.current
}

// Value returns the current scale.
func (s *Scaler) Value() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Floor returns the lower bound of the scale.
func (s *Scaler) Floor() float64 {
	return s.floor
}
