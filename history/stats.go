package history

import (
	"math"
	"time"
)

// Stats aggregates the samples of a history into a single data point.
type Stats struct {
	Sent   int
	Lost   int
	Last   Sample
	Best   time.Duration
	Worst  time.Duration
	Mean   time.Duration
	StdDev time.Duration
}

// LossRatio returns the share of lost samples, 0 for an empty history.
func (s Stats) LossRatio() float64 {
	if s.Sent == 0 {
		return 0
	}
	return float64(s.Lost) / float64(s.Sent)
}

// Stats computes the aggregate over the current window.
func (h *History) Stats() Stats {
	return Compute(h.Snapshot())
}

// Compute aggregates samples.
func Compute(samples []Sample) Stats {
	st := Stats{Sent: len(samples)}
	if len(samples) == 0 {
		return st
	}
	st.Last = samples[len(samples)-1]

	var total float64
	var extremeFound bool
	rtts := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.Lost {
			st.Lost++
			continue
		}

		if !extremeFound || s.RTT < st.Best {
			st.Best = s.RTT
		}
		if !extremeFound || s.RTT > st.Worst {
			st.Worst = s.RTT
		}
		extremeFound = true

		rtts = append(rtts, float64(s.RTT))
		total += float64(s.RTT)
	}

	if len(rtts) == 0 {
		return st
	}

	mean := total / float64(len(rtts))
	var sumSquares float64
	for _, rtt := range rtts {
		sumSquares += math.Pow(rtt-mean, 2)
	}

	st.Mean = time.Duration(mean)
	st.StdDev = time.Duration(math.Sqrt(sumSquares / float64(len(rtts))))
	return st
}
