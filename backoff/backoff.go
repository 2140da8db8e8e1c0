// Package backoff implements the exponential-backoff delay shape shared
// by the retry engine (§4.5) and the persistence write-behind buffer
// (§4.9), so both compute "next attempt" the same way.
package backoff

import (
	"math"
	"time"
)

// Policy computes delay(attempt) = min(initial * multiplier^(attempt-1), max).
type Policy struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// Delay returns the delay to wait before the given 1-indexed attempt
// number. attempt must be >= 1.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	multiplier := p.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	d := float64(p.Initial) * math.Pow(multiplier, float64(attempt-1))
	if p.Max > 0 && d > float64(p.Max) {
		d = float64(p.Max)
	}
	return time.Duration(d)
}
