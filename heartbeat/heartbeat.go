// Package heartbeat implements liveness detection via timestamp staleness
// (§4.7). Actors report a Record periodically; Monitor tracks the last
// seen timestamp per actor and flags anyone who has gone quiet.
package heartbeat

import (
	"sync"
	"time"

	"github.com/olympusrt/olympus/message"
)

// Record is the per-actor liveness payload (§3, "HeartbeatRecord").
type Record struct {
	Actor         message.ActorName
	LastSeen      time.Time
	Status        string
	Load          float64
	MemoryMB      float64
	UptimeSeconds uint64
}

// Health is the computed liveness verdict for one actor, as returned by
// Monitor.GetHealth.
type Health struct {
	Actor     message.ActorName
	Healthy   bool
	LastSeen  time.Time
	SinceLast time.Duration
}

const defaultLivenessWindow = 60 * time.Second

// Monitor stores the last-seen timestamp per actor and computes health on
// demand. It takes no remediation action itself — the supervisor is the
// remediator (§4.7).
type Monitor struct {
	mu             sync.RWMutex
	records        map[message.ActorName]Record
	livenessWindow time.Duration
	alertCount     uint64
	now            func() time.Time
}

// NewMonitor returns a Monitor using the given liveness window; zero means
// the §6 default of 60s.
func NewMonitor(livenessWindow time.Duration) *Monitor {
	if livenessWindow <= 0 {
		livenessWindow = defaultLivenessWindow
	}
	return &Monitor{
		records:        make(map[message.ActorName]Record),
		livenessWindow: livenessWindow,
		now:            time.Now,
	}
}

// Beat records a heartbeat for the given actor.
func (m *Monitor) Beat(r Record) {
	if r.LastSeen.IsZero() {
		r.LastSeen = m.now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.Actor] = r
}

// GetHealth computes healthy := now - last_seen < liveness_window for
// every actor that has ever reported a heartbeat, plus every actor named
// in `known` that has never reported one (treated as never-healthy).
func (m *Monitor) GetHealth(known []message.ActorName) []Health {
	now := m.now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[message.ActorName]bool, len(known))
	out := make([]Health, 0, len(known))

	for _, name := range known {
		seen[name] = true
		rec, ok := m.records[name]
		if !ok {
			out = append(out, Health{Actor: name, Healthy: false})
			continue
		}
		since := now.Sub(rec.LastSeen)
		out = append(out, Health{
			Actor:     name,
			Healthy:   since < m.livenessWindow,
			LastSeen:  rec.LastSeen,
			SinceLast: since,
		})
	}

	for name, rec := range m.records {
		if seen[name] {
			continue
		}
		since := now.Sub(rec.LastSeen)
		out = append(out, Health{
			Actor:     name,
			Healthy:   since < m.livenessWindow,
			LastSeen:  rec.LastSeen,
			SinceLast: since,
		})
	}

	return out
}

// Unhealthy is a convenience wrapper over GetHealth that also increments
// the alert counter once per unhealthy actor returned, mirroring §4.7's
// "For every not-healthy actor... the alert counter increments."
func (m *Monitor) Unhealthy(known []message.ActorName) []message.ActorName {
	var unhealthy []message.ActorName
	for _, h := range m.GetHealth(known) {
		if !h.Healthy {
			unhealthy = append(unhealthy, h.Actor)
			m.mu.Lock()
			m.alertCount++
			m.mu.Unlock()
		}
	}
	return unhealthy
}

// AlertCount returns the number of unhealthy verdicts raised so far.
func (m *Monitor) AlertCount() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.alertCount
}
