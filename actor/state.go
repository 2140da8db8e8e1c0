package actor

import (
	"sync"
	"time"

	"github.com/olympusrt/olympus/message"
)

// Status is the per-actor runtime status (§3).
type Status string

const (
	StatusHealthy    Status = "Healthy"
	StatusDegraded   Status = "Degraded"
	StatusUnhealthy  Status = "Unhealthy"
	StatusDead       Status = "Dead"
	StatusRecovering Status = "Recovering"
)

// Lifecycle is the phase an actor occupies (§3, "Lifecycle").
type Lifecycle string

const (
	LifecycleCreated     Lifecycle = "Created"
	LifecycleInitialized Lifecycle = "Initialized"
	LifecycleRunning     Lifecycle = "Running"
	LifecycleDraining    Lifecycle = "Draining"
	LifecycleShutDown    Lifecycle = "ShutDown"
	LifecycleRecovering  Lifecycle = "Recovering"
	LifecycleDead        Lifecycle = "Dead"
)

// State is the per-actor runtime record (§3). It is mutated only by the
// actor's own runner goroutine; reads from other goroutines (health
// endpoints, the supervisor) take Snapshot, which copies out under a
// read lock rather than exposing the live struct.
type State struct {
	mu sync.RWMutex

	name      message.ActorName
	status    Status
	lifecycle Lifecycle

	messagesProcessed uint64
	errors            uint64

	startedAt       time.Time
	lastMessageAt   time.Time
	lastErrorString string
}

// NewState returns a freshly-created actor state in the Created lifecycle
// phase.
func NewState(name message.ActorName) *State {
	return &State{
		name:      name,
		status:    StatusHealthy,
		lifecycle: LifecycleCreated,
		startedAt: time.Now().UTC(),
	}
}

// Snapshot is an immutable point-in-time copy of State, safe to read
// without holding any lock.
type Snapshot struct {
	Name              message.ActorName
	Status            Status
	Lifecycle         Lifecycle
	MessagesProcessed uint64
	Errors            uint64
	StartedAt         time.Time
	LastMessageAt     time.Time
	LastError         string
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Name:              s.name,
		Status:            s.status,
		Lifecycle:         s.lifecycle,
		MessagesProcessed: s.messagesProcessed,
		Errors:            s.errors,
		StartedAt:         s.startedAt,
		LastMessageAt:     s.lastMessageAt,
		LastError:         s.lastErrorString,
	}
}

func (s *State) SetLifecycle(l Lifecycle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lifecycle = l
}

func (s *State) SetStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// RecordSuccess increments the message counter and stamps the
// last-message timestamp, per the contract note in §4.1: a returned Ok
// increments the message counter.
func (s *State) RecordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messagesProcessed++
	s.lastMessageAt = time.Now().UTC()
}

// RecordError increments the error counter and records the error's text,
// per §4.1: Err increments the error counter.
func (s *State) RecordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors++
	s.lastMessageAt = time.Now().UTC()
	if err != nil {
		s.lastErrorString = err.Error()
	}
}
