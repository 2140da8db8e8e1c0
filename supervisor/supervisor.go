// Package supervisor implements OTP-style child supervision (§4.6):
// restart strategies (one-for-one, one-for-all, rest-for-one, escalate),
// a sliding-window restart budget, and ordered startup/shutdown. It
// generalizes the teacher's Supervisor (go.fergus.london/go-supervise/
// supervisor): the same WaitGroup-backed worker bookkeeping and
// Option-configured constructor, but workers are now named children with
// a SupervisionRecord (§3) instead of anonymous, identical goroutine
// pools.
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/olympusrt/olympus/logger"
	"github.com/olympusrt/olympus/message"
)

// RestartStrategy names which children restart when one dies (§4.6).
type RestartStrategy string

const (
	OneForOne  RestartStrategy = "OneForOne"
	OneForAll  RestartStrategy = "OneForAll"
	RestForOne RestartStrategy = "RestForOne"
	Escalate   RestartStrategy = "Escalate"
)

// Status is a child's supervision status (§3, "SupervisionRecord").
type Status string

const (
	StatusRunning    Status = "Running"
	StatusRecovering Status = "Recovering"
	StatusDead       Status = "Dead"
	StatusStopped    Status = "Stopped"
)

// ChildFunc runs one child's supervised work. It must observe ctx
// cancellation and return promptly when it is done (§4.2's "Supervisable
// must handle context cancellation correctly" carries over unchanged); it
// must NOT recover() its own panics — the Supervisor's worker wrapper
// does that, exactly as the teacher's worker loop recovered panics from
// Supervisable.
type ChildFunc func(ctx context.Context) error

// ChildSpec is one supervised child (§3, "SupervisionRecord" minus the
// mutable fields, which live in record).
type ChildSpec struct {
	Name message.ActorName
	Run  ChildFunc
}

// Record is an immutable snapshot of one child's supervision state,
// exposed to callers (health endpoints, tests) without holding a lock.
type Record struct {
	Name          message.ActorName
	Status        Status
	RestartCount  int
	LastRestart   time.Time
	Strategy      RestartStrategy
	Dependents    []message.ActorName
}

type childState struct {
	spec              ChildSpec
	status            Status
	restartCount      int
	restartTimestamps []time.Time
	lastRestart       time.Time
	dependents        []message.ActorName
	cancel            context.CancelFunc
	done              chan struct{}
}

// EscalationHandler is invoked when a child exhausts its restart budget
// under any strategy, or immediately under Escalate (§4.6). At the top
// level there is no parent supervisor, so the handler's job is to log and
// refuse new children, matching §4.6's "top-level: log and stop accepting
// new children".
type EscalationHandler func(child message.ActorName, reason error)

// Supervisor is one supervision node: an ordered list of named children,
// a restart strategy, and a restart budget (§4.6).
type Supervisor struct {
	mtx sync.Mutex

	strategy      RestartStrategy
	maxRestarts   int
	restartWindow time.Duration
	onEscalate    EscalationHandler

	children []ChildSpec // declaration order; startup order; shutdown is the reverse
	states   map[message.ActorName]*childState

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped bool

	now func() time.Time
}

type Option func(*Supervisor) error

// WithChildren appends children in declaration order. Later WithChildren
// calls append rather than replace.
func WithChildren(children ...ChildSpec) Option {
	return func(s *Supervisor) error {
		s.children = append(s.children, children...)
		return nil
	}
}

// WithStrategy sets the restart strategy applied on every child death.
// Default is OneForOne.
func WithStrategy(strategy RestartStrategy) Option {
	return func(s *Supervisor) error {
		s.strategy = strategy
		return nil
	}
}

// WithRestartBudget sets the §6 restart-budget tuning: maxRestarts
// restarts permitted within window before a child is marked Dead and the
// failure is escalated.
func WithRestartBudget(maxRestarts int, window time.Duration) Option {
	return func(s *Supervisor) error {
		s.maxRestarts = maxRestarts
		s.restartWindow = window
		return nil
	}
}

// WithEscalationHandler sets the callback invoked when a child's subtree
// is escalated (§4.6).
func WithEscalationHandler(h EscalationHandler) Option {
	return func(s *Supervisor) error {
		s.onEscalate = h
		return nil
	}
}

// NewSupervisorWithOptions configures a Supervisor. Defaults match §6:
// OneForOne strategy, max_restarts=3, restart_window_seconds=30.
func NewSupervisorWithOptions(ctx context.Context, opts ...Option) (*Supervisor, error) {
	s := &Supervisor{
		strategy:      OneForOne,
		maxRestarts:   3,
		restartWindow: 30 * time.Second,
		states:        make(map[message.ActorName]*childState),
		now:           time.Now,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	return s, nil
}

// Run starts every declared child in declaration order (§4.6).
func (s *Supervisor) Run() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for i, child := range s.children {
		dependents := make([]message.ActorName, 0, len(s.children)-i-1)
		for _, later := range s.children[i+1:] {
			dependents = append(dependents, later.Name)
		}
		st := &childState{spec: child, dependents: dependents}
		s.states[child.Name] = st
		s.startLocked(st)
	}
}

// startLocked spawns the goroutine for one child. Must be called holding
// mtx; it does not block.
func (s *Supervisor) startLocked(st *childState) {
	childCtx, cancel := context.WithCancel(s.ctx)
	st.cancel = cancel
	st.done = make(chan struct{})
	st.status = StatusRunning

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(st.done)

		err := s.safeRun(st.spec, childCtx)
		if err == nil && childCtx.Err() != nil {
			// Graceful stop requested by Stop/Restart; no death to handle.
			return
		}
		s.handleExit(st.spec.Name, err)
	}()
}

// safeRun recovers a panicking ChildFunc, treating it as a death exactly
// like any other returned error (§4.6: "A child whose initialize fails is
// treated as an immediate death" generalizes to any panic).
func (s *Supervisor) safeRun(spec ChildSpec, ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("child %s panicked: %v", spec.Name, p)
		}
	}()
	return spec.Run(ctx)
}

// handleExit applies the configured restart strategy to a child's death
// (§4.6). It is invoked from the child's own goroutine after Run returns
// a non-nil error, or exits without the parent context being cancelled.
func (s *Supervisor) handleExit(name message.ActorName, reason error) {
	s.mtx.Lock()
	if s.stopped {
		s.mtx.Unlock()
		return
	}
	st, ok := s.states[name]
	if !ok {
		s.mtx.Unlock()
		return
	}

	if !s.withinBudgetLocked(st) {
		st.status = StatusDead
		s.mtx.Unlock()
		logger.Log(fmt.Sprintf("supervisor: %s exhausted its restart budget: %v", name, reason))
		s.escalate(name, reason)
		return
	}

	strategy := s.strategy
	s.mtx.Unlock()

	switch strategy {
	case OneForOne:
		s.restartOne(name)
	case OneForAll:
		s.restartAll(name)
	case RestForOne:
		s.restartFrom(name)
	case Escalate:
		s.escalate(name, reason)
	default:
		s.restartOne(name)
	}
}

// withinBudgetLocked records a restart attempt for st in the sliding
// window and reports whether it is still within budget (testable
// property 5: restarts within any window never exceed max_restarts+1).
// Must be called holding mtx.
func (s *Supervisor) withinBudgetLocked(st *childState) bool {
	now := s.now()
	cutoff := now.Add(-s.restartWindow)

	kept := st.restartTimestamps[:0]
	for _, t := range st.restartTimestamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	st.restartTimestamps = kept
	st.restartCount++
	st.lastRestart = now

	return len(kept) <= s.maxRestarts
}

// restartOne restarts only the named child (OneForOne, §4.6).
func (s *Supervisor) restartOne(name message.ActorName) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.stopped {
		return
	}
	st, ok := s.states[name]
	if !ok {
		return
	}
	st.status = StatusRecovering
	s.startLocked(st)
}

// restartFrom restarts name and every child declared after it (RestForOne,
// §4.6), preserving declaration order.
func (s *Supervisor) restartFrom(name message.ActorName) {
	s.mtx.Lock()
	st, ok := s.states[name]
	if !ok || s.stopped {
		s.mtx.Unlock()
		return
	}
	targets := append([]message.ActorName{name}, st.dependents...)
	s.mtx.Unlock()

	// name itself has already exited: this runs on its goroutine, whose
	// done channel is closed only after handleExit returns.
	for _, target := range st.dependents {
		s.stopRunning(target)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.stopped {
		return
	}
	for _, target := range targets {
		if tst, ok := s.states[target]; ok {
			tst.status = StatusRecovering
			s.startLocked(tst)
		}
	}
}

// restartAll stops and restarts every declared child (OneForAll, §4.6).
// dead has already exited and is only restarted.
func (s *Supervisor) restartAll(dead message.ActorName) {
	s.mtx.Lock()
	if s.stopped {
		s.mtx.Unlock()
		return
	}
	all := make([]message.ActorName, len(s.children))
	for i, c := range s.children {
		all[i] = c.Name
	}
	s.mtx.Unlock()

	for _, name := range all {
		if name == dead {
			continue
		}
		s.stopRunning(name)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.stopped {
		return
	}
	for _, name := range all {
		if st, ok := s.states[name]; ok {
			st.status = StatusRecovering
			s.startLocked(st)
		}
	}
}

// stopRunning cancels a single running child's context and waits for its
// goroutine to exit, without treating that exit as a new death (the
// caller is already mid-restart).
func (s *Supervisor) stopRunning(name message.ActorName) {
	s.mtx.Lock()
	st, ok := s.states[name]
	if !ok || st.cancel == nil {
		s.mtx.Unlock()
		return
	}
	cancel, done := st.cancel, st.done
	s.mtx.Unlock()

	cancel()
	<-done
}

// escalate surrenders this subtree: at the top level there is no parent,
// so escalation calls the escalation handler, or logs the failure when
// none is set (§4.6).
func (s *Supervisor) escalate(name message.ActorName, reason error) {
	if s.onEscalate != nil {
		s.onEscalate(name, reason)
	} else {
		logger.Log(fmt.Sprintf("supervisor: escalating failure of %s: %v", name, reason))
	}
}

// Stop terminates every running child in the reverse of declaration
// order (§4.6) and blocks until all have exited.
func (s *Supervisor) Stop() {
	s.mtx.Lock()
	if s.stopped {
		s.mtx.Unlock()
		return
	}
	s.stopped = true
	children := make([]ChildSpec, len(s.children))
	copy(children, s.children)
	s.mtx.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		s.stopRunning(children[i].Name)
	}

	s.mtx.Lock()
	for _, st := range s.states {
		if st.status != StatusDead {
			st.status = StatusStopped
		}
	}
	s.mtx.Unlock()
	s.cancel()
}

// Restart stops every child and runs them all again, in declaration
// order, mirroring the teacher's Stop-then-Run convenience method.
func (s *Supervisor) Restart() {
	s.mtx.Lock()
	s.stopped = false
	children := make([]ChildSpec, len(s.children))
	copy(children, s.children)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.mtx.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		s.stopRunning(children[i].Name)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()
	for _, child := range children {
		if st, ok := s.states[child.Name]; ok {
			s.startLocked(st)
		}
	}
}

// Wait blocks until every child goroutine has exited.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

// Record returns a point-in-time snapshot of one child's supervision
// state, or ok=false if name is not a declared child.
func (s *Supervisor) Record(name message.ActorName) (Record, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	st, ok := s.states[name]
	if !ok {
		return Record{}, false
	}
	return Record{
		Name:         name,
		Status:       st.status,
		RestartCount: st.restartCount,
		LastRestart:  st.lastRestart,
		Strategy:     s.strategy,
		Dependents:   append([]message.ActorName(nil), st.dependents...),
	}, true
}

// Records returns a snapshot of every child's supervision state, in
// declaration order.
func (s *Supervisor) Records() []Record {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	out := make([]Record, 0, len(s.children))
	for _, child := range s.children {
		st := s.states[child.Name]
		if st == nil {
			continue
		}
		out = append(out, Record{
			Name:         child.Name,
			Status:       st.status,
			RestartCount: st.restartCount,
			LastRestart:  st.lastRestart,
			Strategy:     s.strategy,
			Dependents:   append([]message.ActorName(nil), st.dependents...),
		})
	}
	return out
}

// CurrentWorkerCount returns the number of children not in a Dead or
// Stopped state.
func (s *Supervisor) CurrentWorkerCount() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	n := 0
	for _, st := range s.states {
		if st.status == StatusRunning || st.status == StatusRecovering {
			n++
		}
	}
	return n
}

// NotifyExit implements actor.Notifier, letting a Supervisor drive
// actor.Runner goroutines directly: the runner calls NotifyExit when its
// actor dies, which this type forwards into handleExit exactly as if the
// ChildFunc itself had returned that error.
func (s *Supervisor) NotifyExit(name message.ActorName, reason error) {
	s.handleExit(name, reason)
}
