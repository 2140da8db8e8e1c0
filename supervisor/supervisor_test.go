package supervisor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/olympusrt/olympus/message"
)

// obedientChild runs until ctx is cancelled, counting how many times it
// was started and whether it should die on a signal.
type obedientChild struct {
	mu       sync.Mutex
	starts   int
	die      chan struct{}
	dieErr   error
}

func newObedientChild() *obedientChild {
	return &obedientChild{die: make(chan struct{}, 8)}
}

func (c *obedientChild) run(ctx context.Context) error {
	c.mu.Lock()
	c.starts++
	c.mu.Unlock()
	select {
	case <-ctx.Done():
		return nil
	case <-c.die:
		return c.dieErr
	}
}

func (c *obedientChild) kill(err error) {
	c.dieErr = err
	c.die <- struct{}{}
}

func (c *obedientChild) startCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.starts
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

// S3: one-for-one restarts only the dead child; siblings are unaffected.
func TestOneForOneRestartsOnlyTheDeadChild(t *testing.T) {
	defer goleak.VerifyNone(t)

	a, b := newObedientChild(), newObedientChild()
	sup, err := NewSupervisorWithOptions(context.Background(),
		WithStrategy(OneForOne),
		WithRestartBudget(3, 10*time.Second),
		WithChildren(
			ChildSpec{Name: message.Zeus, Run: a.run},
			ChildSpec{Name: message.Hades, Run: b.run},
		),
	)
	if err != nil {
		t.Fatal(err)
	}
	sup.Run()
	defer sup.Stop()

	waitFor(t, func() bool { return a.startCount() == 1 && b.startCount() == 1 })

	a.kill(errors.New("crashed"))
	waitFor(t, func() bool { return a.startCount() == 2 })

	time.Sleep(50 * time.Millisecond)
	if b.startCount() != 1 {
		t.Errorf("sibling was restarted: b.startCount() = %d", b.startCount())
	}

	rec, ok := sup.Record(message.Zeus)
	if !ok || rec.RestartCount != 1 {
		t.Errorf("record = %+v, want RestartCount 1", rec)
	}
}

// S4: restart budget exhaustion marks the child Dead and stops restarting.
func TestRestartBudgetExhaustionMarksChildDead(t *testing.T) {
	defer goleak.VerifyNone(t)

	var escalated message.ActorName
	var escalatedCount int
	var mu sync.Mutex

	a := newObedientChild()
	sup, err := NewSupervisorWithOptions(context.Background(),
		WithStrategy(OneForOne),
		WithRestartBudget(2, 10*time.Second),
		WithChildren(ChildSpec{Name: message.Zeus, Run: a.run}),
		WithEscalationHandler(func(child message.ActorName, reason error) {
			mu.Lock()
			escalated = child
			escalatedCount++
			mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	sup.Run()
	defer sup.Stop()

	waitFor(t, func() bool { return a.startCount() == 1 })
	for i := 0; i < 3; i++ {
		a.kill(errors.New("crashed"))
		waitFor(t, func() bool { return a.startCount() == i+2 || i == 2 })
		time.Sleep(20 * time.Millisecond)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return escalatedCount == 1
	})
	mu.Lock()
	defer mu.Unlock()
	if escalated != message.Zeus {
		t.Errorf("escalated = %s, want %s", escalated, message.Zeus)
	}

	rec, _ := sup.Record(message.Zeus)
	if rec.Status != StatusDead {
		t.Errorf("status = %s, want Dead", rec.Status)
	}
}

func TestRestForOneRestartsDependents(t *testing.T) {
	defer goleak.VerifyNone(t)

	a, b, c := newObedientChild(), newObedientChild(), newObedientChild()
	sup, err := NewSupervisorWithOptions(context.Background(),
		WithStrategy(RestForOne),
		WithRestartBudget(3, 10*time.Second),
		WithChildren(
			ChildSpec{Name: message.Zeus, Run: a.run},
			ChildSpec{Name: message.Hades, Run: b.run},
			ChildSpec{Name: message.Hera, Run: c.run},
		),
	)
	if err != nil {
		t.Fatal(err)
	}
	sup.Run()
	defer sup.Stop()

	waitFor(t, func() bool {
		return a.startCount() == 1 && b.startCount() == 1 && c.startCount() == 1
	})

	b.kill(errors.New("crashed"))
	waitFor(t, func() bool { return b.startCount() == 2 && c.startCount() == 2 })

	time.Sleep(50 * time.Millisecond)
	if a.startCount() != 1 {
		t.Errorf("a started before it in declaration order was restarted: %d", a.startCount())
	}
}

func TestSupervisorStopTerminatesAllChildren(t *testing.T) {
	defer goleak.VerifyNone(t)

	a, b := newObedientChild(), newObedientChild()
	sup, err := NewSupervisorWithOptions(context.Background(),
		WithChildren(
			ChildSpec{Name: message.Zeus, Run: a.run},
			ChildSpec{Name: message.Hades, Run: b.run},
		),
	)
	if err != nil {
		t.Fatal(err)
	}
	sup.Run()
	waitFor(t, func() bool { return a.startCount() == 1 && b.startCount() == 1 })

	sup.Stop()
	sup.Wait()

	if sup.CurrentWorkerCount() != 0 {
		t.Errorf("worker count after Stop = %d, want 0", sup.CurrentWorkerCount())
	}
}
