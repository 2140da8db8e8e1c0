package actor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/olympusrt/olympus/heartbeat"
	"github.com/olympusrt/olympus/mailbox"
	"github.com/olympusrt/olympus/message"
)

type testContract struct {
	name          message.ActorName
	initErr       error
	handleErr     error
	panicOnHandle bool
	handled       []message.Message
	initialized   int
	shutdowns     int
}

func (c *testContract) Name() message.ActorName { return c.name }
func (c *testContract) Domain() Domain           { return DomainTesting }

func (c *testContract) Initialize(ctx context.Context) error {
	c.initialized++
	return c.initErr
}

func (c *testContract) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	if c.panicOnHandle {
		panic("handle panic")
	}
	c.handled = append(c.handled, msg)
	if c.handleErr != nil {
		return nil, c.handleErr
	}
	return message.AckResponse{MessageID: msg.ID}, nil
}

func (c *testContract) Shutdown(ctx context.Context) error {
	c.shutdowns++
	return nil
}

func (c *testContract) Heartbeat() heartbeat.Record { return heartbeat.Record{Actor: c.name} }
func (c *testContract) HealthCheck() HealthStatus   { return HealthStatus{Actor: c.name} }

func (c *testContract) PersistentState() (json.RawMessage, error) { return json.RawMessage("{}"), nil }
func (c *testContract) LoadState(state json.RawMessage) error     { return nil }

type capturingNotifier struct {
	name   message.ActorName
	reason error
	called bool
}

func (n *capturingNotifier) NotifyExit(name message.ActorName, reason error) {
	n.name, n.reason, n.called = name, reason, true
}

func TestRunnerProcessesMessagesThenDrains(t *testing.T) {
	defer goleak.VerifyNone(t)

	contract := &testContract{name: message.Chaos}
	mb := mailbox.New(message.Chaos, 4)
	state := NewState(message.Chaos)
	runner := NewRunner(contract, mb, state, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	if err := mb.Deliver(message.New(message.Chaos, message.HealthStatusQuery{})); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	mb.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected graceful exit, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("runner did not exit after mailbox close")
	}

	if contract.initialized != 1 {
		t.Errorf("initialize called %d times, want 1", contract.initialized)
	}
	if len(contract.handled) != 1 {
		t.Errorf("handled %d messages, want 1", len(contract.handled))
	}
	if contract.shutdowns != 1 {
		t.Errorf("shutdown called %d times, want 1", contract.shutdowns)
	}
	snap := state.Snapshot()
	if snap.MessagesProcessed != 1 {
		t.Errorf("messages processed = %d, want 1", snap.MessagesProcessed)
	}
}

func TestRunnerSurvivesHandlerPanic(t *testing.T) {
	defer goleak.VerifyNone(t)

	contract := &testContract{name: message.Chaos, panicOnHandle: true}
	mb := mailbox.New(message.Chaos, 4)
	state := NewState(message.Chaos)
	runner := NewRunner(contract, mb, state, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	mb.Deliver(message.New(message.Chaos, message.HealthStatusQuery{}))
	mb.Deliver(message.New(message.Chaos, message.HealthStatusQuery{}))
	mb.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not exit")
	}

	snap := state.Snapshot()
	if snap.Errors != 2 {
		t.Errorf("errors = %d, want 2 (a panic must not kill the runner)", snap.Errors)
	}
	if snap.Lifecycle != LifecycleShutDown {
		t.Errorf("lifecycle = %s, want %s", snap.Lifecycle, LifecycleShutDown)
	}
}

func TestRunnerReportsInitializeFailureToNotifier(t *testing.T) {
	defer goleak.VerifyNone(t)

	wantErr := errors.New("boom")
	contract := &testContract{name: message.Chaos, initErr: wantErr}
	mb := mailbox.New(message.Chaos, 1)
	state := NewState(message.Chaos)
	notifier := &capturingNotifier{}
	runner := NewRunner(contract, mb, state, notifier)

	err := runner.Run(context.Background())
	if err == nil {
		t.Fatal("expected initialize failure to propagate")
	}
	if !notifier.called || notifier.name != message.Chaos {
		t.Fatal("notifier was not invoked with the dying actor's name")
	}
	if state.Snapshot().Lifecycle != LifecycleDead {
		t.Errorf("lifecycle = %s, want %s", state.Snapshot().Lifecycle, LifecycleDead)
	}
}
