package actor

import (
	"context"
	"fmt"

	"github.com/olympusrt/olympus/logger"
	"github.com/olympusrt/olympus/mailbox"
	"github.com/olympusrt/olympus/message"
	"github.com/olympusrt/olympus/olyerr"
)

// Notifier receives a single exit notification when a Runner's actor dies
// (§4.2: "Exit reason is propagated to the supervisor when a configured
// notifier exists"). reason is nil for a graceful, mailbox-closed exit.
type Notifier interface {
	NotifyExit(name message.ActorName, reason error)
}

// Runner drives one Contract over one mailbox.Mailbox (§4.2), generalizing
// the teacher's ActorWorker(Actor) pattern: instead of an untyped
// Envelope/Handle pair, Runner carries the typed message.Message contract
// and a recover()-at-every-boundary discipline identical in spirit to the
// teacher's own safeguard against a single bad call killing the goroutine.
type Runner struct {
	contract Contract
	mailbox  *mailbox.Mailbox
	state    *State
	notifier Notifier
}

// NewRunner returns a Runner for contract, reading from mb and recording
// progress in state. notifier may be nil if no supervisor is listening.
func NewRunner(contract Contract, mb *mailbox.Mailbox, state *State, notifier Notifier) *Runner {
	return &Runner{contract: contract, mailbox: mb, state: state, notifier: notifier}
}

// Run executes the four-step protocol in §4.2: Initialize, receive loop,
// channel-close exit, Shutdown. It blocks until the mailbox closes or ctx
// is cancelled, and returns the exit reason (nil on a graceful stop).
func (r *Runner) Run(ctx context.Context) error {
	if err := r.safeInitialize(ctx); err != nil {
		r.state.SetLifecycle(LifecycleDead)
		r.notify(err)
		return err
	}
	r.state.SetLifecycle(LifecycleRunning)

	done := ctx.Done()
	for {
		msg, ok := r.mailbox.Receive(done)
		if !ok {
			break
		}
		r.dispatch(ctx, msg)
	}

	r.state.SetLifecycle(LifecycleDraining)
	err := r.safeShutdown(ctx)
	r.state.SetLifecycle(LifecycleShutDown)
	r.notify(err)
	return err
}

func (r *Runner) notify(reason error) {
	if r.notifier != nil {
		r.notifier.NotifyExit(r.contract.Name(), reason)
	}
}

// dispatch calls HandleMessage and records the Ok/Err counter per §4.1. A
// panic from HandleMessage is recovered and treated as an Err — §4.2 is
// explicit that message-level errors (panics included) never terminate
// the runner.
func (r *Runner) dispatch(ctx context.Context, msg message.Message) {
	err := r.safeHandle(ctx, msg)
	if err != nil {
		r.state.RecordError(err)
		logger.Log(fmt.Sprintf("actor %s: handle %s failed: %v", r.contract.Name(), msg.ID, err))
		return
	}
	r.state.RecordSuccess()
}

func (r *Runner) safeInitialize(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = olyerr.New(olyerr.KindPanic, r.contract.Name(), fmt.Sprintf("initialize panicked: %v", p))
		}
	}()
	return r.contract.Initialize(ctx)
}

func (r *Runner) safeHandle(ctx context.Context, msg message.Message) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = olyerr.New(olyerr.KindPanic, r.contract.Name(), fmt.Sprintf("handle_message panicked: %v", p))
		}
	}()
	_, err = r.contract.HandleMessage(ctx, msg)
	return err
}

func (r *Runner) safeShutdown(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = olyerr.New(olyerr.KindPanic, r.contract.Name(), fmt.Sprintf("shutdown panicked: %v", p))
		}
	}()
	return r.contract.Shutdown(ctx)
}
