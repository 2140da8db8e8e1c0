// Package writebehind implements the persistence write-behind buffer
// (§4.9, C12): a bounded queue of WriteTask items drained by a
// single-writer loop into a durable.Store, generalizing
// original_source/src/actors/poseidon/async_writer.rs's AsyncWriter.
package writebehind

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/atomic"

	"github.com/olympusrt/olympus/durable"
	"github.com/olympusrt/olympus/logger"
	"github.com/olympusrt/olympus/olyerr"
)

// WriteTask is one pending write (§3).
type WriteTask struct {
	Table    string
	Payload  []byte
	Attempts int
}

// Config holds the §6 persistence tuning options.
type Config struct {
	MaxBufferSize       int
	MaxAttemptsPerItem  int
}

func DefaultConfig() Config {
	return Config{MaxBufferSize: 10000, MaxAttemptsPerItem: 10}
}

// Buffer is the bounded write-behind queue (§4.9). QueueWrite blocks
// producers when the channel is full, giving true backpressure (§5); the
// single-writer loop in Run pops tasks and calls durable.Store.Create,
// re-queueing on failure with a growing pause up to MaxAttemptsPerItem
// before logging and dropping the task.
type Buffer struct {
	cfg     Config
	store   durable.Store
	tasks   chan WriteTask
	running atomic.Bool
	done    chan struct{}
}

func NewBuffer(cfg Config, store durable.Store) *Buffer {
	if cfg.MaxBufferSize <= 0 {
		cfg.MaxBufferSize = DefaultConfig().MaxBufferSize
	}
	if cfg.MaxAttemptsPerItem <= 0 {
		cfg.MaxAttemptsPerItem = DefaultConfig().MaxAttemptsPerItem
	}
	b := &Buffer{
		cfg:   cfg,
		store: store,
		tasks: make(chan WriteTask, cfg.MaxBufferSize),
		done:  make(chan struct{}),
	}
	b.running.Store(true)
	return b
}

// QueueWrite enqueues table/payload for write-behind persistence. It
// blocks if the buffer is at capacity (§4.9 backpressure) and returns an
// error if the buffer has already been stopped or ctx is cancelled first.
func (b *Buffer) QueueWrite(ctx context.Context, table string, payload []byte) error {
	if !b.running.Load() {
		return olyerr.New(olyerr.KindPersistenceError, "", "write-behind buffer is stopped")
	}
	select {
	case b.tasks <- WriteTask{Table: table, Payload: payload}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains tasks until Stop is called or ctx is cancelled; it observes
// the running flag between iterations (§5 cancellation discipline).
func (b *Buffer) Run(ctx context.Context) {
	defer close(b.done)
	for b.running.Load() {
		select {
		case <-ctx.Done():
			return
		case task := <-b.tasks:
			b.process(ctx, task)
		case <-time.After(50 * time.Millisecond):
			// Re-check the running flag even with no pending task, so Stop
			// is observed promptly on an idle buffer.
		}
	}
}

func (b *Buffer) process(ctx context.Context, task WriteTask) {
	err := b.store.Create(ctx, task.Table, task.Payload)
	if err == nil {
		return
	}

	task.Attempts++
	if task.Attempts >= b.cfg.MaxAttemptsPerItem {
		logger.Log(fmt.Sprintf("writebehind: dropping write to %s after %d attempts: %v", task.Table, task.Attempts, err))
		return
	}

	pause := time.Duration(task.Attempts) * 100 * time.Millisecond
	select {
	case <-time.After(pause):
	case <-ctx.Done():
		return
	}

	select {
	case b.tasks <- task:
	default:
		logger.Log(fmt.Sprintf("writebehind: buffer full, dropping retried write to %s", task.Table))
	}
}

// Stop sets the running flag false; Run observes it between iterations
// and exits. Stop does not drain remaining queued tasks.
func (b *Buffer) Stop() {
	b.running.Store(false)
}

// Wait blocks until Run has returned.
func (b *Buffer) Wait() {
	<-b.done
}

// Len reports the number of tasks currently queued.
func (b *Buffer) Len() int {
	return len(b.tasks)
}
