package writebehind

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/olympusrt/olympus/durable"
)

func TestQueueWriteThenRunPersistsToStore(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := durable.NewMemory()
	buf := NewBuffer(Config{MaxBufferSize: 4, MaxAttemptsPerItem: 2}, store)

	ctx, cancel := context.WithCancel(context.Background())
	go buf.Run(ctx)

	if err := buf.QueueWrite(ctx, "patients", []byte(`{"id":1}`)); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(store.Rows("patients")) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if rows := store.Rows("patients"); len(rows) != 1 {
		t.Fatalf("rows persisted = %d, want 1", len(rows))
	}

	buf.Stop()
	cancel()
	buf.Wait()
}

func TestQueueWriteBlocksWhenFullThenUnblocksOnContextCancel(t *testing.T) {
	store := durable.NewMemory()
	store.FailCreate = map[string]bool{"slow": true} // Create always fails, so Run never drains
	buf := NewBuffer(Config{MaxBufferSize: 1, MaxAttemptsPerItem: 1}, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := buf.QueueWrite(ctx, "slow", []byte("a")); err != nil {
		t.Fatal(err)
	}

	blockCtx, blockCancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer blockCancel()
	if err := buf.QueueWrite(blockCtx, "slow", []byte("b")); err == nil {
		t.Fatal("expected QueueWrite to block and time out on a full buffer")
	}
}

func TestQueueWriteAfterStopIsRejected(t *testing.T) {
	store := durable.NewMemory()
	buf := NewBuffer(DefaultConfig(), store)
	buf.Stop()

	err := buf.QueueWrite(context.Background(), "patients", []byte("x"))
	if err == nil {
		t.Fatal("expected QueueWrite on a stopped buffer to error")
	}
}
