package deadletter

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olympusrt/olympus/durable"
	"github.com/olympusrt/olympus/message"
)

func TestPushThenPopIsFIFOAndClearsTheIndex(t *testing.T) {
	store := durable.NewMemory()
	q := NewQueue(store)

	first := DeadLetter{MessageID: "m1", Message: json.RawMessage(`{}`), Original: message.Hermes}
	second := DeadLetter{MessageID: "m2", Message: json.RawMessage(`{}`), Original: message.Hermes}

	require.NoError(t, q.Push(context.Background(), first))
	require.NoError(t, q.Push(context.Background(), second))
	require.Equal(t, 2, q.Len())

	got, ok, err := q.Pop(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "m1", got.MessageID)
	require.Equal(t, StatusPending, got.Status)
	require.Equal(t, 1, q.Len())

	got, ok, err = q.Pop(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "m2", got.MessageID)

	_, ok, err = q.Pop(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMarkTransitionsPersistThroughGet(t *testing.T) {
	store := durable.NewMemory()
	q := NewQueue(store)

	dl := DeadLetter{MessageID: "m1", Message: json.RawMessage(`{}`), Original: message.Hermes}
	require.NoError(t, q.Push(context.Background(), dl))

	require.NoError(t, q.MarkRetrying(context.Background(), "m1"))
	got, ok, err := q.Get(context.Background(), "m1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StatusRetrying, got.Status)

	require.NoError(t, q.MarkAbandoned(context.Background(), "m1"))
	got, _, err = q.Get(context.Background(), "m1")
	require.NoError(t, err)
	require.Equal(t, StatusAbandoned, got.Status)
}

func TestMarkUnknownIDIsNotFound(t *testing.T) {
	store := durable.NewMemory()
	q := NewQueue(store)

	err := q.MarkDelivered(context.Background(), "missing")
	require.Error(t, err)
}
