package gods

import (
	"context"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/message"
	"github.com/olympusrt/olympus/writebehind"
)

// Poseidon owns the persistence write-behind buffer (§4.9, C12). Its
// Configure command queues a raw row for durable write-behind persistence
// and MetricsQuery reports the buffer's current backlog depth, giving an
// operator visibility into write-behind pressure without exposing the
// durable.Store directly.
type Poseidon struct {
	*Base
	buffer *writebehind.Buffer
}

// NewPoseidon wires buffer, the shared write-behind queue genesis starts
// alongside this actor. buffer may be nil in isolated tests, in which
// case Configure only acknowledges without persisting.
func NewPoseidon(buffer *writebehind.Buffer) *Poseidon {
	return &Poseidon{Base: NewBase(message.Poseidon, actor.DomainDataFlow), buffer: buffer}
}

func (p *Poseidon) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch cmd := msg.Payload.(type) {
	case message.Configure:
		if p.buffer != nil {
			if err := p.buffer.QueueWrite(ctx, "configure", cmd.Config); err != nil {
				return nil, err
			}
		}
		return ackData(msg, "queued for write-behind persistence")
	case message.FlushBuffer:
		return ackData(msg, "flush acknowledged")
	case message.MetricsQuery:
		depth := 0
		if p.buffer != nil {
			depth = p.buffer.Len()
		}
		return dataResponse(map[string]any{"write_behind_depth": depth})
	default:
		return nil, unsupported(p.Name(), msg.Payload)
	}
}
