package gods

import (
	"context"
	"sync/atomic"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/message"
)

// Chaos is the testing/fault-injection actor: a first RawCommand with
// RawKind "panic" arms fault injection and the next "panic" command then
// panics inside HandleMessage (the actor.Runner recovers that panic and
// counts it as a handler error), any other RawKind is rejected as an
// invalid command, and HealthStatusQuery reports whether fault injection
// is currently armed.
type Chaos struct {
	*Base
	armed atomic.Bool
}

func NewChaos() *Chaos {
	return &Chaos{Base: NewBase(message.Chaos, actor.DomainTesting)}
}

func (c *Chaos) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.RawCommand:
		if p.RawKind == "panic" {
			if c.armed.CompareAndSwap(true, false) {
				panic("chaos: fault injection triggered")
			}
			c.armed.Store(true)
			return ackData(msg, "fault injection armed for next panic command")
		}
		return nil, invalidCommand(c.Name(), p)
	case message.HealthStatusQuery:
		status := c.HealthCheck()
		return dataResponse(map[string]any{"health": status, "armed": c.armed.Load()})
	default:
		return nil, unsupported(c.Name(), msg.Payload)
	}
}
