package gods

import (
	"context"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/message"
)

// Athena occupies the Clinical domain slot in the reference deployment.
// Clinical scoring logic itself is out of scope (SPEC_FULL.md §1
// Non-goals): Athena's command handler only ever sees opaque RawCommand
// payloads, standing in for whatever scale-scoring engine would otherwise
// sit behind this domain, and GetData serves back whatever it last
// recorded.
type Athena struct {
	*Base
}

func NewAthena() *Athena {
	return &Athena{Base: NewBase(message.Athena, actor.DomainClinical)}
}

func (a *Athena) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.RawCommand:
		a.set(p.RawKind, string(p.Payload))
		return ackData(msg, "opaque command recorded: "+p.RawKind)
	case message.GetData:
		v, ok := a.get(p.Key)
		if !ok {
			return dataResponse(map[string]any{"key": p.Key, "found": false})
		}
		return dataResponse(map[string]any{"key": p.Key, "found": true, "value": v})
	default:
		return nil, unsupported(a.Name(), msg.Payload)
	}
}
