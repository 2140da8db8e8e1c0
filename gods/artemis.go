package gods

import (
	"context"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/message"
	"github.com/olympusrt/olympus/search"
)

// Artemis owns the full-text index (§4.8, C11). IndexDocument and Search
// are delegated straight to the shared search.Index genesis opens; the
// index itself enforces the schema, query validation, and ranking rules,
// so Artemis's job here is routing and error propagation.
type Artemis struct {
	*Base
	index *search.Index
}

func NewArtemis(index *search.Index) *Artemis {
	return &Artemis{Base: NewBase(message.Artemis, actor.DomainSearch), index: index}
}

func (a *Artemis) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.IndexDocument:
		if a.index == nil {
			return nil, unsupported(a.Name(), msg.Payload)
		}
		id, err := a.index.IndexDocument(p.Fields)
		if err != nil {
			return nil, err
		}
		a.set("last_indexed_id", id)
		return dataResponse(map[string]string{"id": id})
	case message.Search:
		if a.index == nil {
			return dataResponse([]search.Hit{})
		}
		hits, err := a.index.Search(ctx, p.Query, p.K)
		if err != nil {
			return nil, err
		}
		return dataResponse(hits)
	default:
		return nil, unsupported(a.Name(), msg.Payload)
	}
}
