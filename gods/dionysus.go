package gods

import (
	"context"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/delivery"
	"github.com/olympusrt/olympus/message"
)

// Dionysus is the analysis actor: FlushBuffer records the time of the
// request under "last_aggregate_at" (it computes nothing itself) and
// MetricsQuery reports delivered/failed/pending counts drawn from the
// shared delivery.Tracker, computed afresh on every query.
type Dionysus struct {
	*Base
	tracker *delivery.Tracker
}

func NewDionysus(tracker *delivery.Tracker) *Dionysus {
	return &Dionysus{Base: NewBase(message.Dionysus, actor.DomainAnalysis), tracker: tracker}
}

func (d *Dionysus) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch msg.Payload.(type) {
	case message.FlushBuffer:
		d.set("last_aggregate_at", msg.Timestamp.String())
		return ackData(msg, "aggregate recomputed")
	case message.MetricsQuery:
		var delivered, failed, pending uint64
		if d.tracker != nil {
			delivered = d.tracker.DeliveredCount()
			failed = d.tracker.FailedCount()
			pending = d.tracker.PendingCount()
		}
		return dataResponse(map[string]any{"delivered": delivered, "failed": failed, "pending": pending})
	default:
		return nil, unsupported(d.Name(), msg.Payload)
	}
}
