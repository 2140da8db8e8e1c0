package router

import (
	"sync"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/olympusrt/olympus/message"
)

// BroadcastEvent is one fan-out publication (§3).
type BroadcastEvent struct {
	Message   message.Message
	Exclude   []message.ActorName
	Timestamp time.Time
}

// Subscriber receives broadcast events not addressed to an excluded name.
type Subscriber interface {
	Name() message.ActorName
	Deliver(msg message.Message) error
}

// Broadcaster publishes an event to a subscriber set, excluding any name
// in the per-call exclusion list (§4.4). Subscribers added after a
// broadcast do not receive it — Broadcast only ever looks at the
// subscriber snapshot taken at call time.
//
// Fan-out runs on a bounded worker pool (github.com/alitto/pond/v2, as
// used by amp-labs-amp-common/bgworker) so one slow subscriber's mailbox
// cannot stall delivery to the rest.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[message.ActorName]Subscriber
	pool        pond.Pool
}

// NewBroadcaster returns a Broadcaster whose fan-out pool runs up to
// concurrency deliveries at once. concurrency <= 0 defaults to 8.
func NewBroadcaster(concurrency int) *Broadcaster {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Broadcaster{
		subscribers: make(map[message.ActorName]Subscriber),
		pool:        pond.NewPool(concurrency),
	}
}

func (b *Broadcaster) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[s.Name()] = s
}

func (b *Broadcaster) Unsubscribe(name message.ActorName) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, name)
}

// Broadcast delivers msg to every current subscriber not present in
// exclude, returning per-subscriber delivery errors keyed by actor name.
func (b *Broadcaster) Broadcast(msg message.Message, exclude []message.ActorName) map[message.ActorName]error {
	excluded := make(map[message.ActorName]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}

	b.mu.RLock()
	targets := make([]Subscriber, 0, len(b.subscribers))
	for name, sub := range b.subscribers {
		if !excluded[name] {
			targets = append(targets, sub)
		}
	}
	b.mu.RUnlock()

	var mu sync.Mutex
	results := make(map[message.ActorName]error, len(targets))
	tasks := make([]pond.Task, 0, len(targets))

	for _, sub := range targets {
		sub := sub
		tasks = append(tasks, b.pool.Submit(func() {
			err := sub.Deliver(msg)
			mu.Lock()
			results[sub.Name()] = err
			mu.Unlock()
		}))
	}
	for _, task := range tasks {
		task.Wait()
	}

	return results
}

// SendTo delivers msg to a single named subscriber, unless it appears in
// exclude, mirroring the original source's send_to helper.
func (b *Broadcaster) SendTo(name message.ActorName, msg message.Message, exclude []message.ActorName) error {
	for _, ex := range exclude {
		if ex == name {
			return nil
		}
	}
	b.mu.RLock()
	sub, ok := b.subscribers[name]
	b.mu.RUnlock()
	if !ok {
		return nil
	}
	return sub.Deliver(msg)
}

// Stop drains and stops the fan-out pool.
func (b *Broadcaster) Stop() {
	b.pool.StopAndWait()
}
