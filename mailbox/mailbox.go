// Package mailbox implements the bounded per-actor mailbox and delivery
// protocol (§4.3), grounded on original_source's
// src/actors/hermes/mailbox.rs: a channel first, an overflow queue second,
// and a typed failure once both are full.
package mailbox

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/olympusrt/olympus/message"
	"github.com/olympusrt/olympus/olyerr"
)

const DefaultCapacity = 1000

// Stats is a point-in-time snapshot of one mailbox's counters (§3).
type Stats struct {
	Actor          message.ActorName
	DeliveredCount uint64
	FailedCount    uint64
	QueuedCount    int
	LastDelivery   time.Time
	MaxSize        int
}

// Mailbox is identified by actor name and holds a bounded inbound channel
// plus an overflow queue (§3, "Mailbox"). Reception reads the overflow
// queue first (FIFO), then the channel (§4.3).
type Mailbox struct {
	actor   message.ActorName
	maxSize int

	ch     chan message.Message
	closed bool

	mu       sync.Mutex
	overflow *list.List

	delivered    uint64
	failed       uint64
	lastDelivery time.Time
}

// New allocates a mailbox for actor with the given capacity. capacity <= 0
// uses DefaultCapacity.
func New(actor message.ActorName, capacity int) *Mailbox {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Mailbox{
		actor:    actor,
		maxSize:  capacity,
		ch:       make(chan message.Message, capacity),
		overflow: list.New(),
	}
}

// Deliver implements the four-step protocol in §4.3: try the channel,
// then the overflow queue (bounded by the same capacity), then fail. The
// whole attempt runs under the mailbox's lock so a concurrent Close can
// never race a send onto a just-closed channel.
func (m *Mailbox) Deliver(msg message.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return olyerr.New(olyerr.KindActorNotRunning, m.actor, "mailbox closed")
	}

	select {
	case m.ch <- msg:
		m.delivered++
		m.lastDelivery = time.Now().UTC()
		return nil
	default:
	}

	if m.overflow.Len() >= m.maxSize {
		m.failed++
		return olyerr.New(olyerr.KindMailboxFull, m.actor, mailboxFullMsg(m.actor, m.maxSize))
	}

	m.overflow.PushBack(msg)
	m.delivered++
	m.lastDelivery = time.Now().UTC()
	return nil
}

func mailboxFullMsg(actor message.ActorName, maxSize int) string {
	return fmt.Sprintf("%s mailbox is full (max %d)", actor, maxSize)
}

// TryReceive is the non-blocking form: overflow queue first, then channel.
func (m *Mailbox) TryReceive() (message.Message, bool) {
	if msg, ok := m.popOverflow(); ok {
		return msg, true
	}
	select {
	case msg, ok := <-m.ch:
		return msg, ok
	default:
		return message.Message{}, false
	}
}

// Receive blocks until a message is available, the mailbox is closed, or
// ctx is done. It is the Runner's one suspension point (§5).
func (m *Mailbox) Receive(done <-chan struct{}) (message.Message, bool) {
	if msg, ok := m.popOverflow(); ok {
		return msg, true
	}
	select {
	case msg, ok := <-m.ch:
		return msg, ok
	case <-done:
		return message.Message{}, false
	}
}

func (m *Mailbox) popOverflow() (message.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	front := m.overflow.Front()
	if front == nil {
		return message.Message{}, false
	}
	m.overflow.Remove(front)
	return front.Value.(message.Message), true
}

// Close closes the inbound channel, letting the Runner drain and exit
// (§5). Deliver after Close returns ActorNotRunning.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.ch)
}

// Len reports the overflow queue's current length.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overflow.Len()
}

func (m *Mailbox) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Actor:          m.actor,
		DeliveredCount: m.delivered,
		FailedCount:    m.failed,
		QueuedCount:    m.overflow.Len(),
		LastDelivery:   m.lastDelivery,
		MaxSize:        m.maxSize,
	}
}
