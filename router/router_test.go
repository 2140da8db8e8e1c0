package router

import (
	"errors"
	"sync"
	"testing"

	"github.com/olympusrt/olympus/message"
)

func TestRouteResolvesExactBeforeWildcard(t *testing.T) {
	r := New()
	r.RegisterWildcard(message.Aurora, 0)
	r.RegisterRoute(message.Zeus.String(), message.Erinyes, 1)

	handler, ok := r.Route(message.Zeus)
	if !ok || handler != message.Erinyes {
		t.Fatalf("exact route = %v, %v, want Erinyes, true", handler, ok)
	}

	handler, ok = r.Route(message.Hades)
	if !ok || handler != message.Aurora {
		t.Fatalf("wildcard fallback = %v, %v, want Aurora, true", handler, ok)
	}
}

func TestRouteWithNoMatchIsNotOK(t *testing.T) {
	r := New()
	if _, ok := r.Route(message.Zeus); ok {
		t.Fatal("expected no route without any registration")
	}
}

func TestRegisterWildcardOrdersByDescendingPriority(t *testing.T) {
	r := New()
	r.RegisterWildcard(message.Aurora, 1)
	r.RegisterWildcard(message.Chaos, 5)

	handler, ok := r.Route(message.Hestia)
	if !ok || handler != message.Chaos {
		t.Fatalf("highest-priority wildcard = %v, %v, want Chaos, true", handler, ok)
	}
}

type recordingSubscriber struct {
	name    message.ActorName
	mu      sync.Mutex
	got     []message.Message
	failAll bool
}

func (s *recordingSubscriber) Name() message.ActorName { return s.name }

func (s *recordingSubscriber) Deliver(msg message.Message) error {
	if s.failAll {
		return errors.New("delivery refused")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, msg)
	return nil
}

func (s *recordingSubscriber) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func TestBroadcastExcludesNamedSubscribers(t *testing.T) {
	b := NewBroadcaster(4)
	defer b.Stop()

	zeus := &recordingSubscriber{name: message.Zeus}
	hermes := &recordingSubscriber{name: message.Hermes}
	b.Subscribe(zeus)
	b.Subscribe(hermes)

	msg := message.New(message.Zeus, message.HealthStatusQuery{})
	results := b.Broadcast(msg, []message.ActorName{message.Hermes})

	if _, excluded := results[message.Hermes]; excluded {
		t.Fatal("excluded subscriber should not appear in the result set")
	}
	if err, ok := results[message.Zeus]; !ok || err != nil {
		t.Fatalf("zeus delivery = %v, %v, want nil, true", err, ok)
	}
	if zeus.count() != 1 {
		t.Fatalf("zeus received %d messages, want 1", zeus.count())
	}
	if hermes.count() != 0 {
		t.Fatalf("hermes received %d messages, want 0", hermes.count())
	}
}

func TestBroadcastCollectsPerSubscriberErrors(t *testing.T) {
	b := NewBroadcaster(4)
	defer b.Stop()

	failing := &recordingSubscriber{name: message.Hades, failAll: true}
	b.Subscribe(failing)

	results := b.Broadcast(message.New(message.Hades, message.HealthStatusQuery{}), nil)
	if results[message.Hades] == nil {
		t.Fatal("expected the failing subscriber's error to be reported")
	}
}

func TestSendToSkipsAnExcludedName(t *testing.T) {
	b := NewBroadcaster(4)
	defer b.Stop()

	zeus := &recordingSubscriber{name: message.Zeus}
	b.Subscribe(zeus)

	if err := b.SendTo(message.Zeus, message.New(message.Zeus, message.HealthStatusQuery{}), []message.ActorName{message.Zeus}); err != nil {
		t.Fatal(err)
	}
	if zeus.count() != 0 {
		t.Fatal("excluded SendTo target should not receive the message")
	}
}
