// Package genesis wires a complete runtime: mailboxes, one Runner per
// actor, the router and broadcaster, the supervision tree, the heartbeat
// monitor, the retry queue and dead-letter queue, the full-text index,
// and the persistence write-behind buffer. Ignite is the single entry
// point, grounded on the teacher's own main.go wiring style (one function
// that builds every collaborator and starts the supervised tree) but
// generalized from a single worker pool to the twenty-actor roster of
// SPEC_FULL.md §3.1.
package genesis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/config"
	"github.com/olympusrt/olympus/deadletter"
	"github.com/olympusrt/olympus/delivery"
	"github.com/olympusrt/olympus/durable"
	"github.com/olympusrt/olympus/gods"
	"github.com/olympusrt/olympus/heartbeat"
	"github.com/olympusrt/olympus/logger"
	"github.com/olympusrt/olympus/mailbox"
	"github.com/olympusrt/olympus/message"
	"github.com/olympusrt/olympus/metrics"
	"github.com/olympusrt/olympus/olyerr"
	"github.com/olympusrt/olympus/retryqueue"
	"github.com/olympusrt/olympus/router"
	"github.com/olympusrt/olympus/search"
	"github.com/olympusrt/olympus/supervisor"
	"github.com/olympusrt/olympus/writebehind"
)

// contractWithState is the narrow interface genesis needs beyond
// actor.Contract: access to the actor's own actor.State for wiring into
// actor.Runner. Every type in gods satisfies it via the embedded
// gods.Base.
type contractWithState interface {
	actor.Contract
	State() *actor.State
}

// Runtime is the fully wired deployment. Nothing here is a package-level
// singleton: every field is owned by one Runtime value, so a test can
// Ignite as many independent runtimes as it needs.
type Runtime struct {
	Config *config.RuntimeConfig

	Mailboxes   *mailbox.Manager
	Router      *router.Router
	Broadcaster *router.Broadcaster

	Supervisor       *supervisor.Supervisor
	HeartbeatMonitor *heartbeat.Monitor
	DeliveryTracker  *delivery.Tracker
	RetryQueue       *retryqueue.Queue
	retryWorker      *retryqueue.Worker
	DeadLetters      *deadletter.Queue
	SearchIndex      *search.Index
	WriteBehind      *writebehind.Buffer
	Store            durable.Store

	Actors map[message.ActorName]actor.Contract

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Ignite builds and starts every collaborator named in SPEC_FULL.md §4 and
// returns the running Runtime. Callers own its lifetime and must call
// Shutdown when done.
func Ignite(ctx context.Context, cfg *config.RuntimeConfig) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	wireLogging()

	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("genesis: open durable store: %w", err)
	}

	idx, err := search.Open(cfg.IndexPath, search.Config{WriterHeapBytes: cfg.Index.WriterHeapBytes})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("genesis: open search index: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)

	rt := &Runtime{
		Config:           cfg,
		Mailboxes:        mailbox.NewManager(cfg.MailboxCapacity),
		Router:           router.New(),
		Broadcaster:      router.NewBroadcaster(8),
		HeartbeatMonitor: heartbeat.NewMonitor(cfg.LivenessWindow()),
		DeliveryTracker:  delivery.NewTracker(),
		DeadLetters:      deadletter.NewQueue(store),
		SearchIndex:      idx,
		Store:            store,
		Actors:           make(map[message.ActorName]actor.Contract),
		cancel:           cancel,
	}
	rt.RetryQueue = retryqueue.NewQueue(retryConfigFrom(cfg.Retry), rt.DeliveryTracker)
	rt.WriteBehind = writebehind.NewBuffer(writebehind.Config{
		MaxBufferSize:      cfg.Persistence.MaxBufferSize,
		MaxAttemptsPerItem: cfg.Persistence.MaxAttemptsPerItem,
	}, store)

	contracts := buildGods(rt)
	for _, c := range contracts {
		rt.Actors[c.Name()] = c
		rt.Router.RegisterRoute(c.Name().String(), c.Name(), 0)
	}

	var sup *supervisor.Supervisor
	specs := make([]supervisor.ChildSpec, 0, len(contracts))
	for _, c := range contracts {
		c := c
		mb := rt.Mailboxes.Create(c.Name(), cfg.MailboxCapacity)
		rt.Broadcaster.Subscribe(mailboxSubscriber{name: c.Name(), mgr: rt.Mailboxes})
		specs = append(specs, supervisor.ChildSpec{
			Name: c.Name(),
			Run: func(ctx context.Context) error {
				// notifier is nil: the supervisor's own startLocked wrapper
				// already calls handleExit on this closure's return value,
				// so NotifyExit would otherwise fire a second time for the
				// same death.
				runner := actor.NewRunner(c, mb, c.State(), nil)
				return runner.Run(ctx)
			},
		})
	}

	sup, err = supervisor.NewSupervisorWithOptions(runCtx,
		supervisor.WithChildren(specs...),
		supervisor.WithStrategy(supervisor.OneForOne),
		supervisor.WithRestartBudget(cfg.MaxRestarts, cfg.RestartWindow()),
		supervisor.WithEscalationHandler(func(child message.ActorName, reason error) {
			logger.Log(fmt.Sprintf("genesis: %s escalated: %v", child, reason))
		}),
	)
	if err != nil {
		cancel()
		idx.Close()
		store.Close()
		return nil, fmt.Errorf("genesis: build supervisor: %w", err)
	}
	rt.Supervisor = sup
	sup.Run()

	rt.retryWorker = retryqueue.NewWorker(rt.RetryQueue, 100*time.Millisecond, rt.deliver, rt.deadLetter)

	metrics.ActorsAlive.Set(float64(len(contracts)))

	rt.wg.Add(3)
	go func() { defer rt.wg.Done(); rt.retryWorker.Run(runCtx) }()
	go func() { defer rt.wg.Done(); rt.WriteBehind.Run(runCtx) }()
	go func() { defer rt.wg.Done(); rt.reportLoop(runCtx, contracts) }()

	return rt, nil
}

func openStore(cfg *config.RuntimeConfig) (durable.Store, error) {
	if cfg.DatabasePath == "" {
		return durable.NewMemory(), nil
	}
	return durable.OpenSQLiteStore(cfg.DatabasePath)
}

func retryConfigFrom(rc config.RetryConfig) retryqueue.Config {
	cfg := retryqueue.Config{
		MaxAttempts:       rc.MaxAttempts,
		InitialDelayMS:    rc.InitialDelayMS,
		MaxDelayMS:        rc.MaxDelayMS,
		BackoffMultiplier: rc.BackoffMultiplier,
		RetryableErrors:   make(map[olyerr.Kind]bool, len(rc.RetryableErrors)),
	}
	for _, name := range rc.RetryableErrors {
		cfg.RetryableErrors[olyerr.Kind(name)] = true
	}
	return cfg
}

// buildGods constructs the twenty-actor roster in the declaration order
// message.AllActorNames() returns, wiring each actor's dependencies out of
// the Runtime under construction.
func buildGods(rt *Runtime) []contractWithState {
	return []contractWithState{
		gods.NewZeus(),
		gods.NewHades(),
		gods.NewPoseidon(rt.WriteBehind),
		gods.NewAthena(),
		gods.NewHermes(rt.Router, rt.Mailboxes),
		gods.NewHestia(rt.Store),
		gods.NewErinyes(),
		gods.NewAphrodite(),
		gods.NewApollo(),
		gods.NewArtemis(rt.SearchIndex),
		gods.NewHera(),
		gods.NewAres(),
		gods.NewHefesto(rt.Config),
		gods.NewChronos(rt.HeartbeatMonitor, message.AllActorNames()),
		gods.NewMoirai(),
		gods.NewChaos(),
		gods.NewAurora(),
		gods.NewIris(),
		gods.NewDemeter(rt.Mailboxes),
		gods.NewDionysus(rt.DeliveryTracker),
	}
}

// deliver implements retryqueue.DeliverFunc against the shared mailbox
// manager.
func (rt *Runtime) deliver(ctx context.Context, msg message.Message, to message.ActorName) error {
	return rt.Mailboxes.DeliverTo(to, msg)
}

// deadLetter implements retryqueue.DeadLetterFunc, persisting an
// exhausted retry entry to the dead-letter queue (§4.5 step 3).
func (rt *Runtime) deadLetter(entry retryqueue.Entry) {
	payload, err := json.Marshal(entry.Message)
	if err != nil {
		logger.Log(fmt.Sprintf("genesis: marshal dead-lettered message %s: %v", entry.Message.ID, err))
		return
	}
	dl := deadletter.DeadLetter{
		MessageID: entry.Message.ID,
		Message:   payload,
		Original:  entry.To,
		FailedAt:  time.Now().UTC(),
		Attempts:  entry.Attempts,
		LastError: entry.LastError,
	}
	if err := rt.DeadLetters.Push(context.Background(), dl); err != nil {
		logger.Log(fmt.Sprintf("genesis: persist dead letter %s: %v", entry.Message.ID, err))
		return
	}
	metrics.DeadLettersTotal.WithLabelValues(entry.To.String()).Inc()
}

// reportLoop periodically beats the heartbeat monitor, refreshes
// Prometheus counters and gauges from each actor's own state snapshot,
// and raises HeartbeatMissed alerts for stale actors (§4.7).
func (rt *Runtime) reportLoop(ctx context.Context, contracts []contractWithState) {
	interval := rt.Config.HeartbeatInterval()
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	previous := make(map[message.ActorName]actor.HealthStatus, len(contracts))
	known := message.AllActorNames()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, c := range contracts {
				rt.HeartbeatMonitor.Beat(c.Heartbeat())

				health := c.HealthCheck()
				prev := previous[c.Name()]
				if delta := health.MessageCount - prev.MessageCount; delta > 0 {
					metrics.MessagesProcessed.WithLabelValues(c.Name().String()).Add(float64(delta))
				}
				if delta := health.ErrorCount - prev.ErrorCount; delta > 0 {
					metrics.MessageErrors.WithLabelValues(c.Name().String()).Add(float64(delta))
				}
				previous[c.Name()] = health
			}

			for _, unhealthy := range rt.HeartbeatMonitor.Unhealthy(known) {
				metrics.HeartbeatMisses.WithLabelValues(unhealthy.String()).Inc()
			}

			for _, stat := range rt.Mailboxes.AllStats() {
				metrics.MailboxDepth.WithLabelValues(stat.Actor.String()).Set(float64(stat.QueuedCount))
			}
			metrics.RetryQueueDepth.Set(float64(rt.RetryQueue.Len()))
			metrics.ActorsAlive.Set(float64(rt.Supervisor.CurrentWorkerCount()))
		}
	}
}

// mailboxSubscriber adapts mailbox.Manager to router.Subscriber so the
// broadcaster can fan out to every registered actor by name (§4.4).
type mailboxSubscriber struct {
	name message.ActorName
	mgr  *mailbox.Manager
}

func (s mailboxSubscriber) Name() message.ActorName { return s.name }
func (s mailboxSubscriber) Deliver(msg message.Message) error {
	return s.mgr.DeliverTo(s.name, msg)
}

// Shutdown stops the supervisor, the retry worker and the write-behind
// buffer, cancels the background context and waits for the background
// goroutines to exit, then stops the broadcaster and closes the search
// index and the durable store.
func (rt *Runtime) Shutdown() {
	rt.Supervisor.Stop()
	rt.retryWorker.Stop()
	rt.WriteBehind.Stop()
	rt.cancel()
	rt.wg.Wait()
	rt.Broadcaster.Stop()
	if err := rt.SearchIndex.Close(); err != nil {
		logger.Log(fmt.Sprintf("genesis: close search index: %v", err))
	}
	if err := rt.Store.Close(); err != nil {
		logger.Log(fmt.Sprintf("genesis: close durable store: %v", err))
	}
}
