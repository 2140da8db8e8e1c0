// Package actor defines the uniform actor contract (§4.1), per-actor
// runtime state, and the Runner that drives one actor over one mailbox
// (§4.2). It generalizes the teacher package's Actor/ActorWorker pair
// (go.fergus.london/go-supervise/actor) from an untyped Envelope/Handle
// pair to the typed message.Message contract this runtime requires.
package actor

import (
	"context"
	"encoding/json"

	"github.com/olympusrt/olympus/heartbeat"
	"github.com/olympusrt/olympus/message"
)

// Domain names the specialised responsibility an actor owns (§3.1).
type Domain string

const (
	DomainGovernance         Domain = "Governance"
	DomainIntegrity          Domain = "Integrity"
	DomainDataFlow           Domain = "DataFlow"
	DomainClinical           Domain = "Clinical"
	DomainEvents             Domain = "Events"
	DomainSearch             Domain = "Search"
	DomainMessaging          Domain = "Messaging"
	DomainSecurity           Domain = "Security"
	DomainValidation         Domain = "Validation"
	DomainConflictResolution Domain = "ConflictResolution"
	DomainConfiguration      Domain = "Configuration"
	DomainScheduling         Domain = "Scheduling"
	DomainPredictions        Domain = "Predictions"
	DomainTesting            Domain = "Testing"
	DomainNewBeginnings      Domain = "NewBeginnings"
	DomainUI                 Domain = "UI"
	DomainCommunications     Domain = "Communications"
	DomainResources          Domain = "Resources"
	DomainAnalysis           Domain = "Analysis"
	DomainPersistence        Domain = "Persistence"
)

// HealthStatus is the detailed, pure-read health snapshot returned by
// HealthCheck (§4.1), distinct from the lighter heartbeat.Record sent
// periodically.
type HealthStatus struct {
	Actor         message.ActorName
	Status        Status
	UptimeSeconds uint64
	MessageCount  uint64
	ErrorCount    uint64
	LastError     string
}

// Contract is the uniform capability set every actor implements (§4.1).
// HandleMessage has exclusive mutable access to the actor's own state; it
// must not block indefinitely. Initialize and Shutdown are each invoked
// exactly once by the Runner (§4.2).
type Contract interface {
	Name() message.ActorName
	Domain() Domain

	Initialize(ctx context.Context) error
	HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error)
	Shutdown(ctx context.Context) error

	Heartbeat() heartbeat.Record
	HealthCheck() HealthStatus

	PersistentState() (json.RawMessage, error)
	LoadState(state json.RawMessage) error
}
