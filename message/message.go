package message

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is the immutable envelope exchanged between actors (§3). Once
// constructed it is never mutated; retries re-enqueue the same Message by
// value, preserving ID.
type Message struct {
	ID        string
	From      *ActorName
	To        ActorName
	Priority  Priority
	Timestamp time.Time
	Metadata  map[string]any
	Payload   Payload
}

// New constructs a Message with a fresh UUID, no sender, Normal priority,
// and the current timestamp — the common case for commands originated by
// the runtime itself rather than relayed from another actor.
func New(to ActorName, payload Payload) Message {
	return Message{
		ID:        uuid.NewString(),
		To:        to,
		Priority:  PriorityNormal,
		Timestamp: time.Now().UTC(),
		Metadata:  map[string]any{},
		Payload:   payload,
	}
}

// WithFrom returns a copy of New's result carrying a sender.
func WithFrom(from, to ActorName, payload Payload) Message {
	m := New(to, payload)
	m.From = &from
	return m
}

// WithPriority returns a copy of New's result at the given priority.
func WithPriority(priority Priority, to ActorName, payload Payload) Message {
	m := New(to, payload)
	m.Priority = priority
	return m
}

// Variant reports which of the four closed payload kinds this message
// carries.
func (m Message) Variant() (PayloadVariant, error) {
	switch m.Payload.(type) {
	case CommandPayload:
		return VariantCommand, nil
	case QueryPayload:
		return VariantQuery, nil
	case EventPayload:
		return VariantEvent, nil
	case ResponsePayload:
		return VariantResponse, nil
	default:
		return "", fmt.Errorf("message: payload %T is not a recognised variant", m.Payload)
	}
}

type wireMessage struct {
	ID        string         `json:"id"`
	From      *ActorName     `json:"from"`
	To        ActorName      `json:"to"`
	Priority  Priority       `json:"priority"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
	Payload   wirePayload    `json:"payload"`
}

type wirePayload struct {
	Kind string          `json:"kind"`
	Case string          `json:"case"`
	Data json.RawMessage `json:"data"`
}

// MarshalJSON renders the wire form described in §6: an envelope with a
// nested payload object tagged by variant ("kind") and case.
func (m Message) MarshalJSON() ([]byte, error) {
	variant, err := m.Variant()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(m.Payload)
	if err != nil {
		return nil, err
	}
	w := wireMessage{
		ID:        m.ID,
		From:      m.From,
		To:        m.To,
		Priority:  m.Priority,
		Timestamp: m.Timestamp,
		Metadata:  m.Metadata,
		Payload: wirePayload{
			Kind: string(variant),
			Case: m.Payload.Kind(),
			Data: data,
		},
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses the wire form, dispatching the payload's case tag
// into the matching concrete struct. Unrecognised cases for a known
// variant fall back to the variant's Raw* catch-all (§9: Dynamic
// payloads), preserving forward compatibility with newer producers.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	payload, err := decodePayload(w.Payload)
	if err != nil {
		return err
	}

	m.ID = w.ID
	m.From = w.From
	m.To = w.To
	m.Priority = w.Priority
	m.Timestamp = w.Timestamp
	m.Metadata = w.Metadata
	m.Payload = payload
	return nil
}

func decodePayload(w wirePayload) (Payload, error) {
	switch PayloadVariant(w.Kind) {
	case VariantCommand:
		return decodeCommand(w.Case, w.Data)
	case VariantQuery:
		return decodeQuery(w.Case, w.Data)
	case VariantEvent:
		return decodeEvent(w.Case, w.Data)
	case VariantResponse:
		return decodeResponse(w.Case, w.Data)
	default:
		return nil, fmt.Errorf("message: unknown payload kind %q", w.Kind)
	}
}

func decodeCommand(caseName string, data json.RawMessage) (CommandPayload, error) {
	switch caseName {
	case "StartActor":
		var v StartActor
		return v, unmarshalIfPresent(data, &v)
	case "StopActor":
		var v StopActor
		return v, unmarshalIfPresent(data, &v)
	case "RestartActor":
		var v RestartActor
		return v, unmarshalIfPresent(data, &v)
	case "EmergencyShutdown":
		var v EmergencyShutdown
		return v, unmarshalIfPresent(data, &v)
	case "RecoverActor":
		var v RecoverActor
		return v, unmarshalIfPresent(data, &v)
	case "ConfigureHeartbeat":
		var v ConfigureHeartbeat
		return v, unmarshalIfPresent(data, &v)
	case "Connect":
		var v Connect
		return v, unmarshalIfPresent(data, &v)
	case "Disconnect":
		var v Disconnect
		return v, unmarshalIfPresent(data, &v)
	case "FlushBuffer":
		return FlushBuffer{}, nil
	case "SendMessage":
		var v SendMessage
		return v, unmarshalIfPresent(data, &v)
	case "Broadcast":
		var v Broadcast
		return v, unmarshalIfPresent(data, &v)
	case "Shutdown":
		return ShutdownCommand{}, nil
	case "Configure":
		var v Configure
		return v, unmarshalIfPresent(data, &v)
	case "IndexDocument":
		var v IndexDocument
		return v, unmarshalIfPresent(data, &v)
	default:
		return RawCommand{RawKind: caseName, Payload: data}, nil
	}
}

func unmarshalIfPresent(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func decodeQuery(caseName string, data json.RawMessage) (QueryPayload, error) {
	switch caseName {
	case "HealthStatus":
		return HealthStatusQuery{}, nil
	case "ActorState":
		return ActorStateQuery{}, nil
	case "Metrics":
		return MetricsQuery{}, nil
	case "GetData":
		var v GetData
		return v, json.Unmarshal(data, &v)
	case "GetHistory":
		var v GetHistory
		return v, json.Unmarshal(data, &v)
	case "Search":
		var v Search
		return v, json.Unmarshal(data, &v)
	case "GetConfig":
		return GetConfig{}, nil
	case "ListActors":
		return ListActors{}, nil
	default:
		return RawQuery{RawKind: caseName, Payload: data}, nil
	}
}

func decodeEvent(caseName string, data json.RawMessage) (EventPayload, error) {
	switch caseName {
	case "ActorStarted":
		var v ActorStarted
		return v, json.Unmarshal(data, &v)
	case "ActorStopped":
		var v ActorStopped
		return v, json.Unmarshal(data, &v)
	case "ActorRecovered":
		var v ActorRecovered
		return v, json.Unmarshal(data, &v)
	case "DataReceived":
		var v DataReceived
		return v, json.Unmarshal(data, &v)
	case "DataPersisted":
		var v DataPersisted
		return v, json.Unmarshal(data, &v)
	case "ErrorOccurred":
		var v ErrorOccurred
		return v, json.Unmarshal(data, &v)
	case "HeartbeatMissed":
		var v HeartbeatMissed
		return v, json.Unmarshal(data, &v)
	case "ConfigChanged":
		var v ConfigChanged
		return v, json.Unmarshal(data, &v)
	default:
		return RawEvent{RawKind: caseName, Payload: data}, nil
	}
}

func decodeResponse(caseName string, data json.RawMessage) (ResponsePayload, error) {
	switch caseName {
	case "Success":
		var v SuccessResponse
		return v, json.Unmarshal(data, &v)
	case "Error":
		var v ErrorResponse
		return v, json.Unmarshal(data, &v)
	case "Data":
		var v DataResponse
		return v, json.Unmarshal(data, &v)
	case "Ack":
		var v AckResponse
		return v, json.Unmarshal(data, &v)
	case "Status":
		var v StatusResponse
		return v, json.Unmarshal(data, &v)
	default:
		return nil, fmt.Errorf("message: unknown response case %q", caseName)
	}
}
