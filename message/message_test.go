package message

import (
	"encoding/json"
	"testing"
)

func TestMessageRoundTripsThroughJSONForAKnownCommand(t *testing.T) {
	orig := WithFrom(Zeus, Hermes, StopActor{Actor: Chaos, Reason: "scheduled maintenance"})

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Message
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	if decoded.ID != orig.ID || decoded.To != orig.To || *decoded.From != *orig.From {
		t.Fatalf("envelope fields did not round-trip: got %+v, want %+v", decoded, orig)
	}
	stop, ok := decoded.Payload.(StopActor)
	if !ok {
		t.Fatalf("payload decoded as %T, want StopActor", decoded.Payload)
	}
	if stop.Actor != Chaos || stop.Reason != "scheduled maintenance" {
		t.Fatalf("payload fields did not round-trip: %+v", stop)
	}
}

func TestUnmarshalUnknownCommandCaseFallsBackToRawCommand(t *testing.T) {
	raw := []byte(`{
		"id": "m1", "to": "hermes", "priority": "Normal",
		"timestamp": "2026-01-01T00:00:00Z", "metadata": {},
		"payload": {"kind": "Command", "case": "FutureCommand", "data": {"x": 1}}
	}`)

	var decoded Message
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}

	cmd, ok := decoded.Payload.(RawCommand)
	if !ok {
		t.Fatalf("payload decoded as %T, want RawCommand", decoded.Payload)
	}
	if cmd.RawKind != "FutureCommand" {
		t.Fatalf("RawKind = %q, want FutureCommand", cmd.RawKind)
	}
}

func TestVariantClassifiesEachSealedInterface(t *testing.T) {
	cases := []struct {
		payload Payload
		want    PayloadVariant
	}{
		{FlushBuffer{}, VariantCommand},
		{HealthStatusQuery{}, VariantQuery},
		{ActorStarted{Actor: Zeus}, VariantEvent},
		{AckResponse{MessageID: "m1"}, VariantResponse},
	}
	for _, tc := range cases {
		m := New(Zeus, tc.payload)
		got, err := m.Variant()
		if err != nil {
			t.Fatalf("variant(%T): %v", tc.payload, err)
		}
		if got != tc.want {
			t.Errorf("variant(%T) = %s, want %s", tc.payload, got, tc.want)
		}
	}
}

func TestActorNameValidRejectsUnknownNames(t *testing.T) {
	if !Zeus.Valid() {
		t.Fatal("Zeus should be a valid, known actor name")
	}
	if ActorName("not-a-god").Valid() {
		t.Fatal("an unregistered actor name should not be valid")
	}
	if len(AllActorNames()) != 20 {
		t.Fatalf("AllActorNames() = %d entries, want 20", len(AllActorNames()))
	}
}
