package natsadapter

import (
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/minarah/internal/core/domain"
)

type countingHub struct{ events []domain.Event }

func (h *countingHub) Publish(e domain.Event) int {
	h.events = append(h.events, e)
	return 1
}

func TestRelay_SkipsOwnOrigin(t *testing.T) {
	hub := &countingHub{}
	r := NewRelay("instance-a", hub)

	own, err := encodeEvent(domain.SOSRescuedEvent("s1"), "instance-a")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if r.handle(own) {
		t.Error("own event should not be relayed")
	}

	foreign, _ := encodeEvent(domain.SOSAssignedEvent("s2", "team-1"), "instance-b")
	if !r.handle(foreign) {
		t.Error("foreign event should be relayed")
	}

	if len(hub.events) != 1 {
		t.Fatalf("expected 1 relayed event, got %d", len(hub.events))
	}
	if got := hub.events[0]; got.SOSID != "s2" || got.RescueTeam != "team-1" {
		t.Errorf("unexpected relayed event: %+v", got)
	}
}

func TestRelay_DropsGarbage(t *testing.T) {
	hub := &countingHub{}
	r := NewRelay("instance-a", hub)

	msg := nats.NewMsg("sos.events.new_sos")
	msg.Data = []byte("{not json")
	if r.handle(msg) {
		t.Error("garbage should not be relayed")
	}
	if len(hub.events) != 0 {
		t.Error("hub should not receive garbage")
	}
}

func TestEncodeEvent_Subject(t *testing.T) {
	msg, err := encodeEvent(domain.Event{Type: domain.EventNewSOS, SOSID: "s1"}, "o")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if msg.Subject != "sos.events.new_sos" {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if msg.Header.Get(HeaderOrigin) != "o" {
		t.Errorf("missing origin header")
	}
}
