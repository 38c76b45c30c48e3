package announce

import (
	"strings"
	"testing"
)

func TestFormatMessageBid(t *testing.T) {
	msg, ok := FormatMessage(Event{
		Type:        EventBidPlaced,
		Captain:     "yfu",
		Player:      "toth",
		Amount:      300,
		SecondsLeft: 15,
		ServerTS:    1700000000000,
	})
	if !ok {
		t.Fatal("bid event not formatted")
	}
	if !strings.Contains(msg.Content, "yfu bids $300") {
		t.Fatalf("content = %q", msg.Content)
	}
	if msg.Color != colorBid {
		t.Fatalf("color = %#x, want %#x", msg.Color, colorBid)
	}
	if msg.Timestamp == "" {
		t.Fatal("timestamp not rendered")
	}
	var clock string
	for _, f := range msg.Fields {
		if f.Name == "Clock" {
			clock = f.Value
		}
	}
	if clock != "15s" {
		t.Fatalf("clock field = %q, want 15s", clock)
	}
}

func TestFormatMessageAllInGetsExtraField(t *testing.T) {
	msg, ok := FormatMessage(Event{Type: EventBidPlaced, Captain: "yfu", Amount: 1000, AllIn: true})
	if !ok {
		t.Fatal("event not formatted")
	}
	found := false
	for _, f := range msg.Fields {
		if f.Name == "All In" {
			found = true
		}
	}
	if !found {
		t.Fatal("all-in bid missing All In field")
	}
}

func TestFormatMessageSold(t *testing.T) {
	msg, ok := FormatMessage(Event{Type: EventLotSold, Captain: "yfu", Player: "toth", Amount: 300})
	if !ok {
		t.Fatal("sold event not formatted")
	}
	if !strings.Contains(msg.Title, "toth") {
		t.Fatalf("title = %q", msg.Title)
	}
	if msg.Color != colorSold {
		t.Fatalf("color = %#x, want %#x", msg.Color, colorSold)
	}
}

func TestFormatMessageUnknownTypeDropped(t *testing.T) {
	if _, ok := FormatMessage(Event{Type: "telemetry_blip"}); ok {
		t.Fatal("unknown event type was formatted")
	}
}

func TestFormatMessageReminder(t *testing.T) {
	msg, ok := FormatMessage(Event{Type: EventTimerReminder, Captain: "Cev", SecondsLeft: 10})
	if !ok {
		t.Fatal("reminder not formatted")
	}
	if !strings.Contains(msg.Content, "10s left") {
		t.Fatalf("content = %q", msg.Content)
	}
	if msg.Color != colorWarn {
		t.Fatalf("color = %#x, want warn", msg.Color)
	}
}
