// Package announce pushes draft events to spectators: a Discord
// webhook, the websocket feed, or anything else implementing Adapter.
package announce

import "context"

// Event types emitted by the draft session.
const (
	EventDraftStarted     = "draft_started"
	EventNominationTurn   = "nomination_turn"
	EventTimerReminder    = "timer_reminder"
	EventLotOpened        = "lot_opened"
	EventBidPlaced        = "bid_placed"
	EventLotSold          = "lot_sold"
	EventNominationUndone = "nomination_undone"
	EventDraftPaused      = "draft_paused"
	EventDraftResumed     = "draft_resumed"
	EventDraftComplete    = "draft_complete"
)

// Event is one observable moment of the draft, flattened for egress.
type Event struct {
	Type        string `json:"type"`
	League      string `json:"league"`
	Captain     string `json:"captain,omitempty"`
	Player      string `json:"player,omitempty"`
	Amount      int    `json:"amount,omitempty"`
	AllIn       bool   `json:"all_in,omitempty"`
	SecondsLeft int    `json:"seconds_left,omitempty"`
	State       string `json:"state,omitempty"`
	Detail      string `json:"detail,omitempty"`
	ServerTS    int64  `json:"server_ts"`
}

// Field is one embed field of a formatted message.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Message is a platform-neutral rendering of an Event.
type Message struct {
	Title       string
	Content     string
	Description string
	Color       int
	Timestamp   string
	Footer      string
	Fields      []Field
}

// Adapter delivers a formatted message to one platform.
type Adapter interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}
