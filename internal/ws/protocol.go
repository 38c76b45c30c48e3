package ws

import "pst-draft-bot/internal/announce"

// ProtocolVersion is bumped on breaking changes to the feed messages.
const ProtocolVersion = 1

// Hello is the first message every spectator receives.
type Hello struct {
	Type            string `json:"type"`
	ProtocolVersion int    `json:"protocol_version"`
	League          string `json:"league"`
}

// Feed wraps one draft event for the wire.
type Feed struct {
	Type            string         `json:"type"`
	ProtocolVersion int            `json:"protocol_version"`
	TimestampMS     int64          `json:"timestamp_ms"`
	Event           announce.Event `json:"event"`
}
