package announce

import (
	"fmt"
	"strconv"
	"time"
)

const (
	colorInfo     = 0x5865F2
	colorBid      = 0x3BA55D
	colorSold     = 0x1ABC9C
	colorWarn     = 0xFEE75C
	colorCritical = 0xED4245

	defaultFooter = "pst draft live feed"
)

// FormatMessage renders an event for egress. Unknown event types are
// dropped, reported with ok=false.
func FormatMessage(ev Event) (Message, bool) {
	base := Message{
		Timestamp: eventTimestamp(ev.ServerTS),
		Footer:    defaultFooter,
	}

	switch ev.Type {
	case EventDraftStarted:
		base.Title = fmt.Sprintf("Draft Started · %s", ev.League)
		base.Content = "the draft is live"
		base.Description = ev.Detail
		base.Color = colorInfo
	case EventNominationTurn:
		base.Title = "Nomination Turn"
		base.Content = fmt.Sprintf("%s is up to nominate", ev.Captain)
		base.Description = fmt.Sprintf("%s, nominate a player.", ev.Captain)
		base.Color = colorInfo
		base.Fields = append(base.Fields,
			Field{Name: "Captain", Value: ev.Captain, Inline: true},
			Field{Name: "Time", Value: secondsText(ev.SecondsLeft), Inline: true},
		)
	case EventTimerReminder:
		base.Title = "Hurry Up"
		base.Content = fmt.Sprintf("%s has %ds left to nominate", ev.Captain, ev.SecondsLeft)
		base.Description = fmt.Sprintf("%s: %d seconds left.", ev.Captain, ev.SecondsLeft)
		base.Color = colorWarn
	case EventLotOpened:
		base.Title = fmt.Sprintf("On the Block · %s", ev.Player)
		base.Content = fmt.Sprintf("%s nominated %s", ev.Captain, ev.Player)
		base.Description = fmt.Sprintf("%s is up for auction.", ev.Player)
		base.Color = colorInfo
		base.Fields = append(base.Fields,
			Field{Name: "Player", Value: ev.Player, Inline: true},
			Field{Name: "Nominator", Value: ev.Captain, Inline: true},
			Field{Name: "Clock", Value: secondsText(ev.SecondsLeft), Inline: true},
		)
	case EventBidPlaced:
		base.Title = "Bid"
		base.Content = fmt.Sprintf("%s bids $%d on %s", ev.Captain, ev.Amount, ev.Player)
		base.Description = fmt.Sprintf("%s bids $%d.", ev.Captain, ev.Amount)
		base.Color = colorBid
		base.Fields = append(base.Fields,
			Field{Name: "Captain", Value: ev.Captain, Inline: true},
			Field{Name: "Amount", Value: "$" + strconv.Itoa(ev.Amount), Inline: true},
			Field{Name: "Clock", Value: secondsText(ev.SecondsLeft), Inline: true},
		)
		if ev.AllIn {
			base.Fields = append(base.Fields, Field{Name: "All In", Value: "yes", Inline: true})
		}
	case EventLotSold:
		base.Title = fmt.Sprintf("Sold · %s", ev.Player)
		base.Content = fmt.Sprintf("%s goes to %s for $%d", ev.Player, ev.Captain, ev.Amount)
		base.Description = fmt.Sprintf("%s drafts %s for $%d.", ev.Captain, ev.Player, ev.Amount)
		base.Color = colorSold
		base.Fields = append(base.Fields,
			Field{Name: "Player", Value: ev.Player, Inline: true},
			Field{Name: "Captain", Value: ev.Captain, Inline: true},
			Field{Name: "Price", Value: "$" + strconv.Itoa(ev.Amount), Inline: true},
		)
	case EventNominationUndone:
		base.Title = "Nomination Undone"
		base.Content = fmt.Sprintf("%s returns to the pool", ev.Player)
		base.Description = fmt.Sprintf("%s was refunded $%d; %s is draftable again.", ev.Captain, ev.Amount, ev.Player)
		base.Color = colorCritical
	case EventDraftPaused:
		base.Title = "Draft Paused"
		base.Content = "the draft is paused"
		base.Description = ev.Detail
		base.Color = colorWarn
	case EventDraftResumed:
		base.Title = "Draft Resumed"
		base.Content = "the draft continues"
		base.Description = ev.Detail
		base.Color = colorBid
	case EventDraftComplete:
		base.Title = fmt.Sprintf("Draft Complete · %s", ev.League)
		base.Content = "every team is full"
		base.Description = ev.Detail
		base.Color = colorSold
	default:
		return Message{}, false
	}

	return base, true
}

func secondsText(s int) string {
	if s <= 0 {
		return "-"
	}
	return strconv.Itoa(s) + "s"
}

func eventTimestamp(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
