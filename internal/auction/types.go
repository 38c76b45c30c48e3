package auction

import "github.com/gosimple/slug"

// Captain is a drafting captain with a synthetic-dollar budget. Dollars
// is mutated only by settlement and reversal.
type Captain struct {
	Name    string `json:"name"`
	Dollars int    `json:"dollars"`
}

// Player is a draftable player. IsPicked flips to true on settlement and
// back to false on reversal; a picked player is never nominable.
type Player struct {
	Name     string  `json:"name"`
	MMR      float64 `json:"mmr"`
	IsPicked bool    `json:"is_picked"`
}

// Bid is one entry in a lot's append-only bid history. AllIn marks a bid
// of the captain's entire remaining budget, which is exempt from the
// strict greater-than rule.
type Bid struct {
	CaptainName string `json:"captain_name"`
	Amount      int    `json:"amount"`
	AllIn       bool   `json:"all_in"`
}

// WinningBid is the outcome of a finished lot.
type WinningBid struct {
	Captain string `json:"captain"`
	Amount  int    `json:"amount"`
	Player  string `json:"player"`
}

// Nomination is the immutable historical record of a settled lot.
type Nomination struct {
	LotID      string  `json:"lot_id"`
	PlayerName string  `json:"player_name"`
	PlayerMMR  float64 `json:"player_mmr"`
	Nominator  string  `json:"nominator"`
	Captain    string  `json:"captain"`
	AmountPaid int     `json:"amount_paid"`
}

// Identity is the resolved requester of a command: who they claim to be
// plus whether the transport authenticated them as an admin.
type Identity struct {
	Name    string
	IsAdmin bool
}

// Slugify normalizes a name for lookup. All captain and player matching
// is slug-insensitive: "Cev", "cev" and " CEV " refer to the same
// captain.
func Slugify(name string) string {
	return slug.Make(name)
}

// SameName reports whether two names match under slug normalization.
func SameName(a, b string) bool {
	return slug.Make(a) == slug.Make(b)
}
