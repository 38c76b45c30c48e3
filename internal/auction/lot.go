package auction

// lotTimingTable maps the number of bids placed so far to the seconds
// put back on the clock: 1st bid 35s, 2nd 30s, 3rd 20s, 4th-7th 15s,
// 8th onward 10s (the index saturates at the last entry).
var lotTimingTable = [...]int{35, 30, 20, 15, 15, 15, 15, 10, 10}

const (
	// twoCaptainsWindow is how many trailing bids are inspected for
	// heads-up detection.
	twoCaptainsWindow = 6
	// twoCaptainsSeconds overrides the timing table once a bidding war
	// has narrowed to two captains.
	twoCaptainsSeconds = 6

	// DefaultLotSeconds is the countdown a fresh lot starts with before
	// any bid lands.
	DefaultLotSeconds = 60
)

// Lot is the live bidding session for exactly one nominated player. At
// most one Lot is live at a time.
type Lot struct {
	ID            string  `json:"id"`
	Player        string  `json:"player"`
	PlayerMMR     float64 `json:"player_mmr"`
	Nominator     string  `json:"nominator"`
	Bids          []Bid   `json:"bids"`
	TimeRemaining int     `json:"time_remaining"`
	Paused        bool    `json:"is_paused"`

	// WinningBid is set exactly once, when the countdown reaches zero.
	WinningBid *WinningBid `json:"winning_bid,omitempty"`
}

func NewLot(id, player string, mmr float64, nominator string, initialSeconds int) *Lot {
	if initialSeconds <= 0 {
		initialSeconds = DefaultLotSeconds
	}
	return &Lot{
		ID:            id,
		Player:        player,
		PlayerMMR:     mmr,
		Nominator:     nominator,
		TimeRemaining: initialSeconds,
	}
}

// AddBid appends a bid and recomputes the countdown from the timing
// table, then applies the two-captains override. No validation happens
// here; that is the Auction's job. Returns the new time remaining.
func (l *Lot) AddBid(b Bid) int {
	l.Bids = append(l.Bids, b)
	idx := len(l.Bids) - 1
	if idx >= len(lotTimingTable) {
		idx = len(lotTimingTable) - 1
	}
	l.TimeRemaining = lotTimingTable[idx]
	if l.twoCaptainsMode() {
		l.TimeRemaining = twoCaptainsSeconds
	}
	return l.TimeRemaining
}

// twoCaptainsMode reports whether the most recent six bids involve at
// most two distinct captains. It needs a full window: early bids never
// trigger it.
func (l *Lot) twoCaptainsMode() bool {
	if len(l.Bids) < twoCaptainsWindow {
		return false
	}
	recent := l.Bids[len(l.Bids)-twoCaptainsWindow:]
	distinct := map[string]struct{}{}
	for _, b := range recent {
		distinct[Slugify(b.CaptainName)] = struct{}{}
	}
	return len(distinct) <= 2
}

// CurrentMaxBid returns the highest bid so far, ties broken by the most
// recently placed, or nil if no bids exist.
func (l *Lot) CurrentMaxBid() *Bid {
	var best *Bid
	for i := range l.Bids {
		if best == nil || l.Bids[i].Amount >= best.Amount {
			best = &l.Bids[i]
		}
	}
	return best
}

// Tick advances the countdown by one second. While paused it makes no
// progress and reports false. When the countdown reaches zero the
// winning bid is computed and stored.
func (l *Lot) Tick() (int, bool) {
	if l.Paused {
		return l.TimeRemaining, false
	}
	if l.TimeRemaining > 0 {
		l.TimeRemaining--
	}
	if l.TimeRemaining <= 0 && l.WinningBid == nil {
		wb := l.DetermineWinner()
		l.WinningBid = &wb
	}
	return l.TimeRemaining, true
}

// Done reports whether the lot has finished and its winner is computed.
func (l *Lot) Done() bool {
	return l.WinningBid != nil
}

// DetermineWinner resolves the lot: with no bids the nominator takes the
// player for free; otherwise the captain holding the current max bid
// pays the full amount they bid.
func (l *Lot) DetermineWinner() WinningBid {
	if len(l.Bids) == 0 {
		return WinningBid{Captain: l.Nominator, Amount: 0, Player: l.Player}
	}
	top := l.CurrentMaxBid()
	return WinningBid{Captain: top.CaptainName, Amount: top.Amount, Player: l.Player}
}

func (l *Lot) Pause() {
	l.Paused = true
}

func (l *Lot) Resume() {
	l.Paused = false
}
