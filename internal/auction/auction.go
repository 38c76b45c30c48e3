package auction

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
)

// DefaultTeamSize is how many players each captain drafts.
const DefaultTeamSize = 4

// Roster is the injected persistence boundary. Writes are best-effort:
// the draft never blocks or fails on storage, it logs and moves on.
type Roster interface {
	LoadCaptains(ctx context.Context) ([]Captain, error)
	LoadPlayers(ctx context.Context) ([]Player, error)
	LoadNominations(ctx context.Context) ([]Nomination, error)
	LoadOrder(ctx context.Context) ([]string, error)

	SaveCaptains(ctx context.Context, captains []Captain) error
	SavePlayers(ctx context.Context, players []Player) error
	SaveNominations(ctx context.Context, nominations []Nomination) error
	SaveOrder(ctx context.Context, order []string) error
}

// Options tune an Auction. Zero values fall back to defaults.
type Options struct {
	TeamSize   int
	LotSeconds int
	NewLotID   func() string
}

// Auction is the top-level draft aggregate: it owns the phase machine,
// the nomination queue, the current lot and the nomination history, and
// is the single owner of all captain/player mutation. It is not safe
// for concurrent use; callers must serialize commands through one
// execution path (see the session package).
type Auction struct {
	machine     *Machine
	queue       *Queue
	lot         *Lot
	captains    []Captain
	players     []Player
	nominations []Nomination

	roster     Roster
	teamSize   int
	lotSeconds int
	newLotID   func() string
}

func New(roster Roster, opts Options) *Auction {
	if opts.TeamSize <= 0 {
		opts.TeamSize = DefaultTeamSize
	}
	if opts.LotSeconds <= 0 {
		opts.LotSeconds = DefaultLotSeconds
	}
	if opts.NewLotID == nil {
		var n int
		opts.NewLotID = func() string {
			n++
			return fmt.Sprintf("lot-%d", n)
		}
	}
	return &Auction{
		machine:    NewMachine(),
		queue:      &Queue{},
		roster:     roster,
		teamSize:   opts.TeamSize,
		lotSeconds: opts.LotSeconds,
		newLotID:   opts.NewLotID,
	}
}

// Load hydrates captains, players, nomination history and queue order
// from the roster store.
func (a *Auction) Load(ctx context.Context) error {
	captains, err := a.roster.LoadCaptains(ctx)
	if err != nil {
		return fmt.Errorf("load captains: %w", err)
	}
	players, err := a.roster.LoadPlayers(ctx)
	if err != nil {
		return fmt.Errorf("load players: %w", err)
	}
	nominations, err := a.roster.LoadNominations(ctx)
	if err != nil {
		return fmt.Errorf("load nominations: %w", err)
	}
	order, err := a.roster.LoadOrder(ctx)
	if err != nil {
		return fmt.Errorf("load nominate order: %w", err)
	}
	a.captains = captains
	a.players = players
	a.nominations = nominations
	a.queue = NewQueueFromEntries(order)
	return nil
}

// StartResult confirms a started draft.
type StartResult struct {
	Captains   int      `json:"captains"`
	Players    int      `json:"players"`
	QueueOrder []string `json:"queue_order"`
}

// Start moves the draft out of dormancy and seeds the nomination queue.
// Admin only. Seeding is idempotent: an already-populated queue is kept.
func (a *Auction) Start(ctx context.Context, req Identity) (*StartResult, error) {
	if !req.IsAdmin {
		return nil, Errf(CodeUnauthorized, HintReaction, "%s is not allowed to start the draft", req.Name)
	}
	if err := a.machine.Fire(TriggerStartMachine); err != nil {
		return nil, err
	}
	if a.queue.Len() == 0 {
		a.queue = SeedQueue(a.captains, a.teamSize)
	}
	a.persistOrder(ctx)
	return &StartResult{
		Captains:   len(a.captains),
		Players:    len(a.players),
		QueueOrder: a.queue.Entries(),
	}, nil
}

// Nominate validates a nomination and opens a lot for the player. The
// transition to buffering/bidding is the orchestrator's job; this
// method leaves the machine in nominating.
func (a *Auction) Nominate(ctx context.Context, req Identity, playerName, captainOverride string) (*Lot, error) {
	switch a.machine.State() {
	case StateBidding:
		return nil, Errf(CodeBusy, HintReaction, "a lot is live; wait for the bidding to finish")
	case StateStarting:
		if err := a.machine.Fire(TriggerNomFromStart); err != nil {
			return nil, err
		}
	case StateNominating:
	default:
		return nil, Errf(CodeBusy, HintReaction, "nominations are not open (state %s)", a.machine.State())
	}
	if a.lot != nil && !a.lot.Done() {
		return nil, Errf(CodeBusy, HintReaction, "a lot for %s is already live", a.lot.Player)
	}

	player := a.findPlayer(playerName)
	if player == nil {
		return nil, Errf(CodeNotFound, HintBroadcast, "player %s does not exist", playerName)
	}
	if player.IsPicked {
		return nil, Errf(CodeAlreadyPicked, HintBroadcast, "player %s was already drafted", player.Name)
	}

	var nominator string
	if captainOverride != "" {
		if !req.IsAdmin {
			return nil, Errf(CodeUnauthorized, HintReaction, "only admins may nominate on behalf of a captain")
		}
		captain := a.findCaptain(captainOverride)
		if captain == nil {
			return nil, Errf(CodeNotFound, HintBroadcast, "captain %s does not exist", captainOverride)
		}
		nominator = captain.Name
	} else {
		eligible, ok := a.NextEligibleCaptain()
		if !ok {
			return nil, Errf(CodeNotEligible, HintBroadcast, "every team is full; the draft is over")
		}
		if !SameName(req.Name, eligible) {
			return nil, Errf(CodeNotEligible, HintReaction, "it is %s's turn to nominate, not %s's", eligible, req.Name)
		}
		nominator = eligible
	}

	a.lot = NewLot(a.newLotID(), player.Name, player.MMR, nominator, a.lotSeconds)
	return a.lot, nil
}

// AutoNominate opens a lot for the highest-MMR unpicked player on
// behalf of the next eligible captain. Called exactly once per expired,
// uncancelled nomination timer. Returns (nil, nil) when no captain or
// player remains.
func (a *Auction) AutoNominate(ctx context.Context) (*Lot, error) {
	if a.lot != nil && !a.lot.Done() {
		return nil, Errf(CodeBusy, HintReaction, "a lot for %s is already live", a.lot.Player)
	}
	nominator, ok := a.NextEligibleCaptain()
	if !ok {
		return nil, nil
	}
	player := a.topUnpickedPlayer()
	if player == nil {
		return nil, nil
	}
	a.lot = NewLot(a.newLotID(), player.Name, player.MMR, nominator, a.lotSeconds)
	return a.lot, nil
}

// Bid validates and applies a bid against the live lot, returning the
// refreshed time remaining. Outside the bidding phase it returns
// ErrBidIgnored: a no-op signal, not a user-facing failure.
func (a *Auction) Bid(ctx context.Context, req Identity, amount int, captainOverride string) (int, error) {
	if a.machine.State() != StateBidding || a.lot == nil {
		return 0, ErrBidIgnored
	}

	var captain *Captain
	if captainOverride != "" {
		if !req.IsAdmin {
			return 0, Errf(CodeUnauthorized, HintReaction, "only admins may bid on behalf of a captain")
		}
		captain = a.findCaptain(captainOverride)
		if captain == nil {
			return 0, Errf(CodeNotFound, HintBroadcast, "captain %s does not exist", captainOverride)
		}
	} else {
		captain = a.findCaptain(req.Name)
		if captain == nil {
			return 0, Errf(CodeNotFound, HintReaction, "%s is not a captain in this draft", req.Name)
		}
	}

	if a.rosterSize(captain.Name) >= a.teamSize {
		return 0, Errf(CodeNotEligible, HintReaction, "%s's team is already full", captain.Name)
	}
	if amount < 0 || amount > captain.Dollars {
		return 0, Errf(CodeInsufficientFunds, HintBroadcast,
			"%s cannot bid $%d with $%d remaining", captain.Name, amount, captain.Dollars)
	}

	if max := a.lot.CurrentMaxBid(); max != nil {
		leading := SameName(max.CaptainName, captain.Name)
		if leading && amount >= max.Amount {
			return 0, Errf(CodeBidAgainstSelf, HintReaction,
				"%s already holds the leading bid of $%d", captain.Name, max.Amount)
		}
		if amount < max.Amount {
			return 0, Errf(CodeTooLowBid, HintReaction,
				"bid of $%d does not beat the current $%d", amount, max.Amount)
		}
		if amount == max.Amount && amount != captain.Dollars {
			return 0, Errf(CodeTooLowBid, HintReaction,
				"a matching bid of $%d is only allowed all-in", amount)
		}
	}

	remaining := a.lot.AddBid(Bid{
		CaptainName: captain.Name,
		Amount:      amount,
		AllIn:       amount == captain.Dollars,
	})
	return remaining, nil
}

// GiveLotToWinner settles a finished lot: debits the winner, marks the
// player picked, consumes the queue head, records the nomination and
// clears the lot. Calling it before the countdown drained is a
// programming-contract violation and fails hard.
func (a *Auction) GiveLotToWinner(ctx context.Context) (*Nomination, error) {
	if a.lot == nil || a.lot.WinningBid == nil {
		return nil, fmt.Errorf("give lot to winner: no finished lot")
	}
	wb := a.lot.WinningBid
	captain := a.findCaptain(wb.Captain)
	if captain == nil {
		return nil, fmt.Errorf("give lot to winner: winning captain %s missing from roster", wb.Captain)
	}
	player := a.findPlayer(a.lot.Player)
	if player == nil {
		return nil, fmt.Errorf("give lot to winner: player %s missing from pool", a.lot.Player)
	}

	captain.Dollars -= wb.Amount
	player.IsPicked = true
	a.queue.PopFront()

	nom := Nomination{
		LotID:      a.lot.ID,
		PlayerName: player.Name,
		PlayerMMR:  player.MMR,
		Nominator:  a.lot.Nominator,
		Captain:    captain.Name,
		AmountPaid: wb.Amount,
	}
	a.nominations = append(a.nominations, nom)
	a.lot = nil

	a.persistAll(ctx)
	return &nom, nil
}

// PopRecentNomination reverses the nomination offset positions back
// from the most recent: the captain is refunded, the player returns to
// the pool and the nominator regains queue priority. Returns (nil, nil)
// when history does not reach that far back.
func (a *Auction) PopRecentNomination(ctx context.Context, req Identity, offset int) (*Nomination, error) {
	if !req.IsAdmin {
		return nil, Errf(CodeUnauthorized, HintReaction, "%s is not allowed to undo nominations", req.Name)
	}
	idx := len(a.nominations) - 1 - offset
	if offset < 0 || idx < 0 {
		return nil, nil
	}
	nom := a.nominations[idx]
	a.nominations = append(a.nominations[:idx], a.nominations[idx+1:]...)

	if captain := a.findCaptain(nom.Captain); captain != nil {
		captain.Dollars += nom.AmountPaid
	}
	if player := a.findPlayer(nom.PlayerName); player != nil {
		player.IsPicked = false
	}
	a.queue.PushFront(nom.Nominator)

	a.persistAll(ctx)
	return &nom, nil
}

// NextEligibleCaptain exposes the queue head for the orchestrator.
func (a *Auction) NextEligibleCaptain() (string, bool) {
	return a.queue.NextEligible(a.rosterSize, a.teamSize)
}

// Fire applies a phase transition; the orchestrator sequences the
// buffering/bidding/break/ending triggers around nominations and lots.
func (a *Auction) Fire(t Trigger) error {
	return a.machine.Fire(t)
}

func (a *Auction) State() State {
	return a.machine.State()
}

// CurrentLot returns the live lot, or nil.
func (a *Auction) CurrentLot() *Lot {
	return a.lot
}

// AddCaptain registers a captain. Admin only; duplicate slugs rejected.
func (a *Auction) AddCaptain(ctx context.Context, req Identity, name string, dollars int) error {
	if !req.IsAdmin {
		return Errf(CodeUnauthorized, HintReaction, "%s is not allowed to add captains", req.Name)
	}
	if dollars < 0 {
		return Errf(CodeInsufficientFunds, HintReaction, "captain budget cannot be negative")
	}
	if a.findCaptain(name) != nil {
		return Errf(CodeDuplicateName, HintReaction, "captain %s already exists", name)
	}
	a.captains = append(a.captains, Captain{Name: name, Dollars: dollars})
	a.persistCaptains(ctx)
	return nil
}

// AddPlayer registers a player in the pool. Admin only.
func (a *Auction) AddPlayer(ctx context.Context, req Identity, name string, mmr float64) error {
	if !req.IsAdmin {
		return Errf(CodeUnauthorized, HintReaction, "%s is not allowed to add players", req.Name)
	}
	if a.findPlayer(name) != nil {
		return Errf(CodeDuplicateName, HintReaction, "player %s already exists", name)
	}
	a.players = append(a.players, Player{Name: name, MMR: mmr})
	a.persistPlayers(ctx)
	return nil
}

// RemoveCaptain drops a captain from the draft. Admin only.
func (a *Auction) RemoveCaptain(ctx context.Context, req Identity, name string) error {
	if !req.IsAdmin {
		return Errf(CodeUnauthorized, HintReaction, "%s is not allowed to remove captains", req.Name)
	}
	for i := range a.captains {
		if SameName(a.captains[i].Name, name) {
			a.captains = append(a.captains[:i], a.captains[i+1:]...)
			a.persistCaptains(ctx)
			return nil
		}
	}
	return Errf(CodeNotFound, HintReaction, "captain %s does not exist", name)
}

// RemovePlayer drops an unpicked player from the pool. Admin only.
func (a *Auction) RemovePlayer(ctx context.Context, req Identity, name string) error {
	if !req.IsAdmin {
		return Errf(CodeUnauthorized, HintReaction, "%s is not allowed to remove players", req.Name)
	}
	for i := range a.players {
		if SameName(a.players[i].Name, name) {
			if a.players[i].IsPicked {
				return Errf(CodeBusy, HintReaction, "player %s was already drafted; undo the nomination first", name)
			}
			a.players = append(a.players[:i], a.players[i+1:]...)
			a.persistPlayers(ctx)
			return nil
		}
	}
	return Errf(CodeNotFound, HintReaction, "player %s does not exist", name)
}

// SeedRoster replaces captains and players wholesale, used at bootstrap
// when ingesting CSV rosters into an empty store.
func (a *Auction) SeedRoster(ctx context.Context, captains []Captain, players []Player) {
	a.captains = captains
	a.players = players
	a.persistCaptains(ctx)
	a.persistPlayers(ctx)
}

// Captains returns the captain list sorted by descending budget.
func (a *Auction) Captains() []Captain {
	out := make([]Captain, len(a.captains))
	copy(out, a.captains)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Dollars > out[j].Dollars })
	return out
}

// Players returns the player pool sorted by descending MMR.
func (a *Auction) Players() []Player {
	out := make([]Player, len(a.players))
	copy(out, a.players)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MMR > out[j].MMR })
	return out
}

// Nominations returns the settlement history, oldest first.
func (a *Auction) Nominations() []Nomination {
	out := make([]Nomination, len(a.nominations))
	copy(out, a.nominations)
	return out
}

// QueueEntries returns the remaining nomination order.
func (a *Auction) QueueEntries() []string {
	return a.queue.Entries()
}

func (a *Auction) findCaptain(name string) *Captain {
	for i := range a.captains {
		if SameName(a.captains[i].Name, name) {
			return &a.captains[i]
		}
	}
	return nil
}

func (a *Auction) findPlayer(name string) *Player {
	for i := range a.players {
		if SameName(a.players[i].Name, name) {
			return &a.players[i]
		}
	}
	return nil
}

// rosterSize counts settled nominations won by the captain.
func (a *Auction) rosterSize(name string) int {
	n := 0
	for i := range a.nominations {
		if SameName(a.nominations[i].Captain, name) {
			n++
		}
	}
	return n
}

// topUnpickedPlayer returns the highest-MMR player still in the pool.
func (a *Auction) topUnpickedPlayer() *Player {
	var best *Player
	for i := range a.players {
		if a.players[i].IsPicked {
			continue
		}
		if best == nil || a.players[i].MMR > best.MMR {
			best = &a.players[i]
		}
	}
	return best
}

func (a *Auction) persistAll(ctx context.Context) {
	a.persistCaptains(ctx)
	a.persistPlayers(ctx)
	if err := a.roster.SaveNominations(ctx, a.nominations); err != nil {
		log.Warn().Err(err).Msg("persist nominations failed")
	}
	a.persistOrder(ctx)
}

func (a *Auction) persistCaptains(ctx context.Context) {
	if err := a.roster.SaveCaptains(ctx, a.captains); err != nil {
		log.Warn().Err(err).Msg("persist captains failed")
	}
}

func (a *Auction) persistPlayers(ctx context.Context) {
	if err := a.roster.SavePlayers(ctx, a.players); err != nil {
		log.Warn().Err(err).Msg("persist players failed")
	}
}

func (a *Auction) persistOrder(ctx context.Context) {
	if err := a.roster.SaveOrder(ctx, a.queue.Entries()); err != nil {
		log.Warn().Err(err).Msg("persist nominate order failed")
	}
}
