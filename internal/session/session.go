// Package session runs one live draft. A single goroutine owns the
// auction aggregate; transports submit commands over a channel and the
// same goroutine drives the countdown clocks, so no lock ever guards
// draft state.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"pst-draft-bot/internal/announce"
	"pst-draft-bot/internal/auction"
)

// ErrClosed reports a command submitted after the session stopped.
var ErrClosed = errors.New("draft session closed")

// DefaultStartSeconds is the countdown between the start command and
// the first nomination turn.
const DefaultStartSeconds = 10

// Announcer receives draft events for spectators. Implementations must
// not block.
type Announcer interface {
	Publish(ev announce.Event)
}

// Config tunes one draft session.
type Config struct {
	League            string
	StartSeconds      int
	NominationSeconds int
}

func (c Config) withDefaults() Config {
	if c.StartSeconds <= 0 {
		c.StartSeconds = DefaultStartSeconds
	}
	if c.NominationSeconds <= 0 {
		c.NominationSeconds = auction.DefaultNominationSeconds
	}
	return c
}

// Snapshot is a read-only copy of the draft for transports.
type Snapshot struct {
	League      string               `json:"league"`
	State       auction.State        `json:"state"`
	Captains    []auction.Captain    `json:"captains"`
	Players     []auction.Player     `json:"players"`
	Nominations []auction.Nomination `json:"nominations"`
	QueueOrder  []string             `json:"queue_order"`
	NextCaptain string               `json:"next_captain,omitempty"`
	Lot         *auction.Lot         `json:"lot,omitempty"`
}

type command func(ctx context.Context)

// Session orchestrates the draft lifecycle: start countdown,
// nomination turns with their timers, lot countdowns, settlement and
// the break/ending phases.
type Session struct {
	cfg       Config
	auc       *auction.Auction
	clock     clockwork.Clock
	announcer Announcer

	commandCh chan command
	done      chan struct{}

	// Actor-owned state, touched only from run.
	runCtx         context.Context
	ticker         clockwork.Ticker
	startRemaining int
	nomTimer       *auction.NominationTimer
	nomDone        chan error
}

func New(cfg Config, auc *auction.Auction, clock clockwork.Clock, announcer Announcer) *Session {
	return &Session{
		cfg:       cfg.withDefaults(),
		auc:       auc,
		clock:     clock,
		announcer: announcer,
		commandCh: make(chan command),
		done:      make(chan struct{}),
	}
}

// Run owns the draft until ctx ends or Close is called. It must be
// running before any command method is used.
func (s *Session) Run(ctx context.Context) {
	s.runCtx = ctx
	defer s.disarmTicker()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case cmd := <-s.commandCh:
			cmd(ctx)
		case <-s.tickChan():
			s.onTick(ctx)
		case err := <-s.nomDoneChan():
			s.onNominationTimerDone(ctx, err)
		}
	}
}

// Close stops the session. Idempotent.
func (s *Session) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

// submit runs fn on the actor goroutine and waits for it.
func submit[T any](ctx context.Context, s *Session, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	type result struct {
		value T
		err   error
	}
	resCh := make(chan result, 1)
	cmd := func(cctx context.Context) {
		v, err := fn(cctx)
		resCh <- result{v, err}
	}
	select {
	case s.commandCh <- cmd:
	case <-s.done:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	select {
	case r := <-resCh:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Start opens the draft and begins the start countdown.
func (s *Session) Start(ctx context.Context, req auction.Identity) (*auction.StartResult, error) {
	return submit(ctx, s, func(cctx context.Context) (*auction.StartResult, error) {
		res, err := s.auc.Start(cctx, req)
		if err != nil {
			return nil, err
		}
		s.startRemaining = s.cfg.StartSeconds
		s.armTicker()
		s.announce(announce.Event{
			Type:   announce.EventDraftStarted,
			Detail: startDetail(s.cfg.StartSeconds),
		})
		return res, nil
	})
}

// Nominate puts a player on the block for the requesting captain.
func (s *Session) Nominate(ctx context.Context, req auction.Identity, player, captainOverride string) (*auction.Lot, error) {
	return submit(ctx, s, func(cctx context.Context) (*auction.Lot, error) {
		wasStarting := s.auc.State() == auction.StateStarting
		lot, err := s.auc.Nominate(cctx, req, player, captainOverride)
		if err != nil {
			return nil, err
		}
		if wasStarting {
			s.startRemaining = 0
			s.disarmTicker()
		}
		s.cancelNominationTimer()
		s.openLot(cctx, lot)
		return copyLot(lot), nil
	})
}

// Bid places a bid on the live lot and returns the refreshed clock.
func (s *Session) Bid(ctx context.Context, req auction.Identity, amount int, captainOverride string) (int, error) {
	return submit(ctx, s, func(cctx context.Context) (int, error) {
		remaining, err := s.auc.Bid(cctx, req, amount, captainOverride)
		if err != nil {
			return 0, err
		}
		lot := s.auc.CurrentLot()
		max := lot.CurrentMaxBid()
		s.announce(announce.Event{
			Type:        announce.EventBidPlaced,
			Captain:     max.CaptainName,
			Player:      lot.Player,
			Amount:      max.Amount,
			AllIn:       max.AllIn,
			SecondsLeft: remaining,
		})
		return remaining, nil
	})
}

// Pause freezes the draft clock. Admin only.
func (s *Session) Pause(ctx context.Context, req auction.Identity) error {
	_, err := submit(ctx, s, func(cctx context.Context) (struct{}, error) {
		return struct{}{}, s.handlePause(req)
	})
	return err
}

// Resume unfreezes a paused draft. Admin only.
func (s *Session) Resume(ctx context.Context, req auction.Identity) error {
	_, err := submit(ctx, s, func(cctx context.Context) (struct{}, error) {
		return struct{}{}, s.handleResume(req)
	})
	return err
}

// Undo reverses the nomination offset positions back from the most
// recent one. Admin only.
func (s *Session) Undo(ctx context.Context, req auction.Identity, offset int) (*auction.Nomination, error) {
	return submit(ctx, s, func(cctx context.Context) (*auction.Nomination, error) {
		nom, err := s.auc.PopRecentNomination(cctx, req, offset)
		if err != nil || nom == nil {
			return nom, err
		}
		s.announce(announce.Event{
			Type:    announce.EventNominationUndone,
			Captain: nom.Captain,
			Player:  nom.PlayerName,
			Amount:  nom.AmountPaid,
		})
		return nom, nil
	})
}

// End finishes the draft early. Admin only.
func (s *Session) End(ctx context.Context, req auction.Identity) error {
	_, err := submit(ctx, s, func(cctx context.Context) (struct{}, error) {
		return struct{}{}, s.handleEnd(cctx, req)
	})
	return err
}

// AddCaptain registers a captain. Admin only.
func (s *Session) AddCaptain(ctx context.Context, req auction.Identity, name string, dollars int) error {
	_, err := submit(ctx, s, func(cctx context.Context) (struct{}, error) {
		return struct{}{}, s.auc.AddCaptain(cctx, req, name, dollars)
	})
	return err
}

// AddPlayer registers a player. Admin only.
func (s *Session) AddPlayer(ctx context.Context, req auction.Identity, name string, mmr float64) error {
	_, err := submit(ctx, s, func(cctx context.Context) (struct{}, error) {
		return struct{}{}, s.auc.AddPlayer(cctx, req, name, mmr)
	})
	return err
}

// RemoveCaptain drops a captain. Admin only.
func (s *Session) RemoveCaptain(ctx context.Context, req auction.Identity, name string) error {
	_, err := submit(ctx, s, func(cctx context.Context) (struct{}, error) {
		return struct{}{}, s.auc.RemoveCaptain(cctx, req, name)
	})
	return err
}

// RemovePlayer drops an unpicked player. Admin only.
func (s *Session) RemovePlayer(ctx context.Context, req auction.Identity, name string) error {
	_, err := submit(ctx, s, func(cctx context.Context) (struct{}, error) {
		return struct{}{}, s.auc.RemovePlayer(cctx, req, name)
	})
	return err
}

// Snapshot returns a copy of the full draft state.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	return submit(ctx, s, func(context.Context) (Snapshot, error) {
		snap := Snapshot{
			League:      s.cfg.League,
			State:       s.auc.State(),
			Captains:    s.auc.Captains(),
			Players:     s.auc.Players(),
			Nominations: s.auc.Nominations(),
			QueueOrder:  s.auc.QueueEntries(),
			Lot:         copyLot(s.auc.CurrentLot()),
		}
		if captain, ok := s.auc.NextEligibleCaptain(); ok {
			snap.NextCaptain = captain
		}
		return snap, nil
	})
}

// --- actor internals ---

func (s *Session) onTick(ctx context.Context) {
	switch s.auc.State() {
	case auction.StateStarting:
		s.startRemaining--
		if s.startRemaining <= 0 {
			s.disarmTicker()
			if err := s.auc.Fire(auction.TriggerNomFromStart); err != nil {
				log.Error().Err(err).Msg("session: start countdown transition failed")
				return
			}
			s.beginNominationTurn(ctx)
		}
	case auction.StateBidding:
		lot := s.auc.CurrentLot()
		if lot == nil {
			s.disarmTicker()
			return
		}
		lot.Tick()
		if lot.Done() {
			s.settleLot(ctx)
		}
	default:
		s.disarmTicker()
	}
}

func (s *Session) beginNominationTurn(ctx context.Context) {
	captain, ok := s.auc.NextEligibleCaptain()
	if !ok || !s.poolHasPlayers() {
		s.finish(ctx, auction.TriggerEndFromNom)
		return
	}
	s.announce(announce.Event{
		Type:        announce.EventNominationTurn,
		Captain:     captain,
		SecondsLeft: s.cfg.NominationSeconds,
	})
	s.nomTimer = auction.NewNominationTimer(s.clock, s.cfg.NominationSeconds, captain, s.remind)
	s.nomDone = make(chan error, 1)
	go func(t *auction.NominationTimer, ch chan error) {
		ch <- t.Run(s.runCtx)
	}(s.nomTimer, s.nomDone)
}

// remind runs on the timer goroutine; Publish is safe off-actor.
func (s *Session) remind(captain string, secondsLeft int) {
	s.announce(announce.Event{
		Type:        announce.EventTimerReminder,
		Captain:     captain,
		SecondsLeft: secondsLeft,
	})
}

func (s *Session) onNominationTimerDone(ctx context.Context, err error) {
	s.nomDone = nil
	s.nomTimer = nil
	switch {
	case err == nil:
	case errors.Is(err, auction.ErrTimerCancelled), errors.Is(err, context.Canceled):
		return
	default:
		log.Error().Err(err).Msg("session: nomination timer failed")
		return
	}
	if s.auc.State() != auction.StateNominating || s.auc.CurrentLot() != nil {
		return
	}
	lot, err := s.auc.AutoNominate(ctx)
	if err != nil {
		log.Error().Err(err).Msg("session: auto nomination failed")
		return
	}
	if lot == nil {
		s.finish(ctx, auction.TriggerEndFromNom)
		return
	}
	s.openLot(ctx, lot)
}

func (s *Session) openLot(ctx context.Context, lot *auction.Lot) {
	if err := s.auc.Fire(auction.TriggerBuffFromNom); err != nil {
		log.Error().Err(err).Msg("session: buffering transition failed")
	}
	if err := s.auc.Fire(auction.TriggerBidFromBuff); err != nil {
		log.Error().Err(err).Msg("session: bidding transition failed")
	}
	s.announce(announce.Event{
		Type:        announce.EventLotOpened,
		Captain:     lot.Nominator,
		Player:      lot.Player,
		SecondsLeft: lot.TimeRemaining,
	})
	s.armTicker()
}

func (s *Session) settleLot(ctx context.Context) {
	s.disarmTicker()
	nom, err := s.auc.GiveLotToWinner(ctx)
	if err != nil {
		log.Error().Err(err).Msg("session: settlement failed")
		return
	}
	s.announce(announce.Event{
		Type:    announce.EventLotSold,
		Captain: nom.Captain,
		Player:  nom.PlayerName,
		Amount:  nom.AmountPaid,
	})
	if err := s.auc.Fire(auction.TriggerNomFromBid); err != nil {
		log.Error().Err(err).Msg("session: post-settlement transition failed")
		return
	}
	s.beginNominationTurn(ctx)
}

func (s *Session) handlePause(req auction.Identity) error {
	if !req.IsAdmin {
		return auction.Errf(auction.CodeUnauthorized, auction.HintReaction, "%s is not allowed to pause the draft", req.Name)
	}
	switch s.auc.State() {
	case auction.StateNominating:
		if err := s.auc.Fire(auction.TriggerBreakFromNom); err != nil {
			return err
		}
		if s.nomTimer != nil {
			s.nomTimer.Pause()
		}
	case auction.StateBidding:
		lot := s.auc.CurrentLot()
		if lot == nil || lot.Paused {
			return auction.Errf(auction.CodeBusy, auction.HintReaction, "nothing to pause")
		}
		lot.Pause()
	default:
		return auction.Errf(auction.CodeBusy, auction.HintReaction, "nothing to pause in state %s", s.auc.State())
	}
	s.announce(announce.Event{Type: announce.EventDraftPaused})
	return nil
}

func (s *Session) handleResume(req auction.Identity) error {
	if !req.IsAdmin {
		return auction.Errf(auction.CodeUnauthorized, auction.HintReaction, "%s is not allowed to resume the draft", req.Name)
	}
	switch s.auc.State() {
	case auction.StateBreak:
		if err := s.auc.Fire(auction.TriggerNomFromBreak); err != nil {
			return err
		}
		if s.nomTimer != nil {
			s.nomTimer.Resume()
		}
	case auction.StateBidding:
		lot := s.auc.CurrentLot()
		if lot == nil || !lot.Paused {
			return auction.Errf(auction.CodeBusy, auction.HintReaction, "nothing to resume")
		}
		lot.Resume()
	default:
		return auction.Errf(auction.CodeBusy, auction.HintReaction, "nothing to resume in state %s", s.auc.State())
	}
	s.announce(announce.Event{Type: announce.EventDraftResumed})
	return nil
}

func (s *Session) handleEnd(ctx context.Context, req auction.Identity) error {
	if !req.IsAdmin {
		return auction.Errf(auction.CodeUnauthorized, auction.HintReaction, "%s is not allowed to end the draft", req.Name)
	}
	var trigger auction.Trigger
	switch s.auc.State() {
	case auction.StateBidding:
		trigger = auction.TriggerEndFromBid
	case auction.StateNominating:
		trigger = auction.TriggerEndFromNom
	default:
		return auction.Errf(auction.CodeBusy, auction.HintReaction, "cannot end the draft from state %s", s.auc.State())
	}
	s.finish(ctx, trigger)
	return nil
}

func (s *Session) finish(ctx context.Context, trigger auction.Trigger) {
	s.disarmTicker()
	s.cancelNominationTimer()
	if err := s.auc.Fire(trigger); err != nil {
		log.Error().Err(err).Msg("session: ending transition failed")
		return
	}
	s.announce(announce.Event{
		Type:   announce.EventDraftComplete,
		Detail: completeDetail(len(s.auc.Nominations())),
	})
}

func (s *Session) cancelNominationTimer() {
	if s.nomTimer != nil {
		s.nomTimer.Cancel()
	}
}

func (s *Session) armTicker() {
	if s.ticker == nil {
		s.ticker = s.clock.NewTicker(time.Second)
	}
}

func (s *Session) disarmTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

func (s *Session) tickChan() <-chan time.Time {
	if s.ticker == nil {
		return nil
	}
	return s.ticker.Chan()
}

func (s *Session) nomDoneChan() <-chan error {
	return s.nomDone
}

func (s *Session) poolHasPlayers() bool {
	for _, p := range s.auc.Players() {
		if !p.IsPicked {
			return true
		}
	}
	return false
}

func (s *Session) announce(ev announce.Event) {
	if s.announcer == nil {
		return
	}
	ev.League = s.cfg.League
	s.announcer.Publish(ev)
}

func copyLot(lot *auction.Lot) *auction.Lot {
	if lot == nil {
		return nil
	}
	cp := *lot
	cp.Bids = append([]auction.Bid(nil), lot.Bids...)
	if lot.WinningBid != nil {
		wb := *lot.WinningBid
		cp.WinningBid = &wb
	}
	return &cp
}

func startDetail(seconds int) string {
	return fmt.Sprintf("First nomination opens in %d seconds.", seconds)
}

func completeDetail(picks int) string {
	return fmt.Sprintf("Draft finished after %d picks.", picks)
}
