package store

import (
	"context"

	"pst-draft-bot/internal/auction"
)

// RosterStore adapts a KV into the persistence boundary the auction
// aggregate expects. Missing keys hydrate to empty slices.
type RosterStore struct {
	kv KV
}

func NewRosterStore(kv KV) *RosterStore {
	return &RosterStore{kv: kv}
}

func (s *RosterStore) LoadCaptains(ctx context.Context) ([]auction.Captain, error) {
	var out []auction.Captain
	if _, err := s.kv.Get(ctx, KeyCaptains, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RosterStore) LoadPlayers(ctx context.Context) ([]auction.Player, error) {
	var out []auction.Player
	if _, err := s.kv.Get(ctx, KeyPlayers, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RosterStore) LoadNominations(ctx context.Context) ([]auction.Nomination, error) {
	var out []auction.Nomination
	if _, err := s.kv.Get(ctx, KeyNominations, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RosterStore) LoadOrder(ctx context.Context) ([]string, error) {
	var out []string
	if _, err := s.kv.Get(ctx, KeyNominateOrder, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RosterStore) SaveCaptains(ctx context.Context, captains []auction.Captain) error {
	return s.kv.Set(ctx, KeyCaptains, captains)
}

func (s *RosterStore) SavePlayers(ctx context.Context, players []auction.Player) error {
	return s.kv.Set(ctx, KeyPlayers, players)
}

func (s *RosterStore) SaveNominations(ctx context.Context, nominations []auction.Nomination) error {
	return s.kv.Set(ctx, KeyNominations, nominations)
}

func (s *RosterStore) SaveOrder(ctx context.Context, order []string) error {
	return s.kv.Set(ctx, KeyNominateOrder, order)
}
