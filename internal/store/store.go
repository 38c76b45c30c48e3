// Package store persists draft state as JSON documents in a small
// key/value store. Two implementations exist: Redis for real deploys
// and an in-memory map for tests and local runs.
package store

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Keys for the draft documents. One league per store namespace.
const (
	KeyCaptains      = "captains"
	KeyPlayers       = "players"
	KeyNominations   = "nominations"
	KeyNominateOrder = "nominate_order"
)

// KV reads and writes JSON documents under string keys. Get reports a
// miss with found=false rather than an error.
type KV interface {
	Get(ctx context.Context, key string, out any) (found bool, err error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	ulidEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	ulidEntropyMu sync.Mutex
)

// NewID returns a sortable unique identifier for lots.
func NewID() string {
	ulidEntropyMu.Lock()
	defer ulidEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}
