package announce

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Config tunes the delivery worker.
type Config struct {
	RetryMax       int
	RetryBase      time.Duration
	DispatchBuffer int
}

func (c Config) withDefaults() Config {
	if c.RetryMax <= 0 {
		c.RetryMax = 3
	}
	if c.RetryBase <= 0 {
		c.RetryBase = 500 * time.Millisecond
	}
	if c.DispatchBuffer <= 0 {
		c.DispatchBuffer = 256
	}
	return c
}

type job struct {
	msg     Message
	attempt int
}

// Manager fans events out to its adapters from a single background
// worker. Publish never blocks the draft: when the buffer is full the
// event is dropped and logged.
type Manager struct {
	cfg      Config
	adapters []Adapter

	dispatchCh chan job
	done       chan struct{}
	closeOnce  sync.Once
}

func NewManager(cfg Config, adapters ...Adapter) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		cfg:        cfg,
		adapters:   adapters,
		dispatchCh: make(chan job, cfg.DispatchBuffer),
		done:       make(chan struct{}),
	}
}

// Start launches the delivery worker. It returns once the worker is
// running; the worker stops when ctx is cancelled or Close is called.
func (m *Manager) Start(ctx context.Context) {
	go m.worker(ctx)
}

// Publish formats and enqueues an event for delivery.
func (m *Manager) Publish(ev Event) {
	if ev.ServerTS == 0 {
		ev.ServerTS = time.Now().UnixMilli()
	}
	msg, ok := FormatMessage(ev)
	if !ok {
		log.Warn().Str("event_type", ev.Type).Msg("announce: unknown event type dropped")
		return
	}
	select {
	case m.dispatchCh <- job{msg: msg}:
	default:
		log.Warn().Str("event_type", ev.Type).Msg("announce: dispatch buffer full, event dropped")
	}
}

// Close stops the worker. Buffered events are discarded.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case j := <-m.dispatchCh:
			m.deliver(ctx, j)
		}
	}
}

func (m *Manager) deliver(ctx context.Context, j job) {
	for _, adapter := range m.adapters {
		if err := m.sendWithRetry(ctx, adapter, j.msg); err != nil {
			log.Warn().Err(err).
				Str("platform", adapter.Name()).
				Str("title", j.msg.Title).
				Msg("announce: delivery failed")
		}
	}
}

func (m *Manager) sendWithRetry(ctx context.Context, adapter Adapter, msg Message) error {
	var err error
	for attempt := 0; attempt <= m.cfg.RetryMax; attempt++ {
		if attempt > 0 {
			delay := m.cfg.RetryBase * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-m.done:
				return err
			case <-time.After(delay):
			}
		}
		if err = adapter.Send(ctx, msg); err == nil {
			return nil
		}
	}
	return err
}
