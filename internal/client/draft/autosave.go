package draft

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultInterval is how often an open edit session is mirrored to the store.
const DefaultInterval = time.Second

var ErrAlreadyStarted = errors.New("draft: autosaver already started")

// Autosaver mirrors the edit state into a Store on a fixed interval. It is
// acquired with Start when an edit session opens and released with Stop.
type Autosaver struct {
	store    Store
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time

	mu     sync.Mutex
	source func() Draft
	cancel context.CancelFunc
	done   chan struct{}
	last   Draft
}

func NewAutosaver(store Store, interval time.Duration, log zerolog.Logger) *Autosaver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Autosaver{store: store, interval: interval, log: log, now: time.Now}
}

// Start begins ticking. source is read on every tick and must be safe to call
// from another goroutine.
func (a *Autosaver) Start(ctx context.Context, source func() Draft) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	a.source = source
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.loop(ctx, a.done)
	return nil
}

// Stop halts the ticker and waits for the loop to exit. With flush set the
// current state is saved one last time. Stop on a stopped Autosaver is a no-op.
func (a *Autosaver) Stop(flush bool) error {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done

	if flush {
		return a.Tick()
	}
	return nil
}

// Tick saves the current state when it is non-blank and has changed since
// the last save.
func (a *Autosaver) Tick() error {
	a.mu.Lock()
	source := a.source
	a.mu.Unlock()
	if source == nil {
		return nil
	}

	d := source()
	if d.Blank() {
		return nil
	}

	a.mu.Lock()
	unchanged := d.Stream == a.last.Stream && d.Content == a.last.Content
	a.mu.Unlock()
	if unchanged {
		return nil
	}

	d.SavedAt = a.now().UTC()
	if err := a.store.Save(d); err != nil {
		return err
	}
	a.mu.Lock()
	a.last = d
	a.mu.Unlock()
	return nil
}

func (a *Autosaver) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := a.Tick(); err != nil {
				a.log.Warn().Err(err).Msg("draft autosave failed")
			}
		case <-ctx.Done():
			return
		}
	}
}

// Clear drops the stored draft after a successful publish.
func (a *Autosaver) Clear() error {
	if err := a.store.Clear(); err != nil {
		return err
	}
	a.mu.Lock()
	a.last = Draft{}
	a.mu.Unlock()
	return nil
}
