// Package availability runs debounced username availability probes with at
// most one check in flight. A newer Submit always wins: the previous timer is
// stopped, the previous request is cancelled and its late result is dropped.
package availability

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

// DefaultDebounce matches the delay the web form waits after the last keystroke.
const DefaultDebounce = 500 * time.Millisecond

// ProbeFunc asks the server about one username.
type ProbeFunc func(ctx context.Context, username string) (domain.Availability, error)

// Result is delivered for the most recent submission only.
type Result struct {
	Username string
	Status   domain.Availability
	Err      error
}

type Option func(*Checker)

func WithDebounce(d time.Duration) Option {
	return func(c *Checker) { c.debounce = d }
}

// Checker is a single-slot supervisor for availability probes.
type Checker struct {
	probe    ProbeFunc
	deliver  func(Result)
	debounce time.Duration

	generation atomic.Uint64

	mu       sync.Mutex
	timer    *time.Timer
	cancel   context.CancelFunc
	closed   bool
	pending  sync.WaitGroup
	delivery sync.Mutex
}

// NewChecker returns a Checker that calls deliver with every result that is
// still current when it arrives.
func NewChecker(probe ProbeFunc, deliver func(Result), opts ...Option) *Checker {
	c := &Checker{probe: probe, deliver: deliver, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit supersedes any pending or in-flight check. Names that fail the local
// format rules are reported as invalid right away without a network call. A
// blank name only cancels.
func (c *Checker) Submit(name string) {
	name = strings.TrimSpace(name)
	gen := c.generation.Add(1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopLocked()

	if name == "" {
		c.mu.Unlock()
		return
	}
	if err := domain.ValidateUsername(name); err != nil {
		c.mu.Unlock()
		c.report(gen, Result{Username: name, Status: domain.AvailabilityInvalid})
		return
	}

	c.pending.Add(1)
	c.timer = time.AfterFunc(c.debounce, func() {
		defer c.pending.Done()
		c.run(gen, name)
	})
	c.mu.Unlock()
}

// Close cancels the pending timer and the in-flight probe, then waits for
// them to finish. No result is delivered after Close returns.
func (c *Checker) Close() {
	c.generation.Add(1)

	c.mu.Lock()
	c.closed = true
	c.stopLocked()
	c.mu.Unlock()

	c.pending.Wait()
}

// stopLocked stops the debounce timer and cancels the in-flight probe.
func (c *Checker) stopLocked() {
	if c.timer != nil {
		if c.timer.Stop() {
			c.pending.Done()
		}
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Checker) run(gen uint64, name string) {
	c.mu.Lock()
	if c.closed || c.generation.Load() != gen {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	status, err := c.probe(ctx, name)
	cancel()

	c.report(gen, Result{Username: name, Status: status, Err: err})
}

func (c *Checker) report(gen uint64, r Result) {
	c.delivery.Lock()
	defer c.delivery.Unlock()
	if c.generation.Load() != gen {
		return
	}
	c.deliver(r)
}
