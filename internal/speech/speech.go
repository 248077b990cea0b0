// internal/speech/speech.go
//
// Speech collaborator for the game core.
// Defines:
//   - Utterance: text + voice parameters emitted by the state machine.
//   - Announcer: anything that can voice an utterance (browser handoff, terminal, TTS command).
//   - Coalescer: keeps at most one utterance in flight; a new request cancels the old one.
//
// The state machine never talks to an Announcer directly. It emits an Utterance and the
// session runner hands it to a Coalescer.
package speech

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrUnavailable means the environment has no speech capability.
var ErrUnavailable = errors.New("speech: unavailable")

// Utterance is one announcement request.
type Utterance struct {
	ID    uint64  `json:"id"`
	Text  string  `json:"text"`
	Lang  string  `json:"lang"`
	Rate  float64 `json:"rate"`
	Pitch float64 `json:"pitch"`
}

// Announcer voices an utterance, blocking until it has finished or ctx is cancelled.
type Announcer interface {
	Announce(ctx context.Context, u Utterance) error
}

// Silent is the announcer used when no speech capability exists.
type Silent struct{}

// Announce always reports ErrUnavailable.
func (Silent) Announce(context.Context, Utterance) error { return ErrUnavailable }

// Coalescer runs announcements one at a time.
type Coalescer struct {
	a      Announcer
	leadIn time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

// NewCoalescer wraps a. leadIn is waited before each announcement starts.
func NewCoalescer(a Announcer, leadIn time.Duration) *Coalescer {
	if a == nil {
		a = Silent{}
	}
	return &Coalescer{a: a, leadIn: leadIn}
}

// Say cancels any in-flight utterance and starts u in the background.
// done is called exactly once with the announcer's result (ctx error if replaced).
func (c *Coalescer) Say(u Utterance, done func(error)) {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	go func() {
		err := c.run(ctx, u)
		c.mu.Lock()
		if c.gen == gen {
			c.cancel = nil
		}
		c.mu.Unlock()
		cancel()
		if done != nil {
			done(err)
		}
	}()
}

func (c *Coalescer) run(ctx context.Context, u Utterance) error {
	if c.leadIn > 0 {
		t := time.NewTimer(c.leadIn)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return c.a.Announce(ctx, u)
}

// Cancel stops the in-flight utterance, if any.
func (c *Coalescer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Busy reports whether an utterance is in flight.
func (c *Coalescer) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Announcer returns the wrapped announcer.
func (c *Coalescer) Announcer() Announcer { return c.a }
