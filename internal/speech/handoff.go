// internal/speech/handoff.go
//
// Announcer for HTTP clients. The browser polls the pending utterance, voices it with
// its own speech synthesis and acknowledges it by ID.

package speech

import (
	"context"
	"sync"
	"time"
)

// Handoff voices utterances through a remote client (the browser's speech synthesis).
// Announce publishes the utterance and blocks until the client acknowledges it,
// the context is cancelled, or the timeout passes.
type Handoff struct {
	timeout time.Duration

	mu      sync.Mutex
	pending *Utterance
	ack     chan struct{}
}

// NewHandoff returns a Handoff that gives up waiting after timeout (0 = wait forever).
func NewHandoff(timeout time.Duration) *Handoff {
	return &Handoff{timeout: timeout}
}

// Announce implements Announcer.
func (h *Handoff) Announce(ctx context.Context, u Utterance) error {
	ack := make(chan struct{})
	h.mu.Lock()
	h.pending = &u
	h.ack = ack
	h.mu.Unlock()

	defer h.clear(u.ID)

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handoff) clear(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending != nil && h.pending.ID == id {
		h.pending = nil
		h.ack = nil
	}
}

// Pending returns the utterance waiting for the client, if any.
func (h *Handoff) Pending() (Utterance, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending == nil {
		return Utterance{}, false
	}
	return *h.pending, true
}

// Ack marks the utterance id as finished by the client.
// It reports false when id is not the pending utterance.
func (h *Handoff) Ack(id uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending == nil || h.pending.ID != id {
		return false
	}
	close(h.ack)
	h.pending = nil
	h.ack = nil
	return true
}
