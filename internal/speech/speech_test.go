package speech

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blocking announces until its context is cancelled or release is closed.
type blocking struct {
	mu      sync.Mutex
	started []uint64
	release chan struct{}
}

func (b *blocking) Announce(ctx context.Context, u Utterance) error {
	b.mu.Lock()
	b.started = append(b.started, u.ID)
	b.mu.Unlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.release:
		return nil
	}
}

func (b *blocking) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.started)
}

func TestCoalescer_NewRequestCancelsInFlight(t *testing.T) {
	a := &blocking{release: make(chan struct{})}
	c := NewCoalescer(a, 0)

	first := make(chan error, 1)
	c.Say(Utterance{ID: 1, Text: "一"}, func(err error) { first <- err })
	require.Eventually(t, func() bool { return a.count() == 1 }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	c.Say(Utterance{ID: 2, Text: "二"}, func(err error) { second <- err })

	select {
	case err := <-first:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("first utterance was not cancelled")
	}
	assert.True(t, c.Busy())

	close(a.release)
	select {
	case err := <-second:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second utterance did not finish")
	}
	assert.Eventually(t, func() bool { return !c.Busy() }, time.Second, time.Millisecond)
}

func TestCoalescer_CancelDuringLeadIn(t *testing.T) {
	a := &blocking{release: make(chan struct{})}
	c := NewCoalescer(a, time.Hour)

	done := make(chan error, 1)
	c.Say(Utterance{ID: 1}, func(err error) { done <- err })
	c.Cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancel did not interrupt the lead-in")
	}
	assert.Equal(t, 0, a.count(), "announcer must not start after cancel")
}

func TestCoalescer_SilentByDefault(t *testing.T) {
	c := NewCoalescer(nil, 0)
	done := make(chan error, 1)
	c.Say(Utterance{ID: 1}, func(err error) { done <- err })
	err := <-done
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestHandoff_AckReleasesAnnounce(t *testing.T) {
	h := NewHandoff(time.Minute)
	errc := make(chan error, 1)
	go func() { errc <- h.Announce(context.Background(), Utterance{ID: 7, Text: "一共是42元"}) }()

	require.Eventually(t, func() bool {
		_, ok := h.Pending()
		return ok
	}, time.Second, time.Millisecond)

	u, _ := h.Pending()
	assert.Equal(t, "一共是42元", u.Text)
	assert.False(t, h.Ack(8), "wrong id must not ack")
	assert.True(t, h.Ack(7))

	require.NoError(t, <-errc)
	_, ok := h.Pending()
	assert.False(t, ok)
}

func TestHandoff_Timeout(t *testing.T) {
	h := NewHandoff(10 * time.Millisecond)
	err := h.Announce(context.Background(), Utterance{ID: 1})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, ok := h.Pending()
	assert.False(t, ok)
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Printer{W: &buf}.Announce(context.Background(), Utterance{Text: "四十二"}))
	assert.Contains(t, buf.String(), "四十二")
}

func TestCommand_MissingBinary(t *testing.T) {
	c := Command{Name: "definitely-not-a-tts-binary"}
	err := c.Announce(context.Background(), Utterance{Text: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestParseCommand(t *testing.T) {
	c, err := ParseCommand("espeak-ng -v zh")
	require.NoError(t, err)
	assert.Equal(t, "espeak-ng", c.Name)
	assert.Equal(t, []string{"-v", "zh"}, c.Args)

	_, err = ParseCommand("   ")
	assert.Error(t, err)
}

func TestFallback(t *testing.T) {
	var buf bytes.Buffer
	f := Fallback{Command{Name: "definitely-not-a-tts-binary"}, Printer{W: &buf}}
	require.NoError(t, f.Announce(context.Background(), Utterance{Text: "五"}))
	assert.Contains(t, buf.String(), "五")

	assert.ErrorIs(t, Fallback{Silent{}}.Announce(context.Background(), Utterance{}), ErrUnavailable)
}
