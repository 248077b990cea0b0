package play

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/duoshao/internal/game"
	"github.com/robalobadob/duoshao/internal/regions"
	"github.com/robalobadob/duoshao/internal/speech"
)

// manual collects scheduled callbacks until the test fires them.
type manual struct {
	mu     sync.Mutex
	delays []time.Duration
	funcs  []func()
}

func (m *manual) AfterFunc(d time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays = append(m.delays, d)
	m.funcs = append(m.funcs, f)
}

func (m *manual) fireAll() {
	m.mu.Lock()
	fs := m.funcs
	m.funcs = nil
	m.mu.Unlock()
	for _, f := range fs {
		f()
	}
}

type constAmount int

func (c constAmount) Generate(game.Mode, int) int { return int(c) }

func newTable(t *testing.T, opts Options) (*Table, *manual) {
	t.Helper()
	cat, err := regions.LoadFile("")
	require.NoError(t, err)
	m := &manual{}
	opts.Scheduler = m
	return NewTable("t1", game.NewEngine(cat, constAmount(42)), opts), m
}

func startChallenge(t *testing.T, tb *Table) {
	t.Helper()
	_, ok := tb.Start()
	require.True(t, ok)
	_, ok = tb.SelectRegion(regions.China)
	require.True(t, ok)
	_, ok = tb.SelectMode(game.ModeChallenge)
	require.True(t, ok)
}

func TestTable_SubmitSchedulesFollowUp(t *testing.T) {
	tb, m := newTable(t, Options{})
	startChallenge(t, tb)

	for _, v := range []int{20, 20, 1, 1} {
		_, ok := tb.AddDenomination(v)
		require.True(t, ok)
	}
	snap, ok := tb.Submit()
	require.True(t, ok)
	assert.Equal(t, game.FeedbackCorrect, snap.Feedback)
	require.Len(t, m.delays, 1)
	assert.Equal(t, game.DefaultCorrectDelay, m.delays[0])

	m.fireAll()
	snap = tb.Snapshot()
	assert.Equal(t, 2, snap.Question)
	assert.Equal(t, game.FeedbackNone, snap.Feedback)
	assert.Empty(t, snap.Tray)
}

func TestTable_WrongUsesLongDelay(t *testing.T) {
	tb, m := newTable(t, Options{})
	startChallenge(t, tb)
	tb.AddDenomination(50)
	_, ok := tb.Submit()
	require.True(t, ok)
	require.Len(t, m.delays, 1)
	assert.Equal(t, game.DefaultWrongDelay, m.delays[0])
}

func TestTable_HomeDuringFeedbackDropsFollowUp(t *testing.T) {
	tb, m := newTable(t, Options{})
	startChallenge(t, tb)
	tb.AddDenomination(20)
	_, ok := tb.Submit()
	require.True(t, ok)

	_, ok = tb.Home()
	require.True(t, ok)
	m.fireAll()

	snap := tb.Snapshot()
	assert.Equal(t, game.ViewTitle, snap.View)
	assert.Equal(t, 0, snap.Question)
}

func TestTable_RejectedIntentsDoNotNotify(t *testing.T) {
	var seen []game.View
	tb, _ := newTable(t, Options{OnChange: func(s game.Snapshot) { seen = append(seen, s.View) }})

	_, ok := tb.AddDenomination(20)
	assert.False(t, ok)
	assert.Empty(t, seen)

	_, ok = tb.Start()
	require.True(t, ok)
	assert.Equal(t, []game.View{game.ViewRegionSelect}, seen)
}

func TestTable_SpeakThroughHandoff(t *testing.T) {
	h := speech.NewHandoff(time.Minute)
	tb, _ := newTable(t, Options{Voice: speech.NewCoalescer(h, 0)})
	startChallenge(t, tb)

	u, snap, ok := tb.Speak()
	require.True(t, ok)
	assert.True(t, snap.Speaking)
	assert.Equal(t, "一共是42元", u.Text)

	_, _, ok = tb.Speak()
	assert.False(t, ok, "re-trigger while speaking")

	require.Eventually(t, func() bool {
		p, ok := tb.PendingSpeech()
		return ok && p.ID == u.ID
	}, time.Second, time.Millisecond)

	assert.True(t, tb.SpeechDone(u.ID))
	assert.Eventually(t, func() bool { return !tb.Snapshot().Speaking }, time.Second, time.Millisecond)
}

func TestTable_SilentSpeechStillClears(t *testing.T) {
	tb, _ := newTable(t, Options{})
	startChallenge(t, tb)

	_, _, ok := tb.Speak()
	require.True(t, ok)
	assert.Eventually(t, func() bool { return !tb.Snapshot().Speaking }, time.Second, time.Millisecond)
	assert.False(t, tb.SpeechDone(1), "silent announcer has nothing to acknowledge")
}

func TestTable_LeavingPlayingCancelsSpeech(t *testing.T) {
	h := speech.NewHandoff(time.Minute)
	voice := speech.NewCoalescer(h, 0)
	tb, _ := newTable(t, Options{Voice: voice})
	startChallenge(t, tb)

	_, _, ok := tb.Speak()
	require.True(t, ok)
	require.Eventually(t, func() bool { _, ok := tb.PendingSpeech(); return ok }, time.Second, time.Millisecond)

	snap, ok := tb.Home()
	require.True(t, ok)
	assert.False(t, snap.Speaking)
	assert.Eventually(t, func() bool { return !voice.Busy() }, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { _, ok := tb.PendingSpeech(); return !ok }, time.Second, time.Millisecond)
}

func TestTable_ConcurrentIntents(t *testing.T) {
	tb, _ := newTable(t, Options{})
	startChallenge(t, tb)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tb.AddDenomination(1)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, tb.Snapshot().Sum)
}

func TestTable_SpeakStartsVoiceBeforeNotifying(t *testing.T) {
	voice := speech.NewCoalescer(speech.NewHandoff(time.Minute), 0)
	var busyAtNotify []bool
	tb, _ := newTable(t, Options{Voice: voice, OnChange: func(s game.Snapshot) {
		if s.Speaking {
			busyAtNotify = append(busyAtNotify, voice.Busy())
		}
	}})
	startChallenge(t, tb)

	_, _, ok := tb.Speak()
	require.True(t, ok)
	assert.Equal(t, []bool{true}, busyAtNotify)

	_, ok = tb.Home()
	require.True(t, ok)
	assert.False(t, voice.Busy())
	assert.Eventually(t, func() bool { _, ok := tb.PendingSpeech(); return !ok }, time.Second, time.Millisecond)
}
