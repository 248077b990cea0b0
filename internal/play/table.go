// internal/play/table.go
//
// Session runner: one Table per player.
// Responsibilities:
//   - Serialise intents, timer callbacks and speech completions on one mutex, so the
//     engine sees the same single-threaded ordering a browser event loop gives.
//   - Execute the engine's commands: schedule FollowUps, hand Utterances to a Coalescer.
//   - Notify observers (terminal UI, logs) after every change.
//
// Delayed follow-ups are never cancelled. When one fires after the session has moved
// on, the engine's version check discards it.
package play

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/duoshao/internal/game"
	"github.com/robalobadob/duoshao/internal/regions"
	"github.com/robalobadob/duoshao/internal/speech"
)

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// RealTime schedules with time.AfterFunc.
type RealTime struct{}

// AfterFunc implements Scheduler.
func (RealTime) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// acker is implemented by announcers that wait for a client acknowledgement.
type acker interface {
	Ack(id uint64) bool
}

// pender is implemented by announcers that expose the utterance being voiced.
type pender interface {
	Pending() (speech.Utterance, bool)
}

// Table owns one session.
type Table struct {
	mu       sync.Mutex
	engine   *game.Engine
	session  *game.Session
	sched    Scheduler
	voice    *speech.Coalescer
	onChange func(game.Snapshot)
	lastSeen time.Time
}

// Options configures a Table. Zero values select real time and silent speech.
type Options struct {
	Scheduler Scheduler
	Voice     *speech.Coalescer
	OnChange  func(game.Snapshot)
}

// NewTable returns a Table for a fresh session on the title screen.
func NewTable(id string, engine *game.Engine, opts Options) *Table {
	if opts.Scheduler == nil {
		opts.Scheduler = RealTime{}
	}
	if opts.Voice == nil {
		opts.Voice = speech.NewCoalescer(speech.Silent{}, 0)
	}
	return &Table{
		engine:   engine,
		session:  game.NewSession(id),
		sched:    opts.Scheduler,
		voice:    opts.Voice,
		onChange: opts.OnChange,
		lastSeen: time.Now(),
	}
}

// ID returns the session identifier.
func (t *Table) ID() string { return t.session.ID }

// LastSeen is the time of the most recent intent.
func (t *Table) LastSeen() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSeen
}

// Snapshot returns the current render state.
func (t *Table) Snapshot() game.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine.Snapshot(t.session)
}

// apply runs fn under the lock and reports (snapshot, applied).
// A session that left the playing view also drops its in-flight announcement.
func (t *Table) apply(fn func(s *game.Session) bool) (game.Snapshot, bool) {
	t.mu.Lock()
	wasPlaying := t.session.View == game.ViewPlaying
	ok := fn(t.session)
	t.lastSeen = time.Now()
	if ok && wasPlaying && t.session.View != game.ViewPlaying {
		t.voice.Cancel()
		t.session.Speaking = false
	}
	snap := t.engine.Snapshot(t.session)
	t.mu.Unlock()

	if ok {
		t.notify(snap)
	}
	return snap, ok
}

func (t *Table) notify(snap game.Snapshot) {
	if t.onChange != nil {
		t.onChange(snap)
	}
}

// Start moves from the title to region selection.
func (t *Table) Start() (game.Snapshot, bool) {
	return t.apply(t.engine.Start)
}

// SelectRegion fixes the region.
func (t *Table) SelectRegion(id regions.ID) (game.Snapshot, bool) {
	return t.apply(func(s *game.Session) bool { return t.engine.SelectRegion(s, id) })
}

// SelectMode starts a run.
func (t *Table) SelectMode(m game.Mode) (game.Snapshot, bool) {
	return t.apply(func(s *game.Session) bool { return t.engine.SelectMode(s, m) })
}

// AddDenomination puts a value on the tray.
func (t *Table) AddDenomination(v int) (game.Snapshot, bool) {
	return t.apply(func(s *game.Session) bool { return t.engine.AddDenomination(s, v) })
}

// RemoveTrayItem takes the value at index i off the tray.
func (t *Table) RemoveTrayItem(i int) (game.Snapshot, bool) {
	return t.apply(func(s *game.Session) bool { return t.engine.RemoveTrayItem(s, i) })
}

// ClearTray empties the tray.
func (t *Table) ClearTray() (game.Snapshot, bool) {
	return t.apply(t.engine.ClearTray)
}

// Home returns to the title.
func (t *Table) Home() (game.Snapshot, bool) {
	return t.apply(t.engine.Home)
}

// NavigateTo follows a menu link.
func (t *Table) NavigateTo(v game.View) (game.Snapshot, bool) {
	return t.apply(func(s *game.Session) bool { return t.engine.NavigateTo(s, v) })
}

// Submit evaluates the tray and schedules the follow-up transition.
func (t *Table) Submit() (game.Snapshot, bool) {
	var fu game.FollowUp
	snap, ok := t.apply(func(s *game.Session) bool {
		var ok bool
		fu, ok = t.engine.Submit(s)
		return ok
	})
	if ok {
		log.Debug().Str("session", snap.SessionID).Str("feedback", string(snap.Feedback)).
			Int("score", snap.Score).Int("question", snap.Question).Msg("submit")
		t.sched.AfterFunc(fu.Delay, func() { t.resolve(fu.Version) })
	}
	return snap, ok
}

func (t *Table) resolve(version uint64) {
	snap, ok := t.apply(func(s *game.Session) bool { return t.engine.Resolve(s, version) })
	if !ok {
		log.Debug().Str("session", snap.SessionID).Uint64("version", version).Msg("stale follow-up dropped")
	}
}

// Speak requests an announcement of the current target.
// The utterance starts under the table lock, so a Home or Submit cannot slip in
// between the engine accepting it and the voice receiving it.
func (t *Table) Speak() (speech.Utterance, game.Snapshot, bool) {
	var u speech.Utterance
	snap, ok := t.apply(func(s *game.Session) bool {
		var ok bool
		if u, ok = t.engine.Speak(s); ok {
			t.voice.Say(u, t.speechEnded(s.ID, u.ID))
		}
		return ok
	})
	if !ok {
		return speech.Utterance{}, snap, false
	}
	return u, snap, true
}

func (t *Table) speechEnded(session string, id uint64) func(error) {
	return func(err error) {
		if err != nil {
			log.Debug().Err(err).Str("session", session).Uint64("utterance", id).Msg("announcement ended")
		}
		t.apply(func(s *game.Session) bool { return t.engine.SpeechEnded(s, id) })
	}
}

// SpeechDone acknowledges an utterance voiced by a remote client.
func (t *Table) SpeechDone(id uint64) bool {
	a, ok := t.voice.Announcer().(acker)
	if !ok {
		return false
	}
	return a.Ack(id)
}

// PendingSpeech returns the utterance a remote client should voice, if any.
func (t *Table) PendingSpeech() (speech.Utterance, bool) {
	p, ok := t.voice.Announcer().(pender)
	if !ok {
		return speech.Utterance{}, false
	}
	return p.Pending()
}

// Close stops any in-flight announcement.
func (t *Table) Close() {
	t.voice.Cancel()
}
