// internal/game/engine.go
//
// Session state machine for the listening drill.
// Responsibilities:
//   - Walk a session through title → region → mode → playing → result (plus info/ranking).
//   - Generate questions, guard tray edits, evaluate submits.
//   - Emit commands instead of performing side effects: a FollowUp for the delayed
//     transition after feedback, an Utterance for the speech collaborator.
//
// Notes:
//   - Every guard is a no-op reported as false; invalid combinations are unreachable
//     through the transition set, so nothing here returns an error.
//   - Every transition bumps Session.Version. A FollowUp carries the version it was
//     issued at and Resolve drops it once the session has moved on.
package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/robalobadob/duoshao/internal/regions"
	"github.com/robalobadob/duoshao/internal/speech"
)

const (
	challengeQuestions = 10
	survivalQuestions  = 50

	DefaultCorrectDelay = 1200 * time.Millisecond
	DefaultWrongDelay   = 2000 * time.Millisecond
)

// Catalog is the region lookup the engine needs.
type Catalog interface {
	ConfigFor(id regions.ID) (regions.Config, error)
	Denominations(id regions.ID, withExtra bool) ([]int, error)
	Has(id regions.ID) bool
}

// Engine applies intents to sessions. It holds no per-session state.
type Engine struct {
	Catalog      Catalog
	Amounts      Generator
	CorrectDelay time.Duration
	WrongDelay   time.Duration
}

// NewEngine returns an engine with the default feedback delays.
// A nil generator draws from crypto/rand.
func NewEngine(cat Catalog, gen Generator) *Engine {
	if gen == nil {
		gen = NewAmountGenerator(nil)
	}
	return &Engine{
		Catalog:      cat,
		Amounts:      gen,
		CorrectDelay: DefaultCorrectDelay,
		WrongDelay:   DefaultWrongDelay,
	}
}

// FollowUp is a delayed transition to run through Resolve after Delay.
type FollowUp struct {
	Version uint64
	Delay   time.Duration
}

// Start moves from the title to region selection.
func (e *Engine) Start(s *Session) bool {
	if s.View != ViewTitle {
		return false
	}
	s.View = ViewRegionSelect
	s.Version++
	return true
}

// SelectRegion fixes the region and moves to mode selection.
func (e *Engine) SelectRegion(s *Session, id regions.ID) bool {
	if s.View != ViewRegionSelect || !e.Catalog.Has(id) {
		return false
	}
	s.Region = id
	s.Mode = ModeNone
	s.View = ViewModeSelect
	s.Version++
	return true
}

// SelectMode starts a run: score and question index reset, first question drawn.
func (e *Engine) SelectMode(s *Session, m Mode) bool {
	if s.View != ViewModeSelect || s.Region == "" {
		return false
	}
	if _, ok := ParseMode(string(m)); !ok {
		return false
	}
	s.Mode = m
	s.Score = 0
	s.Question = 1
	s.View = ViewPlaying
	e.newQuestion(s)
	return true
}

// newQuestion replaces the target and clears everything tied to the previous one.
func (e *Engine) newQuestion(s *Session) {
	s.Target = e.Amounts.Generate(s.Mode, s.Question)
	s.Tray.Clear()
	s.Feedback = FeedbackNone
	s.Detail = ""
	s.Diff = 0
	s.Version++
}

// editable reports whether tray intents are accepted.
func editable(s *Session) bool {
	return s.View == ViewPlaying && s.Feedback == FeedbackNone
}

// AddDenomination puts one offered denomination on the tray.
func (e *Engine) AddDenomination(s *Session, v int) bool {
	if !editable(s) || !slices.Contains(e.denominations(s), v) {
		return false
	}
	s.Tray.Add(v)
	s.Version++
	return true
}

// RemoveTrayItem takes the value at index i off the tray.
func (e *Engine) RemoveTrayItem(s *Session, i int) bool {
	if !editable(s) || !s.Tray.RemoveAt(i) {
		return false
	}
	s.Version++
	return true
}

// ClearTray empties the tray.
func (e *Engine) ClearTray(s *Session) bool {
	if !editable(s) {
		return false
	}
	s.Tray.Clear()
	s.Version++
	return true
}

// Submit evaluates the tray against the target and shows feedback.
// The returned FollowUp must be passed to Resolve once its delay has elapsed.
func (e *Engine) Submit(s *Session) (FollowUp, bool) {
	if s.View != ViewPlaying || s.Region == "" || len(s.Tray) == 0 || s.Feedback != FeedbackNone {
		return FollowUp{}, false
	}
	sum := s.Tray.Sum()
	delay := e.CorrectDelay
	if sum == s.Target {
		s.Feedback = FeedbackCorrect
		s.Score++
	} else {
		diff := sum - s.Target
		s.Feedback = FeedbackWrong
		s.Diff = diff
		s.Detail = wrongDetail(diff)
		delay = e.WrongDelay
	}
	s.Version++
	return FollowUp{Version: s.Version, Delay: delay}, true
}

// wrongDetail is the over/short message for a signed difference.
func wrongDetail(diff int) string {
	if diff > 0 {
		return fmt.Sprintf("多いです (+%d)", diff)
	}
	return fmt.Sprintf("足りません (%d)", diff)
}

// Resolve runs the transition scheduled by Submit. Stale follow-ups (the session
// changed since the submit) are dropped and reported as false.
func (e *Engine) Resolve(s *Session, version uint64) bool {
	if s.Version != version || s.View != ViewPlaying || s.Feedback == FeedbackNone {
		return false
	}
	if e.runOver(s) {
		s.View = ViewResult
		s.Speaking = false
		s.Version++
		return true
	}
	s.Question++
	e.newQuestion(s)
	return true
}

// runOver decides whether the answer just shown ends the run.
func (e *Engine) runOver(s *Session) bool {
	if s.Feedback == FeedbackWrong {
		if s.Mode == ModeSurvival || s.Mode == ModeOni {
			return true
		}
		return s.Question >= challengeQuestions
	}
	limit := s.Mode.Limit()
	return limit > 0 && s.Question >= limit
}

// Home returns to the title and resets the session.
func (e *Engine) Home(s *Session) bool {
	if s.View == ViewTitle {
		return false
	}
	s.reset()
	return true
}

// NavigateTo follows a menu link. Returning to the title is the same as Home.
func (e *Engine) NavigateTo(s *Session, to View) bool {
	if to == ViewTitle {
		return e.Home(s)
	}
	switch s.View {
	case ViewTitle:
		switch to {
		case ViewRegionSelect:
			return e.Start(s)
		case ViewInfo, ViewRanking:
			s.View = to
			s.Version++
			return true
		}
	case ViewModeSelect:
		if to == ViewRegionSelect {
			s.Region = ""
			s.View = ViewRegionSelect
			s.Version++
			return true
		}
	}
	return false
}

// Speak emits the announcement for the current target. Only one may be in flight.
func (e *Engine) Speak(s *Session) (speech.Utterance, bool) {
	if s.View != ViewPlaying || s.Speaking || s.Target <= 0 {
		return speech.Utterance{}, false
	}
	r, err := e.Catalog.ConfigFor(s.Region)
	if err != nil {
		return speech.Utterance{}, false
	}
	s.speechID++
	s.Speaking = true
	return utterance(s.speechID, r, s.Mode, s.Target), true
}

// SpeechEnded clears the speaking indicator if id is the latest utterance.
func (e *Engine) SpeechEnded(s *Session, id uint64) bool {
	if !s.Speaking || id != s.speechID {
		return false
	}
	s.Speaking = false
	return true
}

// CanSubmit mirrors the submit button's enabled state.
func CanSubmit(s *Session) bool {
	return s.View == ViewPlaying && len(s.Tray) > 0 && s.Feedback == FeedbackNone
}

func (e *Engine) denominations(s *Session) []int {
	if s.Region == "" {
		return nil
	}
	ds, err := e.Catalog.Denominations(s.Region, s.Mode.extraDenominations())
	if err != nil {
		return nil
	}
	return ds
}

// Snapshot copies the render state out of s.
func (e *Engine) Snapshot(s *Session) Snapshot {
	snap := Snapshot{
		SessionID: s.ID,
		View:      s.View,
		Mode:      s.Mode,
		Limit:     s.Mode.Limit(),
		Tray:      s.Tray.Values(),
		Sum:       s.Tray.Sum(),
		Score:     s.Score,
		Question:  s.Question,
		Feedback:  s.Feedback,
		Detail:    s.Detail,
		Diff:      s.Diff,
		Speaking:  s.Speaking,
		CanSubmit: CanSubmit(s),
		Version:   s.Version,
	}
	if s.Region != "" {
		if r, err := e.Catalog.ConfigFor(s.Region); err == nil {
			snap.Region = &r
		}
	}
	if s.View == ViewPlaying {
		snap.Denominations = e.denominations(s)
	}
	if s.Feedback != FeedbackNone || s.View == ViewResult {
		target := s.Target
		snap.Target = &target
	}
	if s.View == ViewResult {
		tier := TierFor(s.Score)
		snap.Tier = &tier
	}
	return snap
}
