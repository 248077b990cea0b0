// internal/game/types.go
//
// Core type definitions for the listening-drill game engine.
// Defines:
//   - View: which screen the session is on.
//   - Mode: survival / challenge / oni.
//   - Feedback: verdict of the last submit while it is on screen.
//   - Session: the single mutable aggregate owned by one session runner.
//   - Snapshot: read-only copy handed to the presentation layer.

package game

import (
	"github.com/robalobadob/duoshao/internal/regions"
)

// View is the session's current screen.
type View string

const (
	ViewTitle        View = "title"
	ViewRegionSelect View = "regionSelect"
	ViewModeSelect   View = "modeSelect"
	ViewPlaying      View = "playing"
	ViewResult       View = "result"
	ViewInfo         View = "info"
	ViewRanking      View = "ranking"
)

// Mode is a game mode. The zero value means no mode is running.
type Mode string

const (
	ModeNone      Mode = ""
	ModeSurvival  Mode = "survival"
	ModeChallenge Mode = "challenge"
	ModeOni       Mode = "oni"
)

// ParseMode maps an identifier to a Mode; ok is false for unknown ids.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeSurvival, ModeChallenge, ModeOni:
		return Mode(s), true
	}
	return ModeNone, false
}

// Limit is the number of questions in a run; 0 means unbounded.
func (m Mode) Limit() int {
	switch m {
	case ModeChallenge:
		return challengeQuestions
	case ModeSurvival:
		return survivalQuestions
	}
	return 0
}

// extraDenominations reports whether the survival extras are offered.
func (m Mode) extraDenominations() bool {
	return m == ModeSurvival || m == ModeOni
}

// Feedback is the verdict shown after a submit.
type Feedback string

const (
	FeedbackNone    Feedback = ""
	FeedbackCorrect Feedback = "correct"
	FeedbackWrong   Feedback = "wrong"
)

// Session holds the state of one player's run.
type Session struct {
	ID       string     // Unique session identifier.
	View     View       // Current screen.
	Region   regions.ID // Chosen region; empty until RegionSelect.
	Mode     Mode       // Running mode; empty until a mode starts.
	Target   int        // Amount the player must match.
	Tray     Tray       // Chosen denominations in selection order.
	Score    int        // Correct answers this run.
	Question int        // 1-based question index.
	Feedback Feedback   // Verdict on screen, if any.
	Detail   string     // Over/short message for a wrong answer.
	Diff     int        // Tray sum minus target for the last wrong answer.
	Speaking bool       // An announcement is in flight.

	// Version increases on every transition; delayed follow-ups compare against it.
	Version uint64

	speechID uint64
}

// NewSession returns a session on the title screen.
func NewSession(id string) *Session {
	return &Session{ID: id, View: ViewTitle}
}

// reset returns the session to title defaults, keeping its identity.
func (s *Session) reset() {
	*s = Session{
		ID:       s.ID,
		View:     ViewTitle,
		Version:  s.Version + 1,
		speechID: s.speechID,
	}
}

// Snapshot is the render state for the presentation layer.
type Snapshot struct {
	SessionID     string          `json:"sessionId"`
	View          View            `json:"view"`
	Region        *regions.Config `json:"region,omitempty"`
	Mode          Mode            `json:"mode,omitempty"`
	Limit         int             `json:"limit,omitempty"`
	Target        *int            `json:"target,omitempty"` // only while feedback or result is shown
	Tray          []int           `json:"tray"`
	Sum           int             `json:"sum"`
	Score         int             `json:"score"`
	Question      int             `json:"question"`
	Feedback      Feedback        `json:"feedback,omitempty"`
	Detail        string          `json:"detail,omitempty"`
	Diff          int             `json:"diff,omitempty"`
	Speaking      bool            `json:"speaking"`
	CanSubmit     bool            `json:"canSubmit"`
	Denominations []int           `json:"denominations,omitempty"`
	Tier          *Tier           `json:"tier,omitempty"`
	Version       uint64          `json:"version"`
}
