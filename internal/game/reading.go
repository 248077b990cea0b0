// internal/game/reading.go
//
// Spoken form of a target amount.
//   - Normal modes: "一共是{amount}{spokenUnit}" at the default voice.
//   - Oni: colloquial digit + place reading, no unit, faster and lower.

package game

import (
	"strconv"
	"strings"

	"github.com/robalobadob/duoshao/internal/regions"
	"github.com/robalobadob/duoshao/internal/speech"
)

var (
	readingDigits = [...]string{"零", "一", "二", "三", "四", "五", "六", "七", "八", "九"}
	readingPlaces = [...]string{"", "十", "百", "千", "万"}
)

// Voice parameters for normal and oni narration.
const (
	normalRate  = 1.0
	normalPitch = 1.0
	oniRate     = 1.3
	oniPitch    = 0.8
)

// OniReading renders n the way a shopkeeper says it quickly: each non-zero digit
// followed by its place word. Zero digits are skipped together with their place,
// and a leading 一 before 十 is kept ("一十").
func OniReading(n int) string {
	if n <= 0 {
		return readingDigits[0]
	}
	s := strconv.Itoa(n)
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		d := int(s[i] - '0')
		if d == 0 {
			continue
		}
		pos := len(s) - i - 1
		b.WriteString(readingDigits[d])
		if pos < len(readingPlaces) {
			b.WriteString(readingPlaces[pos])
		}
	}
	return b.String()
}

// Phrase is the sentence announced for a target amount.
func Phrase(r regions.Config, mode Mode, amount int) string {
	if mode == ModeOni {
		return OniReading(amount)
	}
	return "一共是" + strconv.Itoa(amount) + r.SpokenUnit
}

// utterance builds the announcement for the session's current target.
func utterance(id uint64, r regions.Config, mode Mode, amount int) speech.Utterance {
	u := speech.Utterance{
		ID:    id,
		Text:  Phrase(r, mode, amount),
		Lang:  r.Locale,
		Rate:  normalRate,
		Pitch: normalPitch,
	}
	if mode == ModeOni {
		u.Rate, u.Pitch = oniRate, oniPitch
	}
	return u
}
