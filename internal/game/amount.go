// internal/game/amount.go
//
// Target amount generation.
// Ranges widen with the question number in challenge and survival; oni draws from the
// full 1-99999 range every time. Draws come from crypto/rand unless a Source is injected.

package game

import (
	"crypto/rand"
	"encoding/binary"
	"math"
)

// Source yields uniform values in [0, 1).
type Source interface {
	Float64() float64
}

// Generator produces target amounts.
type Generator interface {
	Generate(mode Mode, question int) int
}

// AmountGenerator draws amounts uniformly from the range for (mode, question).
type AmountGenerator struct {
	src Source
}

// NewAmountGenerator returns a generator over src; nil selects crypto/rand.
func NewAmountGenerator(src Source) *AmountGenerator {
	if src == nil {
		src = cryptoSource{}
	}
	return &AmountGenerator{src: src}
}

// Generate implements Generator.
func (g *AmountGenerator) Generate(mode Mode, question int) int {
	lo, hi := Range(mode, question)
	u := g.src.Float64()
	// Guard against sources that return exactly 1.
	if u >= 1 || u < 0 {
		u = math.Nextafter(1, 0)
	}
	return int(math.Floor(u*float64(hi-lo+1))) + lo
}

// Range returns the inclusive amount bounds for a question.
// Survival widens with the question tier; challenge switches at question 6.
func Range(mode Mode, question int) (lo, hi int) {
	switch mode {
	case ModeOni:
		return 1, 99999
	case ModeSurvival:
		switch {
		case question <= 10:
			return 10, 99
		case question <= 20:
			return 100, 999
		case question <= 30:
			return 1000, 9999
		case question <= 40:
			return 10000, 99999
		default:
			return 10, 50000
		}
	default:
		if question < 6 {
			return 10, 99
		}
		return 100, 999
	}
}

// cryptoSource builds a 53-bit float from crypto/rand.
type cryptoSource struct{}

func (cryptoSource) Float64() float64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return float64(binary.LittleEndian.Uint64(b[:])>>11) / (1 << 53)
}
