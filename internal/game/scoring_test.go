package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor_Thresholds(t *testing.T) {
	cases := map[int]string{
		0:   "加油！",
		4:   "加油！",
		5:   "不錯！",
		14:  "不錯！",
		15:  "厲害！",
		29:  "厲害！",
		30:  "太棒了！",
		44:  "太棒了！",
		45:  "太牛了！",
		100: "太牛了！",
	}
	for score, phrase := range cases {
		assert.Equal(t, phrase, TierFor(score).Phrase, "score %d", score)
	}
	assert.NotEmpty(t, TierFor(45).Description)
}

func TestTierFor_Monotonic(t *testing.T) {
	rank := map[string]int{}
	for i, tr := range tiers {
		rank[tr.tier.Phrase] = len(tiers) - i
	}
	prev := 0
	for score := 0; score <= 60; score++ {
		r := rank[TierFor(score).Phrase]
		if r < prev {
			t.Fatalf("tier dropped at score %d", score)
		}
		prev = r
	}
}
