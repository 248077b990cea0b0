// internal/game/scoring.go
//
// Result-screen tiers keyed by final score.

package game

// Tier is the result-screen verdict for a final score.
type Tier struct {
	Phrase      string `json:"phrase"`
	Description string `json:"description"`
}

// tiers is ordered by descending threshold; the last entry always matches.
var tiers = []struct {
	min  int
	tier Tier
}{
	{45, Tier{"太牛了！", "驚異的なリスニング力！現地で店長を任せられるレベルです。"}},
	{30, Tier{"太棒了！", "素晴らしい！高額な会計も迷わずこなせていますね。"}},
	{15, Tier{"厲害！", "かなり耳が中国語に慣れてきましたね。その調子です！"}},
	{5, Tier{"不錯！", "基本的なやり取りはバッチリ。もっと上を目指しましょう！"}},
	{0, Tier{"加油！", "まずは短い数字から。繰り返し挑戦して耳を慣らしていきましょう！"}},
}

// TierFor returns the highest tier whose threshold score reaches.
func TierFor(score int) Tier {
	for _, t := range tiers {
		if score >= t.min {
			return t.tier
		}
	}
	return tiers[len(tiers)-1].tier
}
