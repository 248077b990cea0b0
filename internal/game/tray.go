// internal/game/tray.go
//
// Tray: the denominations the player has picked for the current question.

package game

// Tray is the player's selection for the current question, in selection order.
// Duplicates are allowed. The sum is never cached.
type Tray []int

// Add appends a value.
func (t *Tray) Add(v int) { *t = append(*t, v) }

// RemoveAt drops the value at index i; out-of-range indexes are ignored.
func (t *Tray) RemoveAt(i int) bool {
	if i < 0 || i >= len(*t) {
		return false
	}
	*t = append((*t)[:i:i], (*t)[i+1:]...)
	return true
}

// Clear empties the tray.
func (t *Tray) Clear() { *t = nil }

// Sum folds the tray contents.
func (t Tray) Sum() int {
	n := 0
	for _, v := range t {
		n += v
	}
	return n
}

// Values returns a copy safe to hand to readers.
func (t Tray) Values() []int {
	out := make([]int, len(t))
	copy(out, t)
	return out
}
