package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTray_SumTracksContents(t *testing.T) {
	var tr Tray
	assert.Equal(t, 0, tr.Sum())

	for _, v := range []int{20, 20, 1, 1, 100} {
		tr.Add(v)
	}
	assert.Equal(t, 142, tr.Sum())

	assert.True(t, tr.RemoveAt(4))
	assert.Equal(t, []int{20, 20, 1, 1}, tr.Values())
	assert.Equal(t, 42, tr.Sum())

	assert.True(t, tr.RemoveAt(1))
	assert.Equal(t, []int{20, 1, 1}, tr.Values())
	assert.Equal(t, 22, tr.Sum())

	assert.True(t, tr.RemoveAt(0))
	assert.Equal(t, 2, tr.Sum())
}

func TestTray_RemoveOutOfRange(t *testing.T) {
	tr := Tray{5, 10}
	assert.False(t, tr.RemoveAt(-1))
	assert.False(t, tr.RemoveAt(2))
	assert.Equal(t, []int{5, 10}, tr.Values())
}

func TestTray_RemoveDoesNotAliasCopies(t *testing.T) {
	tr := Tray{1, 5, 10}
	before := tr
	tr.RemoveAt(0)
	assert.Equal(t, Tray{1, 5, 10}, before)
	assert.Equal(t, Tray{5, 10}, tr)
}

func TestTray_Clear(t *testing.T) {
	tr := Tray{1, 2, 3}
	tr.Clear()
	assert.Empty(t, tr)
	assert.Equal(t, 0, tr.Sum())
}

func TestTray_ValuesIsCopy(t *testing.T) {
	tr := Tray{1, 2}
	vs := tr.Values()
	vs[0] = 99
	assert.Equal(t, 1, tr[0])
}
