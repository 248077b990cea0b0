package play

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/duoshao/internal/game"
	"github.com/robalobadob/duoshao/internal/regions"
)

func newConsole(t *testing.T) (*Console, *manual, *bytes.Buffer) {
	t.Helper()
	cat, err := regions.LoadFile("")
	require.NoError(t, err)
	out := &bytes.Buffer{}
	c := &Console{Out: out, Regions: cat.All()}
	tb, m := newTable(t, Options{OnChange: c.Render})
	c.Table = tb
	return c, m, out
}

func TestConsole_PlaysOneQuestion(t *testing.T) {
	c, m, out := newConsole(t)

	for _, line := range []string{"start", "region china", "mode challenge", "add 20", "add 20", "add 1", "add 5", "rm 4", "add 1"} {
		assert.False(t, c.Exec(line), line)
	}
	assert.Contains(t, out.String(), "region taiwan")
	assert.Contains(t, out.String(), "== Q1/10  score 0 ==")
	assert.Contains(t, out.String(), "tray: 1:20 2:20 3:1 4:1  = 42元")

	out.Reset()
	c.Exec("pay")
	assert.Contains(t, out.String(), "正确!  42元")

	out.Reset()
	m.fireAll()
	assert.Contains(t, out.String(), "== Q2/10  score 1 ==")
	assert.Equal(t, 2, c.Table.Snapshot().Question)
}

func TestConsole_WrongShowsDetail(t *testing.T) {
	c, _, out := newConsole(t)
	for _, line := range []string{"start", "region taiwan", "mode oni", "add 50"} {
		c.Exec(line)
	}
	out.Reset()
	c.Exec("pay")
	assert.Contains(t, out.String(), "錯誤...  多いです (+8)  正解は 42元")
}

func TestConsole_RejectedAndUnknown(t *testing.T) {
	c, _, out := newConsole(t)

	c.Exec("pay")
	assert.Contains(t, out.String(), "(not now)")

	out.Reset()
	c.Exec("dance")
	assert.Contains(t, out.String(), `unknown command "dance"`)

	out.Reset()
	c.Exec("start")
	c.Exec("region china")
	c.Exec("mode zen")
	assert.Contains(t, out.String(), `unknown mode "zen"`)

	out.Reset()
	c.Exec("add x")
	assert.Contains(t, out.String(), "add needs a number")
}

func TestConsole_Back(t *testing.T) {
	c, _, _ := newConsole(t)
	c.Exec("start")
	c.Exec("region china")
	c.Exec("back")
	snap := c.Table.Snapshot()
	assert.Equal(t, game.ViewRegionSelect, snap.View)
	assert.Nil(t, snap.Region)

	c.Exec("back")
	assert.Equal(t, game.ViewTitle, c.Table.Snapshot().View)

	c.Exec("info")
	assert.Equal(t, game.ViewInfo, c.Table.Snapshot().View)
	c.Exec("back")
	assert.Equal(t, game.ViewTitle, c.Table.Snapshot().View)
}

func TestConsole_RunStopsOnQuit(t *testing.T) {
	c, _, out := newConsole(t)
	err := c.Run(context.Background(), strings.NewReader("start\nquit\nstart\n"))
	require.NoError(t, err)
	assert.Equal(t, game.ViewRegionSelect, c.Table.Snapshot().View)
	assert.Contains(t, out.String(), "== 多少錢？ ==")
}

func TestConsole_RunEOF(t *testing.T) {
	c, _, _ := newConsole(t)
	require.NoError(t, c.Run(context.Background(), strings.NewReader("info\n")))
	assert.Equal(t, game.ViewInfo, c.Table.Snapshot().View)
}

func TestScanLines_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lines := make(chan string)
	done := make(chan error, 1)
	go func() { done <- scanLines(ctx, strings.NewReader("start\ninfo\n"), lines) }()

	assert.Equal(t, "start", <-lines)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scanner still blocked after cancel")
	}
	_, open := <-lines
	assert.False(t, open)
}

func TestConsole_RunReturnsOnCancel(t *testing.T) {
	c, _, _ := newConsole(t)
	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, pr) }()

	_, err := io.WriteString(pw, "start\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return c.Table.Snapshot().View == game.ViewRegionSelect }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
