// internal/play/console.go
//
// Line-oriented terminal front end for one Table.
// Reads commands (start, region <id>, mode <id>, add <v>, rm <n>, clear, pay, say,
// info, ranking, back, home, quit) and re-prints the view after every change,
// including changes made by delayed follow-ups.

package play

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/robalobadob/duoshao/internal/game"
	"github.com/robalobadob/duoshao/internal/regions"
)

// Console renders snapshots as text and dispatches typed commands.
type Console struct {
	Table   *Table
	Out     io.Writer
	Regions []regions.Config

	mu       sync.Mutex
	rendered uint64
	drawn    bool
}

// Render prints the view for snap. Snapshots that only toggle the speaking flag are skipped.
func (c *Console) Render(snap game.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drawn && snap.Version == c.rendered {
		return
	}
	c.drawn = true
	c.rendered = snap.Version
	fmt.Fprint(c.Out, c.view(snap))
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.Out, format, args...)
}

// Run reads commands from in until quit, EOF or ctx cancellation.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.Render(c.Table.Snapshot())
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() { errc <- scanLines(ctx, in, lines) }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-errc
			}
			if c.Exec(line) {
				return nil
			}
		}
	}
}

// scanLines sends each line of in to lines and closes it at EOF.
// It stops early, without error, once ctx is done.
func scanLines(ctx context.Context, in io.Reader, lines chan<- string) error {
	defer close(lines)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case lines <- sc.Text():
		case <-ctx.Done():
			return nil
		}
	}
	return sc.Err()
}

// Exec runs one command line and reports whether the player asked to quit.
func (c *Console) Exec(line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, arg := strings.ToLower(fields[0]), ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	var ok bool
	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		c.printf("%s", helpText)
		return false
	case "start":
		_, ok = c.Table.Start()
	case "region":
		_, ok = c.Table.SelectRegion(regions.ID(strings.ToLower(arg)))
	case "mode":
		m, known := game.ParseMode(strings.ToLower(arg))
		if !known {
			c.printf("unknown mode %q (survival, challenge, oni)\n", arg)
			return false
		}
		_, ok = c.Table.SelectMode(m)
	case "add", "a":
		v, err := strconv.Atoi(arg)
		if err != nil {
			c.printf("add needs a number\n")
			return false
		}
		_, ok = c.Table.AddDenomination(v)
	case "rm":
		n, err := strconv.Atoi(arg)
		if err != nil {
			c.printf("rm needs a tray position\n")
			return false
		}
		_, ok = c.Table.RemoveTrayItem(n - 1)
	case "clear":
		_, ok = c.Table.ClearTray()
	case "pay", "submit":
		_, ok = c.Table.Submit()
	case "say", "s":
		_, _, ok = c.Table.Speak()
	case "info":
		_, ok = c.Table.NavigateTo(game.ViewInfo)
	case "ranking":
		_, ok = c.Table.NavigateTo(game.ViewRanking)
	case "back":
		to := game.ViewTitle
		if c.Table.Snapshot().View == game.ViewModeSelect {
			to = game.ViewRegionSelect
		}
		_, ok = c.Table.NavigateTo(to)
	case "home":
		_, ok = c.Table.Home()
	default:
		c.printf("unknown command %q, type help\n", cmd)
		return false
	}
	if !ok {
		c.printf("(not now)\n")
	}
	return false
}

const helpText = `commands:
  start | info | ranking | back | home | quit
  region <china|taiwan>   mode <survival|challenge|oni>
  add <value>  rm <n>  clear  pay  say
`

func (c *Console) view(s game.Snapshot) string {
	var b strings.Builder
	b.WriteString("\n")
	switch s.View {
	case game.ViewTitle:
		b.WriteString("== 多少錢？ ==\n")
		b.WriteString("start: はじめる   info: 遊び方   ranking: ランキング\n")
	case game.ViewInfo:
		b.WriteString("== 遊び方 ==\n")
		b.WriteString("読み上げられた金額を、お札と硬貨を組み合わせて支払ってください。\n")
		b.WriteString("survival: 間違えたら終了 (50問)   challenge: 全10問   oni: 口語読み、上限なし\n")
		b.WriteString("back: 戻る\n")
	case game.ViewRanking:
		b.WriteString("== ランキング ==\n準備中です。\nback: 戻る\n")
	case game.ViewRegionSelect:
		b.WriteString("== 地域を選ぶ ==\n")
		for _, r := range c.Regions {
			fmt.Fprintf(&b, "  region %-8s %s  %s\n", r.ID, r.Name, r.Sub)
		}
		b.WriteString("back: 戻る\n")
	case game.ViewModeSelect:
		if s.Region != nil {
			fmt.Fprintf(&b, "== %s ==\n", s.Region.Name)
		}
		b.WriteString("  mode survival    50問、ミスしたら終了\n")
		b.WriteString("  mode challenge   全10問\n")
		b.WriteString("  mode oni         口語読み、ミスしたら終了\n")
		b.WriteString("back: 地域選択へ\n")
	case game.ViewPlaying:
		c.playing(&b, s)
	case game.ViewResult:
		fmt.Fprintf(&b, "== 結果: %d 問正解 ==\n", s.Score)
		if s.Tier != nil {
			fmt.Fprintf(&b, "%s\n%s\n", s.Tier.Phrase, s.Tier.Description)
		}
		if s.Target != nil {
			fmt.Fprintf(&b, "最後の金額: %d%s\n", *s.Target, unit(s))
		}
		b.WriteString("home: タイトルへ\n")
	}
	b.WriteString("> ")
	return b.String()
}

func (c *Console) playing(b *strings.Builder, s game.Snapshot) {
	if s.Limit > 0 {
		fmt.Fprintf(b, "== Q%d/%d  score %d ==\n", s.Question, s.Limit, s.Score)
	} else {
		fmt.Fprintf(b, "== Q%d  score %d ==\n", s.Question, s.Score)
	}
	b.WriteString("tray:")
	for i, v := range s.Tray {
		fmt.Fprintf(b, " %d:%d", i+1, v)
	}
	fmt.Fprintf(b, "  = %d%s\n", s.Sum, unit(s))

	switch s.Feedback {
	case game.FeedbackCorrect:
		fmt.Fprintf(b, "%s  %d%s\n", feedbackText(s, true), *s.Target, unit(s))
	case game.FeedbackWrong:
		fmt.Fprintf(b, "%s  %s  正解は %d%s\n", feedbackText(s, false), s.Detail, *s.Target, unit(s))
	default:
		vals := make([]string, 0, len(s.Denominations))
		for _, d := range s.Denominations {
			vals = append(vals, strconv.Itoa(d))
		}
		fmt.Fprintf(b, "money: %s\n", strings.Join(vals, " "))
		b.WriteString("say: もう一度聞く   add <v> | rm <n> | clear | pay\n")
	}
}

func unit(s game.Snapshot) string {
	if s.Region == nil {
		return ""
	}
	return s.Region.Unit
}

func feedbackText(s game.Snapshot, correct bool) string {
	if s.Region == nil {
		return string(s.Feedback)
	}
	if correct {
		return s.Region.Feedback.Correct
	}
	return s.Region.Feedback.Wrong
}
