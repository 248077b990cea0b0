// internal/speech/local.go
//
// Announcers for the terminal player.
//   - Printer: writes the text.
//   - Command: runs a local TTS program, killed on cancellation.
//   - Fallback: first announcer that is available wins.

package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// Printer writes utterances to a terminal.
type Printer struct {
	W io.Writer
}

// Announce implements Announcer.
func (p Printer) Announce(ctx context.Context, u Utterance) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.W, "🔊 %s\n", u.Text)
	return err
}

// Command voices utterances with a local TTS program, e.g. "espeak-ng -v zh".
// The utterance text is appended as the last argument. The process is killed on
// cancellation.
type Command struct {
	Name string
	Args []string

	// RateFlag, when set, passes the words-per-minute rate (base 175 × Utterance.Rate).
	RateFlag string
}

// ParseCommand splits a command line on whitespace.
func ParseCommand(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, errors.New("speech: empty tts command")
	}
	return Command{Name: parts[0], Args: parts[1:]}, nil
}

// Announce implements Announcer.
func (c Command) Announce(ctx context.Context, u Utterance) error {
	path, err := exec.LookPath(c.Name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	args := append([]string{}, c.Args...)
	if c.RateFlag != "" {
		args = append(args, c.RateFlag, strconv.Itoa(int(175*u.Rate)))
	}
	args = append(args, u.Text)
	cmd := exec.CommandContext(ctx, path, args...)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("speech: %s: %w", c.Name, err)
	}
	return nil
}

// Fallback tries each announcer in turn until one does not report ErrUnavailable.
type Fallback []Announcer

// Announce implements Announcer.
func (f Fallback) Announce(ctx context.Context, u Utterance) error {
	for _, a := range f {
		err := a.Announce(ctx, u)
		if !errors.Is(err, ErrUnavailable) {
			return err
		}
	}
	return ErrUnavailable
}
