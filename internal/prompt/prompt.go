package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks whether to go ahead with an action.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// LineConfirmer reads one line per question and decides with accept.
type LineConfirmer struct {
	in      *bufio.Reader
	out     io.Writer
	accept  func(answer string) bool
	pending chan readResult
}

type readResult struct {
	line string
	err  error
}

// NewLineConfirmer declines only on a case-insensitive "no"; anything else,
// including an empty line or end of input, confirms.
func NewLineConfirmer(in io.Reader, out io.Writer) *LineConfirmer {
	return &LineConfirmer{
		in:     bufio.NewReader(in),
		out:    out,
		accept: func(answer string) bool { return !IsDecline(answer) },
	}
}

// NewYesNoConfirmer confirms only on "y" or "yes".
func NewYesNoConfirmer(in io.Reader, out io.Writer) *LineConfirmer {
	return &LineConfirmer{
		in:     bufio.NewReader(in),
		out:    out,
		accept: IsAffirmative,
	}
}

func (c *LineConfirmer) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprint(c.out, question)

	line, err := c.readLine(ctx)
	if err != nil {
		return false, err
	}
	return c.accept(line), nil
}

// readLine returns early when ctx is cancelled. The blocked read is kept and
// its line is handed to the next call.
func (c *LineConfirmer) readLine(ctx context.Context) (string, error) {
	if c.pending == nil {
		c.pending = make(chan readResult, 1)
		go func(ch chan<- readResult) {
			line, err := c.in.ReadString('\n')
			ch <- readResult{line: line, err: err}
		}(c.pending)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-c.pending:
		c.pending = nil
		if res.err != nil && !errors.Is(res.err, io.EOF) {
			return "", fmt.Errorf("failed to read answer: %w", res.err)
		}
		return res.line, nil
	}
}

func IsDecline(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), "no")
}

func IsAffirmative(answer string) bool {
	answer = strings.TrimSpace(answer)
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}

// AlwaysConfirm never asks.
type AlwaysConfirm struct{}

func (AlwaysConfirm) Confirm(context.Context, string) (bool, error) {
	return true, nil
}
