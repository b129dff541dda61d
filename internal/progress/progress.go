package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

const (
	defaultWidth  = 30
	renderEvery   = 100 * time.Millisecond
	reservedWidth = 50
)

// Bar draws a single-line progress indicator, rewriting the line with '\r'.
type Bar struct {
	out        io.Writer
	label      string
	width      int
	lastRender time.Time
	now        func() time.Time
}

func NewBar(out io.Writer, label string) *Bar {
	return &Bar{
		out:   out,
		label: label,
		width: barWidth(out),
		now:   time.Now,
	}
}

// Update is called after every chunk. Redraws are rate limited except for
// the final one.
func (b *Bar) Update(written, total int64) {
	now := b.now()
	done := total > 0 && written >= total
	if !done && now.Sub(b.lastRender) < renderEvery {
		return
	}
	b.lastRender = now
	fmt.Fprintf(b.out, "\r%s %s", b.label, Render(written, total, b.width))
}

// Finish terminates the progress line.
func (b *Bar) Finish() {
	fmt.Fprintln(b.out)
}

// Render formats a bar for written out of total bytes. An unknown total
// (zero) shows only the transferred size.
func Render(written, total int64, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	if written < 0 {
		written = 0
	}
	if total <= 0 {
		return humanize.Bytes(uint64(written))
	}
	if written > total {
		written = total
	}
	percent := float64(written) / float64(total)
	filled := max(0, min(int(percent*float64(width)), width))
	bar := "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
	return fmt.Sprintf("%s %5.1f%% %s / %s", bar, percent*100,
		humanize.Bytes(uint64(written)), humanize.Bytes(uint64(total)))
}

func barWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width-reservedWidth < 10 {
		return defaultWidth
	}
	return min(width-reservedWidth, 60)
}
