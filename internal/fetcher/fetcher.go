package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"vsixget/internal/downloader"
	"vsixget/internal/marketplace"
	"vsixget/internal/prompt"
	"vsixget/internal/utils"
)

type State int

const (
	StateSkippedEmpty State = iota
	StateResolutionFailed
	StateAlreadyExists
	StateUserDeclined
	StateDownloadFailed
	StateDownloadSucceeded
)

var stateNames = map[State]string{
	StateSkippedEmpty:      "skipped-empty",
	StateResolutionFailed:  "resolution-failed",
	StateAlreadyExists:     "already-exists",
	StateUserDeclined:      "user-declined",
	StateDownloadFailed:    "download-failed",
	StateDownloadSucceeded: "download-succeeded",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Outcome is the terminal state reached for one identifier.
type Outcome struct {
	Identifier string
	State      State
	Info       *marketplace.ExtensionInfo
	Path       string
	Err        error
}

type Resolver interface {
	Resolve(ctx context.Context, identifier string) (*marketplace.ExtensionInfo, error)
}

type Downloader interface {
	Exists(fileName string) bool
	Download(ctx context.Context, downloadURL, fileName string, progress downloader.ProgressFunc) (string, error)
}

type Progress interface {
	Update(written, total int64)
	Finish()
}

type Fetcher struct {
	resolver    Resolver
	downloader  Downloader
	confirmer   prompt.Confirmer
	out         io.Writer
	newProgress func(label string) Progress
}

type Option func(*Fetcher)

// WithProgress installs a progress indicator factory, called once per
// download with the target file name.
func WithProgress(newProgress func(label string) Progress) Option {
	return func(f *Fetcher) {
		f.newProgress = newProgress
	}
}

func New(resolver Resolver, dl Downloader, confirmer prompt.Confirmer, out io.Writer, opts ...Option) *Fetcher {
	f := &Fetcher{
		resolver:   resolver,
		downloader: dl,
		confirmer:  confirmer,
		out:        out,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run processes identifiers in order. A failure for one identifier never
// stops the others; only cancellation or a broken prompt ends the run early.
func (f *Fetcher) Run(ctx context.Context, identifiers []string) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(identifiers))
	for _, raw := range identifiers {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		outcome, err := f.Fetch(ctx, raw)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// Fetch drives a single identifier to its terminal state. The returned error
// is reserved for conditions that should stop the whole run.
func (f *Fetcher) Fetch(ctx context.Context, raw string) (Outcome, error) {
	identifier := strings.TrimSpace(raw)
	outcome := Outcome{Identifier: identifier}
	if identifier == "" {
		outcome.State = StateSkippedEmpty
		return outcome, nil
	}

	info, err := f.resolver.Resolve(ctx, identifier)
	if err != nil {
		log.Debug().Str("op", "fetcher/resolve").Str("identifier", identifier).Err(err).Msg("resolution failed")
		fmt.Fprintf(f.out, "\nCould not get extension info for %s: %v\n", identifier, err)
		outcome.State = StateResolutionFailed
		outcome.Err = err
		return outcome, nil
	}
	outcome.Info = info

	fileName := utils.PackageFileName(identifier, info.Version)
	if f.downloader.Exists(fileName) {
		fmt.Fprintf(f.out, "\n%s already exists, skipping download\n", fileName)
		outcome.State = StateAlreadyExists
		return outcome, nil
	}

	fmt.Fprintf(f.out, "\nReady to download %s\nURL: %s\n", fileName, info.DownloadURL)
	ok, err := f.confirmer.Confirm(ctx, "Press Enter to download, type 'no' to skip: ")
	if err != nil {
		return outcome, fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		fmt.Fprintln(f.out, "Skipping this download")
		outcome.State = StateUserDeclined
		return outcome, nil
	}

	fmt.Fprintf(f.out, "Downloading: %s\n", fileName)
	var progress downloader.ProgressFunc
	var bar Progress
	if f.newProgress != nil {
		bar = f.newProgress(fileName)
		progress = bar.Update
	}
	path, err := f.downloader.Download(ctx, info.DownloadURL, fileName, progress)
	if bar != nil {
		bar.Finish()
	}

	switch {
	case errors.Is(err, downloader.ErrFileExists):
		fmt.Fprintf(f.out, "%s already exists, skipping download\n", fileName)
		outcome.State = StateAlreadyExists
	case err != nil:
		log.Debug().Str("op", "fetcher/download").Str("identifier", identifier).Err(err).Msg("download failed")
		fmt.Fprintf(f.out, "Download failed: %v\n", err)
		outcome.State = StateDownloadFailed
		outcome.Err = err
	default:
		fmt.Fprintf(f.out, "Finished downloading %s, moving on to the next extension...\n", fileName)
		outcome.State = StateDownloadSucceeded
		outcome.Path = path
	}
	return outcome, nil
}

// Summarize counts outcomes per state, in state order.
func Summarize(outcomes []Outcome) string {
	counts := make(map[State]int)
	for _, o := range outcomes {
		counts[o.State]++
	}
	var parts []string
	for s := StateSkippedEmpty; s <= StateDownloadSucceeded; s++ {
		if counts[s] > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", s, counts[s]))
		}
	}
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, " ")
}
