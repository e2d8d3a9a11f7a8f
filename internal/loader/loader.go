// Package loader implements incremental catalog loading. A loader expands
// its glob patterns to run files, compares each file's modification time
// against a remembered value, and hands new-or-changed runs to the indexing
// sink. Only the first record and the optional trailing stop record are read
// here; the full record stream stays lazy behind a factory.
package loader

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/runcat-io/runcat/internal/codec"
	rcerrors "github.com/runcat-io/runcat/internal/errors"
	"github.com/runcat-io/runcat/pkg/documents"
)

// Sink consumes complete run observations, exactly once per observed file
// change.
type Sink interface {
	Upsert(start, stop documents.Document, stream codec.StreamFactory, path string) error
}

// Loader tracks file modification times and feeds changed runs to a sink.
// A loader is single-writer: concurrent Refresh calls on one instance are
// unsupported.
type Loader struct {
	patterns []string
	codec    codec.Codec
	sink     Sink
	logger   *slog.Logger

	// ledger maps file path to its last successfully scanned mtime.
	// Entries are never removed when files disappear.
	ledger map[string]time.Time
}

// New creates a loader over the given glob patterns. The pattern list is
// copied and immutable for the loader's lifetime.
func New(patterns []string, c codec.Codec, sink Sink, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		patterns: append([]string(nil), patterns...),
		codec:    c,
		sink:     sink,
		logger:   logger,
		ledger:   make(map[string]time.Time),
	}
}

// Patterns returns a copy of the configured glob patterns.
func (l *Loader) Patterns() []string {
	return append([]string(nil), l.patterns...)
}

// Refresh runs one load cycle: every file matched by the patterns is checked
// against the ledger and re-indexed if its mtime changed. The cycle is
// fail-fast: the first malformed file aborts it, leaving later files for the
// next call. Matching is a snapshot of the filesystem, not a watch.
func (l *Loader) Refresh() error {
	for _, pattern := range l.patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return rcerrors.Wrap(rcerrors.ErrCodePatternInvalid, err).
				WithDetail("pattern", pattern)
		}
		for _, path := range matches {
			if err := l.loadFile(path); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Loader) loadFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		// The file vanished between glob expansion and stat.
		return err
	}
	mtime := info.ModTime()
	prev, seen := l.ledger[path]
	if seen && prev.Equal(mtime) {
		return nil
	}

	// Advance the ledger before parsing: a file whose first record is
	// durably corrupt is parsed once per mtime change, not once per cycle.
	l.ledger[path] = mtime

	first, err := l.codec.First(path)
	switch {
	case errors.Is(err, codec.ErrNotReady):
		// Mid-write; leave the file unmarked so the next cycle retries.
		if seen {
			l.ledger[path] = prev
		} else {
			delete(l.ledger, path)
		}
		l.logger.Debug("run file not ready, skipping",
			slog.String("path", path))
		return nil
	case err != nil:
		if os.IsNotExist(err) {
			return err
		}
		l.logger.Warn("malformed run file, poisoned until it changes again",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return rcerrors.Wrap(rcerrors.ErrCodeMalformedStart, err).
			WithDetail("path", path)
	}
	if first.Name != documents.NameStart {
		l.logger.Warn("run file does not begin with a start record",
			slog.String("path", path),
			slog.String("name", first.Name))
		return rcerrors.New(rcerrors.ErrCodeMalformedStart,
			"first record is named "+first.Name+", expected start", nil).
			WithDetail("path", path)
	}

	stop, err := l.codec.PeekLastComplete(path)
	if err != nil {
		return err
	}

	if err := l.sink.Upsert(first.Doc, stop, l.codec.Open, path); err != nil {
		return err
	}
	l.logger.Debug("indexed run file",
		slog.String("path", path),
		slog.Bool("complete", stop != nil))
	return nil
}
