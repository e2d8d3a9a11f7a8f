// Package codec defines the record-stream contract shared by the two run
// file encodings (JSONL and msgpack). The loader holds a Codec chosen at
// construction time; encoding-specific behavior lives entirely behind this
// interface.
package codec

import (
	"errors"

	"github.com/runcat-io/runcat/pkg/documents"
)

// ErrNotReady reports that a file has insufficient content to yield its
// first record: it is empty or mid-write. Callers skip such files and try
// again on a later refresh.
var ErrNotReady = errors.New("run file not ready")

// Reader is a lazy cursor over the records of one run file. Next returns
// io.EOF after the final record. A Reader holds its file handle open until
// Close or exhaustion; abandoning one without Close leaks a descriptor.
type Reader interface {
	Next() (documents.Record, error)
	Close() error
}

// Codec reads run records from one on-disk encoding.
type Codec interface {
	// Name identifies the encoding ("jsonl" or "msgpack").
	Name() string

	// Open returns a restartable record stream reading the file from the
	// beginning. Decode failures surface through Reader.Next.
	Open(path string) (Reader, error)

	// First returns the first record of the file, or ErrNotReady when the
	// file is empty or mid-write per the encoding's readiness rule.
	First(path string) (documents.Record, error)

	// PeekLastComplete returns the document of the final record iff that
	// record is named "stop"; otherwise nil. It never reports a partially
	// written trailing record as an error.
	PeekLastComplete(path string) (documents.Document, error)
}

// StreamFactory reconstructs the lazy record stream for a file on demand.
// Catalog entries capture one of these instead of eagerly read records.
type StreamFactory func(path string) (Reader, error)
