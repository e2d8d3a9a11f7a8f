// Package jsonl reads run files encoded as newline-delimited JSON. Each line
// is a two-element array: the record name and the document, in chronological
// order starting with a "start" record.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/runcat-io/runcat/internal/codec"
	"github.com/runcat-io/runcat/internal/tailer"
	"github.com/runcat-io/runcat/pkg/documents"
)

// Codec reads the JSONL run file encoding.
type Codec struct{}

// New returns the JSONL codec.
func New() *Codec { return &Codec{} }

// Name implements codec.Codec.
func (c *Codec) Name() string { return "jsonl" }

// Open returns a lazy line-by-line record stream over the file.
func (c *Codec) Open(path string) (codec.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &reader{file: f, buf: bufio.NewReader(f)}, nil
}

// First returns the first record of the file.
//
// A first line that fails to decode is only an error when the file already
// has a second line: a lone undecodable line means the file is mid-write, so
// ErrNotReady is returned and the caller retries on a later refresh.
func (c *Codec) First(path string) (documents.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return documents.Record{}, err
	}
	defer func() { _ = f.Close() }()

	buf := bufio.NewReader(f)
	line, readErr := buf.ReadString('\n')
	if readErr != nil && readErr != io.EOF {
		return documents.Record{}, readErr
	}

	rec, decErr := decodeLine(line)
	if decErr == nil {
		return rec, nil
	}
	if readErr == io.EOF {
		// No newline after the first line, so there is no second one.
		return documents.Record{}, codec.ErrNotReady
	}
	if second, err := buf.ReadString('\n'); second == "" && err == io.EOF {
		return documents.Record{}, codec.ErrNotReady
	}
	return documents.Record{}, decErr
}

// PeekLastComplete returns the stop document iff the last non-empty line
// decodes to a "stop" record. A decode failure here is an expected transient
// state (a partially written trailing line) and is treated as "no stop
// document yet".
func (c *Codec) PeekLastComplete(path string) (documents.Document, error) {
	line, ok, err := tailer.LastLine(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	rec, err := decodeLine(line)
	if err != nil {
		return nil, nil
	}
	if rec.Name == documents.NameStop {
		return rec.Doc, nil
	}
	return nil, nil
}

// reader streams records one line at a time. It keeps the file handle open
// until Close or io.EOF.
type reader struct {
	file   *os.File
	buf    *bufio.Reader
	closed bool
}

func (r *reader) Next() (documents.Record, error) {
	if r.closed {
		return documents.Record{}, io.EOF
	}
	line, err := r.buf.ReadString('\n')
	if err == io.EOF && line == "" {
		_ = r.Close()
		return documents.Record{}, io.EOF
	}
	if err != nil && err != io.EOF {
		return documents.Record{}, err
	}
	return decodeLine(line)
}

func (r *reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// decodeLine parses one JSONL line into a record.
func decodeLine(line string) (documents.Record, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal([]byte(line), &pair); err != nil {
		return documents.Record{}, err
	}
	if len(pair) != 2 {
		return documents.Record{}, fmt.Errorf("expected [name, document] pair, got %d elements", len(pair))
	}
	var rec documents.Record
	if err := json.Unmarshal(pair[0], &rec.Name); err != nil {
		return documents.Record{}, fmt.Errorf("decode record name: %w", err)
	}
	if err := json.Unmarshal(pair[1], &rec.Doc); err != nil {
		return documents.Record{}, fmt.Errorf("decode %s document: %w", rec.Name, err)
	}
	return rec, nil
}
