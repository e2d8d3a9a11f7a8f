// Package msgpack reads run files encoded as a stream of framed msgpack
// values. Each frame is a two-element array of record name and document.
// Numeric-array document fields encoded with the msgpack-numpy map
// convention decode to documents.NDArray values.
package msgpack

import (
	"bufio"
	"fmt"
	"io"
	"os"

	msgp "github.com/vmihailenco/msgpack/v5"

	"github.com/runcat-io/runcat/internal/codec"
	"github.com/runcat-io/runcat/pkg/documents"
)

// maxFrameSize bounds decoded binary payloads so a pathological file cannot
// demand unbounded memory.
const maxFrameSize = 1 << 30

// Codec reads the msgpack run file encoding.
type Codec struct{}

// New returns the msgpack codec.
func New() *Codec { return &Codec{} }

// Name implements codec.Codec.
func (c *Codec) Name() string { return "msgpack" }

// Open returns a lazy frame-by-frame record stream over the file.
func (c *Codec) Open(path string) (codec.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &reader{file: f, dec: newDecoder(f)}, nil
}

// First returns the first record of the file, or ErrNotReady when the file
// holds no complete frame yet.
func (c *Codec) First(path string) (documents.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return documents.Record{}, err
	}
	defer func() { _ = f.Close() }()

	rec, err := decodeFrame(newDecoder(f))
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return documents.Record{}, codec.ErrNotReady
	}
	return rec, err
}

// PeekLastComplete scans the whole file for its final record; the framing
// has no line structure, so there is no cheaper way to seek from the end.
// The stop document is returned only when the final record is a "stop".
func (c *Codec) PeekLastComplete(path string) (documents.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	dec := newDecoder(f)
	var last *documents.Record
	for {
		rec, err := decodeFrame(dec)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			// A truncated trailing frame is a mid-write state, not an error.
			break
		}
		if err != nil {
			return nil, err
		}
		last = &rec
	}
	if last != nil && last.Name == documents.NameStop {
		return last.Doc, nil
	}
	return nil, nil
}

// reader streams records one frame at a time. It keeps the file handle open
// until Close or exhaustion.
type reader struct {
	file   *os.File
	dec    *msgp.Decoder
	closed bool
}

func (r *reader) Next() (documents.Record, error) {
	if r.closed {
		return documents.Record{}, io.EOF
	}
	rec, err := decodeFrame(r.dec)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		_ = r.Close()
		return documents.Record{}, io.EOF
	}
	return rec, err
}

func (r *reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// newDecoder builds a decoder that materializes msgpack maps as
// map[string]any so documents keep their opaque shape.
func newDecoder(r io.Reader) *msgp.Decoder {
	dec := msgp.NewDecoder(bufio.NewReader(r))
	dec.SetMapDecoder(func(d *msgp.Decoder) (any, error) {
		return d.DecodeMap()
	})
	return dec
}

// decodeFrame parses one [name, document] frame.
func decodeFrame(dec *msgp.Decoder) (documents.Record, error) {
	v, err := dec.DecodeInterface()
	if err != nil {
		return documents.Record{}, err
	}
	pair, ok := v.([]any)
	if !ok {
		return documents.Record{}, fmt.Errorf("expected [name, document] frame, got %T", v)
	}
	if len(pair) != 2 {
		return documents.Record{}, fmt.Errorf("expected [name, document] frame, got %d elements", len(pair))
	}
	name, ok := pair[0].(string)
	if !ok {
		return documents.Record{}, fmt.Errorf("record name is not a string: %T", pair[0])
	}
	doc, ok := pair[1].(map[string]any)
	if !ok {
		return documents.Record{}, fmt.Errorf("%s document is not a map: %T", name, pair[1])
	}
	resolveArrays(doc)
	return documents.Record{Name: name, Doc: doc}, nil
}
