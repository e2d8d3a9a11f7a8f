// Package catalog is the public facade over runcat's loader and run index.
// A catalog owns a set of run-file glob patterns, an encoding, and a private
// change ledger; Refresh incrementally folds on-disk changes into the index,
// and Search derives narrowed catalogs that share nothing but configuration.
package catalog

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/runcat-io/runcat/internal/codec"
	"github.com/runcat-io/runcat/internal/codec/jsonl"
	"github.com/runcat-io/runcat/internal/codec/msgpack"
	rcerrors "github.com/runcat-io/runcat/internal/errors"
	"github.com/runcat-io/runcat/internal/loader"
	"github.com/runcat-io/runcat/internal/query"
	"github.com/runcat-io/runcat/internal/store"
)

// Encoding selects the run-file wire format at construction time.
type Encoding string

const (
	// EncodingJSONL is newline-delimited ["name", {...}] JSON.
	EncodingJSONL Encoding = "jsonl"
	// EncodingMsgpack is a stream of framed msgpack [name, doc] pairs.
	EncodingMsgpack Encoding = "msgpack"
)

func (e Encoding) codec() (codec.Codec, error) {
	switch e {
	case EncodingJSONL:
		return jsonl.New(), nil
	case EncodingMsgpack:
		return msgpack.New(), nil
	default:
		return nil, rcerrors.New(rcerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown run file encoding %q", string(e)), nil).
			WithSuggestion(`use "jsonl" or "msgpack"`)
	}
}

// Options configures a catalog. All fields are optional; derived catalogs
// inherit them.
type Options struct {
	// Name labels the catalog for display.
	Name string
	// Query filters the catalog's view: only runs whose start document
	// matches are visible through Entries, Get, Len, and Search.
	Query query.Query
	// HandlerRegistry maps external-data format names to opaque handlers. The
	// catalog carries it for consumers; nothing here interprets it.
	HandlerRegistry map[string]any
	// Auth is opaque credential material carried for consumers.
	Auth any
	// Metadata is free-form catalog metadata.
	Metadata map[string]any
	// StorageOptions is opaque storage configuration carried for consumers.
	StorageOptions map[string]any
	// Logger receives loader diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Catalog is an incrementally refreshed, searchable index of runs.
type Catalog struct {
	encoding Encoding
	paths    []string
	opts     Options

	store  *store.Store
	loader *loader.Loader
}

// New creates a catalog over the run files matched by the given glob
// patterns. The catalog starts empty; call Refresh to load.
func New(encoding Encoding, paths []string, opts *Options) (*Catalog, error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	c, err := encoding.codec()
	if err != nil {
		return nil, err
	}
	st, err := store.New(o.Query)
	if err != nil {
		return nil, err
	}
	paths = append([]string(nil), paths...)
	return &Catalog{
		encoding: encoding,
		paths:    paths,
		opts:     o,
		store:    st,
		loader:   loader.New(paths, c, st, o.Logger),
	}, nil
}

// Open creates a catalog over a single glob pattern. It is equivalent to New
// with a one-element path list.
func Open(encoding Encoding, path string, opts *Options) (*Catalog, error) {
	return New(encoding, []string{path}, opts)
}

// Name returns the catalog's display name.
func (c *Catalog) Name() string { return c.opts.Name }

// Metadata returns the catalog's metadata map.
func (c *Catalog) Metadata() map[string]any { return c.opts.Metadata }

// HandlerRegistry returns the opaque handler registry.
func (c *Catalog) HandlerRegistry() map[string]any { return c.opts.HandlerRegistry }

// Encoding returns the run-file encoding the catalog reads.
func (c *Catalog) Encoding() Encoding { return c.encoding }

// Paths returns a copy of the catalog's glob patterns.
func (c *Catalog) Paths() []string { return append([]string(nil), c.paths...) }

// Refresh runs one incremental load cycle over the catalog's patterns.
func (c *Catalog) Refresh() error {
	return c.loader.Refresh()
}

// Entries returns the visible runs in insertion order.
func (c *Catalog) Entries() ([]*store.Entry, error) {
	return c.store.Entries()
}

// Get returns the visible run with the given uid.
func (c *Catalog) Get(uid string) (*store.Entry, bool, error) {
	return c.store.Get(uid)
}

// Len returns the number of visible runs.
func (c *Catalog) Len() (int, error) {
	return c.store.Len()
}

// Search derives a catalog whose view is narrowed by q. The derived catalog
// reads the same files with the same encoding and inherited options, but its
// change ledger is its own: the first Refresh on the result re-scans from
// scratch. Filters compose as {"$and": [existing, q]}, preserving nesting.
func (c *Catalog) Search(q query.Query) (*Catalog, error) {
	opts := c.opts
	opts.Query = query.And(c.opts.Query, q)
	opts.Name = "search results"
	opts.Metadata = maps.Clone(c.opts.Metadata)
	return New(c.encoding, c.paths, &opts)
}
