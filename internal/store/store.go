// Package store holds the in-memory run index a catalog is backed by. Runs
// are keyed by the uid of their start document; re-upserting a uid replaces
// the entry in place. The on-disk file stays the source of truth: an entry
// captures a stream factory instead of eagerly read records.
package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/runcat-io/runcat/internal/codec"
	"github.com/runcat-io/runcat/internal/query"
	"github.com/runcat-io/runcat/pkg/documents"
)

// searchCacheSize bounds the memoized query results.
const searchCacheSize = 256

// Entry is one indexed run.
type Entry struct {
	// UID identifies the run (start document uid).
	UID string
	// Start is the run start document.
	Start documents.Document
	// Stop is the run stop document, nil while the run is incomplete.
	Stop documents.Document

	path   string
	stream codec.StreamFactory
}

// Path returns the run's backing file.
func (e *Entry) Path() string { return e.path }

// Documents re-opens the backing file and returns the full lazy record
// stream. The caller owns the reader and must drain or close it.
func (e *Entry) Documents() (codec.Reader, error) { return e.stream(e.path) }

// Store is the in-memory run index. A store may carry a filter query; the
// read side (Entries, Get, Search, Len) exposes only matching runs, while
// Upsert tracks everything so runs can enter or leave the filtered view as
// their start documents are rewritten.
type Store struct {
	mu      sync.RWMutex
	filter  query.Query
	entries map[string]*Entry
	order   []string
	text    bleve.Index
	cache   *lru.Cache[string, []string]
}

// New creates an empty store filtered by the given query (nil means
// unfiltered). Full-text clauses are served by an in-memory bleve index over
// the string fields of start documents.
func New(filter query.Query) (*Store, error) {
	text, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create text index: %w", err)
	}
	cache, err := lru.New[string, []string](searchCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create search cache: %w", err)
	}
	return &Store{
		filter:  filter,
		entries: make(map[string]*Entry),
		text:    text,
		cache:   cache,
	}, nil
}

// Upsert indexes a run from its start document, optional stop document, and
// a factory that lazily replays the run's full record stream from path.
func (s *Store) Upsert(start, stop documents.Document, stream codec.StreamFactory, path string) error {
	uid, err := documents.UID(start)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[uid]; !exists {
		s.order = append(s.order, uid)
	}
	s.entries[uid] = &Entry{UID: uid, Start: start, Stop: stop, path: path, stream: stream}

	if err := s.text.Index(uid, stringFields(start)); err != nil {
		return fmt.Errorf("index start document %s: %w", uid, err)
	}
	s.cache.Purge()
	return nil
}

// Entries returns the filtered view in insertion order.
func (s *Store) Entries() ([]*Entry, error) {
	return s.Search(nil)
}

// Get returns the run with the given uid if it is inside the filtered view.
func (s *Store) Get(uid string) (*Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[uid]
	if !ok {
		return nil, false, nil
	}
	match, err := s.compile(nil)
	if err != nil {
		return nil, false, err
	}
	ok, err = match(e)
	if err != nil || !ok {
		return nil, false, err
	}
	return e, true, nil
}

// Len returns the number of runs in the filtered view.
func (s *Store) Len() (int, error) {
	entries, err := s.Entries()
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Search returns the filtered runs that also satisfy q, in insertion order.
// Results are memoized per canonical query encoding until the next upsert.
func (s *Store) Search(q query.Query) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, err := cacheKey(q)
	if err != nil {
		return nil, err
	}
	if uids, ok := s.cache.Get(key); ok {
		return s.collect(uids), nil
	}

	match, err := s.compile(q)
	if err != nil {
		return nil, err
	}
	var uids []string
	for _, uid := range s.order {
		ok, err := match(s.entries[uid])
		if err != nil {
			return nil, err
		}
		if ok {
			uids = append(uids, uid)
		}
	}
	s.cache.Add(key, uids)
	return s.collect(uids), nil
}

func (s *Store) collect(uids []string) []*Entry {
	entries := make([]*Entry, 0, len(uids))
	for _, uid := range uids {
		if e, ok := s.entries[uid]; ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// compile builds the effective predicate for the store filter plus q,
// resolving any top-level $text clauses against the bleve index up front.
func (s *Store) compile(q query.Query) (func(*Entry) (bool, error), error) {
	var hits map[string]struct{}
	structural := query.Query{}

	for _, part := range []query.Query{s.filter, q} {
		text, rest, err := splitText(part)
		if err != nil {
			return nil, err
		}
		if text != "" {
			ids, err := s.textSearch(text)
			if err != nil {
				return nil, err
			}
			hits = intersect(hits, ids)
		}
		structural = query.And(structural, rest)
	}

	return func(e *Entry) (bool, error) {
		if hits != nil {
			if _, ok := hits[e.UID]; !ok {
				return false, nil
			}
		}
		return query.Match(structural, e.Start)
	}, nil
}

func (s *Store) textSearch(text string) (map[string]struct{}, error) {
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(text))
	req.Size = len(s.order)
	res, err := s.text.Search(req)
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}
	ids := make(map[string]struct{}, len(res.Hits))
	for _, hit := range res.Hits {
		ids[hit.ID] = struct{}{}
	}
	return ids, nil
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	if a == nil {
		return b
	}
	out := make(map[string]struct{})
	for id := range a {
		if _, ok := b[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// splitText extracts a top-level {"$text": {"$search": ...}} clause,
// returning the search string and the remaining structural query. $text
// nested below logical operators is not supported and will be rejected by
// the matcher.
func splitText(q query.Query) (string, query.Query, error) {
	raw, ok := q["$text"]
	if !ok {
		return "", q, nil
	}
	rest := make(query.Query, len(q)-1)
	for k, v := range q {
		if k != "$text" {
			rest[k] = v
		}
	}
	switch t := raw.(type) {
	case string:
		return t, rest, nil
	case map[string]any:
		search, ok := t["$search"].(string)
		if !ok {
			return "", nil, fmt.Errorf("$text expects a $search string")
		}
		return search, rest, nil
	default:
		return "", nil, fmt.Errorf("$text expects a string or {$search: ...}, got %T", raw)
	}
}

// cacheKey canonicalizes a query for memoization; json.Marshal sorts map
// keys, so semantically identical queries share a key.
func cacheKey(q query.Query) (string, error) {
	if len(q) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("encode query: %w", err)
	}
	return string(b), nil
}

// stringFields flattens the string-valued fields of a start document for
// full-text indexing, using dotted keys for nesting.
func stringFields(doc documents.Document) map[string]string {
	out := make(map[string]string)
	flatten("", doc, out)
	return out
}

func flatten(prefix string, doc map[string]any, out map[string]string) {
	for k, v := range doc {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch t := v.(type) {
		case string:
			out[key] = t
		case map[string]any:
			flatten(key, t, out)
		}
	}
}
