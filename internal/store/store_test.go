package store

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runcat-io/runcat/internal/codec"
	"github.com/runcat-io/runcat/internal/query"
	"github.com/runcat-io/runcat/pkg/documents"
)

// memReader replays a fixed record slice, standing in for a codec stream.
type memReader struct {
	recs []documents.Record
	pos  int
}

func (r *memReader) Next() (documents.Record, error) {
	if r.pos >= len(r.recs) {
		return documents.Record{}, io.EOF
	}
	rec := r.recs[r.pos]
	r.pos++
	return rec, nil
}

func (r *memReader) Close() error { return nil }

func memStream(recs ...documents.Record) codec.StreamFactory {
	return func(string) (codec.Reader, error) {
		return &memReader{recs: recs}, nil
	}
}

func upsertRun(t *testing.T, s *Store, start documents.Document, stop documents.Document) {
	t.Helper()
	recs := []documents.Record{{Name: documents.NameStart, Doc: start}}
	if stop != nil {
		recs = append(recs, documents.Record{Name: documents.NameStop, Doc: stop})
	}
	require.NoError(t, s.Upsert(start, stop, memStream(recs...), "/runs/"+start["uid"].(string)))
}

func TestUpsertAndEntries(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	upsertRun(t, s, documents.Document{"uid": "a", "plan_name": "count"}, nil)
	upsertRun(t, s, documents.Document{"uid": "b", "plan_name": "scan"},
		documents.Document{"exit_status": "success"})

	entries, err := s.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].UID)
	assert.Equal(t, "b", entries[1].UID)
	assert.Nil(t, entries[0].Stop)
	assert.Equal(t, "success", entries[1].Stop["exit_status"])

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUpsertReplacesInPlace(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	upsertRun(t, s, documents.Document{"uid": "a", "plan_name": "count"}, nil)
	upsertRun(t, s, documents.Document{"uid": "b", "plan_name": "scan"}, nil)
	// Run "a" completes: same uid, now with a stop document.
	upsertRun(t, s, documents.Document{"uid": "a", "plan_name": "count"},
		documents.Document{"exit_status": "success"})

	entries, err := s.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].UID, "insertion order preserved on replace")
	assert.Equal(t, "success", entries[0].Stop["exit_status"])
}

func TestUpsertRejectsMissingUID(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	err = s.Upsert(documents.Document{"plan_name": "count"}, nil, memStream(), "/runs/x")
	assert.Error(t, err)
}

func TestEntryDocumentsReplaysStream(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	start := documents.Document{"uid": "a"}
	upsertRun(t, s, start, documents.Document{"exit_status": "success"})

	e, ok, err := s.Get("a")
	require.NoError(t, err)
	require.True(t, ok)

	// The stream restarts on every call.
	for range 2 {
		r, err := e.Documents()
		require.NoError(t, err)
		first, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, documents.NameStart, first.Name)
		require.NoError(t, r.Close())
	}
}

func TestSearchStructural(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	upsertRun(t, s, documents.Document{"uid": "a", "plan_name": "count", "scan_id": 1.0}, nil)
	upsertRun(t, s, documents.Document{"uid": "b", "plan_name": "scan", "scan_id": 2.0}, nil)
	upsertRun(t, s, documents.Document{"uid": "c", "plan_name": "scan", "scan_id": 3.0}, nil)

	entries, err := s.Search(query.Query{"plan_name": "scan"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].UID)
	assert.Equal(t, "c", entries[1].UID)

	entries, err = s.Search(query.Query{
		"plan_name": "scan",
		"scan_id":   map[string]any{"$gt": 2},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "c", entries[0].UID)
}

func TestSearchText(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	upsertRun(t, s, documents.Document{"uid": "a", "plan_name": "count",
		"sample": map[string]any{"name": "tungsten carbide"}}, nil)
	upsertRun(t, s, documents.Document{"uid": "b", "plan_name": "scan",
		"sample": map[string]any{"name": "quartz"}}, nil)

	entries, err := s.Search(query.Query{"$text": map[string]any{"$search": "tungsten"}})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].UID)

	// Text and structural clauses combine.
	entries, err = s.Search(query.Query{
		"$text":     map[string]any{"$search": "quartz"},
		"plan_name": "count",
	})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFilteredView(t *testing.T) {
	s, err := New(query.Query{"plan_name": "scan"})
	require.NoError(t, err)
	upsertRun(t, s, documents.Document{"uid": "a", "plan_name": "count"}, nil)
	upsertRun(t, s, documents.Document{"uid": "b", "plan_name": "scan"}, nil)

	entries, err := s.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].UID)

	_, ok, err := s.Get("a")
	require.NoError(t, err)
	assert.False(t, ok, "out-of-filter run is hidden")

	// The hidden run is still tracked: a matching rewrite surfaces it.
	upsertRun(t, s, documents.Document{"uid": "a", "plan_name": "scan"}, nil)
	entries, err = s.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSearchCacheInvalidatedByUpsert(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	upsertRun(t, s, documents.Document{"uid": "a", "plan_name": "scan"}, nil)

	q := query.Query{"plan_name": "scan"}
	entries, err := s.Search(q)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	upsertRun(t, s, documents.Document{"uid": "b", "plan_name": "scan"}, nil)
	entries, err = s.Search(q)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "upsert must purge memoized results")
}
