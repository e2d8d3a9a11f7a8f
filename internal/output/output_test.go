package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/runcat-io/runcat/internal/store"
	"github.com/runcat-io/runcat/pkg/documents"
)

func TestStatusMessages(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Success("done")
	w.Warning("careful")
	w.Error("broken")
	w.Status("", "indented")

	out := buf.String()
	assert.Contains(t, out, "✅ done")
	assert.Contains(t, out, "careful")
	assert.Contains(t, out, "❌ broken")
	assert.Contains(t, out, "   indented")
}

func TestStatusf(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Statusf("📁", "indexed %d runs", 7)
	assert.Equal(t, "📁 indexed 7 runs\n", buf.String())
}

func TestEntriesTable(t *testing.T) {
	buf := &bytes.Buffer{}
	entries := []*store.Entry{
		{
			UID:   "abc",
			Start: documents.Document{"uid": "abc", "plan_name": "scan"},
			Stop:  documents.Document{"exit_status": "success"},
		},
		{
			UID:   "def",
			Start: documents.Document{"uid": "def", "plan_name": "count"},
		},
	}
	New(buf).Entries(entries)

	out := buf.String()
	assert.Contains(t, out, "UID")
	assert.Contains(t, out, "scan")
	assert.Contains(t, out, "success")
	assert.Contains(t, out, "running")
}
