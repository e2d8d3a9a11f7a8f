package ui

import (
	"bytes"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runcat-io/runcat/internal/store"
	"github.com/runcat-io/runcat/pkg/documents"
)

func TestRowFor(t *testing.T) {
	e := &store.Entry{
		UID: "4f7e1c92-aaaa-bbbb",
		Start: documents.Document{
			"uid":       "4f7e1c92-aaaa-bbbb",
			"plan_name": "scan",
			"time":      float64(1735689600), // 2025-01-01T00:00:00Z
		},
		Stop: documents.Document{"exit_status": "success"},
	}
	row := rowFor(e)
	assert.Equal(t, "4f7e1c92", row[0], "uid is truncated for display")
	assert.Equal(t, "scan", row[1])
	assert.NotEmpty(t, row[2])
	assert.Equal(t, "success", row[3])
}

func TestRunStatus(t *testing.T) {
	tests := []struct {
		name string
		stop documents.Document
		want string
	}{
		{"incomplete", nil, "running"},
		{"success", documents.Document{"exit_status": "success"}, "success"},
		{"failed", documents.Document{"exit_status": "failed"}, "failed"},
		{"stop without status", documents.Document{}, "complete"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &store.Entry{UID: "u", Stop: tt.stop}
			assert.Equal(t, tt.want, runStatus(e))
		})
	}
}

func TestFormatEpoch(t *testing.T) {
	assert.Equal(t, "", formatEpoch(nil))
	assert.Equal(t, "", formatEpoch("not a number"))
	assert.NotEmpty(t, formatEpoch(float64(1735689600)))
	assert.NotEmpty(t, formatEpoch(int64(1735689600)))
}

func TestBrowseModelQuits(t *testing.T) {
	m := newBrowseModel(nil, NoColorStyles())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestBrowseModelDetailToggle(t *testing.T) {
	entries := []*store.Entry{{
		UID:   "abc",
		Start: documents.Document{"uid": "abc", "plan_name": "count"},
	}}
	m := newBrowseModel(entries, NoColorStyles())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	bm := updated.(browseModel)
	assert.True(t, bm.detail)
	assert.Contains(t, bm.View(), "uid: abc")
}

func TestBrowseRejectsNonTTY(t *testing.T) {
	err := Browse(nil, &bytes.Buffer{})
	assert.Error(t, err)
}
