package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runcat-io/runcat/internal/store"
)

// Browse runs the interactive catalog browser over the given entries.
// It refuses non-TTY outputs; callers should fall back to plain listing.
func Browse(entries []*store.Entry, out io.Writer) error {
	if !IsTTY(out) {
		return fmt.Errorf("output is not a TTY")
	}

	m := newBrowseModel(entries, GetStyles(DetectNoColor()))
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if f, ok := out.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}

type browseModel struct {
	table   table.Model
	entries []*store.Entry
	styles  Styles
	detail  bool
}

func newBrowseModel(entries []*store.Entry, styles Styles) browseModel {
	columns := []table.Column{
		{Title: "UID", Width: 10},
		{Title: "Plan", Width: 20},
		{Title: "Started", Width: 20},
		{Title: "Status", Width: 10},
	}
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		rows[i] = rowFor(e)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(20),
	)
	return browseModel{table: t, entries: entries, styles: styles}
}

// rowFor flattens a run entry into table cells. Start documents carry their
// creation time as epoch seconds in the "time" field.
func rowFor(e *store.Entry) table.Row {
	uid := e.UID
	if len(uid) > 8 {
		uid = uid[:8]
	}
	plan, _ := e.Start["plan_name"].(string)
	return table.Row{uid, plan, formatEpoch(e.Start["time"]), runStatus(e)}
}

func runStatus(e *store.Entry) string {
	if e.Stop == nil {
		return "running"
	}
	if status, ok := e.Stop["exit_status"].(string); ok {
		return status
	}
	return "complete"
}

func formatEpoch(v any) string {
	var sec float64
	switch t := v.(type) {
	case float64:
		sec = t
	case int64:
		sec = float64(t)
	default:
		return ""
	}
	return time.Unix(int64(sec), 0).Format("2006-01-02 15:04:05")
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			m.detail = !m.detail
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 6)
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m browseModel) View() string {
	s := m.styles.Header.Render(fmt.Sprintf("runcat — %d runs", len(m.entries))) + "\n"
	s += m.table.View() + "\n"
	if m.detail {
		s += m.detailView() + "\n"
	}
	s += m.styles.Help.Render("↑/↓ move · enter details · q quit")
	return s
}

func (m browseModel) detailView() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.entries) {
		return ""
	}
	e := m.entries[i]
	status := runStatus(e)
	line := fmt.Sprintf("uid: %s\nfile: %s\nstatus: %s", e.UID, e.Path(), status)
	switch status {
	case "success":
		line = fmt.Sprintf("uid: %s\nfile: %s\nstatus: %s", e.UID, e.Path(), m.styles.Success.Render(status))
	case "failed", "abort":
		line = fmt.Sprintf("uid: %s\nfile: %s\nstatus: %s", e.UID, e.Path(), m.styles.Failure.Render(status))
	}
	return m.styles.Panel.Render(line)
}
