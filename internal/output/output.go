// Package output provides consistent CLI output formatting.
package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/runcat-io/runcat/internal/store"
)

// Writer provides formatted output for the CLI.
type Writer struct {
	out io.Writer
}

// New creates a new output Writer.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message.
func (w *Writer) Success(msg string) {
	w.Status("✅", msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", msg)
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", msg)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// Entries prints a run listing as an aligned table.
func (w *Writer) Entries(entries []*store.Entry) {
	tw := tabwriter.NewWriter(w.out, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "UID\tPLAN\tSTATUS\tFILE")
	for _, e := range entries {
		plan, _ := e.Start["plan_name"].(string)
		status := "running"
		if e.Stop != nil {
			status = "complete"
			if s, ok := e.Stop["exit_status"].(string); ok {
				status = s
			}
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.UID, plan, status, e.Path())
	}
	_ = tw.Flush()
}
