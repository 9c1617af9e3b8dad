// Package display implementation for terminal-based output.
package display

import (
	"burrow/pkg/common"
	"fmt"
	"io"
	"os"
	"strings"
)

const clearLine = "\x1b[1A\x1b[2K"

// consoleDisplay handles terminal output. It tracks at most one live task,
// redrawn in place on the last line of the output.
type consoleDisplay struct {
	out     io.Writer
	verbose bool
	task    *consoleTask
}

// NewConsole creates a Display that writes to standard error.
func NewConsole() Display {
	return &consoleDisplay{
		out: os.Stderr,
	}
}

// NewWriterDisplay creates a Display that writes to the provided io.Writer.
func NewWriterDisplay(w io.Writer) Display {
	return &consoleDisplay{
		out: w,
	}
}

// StartTask creates a tracked task and renders its initial line.
func (d *consoleDisplay) StartTask(name string) Task {
	t := &consoleTask{d: d, name: name}
	d.task = t
	fmt.Fprintf(d.out, "[%s]\n", name)
	t.live = true
	return t
}

// Log prints a message when verbose mode is on, keeping the live task line
// at the bottom.
func (d *consoleDisplay) Log(msg string) {
	if !d.verbose {
		return
	}
	d.printAboveTask(msg)
}

// Print writes a message directly to the output writer.
func (d *consoleDisplay) Print(msg string) {
	fmt.Fprint(d.out, msg)
}

// SetVerbose enables or disables verbose logging.
func (d *consoleDisplay) SetVerbose(v bool) {
	d.verbose = v
}

// Close ensures no live task line is left half-drawn.
func (d *consoleDisplay) Close() {
	if d.task != nil {
		d.task.Done()
	}
}

// printAboveTask emits a full line while preserving the live task line
// below it.
func (d *consoleDisplay) printAboveTask(msg string) {
	t := d.task
	if t == nil || !t.live {
		fmt.Fprintln(d.out, msg)
		return
	}
	fmt.Fprint(d.out, clearLine)
	fmt.Fprintln(d.out, msg)
	t.render()
}

// consoleTask is the single live task line of a consoleDisplay.
type consoleTask struct {
	d       *consoleDisplay
	name    string
	stage   string
	target  string
	percent int
	message string
	live    bool
}

// Log prints a message above the task line.
func (t *consoleTask) Log(msg string) {
	t.d.printAboveTask(msg)
}

// SetStage updates the stage name and target shown on the task line.
func (t *consoleTask) SetStage(name string, target string) {
	t.stage = name
	t.target = target
	t.redraw()
}

// Progress updates the completion percentage and status message.
func (t *consoleTask) Progress(percent int, message string) {
	t.percent = percent
	t.message = message
	t.redraw()
}

// Done replaces the live line with a completion message and releases the
// task slot.
func (t *consoleTask) Done() {
	if !t.live {
		return
	}
	fmt.Fprint(t.d.out, clearLine)
	fmt.Fprintf(t.d.out, "[%s] Done\n", t.name)
	t.live = false
	if t.d.task == t {
		t.d.task = nil
	}
}

func (t *consoleTask) redraw() {
	if !t.live {
		return
	}
	fmt.Fprint(t.d.out, clearLine)
	t.render()
}

func (t *consoleTask) render() {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s]", t.name)
	if t.stage != "" {
		fmt.Fprintf(&sb, " %s", t.stage)
	}
	if t.target != "" {
		fmt.Fprintf(&sb, " %s", t.target)
	}
	fmt.Fprintf(&sb, " %d%%", t.percent)
	if t.message != "" {
		fmt.Fprintf(&sb, " %s", t.message)
	}
	fmt.Fprintln(t.d.out, sb.String())
}

// RenderOutput displays structured data from an Output struct to the console.
func (d *consoleDisplay) RenderOutput(out *common.Output) {
	if out == nil {
		return
	}

	if out.Message != "" {
		d.Print(fmt.Sprintln(out.Message))
	}

	if len(out.KV) > 0 {
		for _, kv := range out.KV {
			d.Print(fmt.Sprintf("%-12s %s\n", kv.Key+":", kv.Value))
		}
	}

	if out.Table != nil {
		d.renderTable(out.Table)
	}
}

func (d *consoleDisplay) renderTable(t *common.Table) {
	if len(t.Header) == 0 {
		return
	}

	// Simple column width calculation
	widths := make([]int, len(t.Header))
	for i, h := range t.Header {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Print header
	var sb strings.Builder
	for i, h := range t.Header {
		fmt.Fprintf(&sb, "%-*s  ", widths[i], h)
	}
	d.Print(sb.String() + "\n")

	// Print separator
	totalWidth := 0
	for _, w := range widths {
		totalWidth += w + 2
	}
	d.Print(strings.Repeat("-", totalWidth) + "\n")

	// Print rows
	for _, row := range t.Rows {
		sb.Reset()
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(&sb, "%-*s  ", widths[i], cell)
			}
		}
		d.Print(sb.String() + "\n")
	}
}
