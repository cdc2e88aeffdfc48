// Package linear provides a synchronous, line-buffered renderer for build progress.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/ecow/internal/core/domain"
	"go.trai.ch/ecow/internal/core/ports"
	"go.trai.ch/ecow/internal/ui/output"
	"go.trai.ch/ecow/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// statusWidth is the width of the longest status name.
const statusWidth = len("up-to-date")

// Renderer implements ports.Renderer with linear, chronological output.
// Action output goes to stdout prefixed with the unit path; progress and the
// summary go to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu      sync.Mutex
	units   map[string]*unitState // spanID -> unit state
	buffers map[string]*bytes.Buffer
}

type unitState struct {
	path      string
	startTime time.Time
}

// NewRenderer creates a new Renderer. Colors are used only when stderr is a terminal.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout:  stdout,
		stderr:  stderr,
		output:  output.New(stderr),
		units:   make(map[string]*unitState),
		buffers: make(map[string]*bytes.Buffer),
	}
}

// Start is a no-op for the linear renderer (synchronous).
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes all remaining buffers.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for spanID := range r.buffers {
		r.flushBufferLocked(spanID)
	}

	return nil
}

// OnPlanEmit prints the number of planned units.
func (r *Renderer) OnPlanEmit(units []string, target string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr, "Planning %d unit(s) for %s\n", len(units), target)
}

// OnUnitStart registers the unit so its output can be prefixed.
func (r *Renderer) OnUnitStart(spanID, _ /* parentID */, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.units[spanID] = &unitState{
		path:      name,
		startTime: startTime,
	}
	r.buffers[spanID] = new(bytes.Buffer)
}

// OnUnitLog buffers action output and prints complete lines with the unit prefix.
func (r *Renderer) OnUnitLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	unit, ok := r.units[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	buf.Write(data)

	for {
		idx := bytes.IndexByte(buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := buf.Next(idx + 1)
		r.printLineLocked(unit.path, line)
	}
}

// OnUnitComplete flushes remaining output and reports units whose action ran or failed.
func (r *Renderer) OnUnitComplete(spanID string, endTime time.Time, status string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	unit, ok := r.units[spanID]
	if !ok {
		return
	}

	r.flushBufferLocked(spanID)

	duration := formatDuration(endTime.Sub(unit.startTime))
	prefix := fmt.Sprintf("[%s]", unit.path)

	switch {
	case err != nil:
		symbol := r.colorize(style.Cross, style.Red)
		_, _ = fmt.Fprintf(r.stderr, "%s %s %s after %s: %v\n", prefix, symbol, status, duration, err)
	case status == domain.StatusBuilt.String():
		symbol := r.colorize(style.Check, style.Green)
		_, _ = fmt.Fprintf(r.stderr, "%s %s built in %s\n", prefix, symbol, duration)
	}

	delete(r.units, spanID)
	delete(r.buffers, spanID)
}

// OnSummary prints the final status of every unit followed by the totals.
func (r *Renderer) OnSummary(report *domain.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sb strings.Builder
	for _, u := range report.Units {
		icon, color := style.Status(u.Status)
		label := fmt.Sprintf("%s %-*s", icon, statusWidth, u.Status.String())
		sb.WriteString(r.colorize(label, color))
		sb.WriteByte(' ')
		sb.WriteString(u.Path)
		if u.Ran {
			sb.WriteString(" (" + formatDuration(u.Duration) + ")")
		}
		if u.Err != nil && u.Status == domain.StatusFailed {
			sb.WriteString(": " + u.Err.Error())
		}
		sb.WriteByte('\n')
	}

	fmt.Fprintf(&sb, "%d built, %d up to date, %d failed, %d cancelled\n",
		report.Count(domain.StatusBuilt),
		report.Count(domain.StatusUpToDate),
		report.Count(domain.StatusFailed),
		report.Count(domain.StatusCancelled),
	)

	_, _ = io.WriteString(r.stderr, sb.String())
}

func (r *Renderer) colorize(s string, color lipgloss.Color) string {
	return r.output.String(s).Foreground(termenv.RGBColor(string(color))).String()
}

// flushBufferLocked prints any partial line left for a unit.
// Must be called with r.mu held.
func (r *Renderer) flushBufferLocked(spanID string) {
	unit, ok := r.units[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	if buf.Len() > 0 {
		r.printLineLocked(unit.path, buf.Bytes())
		buf.Reset()
	}
}

// printLineLocked prints a line with the unit path prefix.
// Must be called with r.mu held.
func (r *Renderer) printLineLocked(path string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))

	if len(line) == 0 {
		return
	}

	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", path, line)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}
