// Package progress renders per-mod resolution results while the pool runs.
//
// Every update is sent as an event to a single reporter goroutine, so
// concurrent tasks never contend for the output writer.
package progress

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	minPadding = 20
	maxPadding = 50
)

// EventKind is the kind of a progress event
type EventKind int

const (
	// Dispatched increments the total
	Dispatched EventKind = iota
	// Succeeded completes one task and prints a success line
	Succeeded
	// Failed completes one task and prints a failure line
	Failed
)

// Event is a single update sent to the reporter loop
type Event struct {
	Kind     EventKind
	Name     string
	Filename string
	Err      error
}

// Summary is the final state of the counters
type Summary struct {
	Total     int
	Completed int
	Failed    int
}

// Styles controls how result lines are rendered
type Styles struct {
	Success  lipgloss.Style
	Failure  lipgloss.Style
	Filename lipgloss.Style
}

// DefaultStyles renders success in green, failures in red and filenames dimmed
func DefaultStyles() Styles {
	return Styles{
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
		Failure:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),
		Filename: lipgloss.NewStyle().Faint(true),
	}
}

// PlainStyles renders without any escape sequences
func PlainStyles() Styles {
	return Styles{
		Success:  lipgloss.NewStyle(),
		Failure:  lipgloss.NewStyle(),
		Filename: lipgloss.NewStyle(),
	}
}

// Option configures a Reporter
type Option func(*Reporter)

// WithStyles sets the line styles
func WithStyles(s Styles) Option {
	return func(r *Reporter) {
		r.styles = s
	}
}

// WithPadding sets the column width of mod names
func WithPadding(pad int) Option {
	return func(r *Reporter) {
		r.pad = pad
	}
}

// PaddingFor returns the name column width for the given names, clamped to 20..50
func PaddingFor(names []string) int {
	pad := minPadding
	for _, n := range names {
		if len(n) > pad {
			pad = len(n)
		}
	}
	if pad > maxPadding {
		pad = maxPadding
	}
	return pad
}

// Reporter owns the progress counters. It is safe to call its methods from any goroutine
// until Close is called.
type Reporter struct {
	out    io.Writer
	styles Styles
	pad    int

	events chan Event
	done   chan struct{}

	summary Summary
}

// NewReporter starts a reporter loop writing to out
func NewReporter(out io.Writer, opts ...Option) *Reporter {
	r := &Reporter{
		out:    out,
		styles: PlainStyles(),
		pad:    minPadding,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	go r.loop()
	return r
}

// Dispatched records that a task was started
func (r *Reporter) Dispatched(name string) {
	r.events <- Event{Kind: Dispatched, Name: name}
}

// Succeeded records a successful resolution
func (r *Reporter) Succeeded(name, filename string) {
	r.events <- Event{Kind: Succeeded, Name: name, Filename: filename}
}

// Failed records a failed resolution
func (r *Reporter) Failed(name string, err error) {
	r.events <- Event{Kind: Failed, Name: name, Err: err}
}

// Send forwards a raw event
func (r *Reporter) Send(e Event) {
	r.events <- e
}

// Close stops the loop after all pending events are rendered and returns the final counters
func (r *Reporter) Close() Summary {
	close(r.events)
	<-r.done
	return r.summary
}

func (r *Reporter) loop() {
	defer close(r.done)

	for e := range r.events {
		switch e.Kind {
		case Dispatched:
			r.summary.Total++
		case Succeeded:
			r.summary.Completed++
			r.write(RenderSuccess(r.styles, r.pad, e.Name, e.Filename))
		case Failed:
			r.summary.Completed++
			r.summary.Failed++
			r.write(RenderFailure(r.styles, r.pad, e.Name, e.Err))
		}
	}
}

// write emits one complete line with a single Write call
func (r *Reporter) write(line string) {
	_, _ = io.WriteString(r.out, line+"\n")
}

// RenderSuccess formats "✓ <name padded>  <filename>"
func RenderSuccess(s Styles, pad int, name, filename string) string {
	return fmt.Sprintf("%s %s  %s", s.Success.Render("✓"), padRight(name, pad), s.Filename.Render(filename))
}

// RenderFailure formats "× <name padded>  <error>"
func RenderFailure(s Styles, pad int, name string, err error) string {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return s.Failure.Render(fmt.Sprintf("× %s  %s", padRight(name, pad), msg))
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
