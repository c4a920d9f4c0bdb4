package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// isTerminal reports whether w writes to a terminal. Only writers
// with a file descriptor (e.g. *os.File) can; plain io.Writer values
// such as *bytes.Buffer never do.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

// ProgressBar tracks completion over a fixed number of items and draws
// a bar with a percentage and description, for example:
//
//	[=========>                              ]  25% Deleting paths
//
// On a TTY the line is redrawn in place. Anywhere else the bar stays
// silent until it completes and then prints a single line, so piped
// output is not flooded with redraws.
type ProgressBar struct {
	total       int
	current     int
	description string
	width       int
	printedDone bool
	mu          sync.Mutex
	writer      io.Writer
}

// NewProgress creates a progress bar over total items.
func NewProgress(total int, description string) *ProgressBar {
	return &ProgressBar{
		total:       total,
		description: description,
		width:       40,
		writer:      os.Stdout,
	}
}

// SetWriter redirects output, primarily for tests.
func (p *ProgressBar) SetWriter(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = w
}

// Increment advances the progress by one item, capped at the total.
func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current < p.total {
		p.current++
	}
	p.render()
}

// Finish fills the bar to completion. On a TTY the cursor moves off
// the redrawn line; elsewhere the completion line is printed unless an
// earlier render already did.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render()
	if isTerminal(p.writer) {
		fmt.Fprintln(p.writer)
	}
}

// render must be called with the lock held.
func (p *ProgressBar) render() {
	percentage := 0
	if p.total > 0 {
		percentage = (p.current * 100) / p.total
	}

	if isTerminal(p.writer) {
		fmt.Fprintf(p.writer, "\r%s %3d%% %s", p.bar(), percentage, p.description)
	} else if p.current == p.total && !p.printedDone {
		p.printedDone = true
		fmt.Fprintf(p.writer, "%s %3d%% %s\n", p.bar(), percentage, p.description)
	}
}

// bar renders the bracketed portion, a '>' head trailing the filled
// run. Must be called with the lock held.
func (p *ProgressBar) bar() string {
	filled := 0
	if p.total > 0 {
		filled = (p.current * p.width) / p.total
	}

	switch {
	case filled <= 0:
		return "[" + strings.Repeat(" ", p.width) + "]"
	case filled >= p.width:
		return "[" + strings.Repeat("=", p.width-1) + ">]"
	default:
		return "[" + strings.Repeat("=", filled-1) + ">" + strings.Repeat(" ", p.width-filled) + "]"
	}
}

// Spinner animates a rotating glyph next to a message while a
// long-running step is in flight, for example:
//
//	|  Stopping daemon
//
// On a non-TTY writer Start prints the message once instead of
// animating, so log files stay readable.
type Spinner struct {
	message string
	running bool
	frames  []string
	mu      sync.Mutex
	writer  io.Writer
	ticker  *time.Ticker
	done    chan struct{}
}

// spinnerInterval is how often the spinner advances a frame.
const spinnerInterval = 100 * time.Millisecond

// NewSpinner creates a spinner with a message. Call Start to begin.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		frames:  []string{"|", "/", "-", "\\"},
		writer:  os.Stdout,
		done:    make(chan struct{}),
	}
}

// SetWriter redirects output, primarily for tests.
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// Start begins the spinner animation. Calling Start on a running
// spinner has no effect.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	if !isTerminal(s.writer) {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
		return
	}

	s.ticker = time.NewTicker(spinnerInterval)

	go func() {
		for i := 0; ; i = (i + 1) % len(s.frames) {
			select {
			case <-s.done:
				return
			case <-s.ticker.C:
				s.mu.Lock()
				if !s.running {
					s.mu.Unlock()
					return
				}
				fmt.Fprintf(s.writer, "\r%s  %s", s.frames[i], s.message)
				s.mu.Unlock()
			}
		}
	}()
}

// Stop halts the animation and clears the spinner line. Safe to call
// before Start or more than once.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)

	// A \r does not overwrite anything on a non-TTY, so only clear there.
	if isTerminal(s.writer) {
		blank := strings.Repeat(" ", len(s.message)+4)
		fmt.Fprintf(s.writer, "\r%s\r", blank)
	}
}

// StopWithMessage stops the spinner and prints a final message in its
// place.
func (s *Spinner) StopWithMessage(message string) {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.writer, message)
}
