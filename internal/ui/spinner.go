package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner renders a rotating indicator next to a label while a captured
// operation is running. When the writer is not a terminal only the final
// status line is printed.
type Spinner struct {
	w       io.Writer
	animate bool
	label   string

	mu      sync.Mutex
	done    chan struct{}
	stopped chan struct{}
}

// NewSpinner creates a spinner writing to w. animate should be true only
// when w is a terminal.
func NewSpinner(w io.Writer, label string, animate bool) *Spinner {
	return &Spinner{
		w:       w,
		animate: animate,
		label:   label,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start launches the render loop in a goroutine.
func (s *Spinner) Start() {
	if !s.animate {
		close(s.stopped)
		return
	}
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.done:
				// \r returns to column 0; \033[K clears to end of line.
				fmt.Fprint(s.w, "\r\033[K")
				return
			case <-ticker.C:
				fmt.Fprintf(s.w, "\r\033[K  %s %s", frames[i%len(frames)], s.label)
			}
		}
	}()
}

// Stop halts the spinner and prints a final status line. It is safe to
// call more than once.
func (s *Spinner) Stop(err error) {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return
	default:
		close(s.done)
	}
	s.mu.Unlock()
	<-s.stopped

	if err == nil {
		fmt.Fprintf(s.w, "  %s %s\n", okStyle.Render("✓"), s.label)
	} else {
		fmt.Fprintf(s.w, "  %s %s\n", badStyle.Render("✗"), s.label)
	}
}
