package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner animates a one-line progress indicator outside a TUI, e.g. while
// a command waits for a receipt. Frames come from the bubbles spinner set
// used by the full-screen models.
type Spinner struct {
	out   io.Writer
	style spinner.Spinner
	msg   string
	stop  chan struct{}
	done  chan struct{}
}

// NewSpinner creates a spinner writing to stderr.
func NewSpinner(msg string) *Spinner {
	return NewSpinnerTo(os.Stderr, msg)
}

// NewSpinnerTo creates a spinner writing to w.
func NewSpinnerTo(w io.Writer, msg string) *Spinner {
	return &Spinner{
		out:   w,
		style: spinner.MiniDot,
		msg:   msg,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start begins the animation in a goroutine.
func (s *Spinner) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.style.FPS)
		defer ticker.Stop()
		for i := 0; ; i++ {
			frame := StyleChain.Render(s.style.Frames[i%len(s.style.Frames)])
			fmt.Fprintf(s.out, "\r%s  %s", frame, s.msg)
			select {
			case <-s.stop:
				fmt.Fprintf(s.out, "\r%-70s\r", "")
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop halts the spinner and waits for it to finish.
func (s *Spinner) Stop() {
	close(s.stop)
	<-s.done
}

// StopWithMsg halts the spinner and prints a final line.
func (s *Spinner) StopWithMsg(msg string) {
	s.Stop()
	fmt.Fprintln(s.out, msg)
}
