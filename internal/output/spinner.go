package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/kedare/netscope/internal/gcp"
	"golang.org/x/term"
)

// Spinner wraps a CLI spinner that gracefully degrades when stderr isn't a TTY.
type Spinner struct {
	mu      sync.Mutex
	active  bool
	enabled bool
	sp      *spinner.Spinner
	message string
	writer  io.Writer
	stopped bool
	// lastStep throttles plain progress lines when no TTY is attached.
	lastStep int
}

// NewSpinner creates a new spinner with the provided message. Call Start before using.
func NewSpinner(message string) *Spinner {
	enabled := term.IsTerminal(int(os.Stderr.Fd()))

	return newSpinner(message, os.Stderr, enabled)
}

func newSpinner(message string, writer io.Writer, enabled bool) *Spinner {
	s := &Spinner{
		enabled: enabled,
		message: message,
		writer:  writer,
	}

	if enabled {
		sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(writer))
		sp.Suffix = " " + message
		sp.HideCursor = true
		_ = sp.Color("cyan")
		s.sp = sp
	}

	return s
}

// Start begins rendering the spinner.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.active {
		return
	}

	if s.enabled && s.sp != nil {
		s.sp.Start()
	} else {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
	}
	s.active = true
}

// Update updates the spinner message.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.update(message, true)
}

func (s *Spinner) update(message string, echo bool) {
	s.message = message
	if !s.active || s.stopped {
		return
	}

	if s.enabled && s.sp != nil {
		s.sp.Lock()
		s.sp.Suffix = " " + message
		s.sp.Unlock()
	} else if echo {
		fmt.Fprintf(s.writer, "%s...\n", message)
	}
}

// Progress returns an executor progress callback showing done/total next to
// label. Without a TTY a line is printed every tenth of the run.
func (s *Spinner) Progress(label string) gcp.ProgressFunc {
	return func(done, total int, _ gcp.Result) {
		s.mu.Lock()
		defer s.mu.Unlock()

		step := 0
		if total > 0 {
			step = done * 10 / total
		}

		echo := step != s.lastStep || done == total
		s.lastStep = step

		s.update(fmt.Sprintf("%s (%d/%d)", label, done, total), echo)
	}
}

// Stop stops the spinner without printing an additional message.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true

	if s.enabled && s.sp != nil {
		s.sp.Stop()
		fmt.Fprint(s.writer, "\r")
	}
}

// Success stops the spinner and prints a success message.
func (s *Spinner) Success(message string) {
	s.stopWithMessage("✓", message)
}

// Fail stops the spinner and prints a failure message.
func (s *Spinner) Fail(message string) {
	s.stopWithMessage("✗", message)
}

func (s *Spinner) stopWithMessage(prefix, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		if message != "" {
			fmt.Fprintf(s.writer, "%s %s\n", prefix, message)
		}
		return
	}
	s.stopped = true

	if s.enabled && s.sp != nil {
		s.sp.Stop()
		fmt.Fprintf(s.writer, "\r%s %s\n", prefix, message)
		return
	}

	if message != "" {
		fmt.Fprintf(s.writer, "%s %s\n", prefix, message)
	}
}
