package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner animates a status line on stderr while a blocking step such as a
// release check or dataset download runs. It erases itself when stopped or
// when its parent context ends.
type Spinner struct {
	w      io.Writer
	frames spinner.Spinner
	parent context.Context

	mu      sync.Mutex
	msg     string
	started bool

	quit   chan struct{}
	exited chan struct{}
	once   sync.Once
}

func newSpinnerWithContext(ctx context.Context, msg string) *Spinner {
	return &Spinner{
		w:      os.Stderr,
		frames: spinner.MiniDot,
		parent: ctx,
		msg:    msg,
		quit:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

// Start begins drawing. Calling it more than once has no effect.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	go s.run()
}

func (s *Spinner) run() {
	defer close(s.exited)
	tick := time.NewTicker(s.frames.FPS)
	defer tick.Stop()

	for n := 0; ; n++ {
		select {
		case <-s.quit:
			s.erase()
			return
		case <-s.parent.Done():
			s.erase()
			return
		case <-tick.C:
			s.draw(s.frames.Frames[n%len(s.frames.Frames)])
		}
	}
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.msg))
}

func (s *Spinner) erase() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.msg)+4))
}

// SetMessage replaces the status text, padding it to cover the old one.
func (s *Spinner) SetMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pad := len(s.msg) - len(msg); pad > 0 {
		msg += strings.Repeat(" ", pad)
	}
	s.msg = msg
}

// Stop erases the line and waits for the animation to exit. It is safe to
// call repeatedly, and before Start.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.quit)
		s.mu.Lock()
		started := s.started
		s.started = true
		s.mu.Unlock()
		if started {
			<-s.exited
		}
	})
}

func (s *Spinner) StopWithSuccess(msg string) {
	s.Stop()
	printSuccess("%s", msg)
}

func (s *Spinner) StopWithError(msg string) {
	s.Stop()
	printError("%s", msg)
}

// Cancelled reports whether the parent context ended.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
