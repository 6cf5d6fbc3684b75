package shell

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mithrel/inkwell/internal/clipboard"
	"github.com/mithrel/inkwell/internal/generate"
	"github.com/mithrel/inkwell/pkg/markup"
)

// FallbackMessage is shown when a generation error carries no message.
const FallbackMessage = "Failed to generate content. Please try again."

// DefaultCopiedDelay is how long Copied reports true after a copy.
const DefaultCopiedDelay = 2 * time.Second

// Recorder persists a successful generation and returns its history ID.
type Recorder interface {
	Record(ctx context.Context, prompt, raw string) (string, error)
}

type Options struct {
	Generator   generate.Generator
	Clipboard   clipboard.Writer
	Recorder    Recorder
	CopiedDelay time.Duration
	Log         *logrus.Logger
	// OnChange is called after every state or indicator change, outside
	// the session lock.
	OnChange func()
}

// Session is safe for concurrent use.
type Session struct {
	gen      generate.Generator
	clip     clipboard.Writer
	rec      Recorder
	delay    time.Duration
	log      *logrus.Logger
	onChange func()

	mu      sync.Mutex
	state   State
	copied  bool
	copySeq uint64
}

func New(opts Options) *Session {
	delay := opts.CopiedDelay
	if delay <= 0 {
		delay = DefaultCopiedDelay
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{
		gen:      opts.Generator,
		clip:     opts.Clipboard,
		rec:      opts.Recorder,
		delay:    delay,
		log:      log,
		onChange: opts.OnChange,
		state:    Idle{},
	}
}

// State returns the current display state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Copied reports whether the transient copied indicator is showing.
func (s *Session) Copied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copied
}

// Busy reports whether a generation request is in flight.
func (s *Session) Busy() bool {
	_, loading := s.State().(Loading)
	return loading
}

// Submit starts generating from prompt. It returns false without doing
// anything when prompt is blank or a request is already in flight.
// Otherwise the session moves to Loading and the returned channel yields
// the final Failed or Ready state once the generator returns.
//
// The request is not bound to ctx cancellation and has no deadline: if
// the generator never returns, the session stays in Loading.
func (s *Session) Submit(ctx context.Context, prompt string) (<-chan State, bool) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, false
	}
	s.mu.Lock()
	if _, loading := s.state.(Loading); loading {
		s.mu.Unlock()
		return nil, false
	}
	s.state = Loading{Prompt: prompt}
	s.mu.Unlock()
	s.notify()

	done := make(chan State, 1)
	go func() {
		final := s.run(context.WithoutCancel(ctx), prompt)
		s.mu.Lock()
		s.state = final
		s.mu.Unlock()
		s.notify()
		done <- final
		close(done)
	}()
	return done, true
}

func (s *Session) run(ctx context.Context, prompt string) State {
	log := s.log.WithField("prompt", prompt)
	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		msg := strings.TrimSpace(err.Error())
		if msg == "" {
			msg = FallbackMessage
		}
		log.WithError(err).Warn("generation failed")
		return Failed{Prompt: prompt, Message: msg}
	}

	ready := Ready{Prompt: prompt, Raw: raw, Nodes: markup.Render(raw)}
	if s.rec != nil {
		id, err := s.rec.Record(ctx, prompt, raw)
		if err != nil {
			log.WithError(err).Warn("could not record post in history")
		} else {
			ready.PostID = id
		}
	}
	log.WithFields(logrus.Fields{"nodes": len(ready.Nodes), "post_id": ready.PostID}).Debug("result ready")
	return ready
}

// Copy writes the current result to the clipboard in the background. It
// returns false when there is no result to copy. Failures are logged and
// never change the display state. Each successful copy shows the copied
// indicator for the configured delay, restarting it if already showing.
func (s *Session) Copy(ctx context.Context) bool {
	ready, ok := s.State().(Ready)
	if !ok || s.clip == nil {
		return false
	}
	go func() {
		if err := s.clip.WriteText(ready.Raw); err != nil {
			s.log.WithContext(ctx).WithError(err).Warn("copy to clipboard failed")
			return
		}
		s.mu.Lock()
		s.copySeq++
		seq := s.copySeq
		s.copied = true
		s.mu.Unlock()
		s.notify()

		time.AfterFunc(s.delay, func() {
			s.mu.Lock()
			if s.copySeq != seq {
				s.mu.Unlock()
				return
			}
			s.copied = false
			s.mu.Unlock()
			s.notify()
		})
	}()
	return true
}

func (s *Session) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
