package shell

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/inkwell/internal/clipboard"
	"github.com/mithrel/inkwell/internal/db"
	"github.com/mithrel/inkwell/internal/generate"
	"github.com/mithrel/inkwell/pkg/markup"
)

// stubGenerator returns out/err once release is closed (or immediately
// when release is nil).
type stubGenerator struct {
	out     string
	err     error
	release chan struct{}
	calls   atomic.Int32
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls.Add(1)
	if g.release != nil {
		<-g.release
	}
	return g.out, g.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func wait(t *testing.T, ch <-chan State) State {
	t.Helper()
	select {
	case st := <-ch:
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("generation did not finish")
		return nil
	}
}

func TestSubmitSuccess(t *testing.T) {
	gen := &stubGenerator{out: "## Otters\n* swim"}
	s := New(Options{Generator: gen, Log: quietLogger()})
	assert.Equal(t, Idle{}, s.State())

	ch, ok := s.Submit(context.Background(), "  otters ")
	require.True(t, ok)
	final := wait(t, ch)

	ready, isReady := final.(Ready)
	require.True(t, isReady)
	assert.Equal(t, "otters", ready.Prompt)
	assert.Equal(t, "## Otters\n* swim", ready.Raw)
	assert.Equal(t, markup.Render("## Otters\n* swim"), ready.Nodes)
	assert.Equal(t, final, s.State())
}

func TestSubmitSuppressed(t *testing.T) {
	gen := &stubGenerator{out: "x", release: make(chan struct{})}
	s := New(Options{Generator: gen, Log: quietLogger()})

	_, ok := s.Submit(context.Background(), "   ")
	assert.False(t, ok, "blank prompt")
	assert.Equal(t, Idle{}, s.State())

	ch, ok := s.Submit(context.Background(), "first")
	require.True(t, ok)
	assert.Equal(t, Loading{Prompt: "first"}, s.State())
	assert.True(t, s.Busy())

	_, ok = s.Submit(context.Background(), "second")
	assert.False(t, ok, "request in flight")

	close(gen.release)
	wait(t, ch)
	assert.Equal(t, int32(1), gen.calls.Load())
	assert.False(t, s.Busy())
}

func TestSubmitIgnoresCallerCancellation(t *testing.T) {
	gen := &stubGenerator{out: "done", release: make(chan struct{})}
	s := New(Options{Generator: gen, Log: quietLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	ch, ok := s.Submit(ctx, "p")
	require.True(t, ok)
	cancel()
	close(gen.release)

	_, isReady := wait(t, ch).(Ready)
	assert.True(t, isReady)
}

func TestSubmitFailure(t *testing.T) {
	t.Run("raw message passes through", func(t *testing.T) {
		gen := &stubGenerator{err: &generate.Error{Provider: "gemini", Status: 400, Message: "API key not valid."}}
		s := New(Options{Generator: gen, Log: quietLogger()})
		ch, _ := s.Submit(context.Background(), "p")
		assert.Equal(t, Failed{Prompt: "p", Message: "API key not valid."}, wait(t, ch))
	})

	t.Run("empty message uses fallback", func(t *testing.T) {
		gen := &stubGenerator{err: errors.New("")}
		s := New(Options{Generator: gen, Log: quietLogger()})
		ch, _ := s.Submit(context.Background(), "p")
		assert.Equal(t, Failed{Prompt: "p", Message: FallbackMessage}, wait(t, ch))
	})

	t.Run("a new submit clears the error", func(t *testing.T) {
		gen := &stubGenerator{err: errors.New("boom")}
		s := New(Options{Generator: gen, Log: quietLogger()})
		ch, _ := s.Submit(context.Background(), "p")
		wait(t, ch)

		gen.err = nil
		gen.out = "ok"
		ch, ok := s.Submit(context.Background(), "p")
		require.True(t, ok)
		_, isReady := wait(t, ch).(Ready)
		assert.True(t, isReady)
	})
}

func TestSubmitRecordsHistory(t *testing.T) {
	posts := db.NewMemStore()
	gen := &stubGenerator{out: "## Saved"}
	s := New(Options{
		Generator: gen,
		Recorder:  &HistoryRecorder{Posts: posts, Provider: "file", Model: "-"},
		Log:       quietLogger(),
	})

	ch, _ := s.Submit(context.Background(), "save me")
	ready := wait(t, ch).(Ready)
	require.NotEmpty(t, ready.PostID)

	p, err := posts.GetPost(context.Background(), ready.PostID)
	require.NoError(t, err)
	assert.Equal(t, "save me", p.Prompt)
	assert.Equal(t, "## Saved", p.Body)
}

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, string, string) (string, error) {
	return "", errors.New("disk full")
}

func TestRecorderFailureIsNotSurfaced(t *testing.T) {
	s := New(Options{Generator: &stubGenerator{out: "x"}, Recorder: failingRecorder{}, Log: quietLogger()})
	ch, _ := s.Submit(context.Background(), "p")
	ready, ok := wait(t, ch).(Ready)
	require.True(t, ok)
	assert.Empty(t, ready.PostID)
}

func TestOnChange(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	gen := &stubGenerator{out: "x", release: make(chan struct{})}
	var s *Session
	s = New(Options{
		Generator: gen,
		Log:       quietLogger(),
		OnChange: func() {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, s.State().Name())
		},
	})
	ch, _ := s.Submit(context.Background(), "p")
	close(gen.release)
	wait(t, ch)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"loading", "result"}, seen)
}

func TestCopy(t *testing.T) {
	var copied atomic.Value
	clip := clipboard.Func(func(text string) error {
		copied.Store(text)
		return nil
	})
	s := New(Options{
		Generator:   &stubGenerator{out: "## Copy me"},
		Clipboard:   clip,
		CopiedDelay: 50 * time.Millisecond,
		Log:         quietLogger(),
	})

	assert.False(t, s.Copy(context.Background()), "nothing to copy yet")

	ch, _ := s.Submit(context.Background(), "p")
	wait(t, ch)

	require.True(t, s.Copy(context.Background()))
	require.Eventually(t, s.Copied, time.Second, 5*time.Millisecond)
	assert.Equal(t, "## Copy me", copied.Load())

	require.Eventually(t, func() bool { return !s.Copied() }, time.Second, 5*time.Millisecond)
	_, isReady := s.State().(Ready)
	assert.True(t, isReady, "copying never changes the display state")
}

func TestCopyRestartsDelay(t *testing.T) {
	s := New(Options{
		Generator:   &stubGenerator{out: "x"},
		Clipboard:   clipboard.Func(func(string) error { return nil }),
		CopiedDelay: 150 * time.Millisecond,
		Log:         quietLogger(),
	})
	ch, _ := s.Submit(context.Background(), "p")
	wait(t, ch)

	s.Copy(context.Background())
	require.Eventually(t, s.Copied, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	s.Copy(context.Background())
	time.Sleep(100 * time.Millisecond)
	assert.True(t, s.Copied(), "second copy restarted the delay")

	require.Eventually(t, func() bool { return !s.Copied() }, time.Second, 5*time.Millisecond)
}

func TestCopyFailureIsLogged(t *testing.T) {
	var calls atomic.Int32
	s := New(Options{
		Generator: &stubGenerator{out: "x"},
		Clipboard: clipboard.Func(func(string) error {
			calls.Add(1)
			return errors.New("no display")
		}),
		Log: quietLogger(),
	})
	ch, _ := s.Submit(context.Background(), "p")
	wait(t, ch)

	require.True(t, s.Copy(context.Background()))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, s.Copied())
	_, isReady := s.State().(Ready)
	assert.True(t, isReady)
}
