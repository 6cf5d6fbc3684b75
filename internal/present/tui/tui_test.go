package tui

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/inkwell/internal/clipboard"
	"github.com/mithrel/inkwell/internal/shell"
	"github.com/mithrel/inkwell/pkg/api"
)

type genFunc func(ctx context.Context, prompt string) (string, error)

func (f genFunc) Generate(ctx context.Context, prompt string) (string, error) { return f(ctx, prompt) }

func newTestSession(gen genFunc, clip clipboard.Writer) *shell.Session {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return shell.New(shell.Options{Generator: gen, Clipboard: clip, Log: l, CopiedDelay: time.Hour})
}

func typeText(m ShellModel, s string) ShellModel {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(ShellModel)
}

// submit presses enter and runs the returned batch until the final state
// message arrives.
func submit(t *testing.T, m ShellModel) ShellModel {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(ShellModel)
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if msg, ok := c().(finalStateMsg); ok {
			next, _ = m.Update(msg)
			return next.(ShellModel)
		}
	}
	t.Fatal("no final state message")
	return m
}

func TestShellSubmitRendersResult(t *testing.T) {
	sess := newTestSession(func(ctx context.Context, prompt string) (string, error) {
		return "## " + prompt + "\n* one", nil
	}, nil)
	m := NewShellModel(context.Background(), sess)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = typeText(next.(ShellModel), "Otters")

	m = submit(t, m)
	st, ok := sess.State().(shell.Ready)
	require.True(t, ok)
	assert.Equal(t, "Otters", st.Prompt)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "Otters")
	assert.Contains(t, m.View(), "one")
}

func TestShellBlankSubmitIsIgnored(t *testing.T) {
	sess := newTestSession(func(context.Context, string) (string, error) {
		t.Fatal("generator must not be called")
		return "", nil
	}, nil)
	m := NewShellModel(context.Background(), sess)
	m = typeText(m, "   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, shell.Idle{}, sess.State())
}

func TestShellFailureShowsMessage(t *testing.T) {
	sess := newTestSession(func(context.Context, string) (string, error) {
		return "", errors.New("quota exceeded")
	}, nil)
	m := NewShellModel(context.Background(), sess)
	m = submit(t, typeText(m, "x"))
	assert.Contains(t, m.View(), "quota exceeded")
	assert.Equal(t, "x", m.input.Value(), "prompt is kept for a retry")
}

func TestShellCopyWithoutResult(t *testing.T) {
	sess := newTestSession(func(context.Context, string) (string, error) { return "", nil }, nil)
	m := NewShellModel(context.Background(), sess)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Contains(t, next.(ShellModel).View(), "Nothing to copy yet")
}

func TestShellCopyShowsToast(t *testing.T) {
	copied := make(chan string, 1)
	clip := clipboard.Func(func(s string) error { copied <- s; return nil })
	sess := newTestSession(func(context.Context, string) (string, error) { return "**raw**", nil }, clip)
	m := NewShellModel(context.Background(), sess)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = submit(t, typeText(next.(ShellModel), "x"))

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	m = next.(ShellModel)
	select {
	case got := <-copied:
		assert.Equal(t, "**raw**", got)
	case <-time.After(2 * time.Second):
		t.Fatal("clipboard was not written")
	}
	assert.Eventually(t, sess.Copied, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, m.View(), "Copied!")
}

type recordingDeleter struct{ ids []string }

func (d *recordingDeleter) DeletePost(_ context.Context, id string) error {
	d.ids = append(d.ids, id)
	return nil
}

func samplePosts() []api.Post {
	now := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)
	return []api.Post{
		{ID: "a1", Prompt: "first", Body: "## One", CreatedAt: now},
		{ID: "b2", Prompt: "second", Body: "## Two", CreatedAt: now},
	}
}

func TestTableSelect(t *testing.T) {
	m := newTableModel(context.Background(), samplePosts(), true, nil)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.(tableModel).Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, 1, next.(tableModel).showIdx)
}

func TestTableDelete(t *testing.T) {
	d := &recordingDeleter{}
	m := newTableModel(context.Background(), samplePosts(), true, d)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	require.NotNil(t, cmd)
	next, _ = next.(tableModel).Update(cmd())
	tm := next.(tableModel)
	assert.Equal(t, []string{"a1"}, d.ids)
	require.Len(t, tm.posts, 1)
	assert.Equal(t, "b2", tm.posts[0].ID)
	assert.Contains(t, tm.View(), "Deleted a1")
}

func TestTableDeleteDisabledWithoutDeleter(t *testing.T) {
	m := newTableModel(context.Background(), samplePosts(), false, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	assert.Nil(t, cmd)
}
