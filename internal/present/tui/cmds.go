package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mithrel/inkwell/internal/shell"
)

// PostDeleter removes a post from history.
type PostDeleter interface {
	DeletePost(ctx context.Context, id string) error
}

// deleteResultMsg conveys the outcome of a delete operation back to Update.
type deleteResultMsg struct {
	idx int
	id  string
	err error
	dur time.Duration
}

// deleteCmd deletes a post and returns a deleteResultMsg.
func deleteCmd(ctx context.Context, posts PostDeleter, id string, idx int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		err := posts.DeletePost(ctx, id)
		return deleteResultMsg{idx: idx, id: id, err: err, dur: time.Since(start)}
	}
}

// sessionChangedMsg is sent whenever the session's state or copied
// indicator changes.
type sessionChangedMsg struct{}

// finalStateMsg carries the outcome of one submission.
type finalStateMsg struct {
	state shell.State
	dur   time.Duration
}

// awaitCmd blocks until a submission completes.
func awaitCmd(done <-chan shell.State, start time.Time) tea.Cmd {
	return func() tea.Msg {
		st := <-done
		return finalStateMsg{state: st, dur: time.Since(start)}
	}
}
