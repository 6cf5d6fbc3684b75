package shell

import (
	"context"

	"github.com/mithrel/inkwell/internal/db"
	"github.com/mithrel/inkwell/pkg/api"
)

// HistoryRecorder stores results as posts in a history repository.
type HistoryRecorder struct {
	Posts    db.Posts
	Provider string
	Model    string
}

func (h *HistoryRecorder) Record(ctx context.Context, prompt, raw string) (string, error) {
	p, err := h.Posts.CreatePost(ctx, api.Post{
		Prompt:   prompt,
		Body:     raw,
		Provider: h.Provider,
		Model:    h.Model,
	})
	if err != nil {
		return "", err
	}
	return p.ID, nil
}
