package db

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/mithrel/inkwell/pkg/api"
)

// Posts is the history repository for generated posts.
type Posts interface {
	// CreatePost stores p, filling in ID, Hash and CreatedAt when unset.
	CreatePost(ctx context.Context, p api.Post) (api.Post, error)
	// GetPost finds a post by full ID or by an unambiguous ID prefix.
	GetPost(ctx context.Context, idOrPrefix string) (api.Post, error)
	// ListPosts returns posts newest first.
	ListPosts(ctx context.Context, q api.PostQuery) ([]api.Post, error)
	// SearchPosts runs a full-text query over prompts and bodies.
	SearchPosts(ctx context.Context, query string, limit int) ([]api.Post, error)
	DeletePost(ctx context.Context, id string) error
	// Prompts returns distinct prompts, most recently used first.
	Prompts(ctx context.Context, limit int) ([]string, error)
}

// Store groups the repositories backed by one database.
type Store struct {
	Posts Posts
}

var (
	ErrNotFound  = errors.New("not found")
	ErrAmbiguous = errors.New("id prefix matches more than one post")
	ErrConflict  = errors.New("post already exists")
)

// Open returns a Store for dsn. "mem://" selects the in-memory store;
// anything else (optionally "sqlite://"-prefixed) is a sqlite file path.
func Open(ctx context.Context, dsn string) (*Store, io.Closer, error) {
	if strings.HasPrefix(dsn, "mem://") {
		return &Store{Posts: NewMemStore()}, io.NopCloser(nil), nil
	}
	return openSQLite(ctx, dsn)
}
