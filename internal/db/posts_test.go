package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/inkwell/pkg/api"
)

// eachStore runs fn against the sqlite store and the in-memory store.
func eachStore(t *testing.T, fn func(t *testing.T, ctx context.Context, posts Posts)) {
	t.Run("sqlite", func(t *testing.T) {
		ctx := context.Background()
		store, closer, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = closer.Close() })
		fn(t, ctx, store.Posts)
	})
	t.Run("mem", func(t *testing.T) {
		ctx := context.Background()
		store, _, err := Open(ctx, "mem://")
		require.NoError(t, err)
		fn(t, ctx, store.Posts)
	})
}

func seed(t *testing.T, ctx context.Context, posts Posts) []api.Post {
	t.Helper()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	in := []api.Post{
		{ID: "aaa-1", Prompt: "goroutines", Body: "## Goroutines\nLightweight threads.", Provider: "gemini", Model: "m", CreatedAt: base},
		{ID: "aab-2", Prompt: "channels", Body: "## Channels\nTyped pipes between goroutines.", Provider: "ollama", Model: "llama3", CreatedAt: base.Add(time.Hour)},
		{ID: "bbb-3", Prompt: "goroutines", Body: "## Again\nRegenerated.", Provider: "gemini", Model: "m", CreatedAt: base.Add(2 * time.Hour)},
	}
	out := make([]api.Post, 0, len(in))
	for _, p := range in {
		created, err := posts.CreatePost(ctx, p)
		require.NoError(t, err)
		out = append(out, created)
	}
	return out
}

func TestCreateAndGetPost(t *testing.T) {
	eachStore(t, func(t *testing.T, ctx context.Context, posts Posts) {
		created, err := posts.CreatePost(ctx, api.Post{Prompt: "otters", Body: "## Otters", Provider: "file"})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())
		assert.Equal(t, created.ComputeHash(), created.Hash)

		got, err := posts.GetPost(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Body, got.Body)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

		_, err = posts.CreatePost(ctx, created)
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestGetPostByPrefix(t *testing.T) {
	eachStore(t, func(t *testing.T, ctx context.Context, posts Posts) {
		seed(t, ctx, posts)

		p, err := posts.GetPost(ctx, "bb")
		require.NoError(t, err)
		assert.Equal(t, "bbb-3", p.ID)

		_, err = posts.GetPost(ctx, "aa")
		assert.ErrorIs(t, err, ErrAmbiguous)

		_, err = posts.GetPost(ctx, "zzz")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = posts.GetPost(ctx, "  ")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListPosts(t *testing.T) {
	eachStore(t, func(t *testing.T, ctx context.Context, posts Posts) {
		all := seed(t, ctx, posts)

		got, err := posts.ListPosts(ctx, api.PostQuery{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"bbb-3", "aab-2", "aaa-1"}, ids(got))

		got, err = posts.ListPosts(ctx, api.PostQuery{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"bbb-3", "aab-2"}, ids(got))

		got, err = posts.ListPosts(ctx, api.PostQuery{Since: all[1].CreatedAt, Until: all[1].CreatedAt})
		require.NoError(t, err)
		assert.Equal(t, []string{"aab-2"}, ids(got))
	})
}

func TestSearchPosts(t *testing.T) {
	eachStore(t, func(t *testing.T, ctx context.Context, posts Posts) {
		seed(t, ctx, posts)

		got, err := posts.SearchPosts(ctx, "goroutines", 0)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"aaa-1", "aab-2", "bbb-3"}, ids(got))

		got, err = posts.SearchPosts(ctx, "typed pipes", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"aab-2"}, ids(got))

		got, err = posts.SearchPosts(ctx, `"`, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestDeletePost(t *testing.T) {
	eachStore(t, func(t *testing.T, ctx context.Context, posts Posts) {
		seed(t, ctx, posts)

		require.NoError(t, posts.DeletePost(ctx, "aab-2"))
		assert.ErrorIs(t, posts.DeletePost(ctx, "aab-2"), ErrNotFound)

		got, err := posts.SearchPosts(ctx, "pipes", 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestPrompts(t *testing.T) {
	eachStore(t, func(t *testing.T, ctx context.Context, posts Posts) {
		seed(t, ctx, posts)

		got, err := posts.Prompts(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"goroutines", "channels"}, got)

		got, err = posts.Prompts(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"goroutines"}, got)
	})
}

func TestFTSQuery(t *testing.T) {
	assert.Equal(t, `"go"* "vet"*`, ftsQuery(`Go: vet!`))
	assert.Equal(t, "", ftsQuery(`"*()`))
}

func ids(posts []api.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}
