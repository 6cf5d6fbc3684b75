package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mithrel/inkwell/pkg/api"
)

type memStore struct {
	mu    sync.RWMutex
	posts map[string]api.Post
}

// NewMemStore returns a Posts repository that lives only in memory.
func NewMemStore() Posts {
	return &memStore{posts: make(map[string]api.Post)}
}

func (m *memStore) CreatePost(ctx context.Context, p api.Post) (api.Post, error) {
	p = prepare(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[p.ID]; ok {
		return api.Post{}, ErrConflict
	}
	m.posts[p.ID] = p
	return p, nil
}

func (m *memStore) GetPost(ctx context.Context, idOrPrefix string) (api.Post, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return api.Post{}, ErrNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.posts[idOrPrefix]; ok {
		return p, nil
	}
	var found []api.Post
	for id, p := range m.posts {
		if strings.HasPrefix(id, idOrPrefix) {
			found = append(found, p)
		}
	}
	switch len(found) {
	case 0:
		return api.Post{}, ErrNotFound
	case 1:
		return found[0], nil
	default:
		return api.Post{}, ErrAmbiguous
	}
}

func (m *memStore) ListPosts(ctx context.Context, q api.PostQuery) ([]api.Post, error) {
	m.mu.RLock()
	out := make([]api.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if inRange(p.CreatedAt, q.Since, q.Until) {
			out = append(out, p)
		}
	}
	m.mu.RUnlock()
	sortNewestFirst(out)
	return limitPosts(out, q.Limit), nil
}

func (m *memStore) SearchPosts(ctx context.Context, query string, limit int) ([]api.Post, error) {
	words := strings.Fields(strings.ToLower(query))
	m.mu.RLock()
	var out []api.Post
	for _, p := range m.posts {
		hay := strings.ToLower(p.Prompt + "\n" + p.Body)
		match := len(words) > 0
		for _, w := range words {
			if !strings.Contains(hay, w) {
				match = false
				break
			}
		}
		if match {
			out = append(out, p)
		}
	}
	m.mu.RUnlock()
	sortNewestFirst(out)
	return limitPosts(out, limit), nil
}

func (m *memStore) DeletePost(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *memStore) Prompts(ctx context.Context, limit int) ([]string, error) {
	posts, _ := m.ListPosts(ctx, api.PostQuery{})
	seen := make(map[string]bool)
	var out []string
	for _, p := range posts {
		if seen[p.Prompt] {
			continue
		}
		seen[p.Prompt] = true
		out = append(out, p.Prompt)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// prepare fills the generated fields of a post about to be stored.
func prepare(p api.Post) api.Post {
	if p.ID == "" {
		p.ID = api.NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.Hash = p.ComputeHash()
	return p
}

func inRange(t, since, until time.Time) bool {
	if !since.IsZero() && t.Before(since) {
		return false
	}
	if !until.IsZero() && t.After(until) {
		return false
	}
	return true
}

func sortNewestFirst(posts []api.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

func limitPosts(posts []api.Post, limit int) []api.Post {
	if limit > 0 && len(posts) > limit {
		return posts[:limit]
	}
	return posts
}
