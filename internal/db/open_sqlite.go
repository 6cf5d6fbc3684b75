package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	_ "modernc.org/sqlite"

	"github.com/mithrel/inkwell/pkg/api"
)

type sqliteStore struct{ db *sql.DB }

const postColumns = `p.id, p.hash, p.prompt, p.body, p.provider, p.model, p.created_at`

// openSQLite connects to a SQLite database using modernc.org/sqlite driver and ensures schema exists.
func openSQLite(ctx context.Context, dsn string) (*Store, io.Closer, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, err
	}
	dbh, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, err
	}
	if _, err := dbh.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = dbh.Close()
		return nil, nil, err
	}
	if _, err := dbh.ExecContext(ctx, `PRAGMA busy_timeout=5000;`); err != nil {
		_ = dbh.Close()
		return nil, nil, err
	}
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &Store{Posts: &sqliteStore{db: dbh}}, dbh, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS posts (
  id TEXT PRIMARY KEY,
  hash TEXT NOT NULL,
  prompt TEXT NOT NULL,
  body TEXT NOT NULL,
  provider TEXT NOT NULL,
  model TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_created_id ON posts(created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_posts_hash ON posts(hash);
CREATE VIRTUAL TABLE IF NOT EXISTS posts_fts USING fts5(
  prompt, body,
  id UNINDEXED,
  tokenize='unicode61'
);
`)
	return err
}

func (s *sqliteStore) CreatePost(ctx context.Context, p api.Post) (api.Post, error) {
	p = prepare(p)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return api.Post{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO posts(id, hash, prompt, body, provider, model, created_at) VALUES(?,?,?,?,?,?,?)`,
		p.ID, p.Hash, p.Prompt, p.Body, p.Provider, p.Model, p.CreatedAt.UnixNano()); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			err = ErrConflict
		}
		return api.Post{}, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO posts_fts(rowid, prompt, body, id) VALUES((SELECT rowid FROM posts WHERE id=?), ?, ?, ?)`,
		p.ID, p.Prompt, p.Body, p.ID); err != nil {
		return api.Post{}, err
	}
	if err := tx.Commit(); err != nil {
		return api.Post{}, err
	}
	return p, nil
}

func (s *sqliteStore) GetPost(ctx context.Context, idOrPrefix string) (api.Post, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return api.Post{}, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.id=?`, idOrPrefix)
	p, err := scanPost(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return api.Post{}, err
	}

	// Fall back to a prefix match; two rows are enough to detect ambiguity.
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts p WHERE substr(p.id, 1, ?) = ? LIMIT 2`,
		len(idOrPrefix), idOrPrefix)
	if err != nil {
		return api.Post{}, err
	}
	found, err := scanPosts(rows)
	if err != nil {
		return api.Post{}, err
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

func (s *sqliteStore) ListPosts(ctx context.Context, q api.PostQuery) ([]api.Post, error) {
	var (
		conds []string
		args  []any
	)
	if !q.Since.IsZero() {
		conds = append(conds, "p.created_at >= ?")
		args = append(args, q.Since.UnixNano())
	}
	if !q.Until.IsZero() {
		conds = append(conds, "p.created_at <= ?")
		args = append(args, q.Until.UnixNano())
	}
	sqlq := `SELECT ` + postColumns + ` FROM posts p`
	if len(conds) > 0 {
		sqlq += " WHERE " + strings.Join(conds, " AND ")
	}
	sqlq += " ORDER BY p.created_at DESC, p.id DESC"
	if q.Limit > 0 {
		sqlq += " LIMIT ?"
		args = append(args, q.Limit)
	}
	rows, err := s.db.QueryContext(ctx, sqlq, args...)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

func (s *sqliteStore) SearchPosts(ctx context.Context, query string, limit int) ([]api.Post, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 500
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+`
FROM posts_fts x
JOIN posts p ON p.id = x.id
WHERE x.posts_fts MATCH ?
ORDER BY p.created_at DESC, p.id DESC
LIMIT ?`, match, limit)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

func (s *sqliteStore) DeletePost(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM posts_fts WHERE id=?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *sqliteStore) Prompts(ctx context.Context, limit int) ([]string, error) {
	sqlq := `SELECT prompt FROM posts GROUP BY prompt ORDER BY MAX(created_at) DESC`
	var args []any
	if limit > 0 {
		sqlq += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, sqlq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (api.Post, error) {
	var p api.Post
	var created int64
	if err := row.Scan(&p.ID, &p.Hash, &p.Prompt, &p.Body, &p.Provider, &p.Model, &created); err != nil {
		return api.Post{}, err
	}
	p.CreatedAt = time.Unix(0, created).UTC()
	return p, nil
}

func scanPosts(rows *sql.Rows) ([]api.Post, error) {
	defer rows.Close()
	var out []api.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ftsQuery turns free text into an FTS5 expression that ANDs every word
// as a quoted prefix term, so user punctuation cannot break the syntax.
func ftsQuery(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(words))
	for _, w := range words {
		terms = append(terms, `"`+w+`"*`)
	}
	return strings.Join(terms, " ")
}
