package wire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/mithrel/inkwell/internal/clipboard"
	"github.com/mithrel/inkwell/internal/config"
	"github.com/mithrel/inkwell/internal/db"
	"github.com/mithrel/inkwell/internal/generate"
	"github.com/mithrel/inkwell/internal/keys"
	"github.com/mithrel/inkwell/internal/shell"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg       *viper.Viper
	Log       *logrus.Logger
	Store     *db.Store
	Keys      keys.KeyStore
	Clipboard clipboard.Writer

	closer io.Closer
}

// BuildApp wires dependencies with the provided config. History lives in
// an in-memory store when history.enabled is false.
func BuildApp(ctx context.Context, cfg *viper.Viper) (*App, error) {
	logger, err := NewLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}

	dsn := "mem://"
	if cfg.GetBool("history.enabled") {
		path := config.ResolveDBPath(cfg)
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = path
	}
	store, closer, err := db.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	ks, err := keys.ForProvider(cfg.GetString("generator.key_provider"), map[string]string{
		cfg.GetString("generator.provider"): cfg.GetString("generator.api_key"),
	})
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"history":  dsn,
		"provider": cfg.GetString("generator.provider"),
	}).Debug("app wired")

	return &App{
		Cfg:       cfg,
		Log:       logger,
		Store:     store,
		Keys:      ks,
		Clipboard: clipboard.New(cfg.GetBool("clipboard.osc52")),
		closer:    closer,
	}, nil
}

// Close releases the history database.
func (a *App) Close() error {
	if a == nil || a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// NewLogger builds the process logger from log.level and log.format.
func NewLogger(cfg *viper.Viper, out io.Writer) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(out)
	lvl, err := logrus.ParseLevel(cfg.GetString("log.level"))
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	l.SetLevel(lvl)
	switch strings.ToLower(cfg.GetString("log.format")) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l, nil
}

// Generator builds the configured backend. The API key is resolved
// lazily so commands that never generate do not need one.
func (a *App) Generator() (generate.Generator, error) {
	provider := a.Cfg.GetString("generator.provider")
	key, err := a.Keys.Get(provider)
	if err != nil && !errors.Is(err, keys.ErrKeyNotFound) {
		return nil, fmt.Errorf("read api key: %w", err)
	}
	return generate.New(generate.Options{
		Provider: provider,
		Model:    a.Cfg.GetString("generator.model"),
		BaseURL:  a.Cfg.GetString("generator.base_url"),
		APIKey:   key,
		Timeout:  a.Cfg.GetDuration("generator.timeout"),
		File:     a.Cfg.GetString("generator.file"),
		Template: a.Cfg.GetString("generator.prompt_template"),
		Log:      a.Log,
	})
}

// NewSession returns a shell session wired to the generator, clipboard
// and history. onChange may be nil.
func (a *App) NewSession(onChange func()) (*shell.Session, error) {
	gen, err := a.Generator()
	if err != nil {
		return nil, err
	}
	return shell.New(a.SessionOptions(gen, onChange)), nil
}

// SessionOptions returns the shell options for gen.
func (a *App) SessionOptions(gen generate.Generator, onChange func()) shell.Options {
	return shell.Options{
		Generator: gen,
		Clipboard: a.Clipboard,
		Recorder: &shell.HistoryRecorder{
			Posts:    a.Store.Posts,
			Provider: a.Cfg.GetString("generator.provider"),
			Model:    a.Cfg.GetString("generator.model"),
		},
		CopiedDelay: a.Cfg.GetDuration("clipboard.copied_delay"),
		Log:         a.Log,
		OnChange:    onChange,
	}
}
