// Package generate talks to the text generation backends that produce the
// markdown a post is rendered from.
package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Generator turns a prompt into markdown text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse is returned when a backend answers successfully but
// produces no text.
var ErrEmptyResponse = errors.New("generator returned no text")

// Error is a backend rejection. Message carries the backend's own error
// text when it could be decoded.
type Error struct {
	Provider string
	Status   int
	Message  string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s returned HTTP %d", e.Provider, e.Status)
}

// Options selects and configures a backend.
type Options struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	File     string
	Template string
	Log      *logrus.Logger
}

// New builds the generator named by opts.Provider. Prompts are expanded
// through opts.Template before reaching network backends.
func New(opts Options) (Generator, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	client := &http.Client{Timeout: opts.Timeout}

	var g Generator
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "gemini":
		g = &Gemini{BaseURL: opts.BaseURL, Model: opts.Model, APIKey: opts.APIKey, Client: client}
	case "ollama":
		g = &Ollama{BaseURL: opts.BaseURL, Model: opts.Model, Client: client}
	case "file":
		return &File{Path: opts.File}, nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", opts.Provider)
	}

	tpl, err := ParseTemplate(opts.Template)
	if err != nil {
		return nil, err
	}
	return &logged{
		next: &templated{next: g, tpl: tpl},
		log:  log.WithFields(logrus.Fields{"provider": opts.Provider, "model": opts.Model}),
	}, nil
}

type logged struct {
	next Generator
	log  *logrus.Entry
}

func (l *logged) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	l.log.WithField("prompt_len", len(prompt)).Debug("generation started")
	out, err := l.next.Generate(ctx, prompt)
	entry := l.log.WithField("elapsed", time.Since(start).Round(time.Millisecond))
	if err != nil {
		entry.WithError(err).Warn("generation failed")
		return "", err
	}
	entry.WithField("chars", len(out)).Info("generation finished")
	return out, nil
}

// readError turns a non-2xx response body into an *Error, using decode to
// extract the backend's message.
func readError(provider string, resp *http.Response, body []byte, decode func([]byte) string) error {
	msg := ""
	if decode != nil {
		msg = decode(body)
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
		if len(msg) > 300 {
			msg = msg[:300]
		}
	}
	return &Error{Provider: provider, Status: resp.StatusCode, Message: msg}
}
