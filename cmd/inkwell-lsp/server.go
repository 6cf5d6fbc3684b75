package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mithrel/inkwell/internal/editor"
	"github.com/mithrel/inkwell/internal/util"
)

const (
	maxPrompts     = 200
	maxCompletions = 20
	scratchSuffix  = ".inkwell.md"
)

type request struct {
	RPC    string           `json:"jsonrpc"`
	ID     *json.RawMessage `json:"id,omitempty"`
	Method string           `json:"method"`
	Params json.RawMessage  `json:"params,omitempty"`
}

type response struct {
	RPC    string           `json:"jsonrpc"`
	ID     *json.RawMessage `json:"id,omitempty"`
	Result interface{}      `json:"result"`
	Error  interface{}      `json:"error,omitempty"`
}

type initializeResult struct {
	Capabilities serverCapabilities `json:"capabilities"`
}

type serverCapabilities struct {
	CompletionProvider completionProvider `json:"completionProvider"`
}

type completionProvider struct {
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
}

type completionItem struct {
	Label      string `json:"label"`
	Kind       int    `json:"kind,omitempty"`
	Detail     string `json:"detail,omitempty"`
	InsertText string `json:"insertText,omitempty"`
}

type completionParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     position               `json:"position"`
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type completionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []completionItem `json:"items"`
}

type server struct {
	log     *logrus.Logger
	out     io.Writer
	prompts func(ctx context.Context) ([]string, error)
}

// handleMessage dispatches one JSON-RPC message and reports whether the
// client asked the server to exit.
func (s *server) handleMessage(ctx context.Context, msg []byte) bool {
	s.log.WithField("msg", string(msg)).Debug("received")

	var req request
	if err := json.Unmarshal(msg, &req); err != nil {
		s.log.WithError(err).Warn("unmarshal request")
		return false
	}

	switch req.Method {
	case "initialize":
		s.send(response{RPC: "2.0", ID: req.ID, Result: initializeResult{
			Capabilities: serverCapabilities{CompletionProvider: completionProvider{}},
		}})
	case "textDocument/completion":
		items := s.completions(ctx, req.Params)
		if items == nil {
			items = []completionItem{}
		}
		s.send(response{RPC: "2.0", ID: req.ID, Result: completionList{Items: items}})
	case "shutdown":
		s.send(response{RPC: "2.0", ID: req.ID, Result: nil})
	case "exit":
		return true
	}
	return false
}

func (s *server) send(resp response) {
	b, err := json.Marshal(resp)
	if err != nil {
		s.log.WithError(err).Error("marshal response")
		return
	}
	fmt.Fprintf(s.out, "Content-Length: %d\r\n\r\n%s", len(b), b)
	s.log.WithField("msg", string(b)).Debug("sent")
}

// completions offers earlier prompts while the cursor sits in the body of a
// prompt scratch file. The text typed so far on the line ranks them.
func (s *server) completions(ctx context.Context, raw json.RawMessage) []completionItem {
	var params completionParams
	if err := json.Unmarshal(raw, &params); err != nil {
		s.log.WithError(err).Warn("parse completion params")
		return nil
	}

	typed, ok := s.bodyPrefix(params)
	if !ok {
		return nil
	}

	prompts, err := s.prompts(ctx)
	if err != nil {
		s.log.WithError(err).Error("load prompts")
		return nil
	}
	matches := util.ScoreCompletions(strings.TrimSpace(typed), prompts, maxCompletions)
	if len(matches) > maxCompletions {
		matches = matches[:maxCompletions]
	}

	items := make([]completionItem, 0, len(matches))
	for _, p := range matches {
		items = append(items, completionItem{
			Label:      editor.FirstLine(p),
			Kind:       1,
			Detail:     "history",
			InsertText: p,
		})
	}
	return items
}

// bodyPrefix returns the text before the cursor when the position lies
// below the separator of an inkwell scratch file.
func (s *server) bodyPrefix(params completionParams) (string, bool) {
	path := strings.TrimPrefix(params.TextDocument.URI, "file://")
	if !strings.HasSuffix(path, scratchSuffix) {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		s.log.WithError(err).Warn("read document")
		return "", false
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	line := params.Position.Line
	if line < 0 || line >= len(lines) {
		return "", false
	}

	sep := -1
	for i, l := range lines {
		if strings.TrimSpace(l) == "---" {
			sep = i
			break
		}
	}
	if sep < 0 || line <= sep {
		return "", false
	}

	text := lines[line]
	if c := params.Position.Character; c >= 0 && c < len(text) {
		text = text[:c]
	}
	return text, true
}
