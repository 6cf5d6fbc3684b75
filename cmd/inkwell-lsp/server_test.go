package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/inkwell/internal/editor"
)

func newTestServer(out io.Writer, prompts []string, err error) *server {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &server{
		log: log,
		out: out,
		prompts: func(context.Context) ([]string, error) {
			return prompts, err
		},
	}
}

func writeScratch(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return "file://" + path
}

func completionRequest(t *testing.T, uri string, line, char int) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(completionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Position:     position{Line: line, Character: char},
	})
	require.NoError(t, err)
	return b
}

func TestCompletionsInBody(t *testing.T) {
	uri := writeScratch(t, "prompt.inkwell.md", editor.ComposePrompt("gorou", nil))
	srv := newTestServer(io.Discard, []string{"channels in depth", "goroutines explained", "garbage collector"}, nil)

	lines := strings.Split(editor.ComposePrompt("gorou", nil), "\n")
	bodyLine := len(lines) - 2

	items := srv.completions(context.Background(), completionRequest(t, uri, bodyLine, len("gorou")))
	require.NotEmpty(t, items)
	assert.Equal(t, "goroutines explained", items[0].InsertText)
	assert.Equal(t, "history", items[0].Detail)
}

func TestCompletionsEmptyLineListsAll(t *testing.T) {
	uri := writeScratch(t, "prompt.inkwell.md", "# header\n---\n")
	srv := newTestServer(io.Discard, []string{"a", "b"}, nil)

	items := srv.completions(context.Background(), completionRequest(t, uri, 2, 0))
	assert.Len(t, items, 2)
}

func TestCompletionsOutsideBody(t *testing.T) {
	srv := newTestServer(io.Discard, []string{"anything"}, nil)

	t.Run("header line", func(t *testing.T) {
		uri := writeScratch(t, "prompt.inkwell.md", "# header\n---\nbody")
		assert.Nil(t, srv.completions(context.Background(), completionRequest(t, uri, 0, 1)))
	})

	t.Run("not a scratch file", func(t *testing.T) {
		uri := writeScratch(t, "notes.md", "---\nany")
		assert.Nil(t, srv.completions(context.Background(), completionRequest(t, uri, 1, 1)))
	})

	t.Run("no separator", func(t *testing.T) {
		uri := writeScratch(t, "prompt.inkwell.md", "any")
		assert.Nil(t, srv.completions(context.Background(), completionRequest(t, uri, 0, 1)))
	})
}

func TestCompletionsHistoryError(t *testing.T) {
	uri := writeScratch(t, "prompt.inkwell.md", "---\nx")
	srv := newTestServer(io.Discard, nil, errors.New("db closed"))
	assert.Nil(t, srv.completions(context.Background(), completionRequest(t, uri, 1, 1)))
}

func TestHandleMessage(t *testing.T) {
	var out bytes.Buffer
	srv := newTestServer(&out, nil, nil)
	ctx := context.Background()

	assert.False(t, srv.handleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`)))
	msg, err := readMessage(bufio.NewReader(&out))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":{"capabilities":{"completionProvider":{}}}}`, string(msg))

	out.Reset()
	uri := writeScratch(t, "x.inkwell.md", "---\n")
	params := completionRequest(t, uri, 1, 0)
	req := `{"jsonrpc":"2.0","id":2,"method":"textDocument/completion","params":` + string(params) + `}`
	assert.False(t, srv.handleMessage(ctx, []byte(req)))
	msg, err = readMessage(bufio.NewReader(&out))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":2,"result":{"isIncomplete":false,"items":[]}}`, string(msg))

	assert.True(t, srv.handleMessage(ctx, []byte(`{"jsonrpc":"2.0","method":"exit"}`)))
}

func TestReadMessage(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("Content-Length: 2\r\n\r\n{}"))
	msg, err := readMessage(r)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(msg))

	_, err = readMessage(bufio.NewReader(strings.NewReader("X: 1\r\n\r\n")))
	assert.Error(t, err)
}
