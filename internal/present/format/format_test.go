package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mithrel/inkwell/pkg/api"
	"github.com/mithrel/inkwell/pkg/markup"
)

var samplePosts = []api.Post{
	{ID: "p1", Prompt: "otters", Body: "## Otters\nThey hold hands.", Provider: "gemini", Model: "flash", CreatedAt: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
	{ID: "p2", Prompt: "tabs\tand\nnewlines", Body: "no heading", Provider: "file", Model: "-", CreatedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
}

func TestWritePlainPosts(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, WritePlainPosts(&buf, samplePosts, true, now))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id"))
	assert.Contains(t, lines[1], "Otters")
	assert.Contains(t, lines[1], "2 hours ago")
	assert.Contains(t, lines[2], `tabs\tand\nnewlines`)
}

func TestWritePlainPost(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlainPost(&buf, samplePosts[0]))
	out := buf.String()
	assert.Contains(t, out, "ID: p1\n")
	assert.Contains(t, out, "Model: gemini/flash\n")
	assert.True(t, strings.HasSuffix(out, "---\nOtters\nThey hold hands.\n"))
}

func TestPlainDocument(t *testing.T) {
	got := PlainDocument(markup.Render("## A &amp; B\n* **x**\n```\n<y>\n```"))
	assert.Equal(t, "A &amp; B\n- x\n\n<y>", got)
}

func TestJSONStreamWriter(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		jw := NewJSONStreamWriter(&buf, false)
		require.NoError(t, jw.Close())
		assert.Equal(t, "[]\n", buf.String())
	})

	for _, indent := range []bool{false, true} {
		var buf bytes.Buffer
		jw := NewJSONStreamWriter(&buf, indent)
		require.NoError(t, jw.WritePosts(samplePosts[:1]))
		require.NoError(t, jw.WritePosts(samplePosts[1:]))
		require.NoError(t, jw.Close())

		var got []api.Post
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got), "indent=%v: %s", indent, buf.String())
		require.Len(t, got, 2)
		assert.Equal(t, "p2", got[1].ID)
	}
}

func TestWriteJSONNodesEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONNodes(&buf, nil, false))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteYAMLPosts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAMLPosts(&buf, samplePosts))

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "otters", got[0]["prompt"])
	assert.Equal(t, "## Otters\nThey hold hands.", got[0]["body"])
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	nodes := markup.Render("## Title\nA **bold** [link](https://go.dev) and `code`.\n* item\n```\nx := 1\n```")
	require.NoError(t, WritePDF(&buf, nodes, PDFOptions{Title: "Otters", Author: "inkwell"}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, buf.String(), "https://go.dev")
}

func TestANSIContainsText(t *testing.T) {
	out := ANSI(markup.Render("## Head\n* [go](https://go.dev)\nplain &amp; simple"), DefaultANSIStyles(), 0)
	assert.Contains(t, out, "Head")
	assert.Contains(t, out, "(https://go.dev)")
	assert.Contains(t, out, "plain &amp; simple")
}

func TestWriteTree(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTree(&buf, markup.Render("## Hi"), false))
	assert.Contains(t, buf.String(), "Heading")
	assert.Contains(t, buf.String(), "Hi")
}
