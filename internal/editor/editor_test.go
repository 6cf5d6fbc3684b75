package editor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEditedPrompt(t *testing.T) {
	input := `# comment line
# Recent prompts:
#   otters
---
Sea otters
and their tools
`
	assert.Equal(t, "Sea otters\nand their tools", ParseEditedPrompt(input))
}

func TestParseEditedPromptKeepsHashesInBody(t *testing.T) {
	assert.Equal(t, "# not a comment", ParseEditedPrompt("---\n# not a comment\n"))
}

func TestParseEditedPromptWithoutSeparator(t *testing.T) {
	assert.Equal(t, "just this", ParseEditedPrompt("# note\njust this\n"))
}

func TestComposeRoundTrip(t *testing.T) {
	content := ComposePrompt("Otters", []string{"badgers\nand more", "moles"})
	assert.Contains(t, content, "#   badgers\n")
	assert.Contains(t, content, "---\nOtters\n")
	assert.Equal(t, "Otters", ParseEditedPrompt(content))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "hello", FirstLine("  hello\nworld\n"))
	assert.Len(t, FirstLine(strings.Repeat("x", 130)), 120)
	assert.Empty(t, FirstLine("   "))
}

func TestPathFor(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	path, err := PathFor("my prompt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "inkwell", "my-prompt.inkwell.md"), path)
}

func TestEditPrompt(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	// An "editor" that appends a line to the file it is given.
	script := filepath.Join(t.TempDir(), "fake-editor")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho 'about moles' >> \"$1\"\n"), 0o755))
	t.Setenv("VISUAL", script)
	got, err := EditPrompt("", nil)
	require.NoError(t, err)
	assert.Equal(t, "about moles", got)

	_, err = os.Stat(filepath.Join(dir, "inkwell", "prompt.inkwell.md"))
	assert.True(t, os.IsNotExist(err))
}
