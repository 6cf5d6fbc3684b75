// Package editor lets the user compose a prompt in $VISUAL or $EDITOR.
package editor

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const bodySeparator = "---"

// ComposePrompt creates the text presented to the editor. Recent prompts
// are listed as comments for reference.
func ComposePrompt(topic string, recent []string) string {
	var b bytes.Buffer
	b.WriteString("# Inkwell prompt\n")
	b.WriteString("# Lines starting with '#' above the separator are ignored.\n")
	b.WriteString("# Write the topic of the post below '---'. Save and quit to generate.\n")
	if len(recent) > 0 {
		b.WriteString("#\n# Recent prompts:\n")
		for _, p := range recent {
			b.WriteString("#   ")
			b.WriteString(FirstLine(p))
			b.WriteString("\n")
		}
	}
	b.WriteString(bodySeparator + "\n")
	if topic != "" {
		if !strings.HasSuffix(topic, "\n") {
			topic += "\n"
		}
		b.WriteString(topic)
	}
	return b.String()
}

// ParseEditedPrompt extracts the topic from the editor output. Text
// without a separator is taken whole, minus comment lines.
func ParseEditedPrompt(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	hasSep := false
	for _, line := range lines {
		if strings.TrimSpace(line) == bodySeparator {
			hasSep = true
			break
		}
	}
	inBody := !hasSep
	var body []string
	for _, line := range lines {
		if !inBody {
			if strings.TrimSpace(line) == bodySeparator {
				inBody = true
			}
			continue
		}
		if !hasSep && strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		body = append(body, line)
	}
	return strings.TrimSpace(strings.Join(body, "\n"))
}

// PreferredEditor finds a suitable editor from env or common defaults.
func PreferredEditor() (string, error) {
	if v := os.Getenv("VISUAL"); v != "" {
		return v, nil
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e, nil
	}
	for _, cand := range []string{"nvim", "vim", "vi", "nano"} {
		if p, err := exec.LookPath(cand); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no editor found; set $EDITOR or $VISUAL")
}

// PathFor returns a scratch file path for name.
func PathFor(name string) (string, error) {
	file := sanitize(name) + ".inkwell.md"
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, "inkwell", file), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "inkwell", "edit", file), nil
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "prompt"
	}
	return b.String()
}

func writeFile0600(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, fs.FileMode(0o600))
}

// OpenAt opens the editor at path with initial content and returns the
// final bytes and whether they changed.
func OpenAt(path string, initial []byte) (final []byte, changed bool, err error) {
	if err := writeFile0600(path, initial); err != nil {
		return nil, false, err
	}
	// Run through sh so editors configured with flags work.
	ed := os.Getenv("VISUAL")
	if ed == "" {
		ed = os.Getenv("EDITOR")
	}
	var cmd *exec.Cmd
	if strings.TrimSpace(ed) != "" {
		cmd = exec.Command("sh", "-c", "$EDITORCMD \"$FILEPATH\"")
		cmd.Env = append(os.Environ(), "EDITORCMD="+ed, "FILEPATH="+path)
	} else {
		prog, err := PreferredEditor()
		if err != nil {
			return nil, false, err
		}
		cmd = exec.Command(prog, path)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, false, err
	}
	out, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return out, !bytes.Equal(out, initial), nil
}

// EditPrompt opens the editor on a prompt scratch file and returns the
// topic the user wrote. The scratch file is removed afterwards.
func EditPrompt(topic string, recent []string) (string, error) {
	path, err := PathFor("prompt")
	if err != nil {
		return "", err
	}
	defer os.Remove(path)
	out, _, err := OpenAt(path, []byte(ComposePrompt(topic, recent)))
	if err != nil {
		return "", err
	}
	return ParseEditedPrompt(string(out)), nil
}

// FirstLine returns the first trimmed line, squashed and truncated.
func FirstLine(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
