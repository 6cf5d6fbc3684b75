package api

import "time"

// Post is one generated article kept in history.
type Post struct {
	ID        string    `json:"id" yaml:"id"`
	Hash      string    `json:"hash" yaml:"hash"`
	Prompt    string    `json:"prompt" yaml:"prompt"`
	Body      string    `json:"body" yaml:"body"`
	Provider  string    `json:"provider" yaml:"provider"`
	Model     string    `json:"model" yaml:"model"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// PostQuery filters history listings. Zero values mean "no bound".
type PostQuery struct {
	Since time.Time
	Until time.Time
	Limit int
}

// Title returns the first heading of the post body, or the prompt when
// the body has none.
func (p Post) Title() string {
	for _, line := range splitLines(p.Body) {
		for _, prefix := range []string{"## ", "### ", "# "} {
			if len(line) > len(prefix) && line[:len(prefix)] == prefix {
				return line[len(prefix):]
			}
		}
	}
	return p.Prompt
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, trimCR(s[start:i]))
			start = i + 1
		}
	}
	return append(out, trimCR(s[start:]))
}

func trimCR(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\r' {
		return s[:n-1]
	}
	return s
}
