package generate

import (
	"context"
	"fmt"
	"strings"
	"text/template"
)

type promptData struct {
	Topic string
}

// ParseTemplate compiles a prompt template. An empty template passes the
// topic through unchanged.
func ParseTemplate(src string) (*template.Template, error) {
	if strings.TrimSpace(src) == "" {
		src = "{{.Topic}}"
	}
	tpl, err := template.New("prompt").Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return tpl, nil
}

// ExpandPrompt renders tpl with topic.
func ExpandPrompt(tpl *template.Template, topic string) (string, error) {
	var b strings.Builder
	if err := tpl.Execute(&b, promptData{Topic: strings.TrimSpace(topic)}); err != nil {
		return "", fmt.Errorf("expand prompt: %w", err)
	}
	return b.String(), nil
}

type templated struct {
	next Generator
	tpl  *template.Template
}

func (t *templated) Generate(ctx context.Context, topic string) (string, error) {
	prompt, err := ExpandPrompt(t.tpl, topic)
	if err != nil {
		return "", err
	}
	return t.next.Generate(ctx, prompt)
}
