package generate

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// File returns the contents of a markdown file regardless of the prompt.
// It stands in for a real backend when working offline.
type File struct {
	Path string
}

func (f *File) Generate(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(f.Path) == "" {
		return "", fmt.Errorf("file generator: no path configured")
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("file generator: %w", err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", ErrEmptyResponse
	}
	return string(b), nil
}
