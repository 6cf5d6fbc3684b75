package format

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mithrel/inkwell/pkg/api"
)

// WriteYAMLPosts writes posts as a YAML sequence.
func WriteYAMLPosts(w io.Writer, posts []api.Post) error {
	if posts == nil {
		posts = []api.Post{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(posts); err != nil {
		return err
	}
	return enc.Close()
}
