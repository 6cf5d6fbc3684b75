package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/inkwell/pkg/api"
)

// WriteNDJSONPosts writes posts as newline-delimited JSON objects.
func WriteNDJSONPosts(w io.Writer, posts []api.Post) error {
	enc := json.NewEncoder(w)
	for _, p := range posts {
		if err := enc.Encode(p); err != nil {
			return err
		}
	}
	return nil
}
