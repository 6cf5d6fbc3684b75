package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/inkwell/pkg/api"
)

// JSONStreamWriter incrementally writes posts as a JSON array, so history
// exports never hold every post in memory at once.
type JSONStreamWriter struct {
	w        io.Writer
	indent   bool
	wroteAny bool
}

// NewJSONStreamWriter creates a streaming JSON writer.
func NewJSONStreamWriter(w io.Writer, indent bool) *JSONStreamWriter {
	return &JSONStreamWriter{w: w, indent: indent}
}

// WritePosts writes a batch of posts.
func (jw *JSONStreamWriter) WritePosts(posts []api.Post) error {
	for _, p := range posts {
		var (
			b   []byte
			err error
		)
		if jw.indent {
			b, err = json.MarshalIndent(p, "  ", "  ")
		} else {
			b, err = json.Marshal(p)
		}
		if err != nil {
			return err
		}
		sep := ","
		if !jw.wroteAny {
			sep = "["
		}
		if jw.indent {
			sep += "\n  "
		}
		if _, err := io.WriteString(jw.w, sep); err != nil {
			return err
		}
		if _, err := jw.w.Write(b); err != nil {
			return err
		}
		jw.wroteAny = true
	}
	return nil
}

// Close terminates the array; an empty stream becomes "[]".
func (jw *JSONStreamWriter) Close() error {
	end := "]\n"
	if !jw.wroteAny {
		end = "[]\n"
	} else if jw.indent {
		end = "\n]\n"
	}
	_, err := io.WriteString(jw.w, end)
	return err
}
