package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/inkwell/pkg/api"
	"github.com/mithrel/inkwell/pkg/markup"
)

func WriteJSONPosts(w io.Writer, posts []api.Post, indent bool) error {
	if posts == nil {
		posts = []api.Post{}
	}
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(posts)
}

func WriteJSONPost(w io.Writer, p api.Post, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(p)
}

// WriteJSONNodes writes the node tree in its tagged JSON form.
func WriteJSONNodes(w io.Writer, nodes []markup.Node, indent bool) error {
	if nodes == nil {
		nodes = []markup.Node{}
	}
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(nodes)
}
