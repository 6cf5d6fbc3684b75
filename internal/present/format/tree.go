package format

import (
	"io"

	"github.com/k0kubun/pp"

	"github.com/mithrel/inkwell/pkg/markup"
)

// WriteTree dumps the node tree with its Go types, for debugging how a
// document was parsed.
func WriteTree(w io.Writer, nodes []markup.Node, color bool) error {
	prev := pp.ColoringEnabled
	pp.ColoringEnabled = color
	defer func() { pp.ColoringEnabled = prev }()
	_, err := pp.Fprintln(w, nodes)
	return err
}
