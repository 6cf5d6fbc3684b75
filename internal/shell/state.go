// Package shell drives one interactive session: submit a prompt, wait for
// the generator, show exactly one of loading, error or result, and copy
// the result to the clipboard.
package shell

import "github.com/mithrel/inkwell/pkg/markup"

// State is what a session currently displays. It is one of Idle, Loading,
// Failed or Ready.
type State interface {
	Name() string
	state()
}

// Idle is the state before the first submission.
type Idle struct{}

// Loading means a generation request is in flight.
type Loading struct {
	Prompt string
}

// Failed holds the message of the last failed generation.
type Failed struct {
	Prompt  string
	Message string
}

// Ready holds a generated document and its rendered nodes.
type Ready struct {
	Prompt string
	Raw    string
	Nodes  []markup.Node
	PostID string
}

func (Idle) Name() string    { return "idle" }
func (Loading) Name() string { return "loading" }
func (Failed) Name() string  { return "error" }
func (Ready) Name() string   { return "result" }

func (Idle) state()    {}
func (Loading) state() {}
func (Failed) state()  {}
func (Ready) state()   {}
