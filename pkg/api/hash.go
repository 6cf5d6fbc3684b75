package api

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// ComputeHash returns a deterministic BLAKE3 hash of the post content.
// It covers Prompt, Body, Provider and Model; ID and timestamps are excluded
// so regenerating identical text yields the same hash.
func (p Post) ComputeHash() string {
	h := blake3.New()

	// Null delimiters keep field boundaries unambiguous.
	h.Write([]byte(strings.TrimSpace(p.Prompt)))
	h.Write([]byte{0})

	h.Write([]byte(strings.ReplaceAll(p.Body, "\r\n", "\n")))
	h.Write([]byte{0})

	h.Write([]byte(strings.ToLower(p.Provider)))
	h.Write([]byte{0})

	h.Write([]byte(p.Model))

	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}
