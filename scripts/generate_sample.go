package main

import (
	"context"
	"flag"
	"fmt"
	mrand "math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mithrel/inkwell/internal/db"
	"github.com/mithrel/inkwell/pkg/api"
)

var topics = []string{
	"goroutines", "channels", "context cancellation", "error wrapping",
	"generics", "interfaces", "sqlite with go", "http middleware",
	"table driven tests", "fuzzing", "profiling", "escape analysis",
	"slices", "maps", "select statements", "worker pools",
	"struct embedding", "json encoding", "build tags", "modules",
}

func main() {
	dbPath := flag.String("db", "sample.db", "sqlite history file to seed")
	total := flag.Int("n", 500, "number of posts")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o700); err != nil {
		panic(err)
	}
	ctx := context.Background()
	store, closer, err := db.Open(ctx, *dbPath)
	if err != nil {
		panic(err)
	}
	defer closer.Close()

	// Deterministic seed for reproducible output
	mr := mrand.New(mrand.NewSource(42))
	base := time.Now().UTC()

	for i := 0; i < *total; i++ {
		topic := topics[mr.Intn(len(topics))]
		// Stagger timestamps backwards to look natural
		created := base.Add(-time.Duration(30*i+mr.Intn(60)) * time.Minute)

		p := api.Post{
			Prompt:    topic,
			Body:      sampleBody(mr, i+1, topic),
			Provider:  "file",
			Model:     "sample",
			CreatedAt: created,
		}
		if _, err := store.Posts.CreatePost(ctx, p); err != nil {
			panic(err)
		}
	}
	fmt.Printf("seeded %d posts into %s\n", *total, *dbPath)
}

func sampleBody(r *mrand.Rand, n int, topic string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Sample post %03d: %s\n\n", n, topic)
	fmt.Fprintf(&b, "This is **sample** text about _%s_.\n\n", topic)
	points := 1 + r.Intn(4)
	for j := 0; j < points; j++ {
		fmt.Fprintf(&b, "* point %d about `%s`\n", j+1, topic)
	}
	if r.Float64() < 0.3 {
		b.WriteString("\n```go\nfmt.Println(\"hello\")\n```\n")
	}
	b.WriteString("\nSee [the Go docs](https://go.dev/doc) for more.")
	return b.String()
}
