package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/mithrel/inkwell/internal/db"
	"github.com/mithrel/inkwell/internal/present"
	"github.com/mithrel/inkwell/internal/present/format"
	"github.com/mithrel/inkwell/internal/util"
	"github.com/mithrel/inkwell/pkg/api"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"h"},
		Short:   "Browse previously generated posts",
	}
	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistorySearchCmd())
	cmd.AddCommand(newHistoryDeleteCmd())
	cmd.AddCommand(newHistoryExportCmd())
	return cmd
}

func completeListModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"plain", "pretty", "json", "ndjson", "yaml", "tui"}, cobra.ShellCompDirectiveNoFileComp
}

func newHistoryListCmd() *cobra.Command {
	var (
		since, until string
		limit        int
		outputMode   string
		noHeaders    bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			s, u, err := util.ParseTimeRange(since, until, time.Now())
			if err != nil {
				return err
			}
			mode, err := listMode(cmd, outputMode)
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = app.Cfg.GetInt("history.page_size")
			}
			posts, err := app.Store.Posts.ListPosts(cmd.Context(), api.PostQuery{Since: s, Until: u, Limit: limit})
			if err != nil {
				return err
			}
			opts := presentOptions(app, cmd.OutOrStdout())
			opts.Mode = mode
			opts.Headers = !noHeaders
			opts.Posts = app.Store.Posts
			return renderPosts(cmd, posts, opts)
		},
	}
	cmd.Flags().StringVar(&since, "since", "", "only posts after this time (2h, 3d, 1w, 1mo, RFC3339, 2006-01-02)")
	cmd.Flags().StringVar(&until, "until", "", "only posts before this time")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of posts (0 uses history.page_size)")
	cmd.Flags().StringVar(&outputMode, "output", "", "output mode: plain|pretty|json|ndjson|yaml|tui (default tui on a terminal, plain otherwise)")
	cmd.Flags().BoolVar(&noHeaders, "noheaders", false, "hide column headers (plain/tui)")
	_ = cmd.RegisterFlagCompletionFunc("output", completeListModes)
	return cmd
}

// listMode resolves --output for post listings.
func listMode(cmd *cobra.Command, s string) (present.ListMode, error) {
	if s == "" {
		if isTerminal(cmd.OutOrStdout()) && isTerminal(cmd.InOrStdin()) {
			return present.ModeTUI, nil
		}
		return present.ModePlain, nil
	}
	mode, ok := present.ParseMode(strings.ToLower(s))
	if !ok {
		return 0, fmt.Errorf("invalid --output: %s", s)
	}
	return mode, nil
}

func renderPosts(cmd *cobra.Command, posts []api.Post, opts present.Options) error {
	if opts.Mode == present.ModeTUI {
		return present.RenderPosts(cmd.Context(), cmd.OutOrStdout(), posts, opts)
	}
	return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
		return present.RenderPosts(cmd.Context(), w, posts, opts)
	})
}

func newHistoryShowCmd() *cobra.Command {
	var (
		formatS    string
		outputMode string
		outPath    string
	)
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display a post; the id may be a unique prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if formatS != "" && outputMode != "" {
				return fmt.Errorf("choose either --format or --output")
			}
			p, err := app.Store.Posts.GetPost(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("post %s: %w", args[0], err)
			}
			out, err := openOutput(cmd, outPath)
			if err != nil {
				return err
			}
			defer out.Close()
			opts := presentOptions(app, out)

			if outputMode != "" {
				mode, ok := present.ParseMode(strings.ToLower(outputMode))
				if !ok || mode == present.ModeTUI {
					return fmt.Errorf("invalid --output: %s", outputMode)
				}
				opts.Mode = mode
				return present.RenderPost(out, p, opts)
			}
			f, err := parseDocFormat(formatS, out)
			if err != nil {
				return err
			}
			return present.RenderDocument(out, p.Body, p.Title(), f, opts)
		},
	}
	addDocFormatFlag(cmd, &formatS)
	cmd.Flags().StringVar(&outputMode, "output", "", "show the post record instead: plain|pretty|json|ndjson|yaml")
	cmd.Flags().StringVarP(&outPath, "out-file", "o", "", "write to a file instead of stdout")
	return cmd
}

func newHistorySearchCmd() *cobra.Command {
	var (
		fuzzyF     bool
		limit      int
		outputMode string
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search posts (full-text, or fuzzy over prompts)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			query := strings.Join(args, " ")
			if limit <= 0 {
				limit = app.Cfg.GetInt("history.page_size")
			}
			var (
				posts []api.Post
				err   error
			)
			if fuzzyF {
				posts, err = fuzzySearch(cmd.Context(), app.Store.Posts, query, limit)
			} else {
				posts, err = app.Store.Posts.SearchPosts(cmd.Context(), query, limit)
			}
			if err != nil {
				return err
			}
			mode := present.ModePlain
			if outputMode != "" {
				if mode, err = listMode(cmd, outputMode); err != nil {
					return err
				}
			}
			opts := presentOptions(app, cmd.OutOrStdout())
			opts.Mode = mode
			opts.Posts = app.Store.Posts
			return renderPosts(cmd, posts, opts)
		},
	}
	cmd.Flags().BoolVar(&fuzzyF, "fuzzy", false, "fuzzy-match the query against prompts")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results (0 uses history.page_size)")
	cmd.Flags().StringVar(&outputMode, "output", "", "output mode: plain|pretty|json|ndjson|yaml|tui")
	_ = cmd.RegisterFlagCompletionFunc("output", completeListModes)
	return cmd
}

// fuzzySearch ranks every stored post by how well its prompt matches query.
func fuzzySearch(ctx context.Context, posts db.Posts, query string, limit int) ([]api.Post, error) {
	all, err := posts.ListPosts(ctx, api.PostQuery{})
	if err != nil {
		return nil, err
	}
	prompts := make([]string, len(all))
	for i, p := range all {
		prompts[i] = p.Prompt
	}
	idx := util.RankFuzzy(query, prompts, limit)
	out := make([]api.Post, 0, len(idx))
	for _, i := range idx {
		out = append(out, all[i])
	}
	return out, nil
}

func newHistoryDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete posts; ids may be unique prefixes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			posts := make([]api.Post, 0, len(args))
			for _, id := range args {
				p, err := app.Store.Posts.GetPost(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("post %s: %w", id, err)
				}
				posts = append(posts, p)
			}
			title := fmt.Sprintf("Delete %q?", posts[0].Title())
			if len(posts) > 1 {
				title = fmt.Sprintf("Delete %d posts?", len(posts))
			}
			if err := confirmDelete(cmd, title, "This permanently removes them from history.", yes); err != nil {
				return err
			}
			for _, p := range posts {
				if err := app.Store.Posts.DeletePost(cmd.Context(), p.ID); err != nil {
					return fmt.Errorf("delete %s: %w", p.ID, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted\t%s\n", p.ID)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func confirmDelete(cmd *cobra.Command, title, desc string, yes bool) error {
	if yes {
		return nil
	}
	if f, ok := cmd.InOrStdin().(*os.File); !ok || !term.IsTerminal(f.Fd()) {
		return fmt.Errorf("confirmation required; rerun with --yes")
	}
	confirm := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(desc).
				Value(&confirm),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("aborted")
	}
	return nil
}

func newHistoryExportCmd() *cobra.Command {
	var (
		outputMode string
		outPath    string
		since      string
		until      string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export history as json, ndjson or yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			s, u, err := util.ParseTimeRange(since, until, time.Now())
			if err != nil {
				return err
			}
			out, err := openOutput(cmd, outPath)
			if err != nil {
				return err
			}
			defer out.Close()

			pageSize := app.Cfg.GetInt("history.page_size")
			q := api.PostQuery{Since: s, Until: u}
			switch strings.ToLower(outputMode) {
			case "json":
				jw := format.NewJSONStreamWriter(out, true)
				if err := eachPage(cmd.Context(), app.Store.Posts, q, pageSize, jw.WritePosts); err != nil {
					return err
				}
				return jw.Close()
			case "ndjson":
				return eachPage(cmd.Context(), app.Store.Posts, q, pageSize, func(posts []api.Post) error {
					return format.WriteNDJSONPosts(out, posts)
				})
			case "yaml":
				posts, err := app.Store.Posts.ListPosts(cmd.Context(), q)
				if err != nil {
					return err
				}
				return format.WriteYAMLPosts(out, posts)
			default:
				return fmt.Errorf("invalid --output: %s (json|ndjson|yaml)", outputMode)
			}
		},
	}
	cmd.Flags().StringVar(&outputMode, "output", "json", "export format: json|ndjson|yaml")
	cmd.Flags().StringVarP(&outPath, "out-file", "o", "", "write to a file instead of stdout")
	cmd.Flags().StringVar(&since, "since", "", "only posts after this time")
	cmd.Flags().StringVar(&until, "until", "", "only posts before this time")
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "ndjson", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// eachPage walks posts newest first in pages of size, moving the upper
// bound below the oldest post of each page.
func eachPage(ctx context.Context, posts db.Posts, q api.PostQuery, size int, fn func([]api.Post) error) error {
	if size <= 0 {
		size = 200
	}
	for {
		page, err := posts.ListPosts(ctx, api.PostQuery{Since: q.Since, Until: q.Until, Limit: size})
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		if err := fn(page); err != nil {
			return err
		}
		if len(page) < size {
			return nil
		}
		q.Until = page[len(page)-1].CreatedAt.Add(-time.Nanosecond)
	}
}
