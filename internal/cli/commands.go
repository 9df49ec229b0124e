package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"books-search/internal/domain/entity"
	"books-search/internal/usecase/browse"
	"books-search/internal/usecase/settings"
)

func (c *CLI) searchCommand() *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search the catalog and show the first page",
		Long:  "Search the catalog. Repeating the last query keeps the current page.\n\n" + keywordHelp(),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if in != "" {
				kf, err := entity.ParseKeywordFilter(in)
				if err != nil {
					return friendly(err)
				}
				query = kf.Apply(query)
			}
			env, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := env.Session.Search(cmd.Context(), query)
			return c.display(cmd, env, snap, err)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "restrict the query to a field (intitle, inauthor, ...)")
	return cmd
}

func keywordHelp() string {
	var b strings.Builder
	b.WriteString("Fields for --in:\n")
	for _, kf := range entity.KeywordFilters {
		fmt.Fprintf(&b, "  %-12s %s\n", kf.Filter, kf.Description)
	}
	return b.String()
}

func (c *CLI) pageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "page <first|previous|next|last|N>",
		Short: "Move to another page of the last search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, page, err := browse.ParseAction(args[0])
			if err != nil {
				return friendly(err)
			}
			if action == browse.ActionJump && page == 0 {
				return errors.New("jump needs a page number, e.g. 'page 3'")
			}
			env, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := env.Session.Page(cmd.Context(), action, page)
			return c.display(cmd, env, snap, err)
		},
	}
}

func (c *CLI) reloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Fetch the current page again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := env.Session.Reload(cmd.Context())
			return c.display(cmd, env, snap, err)
		},
	}
}

func (c *CLI) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the current page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := c.current(cmd.Context(), env)
			return c.display(cmd, env, snap, err)
		},
	}
}

func (c *CLI) presentCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "present <list|grid>",
		Short:     "Switch between the list and the grid rendering",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"list", "grid"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := browse.ParsePresentationKind(args[0])
			if !ok {
				return fmt.Errorf("unknown presentation %q, use list or grid", args[0])
			}
			env, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := env.Session.Present(cmd.Context(), kind)
			if err != nil {
				return c.display(cmd, env, snap, err)
			}
			if len(snap.Rows) == 0 && env.Session.Controller().State() == browse.StateIdle {
				snap, err = c.current(cmd.Context(), env)
			}
			return c.display(cmd, env, snap, err)
		},
	}
}

func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <row>",
		Short: "Show the details of a row on the current page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("row must be a number, got %q", args[0])
			}
			env, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := c.current(cmd.Context(), env); err != nil {
				return friendly(err)
			}
			book, err := env.Session.Row(index)
			if err != nil {
				return friendly(err)
			}
			renderDetail(cmd.OutOrStdout(), index, book)
			return nil
		},
	}
}

// current returns the active view. A fresh process has nothing displayed
// yet, so the last search is fetched again.
func (c *CLI) current(ctx context.Context, env *Env) (browse.Snapshot, error) {
	if env.Session.Controller().State() != browse.StateIdle {
		return env.Session.View(), nil
	}
	return env.Session.Reload(ctx)
}

// display renders a session result. A result that is still loading is shown
// as far as it got.
func (c *CLI) display(cmd *cobra.Command, env *Env, snap browse.Snapshot, err error) error {
	settled := true
	if errors.Is(err, browse.ErrNotSettled) {
		settled = false
	} else if err != nil {
		return friendly(err)
	}

	ctl := env.Session.Controller()
	query := ctl.Query()
	if query == "" {
		query, _ = env.Store.String(cmd.Context(), settings.KeyLastSearchQuery)
	}
	renderView(cmd.OutOrStdout(), view{
		Query:        query,
		State:        ctl.State(),
		Presentation: ctl.ActivePresentation(),
		Snapshot:     snap,
		Settled:      settled,
	})
	return nil
}
