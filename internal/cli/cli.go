// Package cli implements the books command line client: search the catalog,
// page through results, inspect a record and edit the persisted settings.
//
// Every invocation works on the same settings database, so a search in one
// process can be paged through in the next.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"books-search/internal/app"
	"books-search/internal/config"
	"books-search/internal/usecase/browse"
	"books-search/internal/usecase/settings"
)

// Env is what the commands operate on.
type Env struct {
	Session *browse.Session
	Store   *settings.Store
	Close   func() error
}

// Opener creates the Env on first use. Commands that never touch the
// session (help, version) do not open the settings database.
type Opener func(ctx context.Context, logger *slog.Logger) (*Env, error)

// DefaultOpener loads the configuration and wires a full session.
func DefaultOpener(ctx context.Context, logger *slog.Logger) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Env{Session: a.Session, Store: a.Store, Close: a.Close}, nil
}

// CLI holds the lazily opened Env shared by all commands of one process.
type CLI struct {
	version string
	open    Opener
	logger  *slog.Logger
	env     *Env
}

// New creates a CLI. open defaults to DefaultOpener.
func New(version string, open Opener, logger *slog.Logger) *CLI {
	if open == nil {
		open = DefaultOpener
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CLI{version: version, open: open, logger: logger}
}

// Command builds the root command.
func (c *CLI) Command() *cobra.Command {
	root := c.root()
	root.AddCommand(c.shellCommand())
	return root
}

// Close releases the Env, if it was opened.
func (c *CLI) Close() error {
	if c.env == nil || c.env.Close == nil {
		return nil
	}
	err := c.env.Close()
	c.env = nil
	return err
}

// root builds every command except shell, which reuses this tree per line.
func (c *CLI) root() *cobra.Command {
	root := &cobra.Command{
		Use:           "books",
		Short:         "Search and browse the books catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		c.searchCommand(),
		c.pageCommand(),
		c.showCommand(),
		c.reloadCommand(),
		c.presentCommand(),
		c.viewCommand(),
		c.settingsCommand(),
		c.versionCommand(),
	)
	return root
}

func (c *CLI) session(ctx context.Context) (*Env, error) {
	if c.env != nil {
		return c.env, nil
	}
	env, err := c.open(ctx, c.logger)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	c.env = env
	return env, nil
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "books", c.version)
		},
	}
}
