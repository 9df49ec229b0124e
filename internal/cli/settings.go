package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"books-search/internal/usecase/settings"
)

func (c *CLI) settingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the persisted settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every setting with its effective value",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				env, err := c.session(cmd.Context())
				if err != nil {
					return err
				}
				snap, err := env.Store.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, key := range settings.Keys() {
					value := snap[key]
					if value == "" {
						value = "-"
					}
					fmt.Fprintf(tw, "%s\t%s\n", key, value)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := settings.ParseKey(args[0])
				if err != nil {
					return friendly(err)
				}
				env, err := c.session(cmd.Context())
				if err != nil {
					return err
				}
				value, err := env.Store.String(cmd.Context(), key)
				if err != nil {
					return friendly(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change one setting; filter changes reload the results",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := settings.ParseKey(args[0])
				if err != nil {
					return friendly(err)
				}
				env, err := c.session(cmd.Context())
				if err != nil {
					return err
				}
				if err := env.Store.Set(cmd.Context(), key, args[1]); err != nil {
					return friendly(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Return every setting to its default",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				env, err := c.session(cmd.Context())
				if err != nil {
					return err
				}
				if err := env.Store.Reset(cmd.Context()); err != nil {
					return friendly(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "settings reset to defaults")
				return nil
			},
		},
	)
	return cmd
}
