package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the copydesk CLI. Run without a
// subcommand it serves.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copydesk",
		Short: "copydesk - account-gated marketing copy generator",
		Long: `copydesk serves a small website where signed-in users generate blog
posts, emails and social media posts through a text-completion API.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
