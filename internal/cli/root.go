package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the instarchive command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "instarchive",
		Short: "Archive Instagram users and their stories",
		Long: `instarchive keeps a Postgres archive of Instagram users and their stories
and serves it over a JSON API.

Configuration is read from the environment, optionally seeded from a .env file.`,
		SilenceUsage: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newCreateSuperuserCmd(),
	)
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
