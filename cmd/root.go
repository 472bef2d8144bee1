package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "stalesweep",
		Short: "Stale issue and PR lifecycle manager",
		Long: `A CLI tool meant to run on a schedule. It scans the open issues and
pull requests of the configured repositories, marks inactive ones stale,
and closes entities that stay stale past the close threshold.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweep(cmd, opts)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Add run flags to root command so `stalesweep` and `stalesweep run`
	// work identically
	addRunFlags(rootCmd, opts)

	// Register subcommands
	rootCmd.AddCommand(NewCmdRun(opts))
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdHistory())
	rootCmd.AddCommand(NewCmdRateLimit())
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}
