// Package cli implements the axon command line interface.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the root command for the axon CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "axon",
		Short: "Axon - a register VM for compiled tensor programs",
		Long: `Axon executes compiled tensor programs: linear instruction sequences
over a register file of array values, with explicit lifetime management
and conditional jumps.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbosity := 0
			if opts.Verbose {
				verbosity = 2
			}
			commonlog.Configure(verbosity, nil)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
