package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axonvm/axon/internal/runfile"
)

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dump <file.yaml>",
		Short:         "Print the disassembly of a run file's program",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := runfile.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), f.Program.Dump())
			return nil
		},
	}

	return cmd
}
