package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/axonvm/axon/internal/backend/cpu"
	"github.com/axonvm/axon/internal/runfile"
	"github.com/axonvm/axon/internal/tensor"
	"github.com/axonvm/axon/internal/vm"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file.yaml>",
		Short: "Execute a run file and print its outputs",
		Long: `Execute a run file: a YAML description of a compiled program plus the
input tensors to feed it. Outputs are printed in declaration order.

Example:
  axon run examples/mlp.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(cmd, args[0])
		},
	}

	return cmd
}

func runProgram(cmd *cobra.Command, path string) error {
	f, err := runfile.Load(path)
	if err != nil {
		return err
	}

	outputs, err := vm.New(cpu.New()).Run(f.Program, f.Inputs)
	if err != nil {
		return err
	}

	for _, name := range f.Program.OutputNames {
		out, ok := outputs[name]
		if !ok {
			// Skipped by a jump.
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, formatTensor(out))
	}
	return nil
}

// formatTensor renders a tensor as dtype[shape] = [elements].
func formatTensor(t *tensor.RawTensor) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s%v = ", t.DType(), []int(t.Shape()))

	switch t.DType() {
	case tensor.Float32:
		fmt.Fprintf(&sb, "%v", t.AsFloat32())
	case tensor.Float64:
		fmt.Fprintf(&sb, "%v", t.AsFloat64())
	case tensor.Int32:
		fmt.Fprintf(&sb, "%v", t.AsInt32())
	case tensor.Int64:
		fmt.Fprintf(&sb, "%v", t.AsInt64())
	case tensor.Uint8:
		fmt.Fprintf(&sb, "%v", t.AsUint8())
	case tensor.Bool:
		fmt.Fprintf(&sb, "%v", t.AsBool())
	}
	return sb.String()
}
