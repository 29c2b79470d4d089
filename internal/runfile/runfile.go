// Package runfile loads YAML run files: a textual description of a compiled
// program plus literal input tensors, used by the CLI and by tests.
package runfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/axonvm/axon/internal/tensor"
	"github.com/axonvm/axon/internal/vm"
)

// File is a loaded run file: the program and the input tensors to feed it.
type File struct {
	Name    string
	Program *vm.Program
	Inputs  map[string]*tensor.RawTensor
}

// Load reads and parses a run file from disk.
//
//nolint:gosec // G304: Path is provided by user, file inclusion is intentional.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}
	return Parse(data)
}

// Parse parses a run file from YAML bytes.
func Parse(data []byte) (*File, error) {
	var doc fileYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse run file: %w", err)
	}

	prog := &vm.Program{}
	for i, iy := range doc.Program {
		inst, err := iy.instruction()
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		switch inst.Op {
		case vm.OpIn:
			prog.InputNames = append(prog.InputNames, inst.Attr.Name)
		case vm.OpOut:
			prog.OutputNames = append(prog.OutputNames, inst.Attr.Name)
		}
		prog.Insts = append(prog.Insts, inst)
	}
	if err := prog.Validate(); err != nil {
		return nil, err
	}

	inputs := make(map[string]*tensor.RawTensor, len(doc.Inputs))
	for name, ty := range doc.Inputs {
		rt, err := ty.tensor()
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", name, err)
		}
		inputs[name] = rt
	}

	return &File{Name: doc.Name, Program: prog, Inputs: inputs}, nil
}

type fileYAML struct {
	Name    string                `yaml:"name"`
	Inputs  map[string]tensorYAML `yaml:"inputs"`
	Program []instructionYAML     `yaml:"program"`
}

// instructionYAML mirrors vm.Attr with YAML keys. The generic "value" node is
// decoded per opcode: an int, a float, or a list of either.
type instructionYAML struct {
	Op  string `yaml:"op"`
	In  []int  `yaml:"in"`
	Out []int  `yaml:"out"`

	Name        string    `yaml:"name"`
	Var         int       `yaml:"var"`
	Axis        int       `yaml:"axis"`
	Axes        []int     `yaml:"axes"`
	Keepdims    bool      `yaml:"keepdims"`
	Strides     []int     `yaml:"strides"`
	Pads        []int     `yaml:"pads"`
	OutputShape []int     `yaml:"output_shape"`
	Perm        []int     `yaml:"perm"`
	Starts      []int     `yaml:"starts"`
	Ends        []int     `yaml:"ends"`
	SplitLens   []int     `yaml:"split"`
	Alpha       *float64  `yaml:"alpha"`
	Beta        *float64  `yaml:"beta"`
	TransA      bool      `yaml:"trans_a"`
	TransB      bool      `yaml:"trans_b"`
	Min         float64   `yaml:"min"`
	Max         float64   `yaml:"max"`
	To          string    `yaml:"to"`
	DType       string    `yaml:"dtype"`
	Shape       []int     `yaml:"shape"`
	Value       yaml.Node `yaml:"value"`
	Host        bool      `yaml:"host"`
	Target      int       `yaml:"target"`
}

func (iy *instructionYAML) instruction() (vm.Instruction, error) {
	op, err := vm.ParseOpcode(iy.Op)
	if err != nil {
		return vm.Instruction{}, err
	}

	attr := vm.Attr{
		Name:        iy.Name,
		Var:         iy.Var,
		Axis:        iy.Axis,
		Axes:        iy.Axes,
		Keepdims:    iy.Keepdims,
		Strides:     iy.Strides,
		Pads:        iy.Pads,
		OutputShape: iy.OutputShape,
		Perm:        iy.Perm,
		Starts:      iy.Starts,
		Ends:        iy.Ends,
		SplitLens:   iy.SplitLens,
		Alpha:       1,
		Beta:        1,
		TransA:      iy.TransA,
		TransB:      iy.TransB,
		Min:         iy.Min,
		Max:         iy.Max,
		Shape:       iy.Shape,
		Host:        iy.Host,
		Jump:        iy.Target,
	}
	if iy.Alpha != nil {
		attr.Alpha = *iy.Alpha
	}
	if iy.Beta != nil {
		attr.Beta = *iy.Beta
	}
	if iy.To != "" {
		if attr.To, err = parseDType(iy.To); err != nil {
			return vm.Instruction{}, err
		}
	}
	if iy.DType != "" {
		if attr.DType, err = parseDType(iy.DType); err != nil {
			return vm.Instruction{}, err
		}
	}

	// The "value" node's shape depends on the opcode.
	switch op {
	case vm.OpIntScalarConstant:
		err = iy.decodeValue(&attr.IntValue)
	case vm.OpFloatScalarConstant:
		err = iy.decodeValue(&attr.FloatValue)
	case vm.OpIntConstant:
		err = iy.decodeValue(&attr.IntData)
	case vm.OpFloatConstant:
		err = iy.decodeValue(&attr.FloatData)
	case vm.OpPad:
		if !iy.Value.IsZero() {
			err = iy.Value.Decode(&attr.PadValue)
		}
	}
	if err != nil {
		return vm.Instruction{}, err
	}

	return vm.Instruction{Op: op, Attr: attr, Inputs: iy.In, Outputs: iy.Out}, nil
}

func (iy *instructionYAML) decodeValue(dst any) error {
	if iy.Value.IsZero() {
		return fmt.Errorf("%s requires a value", iy.Op)
	}
	if err := iy.Value.Decode(dst); err != nil {
		return fmt.Errorf("%s value: %w", iy.Op, err)
	}
	return nil
}

type tensorYAML struct {
	DType string    `yaml:"dtype"`
	Shape []int     `yaml:"shape"`
	Data  yaml.Node `yaml:"data"`
	Host  bool      `yaml:"host"`
}

func (ty *tensorYAML) tensor() (*tensor.RawTensor, error) {
	dt := tensor.Float32
	if ty.DType != "" {
		var err error
		if dt, err = parseDType(ty.DType); err != nil {
			return nil, err
		}
	}
	device := tensor.CPU
	if ty.Host {
		device = tensor.Host
	}
	shape := tensor.Shape(ty.Shape)

	switch dt {
	case tensor.Float32:
		var data []float32
		if err := ty.Data.Decode(&data); err != nil {
			return nil, err
		}
		return tensor.FromFloat32s(data, shape, device)
	case tensor.Float64:
		var data []float64
		if err := ty.Data.Decode(&data); err != nil {
			return nil, err
		}
		return tensor.FromFloat64s(data, shape, device)
	case tensor.Int32:
		var data []int32
		if err := ty.Data.Decode(&data); err != nil {
			return nil, err
		}
		return tensor.FromInt32s(data, shape, device)
	case tensor.Int64:
		var data []int64
		if err := ty.Data.Decode(&data); err != nil {
			return nil, err
		}
		return tensor.FromInt64s(data, shape, device)
	case tensor.Bool:
		var data []bool
		if err := ty.Data.Decode(&data); err != nil {
			return nil, err
		}
		return tensor.FromBools(data, shape, device)
	default:
		return nil, fmt.Errorf("unsupported input dtype %s", dt)
	}
}

func parseDType(s string) (tensor.DataType, error) {
	switch s {
	case "float32":
		return tensor.Float32, nil
	case "float64":
		return tensor.Float64, nil
	case "int32":
		return tensor.Int32, nil
	case "int64":
		return tensor.Int64, nil
	case "uint8":
		return tensor.Uint8, nil
	case "bool":
		return tensor.Bool, nil
	default:
		return 0, fmt.Errorf("unknown dtype %q", s)
	}
}
