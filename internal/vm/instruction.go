package vm

import (
	"fmt"
	"strings"

	"github.com/axonvm/axon/internal/tensor"
)

// Attr is the static attribute payload of an instruction, baked in by the
// compiler. It is a single flat record; each opcode reads only the fields
// its kernel documents and ignores the rest.
type Attr struct {
	// Name is the external binding name for In and Out.
	Name string

	// Var is the variable id released by Free.
	Var int

	// Axis-based kernels: ArgMax, Hardmax, Gather, Softmax, LogSoftmax,
	// Concat, Split, SelectItem-family.
	Axis int
	// Axes: reductions, Squeeze, Unsqueeze, static Slice.
	Axes []int
	Keepdims bool

	// Convolution family.
	Strides     []int
	Pads        []int
	OutputShape []int

	// Transpose.
	Perm []int

	// Static Slice.
	Starts []int
	Ends   []int

	// Split segment lengths; empty means divide evenly by output count.
	SplitLens []int

	// Gemm.
	Alpha  float64
	Beta   float64
	TransA bool
	TransB bool

	// Clip bounds.
	Min float64
	Max float64

	// Cast target.
	To tensor.DataType

	// Constant materialization.
	DType      tensor.DataType
	Shape      []int
	IntValue   int64
	FloatValue float64
	IntData    []int64
	FloatData  []float64
	Host       bool

	// Pad fill value.
	PadValue float64

	// Jump target instruction index (absolute).
	Jump int
}

// Instruction is one step of a compiled program: an opcode, its static
// attributes, and the ordered variable ids it reads and produces. Optional
// trailing inputs are encoded as id -1 and resolve to nil at dispatch.
type Instruction struct {
	Op      Opcode
	Attr    Attr
	Inputs  []int
	Outputs []int
}

// requiredInputs counts the non-optional prefix of the input list.
func (inst *Instruction) requiredInputs() int {
	n := 0
	for _, id := range inst.Inputs {
		if id >= 0 {
			n++
		}
	}
	return n
}

// String renders the instruction in disassembly form.
func (inst *Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(inst.Op.String())
	if a := inst.attrString(); a != "" {
		sb.WriteString("(")
		sb.WriteString(a)
		sb.WriteString(")")
	}
	if len(inst.Inputs) > 0 {
		fmt.Fprintf(&sb, " in=%v", inst.Inputs)
	}
	if len(inst.Outputs) > 0 {
		fmt.Fprintf(&sb, " out=%v", inst.Outputs)
	}
	return sb.String()
}

func (inst *Instruction) attrString() string {
	var parts []string
	add := func(format string, args ...any) {
		parts = append(parts, fmt.Sprintf(format, args...))
	}
	a := &inst.Attr

	switch inst.Op {
	case OpIn, OpOut:
		add("%q", a.Name)
	case OpFree:
		add("v%d", a.Var)
	case OpArgMax:
		add("axis=%d", a.Axis)
		if a.Keepdims {
			add("keepdims")
		}
	case OpHardmax, OpGather, OpSoftmax, OpLogSoftmax, OpConcat:
		add("axis=%d", a.Axis)
	case OpTranspose:
		if len(a.Perm) > 0 {
			add("perm=%v", a.Perm)
		}
	case OpReduceMax, OpReduceSum, OpReduceSumSquare, OpReduceMean:
		add("axes=%v", a.Axes)
		if a.Keepdims {
			add("keepdims")
		}
	case OpSqueeze, OpUnsqueeze:
		add("axes=%v", a.Axes)
	case OpConv, OpConvGradWeight:
		add("strides=%v pads=%v", a.Strides, a.Pads)
	case OpConvTranspose:
		add("strides=%v pads=%v", a.Strides, a.Pads)
		if len(a.OutputShape) > 0 {
			add("shape=%v", a.OutputShape)
		}
	case OpConvTransposeWithDynamicShape:
		add("strides=%v pads=%v", a.Strides, a.Pads)
	case OpSlice:
		add("axes=%v starts=%v ends=%v", a.Axes, a.Starts, a.Ends)
	case OpSplit:
		add("axis=%d", a.Axis)
		if len(a.SplitLens) > 0 {
			add("lens=%v", a.SplitLens)
		}
	case OpPad:
		add("pads=%v value=%v", a.Pads, a.PadValue)
	case OpClip:
		add("min=%v max=%v", a.Min, a.Max)
	case OpGemm:
		add("alpha=%v beta=%v transA=%v transB=%v", a.Alpha, a.Beta, a.TransA, a.TransB)
	case OpCast:
		add("to=%s", a.To)
	case OpIntScalarConstant:
		add("value=%d dtype=%s host=%v", a.IntValue, a.DType, a.Host)
	case OpFloatScalarConstant:
		add("value=%v dtype=%s host=%v", a.FloatValue, a.DType, a.Host)
	case OpIntConstant, OpFloatConstant:
		add("shape=%v dtype=%s host=%v", a.Shape, a.DType, a.Host)
	case OpJmp, OpJmpTrue, OpJmpFalse:
		add("target=%d", a.Jump)
	}

	return strings.Join(parts, " ")
}
