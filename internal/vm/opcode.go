package vm

import "fmt"

// Opcode identifies the kernel an instruction invokes. The set is closed:
// the kernel table in kernels.go is checked for completeness when the first
// program is loaded, so adding an opcode without a kernel is caught early.
type Opcode int

const (
	OpIn Opcode = iota
	OpOut
	OpFree

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPow

	OpNeg
	OpReciprocal
	OpExp
	OpLog
	OpSqrt
	OpTanh
	OpSigmoid
	OpClip

	OpMax
	OpArgMax
	OpHardmax

	OpReduceMax
	OpReduceSum
	OpReduceSumSquare
	OpReduceMean
	OpReduceSumTo

	OpConv
	OpConvTranspose
	OpConvTransposeWithDynamicShape
	OpConvGradWeight

	OpIdentity
	OpRelu
	OpReluGrad
	OpFloor
	OpCeil

	OpShape
	OpSize
	OpReshape
	OpExpand
	OpSqueeze
	OpUnsqueeze

	OpSlice
	OpDynamicSlice
	OpGather
	OpSelectItem
	OpSelectItemGrad

	OpConcat
	OpSplit
	OpTranspose
	OpPad

	OpSoftmax
	OpLogSoftmax

	OpMatMul
	OpGemm
	OpLSTM

	OpEqual
	OpGreater
	OpGreaterEqual
	OpNot
	OpCast

	OpIntScalarConstant
	OpFloatScalarConstant
	OpIntConstant
	OpFloatConstant

	OpJmp
	OpJmpTrue
	OpJmpFalse

	numOpcodes // sentinel, keep last
)

var opcodeNames = [numOpcodes]string{
	OpIn:   "In",
	OpOut:  "Out",
	OpFree: "Free",

	OpAdd: "Add",
	OpSub: "Sub",
	OpMul: "Mul",
	OpDiv: "Div",
	OpPow: "Pow",

	OpNeg:        "Neg",
	OpReciprocal: "Reciprocal",
	OpExp:        "Exp",
	OpLog:        "Log",
	OpSqrt:       "Sqrt",
	OpTanh:       "Tanh",
	OpSigmoid:    "Sigmoid",
	OpClip:       "Clip",

	OpMax:     "Max",
	OpArgMax:  "ArgMax",
	OpHardmax: "Hardmax",

	OpReduceMax:       "ReduceMax",
	OpReduceSum:       "ReduceSum",
	OpReduceSumSquare: "ReduceSumSquare",
	OpReduceMean:      "ReduceMean",
	OpReduceSumTo:     "ReduceSumTo",

	OpConv:                          "Conv",
	OpConvTranspose:                 "ConvTranspose",
	OpConvTransposeWithDynamicShape: "ConvTransposeWithDynamicShape",
	OpConvGradWeight:                "ConvGradWeight",

	OpIdentity: "Identity",
	OpRelu:     "Relu",
	OpReluGrad: "ReluGrad",
	OpFloor:    "Floor",
	OpCeil:     "Ceil",

	OpShape:     "Shape",
	OpSize:      "Size",
	OpReshape:   "Reshape",
	OpExpand:    "Expand",
	OpSqueeze:   "Squeeze",
	OpUnsqueeze: "Unsqueeze",

	OpSlice:          "Slice",
	OpDynamicSlice:   "DynamicSlice",
	OpGather:         "Gather",
	OpSelectItem:     "SelectItem",
	OpSelectItemGrad: "SelectItemGrad",

	OpConcat:    "Concat",
	OpSplit:     "Split",
	OpTranspose: "Transpose",
	OpPad:       "Pad",

	OpSoftmax:    "Softmax",
	OpLogSoftmax: "LogSoftmax",

	OpMatMul: "MatMul",
	OpGemm:   "Gemm",
	OpLSTM:   "LSTM",

	OpEqual:        "Equal",
	OpGreater:      "Greater",
	OpGreaterEqual: "GreaterEqual",
	OpNot:          "Not",
	OpCast:         "Cast",

	OpIntScalarConstant:   "IntScalarConstant",
	OpFloatScalarConstant: "FloatScalarConstant",
	OpIntConstant:         "IntConstant",
	OpFloatConstant:       "FloatConstant",

	OpJmp:      "Jmp",
	OpJmpTrue:  "JmpTrue",
	OpJmpFalse: "JmpFalse",
}

// String returns the opcode's mnemonic.
func (op Opcode) String() string {
	if op < 0 || op >= numOpcodes {
		return fmt.Sprintf("Opcode(%d)", int(op))
	}
	return opcodeNames[op]
}

// Valid reports whether the opcode is a member of the closed set.
func (op Opcode) Valid() bool {
	return op >= 0 && op < numOpcodes
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, numOpcodes)
	for op := Opcode(0); op < numOpcodes; op++ {
		m[opcodeNames[op]] = op
	}
	return m
}()

// ParseOpcode resolves a mnemonic to its opcode.
func ParseOpcode(name string) (Opcode, error) {
	op, ok := opcodeByName[name]
	if !ok {
		return 0, fmt.Errorf("unknown opcode %q", name)
	}
	return op, nil
}

// arity describes how many inputs and outputs an opcode takes. maxIn < 0
// means variadic. Optional trailing inputs are encoded as variable id -1 by
// the compiler, so minIn counts only the required prefix.
type arity struct {
	minIn, maxIn int
	out          int
}

var opcodeArity = [numOpcodes]arity{
	OpIn:   {0, 0, 1},
	OpOut:  {1, 1, 0},
	OpFree: {0, 0, 0},

	OpAdd: {2, 2, 1},
	OpSub: {2, 2, 1},
	OpMul: {2, 2, 1},
	OpDiv: {2, 2, 1},
	OpPow: {2, 2, 1},

	OpNeg:        {1, 1, 1},
	OpReciprocal: {1, 1, 1},
	OpExp:        {1, 1, 1},
	OpLog:        {1, 1, 1},
	OpSqrt:       {1, 1, 1},
	OpTanh:       {1, 1, 1},
	OpSigmoid:    {1, 1, 1},
	OpClip:       {1, 1, 1},

	OpMax:     {1, -1, 1},
	OpArgMax:  {1, 1, 1},
	OpHardmax: {1, 1, 1},

	OpReduceMax:       {1, 1, 1},
	OpReduceSum:       {1, 1, 1},
	OpReduceSumSquare: {1, 1, 1},
	OpReduceMean:      {1, 1, 1},
	OpReduceSumTo:     {2, 2, 1},

	OpConv:                          {2, 3, 1},
	OpConvTranspose:                 {2, 3, 1},
	OpConvTransposeWithDynamicShape: {3, 3, 1},
	OpConvGradWeight:                {3, 3, 1},

	OpIdentity: {1, 1, 1},
	OpRelu:     {1, 1, 1},
	OpReluGrad: {2, 2, 1},
	OpFloor:    {1, 1, 1},
	OpCeil:     {1, 1, 1},

	OpShape:     {1, 1, 1},
	OpSize:      {1, 1, 1},
	OpReshape:   {2, 2, 1},
	OpExpand:    {2, 2, 1},
	OpSqueeze:   {1, 1, 1},
	OpUnsqueeze: {1, 1, 1},

	OpSlice:          {1, 1, 1},
	OpDynamicSlice:   {3, 4, 1},
	OpGather:         {2, 2, 1},
	OpSelectItem:     {2, 2, 1},
	OpSelectItemGrad: {3, 3, 1},

	OpConcat:    {1, -1, 1},
	OpSplit:     {1, 1, -1},
	OpTranspose: {1, 1, 1},
	OpPad:       {1, 1, 1},

	OpSoftmax:    {1, 1, 1},
	OpLogSoftmax: {1, 1, 1},

	OpMatMul: {2, 2, 1},
	OpGemm:   {3, 3, 1},
	OpLSTM:   {3, 8, 3},

	OpEqual:        {2, 2, 1},
	OpGreater:      {2, 2, 1},
	OpGreaterEqual: {2, 2, 1},
	OpNot:          {1, 1, 1},
	OpCast:         {1, 1, 1},

	OpIntScalarConstant:   {0, 0, 1},
	OpFloatScalarConstant: {0, 0, 1},
	OpIntConstant:         {0, 0, 1},
	OpFloatConstant:       {0, 0, 1},

	OpJmp:      {0, 0, 0},
	OpJmpTrue:  {1, 1, 0},
	OpJmpFalse: {1, 1, 0},
}
