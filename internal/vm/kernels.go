package vm

import (
	"fmt"

	"github.com/axonvm/axon/internal/tensor"
)

// kernels maps every opcode to its implementation. The table is built once
// at package init and checked for completeness, so an opcode added to the
// enum without a kernel fails fast instead of crashing mid-run.
var kernels = buildKernelTable()

func buildKernelTable() [numOpcodes]kernelFunc {
	t := [numOpcodes]kernelFunc{
		OpIn:   opIn,
		OpOut:  opOut,
		OpFree: opFree,

		OpAdd: opAdd,
		OpSub: opSub,
		OpMul: opMul,
		OpDiv: opDiv,
		OpPow: opPow,

		OpNeg:        opNeg,
		OpReciprocal: opReciprocal,
		OpExp:        opExp,
		OpLog:        opLog,
		OpSqrt:       opSqrt,
		OpTanh:       opTanh,
		OpSigmoid:    opSigmoid,
		OpClip:       opClip,

		OpMax:     opMax,
		OpArgMax:  opArgMax,
		OpHardmax: opHardmax,

		OpReduceMax:       opReduceMax,
		OpReduceSum:       opReduceSum,
		OpReduceSumSquare: opReduceSumSquare,
		OpReduceMean:      opReduceMean,
		OpReduceSumTo:     opReduceSumTo,

		OpConv:                          opConv,
		OpConvTranspose:                 opConvTranspose,
		OpConvTransposeWithDynamicShape: opConvTransposeWithDynamicShape,
		OpConvGradWeight:                opConvGradWeight,

		OpIdentity: opIdentity,
		OpRelu:     opRelu,
		OpReluGrad: opReluGrad,
		OpFloor:    opFloor,
		OpCeil:     opCeil,

		OpShape:     opShape,
		OpSize:      opSize,
		OpReshape:   opReshape,
		OpExpand:    opExpand,
		OpSqueeze:   opSqueeze,
		OpUnsqueeze: opUnsqueeze,

		OpSlice:          opSlice,
		OpDynamicSlice:   opDynamicSlice,
		OpGather:         opGather,
		OpSelectItem:     opSelectItem,
		OpSelectItemGrad: opSelectItemGrad,

		OpConcat:    opConcat,
		OpSplit:     opSplit,
		OpTranspose: opTranspose,
		OpPad:       opPad,

		OpSoftmax:    opSoftmax,
		OpLogSoftmax: opLogSoftmax,

		OpMatMul: opMatMul,
		OpGemm:   opGemm,
		OpLSTM:   opLSTM,

		OpEqual:        opEqual,
		OpGreater:      opGreater,
		OpGreaterEqual: opGreaterEqual,
		OpNot:          opNot,
		OpCast:         opCast,

		OpIntScalarConstant:   opIntScalarConstant,
		OpFloatScalarConstant: opFloatScalarConstant,
		OpIntConstant:         opIntConstant,
		OpFloatConstant:       opFloatConstant,

		OpJmp:      opJmp,
		OpJmpTrue:  opJmpTrue,
		OpJmpFalse: opJmpFalse,
	}
	for op := Opcode(0); op < numOpcodes; op++ {
		if t[op] == nil {
			panic(fmt.Sprintf("vm: no kernel registered for opcode %s", op))
		}
	}
	return t
}

// one wraps a single result value.
func one(v *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return []*tensor.RawTensor{v}, nil
}

// scalarLike creates a 0-d constant matching x's dtype and device.
func scalarLike(x *tensor.RawTensor, v float64) *tensor.RawTensor {
	return tensor.Full(tensor.Shape{}, v, x.DType(), x.Device())
}

// intList reads a host integer tensor (Int32 or Int64, any shape) as []int.
func intList(x *tensor.RawTensor) ([]int, error) {
	out := make([]int, x.NumElements())
	switch x.DType() {
	case tensor.Int32:
		for i, v := range x.AsInt32() {
			out[i] = int(v)
		}
	case tensor.Int64:
		for i, v := range x.AsInt64() {
			out[i] = int(v)
		}
	default:
		return nil, fmt.Errorf("expected an integer tensor, got %s", x.DType())
	}
	return out, nil
}

// sigmoidOf computes 1/(1+exp(-x)) through engine primitives.
func (vm *VM) sigmoidOf(x *tensor.RawTensor) *tensor.RawTensor {
	eng := vm.engine
	return eng.Reciprocal(eng.Add(scalarLike(x, 1), eng.Exp(eng.Neg(x))))
}

// tanhOf computes (e^x - e^-x)/(e^x + e^-x) from two exponentials.
func (vm *VM) tanhOf(x *tensor.RawTensor) *tensor.RawTensor {
	eng := vm.engine
	ex := eng.Exp(x)
	enx := eng.Exp(eng.Neg(x))
	return eng.Div(eng.Sub(ex, enx), eng.Add(ex, enx))
}
