package vm

import (
	"fmt"

	"github.com/axonvm/axon/internal/tensor"
)

func convAttrs(a *Attr) (strides, pads []int) {
	strides = a.Strides
	if len(strides) == 0 {
		strides = []int{1, 1}
	}
	pads = a.Pads
	if len(pads) == 0 {
		pads = []int{0, 0}
	}
	return strides, pads
}

func opConv(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	strides, pads := convAttrs(&inst.Attr)
	var bias *tensor.RawTensor
	if len(in) > 2 {
		bias = in[2]
	}
	return one(vm.engine.Conv(in[0], in[1], bias, strides, pads))
}

// convTransposeOutSize interprets an output-shape hint. A hint as long as
// x's rank is a full NCHW shape whose spatial tail is used; a shorter one is
// already spatial-only. No hint means the engine derives the size.
func convTransposeOutSize(hint []int, xRank int) []int {
	if len(hint) == 0 {
		return nil
	}
	if len(hint) == xRank {
		return hint[2:]
	}
	return hint
}

func opConvTranspose(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	strides, pads := convAttrs(&inst.Attr)
	var bias *tensor.RawTensor
	if len(in) > 2 {
		bias = in[2]
	}
	outSize := convTransposeOutSize(inst.Attr.OutputShape, len(in[0].Shape()))
	return one(vm.engine.ConvTranspose(in[0], in[1], bias, strides, pads, outSize))
}

// opConvTransposeWithDynamicShape reads the output-shape hint from a runtime
// integer array instead of a static attribute.
func opConvTransposeWithDynamicShape(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	strides, pads := convAttrs(&inst.Attr)
	hint, err := intList(in[2])
	if err != nil {
		return nil, fmt.Errorf("convtranspose: %w", err)
	}
	outSize := convTransposeOutSize(hint, len(in[0].Shape()))
	return one(vm.engine.ConvTranspose(in[0], in[1], nil, strides, pads, outSize))
}

// opConvGradWeight computes the weight gradient; the first input supplies
// only the weight's shape and dtype.
func opConvGradWeight(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	strides, pads := convAttrs(&inst.Attr)
	w, x, gy := in[0], in[1], in[2]
	return one(vm.engine.ConvGradWeight(w.Shape(), w.DType(), x, gy, strides, pads))
}
