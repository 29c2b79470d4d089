package vm

import (
	"fmt"

	"github.com/axonvm/axon/internal/tensor"
)

func constDevice(a *Attr) tensor.Device {
	if a.Host {
		return tensor.Host
	}
	return tensor.CPU
}

// opIntScalarConstant materializes a 0-d integer-valued constant of
// Attr.DType, on the host device when Attr.Host is set.
func opIntScalarConstant(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	a := &inst.Attr
	if a.DType == tensor.Int64 {
		r := tensor.Zeros(tensor.Shape{}, tensor.Int64, constDevice(a))
		r.AsInt64()[0] = a.IntValue
		return one(r)
	}
	return one(tensor.Full(tensor.Shape{}, float64(a.IntValue), a.DType, constDevice(a)))
}

func opFloatScalarConstant(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	a := &inst.Attr
	return one(tensor.Full(tensor.Shape{}, a.FloatValue, a.DType, constDevice(a)))
}

// opIntConstant materializes an integer array constant from Attr.IntData
// with shape Attr.Shape, cast to Attr.DType when it is not Int64.
func opIntConstant(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	a := &inst.Attr
	r, err := tensor.FromInt64s(a.IntData, tensor.Shape(a.Shape), constDevice(a))
	if err != nil {
		return nil, fmt.Errorf("intconstant: %w", err)
	}
	if a.DType != tensor.Int64 {
		r = vm.engine.Cast(r, a.DType)
	}
	return one(r)
}

// opFloatConstant materializes a floating array constant from
// Attr.FloatData, cast to Attr.DType when it is not Float64.
func opFloatConstant(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	a := &inst.Attr
	r, err := tensor.FromFloat64s(a.FloatData, tensor.Shape(a.Shape), constDevice(a))
	if err != nil {
		return nil, fmt.Errorf("floatconstant: %w", err)
	}
	if a.DType != tensor.Float64 {
		r = vm.engine.Cast(r, a.DType)
	}
	return one(r)
}
