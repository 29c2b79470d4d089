package vm

import (
	"fmt"

	"github.com/axonvm/axon/internal/tensor"
)

type slotState uint8

const (
	slotEmpty slotState = iota // never produced
	slotLive                   // holds a value
	slotFreed                  // explicitly released
)

type slot struct {
	state slotState
	value *tensor.RawTensor
}

// State is the register file of a single run: one slot per variable id,
// the program counter, and the external input/output bindings. Slots are
// single-assignment; a freed or never-produced slot may not be read, and
// reading one is a checked error rather than silent corruption.
type State struct {
	slots   []slot
	pc      int
	inputs  map[string]*tensor.RawTensor
	outputs map[string]*tensor.RawTensor
}

func newState(numVars int, inputs map[string]*tensor.RawTensor) *State {
	return &State{
		slots:   make([]slot, numVars),
		inputs:  inputs,
		outputs: make(map[string]*tensor.RawTensor),
	}
}

// Input returns the externally bound value for name. Reading an input is
// never destructive; the same name may be read by many instructions.
func (st *State) Input(name string) (*tensor.RawTensor, error) {
	v, ok := st.inputs[name]
	if !ok {
		return nil, fmt.Errorf("input %q was not bound", name)
	}
	return v, nil
}

// Output records value as the program's named output, overwriting any
// previous binding. Ownership stays with the producing register.
func (st *State) Output(name string, value *tensor.RawTensor) {
	st.outputs[name] = value
}

// Get reads the live value of a variable.
func (st *State) Get(id int) (*tensor.RawTensor, error) {
	if id < 0 || id >= len(st.slots) {
		return nil, fmt.Errorf("variable id %d out of range", id)
	}
	switch st.slots[id].state {
	case slotLive:
		return st.slots[id].value, nil
	case slotFreed:
		return nil, fmt.Errorf("use of freed variable %d", id)
	default:
		return nil, fmt.Errorf("use of unproduced variable %d", id)
	}
}

// Set stores the value produced for a variable. Each id is produced at most
// once per run.
func (st *State) Set(id int, value *tensor.RawTensor) error {
	if id < 0 || id >= len(st.slots) {
		return fmt.Errorf("variable id %d out of range", id)
	}
	if st.slots[id].state != slotEmpty {
		return fmt.Errorf("variable %d produced twice", id)
	}
	st.slots[id] = slot{state: slotLive, value: value}
	return nil
}

// FreeVar discards the stored value for a variable. Freeing a variable that
// was never produced, or freeing it twice, is a fatal error.
func (st *State) FreeVar(id int) error {
	if id < 0 || id >= len(st.slots) {
		return fmt.Errorf("variable id %d out of range", id)
	}
	switch st.slots[id].state {
	case slotLive:
		st.slots[id] = slot{state: slotFreed}
		return nil
	case slotFreed:
		return fmt.Errorf("double free of variable %d", id)
	default:
		return fmt.Errorf("free of unproduced variable %d", id)
	}
}

// PC returns the current instruction index.
func (st *State) PC() int {
	return st.pc
}

// SetPC overrides the dispatcher's default advance for the current step.
// See VM.Run for the increment-compensation convention.
func (st *State) SetPC(pc int) {
	st.pc = pc
}
