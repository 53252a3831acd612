package templates

import "github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"

type SlotState uint8

const (
	SlotUndeduced SlotState = iota
	SlotDeduced
	SlotFailed
)

type Slot struct {
	State SlotState
	Arg   types.Arg
}

// DeductionState has one slot per template parameter. A deduced slot is
// never overwritten: a later, unequal binding fails the slot instead.
type DeductionState struct {
	Slots []Slot
}

func NewDeductionState(params int) *DeductionState {
	return &DeductionState{Slots: make([]Slot, params)}
}

// Bind records arg for parameter i. It returns false when the slot already
// holds a different value; the slot is then marked failed.
func (s *DeductionState) Bind(i int, arg types.Arg) bool {
	slot := &s.Slots[i]
	switch slot.State {
	case SlotUndeduced:
		slot.State = SlotDeduced
		slot.Arg = arg
		return true
	case SlotDeduced:
		if slot.Arg == arg {
			return true
		}
		slot.State = SlotFailed
		return false
	}
	return false
}

// Deduced returns the value of parameter i when known.
func (s *DeductionState) Deduced(i int) (types.Arg, bool) {
	if i < 0 || i >= len(s.Slots) || s.Slots[i].State != SlotDeduced {
		return types.Arg{}, false
	}
	return s.Slots[i].Arg, true
}

// FirstUndeduced returns the first parameter without a value, or -1.
func (s *DeductionState) FirstUndeduced() int {
	for i, slot := range s.Slots {
		if slot.State != SlotDeduced {
			return i
		}
	}
	return -1
}

// Args returns the deduced values in parameter order. It must only be
// called on a complete state.
func (s *DeductionState) Args() []types.Arg {
	out := make([]types.Arg, len(s.Slots))
	for i, slot := range s.Slots {
		out[i] = slot.Arg
	}
	return out
}
