package instr_test

import (
	"fmt"

	"beltvm/internal/belt"
	"beltvm/internal/loopstack"
)

// fakeMachine is a minimal instr.Machine for exercising individual
// instructions without a full internal/vm.VM.
type fakeMachine struct {
	b         *belt.Belt
	ls        *loopstack.LoopStack
	locals    []belt.Item
	alignment int
}

func newFakeMachine(initial []belt.Item, numLocals int) *fakeMachine {
	b := belt.New()
	for i := len(initial) - 1; i >= 0; i-- {
		b.Push(initial[i])
	}
	return &fakeMachine{b: b, ls: loopstack.New(nil), locals: make([]belt.Item, numLocals)}
}

func (m *fakeMachine) Belt() *belt.Belt                { return m.b }
func (m *fakeMachine) LoopStack() *loopstack.LoopStack { return m.ls }
func (m *fakeMachine) Alignment() int                  { return m.alignment }
func (m *fakeMachine) SetAlignment(a int)              { m.alignment = a }

func (m *fakeMachine) Local(idx int) (belt.Item, error) {
	if idx < 0 || idx >= len(m.locals) {
		return belt.Item{}, fmt.Errorf("local %d out of range", idx)
	}
	return m.locals[idx], nil
}

func (m *fakeMachine) SetLocal(idx int, item belt.Item) error {
	if idx < 0 || idx >= len(m.locals) {
		return fmt.Errorf("local %d out of range", idx)
	}
	m.locals[idx] = item
	return nil
}
