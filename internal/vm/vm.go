// Package vm implements the belt machine's runtime state (spec.md Section
// 3): the belt, loop stack, local-variable slots, RAM arena, and alignment
// register an internal/instr.Block is run against.
package vm

import (
	"fmt"

	"beltvm/internal/belt"
	"beltvm/internal/instr"
	"beltvm/internal/loopstack"
	"beltvm/internal/typedval"
)

// VM holds one transaction-script execution's full mutable state. It
// implements instr.Machine, the minimal surface instructions are compiled
// against.
type VM struct {
	belt      *belt.Belt
	loopStack *loopstack.LoopStack
	locals    []belt.Item
	ram       belt.Slice
	alignment int
}

// New builds a VM with a fresh belt (Size zeroed width-8 numbers),
// numLocals local slots (each a zeroed width-8 number), a zeroed RAM arena
// of ramSize bytes, and the witness's loop-tree forest driving ls.
func New(ls *loopstack.LoopStack, numLocals int, ramSize int) *VM {
	zero := belt.NumberItem(typedval.NewNumber(typedval.W8, 0))
	locals := make([]belt.Item, numLocals)
	for i := range locals {
		locals[i] = zero
	}
	return &VM{
		belt:      belt.New(),
		loopStack: ls,
		locals:    locals,
		ram:       belt.Whole(belt.NewRAM(ramSize)),
	}
}

func (vm *VM) Belt() *belt.Belt                { return vm.belt }
func (vm *VM) LoopStack() *loopstack.LoopStack { return vm.loopStack }
func (vm *VM) Ram() belt.Slice                 { return vm.ram }
func (vm *VM) Alignment() int                  { return vm.alignment }
func (vm *VM) SetAlignment(alignment int)      { vm.alignment = alignment }

func (vm *VM) Local(idx int) (belt.Item, error) {
	if idx < 0 || idx >= len(vm.locals) {
		return belt.Item{}, fmt.Errorf("local index %d out of range [0,%d)", idx, len(vm.locals))
	}
	return vm.locals[idx], nil
}

func (vm *VM) SetLocal(idx int, item belt.Item) error {
	if idx < 0 || idx >= len(vm.locals) {
		return fmt.Errorf("local index %d out of range [0,%d)", idx, len(vm.locals))
	}
	vm.locals[idx] = item
	return nil
}

// Run executes program against vm's state, returning the trap if execution
// aborts.
func (vm *VM) Run(program instr.Block) error {
	_, err := program.Run(vm)
	return err
}
