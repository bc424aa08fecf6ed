// Package instr implements the belt machine's instruction set (spec.md
// Section 4): the arithmetic, relational, control-flow, belt, local, slice,
// and cast operations a compiled program is a tree of. Instructions run
// against a Machine -- the minimal surface internal/vm exposes, kept as an
// interface here so this package never imports internal/vm.
package instr

import (
	"beltvm/internal/belt"
	"beltvm/internal/loopstack"
)

// Machine is everything an instruction needs from the running VM.
type Machine interface {
	Belt() *belt.Belt
	LoopStack() *loopstack.LoopStack
	Local(idx int) (belt.Item, error)
	SetLocal(idx int, item belt.Item) error
	Alignment() int
	SetAlignment(int)
}

// Instruction is one executable step of a compiled program.
type Instruction interface {
	Run(vm Machine) (*Break, error)
}

// Break is what an instruction returns to unwind out of enclosing blocks:
// depth counts how many block boundaries remain to cross, is_continue marks
// whether the unwind should resume the targeted loop rather than exit it.
type Break struct {
	Depth      int
	IsContinue bool
}

// Block is a straight-line sequence of instructions. Running a block
// executes its instructions in order; if one returns a Break with Depth>0,
// the block stops early and forwards it with Depth decremented by exactly
// one. A Break with Depth==0 is considered already consumed by whichever
// loop or if/else returned it one level down, so the block does not
// forward it -- it simply continues with its own next statement.
type Block struct {
	Instructions []Instruction
}

func NewBlock(instructions []Instruction) Block {
	return Block{Instructions: instructions}
}

func (b Block) Run(vm Machine) (*Break, error) {
	for _, ins := range b.Instructions {
		br, err := ins.Run(vm)
		if err != nil {
			return nil, err
		}
		if br != nil && br.Depth > 0 {
			return &Break{Depth: br.Depth - 1, IsContinue: br.IsContinue}, nil
		}
	}
	return nil, nil
}
