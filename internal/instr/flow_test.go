package instr_test

import (
	"testing"

	"beltvm/internal/belt"
	"beltvm/internal/instr"
	"beltvm/internal/typedval"
)

func TestBlockForwardsBreakWithDecrementedDepth(t *testing.T) {
	m := newFakeMachine(nil, 0)
	inner := instr.NewBlock([]instr.Instruction{instr.InsBr{BrDepth: 2}})
	br, err := inner.Run(m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if br == nil || br.Depth != 1 {
		t.Fatalf("Block should forward Break with depth-1, got %+v", br)
	}
}

func TestBlockStopsEarlyAfterBreak(t *testing.T) {
	m := newFakeMachine(nil, 0)
	neverRuns := &countingInstruction{}
	block := instr.NewBlock([]instr.Instruction{instr.InsBr{BrDepth: 1}, neverRuns})
	if _, err := block.Run(m); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if neverRuns.count != 0 {
		t.Fatalf("instruction after a Break should not run")
	}
}

func TestBlockUnfiredBrIfYieldsNoBreak(t *testing.T) {
	m := newFakeMachine(nil, 0)
	after := &countingInstruction{}
	// InsBrIf never fires (condition false): the block runs to completion and
	// returns no break at all -- exercised here as a sanity check that a
	// non-branching block doesn't synthesize a spurious Break.
	m.Belt().Push(belt.NumberItem(typedval.NewNumber(typedval.W8, 0)))
	block := instr.NewBlock([]instr.Instruction{instr.InsBrIf{ConditionIdx: 0, BrDepth: 1}, after})
	br, err := block.Run(m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if br != nil {
		t.Fatalf("unfired br_if should not produce a Break, got %+v", br)
	}
	if after.count != 1 {
		t.Fatalf("instruction after an unfired br_if should run")
	}
}

func TestInsIfUnspecifiedPicksBranch(t *testing.T) {
	m := newFakeMachine([]belt.Item{belt.NumberItem(typedval.NewNumber(typedval.W8, 1))}, 0)
	thenRan, elseRan := &countingInstruction{}, &countingInstruction{}
	ins := instr.InsIfUnspecified{
		ConditionIdx: 0,
		Then:         instr.NewBlock([]instr.Instruction{thenRan}),
		Else:         instr.NewBlock([]instr.Instruction{elseRan}),
	}
	if _, err := ins.Run(m); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if thenRan.count != 1 || elseRan.count != 0 {
		t.Fatalf("truthy condition should run Then only, got then=%d else=%d", thenRan.count, elseRan.count)
	}
}

func TestInsIfUnspecifiedRejectsDepthZeroContinue(t *testing.T) {
	m := newFakeMachine([]belt.Item{belt.NumberItem(typedval.NewNumber(typedval.W8, 1))}, 0)
	ins := instr.InsIfUnspecified{
		ConditionIdx: 0,
		Then:         instr.NewBlock([]instr.Instruction{instr.InsBrContinue{BrDepth: 1}}),
		Else:         instr.NewBlock(nil),
	}
	if _, err := ins.Run(m); err == nil {
		t.Fatalf("continuing out of an if/else should trap")
	}
}

func TestErrAsConditionTraps(t *testing.T) {
	m := newFakeMachine([]belt.Item{belt.NumberItem(typedval.NewErr(typedval.W8))}, 0)
	ins := instr.InsIfUnspecified{ConditionIdx: 0, Then: instr.NewBlock(nil), Else: instr.NewBlock(nil)}
	if _, err := ins.Run(m); err == nil {
		t.Fatalf("Err used as a branch condition should trap")
	}
}

type countingInstruction struct{ count int }

func (c *countingInstruction) Run(vm instr.Machine) (*instr.Break, error) {
	c.count++
	return nil, nil
}
