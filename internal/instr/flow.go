package instr

import "beltvm/internal/vmerrors"

// InsNop does nothing.
type InsNop struct{}

func (InsNop) Run(vm Machine) (*Break, error) { return nil, nil }

// InsUnreachable traps unconditionally; the compiler only ever emits it on
// a path the author asserts can never execute.
type InsUnreachable struct{}

func (InsUnreachable) Run(vm Machine) (*Break, error) {
	return nil, vmerrors.NewTrap(vmerrors.TrapUnreachable, 0, "reached unreachable code")
}

// InsAlignBlock runs block with the VM's alignment register set to
// alignment, restoring the previous value afterward regardless of how the
// block exits.
type InsAlignBlock struct {
	Alignment int
	Body      Block
}

func (i InsAlignBlock) Run(vm Machine) (*Break, error) {
	previous := vm.Alignment()
	vm.SetAlignment(i.Alignment)
	br, err := i.Body.Run(vm)
	vm.SetAlignment(previous)
	return br, err
}

// InsLoopSpecified repeats Body once per iteration the loop stack's witness
// tree supplies, per spec.md Section 4.5. A depth-0 continue re-enters the
// loop; any other break exits it after unwinding the loop-stack frame.
type InsLoopSpecified struct {
	Body Block
}

func (i InsLoopSpecified) Run(vm Machine) (*Break, error) {
	if err := vm.LoopStack().StartLoop(); err != nil {
		return nil, vmerrors.NewTrap(vmerrors.TrapLoopStackMisuse, 0, err.Error())
	}
	for {
		done, err := vm.LoopStack().Next()
		if err != nil {
			return nil, vmerrors.NewTrap(vmerrors.TrapLoopStackMisuse, 0, err.Error())
		}
		if done {
			return nil, nil
		}
		br, err := i.Body.Run(vm)
		if err != nil {
			return nil, err
		}
		if br != nil {
			if br.Depth == 0 && br.IsContinue {
				if err := vm.LoopStack().ContinueLoop(); err != nil {
					return nil, vmerrors.NewTrap(vmerrors.TrapLoopStackMisuse, 0, err.Error())
				}
				continue
			}
			if err := vm.LoopStack().BreakLoop(); err != nil {
				return nil, vmerrors.NewTrap(vmerrors.TrapLoopStackMisuse, 0, err.Error())
			}
			return br, nil
		}
	}
}

// InsIfUnspecified runs Then when belt[ConditionIdx] is truthy, Else
// otherwise. A depth-0 continue emerging from either branch traps: if/else
// is not a loop target.
type InsIfUnspecified struct {
	ConditionIdx int
	Then         Block
	Else         Block
}

func (i InsIfUnspecified) Run(vm Machine) (*Break, error) {
	truthy, err := truthyAt(vm, i.ConditionIdx)
	if err != nil {
		return nil, err
	}
	block := i.Else
	if truthy {
		block = i.Then
	}
	br, err := block.Run(vm)
	if err != nil {
		return nil, err
	}
	if br != nil && br.Depth == 0 && br.IsContinue {
		return nil, vmerrors.NewTrap(vmerrors.TrapContinueIllegal, 0, "cannot continue an if/else block")
	}
	return br, nil
}

// InsBr unconditionally unwinds BrDepth block boundaries.
type InsBr struct {
	BrDepth int
}

func (i InsBr) Run(vm Machine) (*Break, error) {
	return &Break{Depth: i.BrDepth, IsContinue: false}, nil
}

// InsBrIf unwinds BrDepth boundaries when belt[ConditionIdx] is truthy.
type InsBrIf struct {
	ConditionIdx int
	BrDepth      int
}

func (i InsBrIf) Run(vm Machine) (*Break, error) {
	truthy, err := truthyAt(vm, i.ConditionIdx)
	if err != nil {
		return nil, err
	}
	if truthy {
		return &Break{Depth: i.BrDepth, IsContinue: false}, nil
	}
	return nil, nil
}

// InsBrContinue unconditionally unwinds BrDepth boundaries as a continue.
type InsBrContinue struct {
	BrDepth int
}

func (i InsBrContinue) Run(vm Machine) (*Break, error) {
	return &Break{Depth: i.BrDepth, IsContinue: true}, nil
}

// truthyAt reads belt[idx] as a condition: zero is false, any other value
// is true. An Err value as a condition traps -- conditions are not allowed
// to silently propagate Err the way arithmetic does.
func truthyAt(vm Machine, idx int) (bool, error) {
	num, err := vm.Belt().GetNum(idx)
	if err != nil {
		return false, vmerrors.NewTrap(vmerrors.TrapBeltKindMismatch, 0, err.Error())
	}
	if num.Err {
		return false, vmerrors.NewTrap(vmerrors.TrapErrAsCondition, 0, "err value used as branch condition")
	}
	return num.Bits != 0, nil
}
