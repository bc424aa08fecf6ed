package instr

import (
	"fmt"
	"math/big"

	"beltvm/internal/belt"
	"beltvm/internal/typedval"
	"beltvm/internal/vmerrors"
)

// signedParams reads the belt items at indices, converts each to its
// signed-interpreted *big.Int per signed, and reports the promoted width
// across all of them. ok is false if any value is Err.
func signedParams(vm Machine, indices []int, signed bool) (params []*big.Int, width typedval.Width, ok bool, err error) {
	width = typedval.W8
	params = make([]*big.Int, len(indices))
	ok = true
	for i, idx := range indices {
		num, gerr := vm.Belt().GetNum(idx)
		if gerr != nil {
			return nil, 0, false, vmerrors.NewTrap(vmerrors.TrapBeltKindMismatch, 0, gerr.Error())
		}
		width = typedval.Promote(width, num.Width)
		n, got := num.Signed(signed)
		if !got {
			ok = false
			continue
		}
		params[i] = n
	}
	return params, width, ok, nil
}

// RelOp compares two signed-interpreted operands.
type RelOp func(a, b *big.Int) bool

// InsRel pushes 1 or 0 (as an 8-bit number) for a relational comparison of
// belt[AIdx] and belt[BIdx]; either operand being Err propagates Err rather
// than trapping.
type InsRel struct {
	AIdx, BIdx int
	Signed     bool
	Op         RelOp
}

func (i InsRel) Run(vm Machine) (*Break, error) {
	params, _, ok, err := signedParams(vm, []int{i.AIdx, i.BIdx}, i.Signed)
	if err != nil {
		return nil, err
	}
	if !ok {
		vm.Belt().Push(belt.NumberItem(typedval.NewErr(typedval.W8)))
		return nil, nil
	}
	result := i.Op(params[0], params[1])
	vm.Belt().Push(belt.NumberItem(typedval.NewNumber(typedval.W8, boolBit(result))))
	return nil, nil
}

// InsRelVerify traps unless belt[AIdx] Op belt[BIdx] holds; either operand
// being Err also traps.
type InsRelVerify struct {
	AIdx, BIdx int
	Signed     bool
	Op         RelOp
}

func (i InsRelVerify) Run(vm Machine) (*Break, error) {
	params, _, ok, err := signedParams(vm, []int{i.AIdx, i.BIdx}, i.Signed)
	if err != nil {
		return nil, err
	}
	if !ok || !i.Op(params[0], params[1]) {
		return nil, vmerrors.NewTrap(vmerrors.TrapVerifyFailed, 0, "relational verify failed")
	}
	return nil, nil
}

// NAryOp computes zero or more result values (a nil entry denotes Err) from
// the signed-interpreted operands.
type NAryOp func(params []*big.Int) []*big.Int

// InsNAryOp generalizes InsArith to operations with more than one output,
// e.g. divmod. If any operand is Err, exactly one Err value is pushed
// (matching the single-output error path); otherwise results are pushed in
// reverse order, so the logically-first result ends up at belt[0].
type InsNAryOp struct {
	ParamIndices []int
	Signed       bool
	Op           NAryOp
}

func (i InsNAryOp) Run(vm Machine) (*Break, error) {
	params, width, ok, err := signedParams(vm, i.ParamIndices, i.Signed)
	if err != nil {
		return nil, err
	}
	if !ok {
		vm.Belt().Push(belt.NumberItem(typedval.NewErr(width)))
		return nil, nil
	}
	results := i.Op(params)
	for idx := len(results) - 1; idx >= 0; idx-- {
		r := results[idx]
		if r == nil {
			vm.Belt().Push(belt.NumberItem(typedval.NewErr(width)))
			continue
		}
		vm.Belt().Push(belt.NumberItem(typedval.FromSigned(r, width, i.Signed)))
	}
	return nil, nil
}

// ArithMode selects how InsArith turns its unbounded-domain result back
// into belt values.
type ArithMode int

const (
	// CHECKED pushes a single result, or Err if it falls outside the
	// promoted width's range.
	CHECKED ArithMode = iota
	// WIDENING pushes two results of the promoted width, high and low,
	// in reverse order (low, then high), so the high half ends up at
	// belt[0] and the low half at belt[1].
	WIDENING
)

// ArithOp computes an unbounded-domain result from the operands. A false
// second return (e.g. division or modulo by zero) pushes Err directly,
// bypassing the width range check.
type ArithOp func(params ...*big.Int) (*big.Int, bool)

// InsArith computes params Op(...) in the unbounded integer domain and
// pushes the result per Mode.
type InsArith struct {
	ParamIndices []int
	Signed       bool
	Mode         ArithMode
	Op           ArithOp
}

func (i InsArith) Run(vm Machine) (*Break, error) {
	params, width, ok, err := signedParams(vm, i.ParamIndices, i.Signed)
	if err != nil {
		return nil, err
	}
	if !ok {
		vm.Belt().Push(belt.NumberItem(typedval.NewErr(width)))
		return nil, nil
	}
	result, ok2 := i.Op(params...)
	if !ok2 {
		vm.Belt().Push(belt.NumberItem(typedval.NewErr(width)))
		return nil, nil
	}
	switch i.Mode {
	case CHECKED:
		if !typedval.InRange(result, width, i.Signed) {
			vm.Belt().Push(belt.NumberItem(typedval.NewErr(width)))
			return nil, nil
		}
		vm.Belt().Push(belt.NumberItem(typedval.FromSigned(result, width, i.Signed)))
		return nil, nil
	case WIDENING:
		w := uint(width)
		modWide := new(big.Int).Lsh(big.NewInt(1), 2*w)
		wide := new(big.Int).Mod(result, modWide) // Euclidean: always in [0, 2^2w)
		mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), w), big.NewInt(1))
		low := new(big.Int).And(wide, mask)
		high := new(big.Int).Rsh(wide, w)
		// Results are [high, low]; pushed in reverse (low, then high), so
		// high -- the first-named result at the call site -- ends up at
		// belt[0]. Mirrors InsNAryOp's push order so the compiler's
		// predicted belt state matches this instruction's actual one.
		vm.Belt().Push(belt.NumberItem(typedval.NewNumber(width, low.Uint64())))
		vm.Belt().Push(belt.NumberItem(typedval.NewNumber(width, high.Uint64())))
		return nil, nil
	default:
		return nil, vmerrors.NewTrap(vmerrors.TrapUnreachable, 0, "unknown arith mode")
	}
}

// ConvertOp is one of typedval.Wrap, CastSat, CastChecked, or Extend. The
// bool return is false when the target width violates the op's required
// direction relative to the operand's runtime width (spec.md Section 4.1).
type ConvertOp func(v typedval.Value, wPrime typedval.Width, signed bool) (typedval.Value, bool)

// InsConvert applies a cast to belt[ItemIdx] and pushes the result. Since
// the compiler doesn't track a belt item's runtime width, a cast whose
// direction is wrong for the operand it actually receives can only be
// caught here, at runtime, as a trap rather than a compile error.
type InsConvert struct {
	ItemIdx     int
	TargetWidth typedval.Width
	Signed      bool
	Op          ConvertOp
}

func (i InsConvert) Run(vm Machine) (*Break, error) {
	num, err := vm.Belt().GetNum(i.ItemIdx)
	if err != nil {
		return nil, vmerrors.NewTrap(vmerrors.TrapBeltKindMismatch, 0, err.Error())
	}
	result, ok := i.Op(num, i.TargetWidth, i.Signed)
	if !ok {
		return nil, vmerrors.NewTrap(vmerrors.TrapInvalidCastDirection, 0,
			fmt.Sprintf("cast to width %d is the wrong direction for a width-%d operand", i.TargetWidth, num.Width))
	}
	vm.Belt().Push(belt.NumberItem(result))
	return nil, nil
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
