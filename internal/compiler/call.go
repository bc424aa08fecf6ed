package compiler

import (
	"fmt"
	"math/big"

	"beltvm/internal/belt"
	"beltvm/internal/instr"
	"beltvm/internal/parser"
	"beltvm/internal/typedval"
	"beltvm/internal/vmerrors"
)

func (c *Compiler) handleCall(names []string, call *parser.CallExpr) ([]instr.Instruction, error) {
	params := call.Params
	switch call.Name {
	case "is_err":
		if len(params) != 1 {
			return nil, argCountError(call.Name, 1)
		}
		if len(names) != 1 {
			return nil, resultCountError(call.Name, 1)
		}
		itemIdx, _, err := c.getItem(params[0], AssertNumber)
		if err != nil {
			return nil, err
		}
		falseSigned := false
		c.push(CompilerBeltItem{Name: names[0], IsSigned: &falseSigned, IsSlice: false, IsConsistent: true})
		return []instr.Instruction{instr.InsIsErr{ItemIdx: itemIdx}}, nil

	case "length":
		if len(params) != 1 {
			return nil, argCountError(call.Name, 1)
		}
		if len(names) != 1 {
			return nil, resultCountError(call.Name, 1)
		}
		sliceIdx, _, err := c.getItem(params[0], AssertSlice)
		if err != nil {
			return nil, err
		}
		falseSigned := false
		c.push(CompilerBeltItem{Name: names[0], IsSigned: &falseSigned, IsSlice: false, IsConsistent: true})
		return []instr.Instruction{instr.InsSliceLen{SliceIdx: sliceIdx}}, nil

	case "trim_l", "trim_r", "shrink":
		if len(params) != 2 {
			return nil, argCountError(call.Name, 2)
		}
		if len(names) != 1 {
			return nil, resultCountError(call.Name, 1)
		}
		sliceIdx, _, err := c.getItem(params[0], AssertSlice)
		if err != nil {
			return nil, err
		}
		numBytesIdx, _, err := c.getItem(params[1], AssertNumber)
		if err != nil {
			return nil, err
		}
		c.push(CompilerBeltItem{Name: names[0], IsSigned: nil, IsSlice: true, IsConsistent: true})
		var op instr.SliceOp
		switch call.Name {
		case "trim_l":
			op = instr.SliceOp(belt.Slice.TrimL)
		case "trim_r":
			op = instr.SliceOp(belt.Slice.TrimR)
		case "shrink":
			op = instr.SliceOp(belt.Slice.Shrink)
		}
		return []instr.Instruction{instr.InsSliceOp{SliceIdx: sliceIdx, NumBytesIdx: numBytesIdx, Op: op}}, nil

	case "divmod":
		if len(params) != 2 {
			return nil, argCountError(call.Name, 2)
		}
		if len(names) != 2 {
			return nil, resultCountError(call.Name, 2)
		}
		aIdx, a, err := c.getItem(params[0], AssertNumber)
		if err != nil {
			return nil, err
		}
		bIdx, b, err := c.getItem(params[1], AssertNumber)
		if err != nil {
			return nil, err
		}
		if !signedEqual(a.IsSigned, b.IsSigned) {
			return nil, vmerrors.NewCompileError(
				fmt.Sprintf("incompatible operands, %s and %s have different signedness", params[0], params[1]),
				vmerrors.SourceLocation{})
		}
		signed := mustSigned(a)
		c.push(CompilerBeltItem{Name: names[1], IsSigned: &signed, IsSlice: false, IsConsistent: true})
		c.push(CompilerBeltItem{Name: names[0], IsSigned: &signed, IsSlice: false, IsConsistent: true})
		return []instr.Instruction{instr.InsNAryOp{ParamIndices: []int{aIdx, bIdx}, Signed: signed, Op: divmodOp}}, nil

	case "rotl", "rotr", "clz", "ctz", "popcnt":
		return nil, vmerrors.NewCompileError(fmt.Sprintf("%s is not implemented", call.Name), vmerrors.SourceLocation{})

	default:
		return c.handleCast(names, call)
	}
}

// divmodOp is the pushed-in-reverse pair [quotient, remainder]: InsNAryOp
// pushes results back to front, so the first-named (quotient) ends up at
// belt[0].
func divmodOp(params []*big.Int) []*big.Int {
	a, b := params[0], params[1]
	if b.Sign() == 0 {
		return []*big.Int{nil, nil}
	}
	q, r := pyDivMod(a, b)
	return []*big.Int{q, r}
}

func (c *Compiler) handleCast(names []string, call *parser.CallExpr) ([]instr.Instruction, error) {
	match := regCast.FindStringSubmatch(call.Name)
	if match == nil {
		return nil, vmerrors.NewCompileError(fmt.Sprintf("unknown function %s", call.Name), vmerrors.SourceLocation{})
	}
	if len(call.Params) != 1 {
		return nil, argCountError(call.Name, 1)
	}
	if len(names) != 1 {
		return nil, resultCountError(call.Name, 1)
	}
	castName := match[1]
	width, err := widthFromDigits(match[2])
	if err != nil {
		return nil, err
	}
	itemIdx, item, err := c.getItem(call.Params[0], AssertNumber)
	if err != nil {
		return nil, err
	}
	signed := mustSigned(item)
	c.push(CompilerBeltItem{Name: names[0], IsSigned: item.IsSigned, IsSlice: false, IsConsistent: true})

	var op instr.ConvertOp
	switch castName {
	case "cast_extend":
		if width == typedval.W8 {
			return nil, vmerrors.NewCompileError("cannot use cast_extend8", vmerrors.SourceLocation{})
		}
		op = typedval.Extend
	case "cast_wrap":
		if width == typedval.W64 {
			return nil, vmerrors.NewCompileError("cannot use cast_wrap64", vmerrors.SourceLocation{})
		}
		op = func(v typedval.Value, wPrime typedval.Width, _ bool) (typedval.Value, bool) { return typedval.Wrap(v, wPrime) }
	case "cast_sat":
		if width == typedval.W64 {
			return nil, vmerrors.NewCompileError("cannot use cast_sat64", vmerrors.SourceLocation{})
		}
		op = typedval.CastSat
	case "cast_checked":
		if width == typedval.W64 {
			return nil, vmerrors.NewCompileError("cannot use cast_checked64", vmerrors.SourceLocation{})
		}
		op = typedval.CastChecked
	default:
		return nil, vmerrors.NewCompileError("unreachable cast dispatch", vmerrors.SourceLocation{})
	}
	return []instr.Instruction{instr.InsConvert{ItemIdx: itemIdx, TargetWidth: width, Signed: signed, Op: op}}, nil
}

func widthFromDigits(digits string) (typedval.Width, error) {
	switch digits {
	case "8":
		return typedval.W8, nil
	case "16":
		return typedval.W16, nil
	case "32":
		return typedval.W32, nil
	case "64":
		return typedval.W64, nil
	default:
		return 0, vmerrors.NewCompileError(fmt.Sprintf("invalid width %s", digits), vmerrors.SourceLocation{})
	}
}

func argCountError(name string, n int) error {
	return vmerrors.NewCompileError(fmt.Sprintf("%s takes exactly %d argument(s)", name, n), vmerrors.SourceLocation{})
}

func resultCountError(name string, n int) error {
	return vmerrors.NewCompileError(fmt.Sprintf("%s assigns exactly %d name(s)", name, n), vmerrors.SourceLocation{})
}
