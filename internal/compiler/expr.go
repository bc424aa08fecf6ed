package compiler

import (
	"fmt"
	"strings"

	"beltvm/internal/belt"
	"beltvm/internal/instr"
	"beltvm/internal/parser"
	"beltvm/internal/typedval"
	"beltvm/internal/vmerrors"
)

func (c *Compiler) handleExpr(names []string, expr parser.Expr) ([]instr.Instruction, error) {
	switch e := expr.(type) {
	case *parser.LitExpr:
		return c.handleLit(names, e)
	case *parser.NameExpr:
		return c.handleName(names, e)
	case *parser.CallExpr:
		return c.handleCall(names, e)
	case *parser.OperationExpr:
		return c.handleOperation(names, e)
	case *parser.SlicingExpr:
		return c.handleSlicing(names, e)
	default:
		return nil, fmt.Errorf("unexpected expr %T", expr)
	}
}

func (c *Compiler) handleLit(names []string, lit *parser.LitExpr) ([]instr.Instruction, error) {
	if len(names) != 1 {
		return nil, vmerrors.NewCompileError("a literal assigns exactly one name", vmerrors.SourceLocation{})
	}
	assignedName := names[0]
	if strings.HasPrefix(assignedName, "$") {
		return nil, vmerrors.NewCompileError("cannot assign literals to locals (yet?)", vmerrors.SourceLocation{})
	}
	n, signed, width, err := parseLit(stripUnderscores(lit.Raw))
	if err != nil {
		return nil, err
	}
	c.push(CompilerBeltItem{Name: assignedName, IsSigned: &signed, IsSlice: false, IsConsistent: true})
	val := typedval.FromSigned(n, width, signed)
	return []instr.Instruction{instr.InsConst{Value: belt.NumberItem(val)}}, nil
}

func (c *Compiler) handleName(names []string, name *parser.NameExpr) ([]instr.Instruction, error) {
	if len(names) != 1 {
		return nil, vmerrors.NewCompileError("a name expression assigns exactly one name", vmerrors.SourceLocation{})
	}
	assignedName := names[0]
	sourceName := name.Name
	if strings.HasPrefix(assignedName, "$") {
		if strings.HasPrefix(sourceName, "$") {
			return nil, vmerrors.NewCompileError("can only assign belt items to locals, not local to local", vmerrors.SourceLocation{})
		}
		if _, _, err := c.getItem(sourceName, AssertAny); err != nil {
			return nil, err
		}
		front := c.belt[0]
		if front.Name != sourceName {
			return nil, vmerrors.NewCompileError(
				fmt.Sprintf("can only assign the front belt item (%s) to a local, got %s", front.Name, sourceName),
				vmerrors.SourceLocation{})
		}
		local, ok := c.locals[assignedName]
		if !ok {
			local = CompilerLocal{IsSigned: front.IsSigned, IsSlice: front.IsSlice, LocalIdx: c.numLocals}
			c.locals[assignedName] = local
			c.numLocals++
		}
		return []instr.Instruction{instr.InsLocalSet{LocalIdx: local.LocalIdx}}, nil
	}
	if !strings.HasPrefix(sourceName, "$") {
		return nil, vmerrors.NewCompileError("can only assign locals to belt items, not belt item to belt item (yet?)", vmerrors.SourceLocation{})
	}
	local, ok := c.locals[sourceName]
	if !ok {
		return nil, vmerrors.NewCompileError(fmt.Sprintf("local %s not defined", sourceName), vmerrors.SourceLocation{})
	}
	c.push(CompilerBeltItem{Name: assignedName, IsSigned: local.IsSigned, IsSlice: local.IsSlice, IsConsistent: true})
	return []instr.Instruction{instr.InsLocalGet{LocalIdx: local.LocalIdx}}, nil
}

func (c *Compiler) handleOperation(names []string, op *parser.OperationExpr) ([]instr.Instruction, error) {
	aIdx, a, err := c.getItem(op.A, AssertNumber)
	if err != nil {
		return nil, err
	}
	bIdx, b, err := c.getItem(op.B, AssertNumber)
	if err != nil {
		return nil, err
	}
	if !signedEqual(a.IsSigned, b.IsSigned) {
		return nil, vmerrors.NewCompileError(
			fmt.Sprintf("incompatible operands, %s and %s have different signedness", op.A, op.B), vmerrors.SourceLocation{})
	}
	signed := mustSigned(a)

	if relOp, isRel := relOps[op.Op]; isRel {
		if len(names) != 1 {
			return nil, vmerrors.NewCompileError("a relational operation assigns exactly one name", vmerrors.SourceLocation{})
		}
		c.push(CompilerBeltItem{Name: names[0], IsSigned: &signed, IsSlice: false, IsConsistent: true})
		return []instr.Instruction{instr.InsRel{AIdx: aIdx, BIdx: bIdx, Signed: signed, Op: relOp}}, nil
	}

	spec, isArith := arithOps[op.Op]
	if !isArith {
		return nil, vmerrors.NewCompileError(fmt.Sprintf("unexpected operator %s", op.Op), vmerrors.SourceLocation{})
	}
	if spec.mode == instr.WIDENING {
		if len(names) != 2 {
			return nil, vmerrors.NewCompileError("a widening operation assigns exactly two names", vmerrors.SourceLocation{})
		}
		resultA, resultB := names[0], names[1]
		// Push second-named first so first-named ends up at belt[0] (the
		// high half): see InsArith's WIDENING push order.
		c.push(CompilerBeltItem{Name: resultB, IsSigned: &signed, IsSlice: false, IsConsistent: true})
		c.push(CompilerBeltItem{Name: resultA, IsSigned: &signed, IsSlice: false, IsConsistent: true})
	} else {
		if len(names) != 1 {
			return nil, vmerrors.NewCompileError("a checked operation assigns exactly one name", vmerrors.SourceLocation{})
		}
		c.push(CompilerBeltItem{Name: names[0], IsSigned: &signed, IsSlice: false, IsConsistent: true})
	}
	return []instr.Instruction{instr.InsArith{ParamIndices: []int{aIdx, bIdx}, Signed: signed, Mode: spec.mode, Op: spec.op}}, nil
}

func (c *Compiler) handleSlicing(names []string, slicing *parser.SlicingExpr) ([]instr.Instruction, error) {
	if len(names) != 1 {
		return nil, vmerrors.NewCompileError("a slicing expression assigns exactly one name", vmerrors.SourceLocation{})
	}
	result := names[0]
	c.push(CompilerBeltItem{Name: result, IsSigned: nil, IsSlice: true, IsConsistent: true})

	switch {
	case slicing.Start == nil && slicing.Length == nil:
		return nil, vmerrors.NewCompileError("at least either start or length must be given for a slice", vmerrors.SourceLocation{})
	case slicing.Start != nil && slicing.Length != nil:
		sliceIdx, _, err := c.getItem(slicing.Slice, AssertSlice)
		if err != nil {
			return nil, err
		}
		startIdx, _, err := c.getItem(*slicing.Start, AssertNumber)
		if err != nil {
			return nil, err
		}
		lengthIdx, _, err := c.getItem(*slicing.Length, AssertNumber)
		if err != nil {
			return nil, err
		}
		c.push(CompilerBeltItem{Name: result, IsSigned: nil, IsSlice: true, IsConsistent: true})
		return []instr.Instruction{instr.InsSubSlice{SliceIdx: sliceIdx, StartIdx: startIdx, LengthIdx: lengthIdx}}, nil
	case slicing.Start != nil:
		sliceIdx, _, err := c.getItem(slicing.Slice, AssertSlice)
		if err != nil {
			return nil, err
		}
		startIdx, _, err := c.getItem(*slicing.Start, AssertNumber)
		if err != nil {
			return nil, err
		}
		c.push(CompilerBeltItem{Name: result, IsSigned: nil, IsSlice: true, IsConsistent: true})
		return []instr.Instruction{instr.InsSliceOp{SliceIdx: sliceIdx, NumBytesIdx: startIdx, Op: instr.SliceOp(belt.Slice.TrimL)}}, nil
	default:
		sliceIdx, _, err := c.getItem(slicing.Slice, AssertSlice)
		if err != nil {
			return nil, err
		}
		lengthIdx, _, err := c.getItem(*slicing.Length, AssertNumber)
		if err != nil {
			return nil, err
		}
		return []instr.Instruction{instr.InsSliceOp{SliceIdx: sliceIdx, NumBytesIdx: lengthIdx, Op: instr.SliceOp(belt.Slice.Shrink)}}, nil
	}
}
