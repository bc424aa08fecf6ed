package compiler

import (
	"fmt"
	"math/big"

	"beltvm/internal/instr"
	"beltvm/internal/parser"
	"beltvm/internal/vmerrors"
)

func (c *Compiler) handleCallStmt(stmt *parser.CallStmt) ([]instr.Instruction, error) {
	call := stmt.Call
	params := call.Params
	switch call.Name {
	case "unreachable":
		if len(params) != 0 {
			return nil, vmerrors.NewCompileError("unreachable takes no arguments", vmerrors.SourceLocation{})
		}
		return []instr.Instruction{instr.InsUnreachable{}}, nil
	case "nop":
		if len(params) != 0 {
			return nil, vmerrors.NewCompileError("nop takes no arguments", vmerrors.SourceLocation{})
		}
		return []instr.Instruction{instr.InsNop{}}, nil
	case "br", "br_if", "continue":
		return c.handleBrFamily(call.Name, params)
	case "verify":
		if len(params) != 1 {
			return nil, vmerrors.NewCompileError("verify takes exactly 1 argument", vmerrors.SourceLocation{})
		}
		idx, _, err := c.getItem(params[0], AssertNumber)
		if err != nil {
			return nil, err
		}
		return []instr.Instruction{instr.InsVerify{ItemIdx: idx}}, nil
	case "verify_ok":
		if len(params) != 1 {
			return nil, vmerrors.NewCompileError("verify_ok takes exactly 1 argument", vmerrors.SourceLocation{})
		}
		idx, _, err := c.getItem(params[0], AssertNumber)
		if err != nil {
			return nil, err
		}
		return []instr.Instruction{instr.InsVerifyOk{ItemIdx: idx}}, nil
	case "verify_eq":
		if len(params) != 2 {
			return nil, vmerrors.NewCompileError("verify_eq takes exactly 2 arguments", vmerrors.SourceLocation{})
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
				fmt.Sprintf("incompatible operands: %s and %s have different signedness", params[0], params[1]),
				vmerrors.SourceLocation{})
		}
		signed := mustSigned(a)
		return []instr.Instruction{instr.InsRelVerify{AIdx: aIdx, BIdx: bIdx, Signed: signed, Op: func(x, y *big.Int) bool {
			return x.Cmp(y) == 0
		}}}, nil
	default:
		return nil, vmerrors.NewCompileError(fmt.Sprintf("unknown call statement: %s", call.Name), vmerrors.SourceLocation{})
	}
}

// handleBrFamily compiles br, br_if, and continue. Unlike the source this
// was ported from, the already-parsed scope name is reused directly rather
// than re-derived from params a second time -- re-deriving it by
// unpacking params into a single variable breaks for br_if's two-argument
// form (condition, scope), since that unpack assumes exactly one param.
func (c *Compiler) handleBrFamily(name string, params []string) ([]instr.Instruction, error) {
	var scopeName, conditionName *string
	if name == "br" || name == "continue" {
		if len(params) > 1 {
			return nil, vmerrors.NewCompileError(fmt.Sprintf("%s takes at most 1 argument", name), vmerrors.SourceLocation{})
		}
		if len(params) == 1 {
			scopeName = &params[0]
		}
	} else {
		if len(params) != 1 && len(params) != 2 {
			return nil, vmerrors.NewCompileError("br_if takes only 1 or 2 arguments", vmerrors.SourceLocation{})
		}
		if len(params) == 2 {
			conditionName, scopeName = &params[0], &params[1]
		} else {
			conditionName = &params[0]
		}
	}

	brDepth := 1
	if scopeName != nil {
		found := false
		for idx := 0; idx < len(c.scopes); idx++ {
			sc := c.scopes[len(c.scopes)-1-idx]
			if sc.Name != nil && *sc.Name == *scopeName {
				brDepth = idx + 1
				found = true
				break
			}
		}
		if !found {
			return nil, vmerrors.NewCompileError(fmt.Sprintf("scope %s not defined", *scopeName), vmerrors.SourceLocation{})
		}
	}

	if conditionName != nil {
		condIdx, _, err := c.getItem(*conditionName, AssertNumber)
		if err != nil {
			return nil, err
		}
		return []instr.Instruction{instr.InsBrIf{ConditionIdx: condIdx, BrDepth: brDepth}}, nil
	}
	if name == "br" {
		return []instr.Instruction{instr.InsBr{BrDepth: brDepth}}, nil
	}
	return []instr.Instruction{instr.InsBrContinue{BrDepth: brDepth}}, nil
}
