// Package compiler lowers a parsed script into the instruction stream
// internal/vm executes, while simulating the belt's compile-time shape:
// which names live on the belt (and at what position), whether each is
// signed, slice-typed, and whether a loop or branch has left it in an
// inconsistent state across control-flow paths.
package compiler

import (
	"fmt"
	"strings"

	"beltvm/internal/belt"
	"beltvm/internal/instr"
	"beltvm/internal/lexer"
	"beltvm/internal/parser"
	"beltvm/internal/vmerrors"
)

// SupportedVersion is the only script version this compiler accepts.
const SupportedVersion = "0.0.1"

// CompilerBeltItem tracks, at compile time, one named value's position on
// the simulated belt.
type CompilerBeltItem struct {
	Name         string
	IsSigned     *bool // nil for slices, which have no signedness
	IsSlice      bool
	IsConsistent bool
	OtherItem    *CompilerBeltItem // set when IsConsistent is false, for diagnostics
}

// CompilerLocal describes a declared local slot.
type CompilerLocal struct {
	IsSigned *bool
	IsSlice  bool
	LocalIdx int
}

// Scope tracks one loop or if-branch's belt membership, for loop-stability
// and out-of-scope-access checks. Name is nil for if-branches (which are
// never a br/continue target by name) and non-nil for loops.
type Scope struct {
	Name             *string
	BeltItems        map[string]bool
	OutOfScopeAccess []string
}

// TypeAssertion constrains what kind of belt item getItem will accept.
type TypeAssertion int

const (
	AssertAny TypeAssertion = iota
	AssertNumber
	AssertSlice
)

// CompileResult is a compiled program ready for internal/vm.
type CompileResult struct {
	Instructions []instr.Instruction
	NumLocals    int
}

// Compiler holds the belt/scope/locals state accumulated while walking one
// program's AST. A Compiler is single-use: construct a fresh one per
// Compile call.
type Compiler struct {
	belt      []CompilerBeltItem
	locals    map[string]CompilerLocal
	numLocals int
	scopes    []*Scope
}

func NewCompiler() *Compiler {
	return &Compiler{locals: make(map[string]CompilerLocal)}
}

// Compile scans, parses, and compiles src into a CompileResult.
func Compile(src string) (*CompileResult, error) {
	tokens, err := lexer.NewScanner(src).ScanTokens()
	if err != nil {
		return nil, err
	}
	program, err := parser.NewParser(tokens).Parse()
	if err != nil {
		return nil, err
	}
	return NewCompiler().CompileProgram(program)
}

func (c *Compiler) CompileProgram(program *parser.Program) (*CompileResult, error) {
	if program.Version != SupportedVersion {
		return nil, vmerrors.NewCompileError(
			fmt.Sprintf("unsupported version %q (supported: %s)", program.Version, SupportedVersion),
			vmerrors.SourceLocation{},
		)
	}
	instructions, err := c.handleStatements(program.Statements)
	if err != nil {
		return nil, err
	}
	return &CompileResult{Instructions: instructions, NumLocals: c.numLocals}, nil
}

func (c *Compiler) push(item CompilerBeltItem) {
	c.belt = append([]CompilerBeltItem{item}, c.belt...)
	if len(c.belt) > belt.Size {
		c.belt = c.belt[:belt.Size]
	}
	if len(c.scopes) > 0 {
		top := c.scopes[len(c.scopes)-1]
		top.BeltItems[item.Name] = true
	}
}

func (c *Compiler) beginScope(name *string) {
	c.scopes = append(c.scopes, &Scope{Name: name, BeltItems: make(map[string]bool)})
}

func (c *Compiler) endScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// getItem finds name on the simulated belt, recording an out-of-scope
// access against the innermost scope if name was pushed outside it.
func (c *Compiler) getItem(name string, assert TypeAssertion) (int, CompilerBeltItem, error) {
	for idx, item := range c.belt {
		if item.Name != name {
			continue
		}
		if !item.IsConsistent {
			return 0, CompilerBeltItem{}, vmerrors.NewCompileError(
				fmt.Sprintf("inconsistent belt item (due to branch): %s", name), vmerrors.SourceLocation{})
		}
		if assert == AssertNumber && item.IsSlice {
			return 0, CompilerBeltItem{}, vmerrors.NewCompileError(
				fmt.Sprintf("invalid type: %s is a slice", name), vmerrors.SourceLocation{})
		}
		if assert == AssertSlice && !item.IsSlice {
			return 0, CompilerBeltItem{}, vmerrors.NewCompileError(
				fmt.Sprintf("invalid type: %s is a number", name), vmerrors.SourceLocation{})
		}
		if len(c.scopes) > 0 {
			top := c.scopes[len(c.scopes)-1]
			if !top.BeltItems[item.Name] {
				top.OutOfScopeAccess = append(top.OutOfScopeAccess, item.Name)
			}
		}
		return idx, item, nil
	}
	return 0, CompilerBeltItem{}, vmerrors.NewCompileError(
		fmt.Sprintf("belt item with the name `%s` not found, maybe it's pushed off the belt? consider using locals in this case", name),
		vmerrors.SourceLocation{},
	)
}

func (c *Compiler) handleStatements(stmts []parser.Stmt) ([]instr.Instruction, error) {
	var code []instr.Instruction
	for _, stmt := range stmts {
		ins, err := c.handleStatement(stmt)
		if err != nil {
			return nil, err
		}
		code = append(code, ins...)
	}
	return code, nil
}

func (c *Compiler) handleStatement(stmt parser.Stmt) ([]instr.Instruction, error) {
	switch s := stmt.(type) {
	case *parser.LoopStmt:
		return c.handleLoop(s)
	case *parser.IfStmt:
		return c.handleIf(s)
	case *parser.AssignStmt:
		return c.handleAssign(s)
	case *parser.CallStmt:
		return c.handleCallStmt(s)
	case *parser.StoreStmt:
		return c.handleStore(s)
	case *parser.LoadStmt:
		return c.handleLoad(s)
	default:
		return nil, fmt.Errorf("unexpected statement %T", stmt)
	}
}

func (c *Compiler) handleLoop(loop *parser.LoopStmt) ([]instr.Instruction, error) {
	beltBeforeLoop := append([]CompilerBeltItem(nil), c.belt...)
	name := loop.Name
	c.beginScope(&name)
	code, err := c.handleStatements(loop.Body)
	if err != nil {
		return nil, err
	}
	scope := c.scopes[len(c.scopes)-1]
	for _, accessed := range scope.OutOfScopeAccess {
		newIdx, newItem, found := findByName(c.belt, accessed)
		if !found {
			return nil, vmerrors.NewCompileError(
				fmt.Sprintf("invalid loop: loop variable %s not on belt", accessed), vmerrors.SourceLocation{})
		}
		oldIdx, oldItem, found := findByName(beltBeforeLoop, accessed)
		if !found {
			return nil, vmerrors.NewCompileError("unreachable", vmerrors.SourceLocation{})
		}
		if !signedEqual(newItem.IsSigned, oldItem.IsSigned) {
			return nil, vmerrors.NewCompileError(
				fmt.Sprintf("invalid loop: incompatible signs for %s across the loop boundary", accessed),
				vmerrors.SourceLocation{})
		}
		if newIdx != oldIdx {
			return nil, vmerrors.NewCompileError(
				fmt.Sprintf("invalid loop: loop variable %s ends up on different belt positions %d != %d",
					accessed, oldIdx, newIdx),
				vmerrors.SourceLocation{})
		}
	}
	c.endScope()
	return []instr.Instruction{instr.InsLoopSpecified{Body: instr.NewBlock(code)}}, nil
}

func (c *Compiler) handleIf(ifStmt *parser.IfStmt) ([]instr.Instruction, error) {
	condIdx, _, err := c.getItem(ifStmt.Condition, AssertNumber)
	if err != nil {
		return nil, err
	}
	oldBelt := append([]CompilerBeltItem(nil), c.belt...)
	c.beginScope(nil)
	thenCode, err := c.handleStatements(ifStmt.Then)
	if err != nil {
		return nil, err
	}
	c.endScope()

	var otherBelt []CompilerBeltItem
	var elseCode []instr.Instruction
	if ifStmt.Else != nil {
		otherBelt = append([]CompilerBeltItem(nil), c.belt...)
		c.belt = oldBelt
		c.beginScope(nil)
		elseCode, err = c.handleStatements(ifStmt.Else)
		if err != nil {
			return nil, err
		}
		c.endScope()
	} else {
		otherBelt = oldBelt
		elseCode = nil
	}

	c.markBranchInconsistencies(otherBelt)
	return []instr.Instruction{instr.InsIfUnspecified{
		ConditionIdx: condIdx,
		Then:         instr.NewBlock(thenCode),
		Else:         instr.NewBlock(elseCode),
	}}, nil
}

// markBranchInconsistencies compares the belt resulting from this branch
// (c.belt) against the other branch's resulting belt, marking positions
// where name, signedness, or slice-ness disagree as inconsistent so a later
// getItem on that name fails loudly instead of reading a branch-dependent
// value.
func (c *Compiler) markBranchInconsistencies(otherBelt []CompilerBeltItem) {
	fill := CompilerBeltItem{Name: "\x00<absent>", IsConsistent: false}
	maxLen := len(otherBelt)
	if len(c.belt) > maxLen {
		maxLen = len(c.belt)
	}
	for idx := 0; idx < maxLen; idx++ {
		other := fill
		if idx < len(otherBelt) {
			other = otherBelt[idx]
		}
		cur := fill
		if idx < len(c.belt) {
			cur = c.belt[idx]
		}
		mismatched := !other.IsConsistent || !cur.IsConsistent ||
			other.Name != cur.Name || !signedEqual(other.IsSigned, cur.IsSigned) || other.IsSlice != cur.IsSlice
		if mismatched && idx < len(c.belt) {
			otherCopy := other
			c.belt[idx] = CompilerBeltItem{
				Name:         cur.Name,
				IsSigned:     cur.IsSigned,
				IsSlice:      cur.IsSlice,
				IsConsistent: false,
				OtherItem:    &otherCopy,
			}
		}
	}
}

func (c *Compiler) handleAssign(assign *parser.AssignStmt) ([]instr.Instruction, error) {
	return c.handleExpr(assign.Targets, assign.Expr)
}

func (c *Compiler) handleStore(store *parser.StoreStmt) ([]instr.Instruction, error) {
	targetIdx, _, err := c.getItem(store.Target, AssertSlice)
	if err != nil {
		return nil, err
	}
	valueIdx, _, err := c.getItem(store.Value, AssertNumber)
	if err != nil {
		return nil, err
	}
	return []instr.Instruction{instr.InsStore{ItemIdx: valueIdx, SliceIdx: targetIdx, Offset: store.Offset}}, nil
}

func (c *Compiler) handleLoad(load *parser.LoadStmt) ([]instr.Instruction, error) {
	sourceIdx, _, err := c.getItem(load.Source, AssertSlice)
	if err != nil {
		return nil, err
	}
	isSigned, width, err := parseType(load.Type)
	if err != nil {
		return nil, err
	}
	c.push(CompilerBeltItem{Name: load.Target, IsSigned: &isSigned, IsSlice: false, IsConsistent: true})
	return []instr.Instruction{instr.InsLoad{Width: width, SliceIdx: sourceIdx, Offset: load.Offset}}, nil
}

func findByName(items []CompilerBeltItem, name string) (int, CompilerBeltItem, bool) {
	for idx, item := range items {
		if item.Name == name {
			return idx, item, true
		}
	}
	return 0, CompilerBeltItem{}, false
}

// signedEqual compares two Optional[bool]-shaped signedness markers: nil
// (slice, no signedness) equals only nil.
func signedEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func mustSigned(item CompilerBeltItem) bool {
	if item.IsSigned == nil {
		return false
	}
	return *item.IsSigned
}

func stripUnderscores(s string) string {
	return strings.ReplaceAll(s, "_", "")
}
