package parser

import (
	"reflect"
	"testing"

	"beltvm/internal/lexer"
)

func parse(t *testing.T, src string) *Program {
	t.Helper()
	toks, err := lexer.NewScanner(src).ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	program, err := NewParser(toks).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return program
}

func TestParseVersionAndAssign(t *testing.T) {
	program := parse(t, "version 0.0.1;\na = 1u8;\n")
	if program.Version != "0.0.1" {
		t.Fatalf("Version = %q, want 0.0.1", program.Version)
	}
	if len(program.Statements) != 1 {
		t.Fatalf("len(Statements) = %d, want 1", len(program.Statements))
	}
	assign, ok := program.Statements[0].(*AssignStmt)
	if !ok {
		t.Fatalf("Statements[0] = %T, want *AssignStmt", program.Statements[0])
	}
	if !reflect.DeepEqual(assign.Targets, []string{"a"}) {
		t.Fatalf("Targets = %v, want [a]", assign.Targets)
	}
	lit, ok := assign.Expr.(*LitExpr)
	if !ok || lit.Raw != "1u8" {
		t.Fatalf("Expr = %+v, want LitExpr{Raw: \"1u8\"}", assign.Expr)
	}
}

func TestParseOperationExpr(t *testing.T) {
	program := parse(t, "version 0.0.1;\nc = a _+_ b;\n")
	assign := program.Statements[0].(*AssignStmt)
	if !reflect.DeepEqual(assign.Targets, []string{"c"}) {
		t.Fatalf("Targets = %v, want [c]", assign.Targets)
	}
	op, ok := assign.Expr.(*OperationExpr)
	if !ok {
		t.Fatalf("Expr = %T, want *OperationExpr", assign.Expr)
	}
	if op.A != "a" || op.Op != "_+_" || op.B != "b" {
		t.Fatalf("OperationExpr = %+v, want {a _+_ b}", op)
	}
}

func TestParseTwoTargetAssign(t *testing.T) {
	program := parse(t, "version 0.0.1;\nq, r = divmod(a, b);\n")
	assign := program.Statements[0].(*AssignStmt)
	if !reflect.DeepEqual(assign.Targets, []string{"q", "r"}) {
		t.Fatalf("Targets = %v, want [q r]", assign.Targets)
	}
	call, ok := assign.Expr.(*CallExpr)
	if !ok {
		t.Fatalf("Expr = %T, want *CallExpr", assign.Expr)
	}
	if call.Name != "divmod" || !reflect.DeepEqual(call.Params, []string{"a", "b"}) {
		t.Fatalf("CallExpr = %+v, want {divmod [a b]}", call)
	}
}

func TestParseLocalNameTarget(t *testing.T) {
	program := parse(t, "version 0.0.1;\n$x = a;\n")
	assign := program.Statements[0].(*AssignStmt)
	if !reflect.DeepEqual(assign.Targets, []string{"$x"}) {
		t.Fatalf("Targets = %v, want [$x]", assign.Targets)
	}
}

func TestParseCallStmt(t *testing.T) {
	program := parse(t, "version 0.0.1;\nverify_eq(a, b);\n")
	stmt, ok := program.Statements[0].(*CallStmt)
	if !ok {
		t.Fatalf("Statements[0] = %T, want *CallStmt", program.Statements[0])
	}
	if stmt.Call.Name != "verify_eq" || !reflect.DeepEqual(stmt.Call.Params, []string{"a", "b"}) {
		t.Fatalf("Call = %+v, want {verify_eq [a b]}", stmt.Call)
	}
}

func TestParseLoopAndIf(t *testing.T) {
	program := parse(t, `version 0.0.1;
loop outer {
  if cond {
    br(outer);
  } else {
    continue();
  }
}
`)
	loop, ok := program.Statements[0].(*LoopStmt)
	if !ok {
		t.Fatalf("Statements[0] = %T, want *LoopStmt", program.Statements[0])
	}
	if loop.Name != "outer" || len(loop.Body) != 1 {
		t.Fatalf("LoopStmt = %+v", loop)
	}
	ifStmt, ok := loop.Body[0].(*IfStmt)
	if !ok {
		t.Fatalf("loop body[0] = %T, want *IfStmt", loop.Body[0])
	}
	if ifStmt.Condition != "cond" || len(ifStmt.Then) != 1 || len(ifStmt.Else) != 1 {
		t.Fatalf("IfStmt = %+v", ifStmt)
	}
}

func TestParseStoreStmt(t *testing.T) {
	program := parse(t, "version 0.0.1;\nbuf[0] = v;\n")
	store, ok := program.Statements[0].(*StoreStmt)
	if !ok {
		t.Fatalf("Statements[0] = %T, want *StoreStmt", program.Statements[0])
	}
	if store.Target != "buf" || store.Offset != 0 || store.Value != "v" {
		t.Fatalf("StoreStmt = %+v", store)
	}
}

func TestParseLoadStmt(t *testing.T) {
	program := parse(t, "version 0.0.1;\nv = buf[4] as u32;\n")
	load, ok := program.Statements[0].(*LoadStmt)
	if !ok {
		t.Fatalf("Statements[0] = %T, want *LoadStmt", program.Statements[0])
	}
	if load.Target != "v" || load.Source != "buf" || load.Offset != 4 || load.Type != "u32" {
		t.Fatalf("LoadStmt = %+v", load)
	}
}

func TestParseLoadVsSlicingAssignDisambiguation(t *testing.T) {
	// "v = buf[a..b];" (a slicing expression) must NOT be parsed as a load,
	// since a load's bracketed contents never contain "..".
	program := parse(t, "version 0.0.1;\nv = buf[a..b];\n")
	assign, ok := program.Statements[0].(*AssignStmt)
	if !ok {
		t.Fatalf("Statements[0] = %T, want *AssignStmt", program.Statements[0])
	}
	slicing, ok := assign.Expr.(*SlicingExpr)
	if !ok {
		t.Fatalf("Expr = %T, want *SlicingExpr", assign.Expr)
	}
	if slicing.Slice != "buf" || slicing.Start == nil || *slicing.Start != "a" || slicing.Length == nil || *slicing.Length != "b" {
		t.Fatalf("SlicingExpr = %+v", slicing)
	}
}

func TestParseSlicingExprOpenBounds(t *testing.T) {
	program := parse(t, "version 0.0.1;\nv = buf[..];\n")
	assign := program.Statements[0].(*AssignStmt)
	slicing, ok := assign.Expr.(*SlicingExpr)
	if !ok {
		t.Fatalf("Expr = %T, want *SlicingExpr", assign.Expr)
	}
	if slicing.Start != nil || slicing.Length != nil {
		t.Fatalf("SlicingExpr = %+v, want both bounds nil", slicing)
	}
}

func TestParseRejectsMissingVersionDeclaration(t *testing.T) {
	toks, err := lexer.NewScanner("loop;\n").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	if _, err := NewParser(toks).Parse(); err == nil {
		t.Fatalf("a script missing the version declaration should fail to parse")
	}
}
