package lexer

import "testing"

func tokenTypes(toks []Token) []TokenType {
	types := make([]TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestScanVersionDeclaration(t *testing.T) {
	toks, err := NewScanner("version 0.0.1;\n").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	want := []TokenType{TokenKwVersion, TokenVersionLit, TokenSemicolon, TokenEOF}
	got := tokenTypes(toks)
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokens = %v, want %v", got, want)
		}
	}
}

func TestScanNumericLiterals(t *testing.T) {
	for _, src := range []string{"42i32", "-3u8", "200u8", "1_000u64"} {
		toks, err := NewScanner(src).ScanTokens()
		if err != nil {
			t.Fatalf("ScanTokens(%q): %v", src, err)
		}
		if len(toks) != 2 || toks[0].Type != TokenLit {
			t.Fatalf("ScanTokens(%q) = %v, want a single LIT token", src, toks)
		}
		if toks[0].Lexeme != src {
			t.Fatalf("lexeme = %q, want %q", toks[0].Lexeme, src)
		}
	}
}

func TestScanNegativeWithoutSuffixIsMinusOperator(t *testing.T) {
	toks, err := NewScanner("-5").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	if len(toks) != 3 || toks[0].Type != TokenOperator || toks[0].Lexeme != "-" {
		t.Fatalf("tokens = %v, want ['-' OPERATOR, '5' NAME, EOF]", toks)
	}
	if toks[1].Type != TokenName || toks[1].Lexeme != "5" {
		t.Fatalf("tokens = %v, want ['-' OPERATOR, '5' NAME, EOF]", toks)
	}
}

func TestScanWideningOperators(t *testing.T) {
	for _, op := range []string{"_+_", "_-_", "_*_"} {
		toks, err := NewScanner(op).ScanTokens()
		if err != nil {
			t.Fatalf("ScanTokens(%q): %v", op, err)
		}
		if len(toks) != 2 || toks[0].Type != TokenOperator || toks[0].Lexeme != op {
			t.Fatalf("ScanTokens(%q) = %v, want a single OPERATOR token", op, toks)
		}
	}
}

func TestScanUnderscorePrefixedNameIsNotAnOperator(t *testing.T) {
	toks, err := NewScanner("_foo").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	if len(toks) != 2 || toks[0].Type != TokenName || toks[0].Lexeme != "_foo" {
		t.Fatalf("tokens = %v, want a single NAME token '_foo'", toks)
	}
}

func TestScanLocalName(t *testing.T) {
	toks, err := NewScanner("$x").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	if len(toks) != 2 || toks[0].Type != TokenLocalName || toks[0].Lexeme != "$x" {
		t.Fatalf("tokens = %v, want a single LOCAL_NAME token '$x'", toks)
	}
}

func TestScanBareDollarIsError(t *testing.T) {
	if _, err := NewScanner("$").ScanTokens(); err == nil {
		t.Fatalf("a bare '$' with no following name should be a lexical error")
	}
}

func TestScanSliceSeparator(t *testing.T) {
	toks, err := NewScanner("s[a..b]").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	want := []TokenType{TokenName, TokenLBracket, TokenName, TokenSliceSep, TokenName, TokenRBracket, TokenEOF}
	got := tokenTypes(toks)
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokens = %v, want %v", got, want)
		}
	}
}

func TestScanLoneDotIsError(t *testing.T) {
	if _, err := NewScanner(".").ScanTokens(); err == nil {
		t.Fatalf("a lone '.' should be a lexical error")
	}
}

func TestScanLongestOperatorMatchesFirst(t *testing.T) {
	// "==" must not be scanned as two '=' assign tokens.
	toks, err := NewScanner("a == b").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	want := []TokenType{TokenName, TokenOperator, TokenName, TokenEOF}
	got := tokenTypes(toks)
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokens = %v, want %v", got, want)
		}
	}
	if toks[1].Lexeme != "==" {
		t.Fatalf("operator lexeme = %q, want \"==\"", toks[1].Lexeme)
	}
}

func TestScanCommentsAreSkipped(t *testing.T) {
	toks, err := NewScanner("# a comment\nversion 0.0.1;\n").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	want := []TokenType{TokenKwVersion, TokenVersionLit, TokenSemicolon, TokenEOF}
	got := tokenTypes(toks)
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
}

func TestScanUnexpectedCharacterErrors(t *testing.T) {
	if _, err := NewScanner("@").ScanTokens(); err == nil {
		t.Fatalf("an unrecognized character should be a lexical error")
	}
}
