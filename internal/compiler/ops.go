package compiler

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"

	"beltvm/internal/instr"
	"beltvm/internal/typedval"
	"beltvm/internal/vmerrors"
)

var (
	regLit  = regexp.MustCompile(`^(-?\d+)([iu])(8|16|32|64)$`)
	regType = regexp.MustCompile(`^([iu])(8|16|32|64)$`)
	regCast = regexp.MustCompile(`^(cast_extend|cast_wrap|cast_sat|cast_checked)(8|16|32|64)$`)
)

// parseLit splits a NUM literal's raw text (already underscore-stripped)
// into its magnitude, signedness, and width.
func parseLit(raw string) (n *big.Int, signed bool, width typedval.Width, err error) {
	m := regLit.FindStringSubmatch(raw)
	if m == nil {
		return nil, false, 0, vmerrors.NewCompileError(fmt.Sprintf("malformed numeric literal %q", raw), vmerrors.SourceLocation{})
	}
	n, ok := new(big.Int).SetString(m[1], 10)
	if !ok {
		return nil, false, 0, vmerrors.NewCompileError(fmt.Sprintf("malformed numeric literal %q", raw), vmerrors.SourceLocation{})
	}
	signed = m[2] == "i"
	w, _ := strconv.Atoi(m[3])
	return n, signed, typedval.Width(w), nil
}

// parseType parses a TYPE lexeme, e.g. "i32" or "u8".
func parseType(raw string) (signed bool, width typedval.Width, err error) {
	m := regType.FindStringSubmatch(raw)
	if m == nil {
		return false, 0, vmerrors.NewCompileError(fmt.Sprintf("malformed type %q", raw), vmerrors.SourceLocation{})
	}
	w, _ := strconv.Atoi(m[2])
	return m[1] == "i", typedval.Width(w), nil
}

type arithSpec struct {
	mode instr.ArithMode
	op   instr.ArithOp
}

func ok(n *big.Int) (*big.Int, bool) { return n, true }

var arithOps = map[string]arithSpec{
	"_+_": {instr.WIDENING, func(p ...*big.Int) (*big.Int, bool) { return ok(new(big.Int).Add(p[0], p[1])) }},
	"_-_": {instr.WIDENING, func(p ...*big.Int) (*big.Int, bool) { return ok(new(big.Int).Sub(p[0], p[1])) }},
	"_*_": {instr.WIDENING, func(p ...*big.Int) (*big.Int, bool) { return ok(new(big.Int).Mul(p[0], p[1])) }},
	"+":   {instr.CHECKED, func(p ...*big.Int) (*big.Int, bool) { return ok(new(big.Int).Add(p[0], p[1])) }},
	"-":   {instr.CHECKED, func(p ...*big.Int) (*big.Int, bool) { return ok(new(big.Int).Sub(p[0], p[1])) }},
	"*":   {instr.CHECKED, func(p ...*big.Int) (*big.Int, bool) { return ok(new(big.Int).Mul(p[0], p[1])) }},
	"/": {instr.CHECKED, func(p ...*big.Int) (*big.Int, bool) {
		if p[1].Sign() == 0 {
			return nil, false
		}
		q, _ := pyDivMod(p[0], p[1])
		return ok(q)
	}},
	"%": {instr.CHECKED, func(p ...*big.Int) (*big.Int, bool) {
		if p[1].Sign() == 0 {
			return nil, false
		}
		_, r := pyDivMod(p[0], p[1])
		return ok(r)
	}},
	"<<": {instr.CHECKED, func(p ...*big.Int) (*big.Int, bool) { return ok(new(big.Int).Lsh(p[0], uint(p[1].Uint64()))) }},
	">>": {instr.CHECKED, func(p ...*big.Int) (*big.Int, bool) { return ok(new(big.Int).Rsh(p[0], uint(p[1].Uint64()))) }},
	"&":  {instr.CHECKED, func(p ...*big.Int) (*big.Int, bool) { return ok(new(big.Int).And(p[0], p[1])) }},
	"|":  {instr.CHECKED, func(p ...*big.Int) (*big.Int, bool) { return ok(new(big.Int).Or(p[0], p[1])) }},
	"^":  {instr.CHECKED, func(p ...*big.Int) (*big.Int, bool) { return ok(new(big.Int).Xor(p[0], p[1])) }},
}

var relOps = map[string]instr.RelOp{
	"==": func(a, b *big.Int) bool { return a.Cmp(b) == 0 },
	"!=": func(a, b *big.Int) bool { return a.Cmp(b) != 0 },
	"<":  func(a, b *big.Int) bool { return a.Cmp(b) < 0 },
	"<=": func(a, b *big.Int) bool { return a.Cmp(b) <= 0 },
	">":  func(a, b *big.Int) bool { return a.Cmp(b) > 0 },
	">=": func(a, b *big.Int) bool { return a.Cmp(b) >= 0 },
}

// pyDivMod computes floor division and its matching modulus (result takes
// the divisor's sign, like Python's // and %), as opposed to Go big.Int's
// Euclidean DivMod (remainder always non-negative) or QuoRem (truncating).
// Callers must guard against a zero divisor themselves; arithOps's "/" and
// "%" entries do this and surface it as Err rather than calling in here.
func pyDivMod(a, b *big.Int) (*big.Int, *big.Int) {
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(a, b, r)
	if r.Sign() != 0 && (r.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
		r.Add(r, b)
	}
	return q, r
}
