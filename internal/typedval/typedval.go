// Package typedval implements the belt machine's typed value: a fixed-width
// integer that is always stored as an unsigned bit pattern, carries an
// explicit Err sentinel, and takes its signed/unsigned interpretation from
// the operation site rather than from the value itself.
package typedval

import "math/big"

// Width is the bit width of a value: one of 8, 16, 32, 64.
type Width uint8

const (
	W8  Width = 8
	W16 Width = 16
	W32 Width = 32
	W64 Width = 64
)

// Valid reports whether w is one of the four supported widths.
func (w Width) Valid() bool {
	switch w {
	case W8, W16, W32, W64:
		return true
	default:
		return false
	}
}

// NumBytes returns the width's size in bytes.
func (w Width) NumBytes() int { return int(w) / 8 }

func (w Width) mask() uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(w)) - 1
}

// Promote returns the wider of two widths, per spec.md Section 4.1.
func Promote(a, b Width) Width {
	if a > b {
		return a
	}
	return b
}

// Value is a (width, payload) pair: payload is either a non-negative
// bit-pattern below 2^width, or Err.
type Value struct {
	Width Width
	Bits  uint64
	Err   bool
}

// NewNumber builds a non-Err value, masking bits to width.
func NewNumber(w Width, bits uint64) Value {
	return Value{Width: w, Bits: bits & w.mask()}
}

// NewErr builds the Err sentinel at the given width.
func NewErr(w Width) Value { return Value{Width: w, Err: true} }

// Unsigned returns the value's raw stored bit pattern as an unbounded
// integer (always non-negative). Reports false for Err.
func (v Value) Unsigned() (*big.Int, bool) {
	if v.Err {
		return nil, false
	}
	return new(big.Int).SetUint64(v.Bits), true
}

// Signed converts the stored unsigned bit pattern to its two's-complement
// signed interpretation when signed is true, per to_signed(W, s). Reports
// false for Err.
func (v Value) Signed(signed bool) (*big.Int, bool) {
	if v.Err {
		return nil, false
	}
	n := new(big.Int).SetUint64(v.Bits)
	if signed && v.Width < 64 && v.Bits&(uint64(1)<<(uint(v.Width)-1)) != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(v.Width)))
	} else if signed && v.Width == 64 && int64(v.Bits) < 0 {
		// Full 64-bit two's complement: subtract 2^64.
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), 64))
	}
	return n, true
}

// FromSigned stores a signed- or unsigned-interpreted unbounded integer
// back as a width-bit value, truncating to width bits, per from_signed(W, s).
// A nil n produces Err.
func FromSigned(n *big.Int, w Width, signed bool) Value {
	if n == nil {
		return NewErr(w)
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(w))
	r := new(big.Int).Mod(n, mod) // Euclidean mod: always in [0, mod)
	return Value{Width: w, Bits: r.Uint64()}
}

// MaxValue returns max(W, signed) per spec.md Section 8.
func MaxValue(w Width, signed bool) *big.Int {
	if signed {
		return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(w)-1), big.NewInt(1))
	}
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(w)), big.NewInt(1))
}

// MinValue returns min(W, signed) per spec.md Section 8.
func MinValue(w Width, signed bool) *big.Int {
	if signed {
		return new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(w)-1))
	}
	return big.NewInt(0)
}

// InRange reports whether n lies within [min(w,signed), max(w,signed)].
func InRange(n *big.Int, w Width, signed bool) bool {
	return n.Cmp(MinValue(w, signed)) >= 0 && n.Cmp(MaxValue(w, signed)) <= 0
}

// Clamp saturates n into [min(w,signed), max(w,signed)].
func Clamp(n *big.Int, w Width, signed bool) *big.Int {
	lo, hi := MinValue(w, signed), MaxValue(w, signed)
	if n.Cmp(lo) < 0 {
		return lo
	}
	if n.Cmp(hi) > 0 {
		return hi
	}
	return n
}

// Wrap reduces v's unsigned pattern modulo 2^w'. Requires w' <= v.Width; the
// wrong direction is a compile-time category error per spec.md Section 4.1,
// but since the compiler does not track a value's runtime width, this is
// re-checked here and reported via the second return (false = wrong
// direction), for the caller to turn into a trap if reached at runtime.
func Wrap(v Value, wPrime Width) (Value, bool) {
	if wPrime > v.Width {
		return Value{}, false
	}
	if v.Err {
		return NewErr(wPrime), true
	}
	return NewNumber(wPrime, v.Bits), true
}

// CastSat interprets v with signedness s and clamps into [min(w',s), max(w',s)].
// Requires w' <= v.Width; see Wrap's doc comment on the second return.
func CastSat(v Value, wPrime Width, signed bool) (Value, bool) {
	if wPrime > v.Width {
		return Value{}, false
	}
	if v.Width == wPrime {
		return v, true
	}
	n, ok := v.Signed(signed)
	if !ok {
		return NewErr(wPrime), true
	}
	return FromSigned(Clamp(n, wPrime, signed), wPrime, signed), true
}

// CastChecked behaves like CastSat but yields Err instead of clamping when
// the signed-interpreted value falls outside the target range.
// Requires w' <= v.Width; see Wrap's doc comment on the second return.
func CastChecked(v Value, wPrime Width, signed bool) (Value, bool) {
	if wPrime > v.Width {
		return Value{}, false
	}
	if v.Width == wPrime {
		return v, true
	}
	n, ok := v.Signed(signed)
	if !ok || !InRange(n, wPrime, signed) {
		return NewErr(wPrime), true
	}
	return FromSigned(n, wPrime, signed), true
}

// Extend sign- or zero-extends v to w', preserving its signed-interpreted
// value. Requires w' >= v.Width; see Wrap's doc comment on the second return.
func Extend(v Value, wPrime Width, signed bool) (Value, bool) {
	if wPrime < v.Width {
		return Value{}, false
	}
	if v.Width == wPrime {
		return v, true
	}
	n, ok := v.Signed(signed)
	if !ok {
		return NewErr(wPrime), true
	}
	return FromSigned(n, wPrime, signed), true
}
