package typedval

import (
	"math/big"
	"testing"
)

func TestSignedRoundTrip(t *testing.T) {
	v := NewNumber(W8, 0xFF) // -1 as i8
	n, ok := v.Signed(true)
	if !ok || n.Cmp(big.NewInt(-1)) != 0 {
		t.Fatalf("signed(0xFF, i8) = %v, want -1", n)
	}
	n, ok = v.Signed(false)
	if !ok || n.Cmp(big.NewInt(255)) != 0 {
		t.Fatalf("signed(0xFF, u8) = %v, want 255", n)
	}
}

func TestSigned64(t *testing.T) {
	v := NewNumber(W64, ^uint64(0)) // -1 as i64
	n, ok := v.Signed(true)
	if !ok || n.Cmp(big.NewInt(-1)) != 0 {
		t.Fatalf("signed(all-ones, i64) = %v, want -1", n)
	}
}

func TestFromSignedTruncatesAndWraps(t *testing.T) {
	v := FromSigned(big.NewInt(-1), W8, true)
	if v.Bits != 0xFF {
		t.Fatalf("FromSigned(-1, 8) = %#x, want 0xff", v.Bits)
	}
	v = FromSigned(big.NewInt(256), W8, false)
	if v.Bits != 0 {
		t.Fatalf("FromSigned(256, 8) = %#x, want 0", v.Bits)
	}
}

func TestFromSignedNilIsErr(t *testing.T) {
	v := FromSigned(nil, W32, false)
	if !v.Err {
		t.Fatalf("FromSigned(nil, ...) should be Err")
	}
}

func TestInRangeAndClamp(t *testing.T) {
	if InRange(big.NewInt(200), W8, true) {
		t.Fatalf("200 should be out of range for i8")
	}
	if !InRange(big.NewInt(200), W8, false) {
		t.Fatalf("200 should be in range for u8")
	}
	clamped := Clamp(big.NewInt(1000), W8, false)
	if clamped.Cmp(big.NewInt(255)) != 0 {
		t.Fatalf("Clamp(1000, u8) = %v, want 255", clamped)
	}
}

func TestCastSatClampsSigned(t *testing.T) {
	v := NewNumber(W32, uint64(int64(-1000)&0xFFFFFFFF))
	result, ok := CastSat(v, W8, true)
	if !ok {
		t.Fatalf("CastSat(i32->i8) should be a valid narrowing direction")
	}
	want := MinValue(W8, true)
	n, _ := result.Signed(true)
	if n.Cmp(want) != 0 {
		t.Fatalf("CastSat(-1000, i32->i8) = %v, want %v", n, want)
	}
}

func TestCastSatRejectsWideningDirection(t *testing.T) {
	v := NewNumber(W8, 100)
	if _, ok := CastSat(v, W16, true); ok {
		t.Fatalf("CastSat(w8->w16) should report the wrong direction (requires w' <= v.Width)")
	}
}

func TestCastCheckedErrsOutOfRange(t *testing.T) {
	v := NewNumber(W32, 1000)
	result, ok := CastChecked(v, W8, false)
	if !ok {
		t.Fatalf("CastChecked(u32->u8) should be a valid narrowing direction")
	}
	if !result.Err {
		t.Fatalf("CastChecked(1000, u32->u8) should be Err")
	}
	result, ok = CastChecked(NewNumber(W32, 100), W8, false)
	if !ok || result.Err || result.Bits != 100 {
		t.Fatalf("CastChecked(100, u32->u8) = %+v, want 100", result)
	}
}

func TestCastCheckedRejectsWideningDirection(t *testing.T) {
	v := NewNumber(W16, 100)
	if _, ok := CastChecked(v, W32, false); ok {
		t.Fatalf("CastChecked(w16->w32) should report the wrong direction (requires w' <= v.Width)")
	}
}

func TestExtendPreservesSignedValue(t *testing.T) {
	v := NewNumber(W8, 0xFF) // -1 as i8
	extended, ok := Extend(v, W32, true)
	if !ok {
		t.Fatalf("Extend(w8->w32) should be a valid widening direction")
	}
	n, _ := extended.Signed(true)
	if n.Cmp(big.NewInt(-1)) != 0 {
		t.Fatalf("Extend(-1 as i8, i32) = %v, want -1", n)
	}
}

func TestExtendRejectsNarrowingDirection(t *testing.T) {
	v := NewNumber(W32, 100)
	if _, ok := Extend(v, W8, true); ok {
		t.Fatalf("Extend(w32->w8) should report the wrong direction (requires w' >= v.Width)")
	}
}

func TestWrapErrPropagates(t *testing.T) {
	v := NewErr(W32)
	result, ok := Wrap(v, W8)
	if !ok {
		t.Fatalf("Wrap(w32->w8) should be a valid narrowing direction")
	}
	if !result.Err {
		t.Fatalf("Wrap(Err) should remain Err")
	}
}

func TestWrapRejectsWideningDirection(t *testing.T) {
	v := NewNumber(W8, 100)
	if _, ok := Wrap(v, W16); ok {
		t.Fatalf("Wrap(w8->w16) should report the wrong direction (requires w' <= v.Width)")
	}
}

func TestPromote(t *testing.T) {
	if Promote(W8, W32) != W32 {
		t.Fatalf("Promote(8, 32) should be 32")
	}
	if Promote(W64, W8) != W64 {
		t.Fatalf("Promote(64, 8) should be 64")
	}
}
