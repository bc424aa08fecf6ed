package belt

import (
	"encoding/binary"
	"fmt"

	"beltvm/internal/typedval"
)

// Buffer is the byte storage a Slice views into: either the mutable RAM
// arena, or an immutable preamble attached to the transaction.
type Buffer struct {
	Data    []byte
	Mutable bool
}

// NewRAM allocates a zeroed, mutable buffer of the given size -- the VM's
// RAM arena (spec.md Section 3).
func NewRAM(size int) *Buffer {
	return &Buffer{Data: make([]byte, size), Mutable: true}
}

// NewPreamble wraps a read-only byte sequence (a preamble script or other
// immutable witness data) as a buffer.
func NewPreamble(data []byte) *Buffer {
	return &Buffer{Data: data, Mutable: false}
}

// Slice is a handle (buffer, start, length) per spec.md Section 3. The
// invariant start+length <= len(buffer.Data) holds for every live Slice;
// operations that would violate it return ok=false for the caller to trap.
type Slice struct {
	Buf    *Buffer
	Start  int
	Length int
}

// Whole returns a slice covering an entire buffer.
func Whole(buf *Buffer) Slice {
	return Slice{Buf: buf, Start: 0, Length: len(buf.Data)}
}

// TrimL trims n bytes from the left, per spec.md Section 4.3.
func (s Slice) TrimL(n int) (Slice, bool) {
	if n < 0 || n > s.Length {
		return Slice{}, false
	}
	return Slice{Buf: s.Buf, Start: s.Start + n, Length: s.Length - n}, true
}

// TrimR trims n bytes from the right end, keeping Start unchanged. Per
// spec.md Section 9's design note, this coincides with Shrink in current
// behavior; both are kept as distinct call sites so a future split is
// localized (see DESIGN.md).
func (s Slice) TrimR(n int) (Slice, bool) {
	if n < 0 || n > s.Length {
		return Slice{}, false
	}
	return Slice{Buf: s.Buf, Start: s.Start, Length: s.Length - n}, true
}

// Shrink reduces the slice's length by n bytes. See TrimR.
func (s Slice) Shrink(n int) (Slice, bool) {
	if n < 0 || n > s.Length {
		return Slice{}, false
	}
	return Slice{Buf: s.Buf, Start: s.Start, Length: s.Length - n}, true
}

// SubSlice returns the sub-range [start, start+length) of s.
func (s Slice) SubSlice(start, length int) (Slice, bool) {
	if start < 0 || length < 0 || start+length > s.Length {
		return Slice{}, false
	}
	return Slice{Buf: s.Buf, Start: s.Start + start, Length: length}, true
}

// Load reads a little-endian, unsigned width-w number at offset. Per
// spec.md Section 4.3, an out-of-range read never traps; it yields an
// Err-valued number instead (a program-visible failure channel).
func (s Slice) Load(w typedval.Width, offset int) typedval.Value {
	if offset < 0 {
		return typedval.NewErr(w)
	}
	n := w.NumBytes()
	if offset+n > s.Length {
		return typedval.NewErr(w)
	}
	i := s.Start + offset
	buf := make([]byte, 8)
	copy(buf, s.Buf.Data[i:i+n])
	return typedval.NewNumber(w, binary.LittleEndian.Uint64(buf))
}

// StoreResult describes the outcome of a Store call.
type StoreResult int

const (
	StoreOK StoreResult = iota
	StoreNoOp              // storing an Err value: a silent no-op, not a trap
	StoreOutOfRange
	StoreImmutable
)

// Store writes v's raw unsigned pattern little-endian at offset. Per
// spec.md Section 4.3: overrun traps, storing through an immutable slice
// traps, storing an Err value is a silent no-op.
func (s Slice) Store(offset int, v typedval.Value) StoreResult {
	if v.Err {
		return StoreNoOp
	}
	if offset < 0 {
		return StoreOutOfRange
	}
	n := v.Width.NumBytes()
	if !s.Buf.Mutable {
		return StoreImmutable
	}
	if offset+n > s.Length {
		return StoreOutOfRange
	}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v.Bits)
	i := s.Start + offset
	copy(s.Buf.Data[i:i+n], buf[:n])
	return StoreOK
}

func (s Slice) String() string {
	return fmt.Sprintf("Slice(start=%d, length=%d, mutable=%v)", s.Start, s.Length, s.Buf.Mutable)
}
