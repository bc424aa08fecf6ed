// Package belt implements the fixed-capacity operand store (spec.md Section
// 3, Section 4.1): a 16-slot shift register of tagged Number/Slice items,
// plus the byte-addressed Slice view used for RAM/preamble access.
package belt

import (
	"fmt"

	"beltvm/internal/typedval"
)

// Size is the belt's fixed capacity.
const Size = 16

// Item is a tagged union of a Number (typedval.Value) or a Slice.
// IsSlice selects which field is live, mirroring the original's
// BeltItem = Union[BeltSlice, BeltNum].
type Item struct {
	IsSlice bool
	Num     typedval.Value
	Slc     Slice
}

// NumberItem wraps a typed value as a belt item.
func NumberItem(v typedval.Value) Item { return Item{IsSlice: false, Num: v} }

// SliceItem wraps a slice handle as a belt item.
func SliceItem(s Slice) Item { return Item{IsSlice: true, Slc: s} }

// Belt is an ordered sequence of exactly Size items. Position 0 is the
// youngest (most recently pushed); position Size-1 is the oldest. A ring
// buffer with a head index gives O(1) push, per spec.md Section 9's
// "pick the ring for performance" note.
type Belt struct {
	items [Size]Item
	head  int // items[(head+i) % Size] is logical position i
}

// New initializes a belt to Size width-8 numbers of value 0, per spec.md
// Section 4.1.
func New() *Belt {
	b := &Belt{}
	zero := NumberItem(typedval.NewNumber(typedval.W8, 0))
	for i := range b.items {
		b.items[i] = zero
	}
	return b
}

// Push drops the oldest item and inserts value at position 0.
func (b *Belt) Push(value Item) {
	b.head = (b.head - 1 + Size) % Size
	b.items[b.head] = value
}

func (b *Belt) index(i int) int { return (b.head + i) % Size }

// Get returns the item at logical position i (0 = youngest). Out-of-range
// indices are a caller bug (the compiler only ever emits valid indices) and
// are reported as an error for the caller to turn into a Trap.
func (b *Belt) Get(i int) (Item, error) {
	if i < 0 || i >= Size {
		return Item{}, fmt.Errorf("belt index %d out of range [0,%d)", i, Size)
	}
	return b.items[b.index(i)], nil
}

// GetNum returns the item at i, requiring it to be a Number.
func (b *Belt) GetNum(i int) (typedval.Value, error) {
	item, err := b.Get(i)
	if err != nil {
		return typedval.Value{}, err
	}
	if item.IsSlice {
		return typedval.Value{}, fmt.Errorf("expected num at belt[%d], got slice", i)
	}
	return item.Num, nil
}

// GetSlice returns the item at i, requiring it to be a Slice.
func (b *Belt) GetSlice(i int) (Slice, error) {
	item, err := b.Get(i)
	if err != nil {
		return Slice{}, err
	}
	if !item.IsSlice {
		return Slice{}, fmt.Errorf("expected slice at belt[%d], got num", i)
	}
	return item.Slc, nil
}
