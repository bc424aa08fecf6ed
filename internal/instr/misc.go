package instr

import (
	"beltvm/internal/belt"
	"beltvm/internal/typedval"
	"beltvm/internal/vmerrors"
)

// InsConst pushes a literal value.
type InsConst struct {
	Value belt.Item
}

func (i InsConst) Run(vm Machine) (*Break, error) {
	vm.Belt().Push(i.Value)
	return nil, nil
}

// InsLocalGet pushes the value stored in local LocalIdx.
type InsLocalGet struct {
	LocalIdx int
}

func (i InsLocalGet) Run(vm Machine) (*Break, error) {
	item, err := vm.Local(i.LocalIdx)
	if err != nil {
		return nil, vmerrors.NewTrap(vmerrors.TrapBeltIndexOutOfRange, 0, err.Error())
	}
	vm.Belt().Push(item)
	return nil, nil
}

// InsLocalSet stores belt[0] into local LocalIdx.
type InsLocalSet struct {
	LocalIdx int
}

func (i InsLocalSet) Run(vm Machine) (*Break, error) {
	item, err := vm.Belt().Get(0)
	if err != nil {
		return nil, vmerrors.NewTrap(vmerrors.TrapBeltIndexOutOfRange, 0, err.Error())
	}
	if err := vm.SetLocal(i.LocalIdx, item); err != nil {
		return nil, vmerrors.NewTrap(vmerrors.TrapBeltIndexOutOfRange, 0, err.Error())
	}
	return nil, nil
}

// InsIsErr pushes 1 if belt[ItemIdx] is Err, else 0.
type InsIsErr struct {
	ItemIdx int
}

func (i InsIsErr) Run(vm Machine) (*Break, error) {
	num, err := vm.Belt().GetNum(i.ItemIdx)
	if err != nil {
		return nil, vmerrors.NewTrap(vmerrors.TrapBeltKindMismatch, 0, err.Error())
	}
	vm.Belt().Push(belt.NumberItem(typedval.NewNumber(typedval.W8, boolBit(num.Err))))
	return nil, nil
}

// InsVerify traps unless belt[ItemIdx] is a non-Err, non-zero value.
type InsVerify struct {
	ItemIdx int
}

func (i InsVerify) Run(vm Machine) (*Break, error) {
	num, err := vm.Belt().GetNum(i.ItemIdx)
	if err != nil {
		return nil, vmerrors.NewTrap(vmerrors.TrapBeltKindMismatch, 0, err.Error())
	}
	if num.Err || num.Bits == 0 {
		return nil, vmerrors.NewTrap(vmerrors.TrapVerifyFailed, 0, "verify failed")
	}
	return nil, nil
}

// InsVerifyOk traps unless belt[ItemIdx] is a non-Err value (zero is fine).
type InsVerifyOk struct {
	ItemIdx int
}

func (i InsVerifyOk) Run(vm Machine) (*Break, error) {
	num, err := vm.Belt().GetNum(i.ItemIdx)
	if err != nil {
		return nil, vmerrors.NewTrap(vmerrors.TrapBeltKindMismatch, 0, err.Error())
	}
	if num.Err {
		return nil, vmerrors.NewTrap(vmerrors.TrapVerifyFailed, 0, "verify failed")
	}
	return nil, nil
}

// InsSliceLen pushes the length of belt[SliceIdx] as a 32-bit number.
type InsSliceLen struct {
	SliceIdx int
}

func (i InsSliceLen) Run(vm Machine) (*Break, error) {
	slc, err := vm.Belt().GetSlice(i.SliceIdx)
	if err != nil {
		return nil, vmerrors.NewTrap(vmerrors.TrapBeltKindMismatch, 0, err.Error())
	}
	vm.Belt().Push(belt.NumberItem(typedval.NewNumber(typedval.W32, uint64(slc.Length))))
	return nil, nil
}

// SliceOp is one of belt.Slice's TrimL, TrimR, or Shrink methods.
type SliceOp func(s belt.Slice, n int) (belt.Slice, bool)

// InsSliceOp applies Op to belt[SliceIdx] with a byte count read from
// belt[NumBytesIdx], trapping if the result would fall outside the slice.
type InsSliceOp struct {
	SliceIdx    int
	NumBytesIdx int
	Op          SliceOp
}

func (i InsSliceOp) Run(vm Machine) (*Break, error) {
	slc, err := vm.Belt().GetSlice(i.SliceIdx)
	if err != nil {
		return nil, vmerrors.NewTrap(vmerrors.TrapBeltKindMismatch, 0, err.Error())
	}
	n, err := vm.Belt().GetNum(i.NumBytesIdx)
	if err != nil {
		return nil, vmerrors.NewTrap(vmerrors.TrapBeltKindMismatch, 0, err.Error())
	}
	result, ok := i.Op(slc, int(n.Bits))
	if !ok {
		return nil, vmerrors.NewTrap(vmerrors.TrapSliceOutOfRange, 0, "slice operation out of range")
	}
	vm.Belt().Push(belt.SliceItem(result))
	return nil, nil
}

// InsSubSlice pushes the sub-range [belt[StartIdx], belt[StartIdx]+belt[LengthIdx])
// of belt[SliceIdx], trapping if it falls outside the source slice.
type InsSubSlice struct {
	SliceIdx, StartIdx, LengthIdx int
}

func (i InsSubSlice) Run(vm Machine) (*Break, error) {
	slc, err := vm.Belt().GetSlice(i.SliceIdx)
	if err != nil {
		return nil, vmerrors.NewTrap(vmerrors.TrapBeltKindMismatch, 0, err.Error())
	}
	start, err := vm.Belt().GetNum(i.StartIdx)
	if err != nil {
		return nil, vmerrors.NewTrap(vmerrors.TrapBeltKindMismatch, 0, err.Error())
	}
	length, err := vm.Belt().GetNum(i.LengthIdx)
	if err != nil {
		return nil, vmerrors.NewTrap(vmerrors.TrapBeltKindMismatch, 0, err.Error())
	}
	result, ok := slc.SubSlice(int(start.Bits), int(length.Bits))
	if !ok {
		return nil, vmerrors.NewTrap(vmerrors.TrapSliceOutOfRange, 0, "subslice out of range")
	}
	vm.Belt().Push(belt.SliceItem(result))
	return nil, nil
}

// InsLoad reads a Width-wide number at Offset from belt[SliceIdx] and
// pushes it. An out-of-range read never traps: it yields Err.
type InsLoad struct {
	Width    typedval.Width
	SliceIdx int
	Offset   int
}

func (i InsLoad) Run(vm Machine) (*Break, error) {
	slc, err := vm.Belt().GetSlice(i.SliceIdx)
	if err != nil {
		return nil, vmerrors.NewTrap(vmerrors.TrapBeltKindMismatch, 0, err.Error())
	}
	vm.Belt().Push(belt.NumberItem(slc.Load(i.Width, i.Offset)))
	return nil, nil
}

// InsStore writes belt[ItemIdx] at Offset into belt[SliceIdx]. Storing an
// Err value is a silent no-op; overrun or writing through an immutable
// slice traps.
type InsStore struct {
	ItemIdx, SliceIdx int
	Offset            int
}

func (i InsStore) Run(vm Machine) (*Break, error) {
	slc, err := vm.Belt().GetSlice(i.SliceIdx)
	if err != nil {
		return nil, vmerrors.NewTrap(vmerrors.TrapBeltKindMismatch, 0, err.Error())
	}
	num, err := vm.Belt().GetNum(i.ItemIdx)
	if err != nil {
		return nil, vmerrors.NewTrap(vmerrors.TrapBeltKindMismatch, 0, err.Error())
	}
	switch slc.Store(i.Offset, num) {
	case belt.StoreOutOfRange:
		return nil, vmerrors.NewTrap(vmerrors.TrapStoreOutOfRange, 0, "store out of range")
	case belt.StoreImmutable:
		return nil, vmerrors.NewTrap(vmerrors.TrapStoreImmutable, 0, "store through immutable slice")
	default:
		return nil, nil
	}
}
