// Package tir defines the target-independent representation: a
// function is an arena of basic blocks over a generic instruction
// type, with packed registers spanning virtual, physical and spill
// storage. Analyses (CFG, dominators, liveness) are derived views that
// are invalidated by any structural mutation.
package tir

import (
	"fmt"
	"math/bits"
)

// StorageKind distinguishes the three register spaces. Each space has
// its own dense id range.
type StorageKind uint8

const (
	Virtual StorageKind = iota
	Physical
	Spill
)

// ClassKind is the register file a register belongs to.
type ClassKind uint8

const (
	ClassInt ClassKind = iota
	ClassFloat
	ClassVec
)

// RegClass pairs a register file with an operand width in bytes. The
// width must be a power of two.
type RegClass struct {
	Kind  ClassKind
	Width uint8
}

// Int returns an integer class of the given width in bytes.
func Int(width uint8) RegClass { return RegClass{Kind: ClassInt, Width: width} }

// Float returns a floating-point class of the given width in bytes.
func Float(width uint8) RegClass { return RegClass{Kind: ClassFloat, Width: width} }

// Vec returns a vector class of the given width in bytes.
func Vec(width uint8) RegClass { return RegClass{Kind: ClassVec, Width: width} }

// Reg is a packed register identifier.
//
// Layout, high to low: storage kind (2 bits), class kind (2 bits),
// log2 of the width in bytes (4 bits), id (24 bits). The encoding
// round-trips exactly: decode(encode(kind, class, id)) yields the
// original triple.
type Reg uint32

const (
	regIDBits     = 24
	regIDMask     = 1<<regIDBits - 1
	regWidthShift = regIDBits
	regWidthBits  = 4
	regClassShift = regWidthShift + regWidthBits
	regKindShift  = regClassShift + 2

	// MaxRegID is the largest id representable in a packed register.
	MaxRegID = regIDMask
)

// NewReg packs a register. It panics if the class width is not a
// power of two or the id does not fit in the id field.
func NewReg(kind StorageKind, class RegClass, id uint32) Reg {
	if class.Width == 0 || class.Width&(class.Width-1) != 0 {
		panic(fmt.Sprintf("tir: register width %d is not a power of two", class.Width))
	}
	if id > MaxRegID {
		panic(fmt.Sprintf("tir: register id %d out of range", id))
	}
	wlog := uint32(bits.TrailingZeros8(class.Width))
	return Reg(uint32(kind)<<regKindShift |
		uint32(class.Kind)<<regClassShift |
		wlog<<regWidthShift |
		id)
}

// VirtualReg packs a virtual register of the given class.
func VirtualReg(class RegClass, id uint32) Reg { return NewReg(Virtual, class, id) }

// PhysicalReg packs a physical register of the given class.
func PhysicalReg(class RegClass, id uint32) Reg { return NewReg(Physical, class, id) }

// SpillReg packs a spill-slot register of the given class; the id is
// the stack slot index.
func SpillReg(class RegClass, id uint32) Reg { return NewReg(Spill, class, id) }

// Storage returns the register's storage kind.
func (r Reg) Storage() StorageKind {
	return StorageKind(r >> regKindShift & 0b11)
}

// Class returns the register's class and width.
func (r Reg) Class() RegClass {
	return RegClass{
		Kind:  ClassKind(r >> regClassShift & 0b11),
		Width: 1 << (r >> regWidthShift & (1<<regWidthBits - 1)),
	}
}

// ID returns the register's id within its storage space.
func (r Reg) ID() uint32 {
	return uint32(r) & regIDMask
}

// IsVirtual reports whether r names a virtual register.
func (r Reg) IsVirtual() bool { return r.Storage() == Virtual }

// IsPhysical reports whether r names a physical register.
func (r Reg) IsPhysical() bool { return r.Storage() == Physical }

// IsSpill reports whether r names a spill slot.
func (r Reg) IsSpill() bool { return r.Storage() == Spill }

// String renders virtual registers as v<id> and spill slots as s<id>.
// Physical registers render as p<id>; targets render their own names
// through RegName.
func (r Reg) String() string {
	switch r.Storage() {
	case Virtual:
		return fmt.Sprintf("v%d", r.ID())
	case Spill:
		return fmt.Sprintf("s%d", r.ID())
	default:
		return fmt.Sprintf("p%d", r.ID())
	}
}
