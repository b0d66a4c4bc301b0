// Package x64 plugs the x86-64 instruction set into the tir core by
// implementing the instruction capability contract with a closed sum
// type, and by describing the general-purpose register file.
package x64

import (
	"fmt"

	"github.com/tirgo/tir/pkg/tir"
)

// General-purpose physical register ids.
const (
	RAX uint32 = iota
	RBX
	RCX
	RDX
	RSI
	RDI
	RSP
	RBP
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15

	RegCount uint32 = 16
)

var regNames = [RegCount]string{
	"rax", "rbx", "rcx", "rdx", "rsi", "rdi", "rsp", "rbp",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
}

// ReservedRegs lists registers the allocator must never hand out: the
// stack pointer and the frame pointer.
var ReservedRegs = []uint32{RSP, RBP}

// GPClass is the class of a 64-bit general-purpose register.
var GPClass = tir.Int(8)

// Preg returns the packed physical register for a general-purpose id.
func Preg(id uint32) tir.Reg {
	if id >= RegCount {
		panic(fmt.Sprintf("x64: physical register id %d out of range", id))
	}
	return tir.PhysicalReg(GPClass, id)
}

// Target describes the x86-64 register file to the tir core.
type Target struct{}

// PregCount returns the number of general-purpose registers.
func (Target) PregCount() uint32 { return RegCount }

// PregName returns the display name of a physical register id.
func (Target) PregName(id uint32) string {
	if id >= RegCount {
		panic(fmt.Sprintf("x64: physical register id %d out of range", id))
	}
	return regNames[id]
}

func regName(r tir.Reg) string {
	return tir.RegName(Target{}, r)
}
