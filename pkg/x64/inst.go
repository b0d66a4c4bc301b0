package x64

import (
	"fmt"

	"github.com/tirgo/tir/pkg/tir"
)

// Inst is the closed x86-64 instruction set seen by the tir core. It
// satisfies tir.Inst[Inst]; every variant is an immutable value and
// Replace returns a fresh one.
type Inst interface {
	Uses() []tir.Reg
	Defs() []tir.Reg
	BranchTargets() []tir.Block
	IsBranch() bool
	IsRet() bool
	Replace(old, new tir.Reg) Inst
	String() string
}

// Cond is a condition code for conditional branches.
type Cond uint8

const (
	CondEq Cond = iota
	CondNe
	CondLt
	CondLe
	CondGt
	CondGe
)

var condNames = [...]string{"e", "ne", "l", "le", "g", "ge"}

func (c Cond) String() string { return condNames[c] }

func sub(r, old, new tir.Reg) tir.Reg {
	if r == old {
		return new
	}
	return r
}

// Mov64rr copies Src into Dst.
type Mov64rr struct {
	Src, Dst tir.Reg
}

func (i Mov64rr) Uses() []tir.Reg { return []tir.Reg{i.Src} }
func (i Mov64rr) Defs() []tir.Reg { return []tir.Reg{i.Dst} }

func (i Mov64rr) BranchTargets() []tir.Block { return nil }
func (i Mov64rr) IsBranch() bool             { return false }
func (i Mov64rr) IsRet() bool                { return false }

func (i Mov64rr) Replace(old, new tir.Reg) Inst {
	return Mov64rr{Src: sub(i.Src, old, new), Dst: sub(i.Dst, old, new)}
}

func (i Mov64rr) String() string {
	return fmt.Sprintf("mov %s, %s", regName(i.Dst), regName(i.Src))
}

// Mov64ri loads an immediate into Dst.
type Mov64ri struct {
	Dst tir.Reg
	Imm int64
}

func (i Mov64ri) Uses() []tir.Reg { return nil }
func (i Mov64ri) Defs() []tir.Reg { return []tir.Reg{i.Dst} }

func (i Mov64ri) BranchTargets() []tir.Block { return nil }
func (i Mov64ri) IsBranch() bool             { return false }
func (i Mov64ri) IsRet() bool                { return false }

func (i Mov64ri) Replace(old, new tir.Reg) Inst {
	return Mov64ri{Dst: sub(i.Dst, old, new), Imm: i.Imm}
}

func (i Mov64ri) String() string {
	return fmt.Sprintf("mov %s, %d", regName(i.Dst), i.Imm)
}

// Add64rr computes Dst += Src.
type Add64rr struct {
	Src, Dst tir.Reg
}

func (i Add64rr) Uses() []tir.Reg { return []tir.Reg{i.Src, i.Dst} }
func (i Add64rr) Defs() []tir.Reg { return []tir.Reg{i.Dst} }

func (i Add64rr) BranchTargets() []tir.Block { return nil }
func (i Add64rr) IsBranch() bool             { return false }
func (i Add64rr) IsRet() bool                { return false }

func (i Add64rr) Replace(old, new tir.Reg) Inst {
	return Add64rr{Src: sub(i.Src, old, new), Dst: sub(i.Dst, old, new)}
}

func (i Add64rr) String() string {
	return fmt.Sprintf("add %s, %s", regName(i.Dst), regName(i.Src))
}

// Sub64rr computes Dst -= Src.
type Sub64rr struct {
	Src, Dst tir.Reg
}

func (i Sub64rr) Uses() []tir.Reg { return []tir.Reg{i.Src, i.Dst} }
func (i Sub64rr) Defs() []tir.Reg { return []tir.Reg{i.Dst} }

func (i Sub64rr) BranchTargets() []tir.Block { return nil }
func (i Sub64rr) IsBranch() bool             { return false }
func (i Sub64rr) IsRet() bool                { return false }

func (i Sub64rr) Replace(old, new tir.Reg) Inst {
	return Sub64rr{Src: sub(i.Src, old, new), Dst: sub(i.Dst, old, new)}
}

func (i Sub64rr) String() string {
	return fmt.Sprintf("sub %s, %s", regName(i.Dst), regName(i.Src))
}

// Cmp64rr compares A with B, setting flags for a following Jcc.
type Cmp64rr struct {
	A, B tir.Reg
}

func (i Cmp64rr) Uses() []tir.Reg { return []tir.Reg{i.A, i.B} }
func (i Cmp64rr) Defs() []tir.Reg { return nil }

func (i Cmp64rr) BranchTargets() []tir.Block { return nil }
func (i Cmp64rr) IsBranch() bool             { return false }
func (i Cmp64rr) IsRet() bool                { return false }

func (i Cmp64rr) Replace(old, new tir.Reg) Inst {
	return Cmp64rr{A: sub(i.A, old, new), B: sub(i.B, old, new)}
}

func (i Cmp64rr) String() string {
	return fmt.Sprintf("cmp %s, %s", regName(i.A), regName(i.B))
}

// Jcc branches to Taken when Cond holds and to NotTaken otherwise.
type Jcc struct {
	Cond     Cond
	Taken    tir.Block
	NotTaken tir.Block
}

func (i Jcc) Uses() []tir.Reg { return nil }
func (i Jcc) Defs() []tir.Reg { return nil }

func (i Jcc) BranchTargets() []tir.Block { return []tir.Block{i.Taken, i.NotTaken} }
func (i Jcc) IsBranch() bool             { return true }
func (i Jcc) IsRet() bool                { return false }

func (i Jcc) Replace(old, new tir.Reg) Inst { return i }

func (i Jcc) String() string {
	return fmt.Sprintf("j%s %s ; else %s", i.Cond, i.Taken, i.NotTaken)
}

// Jmp branches unconditionally to Target.
type Jmp struct {
	Target tir.Block
}

func (i Jmp) Uses() []tir.Reg { return nil }
func (i Jmp) Defs() []tir.Reg { return nil }

func (i Jmp) BranchTargets() []tir.Block { return []tir.Block{i.Target} }
func (i Jmp) IsBranch() bool             { return true }
func (i Jmp) IsRet() bool                { return false }

func (i Jmp) Replace(old, new tir.Reg) Inst { return i }

func (i Jmp) String() string {
	return fmt.Sprintf("jmp %s", i.Target)
}

// Ret returns from the function.
type Ret struct{}

func (i Ret) Uses() []tir.Reg { return nil }
func (i Ret) Defs() []tir.Reg { return nil }

func (i Ret) BranchTargets() []tir.Block { return nil }
func (i Ret) IsBranch() bool             { return false }
func (i Ret) IsRet() bool                { return true }

func (i Ret) Replace(old, new tir.Reg) Inst { return i }

func (i Ret) String() string { return "ret" }
