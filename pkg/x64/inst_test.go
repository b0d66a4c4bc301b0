package x64

import (
	"testing"

	"github.com/tirgo/tir/pkg/tir"
)

func TestInstUsesDefs(t *testing.T) {
	v0 := tir.VirtualReg(GPClass, 0)
	v1 := tir.VirtualReg(GPClass, 1)

	tests := []struct {
		name     string
		inst     Inst
		wantUses []tir.Reg
		wantDefs []tir.Reg
	}{
		{"mov rr", Mov64rr{Src: v0, Dst: v1}, []tir.Reg{v0}, []tir.Reg{v1}},
		{"mov ri", Mov64ri{Dst: v0, Imm: 42}, nil, []tir.Reg{v0}},
		{"add", Add64rr{Src: v0, Dst: v1}, []tir.Reg{v0, v1}, []tir.Reg{v1}},
		{"sub", Sub64rr{Src: v0, Dst: v1}, []tir.Reg{v0, v1}, []tir.Reg{v1}},
		{"cmp", Cmp64rr{A: v0, B: v1}, []tir.Reg{v0, v1}, nil},
		{"jmp", Jmp{Target: tir.Block(1)}, nil, nil},
		{"jcc", Jcc{Cond: CondEq, Taken: 1, NotTaken: 2}, nil, nil},
		{"ret", Ret{}, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !regsEqual(tt.inst.Uses(), tt.wantUses) {
				t.Errorf("Uses() = %v, want %v", tt.inst.Uses(), tt.wantUses)
			}
			if !regsEqual(tt.inst.Defs(), tt.wantDefs) {
				t.Errorf("Defs() = %v, want %v", tt.inst.Defs(), tt.wantDefs)
			}
		})
	}
}

func TestInstTerminators(t *testing.T) {
	if !tir.IsTerm[Inst](Ret{}) {
		t.Error("ret must be a terminator")
	}
	if !tir.IsTerm[Inst](Jmp{Target: 0}) {
		t.Error("jmp must be a terminator")
	}
	if !tir.IsTerm[Inst](Jcc{}) {
		t.Error("jcc must be a terminator")
	}
	if tir.IsTerm[Inst](Mov64rr{}) {
		t.Error("mov must not be a terminator")
	}
	if (Ret{}).IsBranch() {
		t.Error("ret is not a branch")
	}
}

func TestInstBranchTargets(t *testing.T) {
	jcc := Jcc{Cond: CondNe, Taken: tir.Block(3), NotTaken: tir.Block(5)}
	targets := jcc.BranchTargets()
	if len(targets) != 2 || targets[0] != tir.Block(3) || targets[1] != tir.Block(5) {
		t.Errorf("BranchTargets() = %v, want [block3 block5]", targets)
	}
	jmp := Jmp{Target: tir.Block(7)}
	if ts := jmp.BranchTargets(); len(ts) != 1 || ts[0] != tir.Block(7) {
		t.Errorf("BranchTargets() = %v, want [block7]", ts)
	}
	if len((Mov64rr{}).BranchTargets()) != 0 {
		t.Error("mov has no branch targets")
	}
}

func TestInstReplace(t *testing.T) {
	v0 := tir.VirtualReg(GPClass, 0)
	rax := Preg(RAX)

	orig := Add64rr{Src: v0, Dst: v0}
	replaced := orig.Replace(v0, rax).(Add64rr)
	if replaced.Src != rax || replaced.Dst != rax {
		t.Errorf("Replace should substitute both operands, got %+v", replaced)
	}
	if orig.Src != v0 || orig.Dst != v0 {
		t.Error("Replace must not modify the receiver")
	}

	// Replacing a register the instruction does not mention is a no-op.
	other := tir.VirtualReg(GPClass, 9)
	same := orig.Replace(other, rax).(Add64rr)
	if same != orig {
		t.Errorf("Replace of unmentioned register changed the instruction: %+v", same)
	}
}

func TestRegNames(t *testing.T) {
	var target Target
	if target.PregCount() != 16 {
		t.Errorf("PregCount() = %d, want 16", target.PregCount())
	}
	names := map[uint32]string{RAX: "rax", RSP: "rsp", R15: "r15"}
	for id, want := range names {
		if got := target.PregName(id); got != want {
			t.Errorf("PregName(%d) = %q, want %q", id, got, want)
		}
	}
	if got := tir.RegName(target, tir.VirtualReg(GPClass, 4)); got != "v4" {
		t.Errorf("RegName(v4) = %q", got)
	}
	if got := tir.RegName(target, Preg(RDX)); got != "rdx" {
		t.Errorf("RegName(rdx) = %q", got)
	}
}

func TestInstString(t *testing.T) {
	v0 := tir.VirtualReg(GPClass, 0)
	tests := []struct {
		inst Inst
		want string
	}{
		{Mov64rr{Src: Preg(RDI), Dst: v0}, "mov v0, rdi"},
		{Mov64ri{Dst: v0, Imm: 7}, "mov v0, 7"},
		{Jmp{Target: tir.Block(1)}, "jmp block1"},
		{Ret{}, "ret"},
	}
	for _, tt := range tests {
		if got := tt.inst.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func regsEqual(a, b []tir.Reg) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
