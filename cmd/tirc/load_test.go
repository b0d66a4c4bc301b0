package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tirgo/tir/pkg/x64"
)

func TestLoadFunctionFixture(t *testing.T) {
	f, err := loadFunction(filepath.Join("testdata", "pass.yaml"))
	if err != nil {
		t.Fatalf("loadFunction() = %v", err)
	}
	if f.Name != "pass" {
		t.Errorf("Name = %q, want %q", f.Name, "pass")
	}
	if f.NumBlocks() != 2 {
		t.Errorf("NumBlocks() = %d, want 2", f.NumBlocks())
	}
	if f.VRegCount() != 2 {
		t.Errorf("VRegCount() = %d, want 2 (arg0, res0)", f.VRegCount())
	}
	if err := f.ConstructCFG(); err != nil {
		t.Fatalf("ConstructCFG() = %v", err)
	}
}

func TestLoadFunctionLoopFixture(t *testing.T) {
	f, err := loadFunction(filepath.Join("testdata", "loop.yaml"))
	if err != nil {
		t.Fatalf("loadFunction() = %v", err)
	}
	// arg0, res0 and the named temporary "i".
	if f.VRegCount() != 3 {
		t.Errorf("VRegCount() = %d, want 3", f.VRegCount())
	}
	if err := f.ConstructCFG(); err != nil {
		t.Fatalf("ConstructCFG() = %v", err)
	}
	cfg := f.CFG()
	if !cfg.HasEdge(1, 1) {
		t.Error("loop fixture should have the back edge block1 -> block1")
	}
	if !cfg.HasEdge(1, 2) {
		t.Error("loop fixture should have the exit edge block1 -> block2")
	}
}

func TestLoadFunctionNamedTemporariesAreStable(t *testing.T) {
	spec := &fileSpec{
		Name: "tmp",
		Blocks: []blockSpec{
			{Insts: []instSpec{
				{Op: "mov", Dst: "x", Imm: int64p(1)},
				{Op: "add", Dst: "x", Src: "x"},
				{Op: "ret"},
			}},
		},
	}
	f, err := buildFunction(spec)
	if err != nil {
		t.Fatalf("buildFunction() = %v", err)
	}
	if f.VRegCount() != 1 {
		t.Errorf("VRegCount() = %d, want 1 (same name, same register)", f.VRegCount())
	}
}

func TestLoadFunctionPhysicalRegisterNames(t *testing.T) {
	spec := &fileSpec{
		Name: "phys",
		Blocks: []blockSpec{
			{Insts: []instSpec{
				{Op: "mov", Dst: "rax", Imm: int64p(7)},
				{Op: "ret"},
			}},
		},
	}
	f, err := buildFunction(spec)
	if err != nil {
		t.Fatalf("buildFunction() = %v", err)
	}
	inst := f.BlockData(0).At(0).(x64.Mov64ri)
	if !inst.Dst.IsPhysical() || inst.Dst.ID() != x64.RAX {
		t.Errorf("Dst = %v, want physical rax", inst.Dst)
	}
	if f.VRegCount() != 0 {
		t.Errorf("VRegCount() = %d, want 0", f.VRegCount())
	}
}

func TestLoadFunctionErrors(t *testing.T) {
	tests := []struct {
		name    string
		spec    fileSpec
		wantMsg string
	}{
		{
			name: "unknown op",
			spec: fileSpec{Blocks: []blockSpec{
				{Insts: []instSpec{{Op: "frobnicate"}}},
			}},
			wantMsg: "unknown operation",
		},
		{
			name: "missing operand",
			spec: fileSpec{Blocks: []blockSpec{
				{Insts: []instSpec{{Op: "mov", Dst: "x"}}},
			}},
			wantMsg: "missing register operand",
		},
		{
			name: "target out of range",
			spec: fileSpec{Blocks: []blockSpec{
				{Insts: []instSpec{{Op: "jmp", Target: intp(5)}}},
			}},
			wantMsg: "out of range",
		},
		{
			name: "argument out of range",
			spec: fileSpec{Blocks: []blockSpec{
				{Insts: []instSpec{{Op: "mov", Dst: "x", Src: "arg0"}}},
			}},
			wantMsg: "argument arg0 out of range",
		},
		{
			name: "unknown condition",
			spec: fileSpec{Blocks: []blockSpec{
				{Insts: []instSpec{{Op: "jcc", Cond: "zz", Taken: intp(0), NotTaken: intp(0)}}},
			}},
			wantMsg: "unknown condition",
		},
		{
			name:    "unsupported class",
			spec:    fileSpec{Args: []string{"float4"}},
			wantMsg: "unsupported register class",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildFunction(&tt.spec)
			if err == nil {
				t.Fatal("buildFunction() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadFunctionBadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	badFile := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(badFile, []byte("blocks: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if _, err := loadFunction(badFile); err == nil {
		t.Error("loadFunction() = nil, want YAML error")
	}
}

func TestLoadFunctionFileNotFound(t *testing.T) {
	if _, err := loadFunction("nonexistent.yaml"); err == nil {
		t.Error("loadFunction() = nil, want error")
	}
}

func int64p(v int64) *int64 { return &v }

func intp(v int) *int { return &v }
