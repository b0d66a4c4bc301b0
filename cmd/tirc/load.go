package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tirgo/tir/pkg/tir"
	"github.com/tirgo/tir/pkg/x64"
)

// fileSpec is the YAML shape of a function description.
//
//	name: pass
//	args: [int8]
//	results: [int8]
//	blocks:
//	  - insts:
//	      - {op: jmp, target: 1}
//	  - insts:
//	      - {op: mov, dst: res0, src: arg0}
//	      - {op: ret}
type fileSpec struct {
	Name    string      `yaml:"name"`
	Args    []string    `yaml:"args"`
	Results []string    `yaml:"results"`
	Blocks  []blockSpec `yaml:"blocks"`
}

type blockSpec struct {
	Insts []instSpec `yaml:"insts"`
}

type instSpec struct {
	Op       string `yaml:"op"`
	Dst      string `yaml:"dst"`
	Src      string `yaml:"src"`
	A        string `yaml:"a"`
	B        string `yaml:"b"`
	Imm      *int64 `yaml:"imm"`
	Cond     string `yaml:"cond"`
	Taken    *int   `yaml:"taken"`
	NotTaken *int   `yaml:"nottaken"`
	Target   *int   `yaml:"target"`
}

// loadFunction reads a YAML function description and builds the
// corresponding function.
func loadFunction(filename string) (*tir.Func[x64.Inst], error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var spec fileSpec
	if err := yaml.Unmarshal(content, &spec); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	f, err := buildFunction(&spec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return f, nil
}

func buildFunction(spec *fileSpec) (*tir.Func[x64.Inst], error) {
	args, err := regClasses(spec.Args)
	if err != nil {
		return nil, err
	}
	results, err := regClasses(spec.Results)
	if err != nil {
		return nil, err
	}

	l := &loader{
		f:     tir.NewFunc[x64.Inst](spec.Name, args, results),
		names: make(map[string]tir.Reg),
	}

	// Create all blocks up front so branch targets can be validated.
	blocks := make([]tir.Block, len(spec.Blocks))
	for i := range spec.Blocks {
		blocks[i] = l.f.AddEmptyBlock()
	}
	for i, bs := range spec.Blocks {
		data := l.f.BlockDataMut(blocks[i])
		for j, is := range bs.Insts {
			inst, err := l.inst(is, blocks)
			if err != nil {
				return nil, fmt.Errorf("block %d, instruction %d: %w", i, j, err)
			}
			data.Push(inst)
		}
	}
	return l.f, nil
}

func regClasses(names []string) ([]tir.RegClass, error) {
	classes := make([]tir.RegClass, len(names))
	for i, n := range names {
		if n != "int8" {
			return nil, fmt.Errorf("unsupported register class %q", n)
		}
		classes[i] = x64.GPClass
	}
	return classes, nil
}

type loader struct {
	f     *tir.Func[x64.Inst]
	names map[string]tir.Reg
}

// reg resolves a register operand name: argN and resN refer to the
// function's preallocated registers, physical register names (rax,
// rbx, ...) give pinned registers, and any other name allocates a
// fresh virtual register on first mention.
func (l *loader) reg(name string) (tir.Reg, error) {
	if name == "" {
		return 0, fmt.Errorf("missing register operand")
	}
	if r, ok := l.names[name]; ok {
		return r, nil
	}
	if n, ok := strings.CutPrefix(name, "arg"); ok {
		if i, err := strconv.Atoi(n); err == nil {
			if i < 0 || i >= len(l.f.Args()) {
				return 0, fmt.Errorf("argument %s out of range", name)
			}
			return l.f.Arg(i), nil
		}
	}
	if n, ok := strings.CutPrefix(name, "res"); ok {
		if i, err := strconv.Atoi(n); err == nil {
			if i < 0 || i >= len(l.f.Results()) {
				return 0, fmt.Errorf("result %s out of range", name)
			}
			return l.f.Result(i), nil
		}
	}
	var target x64.Target
	for id := uint32(0); id < x64.RegCount; id++ {
		if target.PregName(id) == name {
			return x64.Preg(id), nil
		}
	}
	r := l.f.NewVReg(x64.GPClass)
	l.names[name] = r
	return r, nil
}

func (l *loader) block(idx *int, blocks []tir.Block, field string) (tir.Block, error) {
	if idx == nil {
		return tir.NoBlock, fmt.Errorf("missing %s block", field)
	}
	if *idx < 0 || *idx >= len(blocks) {
		return tir.NoBlock, fmt.Errorf("%s block %d out of range", field, *idx)
	}
	return blocks[*idx], nil
}

var condNames = map[string]x64.Cond{
	"e":  x64.CondEq,
	"ne": x64.CondNe,
	"l":  x64.CondLt,
	"le": x64.CondLe,
	"g":  x64.CondGt,
	"ge": x64.CondGe,
}

func (l *loader) inst(is instSpec, blocks []tir.Block) (x64.Inst, error) {
	switch is.Op {
	case "mov":
		dst, err := l.reg(is.Dst)
		if err != nil {
			return nil, err
		}
		if is.Imm != nil {
			return x64.Mov64ri{Dst: dst, Imm: *is.Imm}, nil
		}
		src, err := l.reg(is.Src)
		if err != nil {
			return nil, err
		}
		return x64.Mov64rr{Src: src, Dst: dst}, nil
	case "add", "sub":
		dst, err := l.reg(is.Dst)
		if err != nil {
			return nil, err
		}
		src, err := l.reg(is.Src)
		if err != nil {
			return nil, err
		}
		if is.Op == "add" {
			return x64.Add64rr{Src: src, Dst: dst}, nil
		}
		return x64.Sub64rr{Src: src, Dst: dst}, nil
	case "cmp":
		a, err := l.reg(is.A)
		if err != nil {
			return nil, err
		}
		b, err := l.reg(is.B)
		if err != nil {
			return nil, err
		}
		return x64.Cmp64rr{A: a, B: b}, nil
	case "jcc":
		cond, ok := condNames[is.Cond]
		if !ok {
			return nil, fmt.Errorf("unknown condition %q", is.Cond)
		}
		taken, err := l.block(is.Taken, blocks, "taken")
		if err != nil {
			return nil, err
		}
		notTaken, err := l.block(is.NotTaken, blocks, "nottaken")
		if err != nil {
			return nil, err
		}
		return x64.Jcc{Cond: cond, Taken: taken, NotTaken: notTaken}, nil
	case "jmp":
		target, err := l.block(is.Target, blocks, "target")
		if err != nil {
			return nil, err
		}
		return x64.Jmp{Target: target}, nil
	case "ret":
		return x64.Ret{}, nil
	default:
		return nil, fmt.Errorf("unknown operation %q", is.Op)
	}
}
