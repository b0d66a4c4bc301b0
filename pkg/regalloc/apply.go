package regalloc

import (
	"fmt"
	"sort"

	"github.com/tirgo/tir/pkg/analysis"
	"github.com/tirgo/tir/pkg/tir"
)

// Apply rewrites every instruction of f according to the allocation
// result: each virtual register operand is substituted by the physical
// register, or spill register, of the allocated range covering the
// instruction's program point. The function is mutated in place and
// its cached CFG is invalidated.
//
// A virtual register with no covering allocation means the allocator
// produced an incomplete mapping; that is an internal-consistency
// error and panics.
func Apply[I tir.Inst[I]](f *tir.Func[I], res *Result) {
	// Per-register decisions, sorted by range start.
	byReg := make(map[uint32][]RangeAlloc)
	for _, a := range res.Allocs {
		id := a.Range.Reg.ID()
		byReg[id] = append(byReg[id], a)
	}
	for id := range byReg {
		as := byReg[id]
		sort.Slice(as, func(i, j int) bool {
			return as[i].Range.Start.Before(as[j].Range.Start)
		})
	}

	var blocks []tir.Block
	f.ForEachBlock(func(b tir.Block, _ *tir.BlockData[I]) {
		blocks = append(blocks, b)
	})

	for _, b := range blocks {
		data := f.BlockDataMut(b)
		for i := 0; i < data.Len(); i++ {
			point := analysis.ProgramPoint{Block: b, Index: i}
			inst := data.At(i)
			for _, r := range append(inst.Uses(), inst.Defs()...) {
				if r.IsPhysical() {
					continue
				}
				inst = inst.Replace(r, resolve(byReg, r, point))
			}
			data.Set(i, inst)
		}
	}
}

func resolve(byReg map[uint32][]RangeAlloc, r tir.Reg, point analysis.ProgramPoint) tir.Reg {
	for _, a := range byReg[r.ID()] {
		if a.Range.Reg == r && a.Range.Contains(point) {
			switch s := a.Slot.(type) {
			case RegSlot:
				return s.Reg
			case StackSlot:
				return tir.SpillReg(r.Class(), uint32(s.Index))
			}
		}
	}
	panic(fmt.Sprintf("regalloc: no allocated slot for %s at %s", r, point))
}
