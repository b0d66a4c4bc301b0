package analysis

import (
	"fmt"
	"sort"

	"github.com/tirgo/tir/pkg/support"
	"github.com/tirgo/tir/pkg/tir"
)

// ProgramPoint locates an instruction: a block and an index within it.
// Points are totally ordered, first by block layout order, then by
// instruction index.
type ProgramPoint struct {
	Block tir.Block
	Index int
}

func (p ProgramPoint) String() string {
	return fmt.Sprintf("%s:%d", p.Block, p.Index)
}

// Before reports whether p precedes q in program order.
func (p ProgramPoint) Before(q ProgramPoint) bool {
	return p.Block < q.Block || (p.Block == q.Block && p.Index < q.Index)
}

// LiveRange is a contiguous span of program points over which a
// register's value must be preserved. Start and End are inclusive.
type LiveRange struct {
	Reg   tir.Reg
	Start ProgramPoint
	End   ProgramPoint
}

func (r LiveRange) String() string {
	return fmt.Sprintf("%s: [%s, %s]", r.Reg, r.Start, r.End)
}

// Contains reports whether p lies within the range.
func (r LiveRange) Contains(p ProgramPoint) bool {
	return !p.Before(r.Start) && !r.End.Before(p)
}

// Overlaps reports whether two ranges share a program point.
func (r LiveRange) Overlaps(other LiveRange) bool {
	return !r.End.Before(other.Start) && !other.End.Before(r.Start)
}

// Liveness holds the per-block live-in/live-out/use/def bit-vectors of
// a backward dataflow fixed point, and the per-register live ranges
// materialized from them. It is computed once from a function and its
// CFG, and read-only afterward.
type Liveness struct {
	liveIn  *support.SecondaryMap[tir.Block, support.BitSet]
	liveOut *support.SecondaryMap[tir.Block, support.BitSet]
	uses    *support.SecondaryMap[tir.Block, support.BitSet]
	defs    *support.SecondaryMap[tir.Block, support.BitSet]

	// regs maps a virtual register id back to its packed register; a
	// zero entry means the id never appeared in any instruction.
	regs   []tir.Reg
	ranges [][]LiveRange
}

// AnalyzeLiveness computes block-level liveness for f, then converts
// the result into merged per-register live ranges. The CFG must have
// been constructed from the current state of f.
func AnalyzeLiveness[I tir.Inst[I]](f *tir.Func[I], cfg *tir.CFG) *Liveness {
	nblocks := cfg.BlocksCount()
	universe := int(f.VRegCount())
	newSets := func() *support.SecondaryMap[tir.Block, support.BitSet] {
		return support.NewSecondaryMapFunc[tir.Block, support.BitSet](nblocks, func() support.BitSet {
			return support.NewBitSet(universe)
		})
	}

	l := &Liveness{
		liveIn:  newSets(),
		liveOut: newSets(),
		uses:    newSets(),
		defs:    newSets(),
		regs:    make([]tir.Reg, universe),
		ranges:  make([][]LiveRange, universe),
	}

	f.ForEachBlock(func(b tir.Block, data *tir.BlockData[I]) {
		initBlock(l, b, data)
	})
	l.solve(cfg)
	computeLiveRanges(l, f, cfg)
	return l
}

// initBlock records upward-exposed uses (used before any def in the
// same block) and all defs. Only virtual registers participate.
func initBlock[I tir.Inst[I]](l *Liveness, b tir.Block, data *tir.BlockData[I]) {
	blockUses := *l.uses.Get(b)
	blockDefs := *l.defs.Get(b)
	for _, inst := range data.Insts() {
		for _, r := range inst.Uses() {
			if r.IsVirtual() && !blockDefs.Has(int(r.ID())) {
				blockUses.Add(int(r.ID()))
				l.regs[r.ID()] = r
			}
		}
		for _, r := range inst.Defs() {
			if r.IsVirtual() {
				blockDefs.Add(int(r.ID()))
				l.regs[r.ID()] = r
			}
		}
	}
}

// solve runs the backward worklist to the fixed point:
// live_out = ∪ live_in(succs); live_in = (live_out − defs) ∪ uses.
// The worklist is seeded with every reachable block in reverse
// postorder and processed as a stack; termination follows from the
// bit-vectors only growing within a bounded universe.
func (l *Liveness) solve(cfg *tir.CFG) {
	order := reversePostorder(cfg)
	work := make([]tir.Block, len(order))
	copy(work, order)

	queued := support.NewBitSet(cfg.BlocksCount())
	for _, b := range work {
		queued.Add(b.Index())
	}

	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		queued.Del(b.Index())

		out := *l.liveOut.Get(b)
		for _, s := range cfg.Succs(b) {
			out.Union(*l.liveIn.Get(s))
		}

		in := out.Clone()
		in.Difference(*l.defs.Get(b))
		in.Union(*l.uses.Get(b))

		if !in.Equals(*l.liveIn.Get(b)) {
			l.liveIn.Set(b, in)
			for _, p := range cfg.Preds(b) {
				if !queued.Has(p.Index()) {
					queued.Add(p.Index())
					work = append(work, p)
				}
			}
		}
	}
}

// computeLiveRanges walks each block in layout order: live-in
// registers open a range at the block start, uses extend the latest
// open range, defs open a new one unless covered, and live-out pins
// the final range's end to the block's last instruction. Ranges are
// then merged per register.
func computeLiveRanges[I tir.Inst[I]](l *Liveness, f *tir.Func[I], cfg *tir.CFG) {
	blockLen := support.NewSecondaryMap[tir.Block, int](cfg.BlocksCount())

	f.ForEachBlock(func(b tir.Block, data *tir.BlockData[I]) {
		blockLen.Set(b, data.Len())

		l.liveIn.Get(b).ForEachSet(func(id int) {
			start := ProgramPoint{Block: b, Index: 0}
			l.ranges[id] = append(l.ranges[id], LiveRange{Reg: l.regs[id], Start: start, End: start})
		})

		for i, inst := range data.Insts() {
			point := ProgramPoint{Block: b, Index: i}
			for _, r := range inst.Uses() {
				if r.IsVirtual() {
					l.extendTo(r, point)
				}
			}
			for _, r := range inst.Defs() {
				if r.IsVirtual() {
					l.openAt(r, point)
				}
			}
		}

		if data.Len() > 0 {
			end := ProgramPoint{Block: b, Index: data.Len() - 1}
			l.liveOut.Get(b).ForEachSet(func(id int) {
				l.extendTo(l.regs[id], end)
			})
		}
	})

	for id := range l.ranges {
		l.ranges[id] = mergeRanges(l.ranges[id], f, cfg, blockLen)
	}
}

// extendTo stretches the register's latest range to cover point,
// opening a fresh range if none exists.
func (l *Liveness) extendTo(r tir.Reg, point ProgramPoint) {
	rs := l.ranges[r.ID()]
	if len(rs) == 0 {
		l.ranges[r.ID()] = append(rs, LiveRange{Reg: r, Start: point, End: point})
		return
	}
	last := &rs[len(rs)-1]
	if last.End.Before(point) {
		last.End = point
	}
}

// openAt starts a new range at point for a definition, unless the
// latest range already covers it.
func (l *Liveness) openAt(r tir.Reg, point ProgramPoint) {
	rs := l.ranges[r.ID()]
	if len(rs) > 0 && rs[len(rs)-1].Contains(point) {
		return
	}
	l.ranges[r.ID()] = append(rs, LiveRange{Reg: r, Start: point, End: point})
}

// mergeRanges sorts a register's ranges and coalesces overlapping and
// touching ones. Two ranges in distinct blocks are contiguous only if
// the first ends at the last instruction of its block, the second
// starts at index 0 of the next block in layout order, and the CFG has
// an edge between the two blocks.
func mergeRanges[I tir.Inst[I]](rs []LiveRange, f *tir.Func[I], cfg *tir.CFG, blockLen *support.SecondaryMap[tir.Block, int]) []LiveRange {
	if len(rs) < 2 {
		return rs
	}
	sort.Slice(rs, func(i, j int) bool {
		return rs[i].Start.Before(rs[j].Start)
	})

	merged := rs[:1]
	for _, r := range rs[1:] {
		last := &merged[len(merged)-1]
		if contiguous(*last, r, f, cfg, blockLen) {
			if last.End.Before(r.End) {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

func contiguous[I tir.Inst[I]](a, b LiveRange, f *tir.Func[I], cfg *tir.CFG, blockLen *support.SecondaryMap[tir.Block, int]) bool {
	if !a.End.Before(b.Start) {
		return true // overlap
	}
	if a.End.Block == b.Start.Block {
		return b.Start.Index == a.End.Index+1
	}
	return a.End.Index == *blockLen.Get(a.End.Block)-1 &&
		b.Start.Index == 0 &&
		f.LayoutNext(a.End.Block) == b.Start.Block &&
		cfg.HasEdge(a.End.Block, b.Start.Block)
}

// LiveIn returns the live-in set of b. Callers must treat it as
// read-only.
func (l *Liveness) LiveIn(b tir.Block) support.BitSet { return *l.liveIn.Get(b) }

// LiveOut returns the live-out set of b. Callers must treat it as
// read-only.
func (l *Liveness) LiveOut(b tir.Block) support.BitSet { return *l.liveOut.Get(b) }

// BlockUses returns the upward-exposed use set of b.
func (l *Liveness) BlockUses(b tir.Block) support.BitSet { return *l.uses.Get(b) }

// BlockDefs returns the def set of b.
func (l *Liveness) BlockDefs(b tir.Block) support.BitSet { return *l.defs.Get(b) }

// Ranges returns the merged live ranges of a virtual register id, in
// ascending start order.
func (l *Liveness) Ranges(id uint32) []LiveRange { return l.ranges[id] }

// AllRanges returns every register's merged live ranges, globally
// sorted by start point (ties by end, then register id). This is the
// register allocator's input order.
func (l *Liveness) AllRanges() []LiveRange {
	var all []LiveRange
	for _, rs := range l.ranges {
		all = append(all, rs...)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Start != b.Start {
			return a.Start.Before(b.Start)
		}
		if a.End != b.End {
			return a.End.Before(b.End)
		}
		return a.Reg.ID() < b.Reg.ID()
	})
	return all
}
