// Package regalloc implements linear-scan register allocation over the
// live ranges produced by liveness analysis, and the post-pass that
// rewrites a function's instructions with the allocation results.
package regalloc

import (
	"sort"

	"github.com/tirgo/tir/pkg/analysis"
	"github.com/tirgo/tir/pkg/support"
	"github.com/tirgo/tir/pkg/tir"
)

// Slot is where a live range ends up: a physical register or a stack
// slot.
type Slot interface {
	implSlot()
	String() string
}

// RegSlot assigns a physical register.
type RegSlot struct {
	Reg tir.Reg
}

func (RegSlot) implSlot() {}

func (s RegSlot) String() string { return s.Reg.String() }

// StackSlot assigns a spill location on the stack.
type StackSlot struct {
	Index int
}

func (StackSlot) implSlot() {}

func (s StackSlot) String() string { return tir.SpillReg(tir.Int(8), uint32(s.Index)).String() }

// RangeAlloc pairs a live range with its allocation decision.
type RangeAlloc struct {
	Range analysis.LiveRange
	Slot  Slot
}

// Result is the allocator's output: one decision per live range, plus
// the number of stack slots consumed by spills.
type Result struct {
	Allocs     []RangeAlloc
	StackSlots int
}

// Config describes the target register file to the allocator.
type Config struct {
	// PregCount is the size of the physical register id space.
	PregCount uint32
	// ReservedAll lists registers that are never allocatable (stack
	// and frame pointers).
	ReservedAll []uint32
	// Reserved maps a physical register id to live ranges pinned by
	// the target (calling convention, fixed uses). A register whose
	// reservation covers a candidate range's start is skipped, staying
	// busy until the reservation ends.
	Reserved map[uint32][]analysis.LiveRange
}

type expiry struct {
	end  analysis.ProgramPoint
	preg uint32
}

// Allocate assigns every live range to a physical register or a stack
// slot. The ranges must be sorted by ascending start, as produced by
// Liveness.AllRanges. Allocations whose range has ended are expired;
// the first free, unreserved physical register is taken, and a fresh
// stack slot is used when none is available. Each decision is final.
func Allocate(ranges []analysis.LiveRange, cfg Config) *Result {
	res := &Result{Allocs: make([]RangeAlloc, 0, len(ranges))}

	active := support.NewBitSet(int(cfg.PregCount))
	for _, id := range cfg.ReservedAll {
		active.Add(int(id))
	}
	var expiries []expiry

	for _, r := range ranges {
		// Expire allocations that end strictly before this range
		// starts.
		for len(expiries) > 0 && expiries[0].end.Before(r.Start) {
			active.Del(int(expiries[0].preg))
			expiries = expiries[1:]
		}

		slot := Slot(nil)
		for id := uint32(0); id < cfg.PregCount; id++ {
			if active.Has(int(id)) {
				continue
			}
			if fixed, ok := reservedAt(cfg.Reserved[id], r.Start); ok {
				// Pinned by the target over this range's start: mark
				// it busy until the reservation ends and keep probing.
				active.Add(int(id))
				expiries = insertExpiry(expiries, expiry{end: fixed.End, preg: id})
				continue
			}
			active.Add(int(id))
			expiries = insertExpiry(expiries, expiry{end: r.End, preg: id})
			slot = RegSlot{Reg: tir.PhysicalReg(r.Reg.Class(), id)}
			break
		}
		if slot == nil {
			slot = StackSlot{Index: res.StackSlots}
			res.StackSlots++
		}
		res.Allocs = append(res.Allocs, RangeAlloc{Range: r, Slot: slot})
	}
	return res
}

func reservedAt(fixed []analysis.LiveRange, p analysis.ProgramPoint) (analysis.LiveRange, bool) {
	for _, f := range fixed {
		if f.Contains(p) {
			return f, true
		}
	}
	return analysis.LiveRange{}, false
}

func insertExpiry(expiries []expiry, e expiry) []expiry {
	i := sort.Search(len(expiries), func(i int) bool {
		return e.end.Before(expiries[i].end)
	})
	expiries = append(expiries, expiry{})
	copy(expiries[i+1:], expiries[i:])
	expiries[i] = e
	return expiries
}
