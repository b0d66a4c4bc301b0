package tir

import (
	"fmt"

	"github.com/tirgo/tir/pkg/support"
)

// Block is an arena handle into a function's block store. It carries
// no data itself.
type Block uint32

// NoBlock is the reserved sentinel handle.
var NoBlock = support.None[Block]()

// Index returns the handle's arena index.
func (b Block) Index() int { return int(b) }

func (b Block) String() string {
	if b == NoBlock {
		return "block<none>"
	}
	return fmt.Sprintf("block%d", uint32(b))
}

// BlockData is an ordered instruction sequence owned by a function.
// Once a function's CFG is constructed, the last instruction must be a
// terminator.
type BlockData[I Inst[I]] struct {
	insts []I
}

// NewBlockData returns an empty instruction sequence.
func NewBlockData[I Inst[I]]() *BlockData[I] {
	return &BlockData[I]{}
}

// Push appends an instruction.
func (d *BlockData[I]) Push(inst I) {
	d.insts = append(d.insts, inst)
}

// Len returns the number of instructions.
func (d *BlockData[I]) Len() int { return len(d.insts) }

// At returns the instruction at index i.
func (d *BlockData[I]) At(i int) I { return d.insts[i] }

// Set overwrites the instruction at index i.
func (d *BlockData[I]) Set(i int, inst I) { d.insts[i] = inst }

// Insts returns the underlying instruction slice.
func (d *BlockData[I]) Insts() []I { return d.insts }

// Terminator returns the final instruction and whether it is a
// terminator.
func (d *BlockData[I]) Terminator() (I, bool) {
	if len(d.insts) == 0 {
		var zero I
		return zero, false
	}
	last := d.insts[len(d.insts)-1]
	return last, IsTerm(last)
}
