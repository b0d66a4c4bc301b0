package tir

import "github.com/tirgo/tir/pkg/support"

// Func owns an arena of basic blocks, the virtual register counter and
// the argument/result register lists for one function. The constructed
// CFG is cached on the function; any mutation of block structure or
// contents drops the cache, and reading it again before a rebuild is a
// programmer error.
type Func[I Inst[I]] struct {
	Name string

	blocks  *support.PrimaryMap[Block, *BlockData[I]]
	vregs   uint32
	args    []Reg
	results []Reg

	cfg *CFG
}

// NewFunc creates a function, preallocating one virtual register per
// argument and result class.
func NewFunc[I Inst[I]](name string, args, results []RegClass) *Func[I] {
	f := &Func[I]{
		Name:   name,
		blocks: support.NewPrimaryMap[Block, *BlockData[I]](),
	}
	for _, c := range args {
		f.args = append(f.args, f.NewVReg(c))
	}
	for _, c := range results {
		f.results = append(f.results, f.NewVReg(c))
	}
	return f
}

// NewVReg allocates the next virtual register of the given class. Ids
// are monotonic and never reused within the function's lifetime.
func (f *Func[I]) NewVReg(class RegClass) Reg {
	r := VirtualReg(class, f.vregs)
	f.vregs++
	return r
}

// VRegCount returns the number of virtual registers allocated so far.
func (f *Func[I]) VRegCount() uint32 { return f.vregs }

// Arg returns the i-th argument register.
func (f *Func[I]) Arg(i int) Reg { return f.args[i] }

// Result returns the i-th result register.
func (f *Func[I]) Result(i int) Reg { return f.results[i] }

// Args returns the argument registers in order.
func (f *Func[I]) Args() []Reg { return f.args }

// Results returns the result registers in order.
func (f *Func[I]) Results() []Reg { return f.results }

// AddBlock inserts a block and invalidates any cached CFG.
func (f *Func[I]) AddBlock(data *BlockData[I]) Block {
	f.cfg = nil
	return f.blocks.Insert(data)
}

// AddEmptyBlock inserts an empty block and invalidates any cached CFG.
func (f *Func[I]) AddEmptyBlock() Block {
	return f.AddBlock(NewBlockData[I]())
}

// NumBlocks returns the number of blocks.
func (f *Func[I]) NumBlocks() int { return f.blocks.Len() }

// BlocksCap returns the size of the block key space.
func (f *Func[I]) BlocksCap() int { return f.blocks.Cap() }

// BlockData returns the block's instruction sequence for reading.
// Callers must not mutate it through this accessor; use BlockDataMut.
func (f *Func[I]) BlockData(b Block) *BlockData[I] {
	return *f.blocks.Get(b)
}

// BlockDataMut returns the block's instruction sequence for mutation
// and invalidates any cached CFG.
func (f *Func[I]) BlockDataMut(b Block) *BlockData[I] {
	f.cfg = nil
	return *f.blocks.Get(b)
}

// ForEachBlock calls fn for every block in arena order.
func (f *Func[I]) ForEachBlock(fn func(b Block, data *BlockData[I])) {
	f.blocks.ForEach(func(b Block, data **BlockData[I]) {
		fn(b, *data)
	})
}

// EntryBlock returns block 0, the designated entry, if any block
// exists.
func (f *Func[I]) EntryBlock() (Block, bool) {
	if f.blocks.Len() == 0 {
		return NoBlock, false
	}
	return Block(0), true
}

// ConstructCFG derives successor/predecessor edges from every block's
// terminator. It fails with ErrEmptyFunctionBody on a function with no
// blocks and with BlockNotTerminatedError if a block's last
// instruction is not a branch or return. On failure the cached CFG
// slot is left empty.
func (f *Func[I]) ConstructCFG() error {
	entry, ok := f.EntryBlock()
	if !ok {
		return ErrEmptyFunctionBody
	}

	cfg := NewCFG(entry, f.blocks.Cap())
	var err error
	f.blocks.ForEach(func(b Block, data **BlockData[I]) {
		if err != nil {
			return
		}
		term, ok := (*data).Terminator()
		if !ok {
			err = &BlockNotTerminatedError{Block: b}
			return
		}
		if term.IsBranch() {
			for _, target := range term.BranchTargets() {
				cfg.AddEdge(b, target)
			}
		}
	})
	if err != nil {
		return err
	}

	f.cfg = cfg
	return nil
}

// CFG returns the cached control-flow graph. Calling it before a
// successful ConstructCFG, or after a mutation invalidated the cache,
// is a programmer error.
func (f *Func[I]) CFG() *CFG {
	if f.cfg == nil {
		panic("tir: CFG accessed before construction (or after invalidation)")
	}
	return f.cfg
}

// HasCFG reports whether a valid CFG is cached.
func (f *Func[I]) HasCFG() bool { return f.cfg != nil }

// LayoutNext returns the block following b in arena layout order, or
// NoBlock if b is the last one.
func (f *Func[I]) LayoutNext(b Block) Block {
	next := NoBlock
	f.blocks.ForEach(func(k Block, _ **BlockData[I]) {
		if k > b && (next == NoBlock || k < next) {
			next = k
		}
	})
	return next
}
