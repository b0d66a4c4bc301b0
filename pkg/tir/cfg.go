package tir

import "github.com/tirgo/tir/pkg/support"

type cfgNode struct {
	succs []Block
	preds []Block
}

// CFG holds per-block successor and predecessor lists derived from
// block terminators. It is built in one pass and never updated
// incrementally; structural changes to the function require a rebuild.
type CFG struct {
	nodes *support.SecondaryMap[Block, cfgNode]
	entry Block
}

// NewCFG returns an edgeless CFG over size blocks with the given
// entry.
func NewCFG(entry Block, size int) *CFG {
	return &CFG{
		nodes: support.NewSecondaryMap[Block, cfgNode](size),
		entry: entry,
	}
}

// AddEdge records a directed edge from one block to another, stored
// bidirectionally: to joins from's successors, from joins to's
// predecessors.
func (c *CFG) AddEdge(from, to Block) {
	c.nodes.Get(from).succs = append(c.nodes.Get(from).succs, to)
	c.nodes.Get(to).preds = append(c.nodes.Get(to).preds, from)
}

// Succs returns the successors of block.
func (c *CFG) Succs(block Block) []Block {
	return c.nodes.Get(block).succs
}

// Preds returns the predecessors of block.
func (c *CFG) Preds(block Block) []Block {
	return c.nodes.Get(block).preds
}

// HasEdge reports whether a directed edge from -> to exists.
func (c *CFG) HasEdge(from, to Block) bool {
	for _, s := range c.nodes.Get(from).succs {
		if s == to {
			return true
		}
	}
	return false
}

// BlocksCount returns the size of the block key space.
func (c *CFG) BlocksCount() int {
	return c.nodes.Len()
}

// Entry returns the designated entry block.
func (c *CFG) Entry() Block {
	return c.entry
}
