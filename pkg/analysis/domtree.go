// Package analysis implements the dataflow analyses computed over a
// constructed CFG: dominator tree and liveness. Both are snapshots;
// they become stale if the underlying function changes and must be
// recomputed.
package analysis

import (
	"github.com/tirgo/tir/pkg/support"
	"github.com/tirgo/tir/pkg/tir"
)

type domNode struct {
	// rpo is the block's reverse-postorder rank, spaced by rpoStride
	// to leave room for renumbering. Zero means unreachable.
	rpo  uint32
	idom tir.Block
}

// DomTree answers dominance queries over a CFG snapshot via
// reverse-postorder ranks and iteratively computed immediate
// dominators (Cooper-Harvey-Kennedy).
type DomTree struct {
	nodes *support.SecondaryMap[tir.Block, domNode]
	rpo   []tir.Block
}

const rpoStride = 4

// BuildDomTree computes the dominator tree for cfg.
func BuildDomTree(cfg *tir.CFG) *DomTree {
	t := &DomTree{
		nodes: support.NewSecondaryMapFunc[tir.Block, domNode](cfg.BlocksCount(), func() domNode {
			return domNode{idom: tir.NoBlock}
		}),
		rpo: reversePostorder(cfg),
	}
	t.compute(cfg)
	return t
}

// reversePostorder runs an iterative depth-first traversal from the
// entry (explicit stack, to bound depth on large CFGs) and returns the
// blocks in reverse postorder.
func reversePostorder(cfg *tir.CFG) []tir.Block {
	visited := support.NewBitSet(cfg.BlocksCount())

	type frame struct {
		block tir.Block
		next  int
	}
	var stack []frame
	var postorder []tir.Block

	entry := cfg.Entry()
	visited.Add(entry.Index())
	stack = append(stack, frame{block: entry})

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := cfg.Succs(top.block)
		if top.next < len(succs) {
			s := succs[top.next]
			top.next++
			if !visited.Has(s.Index()) {
				visited.Add(s.Index())
				stack = append(stack, frame{block: s})
			}
			continue
		}
		postorder = append(postorder, top.block)
		stack = stack[:len(stack)-1]
	}

	for i, j := 0, len(postorder)-1; i < j; i, j = i+1, j-1 {
		postorder[i], postorder[j] = postorder[j], postorder[i]
	}
	return postorder
}

func (t *DomTree) compute(cfg *tir.CFG) {
	if len(t.rpo) == 0 {
		return
	}
	entry, rest := t.rpo[0], t.rpo[1:]
	t.nodes.Get(entry).rpo = 2 * rpoStride

	// Initial pass assigns ranks and a first idom guess in RPO order;
	// predecessors with a rank already assigned are the only ones
	// consulted, so every block sees at least one processed pred.
	for i, b := range rest {
		t.nodes.Set(b, domNode{
			rpo:  uint32(i+3) * rpoStride,
			idom: t.computeIdom(b, cfg),
		})
	}

	for changed := true; changed; {
		changed = false
		for _, b := range rest {
			newIdom := t.computeIdom(b, cfg)
			if t.nodes.Get(b).idom != newIdom {
				t.nodes.Get(b).idom = newIdom
				changed = true
			}
		}
	}
}

func (t *DomTree) computeIdom(block tir.Block, cfg *tir.CFG) tir.Block {
	idom := tir.NoBlock
	for _, pred := range cfg.Preds(block) {
		if t.nodes.Get(pred).rpo <= 1 {
			continue
		}
		if idom == tir.NoBlock {
			idom = pred
		} else {
			idom = t.commonDominator(idom, pred)
		}
	}
	if idom == tir.NoBlock {
		panic("analysis: block has no processed predecessor")
	}
	return idom
}

func (t *DomTree) commonDominator(a, b tir.Block) tir.Block {
	for {
		aRpo := t.nodes.Get(a).rpo
		bRpo := t.nodes.Get(b).rpo
		switch {
		case aRpo < bRpo:
			b = t.nodes.Get(b).idom
		case aRpo > bRpo:
			a = t.nodes.Get(a).idom
		default:
			return a
		}
	}
}

// Idom returns the immediate dominator of b, or NoBlock for the entry
// and for unreachable blocks.
func (t *DomTree) Idom(b tir.Block) tir.Block {
	return t.nodes.Get(b).idom
}

// ReversePostorder returns the reachable blocks in reverse postorder.
func (t *DomTree) ReversePostorder() []tir.Block {
	return t.rpo
}

// Dominates reports whether a dominates b. Blocks unreachable from the
// entry are dominated by nothing but themselves.
func (t *DomTree) Dominates(a, b tir.Block) bool {
	if a == b {
		return true
	}
	aRpo := t.nodes.Get(a).rpo
	for aRpo < t.nodes.Get(b).rpo {
		idom := t.nodes.Get(b).idom
		if idom == tir.NoBlock {
			return false
		}
		b = idom
	}
	return a == b
}
