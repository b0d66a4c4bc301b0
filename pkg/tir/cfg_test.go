package tir

import "testing"

func TestCFGAddEdgeAndQuery(t *testing.T) {
	// 0 -> 1 -> 2
	cfg := NewCFG(Block(0), 3)
	cfg.AddEdge(Block(0), Block(1))
	cfg.AddEdge(Block(1), Block(2))

	if s := cfg.Succs(Block(0)); len(s) != 1 || s[0] != Block(1) {
		t.Errorf("succs(0) = %v, want [block1]", s)
	}
	if p := cfg.Preds(Block(1)); len(p) != 1 || p[0] != Block(0) {
		t.Errorf("preds(1) = %v, want [block0]", p)
	}
	if s := cfg.Succs(Block(1)); len(s) != 1 || s[0] != Block(2) {
		t.Errorf("succs(1) = %v, want [block2]", s)
	}
	if len(cfg.Preds(Block(0))) != 0 {
		t.Error("entry should have no predecessors")
	}
	if len(cfg.Succs(Block(2))) != 0 {
		t.Error("block2 should have no successors")
	}
	if cfg.Entry() != Block(0) {
		t.Errorf("Entry() = %v, want block0", cfg.Entry())
	}
}

func TestCFGMultipleEdges(t *testing.T) {
	cfg := NewCFG(Block(0), 4)
	for _, to := range []Block{1, 2, 3} {
		cfg.AddEdge(Block(0), to)
	}
	if s := cfg.Succs(Block(0)); len(s) != 3 {
		t.Errorf("succs(0) = %v, want three blocks", s)
	}
	for _, b := range []Block{1, 2, 3} {
		if p := cfg.Preds(b); len(p) != 1 || p[0] != Block(0) {
			t.Errorf("preds(%v) = %v, want [block0]", b, p)
		}
	}
}

func TestCFGEdgeSymmetry(t *testing.T) {
	// Every successor edge must have a matching predecessor edge.
	cfg := NewCFG(Block(0), 4)
	cfg.AddEdge(Block(0), Block(1))
	cfg.AddEdge(Block(0), Block(2))
	cfg.AddEdge(Block(1), Block(3))
	cfg.AddEdge(Block(2), Block(3))
	cfg.AddEdge(Block(3), Block(1)) // back edge

	for p := Block(0); p < 4; p++ {
		for s := Block(0); s < 4; s++ {
			inSuccs := contains(cfg.Succs(p), s)
			inPreds := contains(cfg.Preds(s), p)
			if inSuccs != inPreds {
				t.Errorf("edge %v->%v: succs=%v preds=%v", p, s, inSuccs, inPreds)
			}
			if inSuccs != cfg.HasEdge(p, s) {
				t.Errorf("HasEdge(%v, %v) disagrees with succ list", p, s)
			}
		}
	}
}

func contains(blocks []Block, b Block) bool {
	for _, x := range blocks {
		if x == b {
			return true
		}
	}
	return false
}
