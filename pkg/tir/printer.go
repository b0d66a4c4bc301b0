package tir

import (
	"fmt"
	"io"
	"strings"
)

// Print writes a function in a readable listing format: header with
// argument and result registers, then each block with one instruction
// per line. If the function has a constructed CFG, blocks are
// annotated with their predecessors and successors. Informational
// only; the output is not a parseable persisted format.
func Print[I Inst[I]](w io.Writer, f *Func[I]) {
	fmt.Fprintf(w, "%s(%s) -> %s {\n", f.Name, regList(f.Args()), regList(f.Results()))
	f.ForEachBlock(func(b Block, data *BlockData[I]) {
		fmt.Fprintf(w, "%s:", b)
		if f.HasCFG() {
			cfg := f.CFG()
			if preds := cfg.Preds(b); len(preds) > 0 {
				fmt.Fprintf(w, " ; preds: %s", blockList(preds))
			}
			if succs := cfg.Succs(b); len(succs) > 0 {
				fmt.Fprintf(w, " ; succs: %s", blockList(succs))
			}
		}
		fmt.Fprintln(w)
		for _, inst := range data.Insts() {
			fmt.Fprintf(w, "  %s\n", inst.String())
		}
	})
	fmt.Fprintln(w, "}")
}

// Sprint renders a function to a string.
func Sprint[I Inst[I]](f *Func[I]) string {
	var sb strings.Builder
	Print(&sb, f)
	return sb.String()
}

func regList(regs []Reg) string {
	parts := make([]string, len(regs))
	for i, r := range regs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

func blockList(blocks []Block) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.String()
	}
	return strings.Join(parts, ", ")
}
