package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tirgo/tir/pkg/analysis"
	"github.com/tirgo/tir/pkg/regalloc"
	"github.com/tirgo/tir/pkg/support"
	"github.com/tirgo/tir/pkg/tir"
	"github.com/tirgo/tir/pkg/x64"
)

var version = "0.1.0"

// Debug flags for dumping intermediate state
var (
	dTIR   bool
	dCFG   bool
	dDom   bool
	dLive  bool
	dAlloc bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	// Normalize single-dash debug flags to double-dash for pflag
	// compatibility
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tirc: %v\n", err)
		return 1
	}
	return 0
}

// debugFlagNames lists the flags that accept single-dash style
var debugFlagNames = []string{"dtir", "dcfg", "ddom", "dlive", "dalloc"}

// normalizeFlags converts single-dash flags like -dtir to --dtir
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tirc [file]",
		Short: "tirc runs the mid-level IR pipeline on a function description",
		Long: `tirc loads a function description from a YAML file and runs the
back-end pipeline over it: CFG construction, dominator tree, liveness
analysis and linear-scan register allocation. Debug flags dump the
intermediate state of each stage.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				return nil
			}
			return compile(args[0], out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVar(&dTIR, "dtir", false, "Dump the loaded function")
	rootCmd.Flags().BoolVar(&dCFG, "dcfg", false, "Dump the control-flow graph")
	rootCmd.Flags().BoolVar(&dDom, "ddom", false, "Dump the dominator tree")
	rootCmd.Flags().BoolVar(&dLive, "dlive", false, "Dump liveness sets and live ranges")
	rootCmd.Flags().BoolVar(&dAlloc, "dalloc", false, "Dump register allocation and the rewritten function")

	return rootCmd
}

// compile runs the pipeline over the function in filename, writing one
// dump file per enabled -d flag next to the input and echoing each dump
// to stdout.
func compile(filename string, out, errOut io.Writer) error {
	f, err := loadFunction(filename)
	if err != nil {
		return err
	}
	if err := f.ConstructCFG(); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	cfg := f.CFG()

	if dTIR {
		err := writeDump(filename, ".tir", out, errOut, func(w io.Writer) {
			tir.Print(w, f)
		})
		if err != nil {
			return err
		}
	}
	if dCFG {
		err := writeDump(filename, ".cfg", out, errOut, func(w io.Writer) {
			printCFG(w, f, cfg)
		})
		if err != nil {
			return err
		}
	}
	if dDom {
		dt := analysis.BuildDomTree(cfg)
		err := writeDump(filename, ".dom", out, errOut, func(w io.Writer) {
			printDomTree(w, f, dt)
		})
		if err != nil {
			return err
		}
	}

	if !dLive && !dAlloc {
		fmt.Fprintf(errOut, "tirc: compiled %s\n", filename)
		return nil
	}

	liveness := analysis.AnalyzeLiveness(f, cfg)
	if dLive {
		err := writeDump(filename, ".live", out, errOut, func(w io.Writer) {
			printLiveness(w, f, liveness)
		})
		if err != nil {
			return err
		}
	}
	if dAlloc {
		res := regalloc.Allocate(liveness.AllRanges(), regalloc.Config{
			PregCount:   x64.RegCount,
			ReservedAll: x64.ReservedRegs,
		})
		regalloc.Apply(f, res)
		if err := f.ConstructCFG(); err != nil {
			return fmt.Errorf("%s: %w", filename, err)
		}
		err := writeDump(filename, ".alloc", out, errOut, func(w io.Writer) {
			printAllocation(w, res)
			tir.Print(w, f)
		})
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(errOut, "tirc: compiled %s\n", filename)
	return nil
}

// writeDump renders a dump to filename's sibling with the given
// extension and echoes it to stdout.
func writeDump(filename, ext string, out, errOut io.Writer, render func(io.Writer)) error {
	outputFilename := dumpFilename(filename, ext)
	outFile, err := os.Create(outputFilename)
	if err != nil {
		fmt.Fprintf(errOut, "tirc: error creating %s: %v\n", outputFilename, err)
		return err
	}
	defer outFile.Close()

	render(outFile)
	render(out)
	return nil
}

// dumpFilename returns the dump file for an input: input.yaml -> input.tir
func dumpFilename(filename, ext string) string {
	if strings.HasSuffix(filename, ".yaml") {
		return filename[:len(filename)-len(".yaml")] + ext
	}
	return filename + ext
}

func printCFG(w io.Writer, f *tir.Func[x64.Inst], cfg *tir.CFG) {
	fmt.Fprintf(w, "entry: %s\n", cfg.Entry())
	f.ForEachBlock(func(b tir.Block, _ *tir.BlockData[x64.Inst]) {
		fmt.Fprintf(w, "%s -> %s\n", b, blockList(cfg.Succs(b)))
	})
}

func printDomTree(w io.Writer, f *tir.Func[x64.Inst], dt *analysis.DomTree) {
	f.ForEachBlock(func(b tir.Block, _ *tir.BlockData[x64.Inst]) {
		fmt.Fprintf(w, "%s: idom %s\n", b, dt.Idom(b))
	})
}

func printLiveness(w io.Writer, f *tir.Func[x64.Inst], l *analysis.Liveness) {
	f.ForEachBlock(func(b tir.Block, _ *tir.BlockData[x64.Inst]) {
		fmt.Fprintf(w, "%s: in=%s out=%s\n", b, regSet(l.LiveIn(b)), regSet(l.LiveOut(b)))
	})
	for _, r := range l.AllRanges() {
		fmt.Fprintf(w, "%s\n", r)
	}
}

func printAllocation(w io.Writer, res *regalloc.Result) {
	var target x64.Target
	for _, a := range res.Allocs {
		fmt.Fprintf(w, "%s -> %s\n", a.Range, slotName(target, a.Slot))
	}
	fmt.Fprintf(w, "stack slots: %d\n", res.StackSlots)
}

func slotName(target x64.Target, s regalloc.Slot) string {
	if rs, ok := s.(regalloc.RegSlot); ok {
		return tir.RegName(target, rs.Reg)
	}
	return s.String()
}

func regSet(set support.BitSet) string {
	var names []string
	set.ForEachSet(func(id int) {
		names = append(names, fmt.Sprintf("v%d", id))
	})
	return "{" + strings.Join(names, " ") + "}"
}

func blockList(blocks []tir.Block) string {
	names := make([]string, len(blocks))
	for i, b := range blocks {
		names[i] = b.String()
	}
	return strings.Join(names, ", ")
}
