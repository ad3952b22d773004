package ir

import (
	"fmt"
	"strings"
)

// Print renders program as a readable text listing: one function per block,
// one line per phi/instruction, block labels carrying their predecessor and
// successor edges so a before/after FormBottomLoops diff is easy to read by
// eye in the CLI's verbose output.
func Print(program *Program) string {
	var b strings.Builder
	for i, fn := range program.Functions {
		if i > 0 {
			b.WriteByte('\n')
		}
		printFunction(&b, fn)
	}
	return b.String()
}

func printFunction(b *strings.Builder, fn *Function) {
	fmt.Fprintf(b, "fn %s(%s)", fn.Name, paramList(fn.Params))
	if fn.ReturnType != nil {
		fmt.Fprintf(b, " : %s", fn.ReturnType)
	}
	fmt.Fprintf(b, " {\n")
	for _, blk := range fn.Blocks {
		printBlock(b, blk)
	}
	fmt.Fprintf(b, "}\n")
}

func paramList(params []*Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
	}
	return strings.Join(parts, ", ")
}

func printBlock(b *strings.Builder, blk *BasicBlock) {
	fmt.Fprintf(b, "  %s: preds=%s succs=%s\n", blk, blockList(blk.Predecessors), blockList(blk.Successors))
	for _, p := range blk.Phis {
		fmt.Fprintf(b, "    %s\n", p)
	}
	for _, instr := range blk.Instructions {
		fmt.Fprintf(b, "    %s\n", instr)
	}
}

func blockList(blocks []*BasicBlock) string {
	parts := make([]string, len(blocks))
	for i, blk := range blocks {
		parts[i] = blk.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
