package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPipeline(t *testing.T, source string) (*Function, *Stats) {
	t.Helper()
	prog, stats := buildFrom(t, source)
	NewOptimizationPipeline(stats).Run(prog)
	require.Len(t, prog.Functions, 1)
	return prog.Functions[0], stats
}

func TestFormBottomLoopsConvertsCountedLoop(t *testing.T) {
	_, stats := runPipeline(t, `
fn sum(n: Int) : Int {
    let total = 0;
    let i = 0;
    while (i < n) {
        total = total + i;
        i = i + 1;
    }
    return total;
}
`)
	assert.Equal(t, int64(1), stats.Count(StatFormBottomLoop))
	assert.Equal(t, int64(0), stats.Count(StatFormBottomLoopRejectedMultiBackEdge))
	assert.Equal(t, int64(0), stats.Count(StatFormBottomLoopRejectedUnclonableHeader))
	assert.Equal(t, int64(0), stats.Count(StatFormBottomLoopRejectedPhiCycle))
}

func TestFormBottomLoopsPreservesStructuralInvariants(t *testing.T) {
	f, _ := runPipeline(t, `
fn sum(n: Int) : Int {
    let total = 0;
    let i = 0;
    while (i < n) {
        total = total + i;
        i = i + 1;
    }
    return total;
}
`)
	for _, b := range f.Blocks {
		for i, instr := range b.Instructions {
			if _, ok := instr.(Terminator); ok {
				assert.Equal(t, len(b.Instructions)-1, i, "terminator must be last in block %s", b.Label)
			}
		}
		for _, phi := range b.Phis {
			assert.Len(t, phi.Inputs, len(b.Predecessors), "phi in %s must have one input per predecessor", b.Label)
			for i, in := range phi.Inputs {
				if in != nil {
					assert.NotNil(t, b.Predecessors[i])
				}
			}
		}
	}
}

func TestFormBottomLoopsRejectsMultipleBackEdges(t *testing.T) {
	f := NewFunction("multi", NewStats())
	entry := f.CreateBlock("entry")
	header := f.CreateBlock("header")
	body := f.CreateBlock("body")
	contA := f.CreateBlock("contA")
	contB := f.CreateBlock("contB")
	exit := f.CreateBlock("exit")

	n := f.NewValue("n", Int, entry, nil)
	f.Params = append(f.Params, &Param{Name: "n", Type: Int, Value: n})

	zero := NewConstantInt(f, entry, 0)
	entry.AddInstruction(zero)
	entry.AddInstruction(NewGoto(f, header))
	entry.AddSuccessor(header)

	phi := NewPhi(f, header, Int)
	header.AddPhi(phi)
	phi.SetInput(header.PredecessorIndex(entry), zero.Result())

	header.AddInstruction(NewSuspendCheck(f))
	cond := NewBinary(f, header, OpLt, phi.Result(), n, Bool)
	header.AddInstruction(cond)
	header.AddInstruction(NewIf(f, cond.Result(), body, exit))
	header.AddSuccessor(body)
	header.AddSuccessor(exit)

	flag := NewConstantBool(f, body, true)
	body.AddInstruction(flag)
	body.AddInstruction(NewIf(f, flag.Result(), contA, contB))
	body.AddSuccessor(contA)
	body.AddSuccessor(contB)

	contA.AddInstruction(NewGoto(f, header))
	contA.AddSuccessor(header)
	phi.SetInput(header.PredecessorIndex(contA), phi.Result())

	contB.AddInstruction(NewGoto(f, header))
	contB.AddSuccessor(header)
	phi.SetInput(header.PredecessorIndex(contB), phi.Result())

	exit.AddInstruction(NewReturn(f, nil))

	stats := NewStats()
	changed := runFormBottomLoops(f, stats)
	assert.False(t, changed)
	assert.Equal(t, int64(1), stats.Count(StatFormBottomLoopRejectedMultiBackEdge))
}

func TestFormBottomLoopsIdempotentOnAlreadyBottomTested(t *testing.T) {
	f, stats := runPipeline(t, `
fn sum(n: Int) : Int {
    let total = 0;
    let i = 0;
    while (i < n) {
        total = total + i;
        i = i + 1;
    }
    return total;
}
`)
	before := stats.Count(StatFormBottomLoop)
	runFormBottomLoops(f, stats)
	assert.Equal(t, before, stats.Count(StatFormBottomLoop), "a loop already converted to bottom-tested form must not be converted again")
}
