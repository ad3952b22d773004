package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loopc/internal/parser"
	"loopc/internal/semantic"
)

func buildFrom(t *testing.T, source string) (*Program, *Stats) {
	t.Helper()
	file, err := parser.ParseSource("test.lc", source)
	require.NoError(t, err)

	analyzer := semantic.NewAnalyzer()
	diags := analyzer.Analyze(file)
	require.Empty(t, diags)

	stats := NewStats()
	return NewBuilder(analyzer.Context(), stats).Build(file), stats
}

func findFunc(prog *Program, name string) *Function {
	for _, f := range prog.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func TestBuildStraightLineFunction(t *testing.T) {
	prog, _ := buildFrom(t, `
fn add(a: Int, b: Int) : Int {
    return a + b;
}
`)
	f := findFunc(prog, "add")
	require.NotNil(t, f)
	require.Len(t, f.Blocks, 1)

	ret, ok := f.Blocks[0].LastInstruction().(*ReturnInstruction)
	require.True(t, ok)
	bin, ok := ret.Value.DefInstr.(*BinaryInstruction)
	require.True(t, ok)
	assert.Equal(t, OpAdd, bin.Op)
}

func TestBuildIfElsePhi(t *testing.T) {
	prog, _ := buildFrom(t, `
fn choose(n: Int) : Int {
    let result = 0;
    if (n > 0) {
        result = 1;
    } else {
        result = 2;
    }
    return result;
}
`)
	f := findFunc(prog, "choose")
	require.NotNil(t, f)

	var merge *BasicBlock
	for _, b := range f.Blocks {
		if b.Label == "if_merge" {
			merge = b
		}
	}
	require.NotNil(t, merge)
	require.Len(t, merge.Phis, 1)

	phi := merge.Phis[0]
	require.Len(t, phi.Inputs, len(merge.Predecessors))
	for i, pred := range merge.Predecessors {
		assert.Equal(t, pred, phi.Inputs[i].DefBlock, "phi input %d should come from its matching predecessor", i)
	}
}

func TestBuildIfWithoutElsePassesThroughEntry(t *testing.T) {
	prog, _ := buildFrom(t, `
fn guard(n: Int) : Int {
    let x = 0;
    if (n > 0) {
        x = n;
    }
    return x;
}
`)
	f := findFunc(prog, "guard")
	require.NotNil(t, f)

	var merge *BasicBlock
	for _, b := range f.Blocks {
		if b.Label == "if_merge" {
			merge = b
		}
	}
	require.NotNil(t, merge)
	require.Len(t, merge.Phis, 1)
	assert.Len(t, merge.Phis[0].Inputs, 2)
}

func TestBuildWhileHeaderPhi(t *testing.T) {
	prog, _ := buildFrom(t, `
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
	f := findFunc(prog, "sum")
	require.NotNil(t, f)

	var header *BasicBlock
	for _, b := range f.Blocks {
		if b.Label == "while_header" {
			header = b
		}
	}
	require.NotNil(t, header)
	require.Len(t, header.Phis, 2)
	require.Len(t, header.Predecessors, 2)

	for _, phi := range header.Phis {
		require.Len(t, phi.Inputs, 2)
		for _, in := range phi.Inputs {
			assert.NotNil(t, in)
		}
	}

	_, hasSuspendCheck := header.Instructions[0].(*SuspendCheckInstruction)
	assert.True(t, hasSuspendCheck)

	term, ok := header.LastInstruction().(*IfInstruction)
	require.True(t, ok)
	assert.Equal(t, "while_body", term.IfTrue.Label)
	assert.Equal(t, "while_exit", term.IfFalse.Label)
}

func TestBuildClassOfAndInstanceOf(t *testing.T) {
	prog, _ := buildFrom(t, `
class Animal;

fn check() : Bool {
    let a = classOf("Animal");
    return instanceOf(a, "Animal");
}
`)
	f := findFunc(prog, "check")
	require.NotNil(t, f)

	var loadClasses int
	var instanceOfs int
	for _, instr := range f.Blocks[0].Instructions {
		switch instr.(type) {
		case *LoadClassInstruction:
			loadClasses++
		case *InstanceOfInstruction:
			instanceOfs++
		}
	}
	assert.Equal(t, 2, loadClasses)
	assert.Equal(t, 1, instanceOfs)
}

func TestBuildImplicitVoidReturn(t *testing.T) {
	prog, _ := buildFrom(t, `
fn noop(x: Int) {
    let y = x;
}
`)
	f := findFunc(prog, "noop")
	require.NotNil(t, f)
	ret, ok := f.Blocks[len(f.Blocks)-1].LastInstruction().(*ReturnInstruction)
	require.True(t, ok)
	assert.Nil(t, ret.Value)
}
