package ir

import (
	"loopc/internal/ast"
	"loopc/internal/semantic"
)

// BuildProgram lowers a type-checked file into IR using the declarations
// Analyze collected in context, charging every function's optimization
// counters against the same Stats the CLI prints at the end of a run.
func BuildProgram(file *ast.File, context *semantic.ContextRegistry, stats *Stats) *Program {
	builder := NewBuilder(context, stats)
	return builder.Build(file)
}

func PrintProgram(program *Program) string {
	return Print(program)
}
