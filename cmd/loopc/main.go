package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"loopc/internal/errors"
	"loopc/internal/ir"
	"loopc/internal/parser"
	"loopc/internal/semantic"
)

func main() {
	verbose := flag.Bool("v", false, "print IR before and after optimization, and per-pass trace")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: loopc [-v] <file.lc>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read file: %s", err)
		os.Exit(1)
	}

	file, err := parser.ParseSource(path, string(source))
	if err != nil {
		// parser.ParseSource already printed a caret-style diagnostic.
		os.Exit(1)
	}

	analyzer := semantic.NewAnalyzer()
	diags := analyzer.Analyze(file)
	if reportDiagnostics(path, string(source), diags) {
		os.Exit(1)
	}

	stats := ir.NewStats()
	program := ir.BuildProgram(file, analyzer.Context(), stats)

	if *verbose {
		fmt.Println("-- before optimization --")
		fmt.Print(ir.PrintProgram(program))
	}

	pipeline := ir.NewOptimizationPipeline(stats)
	pipeline.Trace = *verbose
	pipeline.Run(program)

	if *verbose {
		fmt.Println("-- after optimization --")
		fmt.Print(ir.PrintProgram(program))
		fmt.Println("-- pass statistics --")
		fmt.Print(stats.String())
	}

	color.Green("✓ compiled %s", path)
}

// reportDiagnostics prints every diagnostic and reports whether any of them
// is an error (as opposed to a warning), the condition that aborts the build.
func reportDiagnostics(path, source string, diags []errors.CompilerError) bool {
	if len(diags) == 0 {
		return false
	}
	reporter := errors.NewErrorReporter(path, source)
	hasError := false
	for _, d := range diags {
		fmt.Print(reporter.FormatError(d))
		if !errors.IsWarning(d.Code) {
			hasError = true
		}
	}
	return hasError
}
