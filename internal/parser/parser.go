package parser

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"loopc/internal/ast"
)

var build = buildParser()

func buildParser() *participle.Parser[gFile] {
	p, err := participle.Build[gFile](
		participle.Lexer(LoopcLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(3),
	)
	if err != nil {
		panic(fmt.Errorf("parser: failed to build grammar: %w", err))
	}
	return p
}

// ParseFile reads path and parses it into a loopc AST file.
func ParseFile(path string) (*ast.File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseSource(path, string(source))
}

// ParseSource parses source text, using sourceName only for diagnostics.
func ParseSource(sourceName, source string) (*ast.File, error) {
	tree, err := build.ParseString(sourceName, source)
	if err != nil {
		reportParseError(source, err)
		return nil, err
	}
	return convertFile(tree), nil
}

// reportParseError prints a caret-style diagnostic, matching the teacher's
// grammar.reportParseError shape.
func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", max(pos.Column-1, 0)) + "^"

	color.Red("syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}
