package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"loopc/internal/ast"
)

func TestErrorReporter(t *testing.T) {
	source := `fn test() : Int {
    let x = unknownVar;
    return x;
}`

	reporter := NewErrorReporter("test.lc", source)

	err := UndefinedVariable("unknownVar", ast.Pos{Line: 2, Column: 13}, []string{"knownVar", "anotherVar"})
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorUndefinedVariable+"]")
	assert.Contains(t, formatted, "undefined variable")
	assert.Contains(t, formatted, "unknownVar")
	assert.Contains(t, formatted, "test.lc:2:13")
	assert.Contains(t, formatted, "did you mean")
	assert.Contains(t, formatted, "knownVar")
}

func TestUndefinedVariableError(t *testing.T) {
	pos := ast.Pos{Line: 1, Column: 5}

	err := UndefinedVariable("balace", pos, []string{"balance"})
	assert.Equal(t, ErrorUndefinedVariable, err.Code)
	assert.Contains(t, err.Message, "balace")
	assert.Len(t, err.Suggestions, 1)
	assert.Contains(t, err.Suggestions[0].Message, "did you mean 'balance'")

	err = UndefinedVariable("xyz", pos, nil)
	assert.Len(t, err.Suggestions, 1)
	assert.Contains(t, err.Suggestions[0].Message, "declared")
}

func TestUndefinedFunctionError(t *testing.T) {
	pos := ast.Pos{Line: 1, Column: 5}

	err := UndefinedFunction("computee", pos, []string{"compute"})
	assert.Equal(t, ErrorUndefinedFunction, err.Code)
	assert.Contains(t, err.Message, "computee")
	assert.Len(t, err.Suggestions, 1)
	assert.Contains(t, err.Suggestions[0].Message, "did you mean 'compute'")
	assert.Contains(t, err.HelpText, "classOf/instanceOf")
}

func TestTypeMismatchError(t *testing.T) {
	pos := ast.Pos{Line: 1, Column: 5}

	err := TypeMismatch("Int", "Bool", pos)
	assert.Equal(t, ErrorTypeMismatch, err.Code)
	assert.Contains(t, err.Message, "expected Int, found Bool")

	err = TypeMismatch("Bool", "Int", pos)
	assert.Contains(t, err.Suggestions[0].Message, "comparison")
}

func TestUnknownClassError(t *testing.T) {
	pos := ast.Pos{Line: 1, Column: 5}

	err := UnknownClass("Widgett", pos, []string{"Widget"})
	assert.Equal(t, ErrorUnknownClass, err.Code)
	assert.Contains(t, err.Message, "Widgett")
	assert.Contains(t, err.Suggestions[0].Message, "did you mean 'Widget'")
}

func TestWarningFormatting(t *testing.T) {
	source := `let unused = 42;`
	reporter := NewErrorReporter("test.lc", source)

	err := UnusedVariable("unused", ast.Pos{Line: 1, Column: 5})
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "warning[W0001]")
	assert.Contains(t, formatted, "never used")
	assert.Contains(t, formatted, "prefix with underscore")
}

func TestErrorMarkerCreation(t *testing.T) {
	source := `let variable = value;`
	reporter := NewErrorReporter("test.lc", source)

	marker := reporter.createMarker(5, 8, Error) // "variable" is 8 chars at column 5

	spaces := strings.Count(marker, " ")
	assert.Equal(t, 4, spaces)
	carets := strings.Count(marker, "^")
	assert.Equal(t, 8, carets)
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, levenshteinDistance("hello", "hello"))
	assert.Equal(t, 1, levenshteinDistance("hello", "hallo"))
	assert.Equal(t, 1, levenshteinDistance("hello", "helo"))
	assert.Equal(t, 5, levenshteinDistance("hello", ""))
	assert.Equal(t, 3, levenshteinDistance("kitten", "sitting"))
}

func TestFindSimilarNames(t *testing.T) {
	candidates := []string{"balance", "amount", "total", "balanceOf", "xyz"}

	similar := FindSimilarNames("balace", candidates)
	assert.Contains(t, similar, "balance")
	assert.NotContains(t, similar, "xyz")

	similar = FindSimilarNames("verydifferent", candidates)
	assert.Empty(t, similar)
}

func TestErrorLevels(t *testing.T) {
	source := `test`
	reporter := NewErrorReporter("test.lc", source)
	pos := ast.Pos{Line: 1, Column: 1}

	errorErr := CompilerError{Level: Error, Message: "test error", Position: pos}
	warningErr := CompilerError{Level: Warning, Message: "test warning", Position: pos}

	errorFormatted := reporter.FormatError(errorErr)
	warningFormatted := reporter.FormatError(warningErr)

	assert.Contains(t, errorFormatted, "error:")
	assert.Contains(t, warningFormatted, "warning:")
}
