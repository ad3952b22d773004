package errors

import (
	"fmt"
	"strings"

	"loopc/internal/ast"
)

// SemanticErrorBuilder provides a fluent interface for creating semantic
// errors with suggestions, notes and help text.
type SemanticErrorBuilder struct {
	err CompilerError
}

// NewSemanticError creates a new semantic error builder.
func NewSemanticError(code, message string, pos ast.Pos) *SemanticErrorBuilder {
	return &SemanticErrorBuilder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

// NewSemanticWarning creates a new semantic warning builder.
func NewSemanticWarning(code, message string, pos ast.Pos) *SemanticErrorBuilder {
	return &SemanticErrorBuilder{
		err: CompilerError{
			Level:    Warning,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

// WithLength sets the length of the error span.
func (b *SemanticErrorBuilder) WithLength(length int) *SemanticErrorBuilder {
	b.err.Length = length
	return b
}

// WithSuggestion adds a suggestion to the error.
func (b *SemanticErrorBuilder) WithSuggestion(message string) *SemanticErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

// WithNote adds a note to the error.
func (b *SemanticErrorBuilder) WithNote(note string) *SemanticErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

// WithHelp adds help text to the error.
func (b *SemanticErrorBuilder) WithHelp(help string) *SemanticErrorBuilder {
	b.err.HelpText = help
	return b
}

// Build returns the completed compiler error.
func (b *SemanticErrorBuilder) Build() CompilerError {
	return b.err
}

// UndefinedVariable creates an error for undefined variables, with
// Levenshtein-based "did you mean" suggestions drawn from names in scope.
func UndefinedVariable(name string, pos ast.Pos, similarNames []string) CompilerError {
	builder := NewSemanticError(ErrorUndefinedVariable, fmt.Sprintf("undefined variable '%s'", name), pos).
		WithLength(len(name))

	if len(similarNames) > 0 {
		builder = builder.WithSuggestion(suggestSimilar(similarNames))
	} else {
		builder = builder.WithSuggestion("make sure the variable is declared with 'let' before use")
	}

	return builder.Build()
}

// UndefinedFunction creates an error for calls to functions that are neither
// a builtin (classOf, instanceOf, print) nor defined in the file.
func UndefinedFunction(name string, pos ast.Pos, similarNames []string) CompilerError {
	builder := NewSemanticError(ErrorUndefinedFunction, fmt.Sprintf("function '%s' is not defined", name), pos).
		WithLength(len(name))

	if len(similarNames) > 0 {
		builder = builder.WithSuggestion(suggestSimilar(similarNames))
	}

	return builder.WithHelp("functions must be declared with 'fn' before use, or be one of the builtins classOf/instanceOf/print").Build()
}

// TypeMismatch creates an error for type mismatches between an expected and
// an actual type.
func TypeMismatch(expected, actual string, pos ast.Pos) CompilerError {
	builder := NewSemanticError(ErrorTypeMismatch, fmt.Sprintf("type mismatch: expected %s, found %s", expected, actual), pos)

	if expected == "Bool" && actual != "Bool" {
		builder = builder.WithSuggestion("use a comparison or logical operator to produce a Bool value")
	} else if expected == "Int" && actual != "Int" {
		builder = builder.WithSuggestion("this position requires an Int expression")
	}

	return builder.Build()
}

// MissingReturn creates an error for functions that declare a return type
// but have no return statement on some path.
func MissingReturn(functionName, returnType string, pos ast.Pos) CompilerError {
	message := fmt.Sprintf("function '%s' declares return type '%s' but does not return on every path", functionName, returnType)
	return NewSemanticError(ErrorMissingReturn, message, pos).
		WithSuggestion(fmt.Sprintf("add a 'return <value>;' of type %s on every path", returnType)).
		WithHelp("functions with a return type must return a value on every code path").
		Build()
}

// DuplicateDeclaration creates an error for a name declared twice in the
// same scope (a parameter shadowing another parameter, a class declared
// twice, two functions sharing a name).
func DuplicateDeclaration(name string, pos ast.Pos) CompilerError {
	return NewSemanticError(ErrorDuplicateDeclaration, fmt.Sprintf("duplicate declaration: '%s'", name), pos).
		WithSuggestion(fmt.Sprintf("rename one of the declarations of '%s'", name)).
		WithNote("identifiers must be unique within their scope").
		Build()
}

// InvalidArguments creates an error for function call argument-count
// mismatches.
func InvalidArguments(functionName string, expected, actual int, pos ast.Pos) CompilerError {
	return NewSemanticError(ErrorInvalidArguments,
		fmt.Sprintf("function '%s' expects %d argument(s), got %d", functionName, expected, actual), pos).
		WithSuggestion(fmt.Sprintf("provide exactly %d argument(s)", expected)).
		Build()
}

// InvalidAssignment creates an error for an assignment to a name that was
// never declared with 'let'.
func InvalidAssignment(name string, pos ast.Pos) CompilerError {
	return NewSemanticError(ErrorInvalidAssignment, fmt.Sprintf("cannot assign to undeclared variable '%s'", name), pos).
		WithSuggestion(fmt.Sprintf("declare it first with 'let %s = ...;'", name)).
		Build()
}

// InvalidOperation creates an error for an operator applied to operand
// types it does not support.
func InvalidOperation(op, leftType, rightType string, pos ast.Pos) CompilerError {
	builder := NewSemanticError(ErrorInvalidOperation, fmt.Sprintf("invalid operation: %s %s %s", leftType, op, rightType), pos)

	switch op {
	case "+", "-", "*", "/", "%":
		builder = builder.WithSuggestion("arithmetic operators require Int operands")
	case "&&", "||":
		builder = builder.WithSuggestion("logical operators require Bool operands")
	}

	return builder.Build()
}

// UnknownClass creates an error for classOf/instanceOf referencing a class
// that was never declared with 'class Name;'.
func UnknownClass(name string, pos ast.Pos, similarNames []string) CompilerError {
	builder := NewSemanticError(ErrorUnknownClass, fmt.Sprintf("unknown class '%s'", name), pos)
	if len(similarNames) > 0 {
		builder = builder.WithSuggestion(suggestSimilar(similarNames))
	}
	return builder.WithHelp("classes must be declared at the top level with 'class Name;' before use").Build()
}

// UninitializedVariable creates an error for a use of a variable that has
// no assignment reaching it on every path.
func UninitializedVariable(name string, pos ast.Pos) CompilerError {
	return NewSemanticError(ErrorUninitializedVariable, fmt.Sprintf("variable '%s' may be used before it is assigned", name), pos).
		WithNote("every path to this use must assign the variable first").
		Build()
}

// UnusedVariable creates a warning for a declared-but-unused local.
func UnusedVariable(name string, pos ast.Pos) CompilerError {
	return NewSemanticWarning(WarningUnusedVariable, fmt.Sprintf("variable '%s' is declared but never used", name), pos).
		WithLength(len(name)).
		WithSuggestion(fmt.Sprintf("prefix with underscore to silence: '_%s'", name)).
		Build()
}

func suggestSimilar(names []string) string {
	if len(names) == 1 {
		return fmt.Sprintf("did you mean '%s'?", names[0])
	}
	return fmt.Sprintf("did you mean one of: '%s'?", strings.Join(names, "', '"))
}

// FindSimilarNames returns every candidate longer than two characters that
// is within Levenshtein distance 2 of target, used to build "did you mean"
// suggestions for undefined names.
func FindSimilarNames(target string, candidates []string) []string {
	var similar []string
	for _, candidate := range candidates {
		if len(candidate) > 2 && levenshteinDistance(target, candidate) <= 2 {
			similar = append(similar, candidate)
		}
	}
	return similar
}

// levenshteinDistance is a standard dynamic-programming edit distance,
// used only to pick "did you mean" suggestions.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}
	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min3(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}

	return matrix[len(a)][len(b)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
