package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loopc/internal/errors"
	"loopc/internal/parser"
)

func analyze(t *testing.T, source string) []errors.CompilerError {
	t.Helper()
	file, err := parser.ParseSource("test.lc", source)
	require.NoError(t, err)
	return NewAnalyzer().Analyze(file)
}

func TestAnalyzeWellTypedLoop(t *testing.T) {
	diags := analyze(t, `
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
	assert.Empty(t, diags)
}

func TestAnalyzeUndefinedVariable(t *testing.T) {
	diags := analyze(t, `
fn f() : Int {
    return missing;
}
`)
	require.Len(t, diags, 1)
	assert.Equal(t, errors.ErrorUndefinedVariable, diags[0].Code)
}

func TestAnalyzeTypeMismatch(t *testing.T) {
	diags := analyze(t, `
fn f() : Int {
    let b = true;
    return b;
}
`)
	require.Len(t, diags, 1)
	assert.Equal(t, errors.ErrorTypeMismatch, diags[0].Code)
}

func TestAnalyzeMissingReturn(t *testing.T) {
	diags := analyze(t, `
fn f(n: Int) : Int {
    if (n > 0) {
        return n;
    }
}
`)
	require.Len(t, diags, 1)
	assert.Equal(t, errors.ErrorMissingReturn, diags[0].Code)
}

func TestAnalyzeUnknownClass(t *testing.T) {
	diags := analyze(t, `
fn f(r: Ref) : Bool {
    return instanceOf(r, "Ghost");
}
`)
	require.Len(t, diags, 1)
	assert.Equal(t, errors.ErrorUnknownClass, diags[0].Code)
}

func TestAnalyzeClassOfAndInstanceOf(t *testing.T) {
	diags := analyze(t, `
class Animal;

fn make() : Ref {
    return classOf("Animal");
}

fn check(r: Ref) : Bool {
    return instanceOf(r, "Animal");
}
`)
	assert.Empty(t, diags)
}

func TestAnalyzeInvalidArgumentCount(t *testing.T) {
	diags := analyze(t, `
fn add(a: Int, b: Int) : Int {
    return a + b;
}

fn f() : Int {
    return add(1);
}
`)
	require.Len(t, diags, 1)
	assert.Equal(t, errors.ErrorInvalidArguments, diags[0].Code)
}

func TestAnalyzeDuplicateDeclaration(t *testing.T) {
	diags := analyze(t, `
fn f() : Int {
    let x = 1;
    let x = 2;
    return x;
}
`)
	require.Len(t, diags, 1)
	assert.Equal(t, errors.ErrorDuplicateDeclaration, diags[0].Code)
}
