package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loopc/internal/ast"
)

func TestParseSourceFunction(t *testing.T) {
	source := `
class Widget;

fn sum(n: Int) : Int {
    let total = 0;
    let i = 0;
    while (i < n) {
        total = total + i;
        i = i + 1;
    }
    return total;
}
`
	file, err := ParseSource("sum.lc", source)
	require.NoError(t, err)
	require.Len(t, file.Items, 2)

	class, ok := file.Items[0].(*ast.ClassDecl)
	require.True(t, ok)
	assert.Equal(t, "Widget", class.Name)

	fn, ok := file.Items[1].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "sum", fn.Name)
	assert.Equal(t, "Int", fn.ReturnType)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "n", fn.Params[0].Name)
	assert.Equal(t, "Int", fn.Params[0].Type)
	require.Len(t, fn.Body.Stmts, 3)

	while, ok := fn.Body.Stmts[2].(*ast.WhileStmt)
	require.True(t, ok)
	require.Len(t, while.Body.Stmts, 2)
}

func TestParseExpressionPrecedence(t *testing.T) {
	source := `
fn f() : Bool {
    return 1 + 2 * 3 == 7 && true;
}
`
	file, err := ParseSource("f.lc", source)
	require.NoError(t, err)
	fn := file.Items[0].(*ast.Function)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)

	and, ok := ret.Expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "&&", and.Operator)

	eq, ok := and.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "==", eq.Operator)

	add, ok := eq.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", add.Operator)

	mul, ok := add.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", mul.Operator)
}

func TestParseClassAndInstanceOf(t *testing.T) {
	source := `
class Animal;

fn isAnimal(r: Ref) : Bool {
    return instanceOf(r, "Animal");
}
`
	file, err := ParseSource("classof.lc", source)
	require.NoError(t, err)
	fn := file.Items[1].(*ast.Function)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	call, ok := ret.Expr.(*ast.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "instanceOf", call.Callee)
	require.Len(t, call.Args, 2)
	lit, ok := call.Args[1].(*ast.StringLit)
	require.True(t, ok)
	assert.Equal(t, "Animal", lit.Value)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := ParseSource("bad.lc", "fn broken( {")
	assert.Error(t, err)
}
