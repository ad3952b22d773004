package parser

import "github.com/alecthomas/participle/v2/lexer"

// Participle grammar types. These mirror the teacher's grammar package
// shape (struct tags drive the parse directly, no separate token-by-token
// hand-rolled descent) but precedence is encoded as a climbing chain of
// levels instead of one flat operator list, so binary expressions parse
// with the usual arithmetic/comparison/logical precedence.

type gFile struct {
	Items []*gItem `@@*`
}

type gItem struct {
	Class *gClass `  @@`
	Func  *gFunc  `| @@`
}

type gClass struct {
	Pos  lexer.Position
	Name string `"class" @Ident ";"`
}

type gFunc struct {
	Pos    lexer.Position
	Name   string    `"fn" @Ident "("`
	Params []*gParam `[ @@ { "," @@ } ] ")"`
	Return string    `[ ":" @Ident ]`
	Body   *gBlock   `@@`
}

type gParam struct {
	Name string `@Ident ":"`
	Type string `@Ident`
}

type gBlock struct {
	Stmts []*gStmt `"{" @@* "}"`
}

type gStmt struct {
	Let    *gLet      `  @@`
	If     *gIf       `| @@`
	While  *gWhile    `| @@`
	Return *gReturn   `| @@`
	Assert *gAssert   `| @@`
	Assign *gAssign   `| @@`
	Expr   *gExprStmt `| @@`
}

type gLet struct {
	Pos  lexer.Position
	Name string `"let" @Ident "="`
	Expr *gExpr `@@ ";"`
}

type gAssign struct {
	Pos  lexer.Position
	Name string `@Ident "="`
	Expr *gExpr `@@ ";"`
}

type gIf struct {
	Pos  lexer.Position
	Cond *gExpr  `"if" "(" @@ ")"`
	Then *gBlock `@@`
	Else *gBlock `[ "else" @@ ]`
}

type gWhile struct {
	Pos  lexer.Position
	Cond *gExpr  `"while" "(" @@ ")"`
	Body *gBlock `@@`
}

type gReturn struct {
	Pos  lexer.Position
	Expr *gExpr `"return" [ @@ ] ";"`
}

type gAssert struct {
	Pos     lexer.Position
	Cond    *gExpr  `"assert" "(" @@`
	Message *string `[ "," @String ] ")" ";"`
}

type gExprStmt struct {
	Pos  lexer.Position
	Expr *gExpr `@@ ";"`
}

// Expression precedence, loosest to tightest: or, and, equality, relational,
// additive, multiplicative, unary, primary/call.

type gExpr struct {
	Left *gAndExpr  `@@`
	Ops  []*gBinOp1 `{ @@ }`
}

type gBinOp1 struct {
	Operator string    `@"||"`
	Right    *gAndExpr `@@`
}

type gAndExpr struct {
	Left *gEqExpr   `@@`
	Ops  []*gBinOp2 `{ @@ }`
}

type gBinOp2 struct {
	Operator string   `@"&&"`
	Right    *gEqExpr `@@`
}

type gEqExpr struct {
	Left *gRelExpr  `@@`
	Ops  []*gBinOp3 `{ @@ }`
}

type gBinOp3 struct {
	Operator string    `@("==" | "!=")`
	Right    *gRelExpr `@@`
}

type gRelExpr struct {
	Left *gAddExpr  `@@`
	Ops  []*gBinOp4 `{ @@ }`
}

type gBinOp4 struct {
	Operator string    `@("<=" | ">=" | "<" | ">")`
	Right    *gAddExpr `@@`
}

type gAddExpr struct {
	Left *gMulExpr  `@@`
	Ops  []*gBinOp5 `{ @@ }`
}

type gBinOp5 struct {
	Operator string    `@("+" | "-")`
	Right    *gMulExpr `@@`
}

type gMulExpr struct {
	Left *gUnaryExpr `@@`
	Ops  []*gBinOp6  `{ @@ }`
}

type gBinOp6 struct {
	Operator string      `@("*" | "/" | "%")`
	Right    *gUnaryExpr `@@`
}

type gUnaryExpr struct {
	Pos      lexer.Position
	Operator *string    `[ @("-" | "!") ]`
	Operand  *gPrimary  `@@`
}

type gPrimary struct {
	Pos    lexer.Position
	True   bool    `  @"true"`
	False  bool    `| @"false"`
	Call   *gCall  `| @@`
	Ident  *string `| @Ident`
	Number *int64  `| @Integer`
	String *string `| @String`
	Paren  *gExpr  `| "(" @@ ")"`
}

type gCall struct {
	Name string   `@Ident "("`
	Args []*gExpr `[ @@ { "," @@ } ] ")"`
}

