package parser

import (
	"strings"

	"loopc/internal/ast"
)

// convertFile lowers the participle parse tree into the plain ast.File the
// rest of the compiler consumes, the same separation of concerns as the
// teacher's grammar-tree-vs-ast split.

func convertPos(filename string, line, col, offset int) ast.Pos {
	return ast.Pos{Filename: filename, Line: line, Column: col, Offset: offset}
}

func convertFile(f *gFile) *ast.File {
	out := &ast.File{}
	for _, item := range f.Items {
		switch {
		case item.Class != nil:
			out.Items = append(out.Items, convertClass(item.Class))
		case item.Func != nil:
			out.Items = append(out.Items, convertFunc(item.Func))
		}
	}
	return out
}

func convertClass(c *gClass) *ast.ClassDecl {
	return &ast.ClassDecl{
		Pos:  convertPos(c.Pos.Filename, c.Pos.Line, c.Pos.Column, c.Pos.Offset),
		Name: c.Name,
	}
}

func convertFunc(fn *gFunc) *ast.Function {
	out := &ast.Function{
		Pos:        convertPos(fn.Pos.Filename, fn.Pos.Line, fn.Pos.Column, fn.Pos.Offset),
		Name:       fn.Name,
		ReturnType: fn.Return,
	}
	for _, p := range fn.Params {
		out.Params = append(out.Params, &ast.Param{Name: p.Name, Type: p.Type})
	}
	out.Body = convertBlock(fn.Body)
	return out
}

func convertBlock(b *gBlock) *ast.Block {
	out := &ast.Block{}
	for _, s := range b.Stmts {
		out.Stmts = append(out.Stmts, convertStmt(s))
	}
	return out
}

func convertStmt(s *gStmt) ast.Stmt {
	switch {
	case s.Let != nil:
		return &ast.LetStmt{
			Pos:  convertPos(s.Let.Pos.Filename, s.Let.Pos.Line, s.Let.Pos.Column, s.Let.Pos.Offset),
			Name: s.Let.Name,
			Expr: convertExpr(s.Let.Expr),
		}
	case s.Assign != nil:
		return &ast.AssignStmt{
			Pos:  convertPos(s.Assign.Pos.Filename, s.Assign.Pos.Line, s.Assign.Pos.Column, s.Assign.Pos.Offset),
			Name: s.Assign.Name,
			Expr: convertExpr(s.Assign.Expr),
		}
	case s.If != nil:
		out := &ast.IfStmt{
			Pos:  convertPos(s.If.Pos.Filename, s.If.Pos.Line, s.If.Pos.Column, s.If.Pos.Offset),
			Cond: convertExpr(s.If.Cond),
			Then: convertBlock(s.If.Then),
		}
		if s.If.Else != nil {
			out.Else = convertBlock(s.If.Else)
		}
		return out
	case s.While != nil:
		return &ast.WhileStmt{
			Pos:  convertPos(s.While.Pos.Filename, s.While.Pos.Line, s.While.Pos.Column, s.While.Pos.Offset),
			Cond: convertExpr(s.While.Cond),
			Body: convertBlock(s.While.Body),
		}
	case s.Return != nil:
		out := &ast.ReturnStmt{Pos: convertPos(s.Return.Pos.Filename, s.Return.Pos.Line, s.Return.Pos.Column, s.Return.Pos.Offset)}
		if s.Return.Expr != nil {
			out.Expr = convertExpr(s.Return.Expr)
		}
		return out
	case s.Assert != nil:
		out := &ast.AssertStmt{
			Pos:  convertPos(s.Assert.Pos.Filename, s.Assert.Pos.Line, s.Assert.Pos.Column, s.Assert.Pos.Offset),
			Cond: convertExpr(s.Assert.Cond),
		}
		if s.Assert.Message != nil {
			out.Message = unquote(*s.Assert.Message)
		}
		return out
	case s.Expr != nil:
		return &ast.ExprStmt{
			Pos:  convertPos(s.Expr.Pos.Filename, s.Expr.Pos.Line, s.Expr.Pos.Column, s.Expr.Pos.Offset),
			Expr: convertExpr(s.Expr.Expr),
		}
	}
	return nil
}

func convertExpr(e *gExpr) ast.Expr {
	left := convertAndExpr(e.Left)
	for _, op := range e.Ops {
		left = &ast.BinaryExpr{Operator: op.Operator, Left: left, Right: convertAndExpr(op.Right)}
	}
	return left
}

func convertAndExpr(e *gAndExpr) ast.Expr {
	left := convertEqExpr(e.Left)
	for _, op := range e.Ops {
		left = &ast.BinaryExpr{Operator: op.Operator, Left: left, Right: convertEqExpr(op.Right)}
	}
	return left
}

func convertEqExpr(e *gEqExpr) ast.Expr {
	left := convertRelExpr(e.Left)
	for _, op := range e.Ops {
		left = &ast.BinaryExpr{Operator: op.Operator, Left: left, Right: convertRelExpr(op.Right)}
	}
	return left
}

func convertRelExpr(e *gRelExpr) ast.Expr {
	left := convertAddExpr(e.Left)
	for _, op := range e.Ops {
		left = &ast.BinaryExpr{Operator: op.Operator, Left: left, Right: convertAddExpr(op.Right)}
	}
	return left
}

func convertAddExpr(e *gAddExpr) ast.Expr {
	left := convertMulExpr(e.Left)
	for _, op := range e.Ops {
		left = &ast.BinaryExpr{Operator: op.Operator, Left: left, Right: convertMulExpr(op.Right)}
	}
	return left
}

func convertMulExpr(e *gMulExpr) ast.Expr {
	left := convertUnaryExpr(e.Left)
	for _, op := range e.Ops {
		left = &ast.BinaryExpr{Operator: op.Operator, Left: left, Right: convertUnaryExpr(op.Right)}
	}
	return left
}

func convertUnaryExpr(e *gUnaryExpr) ast.Expr {
	operand := convertPrimary(e.Operand)
	if e.Operator != nil {
		return &ast.UnaryExpr{
			Pos:      convertPos(e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Pos.Offset),
			Operator: *e.Operator,
			Operand:  operand,
		}
	}
	return operand
}

func convertPrimary(p *gPrimary) ast.Expr {
	at := convertPos(p.Pos.Filename, p.Pos.Line, p.Pos.Column, p.Pos.Offset)
	switch {
	case p.Call != nil:
		call := &ast.CallExpr{Pos: at, Callee: p.Call.Name}
		for _, a := range p.Call.Args {
			call.Args = append(call.Args, convertExpr(a))
		}
		return call
	case p.Ident != nil:
		return &ast.IdentExpr{Pos: at, Name: *p.Ident}
	case p.Number != nil:
		return &ast.IntLit{Pos: at, Value: *p.Number}
	case p.String != nil:
		return &ast.StringLit{Pos: at, Value: unquote(*p.String)}
	case p.True:
		return &ast.BoolLit{Pos: at, Value: true}
	case p.False:
		return &ast.BoolLit{Pos: at, Value: false}
	case p.Paren != nil:
		return convertExpr(p.Paren)
	}
	return nil
}

// unquote strips the surrounding quotes participle leaves on a @String
// capture; loopc's string literals have no escapes beyond \" and \\.
func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}
