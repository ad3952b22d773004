package lsp

import "loopc/internal/ast"

// SemanticToken is one LSP semantic token entry. Line and StartChar are
// 0-based; TokenType/TokenModifiers index into SemanticTokenTypes/Modifiers.
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int
	TokenModifiers int
}

func collectSemanticTokens(file *ast.File) []SemanticToken {
	if file == nil {
		return nil
	}
	var tokens []SemanticToken
	for _, item := range file.Items {
		switch it := item.(type) {
		case *ast.ClassDecl:
			tokens = append(tokens, makeToken(it.Pos, it.Name, "namespace", 1))
		case *ast.Function:
			tokens = append(tokens, walkFunction(it)...)
		}
	}
	return tokens
}

func walkFunction(fn *ast.Function) []SemanticToken {
	tokens := []SemanticToken{makeToken(fn.Pos, fn.Name, "function", 1)}
	for _, p := range fn.Params {
		tokens = append(tokens, makeToken(p.Pos, p.Name, "parameter", 0))
	}
	tokens = append(tokens, walkBlock(fn.Body)...)
	return tokens
}

func walkBlock(b *ast.Block) []SemanticToken {
	if b == nil {
		return nil
	}
	var tokens []SemanticToken
	for _, stmt := range b.Stmts {
		tokens = append(tokens, walkStmt(stmt)...)
	}
	return tokens
}

func walkStmt(stmt ast.Stmt) []SemanticToken {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		return append([]SemanticToken{makeToken(s.Pos, s.Name, "variable", 1)}, walkExpr(s.Expr)...)
	case *ast.AssignStmt:
		return append([]SemanticToken{makeToken(s.Pos, s.Name, "variable", 0)}, walkExpr(s.Expr)...)
	case *ast.IfStmt:
		tokens := walkExpr(s.Cond)
		tokens = append(tokens, walkBlock(s.Then)...)
		tokens = append(tokens, walkBlock(s.Else)...)
		return tokens
	case *ast.WhileStmt:
		return append(walkExpr(s.Cond), walkBlock(s.Body)...)
	case *ast.ReturnStmt:
		return walkExpr(s.Expr)
	case *ast.AssertStmt:
		return walkExpr(s.Cond)
	case *ast.ExprStmt:
		return walkExpr(s.Expr)
	}
	return nil
}

func walkExpr(e ast.Expr) []SemanticToken {
	switch ex := e.(type) {
	case *ast.IdentExpr:
		return []SemanticToken{makeToken(ex.Pos, ex.Name, "variable", 0)}
	case *ast.UnaryExpr:
		return walkExpr(ex.Operand)
	case *ast.BinaryExpr:
		return append(walkExpr(ex.Left), walkExpr(ex.Right)...)
	case *ast.CallExpr:
		tokens := []SemanticToken{makeToken(ex.Pos, ex.Callee, "function", 0)}
		for _, a := range ex.Args {
			tokens = append(tokens, walkExpr(a)...)
		}
		return tokens
	}
	return nil
}

func makeToken(pos ast.Pos, value, tokenType string, decl int) SemanticToken {
	return SemanticToken{
		Line:           uint32(maxInt(pos.Line-1, 0)),
		StartChar:      uint32(maxInt(pos.Column-1, 0)),
		Length:         uint32(len(value)),
		TokenType:      indexOf(tokenType, SemanticTokenTypes),
		TokenModifiers: decl << indexOf("declaration", SemanticTokenModifiers),
	}
}

func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return -1
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
