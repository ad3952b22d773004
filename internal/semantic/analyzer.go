package semantic

import (
	"loopc/internal/ast"
	"loopc/internal/errors"
)

// Analyzer type-checks one parsed file, mirroring the teacher's analyzer
// shape: a single mutable pass collecting errors.CompilerError values,
// returned by Analyze, and building the Context the IR builder consumes.
type Analyzer struct {
	file    *ast.File
	errors  []errors.CompilerError
	context *ContextRegistry
	symbols *SymbolTable

	currentFunc *ast.Function
	returns     bool // whether the statement sequence just analyzed always returns
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{context: NewContextRegistry()}
}

// Analyze type-checks file and returns every accumulated diagnostic. An
// empty result means the file is safe to lower to IR; Context() then
// returns the class/function registry the IR builder needs.
func (a *Analyzer) Analyze(file *ast.File) []errors.CompilerError {
	a.file = file
	a.errors = nil
	a.context = NewContextRegistry()
	a.symbols = NewSymbolTable(nil)

	a.collectDeclarations()
	for _, item := range file.Items {
		if fn, ok := item.(*ast.Function); ok {
			a.analyzeFunction(fn)
		}
	}
	return a.errors
}

// Context returns the registry built by the most recent Analyze call.
func (a *Analyzer) Context() *ContextRegistry { return a.context }

func (a *Analyzer) collectDeclarations() {
	for _, item := range a.file.Items {
		switch it := item.(type) {
		case *ast.ClassDecl:
			if a.context.Classes[it.Name] {
				a.report(errors.DuplicateDeclaration(it.Name, it.Pos))
				continue
			}
			a.context.Classes[it.Name] = true
		case *ast.Function:
			if _, dup := a.context.Functions[it.Name]; dup {
				a.report(errors.DuplicateDeclaration(it.Name, it.Pos))
				continue
			}
			sig := FuncSig{ReturnType: it.ReturnType}
			for _, p := range it.Params {
				sig.Params = append(sig.Params, p.Type)
			}
			a.context.Functions[it.Name] = sig
		}
	}
}

func (a *Analyzer) report(e errors.CompilerError) { a.errors = append(a.errors, e) }

func (a *Analyzer) analyzeFunction(fn *ast.Function) {
	a.currentFunc = fn
	a.symbols = NewSymbolTable(nil)

	seen := map[string]bool{}
	for _, p := range fn.Params {
		if seen[p.Name] {
			a.report(errors.DuplicateDeclaration(p.Name, p.Pos))
			continue
		}
		seen[p.Name] = true
		a.symbols.Declare(p.Name, p.Type)
	}

	a.returns = false
	a.analyzeBlock(fn.Body)

	if fn.ReturnType != "" && !a.returns {
		a.report(errors.MissingReturn(fn.Name, fn.ReturnType, fn.Body.Pos))
	}
}

// analyzeBlock type-checks stmts in a fresh child scope and sets a.returns
// to whether the block is guaranteed to return on every path reaching its
// end — the minimal flow check needed for "missing return" diagnostics.
func (a *Analyzer) analyzeBlock(b *ast.Block) {
	parent := a.symbols
	a.symbols = parent.Push()
	defer func() { a.symbols = parent }()

	returns := false
	for _, stmt := range b.Stmts {
		a.analyzeStmt(stmt)
		if a.returns {
			returns = true
		}
	}
	a.returns = returns
}

func (a *Analyzer) analyzeStmt(stmt ast.Stmt) {
	a.returns = false
	switch s := stmt.(type) {
	case *ast.LetStmt:
		typ := a.typeOf(s.Expr)
		if a.symbols.DeclaredHere(s.Name) {
			a.report(errors.DuplicateDeclaration(s.Name, s.Pos))
		}
		a.symbols.Declare(s.Name, typ)

	case *ast.AssignStmt:
		declared, ok := a.symbols.Lookup(s.Name)
		if !ok {
			a.report(errors.InvalidAssignment(s.Name, s.Pos))
			return
		}
		actual := a.typeOf(s.Expr)
		if declared != "" && actual != "" && declared != actual {
			a.report(errors.TypeMismatch(declared, actual, s.Pos))
		}

	case *ast.IfStmt:
		a.checkBool(s.Cond)
		a.analyzeBlock(s.Then)
		thenReturns := a.returns
		elseReturns := false
		if s.Else != nil {
			a.analyzeBlock(s.Else)
			elseReturns = a.returns
		}
		a.returns = thenReturns && elseReturns && s.Else != nil

	case *ast.WhileStmt:
		a.checkBool(s.Cond)
		a.analyzeBlock(s.Body)
		a.returns = false // a while loop's guard may never admit the body

	case *ast.ReturnStmt:
		if s.Expr == nil {
			if a.currentFunc.ReturnType != "" {
				a.report(errors.TypeMismatch(a.currentFunc.ReturnType, "nothing", s.Pos))
			}
		} else {
			actual := a.typeOf(s.Expr)
			if a.currentFunc.ReturnType != "" && actual != "" && actual != a.currentFunc.ReturnType {
				a.report(errors.TypeMismatch(a.currentFunc.ReturnType, actual, s.Pos))
			}
			if a.currentFunc.ReturnType == "" {
				a.report(errors.TypeMismatch("nothing", actual, s.Pos))
			}
		}
		a.returns = true

	case *ast.AssertStmt:
		a.checkBool(s.Cond)

	case *ast.ExprStmt:
		a.typeOf(s.Expr)
	}
}

func (a *Analyzer) checkBool(e ast.Expr) {
	if t := a.typeOf(e); t != "" && t != "Bool" {
		a.report(errors.TypeMismatch("Bool", t, exprPos(e)))
	}
}

// typeOf infers an expression's static type, reporting diagnostics along
// the way. "" means "unknown" (already reported, or a builtin with no
// useful static type) and suppresses cascading type-mismatch noise.
func (a *Analyzer) typeOf(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.IntLit:
		return "Int"
	case *ast.BoolLit:
		return "Bool"
	case *ast.StringLit:
		return "" // only valid as a classOf/instanceOf/assert argument
	case *ast.IdentExpr:
		if t, ok := a.symbols.Lookup(ex.Name); ok {
			return t
		}
		a.report(errors.UndefinedVariable(ex.Name, ex.Pos, errors.FindSimilarNames(ex.Name, a.symbols.Names())))
		return ""
	case *ast.UnaryExpr:
		operand := a.typeOf(ex.Operand)
		switch ex.Operator {
		case "-":
			if operand != "" && operand != "Int" {
				a.report(errors.InvalidOperation(ex.Operator, operand, "", ex.Pos))
			}
			return "Int"
		case "!":
			if operand != "" && operand != "Bool" {
				a.report(errors.InvalidOperation(ex.Operator, operand, "", ex.Pos))
			}
			return "Bool"
		}
		return ""
	case *ast.BinaryExpr:
		return a.typeOfBinary(ex)
	case *ast.CallExpr:
		return a.typeOfCall(ex)
	}
	return ""
}

func (a *Analyzer) typeOfBinary(ex *ast.BinaryExpr) string {
	left := a.typeOf(ex.Left)
	right := a.typeOf(ex.Right)
	switch ex.Operator {
	case "+", "-", "*", "/", "%":
		if left != "" && left != "Int" || right != "" && right != "Int" {
			a.report(errors.InvalidOperation(ex.Operator, left, right, ex.Pos))
		}
		return "Int"
	case "&&", "||":
		if left != "" && left != "Bool" || right != "" && right != "Bool" {
			a.report(errors.InvalidOperation(ex.Operator, left, right, ex.Pos))
		}
		return "Bool"
	case "==", "!=":
		if left != "" && right != "" && left != right {
			a.report(errors.TypeMismatch(left, right, ex.Pos))
		}
		return "Bool"
	case "<", "<=", ">", ">=":
		if left != "" && left != "Int" || right != "" && right != "Int" {
			a.report(errors.InvalidOperation(ex.Operator, left, right, ex.Pos))
		}
		return "Bool"
	}
	return ""
}

func (a *Analyzer) typeOfCall(ex *ast.CallExpr) string {
	switch ex.Callee {
	case "classOf":
		if len(ex.Args) != 1 {
			a.report(errors.InvalidArguments("classOf", 1, len(ex.Args), ex.Pos))
			return "Ref"
		}
		name, ok := stringArg(ex.Args[0])
		if !ok {
			a.report(errors.TypeMismatch("string literal", "expression", ex.Pos))
			return "Ref"
		}
		if !a.context.Classes[name] {
			a.report(errors.UnknownClass(name, ex.Pos, errors.FindSimilarNames(name, classNames(a.context))))
		}
		return "Ref"

	case "instanceOf":
		if len(ex.Args) != 2 {
			a.report(errors.InvalidArguments("instanceOf", 2, len(ex.Args), ex.Pos))
			return "Bool"
		}
		valType := a.typeOf(ex.Args[0])
		if valType != "" && valType != "Ref" {
			a.report(errors.TypeMismatch("Ref", valType, ex.Pos))
		}
		name, ok := stringArg(ex.Args[1])
		if !ok {
			a.report(errors.TypeMismatch("string literal", "expression", ex.Pos))
			return "Bool"
		}
		if !a.context.Classes[name] {
			a.report(errors.UnknownClass(name, ex.Pos, errors.FindSimilarNames(name, classNames(a.context))))
		}
		return "Bool"

	case "print":
		if len(ex.Args) != 1 {
			a.report(errors.InvalidArguments("print", 1, len(ex.Args), ex.Pos))
			return ""
		}
		a.typeOf(ex.Args[0])
		return ""
	}

	sig, ok := a.context.Functions[ex.Callee]
	if !ok {
		names := make([]string, 0, len(a.context.Functions))
		for n := range a.context.Functions {
			names = append(names, n)
		}
		a.report(errors.UndefinedFunction(ex.Callee, ex.Pos, errors.FindSimilarNames(ex.Callee, names)))
		for _, arg := range ex.Args {
			a.typeOf(arg)
		}
		return ""
	}

	if len(ex.Args) != len(sig.Params) {
		a.report(errors.InvalidArguments(ex.Callee, len(sig.Params), len(ex.Args), ex.Pos))
	}
	for i, arg := range ex.Args {
		argType := a.typeOf(arg)
		if i < len(sig.Params) && argType != "" && argType != sig.Params[i] {
			a.report(errors.TypeMismatch(sig.Params[i], argType, exprPos(arg)))
		}
	}
	return sig.ReturnType
}

func stringArg(e ast.Expr) (string, bool) {
	lit, ok := e.(*ast.StringLit)
	if !ok {
		return "", false
	}
	return lit.Value, true
}

func classNames(ctx *ContextRegistry) []string {
	out := make([]string, 0, len(ctx.Classes))
	for n := range ctx.Classes {
		out = append(out, n)
	}
	return out
}

func exprPos(e ast.Expr) ast.Pos {
	switch ex := e.(type) {
	case *ast.IdentExpr:
		return ex.Pos
	case *ast.IntLit:
		return ex.Pos
	case *ast.BoolLit:
		return ex.Pos
	case *ast.StringLit:
		return ex.Pos
	case *ast.UnaryExpr:
		return ex.Pos
	case *ast.BinaryExpr:
		return ex.Pos
	case *ast.CallExpr:
		return ex.Pos
	}
	return ast.Pos{}
}
