package ir

import (
	"loopc/internal/ast"
	"loopc/internal/semantic"
)

// Builder lowers a type-checked ast.File into a Program, one ir.Function per
// top-level fn declaration. Classes contribute no IR of their own: they are
// purely the names LoadClass/InstanceOf resolve against.
type Builder struct {
	ctx   *semantic.ContextRegistry
	stats *Stats
}

func NewBuilder(ctx *semantic.ContextRegistry, stats *Stats) *Builder {
	return &Builder{ctx: ctx, stats: stats}
}

func (b *Builder) Build(file *ast.File) *Program {
	prog := &Program{}
	for _, item := range file.Items {
		if fn, ok := item.(*ast.Function); ok {
			prog.Functions = append(prog.Functions, b.buildFunction(fn))
		}
	}
	return prog
}

// funcBuilder holds the per-function state an SSA front end needs: the
// function under construction, the block statements are currently being
// appended to, and a name -> current-SSA-value map that buildIf/buildWhile
// snapshot and merge at control-flow joins.
type funcBuilder struct {
	ctx  *semantic.ContextRegistry
	f    *Function
	cur  *BasicBlock
	vars map[string]*Value
}

func (b *Builder) buildFunction(fn *ast.Function) *Function {
	f := NewFunction(fn.Name, b.stats)
	f.ReturnType = typeFromName(fn.ReturnType)

	entry := f.CreateBlock("entry")
	vars := make(map[string]*Value, len(fn.Params))
	for _, p := range fn.Params {
		typ := typeFromName(p.Type)
		v := f.NewValue(p.Name, typ, entry, nil)
		f.Params = append(f.Params, &Param{Name: p.Name, Type: typ, Value: v})
		vars[p.Name] = v
	}

	fb := &funcBuilder{ctx: b.ctx, f: f, cur: entry, vars: vars}
	fb.buildBlock(fn.Body)
	if !terminated(fb.cur) {
		fb.cur.AddInstruction(NewReturn(f, nil))
	}
	return f
}

func typeFromName(name string) Type {
	switch name {
	case "Int":
		return Int
	case "Bool":
		return Bool
	case "Ref":
		return Ref
	default:
		return nil
	}
}

func terminated(b *BasicBlock) bool {
	_, ok := b.LastInstruction().(Terminator)
	return ok
}

func copyVars(m map[string]*Value) map[string]*Value {
	out := make(map[string]*Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func emit(fb *funcBuilder, instr Instruction) *Value {
	fb.cur.AddInstruction(instr)
	return instr.Result()
}

func (fb *funcBuilder) buildBlock(blk *ast.Block) {
	for _, stmt := range blk.Stmts {
		fb.buildStmt(stmt)
	}
}

func (fb *funcBuilder) buildStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		fb.vars[s.Name] = fb.buildExpr(s.Expr)

	case *ast.AssignStmt:
		fb.vars[s.Name] = fb.buildExpr(s.Expr)

	case *ast.IfStmt:
		fb.buildIf(s)

	case *ast.WhileStmt:
		fb.buildWhile(s)

	case *ast.ReturnStmt:
		var v *Value
		if s.Expr != nil {
			v = fb.buildExpr(s.Expr)
		}
		fb.cur.AddInstruction(NewReturn(fb.f, v))

	case *ast.AssertStmt:
		cond := fb.buildExpr(s.Cond)
		fb.cur.AddInstruction(NewAssert(fb.f, cond, s.Message))

	case *ast.ExprStmt:
		fb.buildExpr(s.Expr)
	}
}

// buildIf lowers an if/else into a diamond (or triangle, with no else): cond
// block branches to then/else, each falls through to a shared merge block
// that phis together whatever each reachable branch leaves bound.
func (fb *funcBuilder) buildIf(s *ast.IfStmt) {
	cond := fb.buildExpr(s.Cond)
	entry := fb.cur
	entryVars := fb.vars

	thenBlock := fb.f.CreateBlock("if_then")
	merge := fb.f.CreateBlock("if_merge")

	var elseBlock *BasicBlock
	falseTarget := merge
	if s.Else != nil {
		elseBlock = fb.f.CreateBlock("if_else")
		falseTarget = elseBlock
	}

	entry.AddInstruction(NewIf(fb.f, cond, thenBlock, falseTarget))
	entry.AddSuccessor(thenBlock)
	entry.AddSuccessor(falseTarget)

	type incoming struct {
		block *BasicBlock
		vars  map[string]*Value
	}
	var incomings []incoming

	fb.cur = thenBlock
	fb.vars = copyVars(entryVars)
	fb.buildBlock(s.Then)
	if !terminated(fb.cur) {
		fb.cur.AddInstruction(NewGoto(fb.f, merge))
		fb.cur.AddSuccessor(merge)
		incomings = append(incomings, incoming{fb.cur, fb.vars})
	}

	if s.Else != nil {
		fb.cur = elseBlock
		fb.vars = copyVars(entryVars)
		fb.buildBlock(s.Else)
		if !terminated(fb.cur) {
			fb.cur.AddInstruction(NewGoto(fb.f, merge))
			fb.cur.AddSuccessor(merge)
			incomings = append(incomings, incoming{fb.cur, fb.vars})
		}
	} else {
		// The false edge of entry's If goes straight to merge: entry's own
		// bindings are one of the incoming var maps.
		incomings = append([]incoming{{entry, entryVars}}, incomings...)
	}

	merged := make(map[string]*Value, len(entryVars))
	for name := range entryVars {
		var first *Value
		same := true
		for i, in := range incomings {
			v := in.vars[name]
			if i == 0 {
				first = v
			} else if v != first {
				same = false
			}
		}
		if same || len(incomings) == 1 {
			merged[name] = first
			continue
		}
		phi := NewPhi(fb.f, merge, first.Type)
		merge.AddPhi(phi)
		for _, in := range incomings {
			idx := merge.PredecessorIndex(in.block)
			phi.SetInput(idx, in.vars[name])
		}
		merged[name] = phi.Result()
	}

	fb.cur = merge
	fb.vars = merged
}

// buildWhile lowers a while loop into a top-tested header: a phi per
// loop-carried variable, a suspend check, the condition test, and an If
// branching into the body or out past the loop. FormBottomLoops later turns
// this shape into a bottom-tested one where the gate and header analyzer
// allow it.
func (fb *funcBuilder) buildWhile(s *ast.WhileStmt) {
	entry := fb.cur
	entryVars := fb.vars

	header := fb.f.CreateBlock("while_header")
	body := fb.f.CreateBlock("while_body")
	after := fb.f.CreateBlock("while_exit")

	entry.AddInstruction(NewGoto(fb.f, header))
	entry.AddSuccessor(header)

	headerVars := make(map[string]*Value, len(entryVars))
	phis := make(map[string]*PhiInstruction, len(entryVars))
	for name, v := range entryVars {
		phi := NewPhi(fb.f, header, v.Type)
		header.AddPhi(phi)
		phi.SetInput(header.PredecessorIndex(entry), v)
		headerVars[name] = phi.Result()
		phis[name] = phi
	}

	header.AddInstruction(NewSuspendCheck(fb.f))

	fb.cur = header
	fb.vars = headerVars
	cond := fb.buildExpr(s.Cond)
	header.AddInstruction(NewIf(fb.f, cond, body, after))
	header.AddSuccessor(body)
	header.AddSuccessor(after)

	fb.cur = body
	fb.vars = copyVars(headerVars)
	fb.buildBlock(s.Body)
	if !terminated(fb.cur) {
		fb.cur.AddInstruction(NewGoto(fb.f, header))
		fb.cur.AddSuccessor(header)
		idx := header.PredecessorIndex(fb.cur)
		for name, phi := range phis {
			v, ok := fb.vars[name]
			if !ok {
				v = headerVars[name]
			}
			phi.SetInput(idx, v)
		}
	}

	// A variable the body never reassigns leaves its phi trivial (its only
	// inputs are the entry value and the phi itself); fold those away so
	// only loop-carried variables keep a header phi.
	for name, phi := range phis {
		if v, ok := phi.IsTrivial(); ok {
			replaceAllUses(phi.Result(), v)
			for i := range phi.Inputs {
				phi.SetInput(i, nil)
			}
			header.RemovePhi(phi)
			headerVars[name] = v
		}
	}

	fb.cur = after
	fb.vars = headerVars
}

func (fb *funcBuilder) buildExpr(e ast.Expr) *Value {
	switch ex := e.(type) {
	case *ast.IntLit:
		return emit(fb, NewConstantInt(fb.f, fb.cur, ex.Value))
	case *ast.BoolLit:
		return emit(fb, NewConstantBool(fb.f, fb.cur, ex.Value))
	case *ast.IdentExpr:
		return fb.vars[ex.Name]
	case *ast.UnaryExpr:
		operand := fb.buildExpr(ex.Operand)
		op := OpNeg
		if ex.Operator == "!" {
			op = OpNot
		}
		return emit(fb, NewUnary(fb.f, fb.cur, op, operand))
	case *ast.BinaryExpr:
		left := fb.buildExpr(ex.Left)
		right := fb.buildExpr(ex.Right)
		op, typ := binOpFor(ex.Operator)
		return emit(fb, NewBinary(fb.f, fb.cur, op, left, right, typ))
	case *ast.CallExpr:
		return fb.buildCall(ex)
	}
	return nil
}

func binOpFor(operator string) (BinOp, Type) {
	switch operator {
	case "+":
		return OpAdd, Int
	case "-":
		return OpSub, Int
	case "*":
		return OpMul, Int
	case "/":
		return OpDiv, Int
	case "%":
		return OpMod, Int
	case "==":
		return OpEq, Bool
	case "!=":
		return OpNeq, Bool
	case "<":
		return OpLt, Bool
	case "<=":
		return OpLe, Bool
	case ">":
		return OpGt, Bool
	case ">=":
		return OpGe, Bool
	case "&&":
		return OpAnd, Bool
	case "||":
		return OpOr, Bool
	}
	return OpAdd, Int
}

func (fb *funcBuilder) buildCall(ex *ast.CallExpr) *Value {
	switch ex.Callee {
	case "classOf":
		name := stringArg(ex.Args[0])
		return emit(fb, NewLoadClass(fb.f, fb.cur, name))

	case "instanceOf":
		v := fb.buildExpr(ex.Args[0])
		name := stringArg(ex.Args[1])
		cls := emit(fb, NewLoadClass(fb.f, fb.cur, name))
		return emit(fb, NewInstanceOf(fb.f, fb.cur, v, cls))

	case "print":
		v := fb.buildExpr(ex.Args[0])
		fb.cur.AddInstruction(NewPrint(fb.f, v))
		return nil

	default:
		args := make([]*Value, 0, len(ex.Args))
		for _, a := range ex.Args {
			args = append(args, fb.buildExpr(a))
		}
		sig := fb.ctx.Functions[ex.Callee]
		return emit(fb, NewCall(fb.f, fb.cur, ex.Callee, args, typeFromName(sig.ReturnType)))
	}
}

func stringArg(e ast.Expr) string {
	if lit, ok := e.(*ast.StringLit); ok {
		return lit.Value
	}
	return ""
}
