package ir

import "fmt"

// Instruction is satisfied by every IR node that can live in a block's
// instruction list. Terminators additionally satisfy Terminator.
//
// The capability predicates (CanThrow, IsControlFlow, Clonable) give passes
// a narrow surface to query instead of type-switching on every kind; they
// are consulted by FormBottomLoops's header analyzer and by the dead code
// and common subexpression elimination passes.
type Instruction interface {
	ID() int
	Result() *Value   // nil if the instruction produces no value
	Operands() []*Value
	ReplaceOperand(old, new *Value)
	Env() *Environment // nil if none attached
	Block() *BasicBlock
	setBlock(*BasicBlock)
	CanThrow() bool
	IsControlFlow() bool
	Clonable() bool
	// Clone returns a shallow copy with a fresh id and no block assigned.
	// Operands and the Result's type are copied; the Result itself is a
	// fresh Value so the clone stays in SSA form. No environment is
	// attached to the clone.
	Clone(f *Function) Instruction
	String() string
}

// Terminator is the subset of Instruction that ends a block and defines
// control-flow edges.
type Terminator interface {
	Instruction
	Successors() []*BasicBlock
	replaceSuccessor(old, new *BasicBlock)
}

type instrBase struct {
	id     int
	block  *BasicBlock
	result *Value
	env    *Environment
}

func (i *instrBase) ID() int             { return i.id }
func (i *instrBase) Result() *Value      { return i.result }
func (i *instrBase) Block() *BasicBlock  { return i.block }
func (i *instrBase) setBlock(b *BasicBlock) { i.block = b }
func (i *instrBase) Env() *Environment   { return i.env }
func (i *instrBase) CanThrow() bool      { return false }
func (i *instrBase) IsControlFlow() bool { return false }
func (i *instrBase) Clonable() bool      { return true }

// SetEnv attaches (or replaces) an environment, maintaining the
// environment's back-reference to its owning instruction.
func setEnv(i Instruction, base *instrBase, env *Environment) {
	base.env = env
	if env != nil {
		env.owner = i
	}
}

// ConstantInstruction materializes a compile-time constant.
type ConstantInstruction struct {
	instrBase
	IntValue  int64
	BoolValue bool
}

func NewConstantInt(f *Function, b *BasicBlock, v int64) *ConstantInstruction {
	c := &ConstantInstruction{instrBase: instrBase{id: f.NextInstructionID()}, IntValue: v}
	c.result = f.NewValue("", Int, b, c)
	return c
}

func NewConstantBool(f *Function, b *BasicBlock, v bool) *ConstantInstruction {
	c := &ConstantInstruction{instrBase: instrBase{id: f.NextInstructionID()}, BoolValue: v}
	c.result = f.NewValue("", Bool, b, c)
	return c
}

func (c *ConstantInstruction) Operands() []*Value          { return nil }
func (c *ConstantInstruction) ReplaceOperand(*Value, *Value) {}
func (c *ConstantInstruction) Clone(f *Function) Instruction {
	clone := &ConstantInstruction{instrBase: instrBase{id: f.NextInstructionID()}, IntValue: c.IntValue, BoolValue: c.BoolValue}
	clone.result = f.NewValue(c.result.Name, c.result.Type, nil, clone)
	return clone
}
func (c *ConstantInstruction) String() string {
	if c.result.Type == Bool {
		return fmt.Sprintf("%s = const %v", c.result, c.BoolValue)
	}
	return fmt.Sprintf("%s = const %d", c.result, c.IntValue)
}

// BinOp enumerates arithmetic/comparison/logical binary operators.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpMod
	OpAnd
	OpOr
)

func (op BinOp) String() string {
	return [...]string{"add", "sub", "mul", "div", "eq", "neq", "lt", "le", "gt", "ge", "mod", "and", "or"}[op]
}

// BinaryInstruction is a two-operand arithmetic, comparison or logical op.
type BinaryInstruction struct {
	instrBase
	Op          BinOp
	Left, Right *Value
}

func NewBinary(f *Function, b *BasicBlock, op BinOp, left, right *Value, typ Type) *BinaryInstruction {
	bi := &BinaryInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Op: op, Left: left, Right: right}
	bi.result = f.NewValue("", typ, b, bi)
	left.addUse(bi)
	right.addUse(bi)
	return bi
}

func (bi *BinaryInstruction) Operands() []*Value { return []*Value{bi.Left, bi.Right} }
func (bi *BinaryInstruction) ReplaceOperand(old, new *Value) {
	changed := false
	if bi.Left == old {
		bi.Left = new
		changed = true
	}
	if bi.Right == old {
		bi.Right = new
		changed = true
	}
	if changed {
		rewireUse(bi, old, new)
	}
}
func (bi *BinaryInstruction) Clone(f *Function) Instruction {
	clone := &BinaryInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Op: bi.Op, Left: bi.Left, Right: bi.Right}
	clone.result = f.NewValue(bi.result.Name, bi.result.Type, nil, clone)
	bi.Left.addUse(clone)
	bi.Right.addUse(clone)
	return clone
}
func (bi *BinaryInstruction) String() string {
	return fmt.Sprintf("%s = %s %s, %s", bi.result, bi.Op, bi.Left, bi.Right)
}

// UnOp enumerates unary operators.
type UnOp int

const (
	OpNeg UnOp = iota
	OpNot
)

func (op UnOp) String() string { return [...]string{"neg", "not"}[op] }

// UnaryInstruction is a one-operand arithmetic/logical op.
type UnaryInstruction struct {
	instrBase
	Op      UnOp
	Operand *Value
}

func NewUnary(f *Function, b *BasicBlock, op UnOp, operand *Value) *UnaryInstruction {
	u := &UnaryInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Op: op, Operand: operand}
	u.result = f.NewValue("", operand.Type, b, u)
	operand.addUse(u)
	return u
}

func (u *UnaryInstruction) Operands() []*Value { return []*Value{u.Operand} }
func (u *UnaryInstruction) ReplaceOperand(old, new *Value) {
	if u.Operand == old {
		u.Operand = new
		rewireUse(u, old, new)
	}
}
func (u *UnaryInstruction) Clone(f *Function) Instruction {
	clone := &UnaryInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Op: u.Op, Operand: u.Operand}
	clone.result = f.NewValue(u.result.Name, u.result.Type, nil, clone)
	u.Operand.addUse(clone)
	return clone
}
func (u *UnaryInstruction) String() string { return fmt.Sprintf("%s = %s %s", u.result, u.Op, u.Operand) }

// CallInstruction calls a named function with a fixed argument list.
type CallInstruction struct {
	instrBase
	Callee string
	Args   []*Value
}

func NewCall(f *Function, b *BasicBlock, callee string, args []*Value, resultType Type) *CallInstruction {
	c := &CallInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Callee: callee, Args: args}
	if resultType != nil {
		c.result = f.NewValue("", resultType, b, c)
	}
	for _, a := range args {
		a.addUse(c)
	}
	return c
}

func (c *CallInstruction) Operands() []*Value { return c.Args }
func (c *CallInstruction) ReplaceOperand(old, new *Value) {
	changed := false
	for i, a := range c.Args {
		if a == old {
			c.Args[i] = new
			changed = true
		}
	}
	if changed {
		rewireUse(c, old, new)
	}
}
func (c *CallInstruction) CanThrow() bool { return true }
func (c *CallInstruction) Clonable() bool { return true }
func (c *CallInstruction) Clone(f *Function) Instruction {
	args := make([]*Value, len(c.Args))
	copy(args, c.Args)
	clone := &CallInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Callee: c.Callee, Args: args}
	if c.result != nil {
		clone.result = f.NewValue(c.result.Name, c.result.Type, nil, clone)
	}
	for _, a := range args {
		a.addUse(clone)
	}
	return clone
}
func (c *CallInstruction) String() string {
	if c.result != nil {
		return fmt.Sprintf("%s = call %s(%s)", c.result, c.Callee, joinValues(c.Args))
	}
	return fmt.Sprintf("call %s(%s)", c.Callee, joinValues(c.Args))
}

// PrintInstruction prints a value, an observable side effect. It keeps the
// default Clonable() of true, so the header analyzer accepts a header that
// carries one.
type PrintInstruction struct {
	instrBase
	Value *Value
}

func NewPrint(f *Function, v *Value) *PrintInstruction {
	p := &PrintInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Value: v}
	v.addUse(p)
	return p
}

func (p *PrintInstruction) Operands() []*Value { return []*Value{p.Value} }
func (p *PrintInstruction) ReplaceOperand(old, new *Value) {
	if p.Value == old {
		p.Value = new
		rewireUse(p, old, new)
	}
}
func (p *PrintInstruction) CanThrow() bool { return false }
func (p *PrintInstruction) Clone(f *Function) Instruction {
	clone := &PrintInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Value: p.Value}
	p.Value.addUse(clone)
	return clone
}
func (p *PrintInstruction) String() string { return fmt.Sprintf("print %s", p.Value) }

// AssertInstruction aborts the program if Value is false. It can throw and
// keeps the default Clonable() of true; the header analyzer refuses only
// non-throwing control flow and non-clonable instructions, so it accepts a
// header carrying one.
type AssertInstruction struct {
	instrBase
	Value   *Value
	Message string
}

func NewAssert(f *Function, v *Value, msg string) *AssertInstruction {
	a := &AssertInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Value: v, Message: msg}
	v.addUse(a)
	return a
}

func (a *AssertInstruction) Operands() []*Value { return []*Value{a.Value} }
func (a *AssertInstruction) ReplaceOperand(old, new *Value) {
	if a.Value == old {
		a.Value = new
		rewireUse(a, old, new)
	}
}
func (a *AssertInstruction) CanThrow() bool { return true }
func (a *AssertInstruction) Clone(f *Function) Instruction {
	clone := &AssertInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Value: a.Value, Message: a.Message}
	a.Value.addUse(clone)
	return clone
}
func (a *AssertInstruction) String() string { return fmt.Sprintf("assert %s, %q", a.Value, a.Message) }

// LoadClassInstruction loads the runtime tag for a declared class by name.
// It is idempotent and side-effect free once the class is known to be
// resolvable, which is what makes it safe for SSA repair to special-case:
// the header's LoadClass is reused as-is instead of being cloned into the
// back edge (spec §4.5.1).
type LoadClassInstruction struct {
	instrBase
	ClassName string
}

func NewLoadClass(f *Function, b *BasicBlock, name string) *LoadClassInstruction {
	lc := &LoadClassInstruction{instrBase: instrBase{id: f.NextInstructionID()}, ClassName: name}
	lc.result = f.NewValue("", Ref, b, lc)
	return lc
}

func (lc *LoadClassInstruction) Operands() []*Value           { return nil }
func (lc *LoadClassInstruction) ReplaceOperand(*Value, *Value) {}
func (lc *LoadClassInstruction) CanThrow() bool                { return false }
func (lc *LoadClassInstruction) Clone(f *Function) Instruction {
	clone := &LoadClassInstruction{instrBase: instrBase{id: f.NextInstructionID()}, ClassName: lc.ClassName}
	clone.result = f.NewValue(lc.result.Name, lc.result.Type, nil, clone)
	return clone
}
func (lc *LoadClassInstruction) String() string { return fmt.Sprintf("%s = load_class %q", lc.result, lc.ClassName) }

// InstanceOfInstruction tests whether a Ref value carries the given class's
// runtime tag.
type InstanceOfInstruction struct {
	instrBase
	Value *Value
	Class *Value // operand of LoadClass (or any Ref-typed value)
}

func NewInstanceOf(f *Function, b *BasicBlock, v, class *Value) *InstanceOfInstruction {
	io := &InstanceOfInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Value: v, Class: class}
	io.result = f.NewValue("", Bool, b, io)
	v.addUse(io)
	class.addUse(io)
	return io
}

func (io *InstanceOfInstruction) Operands() []*Value { return []*Value{io.Value, io.Class} }
func (io *InstanceOfInstruction) ReplaceOperand(old, new *Value) {
	changed := false
	if io.Value == old {
		io.Value = new
		changed = true
	}
	if io.Class == old {
		io.Class = new
		changed = true
	}
	if changed {
		rewireUse(io, old, new)
	}
}
func (io *InstanceOfInstruction) Clone(f *Function) Instruction {
	clone := &InstanceOfInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Value: io.Value, Class: io.Class}
	clone.result = f.NewValue(io.result.Name, io.result.Type, nil, clone)
	io.Value.addUse(clone)
	io.Class.addUse(clone)
	return clone
}
func (io *InstanceOfInstruction) String() string {
	return fmt.Sprintf("%s = instance_of %s, %s", io.result, io.Value, io.Class)
}

// SuspendCheckInstruction is a cooperative preemption poll. Every loop
// header carries exactly one; FormBottomLoops relocates it to the front of
// the loop's first body block, which becomes the new header (spec §4.4
// step 1).
type SuspendCheckInstruction struct {
	instrBase
}

func NewSuspendCheck(f *Function) *SuspendCheckInstruction {
	return &SuspendCheckInstruction{instrBase: instrBase{id: f.NextInstructionID()}}
}

func (s *SuspendCheckInstruction) Operands() []*Value           { return nil }
func (s *SuspendCheckInstruction) ReplaceOperand(*Value, *Value) {}
func (s *SuspendCheckInstruction) CanThrow() bool                { return false }
func (s *SuspendCheckInstruction) Clonable() bool                { return false }
func (s *SuspendCheckInstruction) Clone(f *Function) Instruction {
	return &SuspendCheckInstruction{instrBase: instrBase{id: f.NextInstructionID()}}
}
func (s *SuspendCheckInstruction) String() string { return "suspend_check" }

func joinValues(vs []*Value) string {
	s := ""
	for i, v := range vs {
		if i > 0 {
			s += ", "
		}
		s += v.String()
	}
	return s
}
