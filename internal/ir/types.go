package ir

import "fmt"

// IR types and structures for a small SSA-form compiler.
//
// The IR is organized as Program -> Function -> BasicBlock -> Instruction,
// in Static Single Assignment form: every Value has exactly one defining
// instruction (or is a Phi, which merges definitions from predecessors).

// Program is the whole compilation unit: every function the front end lowered.
type Program struct {
	Functions []*Function
}

// Function is a single function's CFG plus SSA instructions. It plays the
// role of the optimizer's "Graph": it owns block/instruction/value id
// allocation and the function's loop forest, and it is the unit of
// single-threaded ownership an optimization pass runs against.
type Function struct {
	Name       string
	Params     []*Param
	ReturnType Type
	Blocks     []*BasicBlock // program order; Blocks[0] is the entry block

	nextValueID int
	nextBlockID int
	nextInstrID int

	stats     *Stats
	loops     []*Loop
	loopsOK   bool // cached loop forest is valid until the CFG is mutated
	dom       *Dominance
	domsValid bool
}

// Param is a function parameter.
type Param struct {
	Name  string
	Type  Type
	Value *Value
}

// NewFunction creates an empty function owning its own id allocator and stats.
func NewFunction(name string, stats *Stats) *Function {
	return &Function{Name: name, stats: stats}
}

func (f *Function) Stats() *Stats { return f.stats }

// NextValueID, NextBlockID and NextInstructionID hand out fresh, monotonic
// ids from the function's arena. The pass never allocates ids itself.
func (f *Function) NextValueID() int {
	f.nextValueID++
	return f.nextValueID
}

func (f *Function) NextBlockID() int {
	f.nextBlockID++
	return f.nextBlockID
}

func (f *Function) NextInstructionID() int {
	f.nextInstrID++
	return f.nextInstrID
}

// NewValue allocates a fresh SSA value defined by instr in block.
func (f *Function) NewValue(name string, typ Type, block *BasicBlock, instr Instruction) *Value {
	return &Value{ID: f.NextValueID(), Name: name, Type: typ, DefBlock: block, DefInstr: instr}
}

// CreateBlock allocates a new block and appends it to the function.
// It is not wired into any predecessor/successor list; the caller does that.
func (f *Function) CreateBlock(label string) *BasicBlock {
	b := &BasicBlock{ID: f.NextBlockID(), Label: label, Func: f}
	f.Blocks = append(f.Blocks, b)
	f.invalidateLoops()
	return b
}

func (f *Function) invalidateLoops() {
	f.loopsOK = false
	f.domsValid = false
}

// BasicBlock is a maximal straight-line sequence of instructions. Per spec,
// the last instruction in Instructions is always the block's terminator
// (an *IfInstruction, *GotoInstruction or *ReturnInstruction); Phis are kept
// separate since they are conceptually parallel assignments at block entry.
type BasicBlock struct {
	ID           int
	Label        string
	Func         *Function
	Phis         []*PhiInstruction
	Instructions []Instruction
	Predecessors []*BasicBlock
	Successors   []*BasicBlock

	Loop *Loop // innermost loop this block is a member of, or nil
}

func (b *BasicBlock) String() string { return fmt.Sprintf("%s(%d)", b.Label, b.ID) }

// LastInstruction returns the block's terminator, or nil for an empty block.
func (b *BasicBlock) LastInstruction() Instruction {
	if len(b.Instructions) == 0 {
		return nil
	}
	return b.Instructions[len(b.Instructions)-1]
}

// FirstInstruction returns the block's first non-phi instruction, or nil.
func (b *BasicBlock) FirstInstruction() Instruction {
	if len(b.Instructions) == 0 {
		return nil
	}
	return b.Instructions[0]
}

// AddInstruction appends instr to the block's instruction list and marks it
// as belonging to b. Callers are responsible for keeping terminators last.
func (b *BasicBlock) AddInstruction(instr Instruction) {
	instr.setBlock(b)
	if r := instr.Result(); r != nil {
		r.DefBlock = b
	}
	b.Instructions = append(b.Instructions, instr)
}

// InsertInstructionBefore inserts instr immediately before other (move_before
// semantics: other keeps its position, instr is spliced in ahead of it).
func (b *BasicBlock) InsertInstructionBefore(instr, other Instruction) {
	instr.setBlock(b)
	for i, existing := range b.Instructions {
		if existing == other {
			b.Instructions = append(b.Instructions[:i], append([]Instruction{instr}, b.Instructions[i:]...)...)
			return
		}
	}
	// other not found in this block: treat as prepend, matching move_before's
	// use in this pass (moving the suspend check to the very front of F).
	b.Instructions = append([]Instruction{instr}, b.Instructions...)
}

// RemoveInstruction deletes instr from the block's instruction list.
func (b *BasicBlock) RemoveInstruction(instr Instruction) {
	for i, existing := range b.Instructions {
		if existing == instr {
			b.Instructions = append(b.Instructions[:i], b.Instructions[i+1:]...)
			return
		}
	}
}

// AddPhi appends a phi to the block's phi list.
func (b *BasicBlock) AddPhi(p *PhiInstruction) {
	p.setBlock(b)
	if r := p.Result(); r != nil {
		r.DefBlock = b
	}
	b.Phis = append(b.Phis, p)
}

// RemovePhi deletes p from the block's phi list.
func (b *BasicBlock) RemovePhi(p *PhiInstruction) {
	for i, existing := range b.Phis {
		if existing == p {
			b.Phis = append(b.Phis[:i], b.Phis[i+1:]...)
			return
		}
	}
}

// ReplaceSuccessor rewires the edge b->old into b->new, in place, preserving
// successor order (so the true/false branch shape of an If is preserved).
func (b *BasicBlock) ReplaceSuccessor(old, new *BasicBlock) {
	for i, s := range b.Successors {
		if s == old {
			b.Successors[i] = new
		}
	}
	old.removePredecessor(b)
	new.addPredecessor(b)
	if term, ok := b.LastInstruction().(Terminator); ok {
		term.replaceSuccessor(old, new)
	}
	b.Func.invalidateLoops()
}

// AddSuccessor adds a new successor edge b->s.
func (b *BasicBlock) AddSuccessor(s *BasicBlock) {
	b.Successors = append(b.Successors, s)
	s.addPredecessor(b)
	b.Func.invalidateLoops()
}

func (b *BasicBlock) addPredecessor(p *BasicBlock) {
	b.Predecessors = append(b.Predecessors, p)
}

func (b *BasicBlock) removePredecessor(p *BasicBlock) {
	for i, existing := range b.Predecessors {
		if existing == p {
			b.Predecessors = append(b.Predecessors[:i], b.Predecessors[i+1:]...)
			return
		}
	}
}

// PredecessorIndex returns the index of pred in b's predecessor list, or -1.
func (b *BasicBlock) PredecessorIndex(pred *BasicBlock) int {
	for i, p := range b.Predecessors {
		if p == pred {
			return i
		}
	}
	return -1
}

// Value is an SSA value: exactly one definition, any number of uses.
type Value struct {
	ID       int
	Name     string
	Type     Type
	DefBlock *BasicBlock
	DefInstr Instruction // nil for parameters

	uses    []Instruction  // instructions referencing this value as an operand
	envUses []*Environment // environments referencing this value in a slot
}

func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	if v.Name != "" {
		return v.Name
	}
	return fmt.Sprintf("v%d", v.ID)
}

// Uses returns a snapshot of the instructions currently using v as an operand.
// Safe to range over while mutating v's use list (e.g. via ReplaceOperand).
func (v *Value) Uses() []Instruction {
	out := make([]Instruction, len(v.uses))
	copy(out, v.uses)
	return out
}

// EnvUses returns a snapshot of the environments referencing v.
func (v *Value) EnvUses() []*Environment {
	out := make([]*Environment, len(v.envUses))
	copy(out, v.envUses)
	return out
}

// HasUses reports whether v is used anywhere, value or environment.
func (v *Value) HasUses() bool { return len(v.uses) > 0 || len(v.envUses) > 0 }

func (v *Value) addUse(instr Instruction) {
	if v == nil {
		return
	}
	v.uses = append(v.uses, instr)
}

func (v *Value) removeUse(instr Instruction) {
	if v == nil {
		return
	}
	for i, u := range v.uses {
		if u == instr {
			v.uses = append(v.uses[:i], v.uses[i+1:]...)
			return
		}
	}
}

func (v *Value) addEnvUse(e *Environment) {
	if v == nil {
		return
	}
	v.envUses = append(v.envUses, e)
}

func (v *Value) removeEnvUse(e *Environment) {
	if v == nil {
		return
	}
	for i, u := range v.envUses {
		if u == e {
			v.envUses = append(v.envUses[:i], v.envUses[i+1:]...)
			return
		}
	}
}

// rewireUse moves instr's registration on the use lists of old and new. It
// is called once per ReplaceOperand, after the concrete fields are updated.
func rewireUse(instr Instruction, old, new *Value) {
	if old == new {
		return
	}
	old.removeUse(instr)
	new.addUse(instr)
}

// Types

type Type interface {
	String() string
}

type IntType struct{ Bits int }
type BoolType struct{}

// RefType is an opaque reference type ("class handle"). Values of this type
// are produced by LoadClass and compared with InstanceOf.
type RefType struct{}

func (i *IntType) String() string  { return fmt.Sprintf("I%d", i.Bits) }
func (b *BoolType) String() string { return "Bool" }
func (r *RefType) String() string  { return "Ref" }

var (
	Int  Type = &IntType{Bits: 64}
	Bool Type = &BoolType{}
	Ref  Type = &RefType{}
)
