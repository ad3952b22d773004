package ir

import "fmt"

// GotoInstruction is an unconditional jump; the classic shape of a loop's
// back edge and of the splice blocks the CFG rewriter inserts.
type GotoInstruction struct {
	instrBase
	Target *BasicBlock
}

func NewGoto(f *Function, target *BasicBlock) *GotoInstruction {
	return &GotoInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Target: target}
}

func (g *GotoInstruction) Operands() []*Value            { return nil }
func (g *GotoInstruction) ReplaceOperand(*Value, *Value) {}
func (g *GotoInstruction) IsControlFlow() bool           { return true }
func (g *GotoInstruction) Clonable() bool                { return false }
func (g *GotoInstruction) Clone(f *Function) Instruction {
	return &GotoInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Target: g.Target}
}
func (g *GotoInstruction) String() string    { return fmt.Sprintf("goto %s", g.Target) }
func (g *GotoInstruction) Successors() []*BasicBlock { return []*BasicBlock{g.Target} }
func (g *GotoInstruction) replaceSuccessor(old, new *BasicBlock) {
	if g.Target == old {
		g.Target = new
	}
}

// IfInstruction is a two-way conditional branch: the shape of every loop
// header this pass rewrites.
type IfInstruction struct {
	instrBase
	Cond              *Value
	IfTrue, IfFalse   *BasicBlock
}

func NewIf(f *Function, cond *Value, ifTrue, ifFalse *BasicBlock) *IfInstruction {
	i := &IfInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse}
	cond.addUse(i)
	return i
}

func (i *IfInstruction) Operands() []*Value { return []*Value{i.Cond} }
func (i *IfInstruction) ReplaceOperand(old, new *Value) {
	if i.Cond == old {
		i.Cond = new
		rewireUse(i, old, new)
	}
}
func (i *IfInstruction) IsControlFlow() bool { return true }
func (i *IfInstruction) Clonable() bool      { return true }
func (i *IfInstruction) Clone(f *Function) Instruction {
	clone := &IfInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Cond: i.Cond, IfTrue: i.IfTrue, IfFalse: i.IfFalse}
	i.Cond.addUse(clone)
	return clone
}
func (i *IfInstruction) String() string {
	return fmt.Sprintf("if %s then %s else %s", i.Cond, i.IfTrue, i.IfFalse)
}
func (i *IfInstruction) Successors() []*BasicBlock { return []*BasicBlock{i.IfTrue, i.IfFalse} }
func (i *IfInstruction) replaceSuccessor(old, new *BasicBlock) {
	if i.IfTrue == old {
		i.IfTrue = new
	}
	if i.IfFalse == old {
		i.IfFalse = new
	}
}

// ReturnInstruction ends a function, optionally carrying a value.
type ReturnInstruction struct {
	instrBase
	Value *Value // nil for a bare `return;`
}

func NewReturn(f *Function, v *Value) *ReturnInstruction {
	r := &ReturnInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Value: v}
	v.addUse(r)
	return r
}

func (r *ReturnInstruction) Operands() []*Value {
	if r.Value == nil {
		return nil
	}
	return []*Value{r.Value}
}
func (r *ReturnInstruction) ReplaceOperand(old, new *Value) {
	if r.Value == old {
		r.Value = new
		rewireUse(r, old, new)
	}
}
func (r *ReturnInstruction) IsControlFlow() bool { return true }
func (r *ReturnInstruction) Clonable() bool      { return false }
func (r *ReturnInstruction) Clone(f *Function) Instruction {
	clone := &ReturnInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Value: r.Value}
	if r.Value != nil {
		r.Value.addUse(clone)
	}
	return clone
}
func (r *ReturnInstruction) String() string {
	if r.Value == nil {
		return "return"
	}
	return fmt.Sprintf("return %s", r.Value)
}
func (r *ReturnInstruction) Successors() []*BasicBlock         { return nil }
func (r *ReturnInstruction) replaceSuccessor(old, new *BasicBlock) {}

// PhiInstruction merges one value per predecessor edge. Inputs are kept in
// the same order as Block.Predecessors so that a block with exactly two
// predecessors has a well-defined "other input" for the interlace fixup the
// SSA repair step performs (spec §4.5.3).
type PhiInstruction struct {
	instrBase
	Inputs []*Value // Inputs[i] corresponds to Block().Predecessors[i]
}

func NewPhi(f *Function, b *BasicBlock, typ Type) *PhiInstruction {
	p := &PhiInstruction{instrBase: instrBase{id: f.NextInstructionID()}}
	p.result = f.NewValue("", typ, b, p)
	return p
}

func (p *PhiInstruction) Operands() []*Value { return p.Inputs }
func (p *PhiInstruction) ReplaceOperand(old, new *Value) {
	changed := false
	for i, in := range p.Inputs {
		if in == old {
			p.Inputs[i] = new
			changed = true
		}
	}
	if changed {
		rewireUse(p, old, new)
	}
}
func (p *PhiInstruction) Clonable() bool { return false }
func (p *PhiInstruction) Clone(f *Function) Instruction {
	inputs := make([]*Value, len(p.Inputs))
	copy(inputs, p.Inputs)
	clone := &PhiInstruction{instrBase: instrBase{id: f.NextInstructionID()}, Inputs: inputs}
	clone.result = f.NewValue(p.result.Name, p.result.Type, nil, clone)
	for _, in := range inputs {
		in.addUse(clone)
	}
	return clone
}
func (p *PhiInstruction) String() string { return fmt.Sprintf("%s = phi(%s)", p.result, joinValues(p.Inputs)) }

// SetInput sets (or appends, if idx is out of range) the input corresponding
// to predecessor index idx, maintaining use bookkeeping.
func (p *PhiInstruction) SetInput(idx int, v *Value) {
	for len(p.Inputs) <= idx {
		p.Inputs = append(p.Inputs, nil)
	}
	old := p.Inputs[idx]
	p.Inputs[idx] = v
	if old != nil {
		old.removeUse(p)
	}
	if v != nil {
		v.addUse(p)
	}
}

// AppendInput appends a new predecessor's input for a predecessor edge added
// to the phi's block after the phi was built.
func (p *PhiInstruction) AppendInput(v *Value) {
	p.Inputs = append(p.Inputs, v)
	v.addUse(p)
}

// InputFrom returns the input corresponding to predecessor pred, if pred is
// found in the owning block's predecessor list.
func (p *PhiInstruction) InputFrom(pred *BasicBlock) (*Value, bool) {
	idx := p.Block().PredecessorIndex(pred)
	if idx < 0 || idx >= len(p.Inputs) {
		return nil, false
	}
	return p.Inputs[idx], true
}

// IsTrivial reports whether every non-self input is the same value, meaning
// the phi can be replaced by that value (classic Braun-SSA trivial-phi
// collapse, used by the IR builder to drop while-header phis of variables
// the loop body never reassigns).
func (p *PhiInstruction) IsTrivial() (*Value, bool) {
	var same *Value
	for _, in := range p.Inputs {
		if in == nil || in == p.result {
			continue
		}
		if same != nil && same != in {
			return nil, false
		}
		same = in
	}
	return same, same != nil
}
