package ir

import "fmt"

// OptimizationPass represents a single optimization transformation.
type OptimizationPass interface {
	Name() string
	Apply(program *Program) bool // Returns true if changes were made
	Description() string
}

// OptimizationPipeline manages the sequence of optimization passes.
type OptimizationPipeline struct {
	passes []OptimizationPass
	Trace  bool // when true, Run prints a line per pass to stdout
}

// NewOptimizationPipeline creates a pipeline with the default pass order.
// FormBottomLoops runs first so every later pass (constant folding, dead
// code elimination, common subexpression elimination, and any future
// loop-invariant code motion or induction-variable analysis) sees loops in
// their bottom-tested shape.
func NewOptimizationPipeline(stats *Stats) *OptimizationPipeline {
	pipeline := &OptimizationPipeline{}
	pipeline.AddPass(&FormBottomLoopsPass{Stats: stats})
	pipeline.AddPass(&ConstantFolding{})
	pipeline.AddPass(&DeadCodeElimination{})
	pipeline.AddPass(&CommonSubexpressionElimination{})
	return pipeline
}

// AddPass adds an optimization pass to the pipeline.
func (p *OptimizationPipeline) AddPass(pass OptimizationPass) {
	p.passes = append(p.passes, pass)
}

// Run executes all optimization passes on the IR program.
func (p *OptimizationPipeline) Run(program *Program) {
	for _, pass := range p.passes {
		changed := pass.Apply(program)
		if p.Trace {
			status := "no changes"
			if changed {
				status = "applied"
			}
			fmt.Printf("  - %s: %s (%s)\n", pass.Name(), pass.Description(), status)
		}
	}
}

// ConstantFolding evaluates constant expressions at compile time.
type ConstantFolding struct{}

func (cf *ConstantFolding) Name() string { return "Constant Folding" }
func (cf *ConstantFolding) Description() string {
	return "evaluates constant binary expressions and replaces them with literals"
}

func (cf *ConstantFolding) Apply(program *Program) bool {
	changed := false
	for _, fn := range program.Functions {
		if cf.foldFunction(fn) {
			changed = true
		}
	}
	return changed
}

func (cf *ConstantFolding) foldFunction(fn *Function) bool {
	changed := false
	for _, block := range fn.Blocks {
		for _, inst := range block.Instructions {
			if cf.foldInstruction(fn, block, inst) {
				changed = true
			}
		}
	}
	return changed
}

func (cf *ConstantFolding) foldInstruction(fn *Function, block *BasicBlock, inst Instruction) bool {
	bin, ok := inst.(*BinaryInstruction)
	if !ok {
		return false
	}
	lc, lok := bin.Left.DefInstr.(*ConstantInstruction)
	rc, rok := bin.Right.DefInstr.(*ConstantInstruction)
	if !lok || !rok {
		return false
	}
	folded, ok := cf.computeBinaryOp(bin.Op, lc, rc)
	if !ok {
		return false
	}
	var replacement *ConstantInstruction
	if bin.Result().Type == Bool {
		replacement = NewConstantBool(fn, block, folded != 0)
	} else {
		replacement = NewConstantInt(fn, block, folded)
	}
	replaceInstruction(block, inst, replacement)
	replaceAllUses(bin.Result(), replacement.Result())
	return true
}

// computeBinaryOp evaluates op over two constants, returning an int64 where
// boolean results are encoded 0/1 for a single numeric return path.
func (cf *ConstantFolding) computeBinaryOp(op BinOp, l, r *ConstantInstruction) (int64, bool) {
	boolToInt := func(b bool) int64 {
		if b {
			return 1
		}
		return 0
	}
	if l.Result().Type == Bool || r.Result().Type == Bool {
		lb, rb := l.BoolValue, r.BoolValue
		switch op {
		case OpAnd:
			return boolToInt(lb && rb), true
		case OpOr:
			return boolToInt(lb || rb), true
		case OpEq:
			return boolToInt(lb == rb), true
		case OpNeq:
			return boolToInt(lb != rb), true
		}
		return 0, false
	}
	li, ri := l.IntValue, r.IntValue
	switch op {
	case OpAdd:
		return li + ri, true
	case OpSub:
		return li - ri, true
	case OpMul:
		return li * ri, true
	case OpDiv:
		if ri == 0 {
			return 0, false
		}
		return li / ri, true
	case OpEq:
		return boolToInt(li == ri), true
	case OpNeq:
		return boolToInt(li != ri), true
	case OpLt:
		return boolToInt(li < ri), true
	case OpLe:
		return boolToInt(li <= ri), true
	case OpGt:
		return boolToInt(li > ri), true
	case OpGe:
		return boolToInt(li >= ri), true
	}
	return 0, false
}

// DeadCodeElimination removes unreachable blocks and unused pure instructions.
type DeadCodeElimination struct{}

func (dce *DeadCodeElimination) Name() string { return "Dead Code Elimination" }
func (dce *DeadCodeElimination) Description() string {
	return "removes unreachable basic blocks and instructions whose results are never used"
}

func (dce *DeadCodeElimination) Apply(program *Program) bool {
	changed := false
	for _, fn := range program.Functions {
		if dce.eliminateDeadBlocks(fn) {
			changed = true
		}
		if dce.eliminateDeadInstructions(fn) {
			changed = true
		}
	}
	return changed
}

func (dce *DeadCodeElimination) eliminateDeadBlocks(fn *Function) bool {
	if len(fn.Blocks) == 0 {
		return false
	}
	reachable := map[*BasicBlock]bool{}
	dce.markReachable(fn.Blocks[0], reachable)

	kept := fn.Blocks[:0:0]
	changed := false
	for _, b := range fn.Blocks {
		if reachable[b] {
			kept = append(kept, b)
		} else {
			changed = true
		}
	}
	if changed {
		fn.Blocks = kept
		fn.invalidateLoops()
	}
	return changed
}

func (dce *DeadCodeElimination) markReachable(b *BasicBlock, reachable map[*BasicBlock]bool) {
	if reachable[b] {
		return
	}
	reachable[b] = true
	for _, s := range b.Successors {
		dce.markReachable(s, reachable)
	}
}

func (dce *DeadCodeElimination) eliminateDeadInstructions(fn *Function) bool {
	changed := false
	for _, block := range fn.Blocks {
		kept := block.Instructions[:0:0]
		for _, inst := range block.Instructions {
			if dce.shouldKeep(inst) {
				kept = append(kept, inst)
			} else {
				changed = true
			}
		}
		if changed {
			block.Instructions = kept
		}

		keptPhis := block.Phis[:0:0]
		for _, p := range block.Phis {
			if p.Result().HasUses() {
				keptPhis = append(keptPhis, p)
			} else {
				changed = true
			}
		}
		block.Phis = keptPhis
	}
	return changed
}

func (dce *DeadCodeElimination) shouldKeep(inst Instruction) bool {
	if inst.IsControlFlow() || inst.CanThrow() {
		return true
	}
	r := inst.Result()
	if r == nil {
		return true // e.g. print, which has no result but is observable
	}
	return r.HasUses()
}

// CommonSubexpressionElimination removes redundant computations within a
// single basic block: two structurally identical, side-effect-free
// instructions computing the same inputs are collapsed to one.
type CommonSubexpressionElimination struct{}

func (cse *CommonSubexpressionElimination) Name() string { return "Common Subexpression Elimination" }
func (cse *CommonSubexpressionElimination) Description() string {
	return "eliminates redundant pure computations within a basic block"
}

func (cse *CommonSubexpressionElimination) Apply(program *Program) bool {
	changed := false
	for _, fn := range program.Functions {
		for _, block := range fn.Blocks {
			if cse.optimizeBlock(block) {
				changed = true
			}
		}
	}
	return changed
}

type cseKey struct {
	kind        string
	left, right *Value
}

func (cse *CommonSubexpressionElimination) optimizeBlock(block *BasicBlock) bool {
	changed := false
	seen := map[cseKey]*Value{}

	kept := block.Instructions[:0:0]
	for _, inst := range block.Instructions {
		if key, ok := cseKeyOf(inst); ok {
			if existing, found := seen[key]; found {
				replaceAllUses(inst.Result(), existing)
				changed = true
				continue
			}
			seen[key] = inst.Result()
		}
		kept = append(kept, inst)
	}
	if changed {
		block.Instructions = kept
	}
	return changed
}

// cseKeyOf returns a structural key for instructions safe to deduplicate:
// pure, non-throwing, single-result computations. Calls, prints, asserts
// and anything that can throw are excluded since repeating them changes
// observable behavior.
func cseKeyOf(inst Instruction) (cseKey, bool) {
	if inst.CanThrow() || inst.IsControlFlow() || inst.Result() == nil {
		return cseKey{}, false
	}
	switch i := inst.(type) {
	case *BinaryInstruction:
		return cseKey{kind: "bin:" + i.Op.String(), left: i.Left, right: i.Right}, true
	case *UnaryInstruction:
		return cseKey{kind: "un:" + i.Op.String(), left: i.Operand}, true
	case *LoadClassInstruction:
		return cseKey{kind: "loadclass:" + i.ClassName}, true
	case *InstanceOfInstruction:
		return cseKey{kind: "instanceof", left: i.Value, right: i.Class}, true
	}
	return cseKey{}, false
}

// replaceInstruction swaps old for new at the same position in block, so
// call sites that capture a position (e.g. "fold the Nth instruction") stay
// valid.
func replaceInstruction(block *BasicBlock, old, new Instruction) {
	for i, inst := range block.Instructions {
		if inst == old {
			new.setBlock(block)
			block.Instructions[i] = new
			return
		}
	}
}

// replaceAllUses rewrites every value and environment use of old to new,
// the whole-function counterpart of Instruction.ReplaceOperand.
func replaceAllUses(old, new *Value) {
	if old == new {
		return
	}
	for _, user := range old.Uses() {
		user.ReplaceOperand(old, new)
	}
	for _, env := range old.EnvUses() {
		env.ReplaceSlot(old, new)
	}
}
