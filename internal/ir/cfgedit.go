package ir

// Low-level edge wiring used by the CFG rewriter while a block's terminator
// is in flux (e.g. the back edge's Goto has been removed but its replacement
// If has not been cloned in yet). BasicBlock.ReplaceSuccessor keeps a
// block's terminator instruction in sync and is the right tool once a block
// has a stable terminator; these two do not, and exist only for the narrow
// window the rewriter needs them.
func wireEdge(pred, succ *BasicBlock) {
	pred.Successors = append(pred.Successors, succ)
	succ.Predecessors = append(succ.Predecessors, pred)
	pred.Func.invalidateLoops()
}

func unwireEdge(pred, succ *BasicBlock) {
	for i, s := range pred.Successors {
		if s == succ {
			pred.Successors = append(pred.Successors[:i], pred.Successors[i+1:]...)
			break
		}
	}
	succ.removePredecessor(pred)
	pred.Func.invalidateLoops()
}

// spliceBlock inserts a fresh single-Goto block onto the edge pred->succ and
// returns it, registering it with owner (and owner's enclosing loops) if
// owner is non-nil. Used to keep an edge from becoming critical.
func spliceBlock(f *Function, pred, succ *BasicBlock, owner *Loop, label string) *BasicBlock {
	blk := f.CreateBlock(label)
	unwireEdge(pred, succ)
	wireEdge(pred, blk)
	wireEdge(blk, succ)
	if pt, ok := pred.LastInstruction().(Terminator); ok {
		pt.replaceSuccessor(succ, blk)
	}
	g := NewGoto(f, succ)
	blk.AddInstruction(g)
	if owner != nil {
		owner.AddToAll(blk)
	}
	blk.Loop = owner
	return blk
}

// retargetTerminator overwrites block's successor/predecessor bookkeeping to
// exactly match term's own successor list, used once a block's real
// terminator (e.g. a cloned If) has been installed after a period where the
// block's edges were tracked only at the BasicBlock level.
func retargetTerminator(block *BasicBlock, term Terminator) {
	for _, old := range block.Successors {
		old.removePredecessor(block)
	}
	block.Successors = nil
	for _, s := range term.Successors() {
		block.Successors = append(block.Successors, s)
		s.addPredecessor(block)
	}
	block.Func.invalidateLoops()
}
