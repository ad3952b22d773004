package ir

// headerAnalyzerAccepts walks a candidate loop header's instructions in
// program order to check it is clonable and self-contained, then checks its
// phis for a mutual-cycle configuration the repair step cannot untangle.
func headerAnalyzerAccepts(h *BasicBlock) bool {
	cloner := NewDryRunCloner()
	for _, instr := range h.Instructions {
		switch instr.(type) {
		case *SuspendCheckInstruction, *IfInstruction:
			continue
		}
		if instr.IsControlFlow() && !instr.CanThrow() {
			return false
		}
		cloner.Visit(instr)
	}
	if !cloner.AllOkay() {
		return false
	}
	return !headerHasPhiCycle(h)
}

// headerHasPhiCycle reports whether the header's phis contain a mutual
// reference cycle. A phi is "cycled" here iff it has exactly two inputs and
// its second input is another phi of the same header. The loop is only
// rejected if, across all header phis, both a forward reference (to a phi
// not yet seen in iteration order) and a backward reference (to one already
// seen) are observed: either alone can be materialized by the repair step,
// but both together means at least one true mutual cycle exists.
func headerHasPhiCycle(h *BasicBlock) bool {
	seen := make(map[*PhiInstruction]bool, len(h.Phis))
	var forward, backward bool
	for _, p := range h.Phis {
		if len(p.Inputs) == 2 {
			if second := p.Inputs[1]; second != nil {
				if sp, ok := second.DefInstr.(*PhiInstruction); ok && sp.Block() == h {
					if seen[sp] {
						backward = true
					} else {
						forward = true
					}
				}
			}
		}
		seen[p] = true
	}
	return forward && backward
}
