package ir

// repairState holds the per-loop memo tables the SSA repair step needs.
// Every map is keyed by the *original* header value (or header phi) and
// created on demand, per spec: the four fixup tables and the phi memo are
// "keyed by the original header value and created on demand."
type repairState struct {
	f      *Function
	loop   *Loop
	rr     *rewriteResult
	cloner *Cloner

	insideFixup      map[*Value]*Value        // header value -> phi in F
	outsideFixup     map[*Value]*Value        // header value -> phi in E
	interlaceInside  map[*PhiInstruction]*Value // header phi -> phi in F
	interlaceOutside map[*PhiInstruction]*Value // header phi -> phi in E
	phiMemo          map[*PhiInstruction]*Value // phi -> phi(p)
}

// repairSSA clones the header's body into the former back edge and fixes up
// every use of every header-defined value so SSA form is restored, per
// spec §4.5.
func repairSSA(f *Function, loop *Loop, rr *rewriteResult, cloner *Cloner, stats *Stats) {
	s := &repairState{
		f: f, loop: loop, rr: rr, cloner: cloner,
		insideFixup:      map[*Value]*Value{},
		outsideFixup:     map[*Value]*Value{},
		interlaceInside:  map[*PhiInstruction]*Value{},
		interlaceOutside: map[*PhiInstruction]*Value{},
		phiMemo:          map[*PhiInstruction]*Value{},
	}

	s.cloneHeaderBody()

	phis := append([]*PhiInstruction(nil), rr.H.Phis...)
	for _, p := range phis {
		s.fixupPhiUses(p)
	}

	// Retirement (§4.5.4): two-phase so cross-references between header
	// phis during repair don't dangle once the phis are unlinked.
	for _, p := range phis {
		if len(p.Inputs) >= 2 {
			p.SetInput(1, p.Inputs[0])
		}
	}
	for _, p := range phis {
		rr.H.RemovePhi(p)
	}

	if _, ok := rr.B.LastInstruction().(*IfInstruction); !ok {
		panic("ir: FormBottomLoops post-condition violated: back edge block does not end in If")
	}

	stats.Bump(StatFormBottomLoop)
}

// cloneHeaderBody clones every non-phi header instruction into B in program
// order (§4.5.1) and, for ordinary instructions, immediately repairs every
// use of the original's result (§4.5.2).
func (s *repairState) cloneHeaderBody() {
	H, B := s.rr.H, s.rr.B
	original := append([]Instruction(nil), H.Instructions...)
	if len(original) == 0 {
		panic("ir: FormBottomLoops precondition violated: header has no terminator")
	}
	terminator := original[len(original)-1]

	for _, instr := range original[:len(original)-1] {
		if lc, ok := instr.(*LoadClassInstruction); ok {
			// LoadClass is idempotent and dominates B, so every consumer
			// (header, clone, body, exit) keeps using the one original
			// value; no clone, no fixup phi.
			s.cloner.AddCloneManually(lc, lc)
			continue
		}
		clone := instr.Clone(s.f)
		rewriteOperandsToClones(clone, s.cloner)
		B.AddInstruction(clone)
		s.cloner.AddCloneManually(instr, clone)
		if orig := instr.Result(); orig != nil {
			s.fixupNonPhiUses(orig, clone.Result())
		}
	}

	ifInstr, ok := terminator.(*IfInstruction)
	if !ok {
		panic("ir: FormBottomLoops precondition violated: header terminator is not an If")
	}
	clonedIf := ifInstr.Clone(s.f).(*IfInstruction)
	rewriteOperandsToClones(clonedIf, s.cloner)
	if s.rr.ifTrueIsF {
		clonedIf.IfTrue, clonedIf.IfFalse = s.rr.backToF, s.rr.backToE
	} else {
		clonedIf.IfTrue, clonedIf.IfFalse = s.rr.backToE, s.rr.backToF
	}
	B.AddInstruction(clonedIf)
	retargetTerminator(B, clonedIf)
	s.cloner.AddCloneManually(ifInstr, clonedIf)
}

// rewriteOperandsToClones redirects clone's operands away from any
// original header value that itself has a clone, so a cloned instruction
// never reaches back across the loop into stale, once-per-iteration state.
// Operands that are not header-cloned values (parameters, phi results,
// values from outside the header) are left untouched.
func rewriteOperandsToClones(clone Instruction, cloner *Cloner) {
	for _, operand := range clone.Operands() {
		if operand == nil || operand.DefInstr == nil {
			continue
		}
		if c, ok := cloner.CloneOf(operand.DefInstr); ok && c != operand.DefInstr {
			clone.ReplaceOperand(operand, c.Result())
		}
	}
}

// fixupNonPhiUses applies the §4.5.2 replacement table to every remaining
// use of a cloned non-phi header instruction's result.
func (s *repairState) fixupNonPhiUses(orig, clone *Value) {
	for _, user := range orig.Uses() {
		switch ub := user.Block(); {
		case ub == s.rr.H:
			// leave the use pointing at orig
		case ub == s.rr.B:
			// already redirected to the clone by rewriteOperandsToClones
		case s.loop.Contains(ub):
			user.ReplaceOperand(orig, s.insideFixupPhi(orig, clone))
		default:
			user.ReplaceOperand(orig, s.outsideFixupPhi(orig, clone))
		}
	}
	for _, env := range orig.EnvUses() {
		switch ob := env.Owner().Block(); {
		case ob == s.rr.H:
		case ob == s.rr.B:
		case s.loop.Contains(ob):
			env.ReplaceSlot(orig, s.insideFixupPhi(orig, clone))
		default:
			env.ReplaceSlot(orig, s.outsideFixupPhi(orig, clone))
		}
	}
}

func (s *repairState) insideFixupPhi(orig, clone *Value) *Value {
	if v, ok := s.insideFixup[orig]; ok {
		return v
	}
	phi := newTwoInputPhi(s.f, s.rr.F, s.rr.backToF, orig, clone)
	s.insideFixup[orig] = phi.Result()
	return phi.Result()
}

func (s *repairState) outsideFixupPhi(orig, clone *Value) *Value {
	if v, ok := s.outsideFixup[orig]; ok {
		return v
	}
	phi := newTwoInputPhi(s.f, s.rr.E, s.rr.backToE, orig, clone)
	s.outsideFixup[orig] = phi.Result()
	return phi.Result()
}

// fixupPhiUses applies the §4.5.3 replacement table to every use of a
// header phi's result.
func (s *repairState) fixupPhiUses(p *PhiInstruction) {
	orig := p.Result()
	p0 := p.Inputs[0]
	for _, user := range orig.Uses() {
		switch ub := user.Block(); {
		case ub == s.rr.H:
			if _, isPhi := user.(*PhiInstruction); !isPhi {
				user.ReplaceOperand(orig, p0)
			}
		case ub == s.rr.B:
			user.ReplaceOperand(orig, s.phiFixup(p))
		case s.loop.Contains(ub):
			user.ReplaceOperand(orig, s.interlaceInsidePhi(p))
		default:
			user.ReplaceOperand(orig, s.interlaceOutsidePhi(p))
		}
	}
	for _, env := range orig.EnvUses() {
		switch ob := env.Owner().Block(); {
		case ob == s.rr.H:
		case ob == s.rr.B:
			env.ReplaceSlot(orig, s.phiFixup(p))
		case s.loop.Contains(ob):
			env.ReplaceSlot(orig, s.interlaceInsidePhi(p))
		default:
			env.ReplaceSlot(orig, s.interlaceOutsidePhi(p))
		}
	}
}

// phiFixup computes φ(p) per §4.5.3, recursing at most once per distinct
// header phi: the analyzer's phi-cycle rejection guarantees this
// terminates.
func (s *repairState) phiFixup(p *PhiInstruction) *Value {
	if v, ok := s.phiMemo[p]; ok {
		return v
	}
	p1 := p.Inputs[1]
	var result *Value
	switch {
	case p1.DefBlock != s.rr.H:
		result = p1
	default:
		if p1Phi, ok := p1.DefInstr.(*PhiInstruction); ok {
			result = s.interlaceInsidePhi(p1Phi)
		} else {
			clone, _ := s.cloner.CloneOf(p1.DefInstr)
			result = s.insideFixupPhi(p1, clone.Result())
		}
	}
	s.phiMemo[p] = result
	return result
}

func (s *repairState) interlaceInsidePhi(p *PhiInstruction) *Value {
	if v, ok := s.interlaceInside[p]; ok {
		return v
	}
	phi := NewPhi(s.f, s.rr.F, p.Result().Type)
	s.rr.F.AddPhi(phi)
	s.interlaceInside[p] = phi.Result() // memoize before recursing
	fillTwoInputPhi(phi, s.rr.F, s.rr.backToF, p.Inputs[0], s.phiFixup(p))
	return phi.Result()
}

func (s *repairState) interlaceOutsidePhi(p *PhiInstruction) *Value {
	if v, ok := s.interlaceOutside[p]; ok {
		return v
	}
	phi := NewPhi(s.f, s.rr.E, p.Result().Type)
	s.rr.E.AddPhi(phi)
	s.interlaceOutside[p] = phi.Result() // memoize before recursing
	fillTwoInputPhi(phi, s.rr.E, s.rr.backToE, p.Inputs[0], s.phiFixup(p))
	return phi.Result()
}

// newTwoInputPhi creates and fills a phi in block with exactly two inputs,
// ordered by edge correspondence: clonePred's edge carries cloneVal, the
// block's other predecessor carries origVal.
func newTwoInputPhi(f *Function, block, clonePred *BasicBlock, origVal, cloneVal *Value) *PhiInstruction {
	phi := NewPhi(f, block, origVal.Type)
	block.AddPhi(phi)
	fillTwoInputPhi(phi, block, clonePred, origVal, cloneVal)
	return phi
}

func fillTwoInputPhi(phi *PhiInstruction, block, clonePred *BasicBlock, origVal, cloneVal *Value) {
	cloneIdx := block.PredecessorIndex(clonePred)
	for i := range block.Predecessors {
		if i == cloneIdx {
			phi.SetInput(i, cloneVal)
		} else {
			phi.SetInput(i, origVal)
		}
	}
}
