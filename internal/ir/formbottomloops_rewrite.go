package ir

// rewriteResult carries the blocks the CFG rewrite produced, handed to the
// SSA repair step so it knows where to clone instructions and where the
// interlace/fixup phis belong.
type rewriteResult struct {
	H, F, E, B *BasicBlock // former header, first body block, exit, back edge
	backToF    *BasicBlock // B's successor that (via splices) leads to F
	backToE    *BasicBlock // B's successor that (via splices) leads to E
	ifTrueIsF  bool        // true if H's original If branched true->F
}

// rewriteLoop performs the CFG surgery of spec §4.4: it does not clone any
// instruction and does not repair any use; it only rewires block topology.
// Preconditions (gate accepted, header ends in If, single back edge, exit
// taken from the header) are assumed to already hold.
func rewriteLoop(f *Function, loop *Loop) *rewriteResult {
	H := loop.Header
	_, E, _ := loop.ExitEdge()
	B := loop.BackEdges()[0]
	headerIf := H.LastInstruction().(*IfInstruction)

	var F *BasicBlock
	ifTrueIsF := headerIf.IfTrue != E
	if ifTrueIsF {
		F = headerIf.IfTrue
	} else {
		F = headerIf.IfFalse
	}

	// Step 1: move the suspend check to be the first instruction of F.
	if loop.SuspendCheck != nil {
		H.RemoveInstruction(loop.SuspendCheck)
		if first := F.FirstInstruction(); first != nil {
			F.InsertInstructionBefore(loop.SuspendCheck, first)
		} else {
			F.AddInstruction(loop.SuspendCheck)
		}
	}

	// Step 2: redirect B's terminal. B currently ends in a Goto to H; give
	// it two successors instead, matching which side of H's If led to E.
	oldGoto := B.LastInstruction().(*GotoInstruction)
	B.RemoveInstruction(oldGoto)
	unwireEdge(B, H)
	var primary, secondary *BasicBlock
	if ifTrueIsF {
		primary, secondary = F, E
	} else {
		primary, secondary = E, F
	}
	wireEdge(B, primary)
	wireEdge(B, secondary)

	// Step 3: splice single-Goto blocks to keep the new multi-successor
	// edges from becoming critical.
	splitExit := spliceBlock(f, B, E, loop.Outer, "split_exit")
	around := spliceBlock(f, H, E, loop.Outer, "around")
	top := spliceBlock(f, B, F, loop, "top")
	loop.ReplaceBackEdge(B, top)
	_ = around

	backToF, backToE := top, splitExit

	// Step 4: conditional preheader fixup.
	if len(H.Successors) > 1 && len(F.Predecessors) > 1 {
		spliceBlock(f, H, F, loop.Outer, "preheader_fixup")
	}

	// Step 5: loop-info update.
	loop.Remove(H)
	H.Loop = loop.Outer
	if loop.Outer != nil {
		loop.Outer.AddToAll(H)
	}
	loop.Header = F
	loop.BottomTested = true

	return &rewriteResult{H: H, F: F, E: E, B: B, backToF: backToF, backToE: backToE, ifTrueIsF: ifTrueIsF}
}
