package ir

// gate decides, for one loop, whether it is a transformable top-tested
// loop, already bottom-tested, or must be rejected. It never mutates the
// CFG; it only sets Loop.BottomTested on the already-bottom-tested path and
// bumps a statistic for each rejection and each already-bottom-tested loop.
func gate(loop *Loop, stats *Stats) bool {
	loopToExit, _, ok := loop.ExitEdge()
	if !ok {
		stats.Bump(StatFormBottomLoopRejectedNoExit)
		return false
	}

	headerIf, headerEndsWithIf := loop.Header.LastInstruction().(*IfInstruction)
	if !headerEndsWithIf {
		// The header isn't the block that tests and exits the loop. The
		// loop may already be bottom-tested in the classic shape: the
		// block that actually branches to the exit ends in an If, there is
		// exactly one back edge, it is a successor of that block, and it
		// is nothing but a Goto back to the header.
		if loopExitIf, ok := loopToExit.LastInstruction().(*IfInstruction); ok {
			_ = loopExitIf
			if loop.NumberOfBackEdges() == 1 {
				back := loop.BackEdges()[0]
				if successorOf(loopToExit, back) && isSingleGotoBlock(back) {
					loop.BottomTested = true
					stats.Bump(StatFormBottomLoopAlreadyBottomTested)
				}
			}
		}
		return false
	}

	if loop.NumberOfBackEdges() > 1 {
		stats.Bump(StatFormBottomLoopRejectedMultiBackEdge)
		return false
	}

	if loopToExit != loop.Header {
		stats.Bump(StatFormBottomLoopRejectedNoExit)
		return false
	}

	back := loop.BackEdges()[0]
	if successorOf(loopToExit, back) && isSingleGotoBlock(back) {
		loop.BottomTested = true
		stats.Bump(StatFormBottomLoopAlreadyBottomTested)
		return false
	}

	if !headerAnalyzerAccepts(loop.Header) {
		stats.Bump(StatFormBottomLoopRejectedUnclonableHeader)
		return false
	}

	_ = headerIf
	return true
}

func successorOf(block, candidate *BasicBlock) bool {
	for _, s := range block.Successors {
		if s == candidate {
			return true
		}
	}
	return false
}

func isSingleGotoBlock(b *BasicBlock) bool {
	if len(b.Phis) != 0 || len(b.Instructions) != 1 {
		return false
	}
	_, ok := b.Instructions[0].(*GotoInstruction)
	return ok
}
