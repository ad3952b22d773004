package ir

// Loop is a natural loop: a header block that dominates every other member,
// plus the set of back edges that jump to it. This is the "Loop" essence
// the FormBottomLoops pass consults and rewrites: Preheader may be nil and
// ExitEdge may report no unique exit (not every loop has a unique one),
// BottomTested starts false and is set once this pass has rewritten the
// loop or found it already bottom-tested.
type Loop struct {
	Header    *BasicBlock
	Preheader *BasicBlock // single predecessor outside the loop, if unique
	backEdges []*BasicBlock
	members   map[*BasicBlock]bool
	Outer     *Loop // enclosing loop, nil at the outermost level

	SuspendCheck Instruction // the header's SuspendCheckInstruction, if any
	BottomTested bool
}

// NumberOfBackEdges returns how many back edges target this loop's header.
func (l *Loop) NumberOfBackEdges() int { return len(l.backEdges) }

// BackEdges returns a snapshot of the loop's back-edge source blocks.
func (l *Loop) BackEdges() []*BasicBlock {
	out := make([]*BasicBlock, len(l.backEdges))
	copy(out, l.backEdges)
	return out
}

// IsBackEdge reports whether b is one of this loop's back-edge sources.
func (l *Loop) IsBackEdge(b *BasicBlock) bool {
	for _, e := range l.backEdges {
		if e == b {
			return true
		}
	}
	return false
}

// ReplaceBackEdge swaps old for new in the back-edge set, used when the CFG
// rewriter splices an anti-critical-edge block onto the back edge.
func (l *Loop) ReplaceBackEdge(old, new *BasicBlock) {
	for i, e := range l.backEdges {
		if e == old {
			l.backEdges[i] = new
		}
	}
}

// Contains reports whether b is a member of this loop (including the
// header, but not counting outer loops that merely contain this one).
func (l *Loop) Contains(b *BasicBlock) bool { return l.members[b] }

// AddToAll adds b as a member of this loop and every loop enclosing it, the
// way inserting a block inside a nested loop must register it with each
// level of the loop nest, not just the innermost one.
func (l *Loop) AddToAll(b *BasicBlock) {
	for cur := l; cur != nil; cur = cur.Outer {
		cur.members[b] = true
	}
}

// Remove deletes b from this loop's membership only (not outer loops),
// used when a block is hoisted out of the loop by the rewrite.
func (l *Loop) Remove(b *BasicBlock) { delete(l.members, b) }

// Members returns every block in the loop, header included, unordered.
func (l *Loop) Members() []*BasicBlock {
	out := make([]*BasicBlock, 0, len(l.members))
	for b := range l.members {
		out = append(out, b)
	}
	return out
}

// ExitEdge returns the loop's unique leaving edge: the one block inside the
// loop with an edge to one block outside it. Critical-edge elimination is
// assumed to have already run, so a loop with a genuine single exit has
// exactly one such edge; if there are zero or more than one, ok is false.
func (l *Loop) ExitEdge() (loopToExit, exit *BasicBlock, ok bool) {
	for b := range l.members {
		for _, s := range b.Successors {
			if l.members[s] {
				continue
			}
			if ok {
				return nil, nil, false
			}
			loopToExit, exit, ok = b, s, true
		}
	}
	return loopToExit, exit, ok
}

// ExitBlock returns the loop's unique exit target, per ExitEdge.
func (l *Loop) ExitBlock() (exit *BasicBlock, ok bool) {
	_, exit, ok = l.ExitEdge()
	return exit, ok
}

// Loops returns the function's loop forest, with each loop's Outer pointer
// set, computed fresh if the cached copy was invalidated by a CFG edit.
func (f *Function) Loops() []*Loop {
	if !f.loopsOK {
		f.loops = detectLoops(f)
		f.loopsOK = true
	}
	return f.loops
}

// InnermostLoops returns every loop in the forest that has no nested loop
// inside it — the traversal order the Driver uses (spec §4.1).
func InnermostLoops(loops []*Loop) []*Loop {
	hasChild := map[*Loop]bool{}
	for _, l := range loops {
		if l.Outer != nil {
			hasChild[l.Outer] = true
		}
	}
	var out []*Loop
	for _, l := range loops {
		if !hasChild[l] {
			out = append(out, l)
		}
	}
	return out
}

func detectLoops(f *Function) []*Loop {
	if !f.domsValid {
		f.RebuildDomination()
	}
	byHeader := map[*BasicBlock]*Loop{}
	var order []*BasicBlock // header discovery order, for stable nesting

	for _, b := range f.Blocks {
		for _, s := range b.Successors {
			if !f.Dominates(s, b) {
				continue // not a back edge
			}
			l, ok := byHeader[s]
			if !ok {
				l = &Loop{Header: s, members: map[*BasicBlock]bool{s: true}}
				byHeader[s] = l
				order = append(order, s)
			}
			l.backEdges = append(l.backEdges, b)
			addNaturalLoopBody(l, b)
		}
	}

	loops := make([]*Loop, 0, len(order))
	for _, h := range order {
		loops = append(loops, byHeader[h])
	}

	// Nesting: loop A is nested in loop B if A's header is a (strict)
	// member of B and B's header is not a member of A.
	for _, inner := range loops {
		var best *Loop
		for _, outer := range loops {
			if outer == inner || !outer.members[inner.Header] {
				continue
			}
			if best == nil || best.members[outer.Header] {
				best = outer
			}
		}
		inner.Outer = best
	}

	// Register membership with every enclosing level.
	for _, l := range loops {
		for b := range l.members {
			for outer := l.Outer; outer != nil; outer = outer.Outer {
				outer.members[b] = true
			}
		}
	}

	// Preheader: the header's unique predecessor outside the loop.
	for _, l := range loops {
		var pre *BasicBlock
		unique := true
		for _, p := range l.Header.Predecessors {
			if l.members[p] {
				continue
			}
			if pre != nil {
				unique = false
				break
			}
			pre = p
		}
		if unique {
			l.Preheader = pre
		}
	}

	// SuspendCheck: the header's SuspendCheckInstruction, if present.
	for _, l := range loops {
		for _, instr := range l.Header.Instructions {
			if sc, ok := instr.(*SuspendCheckInstruction); ok {
				l.SuspendCheck = sc
				break
			}
		}
	}

	for _, b := range f.Blocks {
		b.Loop = innermostContaining(loops, b)
	}

	return loops
}

// addNaturalLoopBody walks predecessors backward from the back-edge source
// until it reaches the header, adding every block found to the loop.
func addNaturalLoopBody(l *Loop, backEdgeSrc *BasicBlock) {
	if l.members[backEdgeSrc] {
		return
	}
	stack := []*BasicBlock{backEdgeSrc}
	l.members[backEdgeSrc] = true
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range b.Predecessors {
			if !l.members[p] {
				l.members[p] = true
				stack = append(stack, p)
			}
		}
	}
}

func innermostContaining(loops []*Loop, b *BasicBlock) *Loop {
	var best *Loop
	for _, l := range loops {
		if !l.members[b] {
			continue
		}
		if best == nil || depth(l) > depth(best) {
			best = l
		}
	}
	return best
}

func depth(l *Loop) int {
	d := 0
	for cur := l.Outer; cur != nil; cur = cur.Outer {
		d++
	}
	return d
}
