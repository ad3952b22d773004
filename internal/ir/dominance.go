package ir

// Dominance computes an immediate-dominator tree using the standard
// iterative Cooper/Harvey/Kennedy algorithm over reverse-postorder blocks.
// It underlies natural-loop detection (a back edge is any edge n->h where h
// dominates n) and the "H dominates every block in the loop" structural
// invariant the testable properties check; the rewrite itself never
// consults it directly, matching spec's note that no part of the pass's
// own algorithm needs a dominator query between rewrite and final rebuild.
type Dominance struct {
	order   []*BasicBlock
	index   map[*BasicBlock]int
	idom    []*BasicBlock
}

// RebuildDomination recomputes the function's dominator tree from its
// current CFG shape. Passes that mutate the CFG call this once they are
// done, per the Graph.RebuildDomination contract.
func (f *Function) RebuildDomination() {
	f.dom = computeDominance(f)
	f.domsValid = true
}

func computeDominance(f *Function) *Dominance {
	if len(f.Blocks) == 0 {
		return &Dominance{index: map[*BasicBlock]int{}}
	}
	entry := f.Blocks[0]
	order := reversePostorder(entry)
	index := make(map[*BasicBlock]int, len(order))
	for i, b := range order {
		index[b] = i
	}
	idom := make([]*BasicBlock, len(order))
	idom[0] = entry

	changed := true
	for changed {
		changed = false
		for i := 1; i < len(order); i++ {
			b := order[i]
			var newIdom *BasicBlock
			for _, p := range b.Predecessors {
				pi, ok := index[p]
				if !ok || idom[pi] == nil && p != entry {
					continue
				}
				if newIdom == nil {
					newIdom = p
					continue
				}
				newIdom = intersect(idom, index, newIdom, p)
			}
			if newIdom != idom[i] {
				idom[i] = newIdom
				changed = true
			}
		}
	}
	return &Dominance{order: order, index: index, idom: idom}
}

func intersect(idom []*BasicBlock, index map[*BasicBlock]int, a, b *BasicBlock) *BasicBlock {
	for a != b {
		for index[a] > index[b] {
			a = idom[index[a]]
			if a == nil {
				return b
			}
		}
		for index[b] > index[a] {
			b = idom[index[b]]
			if b == nil {
				return a
			}
		}
	}
	return a
}

func reversePostorder(entry *BasicBlock) []*BasicBlock {
	visited := map[*BasicBlock]bool{}
	var post []*BasicBlock
	var visit func(*BasicBlock)
	visit = func(b *BasicBlock) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range b.Successors {
			visit(s)
		}
		post = append(post, b)
	}
	visit(entry)
	out := make([]*BasicBlock, len(post))
	for i, b := range post {
		out[len(post)-1-i] = b
	}
	return out
}

// Dominates reports whether a dominates b (every path from the entry block
// to b passes through a). A block is considered to dominate itself.
func (f *Function) Dominates(a, b *BasicBlock) bool {
	if !f.domsValid {
		f.RebuildDomination()
	}
	d := f.dom
	bi, ok := d.index[b]
	if !ok {
		return false
	}
	for bi != -1 {
		cur := d.order[bi]
		if cur == a {
			return true
		}
		next := d.idom[bi]
		if next == nil || next == cur {
			return false
		}
		bi = d.index[next]
	}
	return false
}
