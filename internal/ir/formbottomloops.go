package ir

import "sync/atomic"

// FormBottomLoopsPass converts eligible top-tested loops into bottom-tested
// ("do-while") form, per spec §4. It is registered first in the default
// pipeline so every later pass sees loops in their final, single-test shape.
type FormBottomLoopsPass struct {
	Stats *Stats
}

func (p *FormBottomLoopsPass) Name() string { return "FormBottomLoops" }

func (p *FormBottomLoopsPass) Description() string {
	return "rewrites top-tested loops into bottom-tested form, cloning the header into the back edge"
}

func (p *FormBottomLoopsPass) Apply(program *Program) bool {
	stats := p.Stats
	if stats == nil {
		stats = NewStats()
	}
	changed := false
	for _, fn := range program.Functions {
		if runFormBottomLoops(fn, stats) {
			changed = true
		}
	}
	return changed
}

// runFormBottomLoops is the Driver (§4.1): it visits every innermost loop,
// gates it, and on acceptance rewrites the CFG and repairs SSA form. Loops
// exposed by a rewrite (an outer loop whose body just changed shape) are
// only visited by re-running the whole pass; a single Apply call makes one
// pass over the loop forest as it stood at entry.
func runFormBottomLoops(f *Function, stats *Stats) bool {
	changed := false
	limit, capped := bottomMax()

	for _, loop := range InnermostLoops(f.Loops()) {
		if capped && atomic.LoadInt64(&bottomTransformCount) >= int64(limit) {
			stats.Bump(StatFormBottomLoopCapped)
			continue
		}
		if !gate(loop, stats) {
			continue
		}

		cloner := NewCloner(f)
		rr := rewriteLoop(f, loop)
		repairSSA(f, loop, rr, cloner, stats)

		changed = true
		bumpBottomTransformCount()
		f.invalidateLoops()
	}

	if changed {
		f.RebuildDomination()
	}
	return changed
}
