package ir

// Cloner produces a 1:1 copy of a set of instructions, remembering the
// original->clone mapping so a later pass (SSA repair) can rewrite the
// clone's operands to point at other clones instead of originals. It
// mirrors a strict instruction-id-keyed clone map rather than a general
// deep-copy visitor: every clone is created by the source instruction's own
// Clone method, never reconstructed field-by-field by the cloner itself.
type Cloner struct {
	f        *Function
	dryRun   bool // when true, Visit only checks Clonable() and allocates nothing
	clones   map[Instruction]Instruction
	ok       bool
	failedAt Instruction
}

// NewCloner creates a cloner that allocates real instructions in f.
func NewCloner(f *Function) *Cloner {
	return &Cloner{f: f, clones: make(map[Instruction]Instruction), ok: true}
}

// NewDryRunCloner creates a cloner used only to ask "could this be cloned",
// as the header analyzer does: it never materializes instructions, it only
// records whether every visited instruction is Clonable().
func NewDryRunCloner() *Cloner {
	return &Cloner{dryRun: true, ok: true}
}

// Visit registers instr for cloning. If instr is not Clonable(), the
// Cloner's AllOkay flips to false and remembers the offending instruction;
// the caller (the Gate or the Header Analyzer) is expected to check AllOkay
// once after visiting every instruction in the header.
//
// LoadClass is idempotent and side-effect free once resolvable, so it is
// clonable like any pure instruction; it needs no special case here because
// Clonable() already reports true for it.
func (c *Cloner) Visit(instr Instruction) {
	if !instr.Clonable() {
		c.ok = false
		c.failedAt = instr
		return
	}
	if c.dryRun {
		return
	}
	if _, ok := c.clones[instr]; ok {
		return
	}
	c.clones[instr] = instr.Clone(c.f)
}

// AddCloneManually registers an existing clone relationship without going
// through Visit, used by SSA repair to record each header instruction's
// clone and to map a header LoadClass to itself.
func (c *Cloner) AddCloneManually(original, clone Instruction) {
	c.clones[original] = clone
}

// CloneOf returns the clone for original, or (nil, false) if original was
// never visited.
func (c *Cloner) CloneOf(original Instruction) (Instruction, bool) {
	clone, ok := c.clones[original]
	return clone, ok
}

// AllOkay reports whether every instruction visited so far was clonable.
func (c *Cloner) AllOkay() bool { return c.ok }

// FailedAt returns the first non-clonable instruction encountered, or nil.
func (c *Cloner) FailedAt() Instruction { return c.failedAt }

// Originals returns every instruction that has a registered clone, in Go's
// randomized map iteration order, so callers that need deterministic
// repair order keep their own slice alongside the cloner instead of
// ranging over this.
func (c *Cloner) Originals() []Instruction {
	out := make([]Instruction, 0, len(c.clones))
	for orig := range c.clones {
		out = append(out, orig)
	}
	return out
}
