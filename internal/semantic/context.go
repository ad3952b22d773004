// Package semantic type-checks a parsed loopc file before IR construction,
// the same separation of concerns as the teacher's analyzer: the IR builder
// never has to re-derive a name's type or re-resolve a call, it trusts the
// ContextRegistry this package produces.
package semantic

// FuncSig is a function's externally visible shape: parameter types in
// declaration order and its return type ("" for no return value).
type FuncSig struct {
	Params     []string
	ReturnType string
}

// ContextRegistry is the result of a successful Analyze: every class tag and
// function signature declared at the top level of the file, available to
// the IR builder without it re-walking the AST's top-level items.
type ContextRegistry struct {
	Classes   map[string]bool
	Functions map[string]FuncSig
}

func NewContextRegistry() *ContextRegistry {
	return &ContextRegistry{
		Classes:   make(map[string]bool),
		Functions: make(map[string]FuncSig),
	}
}

// SymbolTable is a chain of lexical scopes mapping a local name to its
// declared type. Scopes nest the way block statements nest: entering an if
// or while body pushes a scope, leaving it pops back to the enclosing one.
type SymbolTable struct {
	parent *SymbolTable
	types  map[string]string
}

func NewSymbolTable(parent *SymbolTable) *SymbolTable {
	return &SymbolTable{parent: parent, types: make(map[string]string)}
}

// Declare binds name to typ in the current (innermost) scope only.
func (s *SymbolTable) Declare(name, typ string) { s.types[name] = typ }

// Lookup searches this scope and every enclosing scope for name.
func (s *SymbolTable) Lookup(name string) (string, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.types[name]; ok {
			return t, true
		}
	}
	return "", false
}

// DeclaredHere reports whether name is bound in this exact scope, not an
// enclosing one — used to detect shadowing within the same block.
func (s *SymbolTable) DeclaredHere(name string) bool {
	_, ok := s.types[name]
	return ok
}

// Push returns a new child scope.
func (s *SymbolTable) Push() *SymbolTable { return NewSymbolTable(s) }

// Names returns every name visible from this scope, innermost first, used
// to build "did you mean" suggestions for an undefined variable.
func (s *SymbolTable) Names() []string {
	var out []string
	seen := map[string]bool{}
	for cur := s; cur != nil; cur = cur.parent {
		for n := range cur.types {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}
