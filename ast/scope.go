package ast

import (
	"github.com/rickypai/natsort"
)

// Scope tracks the name bindings visible while a compilation unit is being
// constructed, and the statements of code blocks still being assembled.
//
// Names are block scoped without shadowing: every open code block has a
// binding frame which is discarded when the block is closed, and a name may
// not be bound while it is visible from any open frame.
type Scope struct {
	// frames maps from identifier name to Identifier node, one frame per open
	// code block; frames[0] is the outermost frame.
	frames []map[string]ExprID
	// pending holds the statements of code blocks under construction, one
	// entry per open code block.
	pending [][]StmtID
}

// NewScope returns a new scope with an outermost binding frame and no open
// code blocks.
func NewScope() *Scope {
	return &Scope{
		frames: []map[string]ExprID{make(map[string]ExprID)},
	}
}

// Lookup returns the Identifier node bound to name in visible scope.
func (s *Scope) Lookup(name string) (ExprID, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if id, ok := s.frames[i][name]; ok {
			return id, true
		}
	}
	return 0, false
}

// Bind binds name to the given Identifier node in the innermost frame. A
// DuplicateDeclaration error is returned if name is already visible.
func (s *Scope) Bind(name string, id ExprID) error {
	if prev, ok := s.Lookup(name); ok {
		return Errorf(DuplicateDeclaration, "%q already declared (node %d)", name, prev)
	}
	s.frames[len(s.frames)-1][name] = id
	return nil
}

// OpenBlock starts the assembly of a nested code block.
func (s *Scope) OpenBlock() {
	s.frames = append(s.frames, make(map[string]ExprID))
	s.pending = append(s.pending, nil)
}

// Add appends the statement to the innermost code block under construction.
func (s *Scope) Add(stmt StmtID) error {
	if len(s.pending) == 0 {
		return Errorf(InternalInvariantViolation, "statement %d added outside of code block", stmt)
	}
	top := len(s.pending) - 1
	s.pending[top] = append(s.pending[top], stmt)
	return nil
}

// CloseBlock ends the assembly of the innermost code block and returns the
// statements added since the matching OpenBlock, in insertion order. The
// bindings of the block go out of scope.
func (s *Scope) CloseBlock() ([]StmtID, error) {
	if len(s.pending) == 0 {
		return nil, Errorf(InternalInvariantViolation, "close of code block without matching open")
	}
	top := len(s.pending) - 1
	stmts := s.pending[top]
	s.pending = s.pending[:top]
	s.frames = s.frames[:len(s.frames)-1]
	return stmts, nil
}

// Depth returns the number of open code blocks.
func (s *Scope) Depth() int {
	return len(s.pending)
}

// Names returns the visible names, in natural sort order.
func (s *Scope) Names() []string {
	var names []string
	seen := make(map[string]bool)
	for _, frame := range s.frames {
		for name := range frame {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	natsort.Strings(names)
	return names
}
