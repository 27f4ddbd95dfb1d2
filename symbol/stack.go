package symbol

import "errors"

// ScopeID is a handle to a scope stored in a [Stack].
type ScopeID int

// Stack tracks the open scopes during translation. Scopes live in an arena
// addressed by [ScopeID] and remain readable after they are popped.
type Stack struct {
	arena []*Scope
	open  []ScopeID
}

// Push creates a new scope for the named subprogram, makes it the innermost
// open scope and returns its handle.
func (st *Stack) Push(name string, args []string) ScopeID {
	id := ScopeID(len(st.arena))
	st.arena = append(st.arena, NewScope(name, args))
	st.open = append(st.open, id)
	return id
}

// Pop closes the innermost open scope.
func (st *Stack) Pop() (ScopeID, error) {
	if len(st.open) == 0 {
		return -1, errors.New("pop of empty scope stack")
	}
	id := st.open[len(st.open)-1]
	st.open = st.open[:len(st.open)-1]
	return id, nil
}

// Top returns the innermost open scope or nil if no scope is open.
func (st *Stack) Top() *Scope {
	if len(st.open) == 0 {
		return nil
	}
	return st.arena[st.open[len(st.open)-1]]
}

// Depth returns the number of open scopes.
func (st *Stack) Depth() int { return len(st.open) }

// Get returns the scope with handle id, open or closed.
func (st *Stack) Get(id ScopeID) *Scope {
	if id < 0 || int(id) >= len(st.arena) {
		return nil
	}
	return st.arena[id]
}

// All returns every scope ever pushed in creation order.
func (st *Stack) All() []*Scope {
	return st.arena
}
