// Package symbol provides the per-subprogram symbol table used while
// translating Fortran to OpenCL C, along with implicit typing rules and
// an arena-backed stack of scopes.
package symbol

import (
	"slices"

	"github.com/samber/lo"

	"github.com/1912158597-george/pyopencl/dtype"
)

// Error reports a violation of a scope invariant, such as a redeclaration.
type Error struct {
	Scope string // Owning subprogram, empty at top level.
	Name  string
	Msg   string
}

func (e *Error) Error() string {
	if e.Scope == "" {
		return e.Name + ": " + e.Msg
	}
	return e.Scope + ": " + e.Name + ": " + e.Msg
}

// Scope holds everything known about the names of one subprogram (or the top-level unit).
//
// A name is known once it has a declared type, a declared shape or has been referenced.
// Names are expected in their case-folded form.
type Scope struct {
	name     string
	args     []string
	implicit *ImplicitRules
	types    map[string]dtype.DType
	shapes   map[string][]string
	data     map[string][]string
	params   map[string]struct{}
	used     map[string]struct{}
}

// NewScope returns a scope for subprogram name with the given argument names.
// The classical implicit typing rules are in effect until changed.
func NewScope(name string, args []string) *Scope {
	s := &Scope{
		name:     name,
		args:     slices.Clone(args),
		implicit: GetDefaultImplicitRules(),
		types:    make(map[string]dtype.DType),
		shapes:   make(map[string][]string),
		data:     make(map[string][]string),
		params:   make(map[string]struct{}, len(args)),
		used:     make(map[string]struct{}),
	}
	for _, arg := range args {
		s.params[arg] = struct{}{}
	}
	return s
}

// Name returns the subprogram name of the scope.
func (s *Scope) Name() string { return s.name }

// Args returns the argument names in declaration order.
func (s *Scope) Args() []string { return s.args }

// Implicit returns the implicit typing rules for this scope.
func (s *Scope) Implicit() *ImplicitRules { return s.implicit }

func (s *Scope) errorf(name, msg string) error {
	return &Error{Scope: s.name, Name: name, Msg: msg}
}

// SetImplicitNone disables implicit typing for the scope.
func (s *Scope) SetImplicitNone() error {
	if s.implicit.Customized() {
		return s.errorf("implicit", "IMPLICIT NONE after IMPLICIT type rules")
	}
	s.implicit.IsNone = true
	return nil
}

// SetImplicit binds typ to every letter in first..last.
func (s *Scope) SetImplicit(first, last byte, typ dtype.DType) error {
	if s.implicit.IsNone {
		return s.errorf("implicit", "IMPLICIT type rules after IMPLICIT NONE")
	}
	err := s.implicit.SetRange(first, last, typ)
	if err != nil {
		return s.errorf("implicit", err.Error())
	}
	return nil
}

// Declare binds an explicit type to name.
func (s *Scope) Declare(name string, typ dtype.DType) error {
	if _, ok := s.types[name]; ok {
		return s.errorf(name, "type declared more than once")
	}
	s.types[name] = typ
	return nil
}

// DeclareShape binds a shape given as dimension bound expressions to name.
func (s *Scope) DeclareShape(name string, dims []string) error {
	if _, ok := s.shapes[name]; ok {
		return s.errorf(name, "shape declared more than once")
	} else if len(dims) == 0 {
		return s.errorf(name, "empty shape")
	}
	s.shapes[name] = slices.Clone(dims)
	return nil
}

// RecordInitializer binds DATA statement values to name.
func (s *Scope) RecordInitializer(name string, values []string) error {
	if _, ok := s.data[name]; ok {
		return s.errorf(name, "initialized by DATA more than once")
	} else if s.IsParam(name) {
		return s.errorf(name, "arguments cannot be initialized by DATA")
	}
	s.data[name] = slices.Clone(values)
	return nil
}

// MarkReferenced records that name was seen in an expression or assignment target.
func (s *Scope) MarkReferenced(name string) {
	s.used[name] = struct{}{}
}

// IsKnown reports whether name has a declared type, a declared shape or has been referenced.
func (s *Scope) IsKnown(name string) bool {
	_, typed := s.types[name]
	_, shaped := s.shapes[name]
	_, used := s.used[name]
	return typed || shaped || used
}

// IsParam reports whether name is an argument of the subprogram.
func (s *Scope) IsParam(name string) bool {
	_, ok := s.params[name]
	return ok
}

// IsReferenced reports whether name was marked by [Scope.MarkReferenced].
func (s *Scope) IsReferenced(name string) bool {
	_, ok := s.used[name]
	return ok
}

// ResolveType returns the declared type of name or its implicit type.
func (s *Scope) ResolveType(name string) (dtype.DType, error) {
	if typ, ok := s.types[name]; ok {
		return typ, nil
	}
	typ, ok := s.implicit.TypeForName(name)
	if !ok {
		if s.implicit.IsNone {
			return dtype.Invalid, s.errorf(name, "no type declared (IMPLICIT NONE active)")
		}
		return dtype.Invalid, s.errorf(name, "no implicit type for name")
	}
	return typ, nil
}

// DeclaredType returns the explicitly declared type of name.
func (s *Scope) DeclaredType(name string) (dtype.DType, bool) {
	typ, ok := s.types[name]
	return typ, ok
}

// ResolveShape returns the dimension bound expressions of name. The boolean is false for scalars.
func (s *Scope) ResolveShape(name string) ([]string, bool) {
	dims, ok := s.shapes[name]
	return dims, ok
}

// Initializer returns the DATA values bound to name.
func (s *Scope) Initializer(name string) ([]string, bool) {
	values, ok := s.data[name]
	return values, ok
}

// TranslateName returns the C identifier used for name. Arrays initialized
// by DATA live in a global constant named after the subprogram.
func (s *Scope) TranslateName(name string) string {
	_, hasData := s.data[name]
	_, hasShape := s.shapes[name]
	if hasData && hasShape && s.name != "" {
		return s.name + "_" + name
	}
	return name
}

// KnownNames returns every declared, shaped, initialized or referenced name in lexicographic order.
func (s *Scope) KnownNames() []string {
	names := lo.Uniq(slices.Concat(
		lo.Keys(s.types),
		lo.Keys(s.shapes),
		lo.Keys(s.data),
		lo.Keys(s.used),
	))
	slices.Sort(names)
	return names
}
