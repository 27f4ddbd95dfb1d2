package ast

import "strings"

type Node interface {
	// AppendString appends a single-line Fortran-like rendering of the node to dst.
	AppendString(dst []byte) []byte
}

type Statement interface {
	Node
	// Info returns the label and source line shared by all statements.
	Info() *StmtInfo
}

// StmtInfo is embedded by every statement node.
type StmtInfo struct {
	Label string // Numeric statement label, empty if unlabeled.
	Line  int    // 1-based source line where the statement starts.
}

func (si *StmtInfo) Info() *StmtInfo { return si }

// GetLabel returns the statement label.
func (si *StmtInfo) GetLabel() string { return si.Label }

func appendList(dst []byte, items []string) []byte {
	for i, item := range items {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = append(dst, item...)
	}
	return dst
}

// Source is the root of a parsed compilation unit. Statements outside of any
// subprogram appear directly in Body.
type Source struct {
	StmtInfo
	Name string // File or source name.
	Body []Statement
}

func (s *Source) AppendString(dst []byte) []byte {
	dst = append(dst, "! source "...)
	return append(dst, s.Name...)
}

// Subroutine represents a SUBROUTINE...END block.
type Subroutine struct {
	StmtInfo
	Name string
	Args []string
	Body []Statement
}

func (s *Subroutine) AppendString(dst []byte) []byte {
	dst = append(dst, "SUBROUTINE "...)
	dst = append(dst, s.Name...)
	dst = append(dst, '(')
	dst = appendList(dst, s.Args)
	return append(dst, ')')
}

// Function represents a FUNCTION...END block.
type Function struct {
	StmtInfo
	Name       string
	ResultType string // e.g. "real*8", empty if implicit.
	Args       []string
	Body       []Statement
}

func (f *Function) AppendString(dst []byte) []byte {
	if f.ResultType != "" {
		dst = append(dst, strings.ToUpper(f.ResultType)...)
		dst = append(dst, ' ')
	}
	dst = append(dst, "FUNCTION "...)
	dst = append(dst, f.Name...)
	dst = append(dst, '(')
	dst = appendList(dst, f.Args)
	return append(dst, ')')
}

// Program represents a PROGRAM...END block.
type Program struct {
	StmtInfo
	Name string
	Body []Statement
}

func (p *Program) AppendString(dst []byte) []byte {
	dst = append(dst, "PROGRAM "...)
	return append(dst, p.Name...)
}

// TypeSpec is a type keyword with its optional star length, e.g. REAL*8.
type TypeSpec struct {
	Name   string // "integer", "real", "complex", "logical", "character", "double precision", "double complex".
	Length string // Star length, empty if absent.
}

func (ts TypeSpec) AppendString(dst []byte) []byte {
	dst = append(dst, strings.ToUpper(ts.Name)...)
	if ts.Length != "" {
		dst = append(dst, '*')
		dst = append(dst, ts.Length...)
	}
	return dst
}

func (ts TypeSpec) String() string { return string(ts.AppendString(nil)) }

// Entity is a declared name with an optional array shape.
type Entity struct {
	Name string
	Dims []string // Dimension bound expressions, nil for scalars.
}

func (e Entity) AppendString(dst []byte) []byte {
	dst = append(dst, e.Name...)
	if e.Dims != nil {
		dst = append(dst, '(')
		dst = appendList(dst, e.Dims)
		dst = append(dst, ')')
	}
	return dst
}

func appendEntities(dst []byte, entities []Entity) []byte {
	for i, e := range entities {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = e.AppendString(dst)
	}
	return dst
}

// TypeDecl is a type declaration statement such as "REAL*8 A(N), B".
type TypeDecl struct {
	StmtInfo
	Type     TypeSpec
	Entities []Entity
}

func (td *TypeDecl) AppendString(dst []byte) []byte {
	dst = td.Type.AppendString(dst)
	dst = append(dst, ' ')
	return appendEntities(dst, td.Entities)
}

// Dimension is a DIMENSION statement.
type Dimension struct {
	StmtInfo
	Entities []Entity
}

func (d *Dimension) AppendString(dst []byte) []byte {
	dst = append(dst, "DIMENSION "...)
	return appendEntities(dst, d.Entities)
}

// LetterRange is an inclusive range of initial letters in an IMPLICIT statement.
type LetterRange struct {
	First, Last byte
}

// ImplicitRule binds a type to letter ranges.
type ImplicitRule struct {
	Type   TypeSpec
	Ranges []LetterRange
}

// Implicit is an IMPLICIT statement. No rules means IMPLICIT NONE.
type Implicit struct {
	StmtInfo
	Rules []ImplicitRule
}

// IsNone reports whether the statement is IMPLICIT NONE.
func (im *Implicit) IsNone() bool { return len(im.Rules) == 0 }

func (im *Implicit) AppendString(dst []byte) []byte {
	dst = append(dst, "IMPLICIT "...)
	if im.IsNone() {
		return append(dst, "NONE"...)
	}
	for i, rule := range im.Rules {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = rule.Type.AppendString(dst)
		dst = append(dst, " ("...)
		for j, r := range rule.Ranges {
			if j > 0 {
				dst = append(dst, ", "...)
			}
			dst = append(dst, r.First)
			if r.Last != r.First {
				dst = append(dst, '-', r.Last)
			}
		}
		dst = append(dst, ')')
	}
	return dst
}

// DataItem binds a value list to one or more names. Repeat counts are already expanded.
type DataItem struct {
	Names  []string
	Values []string
}

// Data is a DATA statement.
type Data struct {
	StmtInfo
	Items []DataItem
}

func (d *Data) AppendString(dst []byte) []byte {
	dst = append(dst, "DATA "...)
	for i, item := range d.Items {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = appendList(dst, item.Names)
		dst = append(dst, " /"...)
		dst = appendList(dst, item.Values)
		dst = append(dst, '/')
	}
	return dst
}

// Intrinsic is an INTRINSIC statement.
type Intrinsic struct {
	StmtInfo
	Names []string
}

func (in *Intrinsic) AppendString(dst []byte) []byte {
	dst = append(dst, "INTRINSIC "...)
	return appendList(dst, in.Names)
}

// Assignment is "target = expr". Target and Expr hold expression text.
type Assignment struct {
	StmtInfo
	Target string
	Expr   string
}

func (a *Assignment) AppendString(dst []byte) []byte {
	dst = append(dst, a.Target...)
	dst = append(dst, " = "...)
	return append(dst, a.Expr...)
}

// Call is a CALL statement. Args hold expression text.
type Call struct {
	StmtInfo
	Name string
	Args []string
}

func (c *Call) AppendString(dst []byte) []byte {
	dst = append(dst, "CALL "...)
	dst = append(dst, c.Name...)
	dst = append(dst, '(')
	dst = appendList(dst, c.Args)
	return append(dst, ')')
}

// If is a logical IF guarding a single statement.
type If struct {
	StmtInfo
	Cond string
	Stmt Statement
}

func (s *If) AppendString(dst []byte) []byte {
	dst = append(dst, "IF ("...)
	dst = append(dst, s.Cond...)
	dst = append(dst, ") "...)
	return s.Stmt.AppendString(dst)
}

// ElseIf is one ELSE IF clause of an [IfThen].
type ElseIf struct {
	Line int
	Cond string
	Body []Statement
}

// IfThen is a block IF with optional ELSE IF and ELSE parts.
type IfThen struct {
	StmtInfo
	Cond    string
	Then    []Statement
	ElseIfs []ElseIf
	HasElse bool
	Else    []Statement
}

func (s *IfThen) AppendString(dst []byte) []byte {
	dst = append(dst, "IF ("...)
	dst = append(dst, s.Cond...)
	return append(dst, ") THEN"...)
}

// Do is a DO loop. LoopControl is the raw "var = start, stop[, step]" text,
// empty for an unbounded DO.
type Do struct {
	StmtInfo
	TargetLabel string // Terminating statement label, empty for END DO loops.
	LoopControl string
	Body        []Statement
}

func (s *Do) AppendString(dst []byte) []byte {
	dst = append(dst, "DO"...)
	if s.TargetLabel != "" {
		dst = append(dst, ' ')
		dst = append(dst, s.TargetLabel...)
	}
	if s.LoopControl != "" {
		dst = append(dst, ' ')
		dst = append(dst, s.LoopControl...)
	}
	return dst
}

// DoWhile is a DO WHILE loop.
type DoWhile struct {
	StmtInfo
	TargetLabel string
	Cond        string
	Body        []Statement
}

func (s *DoWhile) AppendString(dst []byte) []byte {
	dst = append(dst, "DO WHILE ("...)
	dst = append(dst, s.Cond...)
	return append(dst, ')')
}

// Goto is an unconditional GO TO.
type Goto struct {
	StmtInfo
	Target string
}

func (s *Goto) AppendString(dst []byte) []byte {
	dst = append(dst, "GO TO "...)
	return append(dst, s.Target...)
}

// ComputedGoto is "GO TO (l1, l2, ...) expr".
type ComputedGoto struct {
	StmtInfo
	Targets []string
	Expr    string
}

func (s *ComputedGoto) AppendString(dst []byte) []byte {
	dst = append(dst, "GO TO ("...)
	dst = appendList(dst, s.Targets)
	dst = append(dst, ") "...)
	return append(dst, s.Expr...)
}

// ArithmeticIf is "IF (expr) negative, zero, positive".
type ArithmeticIf struct {
	StmtInfo
	Expr   string
	Labels [3]string
}

func (s *ArithmeticIf) AppendString(dst []byte) []byte {
	dst = append(dst, "IF ("...)
	dst = append(dst, s.Expr...)
	dst = append(dst, ") "...)
	return appendList(dst, s.Labels[:])
}

// Continue is a CONTINUE statement.
type Continue struct {
	StmtInfo
}

func (s *Continue) AppendString(dst []byte) []byte { return append(dst, "CONTINUE"...) }

// Return is a RETURN statement.
type Return struct {
	StmtInfo
}

func (s *Return) AppendString(dst []byte) []byte { return append(dst, "RETURN"...) }

// Stop is a STOP statement.
type Stop struct {
	StmtInfo
	Code string
}

func (s *Stop) AppendString(dst []byte) []byte {
	dst = append(dst, "STOP"...)
	if s.Code != "" {
		dst = append(dst, ' ')
		dst = append(dst, s.Code...)
	}
	return dst
}

// Comment is a whole-line comment.
type Comment struct {
	StmtInfo
	Text string
}

func (s *Comment) AppendString(dst []byte) []byte {
	dst = append(dst, '!')
	return append(dst, s.Text...)
}

// IO is an input/output statement (READ, WRITE, PRINT, FORMAT, OPEN, CLOSE, ...).
// Only its keyword is retained.
type IO struct {
	StmtInfo
	Keyword string // Lowercase statement keyword.
	Text    string // Statement text following the keyword.
}

func (s *IO) AppendString(dst []byte) []byte {
	dst = append(dst, strings.ToUpper(s.Keyword)...)
	if s.Text != "" {
		dst = append(dst, ' ')
		dst = append(dst, s.Text...)
	}
	return dst
}

// Unsupported is a recognized statement that has no kernel equivalent,
// e.g. EQUIVALENCE, COMMON, SAVE, PARAMETER, EXTERNAL, ALLOCATE or ENTRY.
type Unsupported struct {
	StmtInfo
	Keyword string // Lowercase statement keyword.
	Text    string
}

func (s *Unsupported) AppendString(dst []byte) []byte {
	dst = append(dst, strings.ToUpper(s.Keyword)...)
	if s.Text != "" {
		dst = append(dst, ' ')
		dst = append(dst, s.Text...)
	}
	return dst
}
