// Package cgen builds OpenCL C source text from a small tree of declarators,
// statements and blocks. Every node generates a list of lines; containers
// indent the lines of their children by two spaces.
package cgen

import (
	"strings"

	"github.com/1912158597-george/pyopencl/dtype"
)

const indent = "  "

// Generable is a node of generated C code.
type Generable interface {
	Generate() []string
}

// Declarator is a node that declares a name. DeclPair splits the
// declaration into its type part and its declarator part, as in
// "float" and "*restrict a".
type Declarator interface {
	Generable
	DeclPair() (typ, decl string)
}

// String renders g as C text, one line per generated line.
func String(g Generable) string {
	return strings.Join(g.Generate(), "\n")
}

// Inline returns the declaration of d without the terminating semicolon.
func Inline(d Declarator) string {
	typ, decl := d.DeclPair()
	if decl == "" {
		return typ
	}
	return typ + " " + decl
}

func declLines(d Declarator) []string {
	return []string{Inline(d) + ";"}
}

// Value declares Name with the C type spelled Type.
type Value struct {
	Type string
	Name string
}

func (v *Value) DeclPair() (string, string) { return v.Type, v.Name }
func (v *Value) Generate() []string         { return declLines(v) }

// POD returns the declaration of name with semantic type t.
func POD(t dtype.DType, name string) (*Value, error) {
	ct, err := dtype.CType(t)
	if err != nil {
		return nil, err
	}
	return &Value{Type: ct, Name: name}, nil
}

// Pointer declares a pointer to Sub's type.
type Pointer struct {
	Sub Declarator
}

func (p *Pointer) DeclPair() (string, string) {
	typ, decl := p.Sub.DeclPair()
	return typ, "*" + decl
}
func (p *Pointer) Generate() []string { return declLines(p) }

// RestrictPointer declares a restrict qualified pointer to Sub's type.
type RestrictPointer struct {
	Sub Declarator
}

func (p *RestrictPointer) DeclPair() (string, string) {
	typ, decl := p.Sub.DeclPair()
	return typ, "*restrict " + decl
}
func (p *RestrictPointer) Generate() []string { return declLines(p) }

// ArrayOf declares an array of Count elements of Sub's type. An empty Count
// leaves the size to the initializer.
type ArrayOf struct {
	Sub   Declarator
	Count string
}

func (a *ArrayOf) DeclPair() (string, string) {
	typ, decl := a.Sub.DeclPair()
	return typ, decl + "[" + a.Count + "]"
}
func (a *ArrayOf) Generate() []string { return declLines(a) }

// AddressSpace is an OpenCL address space qualifier.
type AddressSpace uint8

const (
	NoAddressSpace AddressSpace = iota
	Constant
	Global
	Local
	Private
)

var spaceNames = [...]string{
	NoAddressSpace: "",
	Constant:       "__constant",
	Global:         "__global",
	Local:          "__local",
	Private:        "__private",
}

func (s AddressSpace) String() string {
	if int(s) < len(spaceNames) {
		return spaceNames[s]
	}
	return "AddressSpace(?)"
}

// ParseAddressSpace accepts the qualifier with or without its leading
// underscores: "constant" and "__constant" are the same space.
func ParseAddressSpace(s string) (AddressSpace, bool) {
	s = "__" + strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "__")
	for i, name := range spaceNames {
		if name != "" && name == s {
			return AddressSpace(i), true
		}
	}
	return NoAddressSpace, false
}

// Qualified places Sub in an address space.
type Qualified struct {
	Space AddressSpace
	Sub   Declarator
}

func (q *Qualified) DeclPair() (string, string) {
	typ, decl := q.Sub.DeclPair()
	if q.Space == NoAddressSpace {
		return typ, decl
	}
	return q.Space.String() + " " + typ, decl
}
func (q *Qualified) Generate() []string { return declLines(q) }

func CLConstant(d Declarator) *Qualified { return &Qualified{Space: Constant, Sub: d} }
func CLGlobal(d Declarator) *Qualified   { return &Qualified{Space: Global, Sub: d} }
func CLLocal(d Declarator) *Qualified    { return &Qualified{Space: Local, Sub: d} }
func CLPrivate(d Declarator) *Qualified  { return &Qualified{Space: Private, Sub: d} }

// Initializer declares Decl with initial value Data.
type Initializer struct {
	Decl Declarator
	Data string
}

func (in *Initializer) Generate() []string {
	return []string{Inline(in.Decl) + " = " + in.Data + ";"}
}

// Statement is a single C statement, the semicolon is added.
type Statement string

func (s Statement) Generate() []string { return []string{string(s) + ";"} }

// Assign is an assignment statement.
type Assign struct {
	LValue, RValue string
}

func (a *Assign) Generate() []string { return []string{a.LValue + " = " + a.RValue + ";"} }

// Line is verbatim text. An empty Line is a blank line.
type Line string

func (l Line) Generate() []string { return []string{string(l)} }

// LineComment is a // comment.
type LineComment string

func (c LineComment) Generate() []string { return []string{"// " + string(c)} }

// Block is a brace enclosed list of nodes.
type Block struct {
	Contents []Generable
}

func (b *Block) Append(g ...Generable) { b.Contents = append(b.Contents, g...) }

func (b *Block) Generate() []string {
	lines := []string{"{"}
	for _, g := range b.Contents {
		for _, line := range g.Generate() {
			lines = append(lines, indentLine(line))
		}
	}
	return append(lines, "}")
}

func indentLine(line string) string {
	if line == "" {
		return line
	}
	return indent + line
}

// body generates the lines of a nested statement: blocks stay at the
// current level, single statements are indented.
func body(g Generable) []string {
	lines := g.Generate()
	if _, isBlock := g.(*Block); isBlock {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = indentLine(line)
	}
	return out
}

// If is a conditional with an optional else branch. An If in the else
// branch generates an else if chain.
type If struct {
	Cond string
	Then Generable
	Else Generable // may be nil.
}

func (n *If) Generate() []string {
	then := n.Then
	if _, nested := then.(*If); nested && n.Else != nil {
		// Keep the else attached to this if.
		then = &Block{Contents: []Generable{then}}
	}
	lines := append([]string{"if (" + n.Cond + ")"}, body(then)...)
	if n.Else == nil {
		return lines
	}
	if elseIf, ok := n.Else.(*If); ok {
		chain := elseIf.Generate()
		lines = append(lines, "else "+chain[0])
		return append(lines, chain[1:]...)
	}
	lines = append(lines, "else")
	return append(lines, body(n.Else)...)
}

// For is a C for loop.
type For struct {
	Start, Cond, Update string
	Body                Generable
}

func (f *For) Generate() []string {
	return append([]string{"for (" + f.Start + "; " + f.Cond + "; " + f.Update + ")"}, body(f.Body)...)
}

// While is a C while loop.
type While struct {
	Cond string
	Body Generable
}

func (w *While) Generate() []string {
	return append([]string{"while (" + w.Cond + ")"}, body(w.Body)...)
}

// FunctionDeclaration declares a function named by Decl taking Args.
type FunctionDeclaration struct {
	Decl Declarator
	Args []Declarator
}

func (fd *FunctionDeclaration) DeclPair() (string, string) {
	typ, decl := fd.Decl.DeclPair()
	args := make([]string, len(fd.Args))
	for i, arg := range fd.Args {
		args[i] = Inline(arg)
	}
	return typ, decl + "(" + strings.Join(args, ", ") + ")"
}
func (fd *FunctionDeclaration) Generate() []string { return declLines(fd) }

// FunctionBody is a function definition.
type FunctionBody struct {
	FDecl *FunctionDeclaration
	Body  *Block
}

func (fb *FunctionBody) Generate() []string {
	return append([]string{Inline(fb.FDecl)}, fb.Body.Generate()...)
}

// Module is a sequence of top level nodes.
type Module struct {
	Contents []Generable
}

func (m *Module) Append(g ...Generable) { m.Contents = append(m.Contents, g...) }

func (m *Module) Generate() []string {
	var lines []string
	for _, g := range m.Contents {
		lines = append(lines, g.Generate()...)
	}
	return lines
}

// BlockIfNecessary returns the only node of contents, or a block holding them.
func BlockIfNecessary(contents []Generable) Generable {
	if len(contents) == 1 {
		return contents[0]
	}
	return &Block{Contents: contents}
}

// CondBlock is one branch of an if chain.
type CondBlock struct {
	Cond  string
	Block Generable
}

// MakeMultipleIfs chains branches into nested ifs, each one the else branch
// of the previous. base, which may be nil, is the final else branch.
func MakeMultipleIfs(branches []CondBlock, base Generable) Generable {
	for i := len(branches) - 1; i >= 0; i-- {
		base = &If{Cond: branches[i].Cond, Then: branches[i].Block, Else: base}
	}
	return base
}
