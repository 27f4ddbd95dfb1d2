package fortran

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/1912158597-george/pyopencl/ast"
	"github.com/1912158597-george/pyopencl/cgen"
	"github.com/1912158597-george/pyopencl/dtype"
	"github.com/1912158597-george/pyopencl/symbol"
)

// Translator lowers a parsed statement tree to an OpenCL C module. Every
// subroutine becomes a void function taking its arguments by pointer.
type Translator struct {
	source      string
	hints       map[ArgKey]cgen.AddressSpace
	casts       map[CastKey]string
	logger      *slog.Logger
	stack       symbol.Stack
	em          *exprMapper // mapper of the innermost open scope.
	warnings    []Warning
	currentStmt ast.Statement
}

// Reset prepares the translator for a new source, discarding all scopes and
// warnings of a previous run.
func (tr *Translator) Reset(opts *Options) {
	*tr = Translator{
		source: opts.SourceName,
		hints:  opts.AddrSpaceHints,
		casts:  opts.ForceCasts,
		logger: opts.Logger,
	}
	if tr.logger == nil {
		tr.logger = slog.New(slog.DiscardHandler)
	}
}

// Warnings returns the diagnostics collected so far.
func (tr *Translator) Warnings() []Warning { return tr.warnings }

// Scopes returns the scope of every translated subroutine in source order.
func (tr *Translator) Scopes() []*symbol.Scope {
	return lo.Filter(tr.stack.All(), func(s *symbol.Scope, _ int) bool { return s.Name() != "" })
}

func (tr *Translator) pushScope(name string, args []string) {
	tr.stack.Push(name, args)
	tr.em = newExprMapper(tr.stack.Top())
}

func (tr *Translator) popScope() {
	tr.stack.Pop()
	if top := tr.stack.Top(); top != nil {
		tr.em = newExprMapper(top)
	} else {
		tr.em = nil
	}
}

// TranslateSource returns the module holding the preamble, a forward
// declaration of every subroutine and the subroutine definitions.
func (tr *Translator) TranslateSource(src *ast.Source) (*cgen.Module, error) {
	tr.pushScope("", nil)
	defer tr.popScope()
	var protos, defs []cgen.Generable
	for _, stmt := range src.Body {
		tr.currentStmt = stmt
		switch s := stmt.(type) {
		case *ast.Subroutine:
			pre, fb, err := tr.TransformSubroutine(s)
			if err != nil {
				return nil, err
			}
			if n := len(defs); n > 0 {
				if _, commented := defs[n-1].(cgen.LineComment); !commented {
					defs = append(defs, cgen.Line(""))
				}
			}
			if len(pre) > 0 {
				defs = append(defs, pre...)
				defs = append(defs, cgen.Line(""))
			}
			protos = append(protos, fb.FDecl)
			defs = append(defs, fb)
		case *ast.Comment:
			text := strings.TrimSpace(s.Text)
			if text == "" {
				continue
			}
			if n := len(defs); n > 0 {
				if _, after := defs[n-1].(*cgen.FunctionBody); after {
					defs = append(defs, cgen.Line(""))
				}
			}
			defs = append(defs, cgen.LineComment(text))
		case *ast.Function:
			return nil, tr.makeErr(stmt, tr.errorf("FUNCTION subprograms are unsupported"))
		case *ast.Program:
			return nil, tr.makeErr(stmt, tr.errorf("PROGRAM units are unsupported"))
		default:
			return nil, tr.makeErr(stmt, tr.errorf("statement outside of a subroutine"))
		}
	}
	mod := &cgen.Module{}
	mod.Append(
		cgen.Line("#pragma OPENCL EXTENSION cl_khr_fp64 : enable"),
		cgen.Line("#include <pyopencl-complex.h>"),
		cgen.Line(""),
	)
	if len(protos) > 0 {
		mod.Append(protos...)
		mod.Append(cgen.Line(""))
	}
	mod.Append(defs...)
	return mod, nil
}

// TransformSubroutine translates sub into a function definition. pre holds
// the global constant initializers that must precede the function.
func (tr *Translator) TransformSubroutine(sub *ast.Subroutine) (pre []cgen.Generable, fb *cgen.FunctionBody, err error) {
	tr.pushScope(sub.Name, sub.Args)
	defer tr.popScope()
	tr.logger.Debug("translating subroutine", slog.String("name", sub.Name), slog.Int("line", sub.Line))

	body, err := tr.transformStatements(nil, sub.Body)
	if err != nil {
		return nil, nil, err
	}
	tr.currentStmt = sub
	pre, decls, err := tr.declarations()
	if err != nil {
		return nil, nil, tr.makeErr(sub, err)
	}
	if n := len(body); n > 0 && body[n-1] == cgen.Statement("return") {
		body = body[:n-1]
	}
	args, err := tr.argDecls(sub)
	if err != nil {
		return nil, nil, tr.makeErr(sub, err)
	}
	fb = &cgen.FunctionBody{
		FDecl: &cgen.FunctionDeclaration{
			Decl: &cgen.Value{Type: "void", Name: sub.Name},
			Args: args,
		},
		Body: &cgen.Block{Contents: slices.Concat(decls, []cgen.Generable{cgen.Line("")}, body)},
	}
	return pre, fb, nil
}

func (tr *Translator) argDecls(sub *ast.Subroutine) ([]cgen.Declarator, error) {
	scope := tr.stack.Top()
	args := make([]cgen.Declarator, 0, len(sub.Args))
	for _, arg := range sub.Args {
		typ, err := scope.ResolveType(arg)
		if err != nil {
			return nil, err
		}
		decl, err := cgen.POD(typ, arg)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", arg, err)
		}
		if space := tr.hints[ArgKey{Subprogram: sub.Name, Arg: arg}]; space != cgen.NoAddressSpace {
			args = append(args, &cgen.Qualified{Space: space, Sub: &cgen.Pointer{Sub: decl}})
		} else {
			args = append(args, &cgen.RestrictPointer{Sub: decl})
		}
	}
	return args, nil
}

// declarations returns the declarations of every name known in the current
// scope, in lexicographic order. Arrays initialized by DATA are returned in
// pre as global constants.
func (tr *Translator) declarations() (pre, decls []cgen.Generable, err error) {
	scope := tr.stack.Top()
	for _, name := range scope.KnownNames() {
		dims, shaped := scope.ResolveShape(name)
		if shaped {
			bounds, err := tr.renderDims(name, dims)
			if err != nil {
				return nil, nil, err
			}
			// Rank-1 arguments need the statement too.
			decls = append(decls, cgen.Statement(`dimension "fortran" `+scope.TranslateName(name)+"["+strings.Join(bounds, ", ")+"]"))
		}
		typ, err := scope.ResolveType(name)
		if err != nil {
			return nil, nil, err
		}
		if values, ok := scope.Initializer(name); ok {
			decl, err := cgen.POD(typ, scope.TranslateName(name))
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", name, err)
			}
			if shaped {
				pre = append(pre, &cgen.Initializer{
					Decl: cgen.CLConstant(&cgen.ArrayOf{Sub: decl}),
					Data: "{ " + strings.Join(values, ", ") + " }",
				})
			} else if len(values) != 1 {
				return nil, nil, tr.errorf("DATA gives %d values for scalar %s", len(values), name)
			} else {
				decls = append(decls, &cgen.Initializer{Decl: decl, Data: values[0]})
			}
			continue
		}
		if scope.IsParam(name) {
			continue
		}
		decl, err := cgen.POD(typ, name)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
		if shaped {
			decls = append(decls, &cgen.ArrayOf{Sub: decl, Count: "nitemsof(" + name + ")"})
		} else {
			decls = append(decls, decl)
		}
	}
	return pre, decls, nil
}

// renderDims renders dimension bounds. A bound may carry an explicit lower
// bound as in "0:n".
func (tr *Translator) renderDims(name string, dims []string) ([]string, error) {
	bounds := make([]string, len(dims))
	for i, dim := range dims {
		if strings.TrimSpace(dim) == "*" {
			return nil, tr.errorf("assumed-size dimension of %s is unsupported", name)
		}
		parts := splitTopLevel(dim, ':')
		for j, part := range parts {
			text, err := tr.expr(part)
			if err != nil {
				return nil, err
			}
			parts[j] = text
		}
		bounds[i] = strings.Join(parts, ":")
	}
	return bounds, nil
}

func (tr *Translator) declareEntities(typ dtype.DType, entities []ast.Entity, declareType bool) error {
	scope := tr.stack.Top()
	for _, ent := range entities {
		if len(ent.Dims) > 0 {
			if err := scope.DeclareShape(ent.Name, ent.Dims); err != nil {
				return err
			}
			scope.MarkReferenced(ent.Name)
		}
		if declareType {
			if err := scope.Declare(ent.Name, typ); err != nil {
				return err
			}
		}
	}
	return nil
}

func (tr *Translator) transformImplicit(s *ast.Implicit) error {
	scope := tr.stack.Top()
	if s.IsNone() {
		return scope.SetImplicitNone()
	}
	for _, rule := range s.Rules {
		typ, err := tr.typeFromSpec(rule.Type)
		if err != nil {
			return err
		}
		for _, r := range rule.Ranges {
			if err := scope.SetImplicit(r.First, r.Last, typ); err != nil {
				return err
			}
		}
	}
	return nil
}

// transformData records DATA values in the scope. A single name takes every
// value, otherwise names and values pair up one to one.
func (tr *Translator) transformData(s *ast.Data) error {
	scope := tr.stack.Top()
	for _, item := range s.Items {
		if len(item.Names) != 1 && len(item.Names) != len(item.Values) {
			return tr.errorf("DATA gives %d values for %d names", len(item.Values), len(item.Names))
		}
		for i, name := range item.Names {
			values := item.Values
			if len(item.Names) > 1 {
				values = item.Values[i : i+1]
			}
			typ, err := scope.ResolveType(name)
			if err != nil {
				return err
			}
			formatted := make([]string, len(values))
			for j, v := range values {
				formatted[j], err = tr.formatConstant(typ, v)
				if err != nil {
					return err
				}
			}
			if err := scope.RecordInitializer(name, formatted); err != nil {
				return err
			}
		}
	}
	return nil
}

// formatConstant renders a DATA value for a variable of type typ. Complex
// values are written as brace initializers.
func (tr *Translator) formatConstant(typ dtype.DType, text string) (string, error) {
	expr, err := tr.parse(text)
	if err != nil {
		return "", err
	}
	if c, ok := expr.(*ast.ComplexLit); ok {
		re, err := tr.gen(c.Re)
		if err != nil {
			return "", err
		}
		im, err := tr.gen(c.Im)
		if err != nil {
			return "", err
		}
		return "{ " + re + ", " + im + " }", nil
	}
	v, err := tr.gen(expr)
	if err != nil {
		return "", err
	}
	if typ.IsComplex() {
		return "{ " + v + ", 0 }", nil
	}
	return v, nil
}

// typeFromSpec maps a Fortran type keyword and star length to a semantic type.
func (tr *Translator) typeFromSpec(spec ast.TypeSpec) (dtype.DType, error) {
	typ, ok := typeTable[typeKey{spec.Name, spec.Length}]
	if !ok {
		return dtype.Invalid, tr.errorf("type %s is unsupported", spec.String())
	}
	return typ, nil
}

type typeKey struct {
	name, length string
}

var typeTable = map[typeKey]dtype.DType{
	{"integer", ""}:          dtype.Int32,
	{"integer", "1"}:         dtype.Int8,
	{"integer", "2"}:         dtype.Int16,
	{"integer", "4"}:         dtype.Int32,
	{"integer", "8"}:         dtype.Int64,
	{"real", ""}:             dtype.Float32,
	{"real", "4"}:            dtype.Float32,
	{"real", "8"}:            dtype.Float64,
	{"double precision", ""}: dtype.Float64,
	{"complex", ""}:          dtype.Complex64,
	{"complex", "8"}:         dtype.Complex64,
	{"complex", "16"}:        dtype.Complex128,
	{"double complex", ""}:   dtype.Complex128,
	{"logical", ""}:          dtype.Int32,
	{"logical", "4"}:         dtype.Int32,
	{"logical", "1"}:         dtype.Int8,
}

// splitTopLevel splits text at every sep outside of parentheses.
func splitTopLevel(text string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, text[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, text[start:])
}

func (tr *Translator) parse(text string) (ast.Expression, error) {
	expr, err := ParseExpr(text, tr.stack.Top())
	if err != nil {
		return nil, tr.locate(err, text)
	}
	return expr, nil
}

func (tr *Translator) gen(expr ast.Expression) (string, error) {
	return tr.em.render(expr, precNone)
}

// expr parses and renders text in the current scope.
func (tr *Translator) expr(text string) (string, error) {
	expr, err := tr.parse(text)
	if err != nil {
		return "", err
	}
	return tr.gen(expr)
}

// locate places expression parse errors on the line of the current statement.
func (tr *Translator) locate(err error, text string) error {
	var pe *ParseError
	if errors.As(err, &pe) && tr.currentStmt != nil {
		pe.locate(tr.source, tr.currentStmt.Info().Line, text)
	}
	return err
}

func (tr *Translator) errorf(format string, args ...any) error {
	return &TranslationError{Msg: fmt.Sprintf(format, args...)}
}

// makeErr attaches the line and text of stmt to err. Parse errors keep their
// type; everything else surfaces as a [TranslationError].
func (tr *Translator) makeErr(stmt ast.Statement, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	line := stmt.Info().Line
	text := string(stmt.AppendString(nil))
	var te *TranslationError
	if errors.As(err, &te) {
		if te.Line == 0 {
			te.Line, te.Stmt = line, text
		}
		return err
	}
	return &TranslationError{Line: line, Stmt: text, Err: err}
}
