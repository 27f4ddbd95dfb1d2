package fortran

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1912158597-george/pyopencl/ast"
	"github.com/1912158597-george/pyopencl/dtype"
	"github.com/1912158597-george/pyopencl/intrinsic"
	"github.com/1912158597-george/pyopencl/symbol"
)

// C operator precedence, higher binds tighter.
const (
	precNone = iota
	precLogicalOr
	precLogicalAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
)

// exprMapper renders expression trees as OpenCL C text.
type exprMapper struct {
	scope *symbol.Scope
	ti    typeInferrer
	// deref reports whether an argument is passed by pointer and must be
	// dereferenced when read. nil dereferences every argument.
	deref func(name string) bool
}

func newExprMapper(scope *symbol.Scope) *exprMapper {
	return &exprMapper{scope: scope, ti: typeInferrer{scope: scope}}
}

// translate parses text in the mapper's scope and renders it.
func (m *exprMapper) translate(text string) (string, error) {
	expr, err := ParseExpr(text, m.scope)
	if err != nil {
		return "", err
	}
	return m.render(expr, precNone)
}

func (m *exprMapper) infer(expr ast.Expression) (dtype.DType, error) {
	return m.ti.infer(expr)
}

// render returns the C text of expr, parenthesized if it binds looser than enclosing.
func (m *exprMapper) render(expr ast.Expression, enclosing int) (string, error) {
	text, prec, err := m.renderPrec(expr)
	if err != nil {
		return "", err
	}
	if prec < enclosing {
		text = "(" + text + ")"
	}
	return text, nil
}

func (m *exprMapper) renderPrec(expr ast.Expression) (string, int, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return strconv.FormatInt(e.Value, 10), precPostfix, nil
	case *ast.RealLit:
		if e.Type == dtype.Float32 {
			return e.Text + "f", precPostfix, nil
		}
		return e.Text, precPostfix, nil
	case *ast.ComplexLit:
		return m.renderComplexLit(e)
	case *ast.LogicalLit:
		if e.Value {
			return "1", precPostfix, nil
		}
		return "0", precPostfix, nil
	case *ast.Var:
		name := m.scope.TranslateName(e.Name)
		if m.isPointer(e.Name) {
			return "*" + name, precUnary, nil
		}
		return name, precPostfix, nil
	case *ast.Subscript:
		return m.renderSubscript(e)
	case *ast.FuncCall:
		return m.renderCall(e)
	case *ast.Sum:
		return m.renderSum(e)
	case *ast.Product:
		return m.renderProduct(e)
	case *ast.Neg:
		x, err := m.render(e.X, precUnary)
		if err != nil {
			return "", 0, err
		}
		if strings.HasPrefix(x, "-") {
			x = "(" + x + ")"
		}
		return "-" + x, precUnary, nil
	case *ast.Quotient:
		return m.renderQuotient(e)
	case *ast.Remainder:
		return m.renderRemainder(e)
	case *ast.Power:
		return m.renderPower(e)
	case *ast.Comparison:
		prec := precRelational
		if e.Op == "==" || e.Op == "!=" {
			prec = precEquality
		}
		x, err := m.render(e.X, prec+1)
		if err != nil {
			return "", 0, err
		}
		y, err := m.render(e.Y, prec+1)
		if err != nil {
			return "", 0, err
		}
		return x + " " + e.Op + " " + y, prec, nil
	case *ast.LogicalAnd:
		return m.renderJoined(e.Terms, " && ", precLogicalAnd)
	case *ast.LogicalOr:
		return m.renderJoined(e.Terms, " || ", precLogicalOr)
	case *ast.LogicalNot:
		x, err := m.render(e.X, precUnary)
		if err != nil {
			return "", 0, err
		}
		return "!" + x, precUnary, nil
	}
	return "", 0, fmt.Errorf("unhandled expression %T", expr)
}

// isPointer reports whether a bare reference to name reads through a pointer:
// arguments passed by reference and shaped names.
func (m *exprMapper) isPointer(name string) bool {
	if m.scope.IsParam(name) {
		return m.deref == nil || m.deref(name)
	}
	_, shaped := m.scope.ResolveShape(name)
	return shaped
}

func (m *exprMapper) renderJoined(terms []ast.Expression, sep string, prec int) (string, int, error) {
	parts := make([]string, len(terms))
	for i, t := range terms {
		var err error
		parts[i], err = m.render(t, prec)
		if err != nil {
			return "", 0, err
		}
	}
	return strings.Join(parts, sep), prec, nil
}

func (m *exprMapper) renderComplexLit(e *ast.ComplexLit) (string, int, error) {
	ct, err := dtype.CType(e.Type)
	if err != nil {
		return "", 0, err
	}
	re, err := m.render(e.Re, precNone)
	if err != nil {
		return "", 0, err
	}
	im, err := m.render(e.Im, precNone)
	if err != nil {
		return "", 0, err
	}
	return "(" + ct + ")(" + re + ", " + im + ")", precUnary, nil
}

func (m *exprMapper) renderSubscript(e *ast.Subscript) (string, int, error) {
	indices := make([]string, len(e.Indices))
	for i, idx := range e.Indices {
		typ, err := m.infer(idx)
		if err != nil {
			return "", 0, err
		}
		if typ.IsInteger() {
			indices[i], err = m.render(idx, precNone)
		} else {
			indices[i], err = m.render(idx, precUnary)
			indices[i] = "(int) " + indices[i]
		}
		if err != nil {
			return "", 0, err
		}
	}
	return m.scope.TranslateName(e.Name) + "[" + strings.Join(indices, ", ") + "]", precPostfix, nil
}

func (m *exprMapper) renderCall(e *ast.FuncCall) (string, int, error) {
	result, err := m.infer(e)
	if err != nil {
		return "", 0, err
	}
	c := intrinsic.Call{Name: e.Name, Result: result, Args: make([]string, len(e.Args))}
	c.ArgTypes, err = m.ti.inferAll(e.Args)
	if err != nil {
		return "", 0, err
	}
	for i, arg := range e.Args {
		c.Args[i], err = m.render(arg, precNone)
		if err != nil {
			return "", 0, err
		}
	}
	text, err := intrinsic.Render(c)
	if err != nil {
		return "", 0, err
	}
	return text, precUnary, nil
}

// renderAs renders expr for use where a value of complex type to is
// expected, widening narrower complex values.
func (m *exprMapper) renderAs(expr ast.Expression, to dtype.DType, enclosing int) (string, error) {
	from, err := m.infer(expr)
	if err != nil {
		return "", err
	}
	if from.IsComplex() && to.IsComplex() && from != to {
		x, err := m.render(expr, precNone)
		if err != nil {
			return "", err
		}
		return dtype.ComplexPrefix(to) + "_cast(" + x + ")", nil
	}
	return m.render(expr, enclosing)
}

func (m *exprMapper) renderSum(e *ast.Sum) (string, int, error) {
	typ, err := m.infer(e)
	if err != nil {
		return "", 0, err
	}
	if typ.IsComplex() {
		return m.renderComplexSum(e, typ)
	}
	var b strings.Builder
	for i, term := range e.Terms {
		if neg, ok := term.(*ast.Neg); ok && i > 0 {
			x, err := m.render(neg.X, precMultiplicative)
			if err != nil {
				return "", 0, err
			}
			b.WriteString(" - ")
			b.WriteString(x)
			continue
		}
		x, err := m.render(term, precAdditive)
		if err != nil {
			return "", 0, err
		}
		if i > 0 {
			b.WriteString(" + ")
		}
		b.WriteString(x)
	}
	return b.String(), precAdditive, nil
}

// renderComplexSum gathers the real terms into one <w>_fromreal(...) term and
// adds the complex terms with native vector arithmetic.
func (m *exprMapper) renderComplexSum(e *ast.Sum, typ dtype.DType) (string, int, error) {
	var realTerms, complexTerms []ast.Expression
	for _, term := range e.Terms {
		x := term
		if neg, ok := term.(*ast.Neg); ok {
			x = neg.X
		}
		t, err := m.infer(x)
		if err != nil {
			return "", 0, err
		}
		if t.IsComplex() {
			complexTerms = append(complexTerms, term)
		} else {
			realTerms = append(realTerms, term)
		}
	}
	var b strings.Builder
	if len(realTerms) > 0 {
		var realPart ast.Expression = &ast.Sum{Terms: realTerms}
		if len(realTerms) == 1 {
			realPart = realTerms[0]
		}
		x, err := m.render(realPart, precNone)
		if err != nil {
			return "", 0, err
		}
		b.WriteString(dtype.ComplexPrefix(typ) + "_fromreal(" + x + ")")
	}
	for _, term := range complexTerms {
		sep, prec := " + ", precAdditive
		if neg, ok := term.(*ast.Neg); ok {
			term, sep, prec = neg.X, " - ", precMultiplicative
		}
		x, err := m.renderAs(term, typ, prec)
		if err != nil {
			return "", 0, err
		}
		switch {
		case b.Len() > 0:
			b.WriteString(sep)
		case sep == " - ":
			b.WriteString("-")
			if strings.HasPrefix(x, "-") {
				x = "(" + x + ")"
			}
		}
		b.WriteString(x)
	}
	return b.String(), precAdditive, nil
}

func (m *exprMapper) renderProduct(e *ast.Product) (string, int, error) {
	typ, err := m.infer(e)
	if err != nil {
		return "", 0, err
	}
	var realFactors, complexFactors []ast.Expression
	for _, f := range e.Factors {
		t, err := m.infer(f)
		if err != nil {
			return "", 0, err
		}
		if t.IsComplex() {
			complexFactors = append(complexFactors, f)
		} else {
			realFactors = append(realFactors, f)
		}
	}
	if !typ.IsComplex() {
		return m.renderFactors(e.Factors)
	}
	// Complex factors multiply through the helper, real factors scale natively.
	var chain string
	for i, f := range complexFactors {
		x, err := m.renderAs(f, typ, precNone)
		if err != nil {
			return "", 0, err
		}
		if i == 0 {
			chain = x
			continue
		}
		chain = dtype.ComplexPrefix(typ) + "_mul(" + chain + ", " + x + ")"
	}
	if len(realFactors) == 0 {
		if len(complexFactors) == 1 {
			return m.renderPrec(complexFactors[0])
		}
		return chain, precPostfix, nil
	}
	scale, _, err := m.renderFactors(realFactors)
	if err != nil {
		return "", 0, err
	}
	if len(complexFactors) == 1 {
		chain, err = m.renderAs(complexFactors[0], typ, precUnary)
		if err != nil {
			return "", 0, err
		}
	}
	return scale + " * " + chain, precMultiplicative, nil
}

func (m *exprMapper) renderFactors(factors []ast.Expression) (string, int, error) {
	parts := make([]string, len(factors))
	for i, f := range factors {
		prec := precUnary
		if i == 0 {
			prec = precMultiplicative
		}
		var err error
		parts[i], err = m.render(f, prec)
		if err != nil {
			return "", 0, err
		}
	}
	if len(parts) == 1 {
		return parts[0], precMultiplicative, nil
	}
	return strings.Join(parts, " * "), precMultiplicative, nil
}

func (m *exprMapper) renderQuotient(e *ast.Quotient) (string, int, error) {
	typ, err := m.infer(e)
	if err != nil {
		return "", 0, err
	}
	numType, err := m.infer(e.Num)
	if err != nil {
		return "", 0, err
	}
	denType, err := m.infer(e.Den)
	if err != nil {
		return "", 0, err
	}
	if denType.IsComplex() {
		helper := "_rdivide("
		if numType.IsComplex() {
			helper = "_divide("
		}
		num, err := m.renderAs(e.Num, typ, precNone)
		if err != nil {
			return "", 0, err
		}
		den, err := m.renderAs(e.Den, typ, precNone)
		if err != nil {
			return "", 0, err
		}
		return dtype.ComplexPrefix(typ) + helper + num + ", " + den + ")", precPostfix, nil
	}
	num, err := m.renderAs(e.Num, typ, precMultiplicative)
	if err != nil {
		return "", 0, err
	}
	den, err := m.render(e.Den, precUnary)
	if err != nil {
		return "", 0, err
	}
	return num + " / " + den, precMultiplicative, nil
}

func (m *exprMapper) renderRemainder(e *ast.Remainder) (string, int, error) {
	typ, err := m.infer(e)
	if err != nil {
		return "", 0, err
	}
	if typ.IsComplex() {
		return "", 0, &TranslationError{Msg: "mod of complex operands is undefined"}
	}
	if typ.IsInteger() {
		num, err := m.render(e.Num, precMultiplicative)
		if err != nil {
			return "", 0, err
		}
		den, err := m.render(e.Den, precUnary)
		if err != nil {
			return "", 0, err
		}
		return num + " % " + den, precMultiplicative, nil
	}
	num, den, err := m.renderPair(e.Num, e.Den, typ)
	if err != nil {
		return "", 0, err
	}
	return "fmod(" + num + ", " + den + ")", precPostfix, nil
}

// renderPair renders the operands of a two argument real C function, casting
// operands whose type differs from typ.
func (m *exprMapper) renderPair(x, y ast.Expression, typ dtype.DType) (string, string, error) {
	var out [2]string
	for i, operand := range [2]ast.Expression{x, y} {
		t, err := m.infer(operand)
		if err != nil {
			return "", "", err
		}
		if t == typ {
			out[i], err = m.render(operand, precNone)
		} else {
			out[i], err = m.castTo(operand, typ)
		}
		if err != nil {
			return "", "", err
		}
	}
	return out[0], out[1], nil
}

func (m *exprMapper) castTo(expr ast.Expression, typ dtype.DType) (string, error) {
	ct, err := dtype.CType(typ)
	if err != nil {
		return "", err
	}
	x, err := m.render(expr, precUnary)
	if err != nil {
		return "", err
	}
	return "(" + ct + ") " + x, nil
}

func (m *exprMapper) renderPower(e *ast.Power) (string, int, error) {
	typ, err := m.infer(e)
	if err != nil {
		return "", 0, err
	}
	baseType, err := m.infer(e.Base)
	if err != nil {
		return "", 0, err
	}
	expType, err := m.infer(e.Exp)
	if err != nil {
		return "", 0, err
	}
	if typ.IsComplex() {
		return m.renderComplexPower(e, typ, baseType, expType)
	}
	switch {
	case expType.IsInteger():
		exp, err := m.render(e.Exp, precNone)
		if err != nil {
			return "", 0, err
		}
		if expType != dtype.Int32 {
			exp, err = m.castTo(e.Exp, dtype.Int32)
			if err != nil {
				return "", 0, err
			}
		}
		if !baseType.IsInteger() {
			base, err := m.render(e.Base, precNone)
			if err != nil {
				return "", 0, err
			}
			return "pown(" + base + ", " + exp + ")", precPostfix, nil
		}
		ct, err := dtype.CType(typ)
		if err != nil {
			return "", 0, err
		}
		base, err := m.castTo(e.Base, dtype.Float64)
		if err != nil {
			return "", 0, err
		}
		return "(" + ct + ") pown(" + base + ", " + exp + ")", precUnary, nil
	}
	base, exp, err := m.renderPair(e.Base, e.Exp, typ)
	if err != nil {
		return "", 0, err
	}
	return "pow(" + base + ", " + exp + ")", precPostfix, nil
}

// renderComplexPower expands small literal integer powers into chained
// multiplications and uses the pow family of helpers otherwise.
func (m *exprMapper) renderComplexPower(e *ast.Power, typ, baseType, expType dtype.DType) (string, int, error) {
	w := dtype.ComplexPrefix(typ)
	if lit, ok := e.Exp.(*ast.IntLit); ok && baseType.IsComplex() && lit.Value >= 2 && lit.Value <= 4 {
		base, err := m.renderAs(e.Base, typ, precNone)
		if err != nil {
			return "", 0, err
		}
		chain := base
		for range lit.Value - 1 {
			chain = w + "_mul(" + chain + ", " + base + ")"
		}
		return chain, precPostfix, nil
	}
	base, err := m.renderAs(e.Base, typ, precNone)
	if err != nil {
		return "", 0, err
	}
	exp, err := m.renderAs(e.Exp, typ, precNone)
	if err != nil {
		return "", 0, err
	}
	helper := "_pow("
	switch {
	case !expType.IsComplex():
		helper = "_powr("
	case !baseType.IsComplex():
		helper = "_rpow("
	}
	return w + helper + base + ", " + exp + ")", precPostfix, nil
}
