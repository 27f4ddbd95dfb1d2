package fortran

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/1912158597-george/pyopencl/ast"
	"github.com/1912158597-george/pyopencl/cgen"
	"github.com/1912158597-george/pyopencl/dtype"
)

func cLabel(label string) cgen.Line { return cgen.Line("label_" + label + ":;") }

func (tr *Translator) transformStatements(dst []cgen.Generable, stmts []ast.Statement) (_ []cgen.Generable, err error) {
	for _, stmt := range stmts {
		if label := stmt.Info().Label; label != "" {
			dst = append(dst, cLabel(label))
		}
		dst, err = tr.transformStatement(dst, stmt)
		if err != nil {
			return dst, err
		}
	}
	return dst, nil
}

func (tr *Translator) transformStatement(dst []cgen.Generable, stmt ast.Statement) (_ []cgen.Generable, err error) {
	tr.currentStmt = stmt
	scope := tr.stack.Top()
	switch s := stmt.(type) {
	// Declarations only change the scope.
	case *ast.TypeDecl:
		var typ dtype.DType
		typ, err = tr.typeFromSpec(s.Type)
		if err == nil {
			err = tr.declareEntities(typ, s.Entities, true)
		}
	case *ast.Dimension:
		err = tr.declareEntities(dtype.Invalid, s.Entities, false)
	case *ast.Implicit:
		err = tr.transformImplicit(s)
	case *ast.Data:
		err = tr.transformData(s)
	case *ast.Intrinsic:
		// Intrinsics are recognized by name.

	case *ast.Assignment:
		dst, err = tr.transformAssignment(dst, s)
	case *ast.Call:
		dst, err = tr.transformCall(dst, s)
	case *ast.If:
		dst, err = tr.transformIf(dst, s)
	case *ast.IfThen:
		dst, err = tr.transformIfThen(dst, s)
	case *ast.Do:
		dst, err = tr.transformDo(dst, s)
	case *ast.DoWhile:
		dst, err = tr.transformDoWhile(dst, s)
	case *ast.Goto:
		dst = append(dst, cgen.Statement("goto label_"+s.Target))
	case *ast.Continue:
		// Only its label, emitted by the caller.
	case *ast.Return:
		dst = append(dst, cgen.Statement("return"))
	case *ast.Comment:
		if text := strings.TrimSpace(s.Text); text != "" {
			dst = append(dst, cgen.LineComment(text))
		}
	case *ast.IO:
		tr.warn(s, fmt.Sprintf("'%s' unsupported", s.Keyword))

	case *ast.Stop:
		err = tr.errorf("STOP is unsupported")
	case *ast.ComputedGoto:
		err = tr.errorf("computed GOTO is unsupported")
	case *ast.ArithmeticIf:
		err = tr.errorf("arithmetic IF is unsupported")
	case *ast.Unsupported:
		err = tr.errorf("%s statement is unsupported", strings.ToUpper(s.Keyword))
	case *ast.Subroutine, *ast.Function, *ast.Program:
		err = tr.errorf("nested program units are unsupported")
	default:
		err = tr.errorf("unexpected statement %T in %s", stmt, scope.Name())
	}
	if err != nil {
		return dst, tr.makeErr(stmt, err)
	}
	return dst, nil
}

func (tr *Translator) warn(stmt ast.Statement, msg string) {
	line := stmt.Info().Line
	tr.warnings = append(tr.warnings, Warning{Line: line, Msg: msg})
	tr.logger.Warn(msg, slog.Int("line", line), slog.String("stmt", string(stmt.AppendString(nil))))
}

// needsRealPart reports whether assigning a value of type rhs to a variable
// of type lhs drops an imaginary part. OpenCL C has no conversion from its
// complex types, so the real part must be taken explicitly.
func needsRealPart(lhs, rhs dtype.DType) bool {
	return !lhs.IsComplex() && rhs.IsComplex()
}

func (tr *Translator) transformAssignment(dst []cgen.Generable, s *ast.Assignment) ([]cgen.Generable, error) {
	target, err := tr.parse(s.Target)
	if err != nil {
		return dst, err
	}
	switch t := target.(type) {
	case *ast.Var:
		tr.stack.Top().MarkReferenced(t.Name)
	case *ast.Subscript:
		tr.stack.Top().MarkReferenced(t.Name)
	case *ast.FuncCall:
		return dst, tr.errorf("assignment to %s(...) but %s is not an array; statement functions are unsupported", t.Name, t.Name)
	default:
		return dst, tr.errorf("cannot assign to %q", s.Target)
	}
	rhs, err := tr.parse(s.Expr)
	if err != nil {
		return dst, err
	}
	lt, err := tr.em.infer(target)
	if err != nil {
		return dst, err
	}
	rt, err := tr.em.infer(rhs)
	if err != nil {
		return dst, err
	}
	lvalue, err := tr.gen(target)
	if err != nil {
		return dst, err
	}
	var rvalue string
	switch {
	case needsRealPart(lt, rt):
		x, err := tr.gen(rhs)
		if err != nil {
			return dst, err
		}
		rvalue = dtype.ComplexPrefix(rt) + "_real(" + x + ")"
	case lt.IsComplex() && !rt.IsComplex():
		x, err := tr.gen(rhs)
		if err != nil {
			return dst, err
		}
		rvalue = dtype.ComplexPrefix(lt) + "_fromreal(" + x + ")"
	default:
		rvalue, err = tr.em.renderAs(rhs, lt, precNone)
		if err != nil {
			return dst, err
		}
	}
	return append(dst, &cgen.Assign{LValue: lvalue, RValue: rvalue}), nil
}

// transformCall passes every argument by address. A configured cast for the
// argument position is applied to the address.
func (tr *Translator) transformCall(dst []cgen.Generable, s *ast.Call) ([]cgen.Generable, error) {
	args := make([]string, len(s.Args))
	for i, arg := range s.Args {
		expr, err := tr.parse(arg)
		if err != nil {
			return dst, err
		}
		switch expr.(type) {
		case *ast.Var, *ast.Subscript:
		default:
			return dst, tr.errorf("argument %d of CALL %s (%s) has no address: only variables and array elements can be passed", i+1, s.Name, strings.TrimSpace(arg))
		}
		text, err := tr.gen(expr)
		if err != nil {
			return dst, err
		}
		text = addressOf(text)
		if cast, ok := tr.casts[CastKey{Callee: s.Name, Arg: i}]; ok {
			text = "(" + cast + ") (" + text + ")"
		}
		args[i] = text
	}
	return append(dst, cgen.Statement(s.Name+"("+strings.Join(args, ", ")+")")), nil
}

// addressOf returns the C address of the lvalue x. A dereferenced pointer
// gives back the pointer.
func addressOf(x string) string {
	if ptr, ok := strings.CutPrefix(x, "*"); ok && isIdent(ptr) {
		return ptr
	}
	return "&" + x
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func (tr *Translator) transformIf(dst []cgen.Generable, s *ast.If) ([]cgen.Generable, error) {
	cond, err := tr.expr(s.Cond)
	if err != nil {
		return dst, err
	}
	then, err := tr.transformStatement(nil, s.Stmt)
	if err != nil {
		return dst, err
	}
	tr.currentStmt = s
	return append(dst, &cgen.If{Cond: cond, Then: cgen.BlockIfNecessary(then)}), nil
}

func (tr *Translator) transformIfThen(dst []cgen.Generable, s *ast.IfThen) ([]cgen.Generable, error) {
	cond, err := tr.expr(s.Cond)
	if err != nil {
		return dst, err
	}
	body, err := tr.transformStatements(nil, s.Then)
	if err != nil {
		return dst, err
	}
	branches := []cgen.CondBlock{{Cond: cond, Block: cgen.BlockIfNecessary(body)}}
	for _, elseIf := range s.ElseIfs {
		tr.currentStmt = s
		cond, err := tr.expr(elseIf.Cond)
		if err != nil {
			return dst, err
		}
		body, err := tr.transformStatements(nil, elseIf.Body)
		if err != nil {
			return dst, err
		}
		branches = append(branches, cgen.CondBlock{Cond: cond, Block: cgen.BlockIfNecessary(body)})
	}
	var base cgen.Generable
	if s.HasElse && len(s.Else) > 0 {
		body, err := tr.transformStatements(nil, s.Else)
		if err != nil {
			return dst, err
		}
		if len(body) > 0 {
			base = cgen.BlockIfNecessary(body)
		}
	}
	tr.currentStmt = s
	return append(dst, cgen.MakeMultipleIfs(branches, base)), nil
}

// transformDo lowers "var = start, stop[, step]" to a for loop. The step
// must be an integer literal since its sign picks the loop condition.
func (tr *Translator) transformDo(dst []cgen.Generable, s *ast.Do) ([]cgen.Generable, error) {
	if s.LoopControl == "" {
		return dst, tr.errorf("unbounded DO loops are unsupported")
	}
	varText, boundsText, _ := strings.Cut(s.LoopControl, "=")
	loopVar, err := tr.parse(varText)
	if err != nil {
		return dst, err
	}
	if _, ok := loopVar.(*ast.Var); !ok {
		return dst, tr.errorf("DO variable must be a scalar name")
	}
	bounds := splitTopLevel(boundsText, ',')
	if len(bounds) < 2 || len(bounds) > 3 {
		return dst, tr.errorf("loop bounds not understood: %s", s.LoopControl)
	}
	exprs := make([]ast.Expression, len(bounds))
	for i, b := range bounds {
		if exprs[i], err = tr.parse(b); err != nil {
			return dst, err
		}
	}
	step := ast.Expression(&ast.IntLit{Value: 1, Type: dtype.Int32})
	if len(exprs) == 3 {
		step = exprs[2]
	}
	negative, ok := literalStepSign(step)
	if !ok {
		return dst, tr.errorf("non-constant steps not yet supported: %s", strings.TrimSpace(bounds[2]))
	}
	text := make([]string, 0, 4)
	for _, e := range []ast.Expression{loopVar, exprs[0], exprs[1], step} {
		t, err := tr.gen(e)
		if err != nil {
			return dst, err
		}
		text = append(text, t)
	}
	v, start, stop, inc := text[0], text[1], text[2], text[3]
	op := "<="
	if negative {
		op = ">="
	}
	body, err := tr.transformStatements(nil, s.Body)
	if err != nil {
		return dst, err
	}
	tr.currentStmt = s
	return append(dst, &cgen.For{
		Start:  v + " = " + start,
		Cond:   v + " " + op + " " + stop,
		Update: v + " += " + inc,
		Body:   cgen.BlockIfNecessary(body),
	}), nil
}

// literalStepSign reports whether step is a negative integer literal. ok is
// false if step is not an optionally negated nonzero integer literal.
func literalStepSign(step ast.Expression) (negative, ok bool) {
	switch e := step.(type) {
	case *ast.IntLit:
		return false, e.Value != 0
	case *ast.Neg:
		lit, isLit := e.X.(*ast.IntLit)
		return true, isLit && lit.Value != 0
	}
	return false, false
}

func (tr *Translator) transformDoWhile(dst []cgen.Generable, s *ast.DoWhile) ([]cgen.Generable, error) {
	cond, err := tr.expr(s.Cond)
	if err != nil {
		return dst, err
	}
	body, err := tr.transformStatements(nil, s.Body)
	if err != nil {
		return dst, err
	}
	tr.currentStmt = s
	return append(dst, &cgen.While{Cond: cond, Body: cgen.BlockIfNecessary(body)}), nil
}
