package fortran

import (
	"strconv"
	"strings"

	"github.com/1912158597-george/pyopencl/ast"
	"github.com/1912158597-george/pyopencl/dtype"
	"github.com/1912158597-george/pyopencl/symbol"
	"github.com/1912158597-george/pyopencl/token"
)

// ParseExpr parses a Fortran expression into an expression tree.
//
// scope decides how name(...) is read: a name the scope already knows is an
// array subscript, any other name is a function call. Bare names are marked
// referenced in scope, call forms are not. scope may be nil, in which case
// every parenthesized name is a call.
//
// Malformed text yields a *ParseError. Well formed text that cannot be
// represented, such as a character constant, yields a *TranslationError.
func ParseExpr(text string, scope *symbol.Scope) (ast.Expression, error) {
	toks, err := tokenizeExpr(text)
	if err != nil {
		return nil, err
	}
	ep := exprParser{toks: toks, text: text, scope: scope}
	expr := ep.parseEquiv()
	if ep.err != nil {
		return nil, ep.err
	}
	if cur := ep.current(); cur.tok != token.EOF {
		if cur.tok == token.RParen {
			return nil, ep.errorAt(cur, "unbalanced parentheses")
		}
		return nil, ep.errorAt(cur, "unexpected "+describe(cur)+" after expression")
	}
	return expr, nil
}

func tokenizeExpr(text string) ([]toktuple, error) {
	var l Lexer90
	err := l.Reset("", 0, strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	var toks []toktuple
	for {
		tok, start, lit := l.NextToken()
		switch tok {
		case token.EOF, token.LineComment:
			return append(toks, toktuple{tok: token.EOF, start: len(text), col: len(text) + 1}), nil
		case token.Illegal:
			msg := "illegal token"
			if l.Err() != nil {
				msg = l.Err().Error()
			}
			return nil, &ParseError{sp: sourcePos{Col: start + 1, Pos: start}, msg: msg}
		}
		toks = append(toks, toktuple{tok: tok, start: start, lit: string(lit), col: start + 1})
	}
}

type exprParser struct {
	toks  []toktuple
	i     int
	text  string
	scope *symbol.Scope
	err   error // first error found, parsing stops producing nodes after it.
}

func (ep *exprParser) current() toktuple {
	if ep.i < len(ep.toks) {
		return ep.toks[ep.i]
	}
	return ep.toks[len(ep.toks)-1]
}

func (ep *exprParser) next() {
	if ep.i < len(ep.toks)-1 {
		ep.i++
	}
}

func (ep *exprParser) is(tok token.Token) bool {
	return ep.err == nil && ep.current().tok == tok
}

func (ep *exprParser) errorAt(tt toktuple, msg string) error {
	return &ParseError{sp: sourcePos{Col: tt.col, Pos: tt.start}, msg: msg}
}

func (ep *exprParser) fail(err error) ast.Expression {
	if ep.err == nil {
		ep.err = err
	}
	return nil
}

func (ep *exprParser) failAt(tt toktuple, msg string) ast.Expression {
	return ep.fail(ep.errorAt(tt, msg))
}

func describe(tt toktuple) string {
	switch tt.tok {
	case token.EOF:
		return "end of expression"
	case token.Identifier, token.IntLit, token.FloatLit:
		return strconv.Quote(tt.lit)
	}
	return tt.tok.String()
}

// isName reports whether tt can be read as a variable or function name.
// Keywords are not reserved in Fortran.
func isName(tt toktuple) bool {
	return tt.tok == token.Identifier || tt.tok.IsKeyword()
}

func (ep *exprParser) parseEquiv() ast.Expression {
	x := ep.parseOr()
	for ep.is(token.EQV) || ep.is(token.NEQV) {
		op := "=="
		if ep.current().tok == token.NEQV {
			op = "!="
		}
		ep.next()
		y := ep.parseOr()
		x = &ast.Comparison{Op: op, X: x, Y: y}
	}
	return x
}

func (ep *exprParser) parseOr() ast.Expression {
	x := ep.parseAnd()
	if !ep.is(token.OR) {
		return x
	}
	terms := []ast.Expression{x}
	for ep.is(token.OR) {
		ep.next()
		terms = append(terms, ep.parseAnd())
	}
	return &ast.LogicalOr{Terms: terms}
}

func (ep *exprParser) parseAnd() ast.Expression {
	x := ep.parseComparison()
	if !ep.is(token.AND) {
		return x
	}
	terms := []ast.Expression{x}
	for ep.is(token.AND) {
		ep.next()
		terms = append(terms, ep.parseComparison())
	}
	return &ast.LogicalAnd{Terms: terms}
}

var relationalOps = map[token.Token]string{
	token.EQ: "==", token.EqEq: "==",
	token.NE: "!=", token.NotEquals: "!=",
	token.LT: "<", token.Less: "<",
	token.LE: "<=", token.LessEq: "<=",
	token.GT: ">", token.Greater: ">",
	token.GE: ">=", token.GreaterEq: ">=",
}

// parseComparison parses at most one relational operation; relational
// operators do not chain.
func (ep *exprParser) parseComparison() ast.Expression {
	x := ep.parseUnaryLogical()
	if ep.err != nil {
		return nil
	}
	op, ok := relationalOps[ep.current().tok]
	if !ok {
		return x
	}
	ep.next()
	y := ep.parseUnaryLogical()
	return &ast.Comparison{Op: op, X: x, Y: y}
}

// parseUnaryLogical parses .NOT. applied to an arithmetic operand, so that
// .NOT. binds tighter than the relational operators.
func (ep *exprParser) parseUnaryLogical() ast.Expression {
	if ep.is(token.NOT) {
		ep.next()
		return &ast.LogicalNot{X: ep.parseUnaryLogical()}
	}
	return ep.parseAdditive()
}

func (ep *exprParser) parseAdditive() ast.Expression {
	var terms []ast.Expression
	negate := false
	if ep.is(token.Plus) || ep.is(token.Minus) {
		negate = ep.current().tok == token.Minus
		ep.next()
	}
	first := ep.parseMultiplicative()
	if negate {
		first = &ast.Neg{X: first}
	}
	terms = append(terms, first)
	for ep.is(token.Plus) || ep.is(token.Minus) {
		negate = ep.current().tok == token.Minus
		ep.next()
		term := ep.parseMultiplicative()
		if negate {
			term = &ast.Neg{X: term}
		}
		terms = append(terms, term)
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return &ast.Sum{Terms: terms}
}

func collapseProduct(factors []ast.Expression) ast.Expression {
	if len(factors) == 1 {
		return factors[0]
	}
	return &ast.Product{Factors: factors}
}

// parseMultiplicative parses a left associative chain of * and /. A division
// closes the product accumulated so far as its numerator.
func (ep *exprParser) parseMultiplicative() ast.Expression {
	factors := []ast.Expression{ep.parseFactor()}
	for ep.is(token.Asterisk) || ep.is(token.Slash) {
		div := ep.current().tok == token.Slash
		ep.next()
		f := ep.parseFactor()
		if div {
			factors = []ast.Expression{&ast.Quotient{Num: collapseProduct(factors), Den: f}}
		} else {
			factors = append(factors, f)
		}
	}
	return collapseProduct(factors)
}

// parseFactor accepts a sign in operand position, as in a*-b, an extension
// most compilers allow.
func (ep *exprParser) parseFactor() ast.Expression {
	if ep.is(token.Plus) || ep.is(token.Minus) {
		negate := ep.current().tok == token.Minus
		ep.next()
		x := ep.parseFactor()
		if negate {
			return &ast.Neg{X: x}
		}
		return x
	}
	return ep.parsePower()
}

func (ep *exprParser) parsePower() ast.Expression {
	base := ep.parsePrimary()
	if ep.err != nil {
		return nil
	}
	if ep.is(token.LParen) {
		return ep.failTranslation(ep.current(), "parenthesis operator only works on names")
	}
	if !ep.is(token.DoubleStar) {
		return base
	}
	ep.next()
	exp := ep.parseFactor() // right associative.
	return &ast.Power{Base: base, Exp: exp}
}

func (ep *exprParser) failTranslation(tt toktuple, msg string) ast.Expression {
	return ep.fail(&TranslationError{Msg: msg + " at col " + strconv.Itoa(tt.col), Stmt: ep.text})
}

func (ep *exprParser) parsePrimary() ast.Expression {
	if ep.err != nil {
		return nil
	}
	cur := ep.current()
	switch {
	case cur.tok == token.IntLit:
		ep.next()
		return ep.intLit(cur)
	case cur.tok == token.FloatLit:
		ep.next()
		return ep.realLit(cur)
	case cur.tok == token.TRUE || cur.tok == token.FALSE:
		ep.next()
		return &ast.LogicalLit{Value: cur.tok == token.TRUE}
	case cur.tok == token.StringLit:
		return ep.failTranslation(cur, "character constants are unsupported")
	case cur.tok == token.LParen:
		return ep.parseParen()
	case isName(cur):
		ep.next()
		if ep.current().tok == token.LParen {
			return ep.parseApplication(cur.lit)
		}
		if ep.scope != nil {
			ep.scope.MarkReferenced(cur.lit)
		}
		return &ast.Var{Name: cur.lit}
	case cur.tok == token.EOF:
		return ep.failAt(cur, "unexpected end of expression")
	case cur.tok == token.RParen:
		return ep.failAt(cur, "unbalanced parentheses")
	}
	return ep.failAt(cur, "unexpected "+describe(cur))
}

// parseApplication parses name(...) once the name has been consumed.
func (ep *exprParser) parseApplication(name string) ast.Expression {
	open := ep.current()
	ep.next()
	var args []ast.Expression
	if !ep.is(token.RParen) {
		for {
			args = append(args, ep.parseEquiv())
			if !ep.is(token.Comma) {
				break
			}
			ep.next()
		}
	}
	if ep.err != nil {
		return nil
	}
	if !ep.is(token.RParen) {
		if ep.current().tok == token.EOF {
			return ep.failAt(open, "unbalanced parentheses")
		}
		return ep.failAt(ep.current(), "expected ',' or ')' in argument list, got "+describe(ep.current()))
	}
	ep.next()
	if ep.scope != nil && ep.scope.IsKnown(name) {
		if len(args) == 0 {
			return ep.failAt(open, "empty subscript of "+name)
		}
		return &ast.Subscript{Name: name, Indices: args}
	}
	if (name == "mod" || name == "amod" || name == "dmod") && len(args) == 2 {
		return &ast.Remainder{Num: args[0], Den: args[1]}
	}
	return &ast.FuncCall{Name: name, Args: args}
}

// parseParen parses a parenthesized expression or a complex constant.
func (ep *exprParser) parseParen() ast.Expression {
	open := ep.current()
	ep.next()
	x := ep.parseEquiv()
	if ep.err != nil {
		return nil
	}
	if ep.is(token.Comma) {
		ep.next()
		im := ep.parseEquiv()
		if ep.err != nil {
			return nil
		}
		if !ep.is(token.RParen) {
			return ep.failAt(open, "unbalanced parentheses")
		}
		ep.next()
		return ep.complexLit(open, x, im)
	}
	if !ep.is(token.RParen) {
		if ep.current().tok == token.EOF {
			return ep.failAt(open, "unbalanced parentheses")
		}
		return ep.failAt(ep.current(), "expected ')', got "+describe(ep.current()))
	}
	ep.next()
	return x
}

func (ep *exprParser) complexLit(open toktuple, re, im ast.Expression) ast.Expression {
	reType, ok1 := constantPartType(re)
	imType, ok2 := constantPartType(im)
	if !ok1 || !ok2 {
		return ep.failAt(open, "complex constant parts must be numeric literals")
	}
	typ := dtype.Complex64
	if reType == dtype.Float64 || imType == dtype.Float64 {
		typ = dtype.Complex128
	}
	return &ast.ComplexLit{Re: re, Im: im, Type: typ}
}

// constantPartType returns the type of an optionally negated numeric literal.
func constantPartType(x ast.Expression) (dtype.DType, bool) {
	if neg, ok := x.(*ast.Neg); ok {
		x = neg.X
	}
	switch x := x.(type) {
	case *ast.IntLit:
		return x.Type, true
	case *ast.RealLit:
		return x.Type, true
	}
	return dtype.Invalid, false
}

func (ep *exprParser) intLit(tt toktuple) ast.Expression {
	v, err := parseIntLit(tt.lit)
	if err != nil {
		return ep.failAt(tt, err.Error())
	}
	_, kind, _ := strings.Cut(tt.lit, "_")
	typ := dtype.Int32
	switch kind {
	case "":
		if v > 1<<31-1 {
			typ = dtype.Int64
		}
	case "1":
		typ = dtype.Int8
	case "2":
		typ = dtype.Int16
	case "4":
	case "8":
		typ = dtype.Int64
	}
	return &ast.IntLit{Value: v, Type: typ}
}

// parseIntLit parses an integer literal with an optional kind suffix (1_8).
func parseIntLit(lit string) (int64, error) {
	digits, kind, hasKind := strings.Cut(lit, "_")
	if hasKind {
		switch kind {
		case "1", "2", "4", "8":
		default:
			return 0, &ParseError{msg: "unsupported integer kind " + strconv.Quote(kind)}
		}
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, &ParseError{msg: "invalid integer literal " + strconv.Quote(lit)}
	}
	return v, nil
}

func (ep *exprParser) realLit(tt toktuple) ast.Expression {
	lit, err := parseRealLit(tt.lit)
	if err != nil {
		return ep.failAt(tt, err.Error())
	}
	return lit
}

// parseRealLit types a real literal by its exponent letter or kind suffix
// and computes its C spelling: D exponents become e, zero exponents are
// dropped and a bare trailing or leading '.' gets a zero digit.
func parseRealLit(lit string) (*ast.RealLit, error) {
	body, kind, hasKind := strings.Cut(lit, "_")
	typ := dtype.Float32
	if hasKind {
		switch kind {
		case "4":
		case "8":
			typ = dtype.Float64
		default:
			return nil, &ParseError{msg: "unsupported real kind " + strconv.Quote(kind)}
		}
	}
	mantissa, exp := body, ""
	if i := strings.IndexAny(body, "eEdDqQ"); i >= 0 {
		mantissa, exp = body[:i], body[i+1:]
		switch body[i] {
		case 'd', 'D':
			typ = dtype.Float64
		case 'q', 'Q':
			return nil, &ParseError{msg: "quad precision literal " + strconv.Quote(lit) + " is unsupported"}
		}
	}
	if strings.HasPrefix(mantissa, ".") {
		mantissa = "0" + mantissa
	}
	if strings.HasSuffix(mantissa, ".") {
		mantissa += "0"
	}
	text := mantissa
	if exp != "" {
		n, err := strconv.Atoi(exp)
		if err != nil {
			return nil, &ParseError{msg: "invalid exponent in " + strconv.Quote(lit)}
		}
		if n != 0 {
			text += "e" + strconv.Itoa(n)
		}
	}
	if !strings.ContainsAny(text, ".e") {
		text += ".0"
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, &ParseError{msg: "invalid real literal " + strconv.Quote(lit)}
	}
	return &ast.RealLit{Value: v, Text: text, Type: typ}, nil
}
