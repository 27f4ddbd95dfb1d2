package fortran

import (
	"errors"
	"strings"

	"github.com/1912158597-george/pyopencl/ast"
	"github.com/1912158597-george/pyopencl/token"
)

// Statement parsing functions, keyed by the leading keyword.
type (
	statementParseFn func() ast.Statement
)

// Parse splits src into logical lines and parses them into a statement tree.
// Expression regions (assignment sides, conditions, loop control, call
// arguments, dimension bounds) are kept as source text. Every error found
// is returned joined together.
func Parse(name, src string, freeForm, strict bool) (*ast.Source, error) {
	lines, err := readLines(name, src, freeForm, strict)
	if err != nil {
		return nil, err
	}
	var p Parser
	p.Reset(name, lines)
	tree := p.ParseSource()
	if errs := p.Errors(); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i := range errs {
			joined[i] = &errs[i]
		}
		return nil, errors.Join(joined...)
	}
	return tree, nil
}

type toktuple struct {
	tok   token.Token
	start int // byte offset in the statement text.
	lit   string
	col   int // column in the statement text.
}

// Parser builds a statement tree from logical source lines.
type Parser struct {
	l       Lexer90
	source  string
	lines   []sourceLine
	iline   int // index of the current line.
	toks    []toktuple
	itok    int
	current toktuple
	peek    toktuple
	stmtFns map[token.Token]statementParseFn
	errors  []ParseError
	maxErrs int
	// lastLabel is the label of the most recently parsed statement line,
	// used to find the end of labelled DO loops.
	lastLabel string
}

// Reset prepares the parser to parse lines read from source.
func (p *Parser) Reset(source string, lines []sourceLine) {
	if p.stmtFns == nil {
		p.stmtFns = make(map[token.Token]statementParseFn)
	}
	*p = Parser{
		l:       p.l,
		source:  source,
		lines:   lines,
		stmtFns: p.stmtFns,
		errors:  p.errors[:0],
		maxErrs: 20,
		toks:    p.toks[:0],
	}
	clear(p.stmtFns)
	p.registerStatements()
	p.loadLine()
}

func (p *Parser) registerStatements() {
	for _, tok := range []token.Token{token.INTEGER, token.REAL, token.COMPLEX, token.LOGICAL,
		token.CHARACTER, token.DOUBLE, token.DOUBLEPRECISION, token.DOUBLECOMPLEX} {
		p.registerStatement(tok, p.parseTypeDecl)
	}
	p.registerStatement(token.DIMENSION, p.parseDimension)
	p.registerStatement(token.IMPLICIT, p.parseImplicit)
	p.registerStatement(token.DATA, p.parseData)
	p.registerStatement(token.INTRINSIC, p.parseIntrinsic)
	p.registerStatement(token.CALL, p.parseCall)
	p.registerStatement(token.IF, p.parseIf)
	p.registerStatement(token.DO, p.parseDo)
	p.registerStatement(token.GOTO, p.parseGoto)
	p.registerStatement(token.CONTINUE, p.parseContinue)
	p.registerStatement(token.RETURN, p.parseReturn)
	p.registerStatement(token.STOP, p.parseStop)
	for tok := token.READ; tok <= token.FORMAT; tok++ {
		p.registerStatement(tok, p.parseIO)
	}
	for _, tok := range []token.Token{token.PARAMETER, token.EQUIVALENCE, token.COMMON,
		token.EXTERNAL, token.SAVE, token.ENTRY, token.ASSIGN, token.ALLOCATE,
		token.DEALLOCATE, token.PAUSE} {
		p.registerStatement(tok, p.parseUnsupported)
	}
}

func (p *Parser) registerStatement(tokenType token.Token, fn statementParseFn) {
	p.stmtFns[tokenType] = fn
}

// Errors returns the errors collected so far.
func (p *Parser) Errors() []ParseError {
	return p.errors
}

// IsDone returns true once all lines are consumed or too many errors were found.
func (p *Parser) IsDone() bool {
	return p.iline >= len(p.lines) || len(p.errors) >= p.maxErrs
}

func (p *Parser) line() *sourceLine {
	if p.iline >= len(p.lines) {
		return nil
	}
	return &p.lines[p.iline]
}

// advance moves to the next logical line.
func (p *Parser) advance() {
	p.iline++
	p.loadLine()
}

// loadLine tokenizes the current line.
func (p *Parser) loadLine() {
	p.toks = p.toks[:0]
	p.itok = 0
	ln := p.line()
	if ln == nil || ln.Comment {
		p.setWindow()
		return
	}
	err := p.l.Reset(p.source, ln.Line, strings.NewReader(ln.Text))
	if err != nil {
		p.addErrorAtLine(ln, 0, err.Error())
	}
	for err == nil {
		tok, start, lit := p.l.NextToken()
		if tok == token.EOF || tok == token.LineComment {
			break
		}
		_, col := p.l.TokenLineCol()
		p.toks = append(p.toks, toktuple{tok: tok, start: start, lit: string(lit), col: col})
		if tok == token.Illegal {
			// I/O statements are dropped whole, their text need not lex.
			if !p.toks[0].tok.IsIO() {
				msg := "illegal token"
				if p.l.Err() != nil {
					msg = p.l.Err().Error()
				}
				p.addErrorAtLine(ln, col, msg)
			}
			break
		}
	}
	p.setWindow()
}

func (p *Parser) setWindow() {
	p.current = p.tokAt(p.itok)
	p.peek = p.tokAt(p.itok + 1)
}

func (p *Parser) tokAt(i int) toktuple {
	if i < len(p.toks) {
		return p.toks[i]
	}
	end := 0
	if ln := p.line(); ln != nil {
		end = len(ln.Text)
	}
	return toktuple{tok: token.EOF, start: end}
}

func (p *Parser) nextToken() {
	if p.itok < len(p.toks) {
		p.itok++
	}
	p.setWindow()
}

func (p *Parser) currentTokenIs(t token.Token) bool {
	return p.current.tok == t
}

func (p *Parser) peekTokenIs(t token.Token) bool {
	return p.peek.tok == t
}

// expect checks if current token matches t, consumes it if so, and reports error if not.
func (p *Parser) expect(t token.Token, reason string) bool {
	if !p.currentTokenIs(t) {
		p.addError(reason + ": expected " + t.String() + ", got " + p.current.tok.String())
		return false
	}
	p.nextToken()
	return true
}

// consumeIf consumes the current token if it matches t, otherwise does nothing.
func (p *Parser) consumeIf(t token.Token) bool {
	if p.currentTokenIs(t) {
		p.nextToken()
		return true
	}
	return false
}

// loopUntil returns true as long as current token not in set and the statement is not exhausted.
func (p *Parser) loopUntil(t ...token.Token) bool {
	if p.current.tok == token.EOF || p.current.tok == token.Illegal {
		return false
	}
	for i := range t {
		if t[i] == p.current.tok {
			return false
		}
	}
	return true
}

func (p *Parser) canUseAsIdentifier() bool {
	return p.current.tok.CanBeUsedAsIdentifier()
}

// isWord reports whether tt is an identifier spelled w, used for
// keywords the lexer does not reserve such as GO, TO and NONE.
func isWord(tt toktuple, w string) bool {
	return tt.tok == token.Identifier && tt.lit == w
}

func (p *Parser) addErrorAtLine(ln *sourceLine, col int, msg string) {
	if ln != nil && col > 0 {
		col += ln.Col - 1
	}
	var line int
	if ln != nil {
		line = ln.Line
	}
	p.errors = append(p.errors, ParseError{
		sp:  sourcePos{Source: p.source, Line: line, Col: col, Pos: p.current.start},
		msg: msg,
	})
}

func (p *Parser) addError(msg string) {
	p.addErrorAtLine(p.line(), p.current.col, msg)
}

// textFrom returns the statement text from token start to the end of the statement.
func (p *Parser) textFrom(start int) string {
	return strings.TrimSpace(p.line().Text[start:])
}

// textBetween returns the statement text between two byte offsets.
func (p *Parser) textBetween(start, end int) string {
	return strings.TrimSpace(p.line().Text[start:end])
}

// skipToEnd consumes the remaining tokens of the statement.
func (p *Parser) skipToEnd() {
	p.itok = len(p.toks)
	p.setWindow()
}

// ParseSource parses all program units.
func (p *Parser) ParseSource() *ast.Source {
	src := &ast.Source{Name: p.source}
	for !p.IsDone() {
		ln := p.line()
		if ln.Comment {
			src.Body = append(src.Body, p.parseComment())
			continue
		}
		var unit ast.Statement
		switch {
		case p.currentTokenIs(token.SUBROUTINE):
			unit = p.parseSubroutine()
		case p.currentTokenIs(token.FUNCTION) || p.isTypedFunction():
			unit = p.parseFunction()
		case p.currentTokenIs(token.PROGRAM):
			unit = p.parseProgram()
		default:
			// Main program without a PROGRAM statement.
			prog := &ast.Program{StmtInfo: ast.StmtInfo{Line: ln.Line}}
			prog.Body = p.parseUnitBody("PROGRAM")
			unit = prog
		}
		if unit != nil {
			src.Body = append(src.Body, unit)
		}
	}
	return src
}

func (p *Parser) isTypedFunction() bool {
	if !p.current.tok.IsTypeDeclaration() {
		return false
	}
	for i, tt := range p.toks {
		if tt.tok == token.FUNCTION {
			return i+2 < len(p.toks) && p.toks[i+1].tok.CanBeUsedAsIdentifier() && p.toks[i+2].tok == token.LParen
		}
	}
	return false
}

func (p *Parser) parseSubroutine() ast.Statement {
	sub := &ast.Subroutine{StmtInfo: p.info()}
	p.nextToken() // SUBROUTINE
	sub.Name = p.parseName("SUBROUTINE")
	sub.Args = p.parseDummyArgs()
	p.endStatement("SUBROUTINE")
	sub.Body = p.parseUnitBody("SUBROUTINE")
	return sub
}

func (p *Parser) parseFunction() ast.Statement {
	fn := &ast.Function{StmtInfo: p.info()}
	if !p.currentTokenIs(token.FUNCTION) {
		spec, ok := p.parseTypeSpec(true)
		if !ok {
			p.advance()
			return nil
		}
		fn.ResultType = strings.ToLower(spec.String())
	}
	p.expect(token.FUNCTION, "function header")
	fn.Name = p.parseName("FUNCTION")
	fn.Args = p.parseDummyArgs()
	p.endStatement("FUNCTION")
	fn.Body = p.parseUnitBody("FUNCTION")
	return fn
}

func (p *Parser) parseProgram() ast.Statement {
	prog := &ast.Program{StmtInfo: p.info()}
	p.nextToken() // PROGRAM
	prog.Name = p.parseName("PROGRAM")
	p.endStatement("PROGRAM")
	prog.Body = p.parseUnitBody("PROGRAM")
	return prog
}

func (p *Parser) parseName(context string) string {
	if !p.canUseAsIdentifier() {
		p.addError(context + ": expected name, got " + p.current.tok.String())
		return ""
	}
	name := p.current.lit
	p.nextToken()
	return name
}

func (p *Parser) parseDummyArgs() []string {
	if !p.consumeIf(token.LParen) {
		return nil
	}
	args := []string{}
	for p.loopUntil(token.RParen) {
		if p.currentTokenIs(token.Asterisk) {
			p.addError("alternate return arguments are not supported")
			p.skipToEnd()
			return args
		}
		args = append(args, p.parseName("argument list"))
		if !p.consumeIf(token.Comma) && !p.currentTokenIs(token.RParen) {
			p.addError("argument list: expected ',' or ')', got " + p.current.tok.String())
			p.skipToEnd()
			return args
		}
	}
	p.expect(token.RParen, "argument list")
	return args
}

// endStatement reports leftover tokens and moves to the next line.
func (p *Parser) endStatement(context string) {
	if !p.currentTokenIs(token.EOF) && !p.currentTokenIs(token.Illegal) {
		p.addError(context + ": unexpected " + p.current.tok.String() + " " + p.current.lit)
	}
	p.advance()
}

func (p *Parser) info() ast.StmtInfo {
	ln := p.line()
	return ast.StmtInfo{Label: ln.Label, Line: ln.Line}
}

// lineKind classifies the current line for block structure purposes.
type lineKind int

const (
	kindOther lineKind = iota
	kindEnd            // END [SUBROUTINE|FUNCTION|PROGRAM [name]]
	kindEndIf
	kindEndDo
	kindElse
	kindElseIf
)

func (p *Parser) lineKind() lineKind {
	ln := p.line()
	if ln == nil || ln.Comment || p.isAssignment() {
		return kindOther
	}
	switch p.current.tok {
	case token.END:
		switch p.peek.tok {
		case token.IF:
			return kindEndIf
		case token.DO:
			return kindEndDo
		}
		return kindEnd
	case token.ENDSUBROUTINE, token.ENDFUNCTION, token.ENDPROGRAM:
		return kindEnd
	case token.ENDIF:
		return kindEndIf
	case token.ENDDO:
		return kindEndDo
	case token.ELSEIF:
		return kindElseIf
	case token.ELSE:
		if p.peekTokenIs(token.IF) {
			return kindElseIf
		}
		return kindElse
	}
	return kindOther
}

func (p *Parser) parseUnitBody(unit string) []ast.Statement {
	body := p.parseBody(func(k lineKind) bool { return k == kindEnd }, "")
	if p.line() == nil {
		p.addErrorAtLine(&p.lines[len(p.lines)-1], 0, "missing END for "+unit)
		return body
	}
	p.advance() // END line.
	return body
}

// parseBody parses statements until a line of a kind accepted by stop is
// found (left unconsumed) or, when doLabel is set, until the statement
// carrying that label has been parsed.
func (p *Parser) parseBody(stop func(lineKind) bool, doLabel string) []ast.Statement {
	var body []ast.Statement
	for !p.IsDone() {
		kind := p.lineKind()
		if stop(kind) {
			return body
		}
		stmt := p.parseStatement()
		if stmt != nil {
			body = append(body, stmt)
		}
		if doLabel != "" && p.lastLabel == doLabel {
			return body
		}
	}
	return body
}

// parseStatement parses the statement on the current line and advances past
// every line it spans.
func (p *Parser) parseStatement() ast.Statement {
	ln := p.line()
	if ln.Comment {
		p.lastLabel = ""
		return p.parseComment()
	}
	info := p.info()
	p.lastLabel = ln.Label
	switch p.lineKind() {
	case kindEnd:
		p.addError("unexpected END")
		p.advance()
		return nil
	case kindEndIf, kindElse, kindElseIf:
		p.addError("unexpected " + strings.ToUpper(p.current.lit) + " outside block IF")
		p.advance()
		return nil
	case kindEndDo:
		p.advance()
		if info.Label == "" {
			p.addErrorAtLine(ln, 1, "END DO without DO")
			return nil
		}
		// Labelled END DO terminates a labelled DO like CONTINUE.
		return &ast.Continue{StmtInfo: info}
	}
	switch p.current.tok {
	case token.SUBROUTINE, token.FUNCTION, token.PROGRAM:
		p.addError("nested program unit " + p.current.tok.String())
		p.advance()
		return nil
	}
	block := !p.isAssignment() && (p.currentTokenIs(token.DO) || (p.currentTokenIs(token.IF) && p.isBlockIf()))
	stmt := p.parseSimpleStatement()
	if block {
		// Block constructs consume their own lines.
		if stmt != nil {
			*stmt.Info() = info
		}
		return stmt
	}
	if stmt == nil {
		p.advance()
		return nil
	}
	*stmt.Info() = info
	p.endStatement(strings.ToUpper(p.toks[0].lit))
	return stmt
}

// parseSimpleStatement parses a statement starting at the current token.
// It does not consume the line.
func (p *Parser) parseSimpleStatement() ast.Statement {
	if p.isAssignment() {
		return p.parseAssignment()
	}
	if isWord(p.current, "go") && isWord(p.peek, "to") {
		p.nextToken()
		return p.parseGoto()
	}
	fn, ok := p.stmtFns[p.current.tok]
	if !ok {
		p.addError("unrecognized statement starting with " + p.current.tok.String() + " " + p.current.lit)
		p.skipToEnd()
		return nil
	}
	return fn()
}

func (p *Parser) parseComment() ast.Statement {
	ln := p.line()
	c := &ast.Comment{StmtInfo: ast.StmtInfo{Line: ln.Line}, Text: ln.Text}
	p.advance()
	return c
}

// isAssignment reports whether the tokens from the current position have
// the form name [ (...) ] = ...
func (p *Parser) isAssignment() bool {
	i := p.itok
	if i >= len(p.toks) || !p.toks[i].tok.CanBeUsedAsIdentifier() {
		return false
	}
	i++
	if i < len(p.toks) && p.toks[i].tok == token.LParen {
		end := matchParen(p.toks, i)
		if end < 0 {
			return false
		}
		i = end + 1
	}
	return i < len(p.toks) && p.toks[i].tok == token.Equals
}

// matchParen returns the index of the token closing the parenthesis at open, or -1.
func matchParen(toks []toktuple, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].tok {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits toks[from:to] on top level commas, returning the text of each part.
func (p *Parser) splitTopLevel(from, to int) []string {
	var parts []string
	depth := 0
	start := p.toks[from].start
	for i := from; i < to; i++ {
		switch p.toks[i].tok {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
		case token.Comma:
			if depth == 0 {
				parts = append(parts, p.textBetween(start, p.toks[i].start))
				start = p.toks[i+1].start
			}
		}
	}
	end := p.tokAt(to).start
	return append(parts, p.textBetween(start, end))
}

// parseParenList consumes a parenthesized list and returns its top level items as text.
func (p *Parser) parseParenList(context string) []string {
	if !p.currentTokenIs(token.LParen) {
		p.addError(context + ": expected (")
		return nil
	}
	end := matchParen(p.toks, p.itok)
	if end < 0 {
		p.addError(context + ": unbalanced parentheses")
		p.skipToEnd()
		return nil
	}
	var items []string
	if end > p.itok+1 {
		items = p.splitTopLevel(p.itok+1, end)
	}
	p.itok = end + 1
	p.setWindow()
	return items
}

func (p *Parser) parseAssignment() ast.Statement {
	start := p.current.start
	for !p.currentTokenIs(token.Equals) {
		p.nextToken()
	}
	target := p.textBetween(start, p.current.start)
	p.nextToken() // =
	if p.currentTokenIs(token.EOF) {
		p.addError("assignment: missing right hand side")
		return nil
	}
	stmt := &ast.Assignment{Target: target, Expr: p.textFrom(p.current.start)}
	p.skipToEnd()
	return stmt
}

// parseTypeSpec parses a type keyword with an optional length. allowKind
// accepts the (kind) form, which IMPLICIT cannot use since its letter ranges
// follow in parentheses.
func (p *Parser) parseTypeSpec(allowKind bool) (ast.TypeSpec, bool) {
	var spec ast.TypeSpec
	switch p.current.tok {
	case token.INTEGER, token.REAL, token.COMPLEX, token.LOGICAL, token.CHARACTER:
		spec.Name = p.current.lit
		p.nextToken()
	case token.DOUBLE:
		p.nextToken()
		switch p.current.tok {
		case token.PRECISION:
			spec.Name = "double precision"
		case token.COMPLEX:
			spec.Name = "double complex"
		default:
			p.addError("expected PRECISION or COMPLEX after DOUBLE")
			return spec, false
		}
		p.nextToken()
	case token.DOUBLEPRECISION:
		spec.Name = "double precision"
		p.nextToken()
	case token.DOUBLECOMPLEX:
		spec.Name = "double complex"
		p.nextToken()
	default:
		p.addError("expected type, got " + p.current.tok.String())
		return spec, false
	}
	if p.consumeIf(token.Asterisk) {
		switch {
		case p.currentTokenIs(token.IntLit):
			spec.Length = p.current.lit
			p.nextToken()
		case p.currentTokenIs(token.LParen):
			items := p.parseParenList("type length")
			spec.Length = strings.Join(items, ",")
		default:
			p.addError("expected length after *")
			return spec, false
		}
	} else if allowKind && p.currentTokenIs(token.LParen) {
		items := p.parseParenList("type kind")
		if len(items) != 1 {
			p.addError("expected single kind selector")
			return spec, false
		}
		kind := items[0]
		if k, v, ok := strings.Cut(kind, "="); ok && strings.EqualFold(strings.TrimSpace(k), "kind") {
			kind = strings.TrimSpace(v)
		}
		spec.Length = kind
	}
	return spec, true
}

func (p *Parser) parseTypeDecl() ast.Statement {
	spec, ok := p.parseTypeSpec(true)
	if !ok {
		p.skipToEnd()
		return nil
	}
	if p.currentTokenIs(token.Comma) {
		p.addError("type attributes are not supported")
		p.skipToEnd()
		return nil
	}
	p.consumeIf(token.DoubleColon)
	decl := &ast.TypeDecl{Type: spec}
	decl.Entities = p.parseEntities("type declaration", false)
	return decl
}

func (p *Parser) parseDimension() ast.Statement {
	p.nextToken() // DIMENSION
	p.consumeIf(token.DoubleColon)
	return &ast.Dimension{Entities: p.parseEntities("DIMENSION", true)}
}

// parseEntities parses name[(dims)][*len] items separated by commas.
func (p *Parser) parseEntities(context string, needDims bool) []ast.Entity {
	var entities []ast.Entity
	for p.loopUntil() {
		if !p.canUseAsIdentifier() {
			p.addError(context + ": expected name, got " + p.current.tok.String())
			p.skipToEnd()
			return entities
		}
		ent := ast.Entity{Name: p.current.lit}
		p.nextToken()
		if p.currentTokenIs(token.LParen) {
			ent.Dims = p.parseParenList(context)
			if len(ent.Dims) == 0 {
				p.addError(context + ": empty dimension list for " + ent.Name)
			}
		} else if needDims {
			p.addError(context + ": missing dimensions for " + ent.Name)
		}
		if p.consumeIf(token.Asterisk) {
			// Per-entity character length.
			if !p.consumeIf(token.IntLit) {
				p.parseParenList(context)
			}
		}
		if p.currentTokenIs(token.Equals) {
			p.addError(context + ": initialization in declarations is not supported")
			p.skipToEnd()
			return entities
		}
		entities = append(entities, ent)
		if !p.consumeIf(token.Comma) && !p.currentTokenIs(token.EOF) {
			p.addError(context + ": expected ',', got " + p.current.tok.String())
			p.skipToEnd()
			return entities
		}
	}
	return entities
}

func (p *Parser) parseImplicit() ast.Statement {
	p.nextToken() // IMPLICIT
	stmt := &ast.Implicit{}
	if isWord(p.current, "none") {
		p.nextToken()
		return stmt
	}
	for p.loopUntil() {
		spec, ok := p.parseTypeSpec(false)
		if !ok {
			p.skipToEnd()
			return nil
		}
		rule := ast.ImplicitRule{Type: spec}
		if !p.expect(token.LParen, "IMPLICIT") {
			p.skipToEnd()
			return nil
		}
		for p.loopUntil(token.RParen) {
			first, ok := p.parseLetter()
			if !ok {
				return nil
			}
			last := first
			if p.consumeIf(token.Minus) {
				if last, ok = p.parseLetter(); !ok {
					return nil
				}
			}
			rule.Ranges = append(rule.Ranges, ast.LetterRange{First: first, Last: last})
			if !p.consumeIf(token.Comma) && !p.currentTokenIs(token.RParen) {
				p.addError("IMPLICIT: expected ',' or ')'")
				p.skipToEnd()
				return nil
			}
		}
		if !p.expect(token.RParen, "IMPLICIT") {
			p.skipToEnd()
			return nil
		}
		stmt.Rules = append(stmt.Rules, rule)
		if !p.consumeIf(token.Comma) && !p.currentTokenIs(token.EOF) {
			p.addError("IMPLICIT: expected ',' between rules")
			p.skipToEnd()
			return nil
		}
	}
	if len(stmt.Rules) == 0 {
		p.addError("IMPLICIT: expected NONE or type rules")
		return nil
	}
	return stmt
}

func (p *Parser) parseLetter() (byte, bool) {
	lit := p.current.lit
	if p.current.tok != token.Identifier || len(lit) != 1 || lit[0] < 'a' || lit[0] > 'z' {
		p.addError("IMPLICIT: expected letter, got " + p.current.tok.String() + " " + lit)
		p.skipToEnd()
		return 0, false
	}
	p.nextToken()
	return lit[0], true
}

func (p *Parser) parseData() ast.Statement {
	p.nextToken() // DATA
	stmt := &ast.Data{}
	for p.loopUntil() {
		var item ast.DataItem
		for p.loopUntil(token.Slash) {
			if p.currentTokenIs(token.LParen) {
				p.addError("DATA: implied DO lists are not supported")
				p.skipToEnd()
				return nil
			}
			name := p.parseName("DATA")
			if name == "" {
				p.skipToEnd()
				return nil
			}
			if p.currentTokenIs(token.LParen) {
				p.addError("DATA: element initialization of " + name + " is not supported")
				p.skipToEnd()
				return nil
			}
			item.Names = append(item.Names, name)
			p.consumeIf(token.Comma)
		}
		if !p.expect(token.Slash, "DATA") {
			p.skipToEnd()
			return nil
		}
		for p.loopUntil(token.Slash) {
			repeat := 1
			if p.currentTokenIs(token.IntLit) && p.peekTokenIs(token.Asterisk) {
				n, err := parseIntLit(p.current.lit)
				if err != nil || n < 1 {
					p.addError("DATA: invalid repeat count " + p.current.lit)
					p.skipToEnd()
					return nil
				}
				repeat = int(n)
				p.nextToken()
				p.nextToken()
			}
			value, ok := p.parseDataValue()
			if !ok {
				return nil
			}
			for range repeat {
				item.Values = append(item.Values, value)
			}
			if !p.consumeIf(token.Comma) && !p.currentTokenIs(token.Slash) {
				p.addError("DATA: expected ',' or '/', got " + p.current.tok.String())
				p.skipToEnd()
				return nil
			}
		}
		if !p.expect(token.Slash, "DATA") {
			p.skipToEnd()
			return nil
		}
		stmt.Items = append(stmt.Items, item)
		p.consumeIf(token.Comma)
	}
	return stmt
}

// parseDataValue consumes one constant of a DATA value list and returns its text.
func (p *Parser) parseDataValue() (string, bool) {
	start := p.current.start
	switch {
	case p.currentTokenIs(token.LParen):
		end := matchParen(p.toks, p.itok)
		if end < 0 {
			p.addError("DATA: unbalanced parentheses")
			p.skipToEnd()
			return "", false
		}
		p.itok = end + 1
		p.setWindow()
	case p.currentTokenIs(token.Plus) || p.currentTokenIs(token.Minus):
		p.nextToken()
		if !p.currentTokenIs(token.IntLit) && !p.currentTokenIs(token.FloatLit) {
			p.addError("DATA: expected number after sign")
			p.skipToEnd()
			return "", false
		}
		p.nextToken()
	case p.currentTokenIs(token.IntLit), p.currentTokenIs(token.FloatLit),
		p.currentTokenIs(token.TRUE), p.currentTokenIs(token.FALSE):
		p.nextToken()
	default:
		p.addError("DATA: unsupported constant " + p.current.tok.String())
		p.skipToEnd()
		return "", false
	}
	return p.textBetween(start, p.current.start), true
}

func (p *Parser) parseIntrinsic() ast.Statement {
	p.nextToken() // INTRINSIC
	p.consumeIf(token.DoubleColon)
	stmt := &ast.Intrinsic{}
	for p.loopUntil() {
		stmt.Names = append(stmt.Names, p.parseName("INTRINSIC"))
		if !p.consumeIf(token.Comma) && !p.currentTokenIs(token.EOF) {
			p.addError("INTRINSIC: expected ','")
			p.skipToEnd()
		}
	}
	return stmt
}

func (p *Parser) parseCall() ast.Statement {
	p.nextToken() // CALL
	stmt := &ast.Call{Name: p.parseName("CALL")}
	if p.currentTokenIs(token.LParen) {
		stmt.Args = p.parseParenList("CALL")
	}
	return stmt
}

// isBlockIf reports whether the IF statement at the current token ends with THEN.
func (p *Parser) isBlockIf() bool {
	end := matchParen(p.toks, p.itok+1)
	return end >= 0 && end+1 < len(p.toks) && p.toks[end+1].tok == token.THEN && end+2 == len(p.toks)
}

func (p *Parser) parseIf() ast.Statement {
	p.nextToken() // IF
	if !p.currentTokenIs(token.LParen) {
		p.addError("IF: expected (")
		p.skipToEnd()
		return nil
	}
	end := matchParen(p.toks, p.itok)
	if end < 0 {
		p.addError("IF: unbalanced parentheses")
		p.skipToEnd()
		return nil
	}
	cond := p.textBetween(p.toks[p.itok+1].start, p.toks[end].start)
	if cond == "" {
		p.addError("IF: empty condition")
	}
	p.itok = end + 1
	p.setWindow()
	switch {
	case p.currentTokenIs(token.THEN) && p.peekTokenIs(token.EOF):
		return p.parseIfThen(cond)
	case p.currentTokenIs(token.IntLit) && p.peekTokenIs(token.Comma):
		return p.parseArithmeticIf(cond)
	case p.currentTokenIs(token.EOF):
		p.addError("IF: missing statement")
		return nil
	}
	switch p.current.tok {
	case token.IF, token.DO:
		p.addError("IF: " + p.current.tok.String() + " is not allowed in a logical IF")
		p.skipToEnd()
		return nil
	}
	stmt := p.parseSimpleStatement()
	if stmt == nil {
		return nil
	}
	ln := p.line()
	stmt.Info().Line = ln.Line
	return &ast.If{Cond: cond, Stmt: stmt}
}

func (p *Parser) parseArithmeticIf(expr string) ast.Statement {
	stmt := &ast.ArithmeticIf{Expr: expr}
	for i := range stmt.Labels {
		if i > 0 && !p.expect(token.Comma, "arithmetic IF") {
			return nil
		}
		if !p.currentTokenIs(token.IntLit) {
			p.addError("arithmetic IF: expected label")
			return nil
		}
		stmt.Labels[i] = p.current.lit
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseIfThen(cond string) ast.Statement {
	stmt := &ast.IfThen{Cond: cond}
	p.nextToken() // THEN
	p.endStatement("IF")
	stmt.Then = p.parseBody(func(k lineKind) bool {
		return k == kindElse || k == kindElseIf || k == kindEndIf || k == kindEnd
	}, "")
	for !p.IsDone() {
		ln := p.line()
		switch p.lineKind() {
		case kindElseIf:
			clause := ast.ElseIf{Line: ln.Line}
			if p.currentTokenIs(token.ELSE) {
				p.nextToken()
			}
			p.nextToken() // IF or ELSEIF
			if !p.currentTokenIs(token.LParen) {
				p.addError("ELSE IF: expected (")
				p.advance()
				return stmt
			}
			end := matchParen(p.toks, p.itok)
			if end < 0 || end+1 >= len(p.toks) || p.toks[end+1].tok != token.THEN {
				p.addError("ELSE IF: expected (condition) THEN")
				p.advance()
				return stmt
			}
			clause.Cond = p.textBetween(p.toks[p.itok+1].start, p.toks[end].start)
			p.itok = end + 2
			p.setWindow()
			p.endStatement("ELSE IF")
			clause.Body = p.parseBody(func(k lineKind) bool {
				return k == kindElse || k == kindElseIf || k == kindEndIf || k == kindEnd
			}, "")
			stmt.ElseIfs = append(stmt.ElseIfs, clause)
		case kindElse:
			if stmt.HasElse {
				p.addError("duplicate ELSE")
			}
			stmt.HasElse = true
			p.nextToken()
			p.endStatement("ELSE")
			stmt.Else = p.parseBody(func(k lineKind) bool {
				return k == kindElse || k == kindElseIf || k == kindEndIf || k == kindEnd
			}, "")
			if k := p.lineKind(); k == kindElse || k == kindElseIf {
				p.addError("ELSE IF or ELSE after ELSE")
				p.advance()
			}
		case kindEndIf:
			p.lastLabel = ln.Label
			p.advance()
			return stmt
		default:
			p.addError("missing END IF")
			return stmt
		}
	}
	if p.line() == nil {
		p.addErrorAtLine(&p.lines[len(p.lines)-1], 0, "missing END IF")
	}
	return stmt
}

func (p *Parser) parseDo() ast.Statement {
	p.nextToken() // DO
	var label string
	if p.currentTokenIs(token.IntLit) {
		label = p.current.lit
		p.nextToken()
		p.consumeIf(token.Comma)
	}
	var stmt ast.Statement
	if p.currentTokenIs(token.WHILE) && p.peekTokenIs(token.LParen) {
		p.nextToken()
		end := matchParen(p.toks, p.itok)
		if end < 0 || end+1 != len(p.toks) {
			p.addError("DO WHILE: expected (condition)")
			p.skipToEnd()
			p.advance()
			return nil
		}
		loop := &ast.DoWhile{TargetLabel: label, Cond: p.textBetween(p.toks[p.itok+1].start, p.toks[end].start)}
		p.skipToEnd()
		stmt = loop
	} else {
		loop := &ast.Do{TargetLabel: label}
		if !p.currentTokenIs(token.EOF) {
			loop.LoopControl = p.textFrom(p.current.start)
			if !strings.Contains(loop.LoopControl, "=") {
				p.addError("DO: expected var = start, stop[, step]")
			}
		}
		p.skipToEnd()
		stmt = loop
	}
	p.advance()
	var body []ast.Statement
	if label != "" {
		body = p.parseBody(func(k lineKind) bool { return k == kindEnd }, label)
		if p.lastLabel != label {
			p.addErrorAtLine(p.line(), 0, "DO loop terminal statement "+label+" not found")
		}
	} else {
		body = p.parseBody(func(k lineKind) bool { return k == kindEndDo || k == kindEnd }, "")
		if p.lineKind() != kindEndDo {
			p.addErrorAtLine(p.line(), 0, "missing END DO")
		} else {
			p.lastLabel = p.line().Label
			p.advance()
		}
	}
	switch loop := stmt.(type) {
	case *ast.Do:
		loop.Body = body
	case *ast.DoWhile:
		loop.Body = body
	}
	return stmt
}

func (p *Parser) parseGoto() ast.Statement {
	p.nextToken() // GOTO or TO
	switch {
	case p.currentTokenIs(token.IntLit):
		stmt := &ast.Goto{Target: p.current.lit}
		p.nextToken()
		return stmt
	case p.currentTokenIs(token.LParen):
		stmt := &ast.ComputedGoto{Targets: p.parseParenList("computed GOTO")}
		p.consumeIf(token.Comma)
		if p.currentTokenIs(token.EOF) {
			p.addError("computed GOTO: missing expression")
			return nil
		}
		stmt.Expr = p.textFrom(p.current.start)
		p.skipToEnd()
		return stmt
	}
	text := p.textFrom(p.current.start)
	p.skipToEnd()
	return &ast.Unsupported{Keyword: "goto", Text: text}
}

func (p *Parser) parseContinue() ast.Statement {
	p.nextToken()
	return &ast.Continue{}
}

func (p *Parser) parseReturn() ast.Statement {
	p.nextToken()
	if !p.currentTokenIs(token.EOF) {
		text := p.textFrom(p.current.start)
		p.skipToEnd()
		return &ast.Unsupported{Keyword: "return", Text: text}
	}
	return &ast.Return{}
}

func (p *Parser) parseStop() ast.Statement {
	p.nextToken()
	stmt := &ast.Stop{}
	if !p.currentTokenIs(token.EOF) {
		stmt.Code = p.textFrom(p.current.start)
		p.skipToEnd()
	}
	return stmt
}

func (p *Parser) parseIO() ast.Statement {
	stmt := &ast.IO{Keyword: p.current.lit}
	p.nextToken()
	if !p.currentTokenIs(token.EOF) && !p.currentTokenIs(token.Illegal) {
		stmt.Text = p.textFrom(p.current.start)
	}
	p.skipToEnd()
	return stmt
}

func (p *Parser) parseUnsupported() ast.Statement {
	stmt := &ast.Unsupported{Keyword: p.current.lit}
	p.nextToken()
	if !p.currentTokenIs(token.EOF) {
		stmt.Text = p.textFrom(p.current.start)
	}
	p.skipToEnd()
	return stmt
}
