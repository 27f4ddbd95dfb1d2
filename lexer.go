package fortran

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/1912158597-george/pyopencl/token"
)

// This lexer is an implementation of the Lexer as described in "Writing An Interpreter In Go" by Thorsten Ball https://monkeylang.org/

// Lexer90 is a lexer for Fortran statements. It operates on logical lines:
// continuation lines must already be joined and labels removed, see readLines.
type Lexer90 struct {
	input    bufio.Reader
	ch       rune // current character (utf8)
	peek     rune // next character (utf8)
	peekPos  int  // byte position of peek.
	peekSize int  // utf8 size of peek.
	err      error
	idbuf    []byte // accumulation buffer.
	fold     cases.Caser

	// Higher level statistics fields:

	source    string // filename or source name, may be empty.
	ready     bool   // set by Reset.
	line      int    // file line number (position of current char)
	col       int    // column number in line (position of current char)
	pos       int    // byte position of current char.
	parens    int    // parentheses counter to pick up on unbalanced parentheses early.
	tokenLine int    // line number where the last token started
	tokenCol  int    // column number where the last token started
}

func (l *Lexer90) IsDone() bool {
	return l.ch == 0 && l.err != nil
}

func (l *Lexer90) isUnitialized() bool {
	return !l.ready
}

// Reset discards all state and buffered data and begins a new lexing
// procedure on the input r. line is the source line number of the first
// character of r. It performs two utf8 reads to initialize.
func (l *Lexer90) Reset(source string, line int, r io.Reader) error {
	if r == nil {
		return errors.New("nil reader")
	}
	*l = Lexer90{
		ready:  true,
		input:  l.input,
		line:   line,
		idbuf:  l.idbuf,
		source: source,
		fold:   cases.Fold(),
	}
	l.input.Reset(r)
	if l.idbuf == nil {
		l.idbuf = make([]byte, 0, 256)
	}
	// Fill up peek and current character.
	const peeklen = 2
	l.col = -peeklen + 1 // col is 1 based.
	l.readCharLL()
	l.readCharLL()
	if l.err == io.EOF {
		return nil
	}
	return l.err
}

// Source returns the name the lexer was reset/initialized with. Usually a filename.
func (l *Lexer90) Source() string {
	return l.source
}

// Err returns the lexer error.
func (l *Lexer90) Err() error {
	if l.err == io.EOF {
		return nil
	}
	return l.err
}

// LineCol returns the current line number and column number (utf8 relative).
func (l *Lexer90) LineCol() (line, col int) {
	return l.line, l.col
}

// TokenLineCol returns the line/col where the last returned token started.
func (l *Lexer90) TokenLineCol() (line, col int) {
	return l.tokenLine, l.tokenCol
}

// Pos returns the absolute position of the lexer in bytes from the start of the input.
func (l *Lexer90) Pos() int { return l.pos }

// Parens returns the parentheses depth at the current position.
func (l *Lexer90) Parens() int { return l.parens }

// NextToken parses the upcoming token and returns the literal representation
// of the token for identifiers, keywords, strings and numbers.
// Identifier and keyword literals are case folded.
// The returned byte slice is reused between calls to NextToken.
func (l *Lexer90) NextToken() (tok token.Token, startPos int, literal []byte) {
	if l.isUnitialized() {
		l.err = errors.New("lexer unitilialized")
		return token.Illegal, 0, nil
	}
	l.skipWhitespace()
	startPos = l.pos
	l.tokenLine, l.tokenCol = l.line, l.col
	if l.ch == 0 {
		if l.err != nil && l.err != io.EOF {
			return token.Illegal, startPos, nil
		}
		return token.EOF, startPos, nil
	}
	ch := l.ch
	if ch == '!' {
		l.readChar() // skip the '!'
		data := l.readCommentContent()
		return token.LineComment, startPos, data
	}
	switch ch {
	case '=':
		if l.peekChar() == '=' {
			tok = token.EqEq
			l.readChar()
			l.readChar()
		} else {
			tok = token.Equals
			l.readChar()
		}
	case '+':
		tok = token.Plus
		l.readChar()
	case '-':
		tok = token.Minus
		l.readChar()
	case '*':
		if l.peekChar() == '*' {
			tok = token.DoubleStar
			l.readChar()
			l.readChar()
		} else {
			tok = token.Asterisk
			l.readChar()
		}
	case '/':
		switch l.peekChar() {
		case '=':
			tok = token.NotEquals
			l.readChar()
			l.readChar()
		case '/':
			tok = token.StringConcat
			l.readChar()
			l.readChar()
		default:
			tok = token.Slash
			l.readChar()
		}
	case '<':
		if l.peekChar() == '=' {
			tok = token.LessEq
			l.readChar()
			l.readChar()
		} else {
			tok = token.Less
			l.readChar()
		}
	case '>':
		if l.peekChar() == '=' {
			tok = token.GreaterEq
			l.readChar()
			l.readChar()
		} else {
			tok = token.Greater
			l.readChar()
		}
	case '(':
		tok = token.LParen
		l.parens++
		l.readChar()
	case ')':
		tok = token.RParen
		l.parens--
		l.readChar()
	case ',':
		tok = token.Comma
		l.readChar()
	case ':':
		if l.peekChar() == ':' {
			tok = token.DoubleColon
			l.readChar()
			l.readChar()
		} else {
			tok = token.Colon
			l.readChar()
		}
	case '\'', '"':
		literal = l.readString(ch)
		tok = token.StringLit
		if l.err != nil && l.err != io.EOF {
			tok = token.Illegal
		}
	case '.':
		// Could be a decimal number, a logical operator, or logical constant
		next := l.peekChar()
		if isDigit(next) {
			literal, _ = l.readNumber()
			tok = token.FloatLit
			if l.ch == '_' {
				literal = l.readKindSpecifier(literal)
			}
		} else if isIdentifierChar(next) {
			literal = l.readDotOperator()
			tok = token.LookupDotOperator(literal)
		} else {
			tok = token.Illegal
			l.readChar()
		}
	default:
		if isIdentifierChar(ch) {
			literal = l.readIdentifier()
			tok = token.LookupKeyword(literal)

			// BOZ literals: Z'...', O'...', B'...'
			if tok == token.Identifier && len(literal) == 1 && (l.ch == '\'' || l.ch == '"') {
				switch literal[0] {
				case 'Z', 'z', 'O', 'o', 'B', 'b':
					literal = l.readBOZLiteral(rune(literal[0]), l.ch)
					if l.err != nil && l.err != io.EOF {
						return token.Illegal, startPos, literal
					}
					return token.IntLit, startPos, literal
				}
			}
			literal = l.fold.Bytes(literal)
		} else if isDigit(ch) {
			var isFloat bool
			literal, isFloat = l.readNumber()
			if l.ch == '_' {
				// Kind specifiers preserve the float/int distinction, e.g. 1_8, 1.5_8.
				literal = l.readKindSpecifier(literal)
			}
			if isFloat {
				tok = token.FloatLit
			} else {
				tok = token.IntLit
			}
		} else {
			tok = token.Illegal
			l.readChar()
		}
	}
	return tok, startPos, literal
}

// readCommentContent reads comment text until the end of the line.
func (l *Lexer90) readCommentContent() []byte {
	start := l.bufstart()
	for l.ch != '\n' && l.ch != 0 {
		l.idbuf = utf8.AppendRune(l.idbuf, l.ch)
		l.readChar()
	}
	return l.idbuf[start:]
}

func (l *Lexer90) readIdentifier() []byte {
	start := l.bufstart()
	for isIdentifierChar(l.ch) || isDigit(l.ch) {
		l.idbuf = utf8.AppendRune(l.idbuf, l.ch)
		l.readChar()
	}
	return l.idbuf[start:]
}

// readBOZLiteral reads a BOZ (Binary/Octal/heXadecimal) literal: Z'...', O'...', B'...'
// Returns the literal as a decimal integer string.
func (l *Lexer90) readBOZLiteral(prefix rune, quote rune) []byte {
	start := l.bufstart()
	l.readChar() // consume opening quote

	var digits []byte
	for l.ch != 0 && l.ch != quote {
		digits = utf8.AppendRune(digits, l.ch)
		l.readChar()
	}
	if l.ch != quote {
		l.err = errors.New("unterminated BOZ literal")
		return l.idbuf[start:]
	}
	l.readChar() // consume closing quote

	base := 16
	switch prefix {
	case 'O', 'o':
		base = 8
	case 'B', 'b':
		base = 2
	}
	value, err := strconv.ParseUint(string(digits), base, 64)
	if err != nil {
		l.err = fmt.Errorf("invalid BOZ literal: %w", err)
		return l.idbuf[start:]
	}
	l.idbuf = strconv.AppendUint(l.idbuf, value, 10)
	return l.idbuf[start:]
}

func (l *Lexer90) readString(quote rune) []byte {
	start := l.bufstart()
	l.readChar() // consume opening quote
	for {
		if l.ch == 0 || l.ch == '\n' {
			l.err = errors.New("unterminated string literal")
			return l.idbuf[start:]
		}
		if l.ch == quote {
			// Doubled quote is an escaped quote.
			if l.peek == quote {
				l.idbuf = utf8.AppendRune(l.idbuf, quote)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // consume closing quote
			return l.idbuf[start:]
		}
		l.idbuf = utf8.AppendRune(l.idbuf, l.ch)
		l.readChar()
	}
}

func (l *Lexer90) readDotOperator() []byte {
	start := l.bufstart()
	l.readChar() // consume opening '.'
	for isIdentifierChar(l.ch) {
		l.idbuf = utf8.AppendRune(l.idbuf, l.ch)
		l.readChar()
	}
	if l.ch == '.' {
		l.readChar() // consume closing '.'
	}
	return l.idbuf[start:]
}

func (l *Lexer90) readNumber() ([]byte, bool) {
	start := l.bufstart()
	seenDot := false
	for {
		ch := l.ch
		if isDigit(ch) {
			l.idbuf = utf8.AppendRune(l.idbuf, ch)
			l.readChar()
			continue
		}
		if !seenDot && ch == '.' {
			// The '.' belongs to the number unless it starts a dot operator:
			// 1.EQ.1 and 1.OR.x are operators, 1.E5 and 1.D0 are exponents.
			next := l.peekChar()
			if isIdentifierChar(next) {
				if !isExponentLetter(next) {
					break
				}
				peek2 := l.peek2Char()
				if !isDigit(peek2) && peek2 != '+' && peek2 != '-' {
					break
				}
			}
			seenDot = true
			l.idbuf = utf8.AppendRune(l.idbuf, ch)
			l.readChar()
			continue
		}
		if isExponentLetter(ch) && (isDigit(l.peek) || ((l.peek == '+' || l.peek == '-') && isDigit(l.peek2Char()))) {
			seenDot = true // Numbers with exponents are always floats
			l.idbuf = utf8.AppendRune(l.idbuf, ch)
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.idbuf = utf8.AppendRune(l.idbuf, l.ch)
				l.readChar()
			}
			for isDigit(l.ch) {
				l.idbuf = utf8.AppendRune(l.idbuf, l.ch)
				l.readChar()
			}
		}
		break
	}
	return l.idbuf[start:], seenDot
}

// readKindSpecifier reads a Fortran kind specifier after a number (e.g., _8, _INT32).
// The underscore has already been detected, this function consumes it and the kind value.
func (l *Lexer90) readKindSpecifier(prefix []byte) []byte {
	start := l.bufstart()
	l.idbuf = append(l.idbuf[:start], prefix...)
	l.idbuf = utf8.AppendRune(l.idbuf, l.ch)
	l.readChar()
	for isDigit(l.ch) || isIdentifierChar(l.ch) {
		l.idbuf = utf8.AppendRune(l.idbuf, l.ch)
		l.readChar()
	}
	return l.idbuf[start:]
}

func (l *Lexer90) bufstart() int {
	l.idbuf = l.idbuf[:0]
	return 0
}

func (l *Lexer90) skipWhitespace() {
	for isWhitespace(l.ch) {
		l.readChar()
	}
}

// readChar advances to the next character. Once input is exhausted ch is 0
// and pos points one past the last character.
func (l *Lexer90) readChar() {
	if l.err != nil {
		l.ch = 0
		l.pos = l.peekPos
		return
	}
	l.readCharLL()
}

func (l *Lexer90) peekChar() rune {
	return l.peek
}

// peek2Char looks two characters ahead without consuming. Returns 0 if not available.
// This is used to disambiguate patterns like 1.EQ.1 vs 1.E5
func (l *Lexer90) peek2Char() rune {
	b, err := l.input.Peek(1)
	if err != nil || len(b) < 1 {
		return 0
	}
	return rune(b[0])
}

// readCharLL reads the next character at the lowest level.
func (l *Lexer90) readCharLL() {
	currentIsNewline := l.ch == '\n'
	l.ch = l.peek
	l.pos = l.peekPos
	l.peekPos += l.peekSize
	ch, sz, err := l.input.ReadRune()
	if err != nil {
		l.peek = 0
		l.peekSize = 0
		l.err = err
		return
	}
	l.col++
	l.peek = ch
	l.peekSize = sz
	if currentIsNewline {
		l.line++
		l.col = 1
	}
}

func (l *Lexer90) sourcePos() sourcePos {
	line, col := l.LineCol()
	return sourcePos{
		Source: l.source,
		Line:   line,
		Col:    col,
		Pos:    l.pos,
	}
}

func isIdentifierChar(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isExponentLetter(ch rune) bool {
	switch ch {
	case 'E', 'e', 'D', 'd', 'Q', 'q':
		return true
	}
	return false
}

func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\r'
}
