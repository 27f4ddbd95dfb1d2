package fortran

import (
	"strconv"
	"strings"
)

// ParseError reports malformed Fortran source or expression text.
type ParseError struct {
	sp  sourcePos
	msg string
}

func (pe *ParseError) Error() string {
	var dst []byte
	dst = pe.sp.AppendString(dst)
	if len(dst) > 0 {
		dst = append(dst, ':', ' ')
	}
	dst = append(dst, pe.msg...)
	return string(dst)
}

// Line returns the source line the error was found on.
func (pe *ParseError) Line() int { return pe.sp.Line }

// locate moves an error found in expression text to a source line. The
// column stays relative to the expression, so it moves into the message.
func (pe *ParseError) locate(source string, line int, expr string) {
	if pe.sp.Line != 0 {
		return
	}
	prefix := "in " + strconv.Quote(strings.TrimSpace(expr))
	if pe.sp.Col > 0 {
		prefix += " at col " + strconv.Itoa(pe.sp.Col)
	}
	pe.msg = prefix + ": " + pe.msg
	pe.sp = sourcePos{Source: source, Line: line}
}

type sourcePos struct {
	Source string
	Line   int
	Col    int
	Pos    int
}

func (l *sourcePos) String() string {
	return string(l.AppendString(nil))
}

func (l *sourcePos) AppendString(b []byte) []byte {
	if l.Line == 0 {
		// Expression text has no line of its own.
		if l.Col > 0 {
			b = append(b, "col "...)
			b = strconv.AppendInt(b, int64(l.Col), 10)
		}
		return b
	}
	if b == nil {
		b = make([]byte, 0, len(l.Source)+3+3)
	}
	if l.Source != "" {
		b = append(b, l.Source...)
		b = append(b, ':')
	}
	b = strconv.AppendInt(b, int64(l.Line), 10)
	if l.Col > 0 {
		b = append(b, ':')
		b = strconv.AppendInt(b, int64(l.Col), 10)
	}
	return b
}

// TranslationError reports input that is well formed but cannot be
// translated: unsupported constructs, type errors and scope violations.
type TranslationError struct {
	Line int    // source line, 0 if unknown.
	Stmt string // statement text, may be empty.
	Msg  string
	Err  error // underlying cause, may be nil.
}

func (te *TranslationError) Error() string {
	var dst []byte
	if te.Line > 0 {
		dst = append(dst, "line "...)
		dst = strconv.AppendInt(dst, int64(te.Line), 10)
		dst = append(dst, ':', ' ')
	}
	dst = append(dst, te.Msg...)
	if te.Err != nil {
		if te.Msg != "" {
			dst = append(dst, ':', ' ')
		}
		dst = append(dst, te.Err.Error()...)
	}
	if te.Stmt != "" {
		dst = append(dst, " ("...)
		dst = strconv.AppendQuote(dst, te.Stmt)
		dst = append(dst, ')')
	}
	return string(dst)
}

func (te *TranslationError) Unwrap() error { return te.Err }

// Warning is a non-fatal translation diagnostic, such as a dropped I/O statement.
type Warning struct {
	Line int
	Msg  string
}

func (w Warning) String() string {
	return "line " + strconv.Itoa(w.Line) + ": " + w.Msg
}
