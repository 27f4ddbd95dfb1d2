package fortran

import (
	"strings"
)

const (
	fixedFormWidth = 72
	freeFormWidth  = 132
)

// sourceLine is a logical Fortran line: one statement with its continuation
// lines joined and its label split off, or a full-line comment.
type sourceLine struct {
	Label   string
	Text    string
	Line    int  // physical line where the statement starts.
	Col     int  // column where Text starts on the first physical line.
	Comment bool // Text holds comment content.
}

// readLines splits src into logical lines using fixed or free source form
// rules. strict enables the standard column limits and rejects the tab
// form extension in fixed form.
func readLines(name, src string, freeForm, strict bool) ([]sourceLine, error) {
	r := lineReader{name: name, strict: strict}
	physical := strings.Split(src, "\n")
	for i, line := range physical {
		line = strings.TrimSuffix(line, "\r")
		if freeForm {
			r.free(line, i+1)
		} else {
			r.fixed(line, i+1)
		}
		if r.err != nil {
			return nil, r.err
		}
	}
	if r.continued {
		return nil, &ParseError{sp: sourcePos{Source: name, Line: len(physical)}, msg: "source ends inside a continued statement"}
	}
	r.flush()
	return r.out, nil
}

type lineReader struct {
	name   string
	strict bool
	out    []sourceLine
	// pending is the statement being accumulated, not yet in out.
	pending   *sourceLine
	comments  []sourceLine
	continued bool // free form: last line ended with '&'.
	err       error
}

func (r *lineReader) errorf(line, col int, msg string) {
	r.err = &ParseError{sp: sourcePos{Source: r.name, Line: line, Col: col}, msg: msg}
}

// flush moves the pending statement and any comments found while it was
// open to the output, in that order.
func (r *lineReader) flush() {
	if r.pending != nil {
		r.out = append(r.out, *r.pending)
		r.pending = nil
	}
	r.out = append(r.out, r.comments...)
	r.comments = r.comments[:0]
}

func (r *lineReader) comment(text string, line, col int) {
	sl := sourceLine{Text: strings.TrimSpace(text), Line: line, Col: col, Comment: true}
	if r.pending != nil {
		r.comments = append(r.comments, sl)
		return
	}
	r.out = append(r.out, sl)
}

func (r *lineReader) fixed(line string, lineno int) {
	if strings.TrimSpace(line) == "" {
		return
	}
	switch line[0] {
	case 'C', 'c', '*', '!':
		r.comment(line[1:], lineno, 2)
		return
	}
	if r.strict && len(line) > fixedFormWidth {
		line = line[:fixedFormWidth]
	}
	var label, text string
	var cont bool
	col := 7
	if tab := strings.IndexByte(line, '\t'); tab >= 0 && tab < 6 {
		if r.strict {
			r.errorf(lineno, tab+1, "tab character in columns 1-6")
			return
		}
		// Tab form: label, tab, then an optional continuation digit.
		label = strings.TrimSpace(line[:tab])
		text = line[tab+1:]
		col = tab + 2
		if len(text) > 0 && text[0] >= '1' && text[0] <= '9' {
			cont = true
			text = text[1:]
			col++
		}
	} else {
		for len(line) < 6 {
			line += " "
		}
		label = strings.TrimSpace(line[:5])
		cont = line[5] != ' ' && line[5] != '0'
		text = line[6:]
	}
	code, remark, ok := splitComment(text)
	if !ok {
		r.errorf(lineno, col, "unterminated character constant")
		return
	}
	if !isLabel(label) {
		r.errorf(lineno, 1, "invalid statement label "+label)
		return
	}
	if cont {
		if r.pending == nil {
			r.errorf(lineno, 6, "continuation line without initial line")
			return
		}
		if label != "" {
			r.errorf(lineno, 1, "label on continuation line")
			return
		}
		r.pending.Text += strings.TrimRight(code, " \t")
	} else {
		r.flush()
		if strings.TrimSpace(code) == "" {
			if label != "" {
				r.errorf(lineno, 1, "label "+label+" without statement")
			}
			if remark != "" {
				r.comment(remark, lineno, col)
			}
			return
		}
		r.pending = &sourceLine{Label: label, Text: strings.TrimRight(code, " \t"), Line: lineno, Col: col}
	}
	if remark != "" {
		r.comment(remark, lineno, col)
	}
}

func (r *lineReader) free(line string, lineno int) {
	if r.strict && len(line) > freeFormWidth {
		r.errorf(lineno, freeFormWidth+1, "line exceeds 132 columns")
		return
	}
	code, remark, ok := splitComment(line)
	if !ok {
		r.errorf(lineno, 1, "unterminated character constant")
		return
	}
	col := 1 + len(code) - len(strings.TrimLeft(code, " \t"))
	code = strings.TrimSpace(code)
	if code == "" {
		if remark != "" {
			r.comment(remark, lineno, col)
		}
		return
	}
	code, cont := strings.CutSuffix(code, "&")
	if r.continued {
		code = strings.TrimPrefix(code, "&")
		r.pending.Text += code
	} else {
		r.flush()
		r.pending = &sourceLine{Text: code, Line: lineno, Col: col}
	}
	r.continued = cont
	if remark != "" {
		r.comment(remark, lineno, col)
	}
	if !cont {
		r.splitFreeStatements()
	}
}

// splitFreeStatements breaks the pending free form line on ';' separators
// and strips leading numeric labels.
func (r *lineReader) splitFreeStatements() {
	p := r.pending
	r.pending = nil
	for _, stmt := range splitOutsideQuotes(p.Text, ';') {
		text := strings.TrimSpace(stmt)
		if text == "" {
			continue
		}
		label := ""
		n := 0
		for n < len(text) && n < 5 && text[n] >= '0' && text[n] <= '9' {
			n++
		}
		if n > 0 && (n == len(text) || text[n] == ' ' || text[n] == '\t') {
			label = text[:n]
			text = strings.TrimSpace(text[n:])
			if text == "" {
				r.errorf(p.Line, p.Col, "label "+label+" without statement")
				return
			}
		}
		r.out = append(r.out, sourceLine{Label: label, Text: text, Line: p.Line, Col: p.Col})
	}
	r.out = append(r.out, r.comments...)
	r.comments = r.comments[:0]
}

// splitComment splits a line at the first '!' outside a character constant.
// ok is false if a character constant is left open.
func splitComment(s string) (code, remark string, ok bool) {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '!':
			return s[:i], s[i+1:], true
		}
	}
	return s, "", quote == 0
}

func splitOutsideQuotes(s string, sep byte) []string {
	var parts []string
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func isLabel(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// LogicalLine is one statement with its continuation lines joined and its
// label split off, or a comment.
type LogicalLine struct {
	Label   string
	Text    string
	Line    int // physical line where the statement starts.
	Comment bool
}

// ReadLogicalLines splits src into logical lines the way [Parse] reads it.
func ReadLogicalLines(name, src string, freeForm, strict bool) ([]LogicalLine, error) {
	lines, err := readLines(name, src, freeForm, strict)
	if err != nil {
		return nil, err
	}
	out := make([]LogicalLine, len(lines))
	for i, ln := range lines {
		out[i] = LogicalLine{Label: ln.Label, Text: ln.Text, Line: ln.Line, Comment: ln.Comment}
	}
	return out, nil
}
