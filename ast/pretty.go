package ast

import (
	"bytes"
)

// PrettyPrint renders a statement tree as indented free-form Fortran.
// Statement labels are printed in front of the statement they belong to.
func PrettyPrint(node Node) string {
	var buf bytes.Buffer
	pp(&buf, node, 0)
	return buf.String()
}

func pp(buf *bytes.Buffer, node Node, indent int) {
	if node == nil {
		return
	}
	stmt, ok := node.(Statement)
	if !ok {
		buf.Write(node.AppendString(nil))
		return
	}

	switch n := stmt.(type) {
	case *Source:
		for i, s := range n.Body {
			if i > 0 && isUnit(s) {
				buf.WriteByte('\n')
			}
			pp(buf, s, indent)
		}
		return
	case *Subroutine:
		ppLine(buf, n, indent)
		ppBody(buf, n.Body, indent+1)
		ppEnd(buf, "END SUBROUTINE "+n.Name, indent)
	case *Function:
		ppLine(buf, n, indent)
		ppBody(buf, n.Body, indent+1)
		ppEnd(buf, "END FUNCTION "+n.Name, indent)
	case *Program:
		ppLine(buf, n, indent)
		ppBody(buf, n.Body, indent+1)
		ppEnd(buf, "END PROGRAM "+n.Name, indent)
	case *IfThen:
		ppLine(buf, n, indent)
		ppBody(buf, n.Then, indent+1)
		for _, clause := range n.ElseIfs {
			ppEnd(buf, "ELSE IF ("+clause.Cond+") THEN", indent)
			ppBody(buf, clause.Body, indent+1)
		}
		if n.HasElse {
			ppEnd(buf, "ELSE", indent)
			ppBody(buf, n.Else, indent+1)
		}
		ppEnd(buf, "END IF", indent)
	case *Do:
		ppLine(buf, n, indent)
		ppBody(buf, n.Body, indent+1)
		if n.TargetLabel == "" {
			ppEnd(buf, "END DO", indent)
		}
	case *DoWhile:
		ppLine(buf, n, indent)
		ppBody(buf, n.Body, indent+1)
		if n.TargetLabel == "" {
			ppEnd(buf, "END DO", indent)
		}
	default:
		ppLine(buf, stmt, indent)
	}
}

func isUnit(s Statement) bool {
	switch s.(type) {
	case *Subroutine, *Function, *Program:
		return true
	}
	return false
}

func ppBody(buf *bytes.Buffer, body []Statement, indent int) {
	for _, s := range body {
		pp(buf, s, indent)
	}
}

func ppLine(buf *bytes.Buffer, stmt Statement, indent int) {
	if label := stmt.Info().Label; label != "" {
		buf.WriteString(label)
		buf.WriteByte(' ')
	}
	writeIndent(buf, indent)
	buf.Write(stmt.AppendString(nil))
	buf.WriteByte('\n')
}

func ppEnd(buf *bytes.Buffer, text string, indent int) {
	writeIndent(buf, indent)
	buf.WriteString(text)
	buf.WriteByte('\n')
}

func writeIndent(buf *bytes.Buffer, indent int) {
	for i := 0; i < indent; i++ {
		buf.WriteString("  ")
	}
}
