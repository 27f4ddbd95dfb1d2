package ast

import (
	"strconv"

	"github.com/1912158597-george/pyopencl/dtype"
)

// Expression is a node of a parsed expression. Expression trees are not
// modified after construction.
type Expression interface {
	Node
	exprNode()
}

// IntLit is an integer constant.
type IntLit struct {
	Value int64
	Type  dtype.DType
}

// RealLit is a real constant. Text holds the C spelling of the value without suffix.
type RealLit struct {
	Value float64
	Text  string
	Type  dtype.DType
}

// ComplexLit is a complex constant "(re, im)". Both parts are constants,
// optionally negated.
type ComplexLit struct {
	Re, Im Expression
	Type   dtype.DType
}

// LogicalLit is .TRUE. or .FALSE..
type LogicalLit struct {
	Value bool
}

// Var is a reference to a scalar or a whole array.
type Var struct {
	Name string
}

// Subscript is an array element access.
type Subscript struct {
	Name    string
	Indices []Expression
}

// FuncCall is a function or intrinsic invocation.
type FuncCall struct {
	Name string
	Args []Expression
}

// Sum is a chain of additions. Subtracted terms are wrapped in [Neg].
type Sum struct {
	Terms []Expression
}

// Product is a chain of multiplications.
type Product struct {
	Factors []Expression
}

// Neg is unary minus.
type Neg struct {
	X Expression
}

// Quotient is Num / Den.
type Quotient struct {
	Num, Den Expression
}

// Remainder is mod(Num, Den).
type Remainder struct {
	Num, Den Expression
}

// Power is Base ** Exp.
type Power struct {
	Base, Exp Expression
}

// Comparison compares X and Y. Op is the C spelling of the operator.
type Comparison struct {
	Op   string // One of "<", ">", "<=", ">=", "==", "!=".
	X, Y Expression
}

// LogicalAnd is a chain of .AND. operations.
type LogicalAnd struct {
	Terms []Expression
}

// LogicalOr is a chain of .OR. operations.
type LogicalOr struct {
	Terms []Expression
}

// LogicalNot is .NOT. X.
type LogicalNot struct {
	X Expression
}

func (*IntLit) exprNode()     {}
func (*RealLit) exprNode()    {}
func (*ComplexLit) exprNode() {}
func (*LogicalLit) exprNode() {}
func (*Var) exprNode()        {}
func (*Subscript) exprNode()  {}
func (*FuncCall) exprNode()   {}
func (*Sum) exprNode()        {}
func (*Product) exprNode()    {}
func (*Neg) exprNode()        {}
func (*Quotient) exprNode()   {}
func (*Remainder) exprNode()  {}
func (*Power) exprNode()      {}
func (*Comparison) exprNode() {}
func (*LogicalAnd) exprNode() {}
func (*LogicalOr) exprNode()  {}
func (*LogicalNot) exprNode() {}

// The AppendString methods of expressions render fully parenthesized
// Fortran-like text, useful in tests and error messages.

func (e *IntLit) AppendString(dst []byte) []byte {
	return strconv.AppendInt(dst, e.Value, 10)
}

func (e *RealLit) AppendString(dst []byte) []byte {
	return append(dst, e.Text...)
}

func (e *ComplexLit) AppendString(dst []byte) []byte {
	dst = append(dst, '(')
	dst = e.Re.AppendString(dst)
	dst = append(dst, ", "...)
	dst = e.Im.AppendString(dst)
	return append(dst, ')')
}

func (e *LogicalLit) AppendString(dst []byte) []byte {
	if e.Value {
		return append(dst, ".TRUE."...)
	}
	return append(dst, ".FALSE."...)
}

func (e *Var) AppendString(dst []byte) []byte {
	return append(dst, e.Name...)
}

func appendCall(dst []byte, name string, args []Expression) []byte {
	dst = append(dst, name...)
	dst = append(dst, '(')
	for i, arg := range args {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = arg.AppendString(dst)
	}
	return append(dst, ')')
}

func (e *Subscript) AppendString(dst []byte) []byte {
	return appendCall(dst, e.Name, e.Indices)
}

func (e *FuncCall) AppendString(dst []byte) []byte {
	return appendCall(dst, e.Name, e.Args)
}

func appendChain(dst []byte, op string, children []Expression) []byte {
	dst = append(dst, '(')
	for i, c := range children {
		if i > 0 {
			dst = append(dst, op...)
		}
		dst = c.AppendString(dst)
	}
	return append(dst, ')')
}

func (e *Sum) AppendString(dst []byte) []byte { return appendChain(dst, " + ", e.Terms) }

func (e *Product) AppendString(dst []byte) []byte { return appendChain(dst, " * ", e.Factors) }

func (e *Neg) AppendString(dst []byte) []byte {
	dst = append(dst, '-')
	return e.X.AppendString(dst)
}

func (e *Quotient) AppendString(dst []byte) []byte {
	return appendChain(dst, " / ", []Expression{e.Num, e.Den})
}

func (e *Remainder) AppendString(dst []byte) []byte {
	return appendCall(dst, "mod", []Expression{e.Num, e.Den})
}

func (e *Power) AppendString(dst []byte) []byte {
	return appendChain(dst, "**", []Expression{e.Base, e.Exp})
}

func (e *Comparison) AppendString(dst []byte) []byte {
	return appendChain(dst, " "+e.Op+" ", []Expression{e.X, e.Y})
}

func (e *LogicalAnd) AppendString(dst []byte) []byte {
	return appendChain(dst, " .AND. ", e.Terms)
}

func (e *LogicalOr) AppendString(dst []byte) []byte {
	return appendChain(dst, " .OR. ", e.Terms)
}

func (e *LogicalNot) AppendString(dst []byte) []byte {
	dst = append(dst, ".NOT. "...)
	return e.X.AppendString(dst)
}

// ExprString returns the AppendString rendering of e.
func ExprString(e Expression) string {
	return string(e.AppendString(nil))
}
