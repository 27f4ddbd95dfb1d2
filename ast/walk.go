package ast

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children
// of node with the visitor w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses a statement or expression tree in depth-first order: It starts
// by calling v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor
// w for each of the non-nil children of node, followed by a call of
// w.Visit(nil).
//
// Statement children are nested statements only; expression text held by
// statements is not parsed.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	// Program units
	case *Source:
		walkStmts(v, n.Body)
	case *Subroutine:
		walkStmts(v, n.Body)
	case *Function:
		walkStmts(v, n.Body)
	case *Program:
		walkStmts(v, n.Body)

	// Control flow
	case *If:
		if n.Stmt != nil {
			Walk(v, n.Stmt)
		}
	case *IfThen:
		walkStmts(v, n.Then)
		for _, clause := range n.ElseIfs {
			walkStmts(v, clause.Body)
		}
		walkStmts(v, n.Else)
	case *Do:
		walkStmts(v, n.Body)
	case *DoWhile:
		walkStmts(v, n.Body)

	// Leaf statements
	case *TypeDecl, *Dimension, *Implicit, *Data, *Intrinsic, *Assignment,
		*Call, *Goto, *ComputedGoto, *ArithmeticIf, *Continue, *Return,
		*Stop, *Comment, *IO, *Unsupported:

	// Expressions
	case *Subscript:
		walkExprs(v, n.Indices)
	case *FuncCall:
		walkExprs(v, n.Args)
	case *ComplexLit:
		Walk(v, n.Re)
		Walk(v, n.Im)
	case *Sum:
		walkExprs(v, n.Terms)
	case *Product:
		walkExprs(v, n.Factors)
	case *Neg:
		Walk(v, n.X)
	case *Quotient:
		Walk(v, n.Num)
		Walk(v, n.Den)
	case *Remainder:
		Walk(v, n.Num)
		Walk(v, n.Den)
	case *Power:
		Walk(v, n.Base)
		Walk(v, n.Exp)
	case *Comparison:
		Walk(v, n.X)
		Walk(v, n.Y)
	case *LogicalAnd:
		walkExprs(v, n.Terms)
	case *LogicalOr:
		walkExprs(v, n.Terms)
	case *LogicalNot:
		Walk(v, n.X)
	case *IntLit, *RealLit, *LogicalLit, *Var:
	}

	v.Visit(nil)
}

func walkStmts(v Visitor, stmts []Statement) {
	for _, stmt := range stmts {
		Walk(v, stmt)
	}
}

func walkExprs(v Visitor, exprs []Expression) {
	for _, e := range exprs {
		Walk(v, e)
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses a tree in depth-first order: It starts by calling
// f(node); node must not be nil. If f returns true, Inspect invokes f
// recursively for each of the non-nil children of node, followed by a
// call of f(nil).
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
