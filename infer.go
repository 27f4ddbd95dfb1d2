package fortran

import (
	"fmt"

	"github.com/1912158597-george/pyopencl/ast"
	"github.com/1912158597-george/pyopencl/dtype"
	"github.com/1912158597-george/pyopencl/intrinsic"
	"github.com/1912158597-george/pyopencl/symbol"
)

// typeInferrer computes the semantic type of expressions against a scope.
// It never modifies the scope.
type typeInferrer struct {
	scope *symbol.Scope
}

func (ti *typeInferrer) infer(expr ast.Expression) (dtype.DType, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return e.Type, nil
	case *ast.RealLit:
		return e.Type, nil
	case *ast.ComplexLit:
		return e.Type, nil
	case *ast.LogicalLit:
		return dtype.Int32, nil
	case *ast.Var:
		return ti.scope.ResolveType(e.Name)
	case *ast.Subscript:
		return ti.scope.ResolveType(e.Name)
	case *ast.FuncCall:
		args, err := ti.inferAll(e.Args)
		if err != nil {
			return dtype.Invalid, err
		}
		typ, err := intrinsic.ResultType(e.Name, args)
		if err != nil {
			return dtype.Invalid, fmt.Errorf("call to %s: %w", e.Name, err)
		}
		return typ, nil
	case *ast.Sum:
		return ti.promote(e.Terms...)
	case *ast.Product:
		return ti.promote(e.Factors...)
	case *ast.Neg:
		return ti.infer(e.X)
	case *ast.Quotient:
		return ti.promote(e.Num, e.Den)
	case *ast.Remainder:
		return ti.promote(e.Num, e.Den)
	case *ast.Power:
		return ti.promote(e.Base, e.Exp)
	case *ast.Comparison, *ast.LogicalAnd, *ast.LogicalOr, *ast.LogicalNot:
		return dtype.Int32, nil
	case nil:
		return dtype.Invalid, fmt.Errorf("nil expression")
	}
	return dtype.Invalid, fmt.Errorf("unhandled expression %T", expr)
}

func (ti *typeInferrer) inferAll(exprs []ast.Expression) ([]dtype.DType, error) {
	types := make([]dtype.DType, len(exprs))
	for i, x := range exprs {
		var err error
		types[i], err = ti.infer(x)
		if err != nil {
			return nil, err
		}
	}
	return types, nil
}

func (ti *typeInferrer) promote(exprs ...ast.Expression) (dtype.DType, error) {
	types, err := ti.inferAll(exprs)
	if err != nil {
		return dtype.Invalid, err
	}
	typ := dtype.Promote(types...)
	if typ == dtype.Invalid {
		return typ, fmt.Errorf("no common type for %v", types)
	}
	return typ, nil
}
