package fortran

import (
	"errors"
	"strconv"
	"testing"

	"github.com/nalgeon/be"

	"github.com/1912158597-george/pyopencl/dtype"
	"github.com/1912158597-george/pyopencl/intrinsic"
	"github.com/1912158597-george/pyopencl/symbol"
)

func inferScope(t *testing.T) *symbol.Scope {
	t.Helper()
	scope := symbol.NewScope("s", []string{"z"})
	be.Err(t, scope.Declare("z", dtype.Complex64), nil)
	be.Err(t, scope.Declare("w", dtype.Complex128), nil)
	be.Err(t, scope.Declare("k", dtype.Int64), nil)
	be.Err(t, scope.Declare("d", dtype.Float64), nil)
	be.Err(t, scope.Declare("a", dtype.Float32), nil)
	be.Err(t, scope.DeclareShape("a", []string{"10"}), nil)
	return scope
}

func TestInfer(t *testing.T) {
	cases := []struct {
		src  string
		want dtype.DType
	}{
		0:  {src: "i + x", want: dtype.Float32},
		1:  {src: "x + z", want: dtype.Complex64},
		2:  {src: "k + i", want: dtype.Int64},
		3:  {src: "abs(z)", want: dtype.Float32},
		4:  {src: "d * z", want: dtype.Complex128},
		5:  {src: "i .lt. x", want: dtype.Int32},
		6:  {src: "2**3", want: dtype.Int32},
		7:  {src: "x**2", want: dtype.Float32},
		8:  {src: "real(z) + d", want: dtype.Float64},
		9:  {src: "a(i) + 1", want: dtype.Float32},
		10: {src: "-k", want: dtype.Int64},
		11: {src: "i / 2.d0", want: dtype.Float64},
		12: {src: "mod(k, 3)", want: dtype.Int64},
		13: {src: "(1.0, 2.0) * w", want: dtype.Complex128},
		14: {src: "aimag(w)", want: dtype.Float64},
		15: {src: ".not. l", want: dtype.Int32},
		16: {src: "g(i, x)", want: dtype.Float32},
		17: {src: "dcmplx(x)", want: dtype.Complex128},
	}
	for i, test := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			scope := inferScope(t)
			expr, err := ParseExpr(test.src, scope)
			be.Err(t, err, nil)
			ti := typeInferrer{scope: scope}
			got, err := ti.infer(expr)
			be.Err(t, err, nil)
			be.Equal(t, got, test.want)
		})
	}
}

func TestInferErrors(t *testing.T) {
	scope := inferScope(t)
	ti := typeInferrer{scope: scope}

	expr, err := ParseExpr("f()", scope)
	be.Err(t, err, nil)
	_, err = ti.infer(expr)
	be.True(t, errors.Is(err, intrinsic.ErrNoArguments))

	expr, err = ParseExpr("aimag(x)", scope)
	be.Err(t, err, nil)
	_, err = ti.infer(expr)
	var argErr *intrinsic.ArgError
	be.True(t, errors.As(err, &argErr))

	strict := symbol.NewScope("t", nil)
	be.Err(t, strict.SetImplicitNone(), nil)
	expr, err = ParseExpr("q + 1", strict)
	be.Err(t, err, nil)
	_, err = (&typeInferrer{scope: strict}).infer(expr)
	var symErr *symbol.Error
	be.True(t, errors.As(err, &symErr))
}
