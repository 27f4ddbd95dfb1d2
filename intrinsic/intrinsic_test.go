package intrinsic

import (
	"errors"
	"slices"
	"strconv"
	"testing"

	"github.com/nalgeon/be"

	"github.com/1912158597-george/pyopencl/dtype"
)

const (
	i32  = dtype.Int32
	i64  = dtype.Int64
	f32  = dtype.Float32
	f64  = dtype.Float64
	c64  = dtype.Complex64
	c128 = dtype.Complex128
)

func TestResultType(t *testing.T) {
	tests := []struct {
		name   string
		args   []dtype.DType
		result dtype.DType
	}{
		0:  {name: "abs", args: []dtype.DType{c64}, result: f32},
		1:  {name: "cdabs", args: []dtype.DType{c128}, result: f64},
		2:  {name: "abs", args: []dtype.DType{i32}, result: i32},
		3:  {name: "real", args: []dtype.DType{c128}, result: f64},
		4:  {name: "real", args: []dtype.DType{i32}, result: f32},
		5:  {name: "dble", args: []dtype.DType{c64}, result: f64},
		6:  {name: "aimag", args: []dtype.DType{c64}, result: f32},
		7:  {name: "int", args: []dtype.DType{f64}, result: i32},
		8:  {name: "nint", args: []dtype.DType{f32}, result: i32},
		9:  {name: "cmplx", args: []dtype.DType{f64, f64}, result: c64},
		10: {name: "dcmplx", args: []dtype.DType{f32}, result: c128},
		11: {name: "max", args: []dtype.DType{i32, f32, i64}, result: f32},
		12: {name: "dsqrt", args: []dtype.DType{f64}, result: f64},
		13: {name: "sqrt", args: []dtype.DType{c64}, result: c64},
		14: {name: "myfunc", args: []dtype.DType{i32, f64}, result: f64},
		15: {name: "conjg", args: []dtype.DType{c128}, result: c128},
	}
	for i, tt := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			got, err := ResultType(tt.name, tt.args)
			be.Err(t, err, nil)
			be.Equal(t, got, tt.result)
		})
	}
}

func TestResultTypeErrors(t *testing.T) {
	_, err := ResultType("f", nil)
	be.True(t, errors.Is(err, ErrNoArguments))

	var argErr *ArgError
	_, err = ResultType("aimag", []dtype.DType{f32})
	be.True(t, errors.As(err, &argErr))
	_, err = ResultType("sqrt", []dtype.DType{i32})
	be.True(t, errors.As(err, &argErr))
	_, err = ResultType("atan2", []dtype.DType{f32})
	be.True(t, errors.As(err, &argErr))
	be.Equal(t, argErr.Name, "atan2")
}

func TestRender(t *testing.T) {
	tests := []struct {
		call Call
		want string
	}{
		0:  {call: Call{Name: "abs", Result: f32, ArgTypes: []dtype.DType{f32}, Args: []string{"x"}}, want: "fabs(x)"},
		1:  {call: Call{Name: "iabs", Result: i32, ArgTypes: []dtype.DType{i32}, Args: []string{"i"}}, want: "abs(i)"},
		2:  {call: Call{Name: "cdabs", Result: f64, ArgTypes: []dtype.DType{c128}, Args: []string{"z"}}, want: "cdouble_abs(z)"},
		3:  {call: Call{Name: "conjg", Result: c64, ArgTypes: []dtype.DType{c64}, Args: []string{"z"}}, want: "cfloat_conj(z)"},
		4:  {call: Call{Name: "dconjg", Result: c128, ArgTypes: []dtype.DType{c128}, Args: []string{"z"}}, want: "cdouble_conj(z)"},
		5:  {call: Call{Name: "aimag", Result: f64, ArgTypes: []dtype.DType{c128}, Args: []string{"z"}}, want: "cdouble_imag(z)"},
		6:  {call: Call{Name: "cdlog", Result: c128, ArgTypes: []dtype.DType{c128}, Args: []string{"z"}}, want: "cdouble_log(z)"},
		7:  {call: Call{Name: "dsqrt", Result: f64, ArgTypes: []dtype.DType{f64}, Args: []string{"*x"}}, want: "sqrt(*x)"},
		8:  {call: Call{Name: "dble", Result: f64, ArgTypes: []dtype.DType{c64}, Args: []string{"z"}}, want: "(double) cfloat_real(z)"},
		9:  {call: Call{Name: "dble", Result: f64, ArgTypes: []dtype.DType{c128}, Args: []string{"z"}}, want: "cdouble_real(z)"},
		10: {call: Call{Name: "real", Result: f32, ArgTypes: []dtype.DType{i32}, Args: []string{"a + b"}}, want: "(float) (a + b)"},
		11: {call: Call{Name: "int", Result: i32, ArgTypes: []dtype.DType{f64}, Args: []string{"a[i, j]"}}, want: "(int) a[i, j]"},
		12: {call: Call{Name: "nint", Result: i32, ArgTypes: []dtype.DType{f32}, Args: []string{"x"}}, want: "(int) round(x)"},
		13: {call: Call{Name: "cmplx", Result: c64, ArgTypes: []dtype.DType{f32, f32}, Args: []string{"x", "y"}}, want: "(cfloat_t)(x, y)"},
		14: {call: Call{Name: "dcmplx", Result: c128, ArgTypes: []dtype.DType{f64}, Args: []string{"x"}}, want: "cdouble_fromreal(x)"},
		15: {call: Call{Name: "dcmplx", Result: c128, ArgTypes: []dtype.DType{c64}, Args: []string{"z"}}, want: "cdouble_cast(z)"},
		16: {call: Call{Name: "amax1", Result: f32, ArgTypes: []dtype.DType{f32, f32, f32}, Args: []string{"a", "b", "c"}}, want: "fmax(a, fmax(b, c))"},
		17: {call: Call{Name: "max", Result: f32, ArgTypes: []dtype.DType{i32, f32}, Args: []string{"i", "x"}}, want: "fmax((float) i, x)"},
		18: {call: Call{Name: "min0", Result: i32, ArgTypes: []dtype.DType{i32, i32}, Args: []string{"i", "j"}}, want: "min(i, j)"},
		19: {call: Call{Name: "isign", Result: i32, ArgTypes: []dtype.DType{i32, i32}, Args: []string{"i", "j"}}, want: "((j) >= 0 ? abs(i) : -abs(i))"},
		20: {call: Call{Name: "sign", Result: f64, ArgTypes: []dtype.DType{f64, f64}, Args: []string{"a", "b"}}, want: "copysign(a, b)"},
		21: {call: Call{Name: "f", Result: c128, ArgTypes: []dtype.DType{c128}, Args: []string{"z"}}, want: "cdouble_f(z)"},
		22: {call: Call{Name: "f", Result: f32, ArgTypes: []dtype.DType{f32, i32}, Args: []string{"x", "2"}}, want: "f(x, 2)"},
		23: {call: Call{Name: "sqrt", Result: c64, ArgTypes: []dtype.DType{c64}, Args: []string{"z"}}, want: "cfloat_sqrt(z)"},
		24: {call: Call{Name: "real", Result: f32, ArgTypes: []dtype.DType{c64}, Args: []string{"z"}}, want: "cfloat_real(z)"},
		25: {call: Call{Name: "ceiling", Result: i32, ArgTypes: []dtype.DType{f32}, Args: []string{"-x"}}, want: "(int) ceil(-x)"},
	}
	for i, tt := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			got, err := Render(tt.call)
			be.Err(t, err, nil)
			be.Equal(t, got, tt.want)
		})
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []Call{
		0: {Name: "asin", Result: c64, ArgTypes: []dtype.DType{c64}, Args: []string{"z"}},
		1: {Name: "max", Result: c64, ArgTypes: []dtype.DType{c64, c64}, Args: []string{"a", "b"}},
		2: {Name: "conjg", Result: f32, ArgTypes: []dtype.DType{f32}, Args: []string{"x"}},
		3: {Name: "sqrt", Result: f32, ArgTypes: []dtype.DType{f32}, Args: nil},
	}
	for i, tt := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			_, err := Render(tt)
			var argErr *ArgError
			be.True(t, errors.As(err, &argErr))
		})
	}
}

func TestNames(t *testing.T) {
	names := Names()
	be.True(t, slices.IsSorted(names))
	for _, name := range []string{"abs", "amax1", "cdlog", "dble", "dconjg", "dsqrt", "nint"} {
		_, found := slices.BinarySearch(names, name)
		be.True(t, found)
	}
	f, ok := Lookup("alog")
	be.True(t, ok)
	be.Equal(t, f.Generic, "log")
}

func TestIsPrimary(t *testing.T) {
	tests := []struct {
		x    string
		want bool
	}{
		0: {x: "x", want: true},
		1: {x: "*x", want: true},
		2: {x: "1.5f", want: true},
		3: {x: "fmax(a, b)", want: true},
		4: {x: "a[i, j]", want: true},
		5: {x: "a + b", want: false},
		6: {x: "-x", want: false},
		7: {x: "f(a) + g(b)", want: false},
		8: {x: "(float) x", want: false},
	}
	for i, tt := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			be.Equal(t, isPrimary(tt.x), tt.want)
		})
	}
}
