package intrinsic

import (
	"strings"

	"github.com/1912158597-george/pyopencl/dtype"
)

// complexMath holds the generic functions pyopencl-complex.h implements for
// complex arguments as <cfloat|cdouble>_<name>.
var complexMath = map[string]bool{
	"sqrt": true, "exp": true, "log": true,
	"sin": true, "cos": true, "tan": true,
	"sinh": true, "cosh": true, "tanh": true,
}

// Render returns the OpenCL C expression for c. The result binds at least as
// tightly as a C cast expression.
//
// User functions keep their name; those with a complex result are prefixed
// with the complex helper prefix of the result, as in cdouble_f(x).
func Render(c Call) (string, error) {
	f, ok := Lookup(c.Name)
	if !ok {
		name := c.Name
		if p := dtype.ComplexPrefix(c.Result); p != "" {
			name = p + "_" + name
		}
		return call(name, c.Args...), nil
	}
	if len(c.Args) != len(c.ArgTypes) || len(c.Args) < f.MinArgs || (f.MaxArgs >= 0 && len(c.Args) > f.MaxArgs) {
		return "", &ArgError{Name: f.Name, Msg: "wrong number of arguments"}
	}
	x, xt := c.Args[0], c.ArgTypes[0]
	switch f.Generic {
	case "abs":
		switch {
		case xt.IsComplex():
			return call(dtype.ComplexPrefix(xt)+"_abs", x), nil
		case xt.IsInteger():
			return call("abs", x), nil
		}
		return call("fabs", x), nil

	case "aimag":
		return call(dtype.ComplexPrefix(xt)+"_imag", x), nil

	case "conjg":
		if !xt.IsComplex() {
			return "", &ArgError{Name: f.Name, Msg: "argument must be complex"}
		}
		return call(dtype.ComplexPrefix(xt)+"_conj", x), nil

	case "int", "real", "dble":
		if xt.IsComplex() {
			x = call(dtype.ComplexPrefix(xt)+"_real", x)
			xt = xt.Component()
		}
		if xt == c.Result {
			return x, nil
		}
		return cast(c.Result, x)

	case "nint", "floor", "ceiling":
		if xt.IsComplex() {
			return "", &ArgError{Name: f.Name, Msg: "argument must not be complex"}
		}
		fn := map[string]string{"nint": "round", "floor": "floor", "ceiling": "ceil"}[f.Generic]
		if xt.IsInteger() {
			return x, nil
		}
		return cast(c.Result, call(fn, x))

	case "cmplx", "dcmplx":
		return renderComplex(c)

	case "max", "min":
		return renderMinMax(f.Generic, c)

	case "sign":
		a, err := convert(c.Result, c.ArgTypes[0], c.Args[0])
		if err != nil {
			return "", err
		}
		b := c.Args[1]
		if c.Result.IsInteger() {
			return "((" + b + ") >= 0 ? abs(" + a + ") : -abs(" + a + "))", nil
		}
		b, err = convert(c.Result, c.ArgTypes[1], b)
		if err != nil {
			return "", err
		}
		return call("copysign", a, b), nil

	case "dim":
		args, err := convertAll(c)
		if err != nil {
			return "", err
		}
		if c.Result.IsInteger() {
			return call("max", "("+args[0]+") - ("+args[1]+")", "0"), nil
		}
		return call("fdim", args...), nil
	}

	// Generic math functions.
	if c.Result.IsComplex() {
		if !complexMath[f.Generic] {
			return "", &ArgError{Name: f.Name, Msg: "no complex form available"}
		}
		args, err := convertAll(c)
		if err != nil {
			return "", err
		}
		return call(dtype.ComplexPrefix(c.Result)+"_"+f.Generic, args...), nil
	}
	args, err := convertAll(c)
	if err != nil {
		return "", err
	}
	return call(f.Generic, args...), nil
}

func renderComplex(c Call) (string, error) {
	w := dtype.ComplexPrefix(c.Result)
	if len(c.Args) == 2 {
		ct, err := dtype.CType(c.Result)
		if err != nil {
			return "", err
		}
		return "(" + ct + ")(" + c.Args[0] + ", " + c.Args[1] + ")", nil
	}
	x, xt := c.Args[0], c.ArgTypes[0]
	switch {
	case xt == c.Result:
		return x, nil
	case xt.IsComplex():
		return call(w+"_cast", x), nil
	}
	x, err := convert(c.Result.Component(), xt, x)
	if err != nil {
		return "", err
	}
	return call(w+"_fromreal", x), nil
}

// renderMinMax nests the two argument C functions: max(a, b, c) becomes
// fmax(a, fmax(b, c)) for real results.
func renderMinMax(name string, c Call) (string, error) {
	if c.Result.IsComplex() {
		return "", &ArgError{Name: name, Msg: "complex arguments are not ordered"}
	}
	args, err := convertAll(c)
	if err != nil {
		return "", err
	}
	fn := name
	if !c.Result.IsInteger() {
		fn = "f" + name
	}
	out := args[len(args)-1]
	for i := len(args) - 2; i >= 0; i-- {
		out = call(fn, args[i], out)
	}
	return out, nil
}

// convertAll converts every argument to the result type of c.
func convertAll(c Call) ([]string, error) {
	args := make([]string, len(c.Args))
	for i, arg := range c.Args {
		var err error
		args[i], err = convert(c.Result, c.ArgTypes[i], arg)
		if err != nil {
			return nil, err
		}
	}
	return args, nil
}

// convert returns x, of type from, as a value of type to.
func convert(to, from dtype.DType, x string) (string, error) {
	switch {
	case to == from:
		return x, nil
	case to.IsComplex() && from.IsComplex():
		return call(dtype.ComplexPrefix(to)+"_cast", x), nil
	case to.IsComplex():
		x, err := convert(to.Component(), from, x)
		if err != nil {
			return "", err
		}
		return call(dtype.ComplexPrefix(to)+"_fromreal", x), nil
	}
	return cast(to, x)
}

func cast(to dtype.DType, x string) (string, error) {
	ct, err := dtype.CType(to)
	if err != nil {
		return "", err
	}
	if !isPrimary(x) {
		x = "(" + x + ")"
	}
	return "(" + ct + ") " + x, nil
}

func call(name string, args ...string) string {
	return name + "(" + strings.Join(args, ", ") + ")"
}

// isPrimary reports whether the C expression x can be the operand of a cast
// without parentheses: a name, a constant, a dereferenced name, a call or a
// subscript.
func isPrimary(x string) bool {
	if x == "" || x[0] == '-' || x[0] == '(' {
		return false
	}
	if !strings.ContainsAny(x, " ?") {
		return true
	}
	// name(...) or name[...] spanning the whole expression.
	open := strings.IndexAny(x, "([")
	if open <= 0 || strings.ContainsAny(x[:open], " ") {
		return false
	}
	depth := 0
	for i := open; i < len(x); i++ {
		switch x[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
			if depth == 0 && i != len(x)-1 {
				return false
			}
		}
	}
	return depth == 0
}
