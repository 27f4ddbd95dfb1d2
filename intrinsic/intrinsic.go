// Package intrinsic catalogues the Fortran intrinsic functions the translator
// understands: the type of their result and their OpenCL C spelling.
//
// Specific names inherited from FORTRAN 77 (DSQRT, AMAX1, CABS, ...) resolve
// to their generic family and are rendered like it. Functions missing from the
// catalogue are treated as user functions: their result type is the promotion
// of their argument types and their name is kept.
package intrinsic

import (
	"errors"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/1912158597-george/pyopencl/dtype"
)

// Rule decides the result type of an intrinsic from its argument types.
type Rule uint8

const (
	// Promoted results have the promotion of all argument types.
	Promoted Rule = iota
	// Floating results are promoted like Promoted but must be real or complex.
	Floating
	// Magnitude results are the component type of a complex argument, the argument type otherwise.
	Magnitude
	// Component results are the component type of a complex argument. Other arguments are rejected.
	Component
	// RealPart results are the component type of a complex argument and Func.Result otherwise.
	RealPart
	// Fixed results always have type Func.Result.
	Fixed
)

// Func describes one intrinsic.
type Func struct {
	Name    string // Fortran name.
	Generic string // family the name belongs to, used for rendering.
	Rule    Rule
	Result  dtype.DType // result of Fixed and RealPart rules.
	MinArgs int
	MaxArgs int // -1 for no limit.
}

// Call is a call site ready to be rendered.
type Call struct {
	Name     string
	Result   dtype.DType
	ArgTypes []dtype.DType
	Args     []string // rendered OpenCL arguments.
}

// ErrNoArguments is returned for calls to unknown functions without arguments,
// whose result type cannot be inferred.
var ErrNoArguments = errors.New("cannot infer result type of a call without arguments")

func generic(name string, minArgs, maxArgs int, aliases ...string) []Func {
	funcs := []Func{{Name: name, Generic: name, MinArgs: minArgs, MaxArgs: maxArgs}}
	for _, alias := range aliases {
		funcs = append(funcs, Func{Name: alias, Generic: name, MinArgs: minArgs, MaxArgs: maxArgs})
	}
	return funcs
}

func fixed(name string, result dtype.DType, rule Rule, aliases ...string) []Func {
	maxArgs := 1
	if result.IsComplex() {
		maxArgs = 2
	}
	funcs := []Func{{Name: name, Generic: name, Rule: rule, Result: result, MinArgs: 1, MaxArgs: maxArgs}}
	for _, alias := range aliases {
		funcs = append(funcs, Func{Name: alias, Generic: name, Rule: rule, Result: result, MinArgs: 1, MaxArgs: maxArgs})
	}
	return funcs
}

func withRule(funcs []Func, rule Rule) []Func {
	for i := range funcs {
		funcs[i].Rule = rule
	}
	return funcs
}

var catalogue = lo.KeyBy(slices.Concat(
	withRule(slices.Concat(
		generic("sqrt", 1, 1, "dsqrt", "csqrt", "cdsqrt", "zsqrt"),
		generic("exp", 1, 1, "dexp", "cexp", "cdexp", "zexp"),
		generic("log", 1, 1, "alog", "dlog", "clog", "cdlog", "zlog"),
		generic("log10", 1, 1, "alog10", "dlog10"),
		generic("sin", 1, 1, "dsin", "csin", "cdsin", "zsin"),
		generic("cos", 1, 1, "dcos", "ccos", "cdcos", "zcos"),
		generic("tan", 1, 1, "dtan"),
		generic("asin", 1, 1, "dasin"),
		generic("acos", 1, 1, "dacos"),
		generic("atan", 1, 1, "datan"),
		generic("atan2", 2, 2, "datan2"),
		generic("sinh", 1, 1, "dsinh"),
		generic("cosh", 1, 1, "dcosh"),
		generic("tanh", 1, 1, "dtanh"),
	), Floating),
	generic("max", 2, -1, "max0", "amax1", "dmax1"),
	generic("min", 2, -1, "min0", "amin1", "dmin1"),
	generic("sign", 2, 2, "isign", "dsign"),
	generic("dim", 2, 2, "idim", "ddim"),
	generic("conjg", 1, 1, "dconjg"),
	withRule(generic("abs", 1, 1, "iabs", "dabs", "cabs", "cdabs", "zabs"), Magnitude),
	withRule(generic("aimag", 1, 1, "imag", "dimag"), Component),
	fixed("int", dtype.Int32, Fixed, "ifix", "idint"),
	fixed("nint", dtype.Int32, Fixed, "idnint"),
	fixed("floor", dtype.Int32, Fixed),
	fixed("ceiling", dtype.Int32, Fixed),
	fixed("real", dtype.Float32, RealPart, "float", "sngl"),
	fixed("dble", dtype.Float64, RealPart, "dfloat"),
	fixed("cmplx", dtype.Complex64, Fixed),
	fixed("dcmplx", dtype.Complex128, Fixed),
), func(f Func) string { return f.Name })

// Lookup returns the catalogue entry of a lower case Fortran name.
func Lookup(name string) (Func, bool) {
	f, ok := catalogue[name]
	return f, ok
}

// Names returns every catalogued name in lexicographic order.
func Names() []string {
	names := lo.Keys(catalogue)
	slices.Sort(names)
	return names
}

// ResultType returns the result type of calling name with arguments of the
// given types. Names missing from the catalogue are user functions.
func ResultType(name string, args []dtype.DType) (dtype.DType, error) {
	f, ok := Lookup(name)
	if !ok {
		if len(args) == 0 {
			return dtype.Invalid, ErrNoArguments
		}
		return promote(args)
	}
	return f.ResultType(args)
}

// ResultType returns the result type of f applied to arguments of the given types.
func (f Func) ResultType(args []dtype.DType) (dtype.DType, error) {
	if len(args) < f.MinArgs || (f.MaxArgs >= 0 && len(args) > f.MaxArgs) {
		return dtype.Invalid, &ArgError{Name: f.Name, Msg: "wrong number of arguments"}
	}
	switch f.Rule {
	case Fixed:
		return f.Result, nil
	case RealPart:
		if args[0].IsComplex() && f.Generic == "real" {
			return args[0].Component(), nil
		}
		return f.Result, nil
	case Component:
		if !args[0].IsComplex() {
			return dtype.Invalid, &ArgError{Name: f.Name, Msg: "argument must be complex"}
		}
		return args[0].Component(), nil
	case Magnitude:
		return args[0].Component(), nil
	case Floating:
		t, err := promote(args)
		if err == nil && t.IsInteger() {
			return dtype.Invalid, &ArgError{Name: f.Name, Msg: "argument must be real or complex"}
		}
		return t, err
	}
	return promote(args)
}

func promote(args []dtype.DType) (dtype.DType, error) {
	t := dtype.Promote(args...)
	if t == dtype.Invalid {
		return t, errors.New("cannot promote argument types " + strings.Join(lo.Map(args, func(t dtype.DType, _ int) string { return t.String() }), ", "))
	}
	return t, nil
}

// ArgError reports an intrinsic applied to arguments it does not accept.
type ArgError struct {
	Name string
	Msg  string
}

func (e *ArgError) Error() string { return "intrinsic " + e.Name + ": " + e.Msg }
