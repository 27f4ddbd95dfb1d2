package cgen

import (
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nalgeon/be"

	"github.com/1912158597-george/pyopencl/dtype"
)

func pod(t *testing.T, typ dtype.DType, name string) *Value {
	t.Helper()
	v, err := POD(typ, name)
	be.Err(t, err, nil)
	return v
}

func TestDeclarators(t *testing.T) {
	cases := []struct {
		decl Generable
		want string
	}{
		0: {decl: pod(t, dtype.Int32, "i"), want: "int i;"},
		1: {decl: &RestrictPointer{Sub: pod(t, dtype.Float32, "a")}, want: "float *restrict a;"},
		2: {decl: CLConstant(&Pointer{Sub: pod(t, dtype.Complex128, "p")}), want: "__constant cdouble_t *p;"},
		3: {decl: &ArrayOf{Sub: pod(t, dtype.Float64, "w"), Count: "nitemsof(w)"}, want: "double w[nitemsof(w)];"},
		4: {decl: &Value{Type: `dimension "fortran"`, Name: "a[*n, 3]"}, want: `dimension "fortran" a[*n, 3];`},
		5: {decl: &Initializer{Decl: CLConstant(&ArrayOf{Sub: pod(t, dtype.Float32, "s_c")}), Data: "{ 1.0f, 2.0f }"}, want: "__constant float s_c[] = { 1.0f, 2.0f };"},
		6: {decl: &Initializer{Decl: pod(t, dtype.Complex64, "z"), Data: "{ 1.0f, 0 }"}, want: "cfloat_t z = { 1.0f, 0 };"},
		7: {decl: &FunctionDeclaration{Decl: &Value{Type: "void", Name: "f"}, Args: []Declarator{
			&RestrictPointer{Sub: pod(t, dtype.Int32, "n")},
			CLGlobal(&Pointer{Sub: pod(t, dtype.Float32, "x")}),
		}}, want: "void f(int *restrict n, __global float *x);"},
		8: {decl: &Qualified{Sub: pod(t, dtype.Int16, "s")}, want: "short int s;"},
	}
	for i, test := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			be.Equal(t, String(test.decl), test.want)
		})
	}
}

func TestPODUnmappable(t *testing.T) {
	_, err := POD(dtype.Invalid, "x")
	be.True(t, err != nil)
}

func TestParseAddressSpace(t *testing.T) {
	cases := []struct {
		in   string
		want AddressSpace
		ok   bool
	}{
		0: {in: "constant", want: Constant, ok: true},
		1: {in: "__global", want: Global, ok: true},
		2: {in: " Local ", want: Local, ok: true},
		3: {in: "private", want: Private, ok: true},
		4: {in: "shared", ok: false},
		5: {in: "", ok: false},
	}
	for i, test := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			got, ok := ParseAddressSpace(test.in)
			be.Equal(t, ok, test.ok)
			be.Equal(t, got, test.want)
		})
	}
}

func TestFunctionBody(t *testing.T) {
	fdecl := &FunctionDeclaration{
		Decl: &Value{Type: "void", Name: "saxpy"},
		Args: []Declarator{&RestrictPointer{Sub: &Value{Type: "int", Name: "n"}}},
	}
	loop := &For{Start: "i = 1", Cond: "i <= *n", Update: "i += 1", Body: &Block{Contents: []Generable{
		&Assign{LValue: "y[i]", RValue: "y[i] + 1.0f"},
	}}}
	fb := &FunctionBody{FDecl: fdecl, Body: &Block{Contents: []Generable{
		pod(t, dtype.Int32, "i"),
		Line(""),
		LineComment("loop"),
		loop,
		&If{Cond: "i > 3", Then: Statement("goto label_10")},
		Line("label_10:;"),
	}}}
	want := strings.Join([]string{
		"void saxpy(int *restrict n)",
		"{",
		"  int i;",
		"",
		"  // loop",
		"  for (i = 1; i <= *n; i += 1)",
		"  {",
		"    y[i] = y[i] + 1.0f;",
		"  }",
		"  if (i > 3)",
		"    goto label_10;",
		"  label_10:;",
		"}",
	}, "\n")
	if diff := cmp.Diff(want, String(fb)); diff != "" {
		t.Errorf("function mismatch (-want +got):\n%s", diff)
	}
}

func TestMakeMultipleIfs(t *testing.T) {
	chain := MakeMultipleIfs([]CondBlock{
		{Cond: "a", Block: BlockIfNecessary([]Generable{Statement("x = 1")})},
		{Cond: "b", Block: BlockIfNecessary(nil)},
	}, BlockIfNecessary([]Generable{Statement("x = 2"), Statement("y = 3")}))
	want := strings.Join([]string{
		"if (a)",
		"  x = 1;",
		"else if (b)",
		"{",
		"}",
		"else",
		"{",
		"  x = 2;",
		"  y = 3;",
		"}",
	}, "\n")
	if diff := cmp.Diff(want, String(chain)); diff != "" {
		t.Errorf("if chain mismatch (-want +got):\n%s", diff)
	}
	be.True(t, MakeMultipleIfs(nil, nil) == nil)
}

func TestDanglingElse(t *testing.T) {
	n := &If{Cond: "a", Then: &If{Cond: "b", Then: Statement("f()")}, Else: Statement("g()")}
	want := strings.Join([]string{
		"if (a)",
		"{",
		"  if (b)",
		"    f();",
		"}",
		"else",
		"  g();",
	}, "\n")
	be.Equal(t, String(n), want)
}

func TestWhileModule(t *testing.T) {
	m := &Module{}
	m.Append(Line("#include <x.h>"), Line(""), &While{Cond: "i < 3", Body: Statement("i += 1")})
	be.Equal(t, String(m), "#include <x.h>\n\nwhile (i < 3)\n  i += 1;")
}
