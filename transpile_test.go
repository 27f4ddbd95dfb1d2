package fortran

import (
	"bytes"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nalgeon/be"

	"github.com/1912158597-george/pyopencl/ast"
	"github.com/1912158597-george/pyopencl/cgen"
	"github.com/1912158597-george/pyopencl/dtype"
	"github.com/1912158597-george/pyopencl/symbol"
)

const preamble = "#pragma OPENCL EXTENSION cl_khr_fp64 : enable\n#include <pyopencl-complex.h>\n\n"

func lines(l ...string) string { return strings.Join(l, "\n") + "\n" }

func translateOK(t *testing.T, src string, opts Options) *Result {
	t.Helper()
	res, err := Translate(src, opts)
	be.Err(t, err, nil)
	return res
}

func diffSource(t *testing.T, want, got string) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("translation mismatch (-want +got):\n%s", diff)
	}
}

func TestTranslateSaxpy(t *testing.T) {
	const src = `      subroutine saxpy(n, a, x, y)
      implicit none
      integer n, i
      real a, x(n), y(n)
      do 10 i = 1, n
         y(i) = a*x(i) + y(i)
   10 continue
      return
      end
`
	res := translateOK(t, src, Options{SourceName: "saxpy.f", Strict: true})
	want := preamble + lines(
		"void saxpy(int *restrict n, float *restrict a, float *restrict x, float *restrict y);",
		"",
		"void saxpy(int *restrict n, float *restrict a, float *restrict x, float *restrict y)",
		"{",
		"  int i;",
		`  dimension "fortran" x[*n];`,
		`  dimension "fortran" y[*n];`,
		"",
		"  for (i = 1; i <= *n; i += 1)",
		"  {",
		"    y[i] = *a * x[i] + y[i];",
		"    label_10:;",
		"  }",
		"}",
	)
	diffSource(t, want, res.Source)
	be.Equal(t, len(res.Warnings), 0)
	be.Equal(t, len(res.Scopes), 1)
	be.Equal(t, res.Scopes[0].Name(), "saxpy")
}

func TestTranslateArrayIncrement(t *testing.T) {
	const src = `      subroutine inc(a)
      implicit none
      real a(10)
      integer i
      do i = 1, 10
         a(i) = a(i) + 1.0
      end do
      end
`
	res := translateOK(t, src, Options{Strict: true})
	want := preamble + lines(
		"void inc(float *restrict a);",
		"",
		"void inc(float *restrict a)",
		"{",
		`  dimension "fortran" a[10];`,
		"  int i;",
		"",
		"  for (i = 1; i <= 10; i += 1)",
		"    a[i] = a[i] + 1.0f;",
		"}",
	)
	diffSource(t, want, res.Source)
}

func TestTranslateNegativeStep(t *testing.T) {
	const src = `subroutine r(a)
  real a(10)
  do 20 i = 10, 1, -1
    a(i) = 0.0
20 continue
end subroutine r
`
	res := translateOK(t, src, Options{FreeForm: true})
	want := preamble + lines(
		"void r(float *restrict a);",
		"",
		"void r(float *restrict a)",
		"{",
		`  dimension "fortran" a[10];`,
		"  int i;",
		"",
		"  for (i = 10; i >= 1; i += -1)",
		"  {",
		"    a[i] = 0.0f;",
		"    label_20:;",
		"  }",
		"}",
	)
	diffSource(t, want, res.Source)
}

func TestNeedsRealPart(t *testing.T) {
	cases := []struct {
		lhs, rhs dtype.DType
		want     bool
	}{
		0: {lhs: dtype.Float32, rhs: dtype.Complex64, want: true},
		1: {lhs: dtype.Float64, rhs: dtype.Complex128, want: true},
		2: {lhs: dtype.Int32, rhs: dtype.Complex64, want: true},
		3: {lhs: dtype.Complex64, rhs: dtype.Complex128, want: false},
		4: {lhs: dtype.Complex128, rhs: dtype.Complex128, want: false},
		5: {lhs: dtype.Float32, rhs: dtype.Float64, want: false},
		6: {lhs: dtype.Complex64, rhs: dtype.Float32, want: false},
	}
	for i, test := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			be.Equal(t, needsRealPart(test.lhs, test.rhs), test.want)
		})
	}
}

func TestTranslateComplexAssignment(t *testing.T) {
	const src = `      subroutine g(x, z)
      real x
      complex z
      x = z * 2.0
      z = x
      end
`
	res := translateOK(t, src, Options{})
	want := preamble + lines(
		"void g(float *restrict x, cfloat_t *restrict z);",
		"",
		"void g(float *restrict x, cfloat_t *restrict z)",
		"{",
		"",
		"  *x = cfloat_real(2.0f * *z);",
		"  *z = cfloat_fromreal(*x);",
		"}",
	)
	diffSource(t, want, res.Source)
}

func TestTranslateIfChain(t *testing.T) {
	const src = `subroutine c(x, k)
  if (k .gt. 0) then
    x = 1.0
  else if (k .lt. 0) then
    x = -1.0
  else
    x = 0.0
    k = 1
  end if
  if (x .eq. 0.0) return
end subroutine c
`
	res := translateOK(t, src, Options{FreeForm: true})
	want := preamble + lines(
		"void c(float *restrict x, int *restrict k);",
		"",
		"void c(float *restrict x, int *restrict k)",
		"{",
		"",
		"  if (*k > 0)",
		"    *x = 1.0f;",
		"  else if (*k < 0)",
		"    *x = -1.0f;",
		"  else",
		"  {",
		"    *x = 0.0f;",
		"    *k = 1;",
		"  }",
		"  if (*x == 0.0f)",
		"    return;",
		"}",
	)
	diffSource(t, want, res.Source)
}

func TestTranslateDataInitializers(t *testing.T) {
	const src = `subroutine d(y)
  real y, c(3), s
  complex z
  data c /1.0, 2.0, 3.0/, s /0.5/
  data z /(1.0, -2.0)/
  y = c(2) * s
end subroutine d
`
	res := translateOK(t, src, Options{FreeForm: true})
	want := preamble + lines(
		"void d(float *restrict y);",
		"",
		"__constant float d_c[] = { 1.0f, 2.0f, 3.0f };",
		"",
		"void d(float *restrict y)",
		"{",
		`  dimension "fortran" d_c[3];`,
		"  float s = 0.5f;",
		"  cfloat_t z = { 1.0f, -2.0f };",
		"",
		"  *y = d_c[2] * s;",
		"}",
	)
	diffSource(t, want, res.Source)
}

func TestTranslateHintsAndCasts(t *testing.T) {
	const src = `subroutine k(p, m)
  real*8 p(m)
  integer m
  call h(p, m)
  call h(p(2), m)
end subroutine k
`
	res := translateOK(t, src, Options{
		FreeForm:       true,
		AddrSpaceHints: map[ArgKey]cgen.AddressSpace{{Subprogram: "k", Arg: "p"}: cgen.Constant},
		ForceCasts:     map[CastKey]string{{Callee: "h", Arg: 0}: "__constant double *"},
	})
	want := preamble + lines(
		"void k(__constant double *p, int *restrict m);",
		"",
		"void k(__constant double *p, int *restrict m)",
		"{",
		`  dimension "fortran" p[*m];`,
		"",
		"  h((__constant double *) (p), m);",
		"  h((__constant double *) (&p[2]), m);",
		"}",
	)
	diffSource(t, want, res.Source)
}

func TestTranslateWarnings(t *testing.T) {
	const src = `subroutine w(x)
  write(*,*) x
  x = 1.0
end subroutine w
`
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	res := translateOK(t, src, Options{FreeForm: true, Logger: logger})
	be.Equal(t, res.Warnings, []Warning{{Line: 2, Msg: "'write' unsupported"}})
	be.True(t, strings.Contains(res.Source, "  *x = 1.0f;\n"))
	be.True(t, !strings.Contains(res.Source, "write"))
	be.True(t, strings.Contains(logs.String(), "line=2"))
}

func TestTranslateErrors(t *testing.T) {
	cases := []struct {
		body     string
		wantLine int
		wantMsg  string
	}{
		0: {body: "do i = 1, 10, k\n  x = 1.0\nend do", wantLine: 2, wantMsg: "non-constant steps"},
		1: {body: "do\n  x = 1.0\nend do", wantLine: 2, wantMsg: "unbounded DO"},
		2: {body: "stop", wantLine: 2, wantMsg: "STOP"},
		3: {body: "equivalence (x, y)", wantLine: 2, wantMsg: "EQUIVALENCE"},
		4: {body: "x = 'abc'", wantLine: 2, wantMsg: "character constants"},
		5: {body: "character c", wantLine: 2, wantMsg: "CHARACTER"},
		6: {body: "call f(1.0)", wantLine: 2, wantMsg: "argument 1 of CALL f (1.0) has no address"},
		7: {body: "x = 1.0\ny = g(x) ** 2\ngo to (10, 20) k", wantLine: 4, wantMsg: "computed GOTO"},
	}
	for i, test := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			src := "subroutine s(x)\n" + test.body + "\nend subroutine s\n"
			res, err := Translate(src, Options{FreeForm: true})
			be.True(t, res == nil)
			var terr *TranslationError
			if !errors.As(err, &terr) {
				t.Fatalf("got error %v, want a *TranslationError", err)
			}
			be.Equal(t, terr.Line, test.wantLine)
			be.True(t, strings.Contains(err.Error(), test.wantMsg))
		})
	}
}

func TestTranslateImplicitNone(t *testing.T) {
	const src = "subroutine s(x)\n  implicit none\n  real x\n  x = q + 1\nend subroutine s\n"
	_, err := Translate(src, Options{FreeForm: true})
	var terr *TranslationError
	be.True(t, errors.As(err, &terr))
	be.Equal(t, terr.Line, 4)
	var symErr *symbol.Error
	be.True(t, errors.As(err, &symErr))
	be.Equal(t, symErr.Name, "q")
}

func TestTranslateExprParseError(t *testing.T) {
	const src = "subroutine s(x)\n  x = (1.0 +\nend subroutine s\n"
	_, err := Translate(src, Options{FreeForm: true, SourceName: "s.f90"})
	var perr *ParseError
	be.True(t, errors.As(err, &perr))
	be.Equal(t, perr.Line(), 2)
	be.True(t, strings.HasPrefix(err.Error(), "s.f90:2: in \"(1.0 +\""))
}

func TestTranslateUnits(t *testing.T) {
	_, err := Translate("program p\nend program p\n", Options{FreeForm: true})
	var terr *TranslationError
	be.True(t, errors.As(err, &terr))

	_, err = Translate("real function f(x)\n  f = x\nend function f\n", Options{FreeForm: true})
	be.True(t, errors.As(err, &terr))
	be.True(t, strings.Contains(err.Error(), "FUNCTION"))
}

func TestTranslateEmpty(t *testing.T) {
	res := translateOK(t, "", Options{})
	be.Equal(t, res.Source, preamble)
	be.Equal(t, len(res.Scopes), 0)
}

func TestTranslateZeroOptions(t *testing.T) {
	const src = `      subroutine z(a, n)
      real a(n)
      integer k
      data k /2/
      do 10 i = 1, n
         if (a(i) .lt. 0.0) a(i) = 0.0
   10 continue
      call g(a(k), n)
      end
`
	res := translateOK(t, src, Options{})
	want := preamble + lines(
		"void z(float *restrict a, int *restrict n);",
		"",
		"void z(float *restrict a, int *restrict n)",
		"{",
		`  dimension "fortran" a[*n];`,
		"  int i;",
		"  int k = 2;",
		"",
		"  for (i = 1; i <= *n; i += 1)",
		"  {",
		"    if (a[i] < 0.0f)",
		"      a[i] = 0.0f;",
		"    label_10:;",
		"  }",
		"  g(&a[k], n);",
		"}",
	)
	diffSource(t, want, res.Source)
}

func TestParseExprUnnamed(t *testing.T) {
	expr, err := ParseExpr("x(1) + 2", nil)
	be.Err(t, err, nil)
	be.Equal(t, ast.ExprString(expr), "(x(1) + 2)")
}
