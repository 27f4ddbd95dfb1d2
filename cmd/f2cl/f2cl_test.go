package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nalgeon/be"

	fortran "github.com/1912158597-george/pyopencl"
	"github.com/1912158597-george/pyopencl/config"
)

const saxpy = `subroutine saxpy(n, a, x, y)
  integer n, i
  real a, x(n), y(n)
  do i = 1, n
    y(i) = a*x(i) + y(i)
  end do
end subroutine saxpy
`

// run executes the command line args with stdin and returns its output.
func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestParseHint(t *testing.T) {
	cases := []struct {
		in      string
		want    config.Hint
		wantErr bool
	}{
		0: {in: "k:p=constant", want: config.Hint{Subprogram: "k", Arg: "p", Space: "constant"}},
		1: {in: "k:p=__global", want: config.Hint{Subprogram: "k", Arg: "p", Space: "__global"}},
		2: {in: "k=constant", wantErr: true},
		3: {in: "k:p", wantErr: true},
		4: {in: ":p=local", wantErr: true},
	}
	for i, test := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			got, err := parseHint(test.in)
			be.Equal(t, err != nil, test.wantErr)
			be.Equal(t, got, test.want)
		})
	}
}

func TestParseCast(t *testing.T) {
	cases := []struct {
		in      string
		want    config.Cast
		wantErr bool
	}{
		0: {in: "h:0=__constant double *", want: config.Cast{Callee: "h", Arg: 0, Cast: "__constant double *"}},
		1: {in: "h:2=int *", want: config.Cast{Callee: "h", Arg: 2, Cast: "int *"}},
		2: {in: "h:x=int *", wantErr: true},
		3: {in: "h=int *", wantErr: true},
	}
	for i, test := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			got, err := parseCast(test.in)
			be.Equal(t, err != nil, test.wantErr)
			be.Equal(t, got, test.want)
		})
	}
}

func TestIsFreeFormName(t *testing.T) {
	be.True(t, isFreeFormName("a.f90"))
	be.True(t, isFreeFormName("dir/B.F95"))
	be.True(t, !isFreeFormName("a.f"))
	be.True(t, !isFreeFormName("<stdin>"))
}

func TestTranslateCommand(t *testing.T) {
	out, _, err := run(t, saxpy, "translate", "--free")
	be.Err(t, err, nil)
	be.True(t, strings.HasPrefix(out, "#pragma OPENCL EXTENSION cl_khr_fp64 : enable\n"))
	be.True(t, strings.Contains(out, "void saxpy(int *restrict n, float *restrict a, float *restrict x, float *restrict y)\n{"))

	out, _, err = run(t, saxpy, "translate", "--free", "--hint", "saxpy:x=constant")
	be.Err(t, err, nil)
	be.True(t, strings.Contains(out, "__constant float *x"))
}

func TestTranslateCommandOutputFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "saxpy.f90")
	dst := filepath.Join(dir, "saxpy.cl")
	be.Err(t, os.WriteFile(src, []byte(saxpy), 0o644), nil)

	out, _, err := run(t, "", "translate", "-o", dst, src)
	be.Err(t, err, nil)
	be.Equal(t, out, "")
	data, err := os.ReadFile(dst)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(data), "void saxpy("))
}

func TestTranslateCommandConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "f2cl.yaml")
	const yml = "free_form: true\naddr_space_hints:\n  - {subprogram: SAXPY, arg: Y, space: global}\n"
	be.Err(t, os.WriteFile(cfg, []byte(yml), 0o644), nil)

	out, _, err := run(t, saxpy, "--config", cfg, "translate")
	be.Err(t, err, nil)
	be.True(t, strings.Contains(out, "__global float *y"))
}

func TestTranslateCommandWarnings(t *testing.T) {
	const src = "subroutine w(x)\n  print *, x\nend subroutine w\n"
	_, stderr, err := run(t, src, "translate", "--free")
	be.Err(t, err, nil)
	be.True(t, strings.Contains(stderr, "level=WARN"))
	be.True(t, strings.Contains(stderr, "line=2"))
}

func TestTranslateCommandError(t *testing.T) {
	const src = "subroutine s(x)\n  stop\nend subroutine s\n"
	_, _, err := run(t, src, "translate", "--free")
	var terr *fortran.TranslationError
	be.True(t, errors.As(err, &terr))
	be.Equal(t, terr.Line, 2)
}

func TestVarsCommand(t *testing.T) {
	out, _, err := run(t, saxpy, "vars", "--free", "-")
	be.Err(t, err, nil)
	want := strings.Join([]string{
		"SUB(saxpy) ARG(float:a)",
		"SUB(saxpy) LOCAL(int:i)",
		"SUB(saxpy) ARG(int:n)",
		"SUB(saxpy) ARG(float:x(n))",
		"SUB(saxpy) ARG(float:y(n))",
	}, "\n") + "\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("vars mismatch (-want +got):\n%s", diff)
	}

	out, _, err = run(t, saxpy, "vars", "--free", "--type", "INT", "--filter", "I", "-")
	be.Err(t, err, nil)
	be.Equal(t, out, "SUB(saxpy) LOCAL(int:i)\n")
}

func TestTreeCommand(t *testing.T) {
	out, _, err := run(t, saxpy, "tree", "--free")
	be.Err(t, err, nil)
	be.True(t, strings.HasPrefix(out, "SUBROUTINE saxpy(n, a, x, y)\n"))
	be.True(t, strings.HasSuffix(out, "END SUBROUTINE saxpy\n"))
}

const grepSrc = `subroutine s(a)
  ! scale
  a = a * &
      2.0
  call f(a)
end subroutine s
`

func TestGrepLines(t *testing.T) {
	lines, err := fortran.ReadLogicalLines("s.f90", grepSrc, true, false)
	be.Err(t, err, nil)
	cases := []struct {
		pattern string
		opts    grepOptions
		want    string
	}{
		0: {pattern: `a \* 2`, opts: grepOptions{lineNumbers: true, before: 1}, want: "2-! scale\n3:a = a * 2.0\n"},
		1: {pattern: `call|end`, opts: grepOptions{lineNumbers: true}, want: "5:call f(a)\n6:end subroutine s\n"},
		2: {pattern: `subroutine`, opts: grepOptions{lineNumbers: true}, want: "1:subroutine s(a)\n--\n6:end subroutine s\n"},
		3: {pattern: `subroutine`, opts: grepOptions{noSep: true}, want: "subroutine s(a)\nend subroutine s\n"},
		4: {pattern: `s`, opts: grepOptions{lineNumbers: true, invert: true}, want: "3:a = a * 2.0\n5:call f(a)\n"},
		5: {pattern: `call`, opts: grepOptions{lineNumbers: true, start: 1, end: 4}, want: ""},
		6: {pattern: `s`, opts: grepOptions{filesOnly: true}, want: "s.f90\n"},
	}
	for i, test := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			var buf bytes.Buffer
			found, err := grepLines(&buf, "s.f90", lines, regexp.MustCompile(test.pattern), &test.opts, false)
			be.Err(t, err, nil)
			be.Equal(t, found, test.want != "")
			be.Equal(t, buf.String(), test.want)
		})
	}
}

func TestGrepCommandNoMatch(t *testing.T) {
	_, _, err := run(t, grepSrc, "grep", "--free", "-c", "scale", "-")
	be.True(t, errors.Is(err, errNoMatch))

	out, _, err := run(t, grepSrc, "grep", "--free", "-i", "CALL", "-")
	be.Err(t, err, nil)
	be.Equal(t, out, "5:call f(a)\n")
}

func TestTreeCommandFind(t *testing.T) {
	out, _, err := run(t, grepSrc, "tree", "--free", "--find", "CALL")
	be.Err(t, err, nil)
	be.Equal(t, out, "<stdin>:5: CALL f(a)\n")

	out, _, err = run(t, saxpy, "tree", "--free", "--find", "assignment")
	be.Err(t, err, nil)
	be.Equal(t, out, "<stdin>:5: y(i) = a*x(i) + y(i)\n")
}
