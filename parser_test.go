package fortran

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nalgeon/be"

	"github.com/1912158597-george/pyopencl/ast"
)

func TestParseFixedForm(t *testing.T) {
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
	got, err := Parse("t.f", src, false, true)
	be.Err(t, err, nil)
	want := &ast.Source{Name: "t.f", Body: []ast.Statement{
		&ast.Subroutine{StmtInfo: ast.StmtInfo{Line: 1}, Name: "saxpy", Args: []string{"n", "a", "x", "y"}, Body: []ast.Statement{
			&ast.Implicit{StmtInfo: ast.StmtInfo{Line: 2}},
			&ast.TypeDecl{StmtInfo: ast.StmtInfo{Line: 3}, Type: ast.TypeSpec{Name: "integer"}, Entities: []ast.Entity{{Name: "n"}, {Name: "i"}}},
			&ast.TypeDecl{StmtInfo: ast.StmtInfo{Line: 4}, Type: ast.TypeSpec{Name: "real"}, Entities: []ast.Entity{
				{Name: "a"}, {Name: "x", Dims: []string{"n"}}, {Name: "y", Dims: []string{"n"}},
			}},
			&ast.Do{StmtInfo: ast.StmtInfo{Line: 5}, TargetLabel: "10", LoopControl: "i = 1, n", Body: []ast.Statement{
				&ast.Assignment{StmtInfo: ast.StmtInfo{Line: 6}, Target: "y(i)", Expr: "a*x(i) + y(i)"},
				&ast.Continue{StmtInfo: ast.StmtInfo{Label: "10", Line: 7}},
			}},
			&ast.Return{StmtInfo: ast.StmtInfo{Line: 8}},
		}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFreeForm(t *testing.T) {
	const src = `subroutine s(a, b)
  implicit real*8 (a-h, o-z), integer (i-n)
  dimension a(10, 0:n)
  double precision c
  data c /1.5d0/, w /2*0.0, 1.0/
  if (b .gt. 0) then
    call f(a, b + 1)
  else if (b .lt. 0) then
    write(*,*) b
  else
    do k = 10, 1, -1
      b = b - 1
    end do
  end if
  if (b .eq. 0) go to 20
20 continue
end subroutine s
`
	got, err := Parse("t.f90", src, true, true)
	be.Err(t, err, nil)
	want := &ast.Source{Name: "t.f90", Body: []ast.Statement{
		&ast.Subroutine{StmtInfo: ast.StmtInfo{Line: 1}, Name: "s", Args: []string{"a", "b"}, Body: []ast.Statement{
			&ast.Implicit{StmtInfo: ast.StmtInfo{Line: 2}, Rules: []ast.ImplicitRule{
				{Type: ast.TypeSpec{Name: "real", Length: "8"}, Ranges: []ast.LetterRange{{First: 'a', Last: 'h'}, {First: 'o', Last: 'z'}}},
				{Type: ast.TypeSpec{Name: "integer"}, Ranges: []ast.LetterRange{{First: 'i', Last: 'n'}}},
			}},
			&ast.Dimension{StmtInfo: ast.StmtInfo{Line: 3}, Entities: []ast.Entity{{Name: "a", Dims: []string{"10", "0:n"}}}},
			&ast.TypeDecl{StmtInfo: ast.StmtInfo{Line: 4}, Type: ast.TypeSpec{Name: "double precision"}, Entities: []ast.Entity{{Name: "c"}}},
			&ast.Data{StmtInfo: ast.StmtInfo{Line: 5}, Items: []ast.DataItem{
				{Names: []string{"c"}, Values: []string{"1.5d0"}},
				{Names: []string{"w"}, Values: []string{"0.0", "0.0", "1.0"}},
			}},
			&ast.IfThen{
				StmtInfo: ast.StmtInfo{Line: 6},
				Cond:     "b .gt. 0",
				Then:     []ast.Statement{&ast.Call{StmtInfo: ast.StmtInfo{Line: 7}, Name: "f", Args: []string{"a", "b + 1"}}},
				ElseIfs: []ast.ElseIf{{Line: 8, Cond: "b .lt. 0", Body: []ast.Statement{
					&ast.IO{StmtInfo: ast.StmtInfo{Line: 9}, Keyword: "write", Text: "(*,*) b"},
				}}},
				HasElse: true,
				Else: []ast.Statement{
					&ast.Do{StmtInfo: ast.StmtInfo{Line: 11}, LoopControl: "k = 10, 1, -1", Body: []ast.Statement{
						&ast.Assignment{StmtInfo: ast.StmtInfo{Line: 12}, Target: "b", Expr: "b - 1"},
					}},
				},
			},
			&ast.If{StmtInfo: ast.StmtInfo{Line: 15}, Cond: "b .eq. 0", Stmt: &ast.Goto{StmtInfo: ast.StmtInfo{Line: 15}, Target: "20"}},
			&ast.Continue{StmtInfo: ast.StmtInfo{Label: "20", Line: 16}},
		}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSharedDoLabel(t *testing.T) {
	const src = `      subroutine s(a)
      do 10 i = 1, 3
      do 10 j = 1, 3
      a(i, j) = 0
   10 continue
      x = 1
      end
`
	got, err := Parse("t.f", src, false, true)
	be.Err(t, err, nil)
	sub := got.Body[0].(*ast.Subroutine)
	be.Equal(t, len(sub.Body), 2)
	outer := sub.Body[0].(*ast.Do)
	be.Equal(t, len(outer.Body), 1)
	inner := outer.Body[0].(*ast.Do)
	be.Equal(t, inner.TargetLabel, "10")
	be.Equal(t, len(inner.Body), 2)
	be.Equal(t, inner.Body[1].Info().Label, "10")
	_, ok := sub.Body[1].(*ast.Assignment)
	be.True(t, ok)
}

func TestParseUnsupportedStatements(t *testing.T) {
	const src = `      subroutine s(a)
      common /blk/ a
      stop 'done'
      if (a) 10, 20, 30
      go to (10, 20), k
      end
`
	got, err := Parse("t.f", src, false, true)
	be.Err(t, err, nil)
	body := got.Body[0].(*ast.Subroutine).Body
	be.Equal(t, len(body), 4)
	common := body[0].(*ast.Unsupported)
	be.Equal(t, common.Keyword, "common")
	be.Equal(t, common.Text, "/blk/ a")
	be.Equal(t, body[1].(*ast.Stop).Code, "'done'")
	aif := body[2].(*ast.ArithmeticIf)
	be.Equal(t, aif.Labels, [3]string{"10", "20", "30"})
	cg := body[3].(*ast.ComputedGoto)
	be.Equal(t, len(cg.Targets), 2)
	be.Equal(t, cg.Expr, "k")
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src string
		msg string
	}{
		0: {src: "      subroutine s\n      do 10 i = 1, 5\n      x = 1\n      end\n", msg: "terminal statement 10 not found"},
		1: {src: "      subroutine s\n      if (x) then\n      y = 1\n      end\n", msg: "missing END IF"},
		2: {src: "      subroutine s\n      x =\n      end\n", msg: "missing right hand side"},
		3: {src: "      subroutine s\n      foo bar\n      end\n", msg: "unrecognized statement"},
		4: {src: "      subroutine s\n      x = 1 $ 2\n      end\n", msg: "illegal token"},
		5: {src: "      subroutine s\n      x = 1\n", msg: "missing END"},
		6: {src: "      subroutine s\n      end do\n      end\n", msg: "END DO without DO"},
		7: {src: "      subroutine s(a)\n      real a(\n      end\n", msg: "unbalanced"},
	}
	for i, test := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			_, err := Parse("t.f", test.src, false, true)
			be.True(t, err != nil)
			var perr *ParseError
			be.True(t, errors.As(err, &perr))
			if !strings.Contains(err.Error(), test.msg) {
				t.Errorf("error %q does not mention %q", err, test.msg)
			}
		})
	}
}

func TestParseUnnamedSource(t *testing.T) {
	got, err := Parse("", "      subroutine s(x)\n      x = 1\n      end\n", false, false)
	be.Err(t, err, nil)
	want := &ast.Source{Body: []ast.Statement{
		&ast.Subroutine{StmtInfo: ast.StmtInfo{Line: 1}, Name: "s", Args: []string{"x"}, Body: []ast.Statement{
			&ast.Assignment{StmtInfo: ast.StmtInfo{Line: 2}, Target: "x", Expr: "1"},
		}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}
