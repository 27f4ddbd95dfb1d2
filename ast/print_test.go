package ast

import (
	"bytes"
	"strings"
	"testing"

	"github.com/1912158597-george/pyopencl/dtype"
)

func TestPrint(t *testing.T) {
	sub := &Subroutine{
		StmtInfo: StmtInfo{Line: 3},
		Name:     "test",
		Args:     []string{"a", "n"},
		Body: []Statement{
			&Implicit{StmtInfo: StmtInfo{Line: 4}},
		},
	}

	var buf bytes.Buffer
	err := Fprint(&buf, sub, nil)
	if err != nil {
		t.Fatalf("Fprint failed: %v", err)
	}
	output := buf.String()
	expected := []string{
		"Subroutine",
		"Name: \"test\"",
		"Line: 3",
		"Args: string (len=2)",
		"Implicit",
	}
	for _, exp := range expected {
		if !strings.Contains(output, exp) {
			t.Errorf("Output missing expected string %q\nGot:\n%s", exp, output)
		}
	}
}

func TestPrintWithFilter(t *testing.T) {
	sub := &Subroutine{Name: "test"}

	var buf bytes.Buffer
	err := Fprint(&buf, sub, NotNilFilter)
	if err != nil {
		t.Fatalf("Fprint failed: %v", err)
	}
	output := buf.String()
	if strings.Contains(output, "Body") {
		t.Errorf("Expected Body to be filtered out (nil), but got:\n%s", output)
	}
	if strings.Contains(output, "Label") {
		t.Errorf("Expected empty Label to be filtered out, but got:\n%s", output)
	}
	if !strings.Contains(output, "Name: \"test\"") {
		t.Errorf("Expected Name to appear, but got:\n%s", output)
	}
}

func TestPrintStringer(t *testing.T) {
	var buf bytes.Buffer
	err := Fprint(&buf, &IntLit{Value: 7, Type: dtype.Int64}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Type: int64") {
		t.Errorf("expected dtype printed by name, got:\n%s", buf.String())
	}
}

func TestPrintNil(t *testing.T) {
	var buf bytes.Buffer
	err := Fprint(&buf, nil, nil)
	if err != nil {
		t.Fatalf("Fprint failed: %v", err)
	}
	if buf.String() != "nil" {
		t.Errorf("Expected 'nil', got %q", buf.String())
	}
}

func TestPrettyPrint(t *testing.T) {
	src := &Source{Body: []Statement{
		&Subroutine{Name: "s", Args: []string{"a"}, Body: []Statement{
			&TypeDecl{Type: TypeSpec{Name: "real", Length: "8"}, Entities: []Entity{{Name: "a", Dims: []string{"10"}}}},
			&Do{TargetLabel: "10", LoopControl: "i = 1, 10", Body: []Statement{
				&Assignment{Target: "a(i)", Expr: "0"},
				&Continue{StmtInfo: StmtInfo{Label: "10"}},
			}},
		}},
	}}
	want := `SUBROUTINE s(a)
  REAL*8 a(10)
  DO 10 i = 1, 10
    a(i) = 0
10     CONTINUE
END SUBROUTINE s
`
	got := PrettyPrint(src)
	if got != want {
		t.Errorf("PrettyPrint mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestExprString(t *testing.T) {
	e := &Comparison{Op: "<=", X: &Var{Name: "i"}, Y: &Sum{Terms: []Expression{
		&Var{Name: "n"}, &Neg{X: &IntLit{Value: 1, Type: dtype.Int32}},
	}}}
	if got := ExprString(e); got != "(i <= (n + -1))" {
		t.Errorf("got %q", got)
	}
}
