package symbol

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/1912158597-george/pyopencl/dtype"
)

// TestGetDefaultImplicitRules verifies the classical I-N integer convention,
// which applies when a unit has no IMPLICIT statement.
func TestGetDefaultImplicitRules(t *testing.T) {
	rules := GetDefaultImplicitRules()
	for letter := 'a'; letter <= 'z'; letter++ {
		want := dtype.Float32
		if letter >= 'i' && letter <= 'n' {
			want = dtype.Int32
		}
		got, ok := rules.TypeForName(string(letter) + "x")
		be.True(t, ok)
		if got != want {
			t.Errorf("letter %c: got %s, want %s", letter, got, want)
		}
	}
	be.True(t, !rules.Customized())
}

func TestImplicitRulesSetRange(t *testing.T) {
	rules := GetDefaultImplicitRules()
	err := rules.SetRange('A', 'H', dtype.Float64)
	be.Err(t, err, nil)
	err = rules.SetRange('z', 'z', dtype.Complex64)
	be.Err(t, err, nil)

	tests := []struct {
		name string
		want dtype.DType
	}{
		{"alpha", dtype.Float64},
		{"Hx", dtype.Float64},
		{"i", dtype.Int32},
		{"omega", dtype.Float32},
		{"zeta", dtype.Complex64},
	}
	for _, tt := range tests {
		got, ok := rules.TypeForName(tt.name)
		be.True(t, ok)
		if got != tt.want {
			t.Errorf("TypeForName(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
	be.True(t, rules.Customized())
}

func TestImplicitRulesInvalidInput(t *testing.T) {
	rules := GetDefaultImplicitRules()
	be.True(t, rules.SetRange('h', 'a', dtype.Int32) != nil)
	be.True(t, rules.SetRange('0', 'z', dtype.Int32) != nil)

	_, ok := rules.TypeForName("_x")
	be.True(t, !ok)
	_, ok = rules.TypeForName("")
	be.True(t, !ok)

	rules.IsNone = true
	_, ok = rules.TypeForName("x")
	be.True(t, !ok)
}

func TestImplicitRulesCopy(t *testing.T) {
	rules := GetDefaultImplicitRules()
	cp := rules.Copy()
	be.Err(t, cp.SetRange('a', 'a', dtype.Int8), nil)
	got, _ := rules.TypeForName("a")
	be.Equal(t, got, dtype.Float32)
	got, _ = cp.TypeForName("a")
	be.Equal(t, got, dtype.Int8)
}
