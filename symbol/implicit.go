package symbol

import (
	"fmt"

	"github.com/1912158597-george/pyopencl/dtype"
)

// ImplicitRules stores implicit typing rules for a scope.
type ImplicitRules struct {
	IsNone      bool            // IMPLICIT NONE specified?
	LetterTypes [26]dtype.DType // Type for each letter a-z.
	overridden  [26]bool        // Letter was bound by an IMPLICIT statement.
}

// GetDefaultImplicitRules returns the classical Fortran 77 implicit typing rules:
// I-N are INTEGER (int32), A-H and O-Z are REAL (float32).
//
// These also apply to every letter not covered by an IMPLICIT statement.
func GetDefaultImplicitRules() *ImplicitRules {
	rules := &ImplicitRules{}
	for ch := 'a'; ch <= 'z'; ch++ {
		rules.LetterTypes[ch-'a'] = dtype.Float32
	}
	for ch := 'i'; ch <= 'n'; ch++ {
		rules.LetterTypes[ch-'a'] = dtype.Int32
	}
	return rules
}

// Copy creates a deep copy of ImplicitRules.
func (ir *ImplicitRules) Copy() *ImplicitRules {
	if ir == nil {
		return nil
	}
	cp := *ir
	return &cp
}

// Customized reports whether an IMPLICIT statement bound any letter.
func (ir *ImplicitRules) Customized() bool {
	for _, set := range ir.overridden {
		if set {
			return true
		}
	}
	return false
}

// SetRange binds typ to every letter in first..last, both inclusive.
func (ir *ImplicitRules) SetRange(first, last byte, typ dtype.DType) error {
	first, last = lowerLetter(first), lowerLetter(last)
	if first < 'a' || first > 'z' || last < 'a' || last > 'z' {
		return fmt.Errorf("invalid implicit letter range %c-%c", first, last)
	} else if first > last {
		return fmt.Errorf("implicit letter range %c-%c is reversed", first, last)
	}
	for ch := first; ch <= last; ch++ {
		ir.LetterTypes[ch-'a'] = typ
		ir.overridden[ch-'a'] = true
	}
	return nil
}

// TypeForName returns the implicit type for an identifier based on its first letter.
// The boolean is false under IMPLICIT NONE or for names not starting with a letter.
func (ir *ImplicitRules) TypeForName(name string) (dtype.DType, bool) {
	if ir.IsNone || name == "" {
		return dtype.Invalid, false
	}
	ch := lowerLetter(name[0])
	if ch < 'a' || ch > 'z' {
		return dtype.Invalid, false
	}
	return ir.LetterTypes[ch-'a'], true
}

func lowerLetter(ch byte) byte {
	if 'A' <= ch && ch <= 'Z' {
		return ch + 'a' - 'A'
	}
	return ch
}
