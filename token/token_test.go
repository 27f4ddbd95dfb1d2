package token

import (
	"strconv"
	"testing"

	"github.com/nalgeon/be"
)

func TestLookupKeyword(t *testing.T) {
	cases := []struct {
		word string
		want Token
	}{
		0: {word: "subroutine", want: SUBROUTINE},
		1: {word: "EndDo", want: ENDDO},
		2: {word: "doubleprecision", want: DOUBLEPRECISION},
		3: {word: "go", want: Identifier},
		4: {word: "x1", want: Identifier},
		5: {word: "Implicit", want: IMPLICIT},
	}
	for i, c := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			be.Equal(t, LookupKeyword([]byte(c.word)), c.want)
		})
	}
}

func TestLookupDotOperator(t *testing.T) {
	be.Equal(t, LookupDotOperator([]byte("and")), AND)
	be.Equal(t, LookupDotOperator([]byte("NeQv")), NEQV)
	be.Equal(t, LookupDotOperator([]byte("false")), FALSE)
	be.Equal(t, LookupDotOperator([]byte("xor")), Illegal)
}

func TestTokenClasses(t *testing.T) {
	be.True(t, DOUBLE.IsTypeDeclaration())
	be.True(t, !IF.IsTypeDeclaration())
	be.True(t, WRITE.IsIO())
	be.True(t, FORMAT.IsIO())
	be.True(t, !CALL.IsIO())
	be.True(t, LessEq.IsRelational())
	be.True(t, EQ.IsRelational())
	be.True(t, !Plus.IsRelational())
	be.True(t, IntLit.IsLiteral())
	be.True(t, DEALLOCATE.IsKeyword())
	be.True(t, !Identifier.IsKeyword())
}

func TestTokenString(t *testing.T) {
	for tok := Undefined; tok < numToks; tok++ {
		if tok.String() == "" {
			t.Errorf("token %d has no name", int(tok))
		}
	}
}
