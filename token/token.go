package token

import "bytes"

type Token int

// List of all tokens of the Fortran 77 subset understood by the translator.
// When adding a new token add it in between blocks since we use comparison functions to check properties of tokens.
const (
	// Not to be used in code. Is to catch uninitialized tokens.
	Undefined Token = iota // <undefined>

	// ==================== KEYWORDS ====================

	// Type declaration keywords
	INTEGER         // INTEGER
	REAL            // REAL
	COMPLEX         // COMPLEX
	LOGICAL         // LOGICAL
	CHARACTER       // CHARACTER
	DOUBLE          // DOUBLE
	PRECISION       // PRECISION
	DOUBLEPRECISION // DOUBLEPRECISION
	DOUBLECOMPLEX   // DOUBLECOMPLEX

	// Program structure keywords
	PROGRAM       // PROGRAM
	END           // END
	ENDPROGRAM    // ENDPROGRAM
	SUBROUTINE    // SUBROUTINE
	ENDSUBROUTINE // ENDSUBROUTINE
	FUNCTION      // FUNCTION
	ENDFUNCTION   // ENDFUNCTION
	ENTRY         // ENTRY

	// Control flow keywords
	IF       // IF
	THEN     // THEN
	ELSE     // ELSE
	ELSEIF   // ELSEIF
	ENDIF    // ENDIF
	DO       // DO
	ENDDO    // ENDDO
	WHILE    // WHILE
	GOTO     // GOTO
	CONTINUE // CONTINUE
	RETURN   // RETURN
	STOP     // STOP
	PAUSE    // PAUSE

	// I/O keywords
	READ      // READ
	WRITE     // WRITE
	PRINT     // PRINT
	OPEN      // OPEN
	CLOSE     // CLOSE
	INQUIRE   // INQUIRE
	BACKSPACE // BACKSPACE
	REWIND    // REWIND
	ENDFILE   // ENDFILE
	FORMAT    // FORMAT

	// Declaration and specification keywords
	IMPLICIT    // IMPLICIT
	PARAMETER   // PARAMETER
	DIMENSION   // DIMENSION
	DATA        // DATA
	EQUIVALENCE // EQUIVALENCE
	COMMON      // COMMON
	EXTERNAL    // EXTERNAL
	INTRINSIC   // INTRINSIC
	SAVE        // SAVE

	// Miscellaneous keywords
	CALL       // CALL
	ASSIGN     // ASSIGN
	ALLOCATE   // ALLOCATE
	DEALLOCATE // DEALLOCATE

	// ==================== OPERATORS ====================

	// Arithmetic operators
	Plus       // +
	Minus      // -
	Asterisk   // *
	Slash      // /
	DoubleStar // **

	Equals // =

	// Relational operators (Fortran 77 style)
	EQ // .EQ.
	NE // .NE.
	LT // .LT.
	LE // .LE.
	GT // .GT.
	GE // .GE.

	// Relational operators (Fortran 90 style)
	EqEq      // ==
	NotEquals // /=
	Less      // <
	LessEq    // <=
	Greater   // >
	GreaterEq // >=

	// Logical operators
	AND  // .AND.
	OR   // .OR.
	NOT  // .NOT.
	EQV  // .EQV.
	NEQV // .NEQV.

	// String operator
	StringConcat // //

	// ==================== DELIMITERS / PUNCTUATION ====================

	LParen      // (
	RParen      // )
	Comma       // ,
	Colon       // :
	DoubleColon // ::

	// ==================== LITERALS ====================

	// Logical constants
	TRUE  // .TRUE.
	FALSE // .FALSE.

	// User-defined literals
	Identifier // <identifier>
	IntLit     // <integer>
	FloatLit   // <float>
	StringLit  // <string>

	// ==================== SPECIAL TOKENS ====================

	LineComment // <linecomment>
	EOF         // <EOF>
	Illegal     // <illegal>
	numToks
)

var tokenNames = [numToks]string{
	Undefined:       "<undefined>",
	INTEGER:         "INTEGER",
	REAL:            "REAL",
	COMPLEX:         "COMPLEX",
	LOGICAL:         "LOGICAL",
	CHARACTER:       "CHARACTER",
	DOUBLE:          "DOUBLE",
	PRECISION:       "PRECISION",
	DOUBLEPRECISION: "DOUBLEPRECISION",
	DOUBLECOMPLEX:   "DOUBLECOMPLEX",
	PROGRAM:         "PROGRAM",
	END:             "END",
	ENDPROGRAM:      "ENDPROGRAM",
	SUBROUTINE:      "SUBROUTINE",
	ENDSUBROUTINE:   "ENDSUBROUTINE",
	FUNCTION:        "FUNCTION",
	ENDFUNCTION:     "ENDFUNCTION",
	ENTRY:           "ENTRY",
	IF:              "IF",
	THEN:            "THEN",
	ELSE:            "ELSE",
	ELSEIF:          "ELSEIF",
	ENDIF:           "ENDIF",
	DO:              "DO",
	ENDDO:           "ENDDO",
	WHILE:           "WHILE",
	GOTO:            "GOTO",
	CONTINUE:        "CONTINUE",
	RETURN:          "RETURN",
	STOP:            "STOP",
	PAUSE:           "PAUSE",
	READ:            "READ",
	WRITE:           "WRITE",
	PRINT:           "PRINT",
	OPEN:            "OPEN",
	CLOSE:           "CLOSE",
	INQUIRE:         "INQUIRE",
	BACKSPACE:       "BACKSPACE",
	REWIND:          "REWIND",
	ENDFILE:         "ENDFILE",
	FORMAT:          "FORMAT",
	IMPLICIT:        "IMPLICIT",
	PARAMETER:       "PARAMETER",
	DIMENSION:       "DIMENSION",
	DATA:            "DATA",
	EQUIVALENCE:     "EQUIVALENCE",
	COMMON:          "COMMON",
	EXTERNAL:        "EXTERNAL",
	INTRINSIC:       "INTRINSIC",
	SAVE:            "SAVE",
	CALL:            "CALL",
	ASSIGN:          "ASSIGN",
	ALLOCATE:        "ALLOCATE",
	DEALLOCATE:      "DEALLOCATE",
	Plus:            "+",
	Minus:           "-",
	Asterisk:        "*",
	Slash:           "/",
	DoubleStar:      "**",
	Equals:          "=",
	EQ:              ".EQ.",
	NE:              ".NE.",
	LT:              ".LT.",
	LE:              ".LE.",
	GT:              ".GT.",
	GE:              ".GE.",
	EqEq:            "==",
	NotEquals:       "/=",
	Less:            "<",
	LessEq:          "<=",
	Greater:         ">",
	GreaterEq:       ">=",
	AND:             ".AND.",
	OR:              ".OR.",
	NOT:             ".NOT.",
	EQV:             ".EQV.",
	NEQV:            ".NEQV.",
	StringConcat:    "//",
	LParen:          "(",
	RParen:          ")",
	Comma:           ",",
	Colon:           ":",
	DoubleColon:     "::",
	TRUE:            ".TRUE.",
	FALSE:           ".FALSE.",
	Identifier:      "<identifier>",
	IntLit:          "<integer>",
	FloatLit:        "<float>",
	StringLit:       "<string>",
	LineComment:     "<linecomment>",
	EOF:             "<EOF>",
	Illegal:         "<illegal>",
}

func (tok Token) String() string {
	if tok < 0 || tok >= numToks {
		return "Token(?)"
	}
	return tokenNames[tok]
}

// IsKeyword returns true if the token is a Fortran keyword.
func (tok Token) IsKeyword() bool {
	return tok >= INTEGER && tok <= DEALLOCATE
}

// IsTypeDeclaration returns true if the token is a type declaration keyword.
func (tok Token) IsTypeDeclaration() bool {
	return tok >= INTEGER && tok <= DOUBLECOMPLEX
}

// IsEnd returns true if the token starts with END. Includes composite ENDs like ENDDO, ENDIF, ENDSUBROUTINE.
func (tok Token) IsEnd() bool {
	switch tok {
	case END, ENDIF, ENDDO, ENDPROGRAM, ENDSUBROUTINE, ENDFUNCTION:
		return true
	}
	return false
}

// IsIO returns true for statements that perform file or terminal I/O.
func (tok Token) IsIO() bool {
	return tok >= READ && tok <= FORMAT
}

// IsOperator returns true if the token is an operator.
func (tok Token) IsOperator() bool {
	return tok >= Plus && tok <= StringConcat
}

// IsRelational returns true for both the dotted and symbolic comparison operators.
func (tok Token) IsRelational() bool {
	return tok >= EQ && tok <= GreaterEq
}

// IsDelimiter returns true if the token is a delimiter or punctuation.
func (tok Token) IsDelimiter() bool {
	return tok >= LParen && tok <= DoubleColon
}

// IsLiteral returns true if the token is a literal value (logical constant or user-defined literal).
func (tok Token) IsLiteral() bool {
	return tok >= TRUE && tok <= StringLit
}

// CanBeUsedAsIdentifier reports whether the token may name a variable or procedure.
// Fortran has no reserved words so every keyword qualifies.
func (tok Token) CanBeUsedAsIdentifier() bool {
	return tok == Identifier || tok.IsKeyword()
}

// LookupKeyword returns [Identifier] or the token for keyword maybeKeyword represents if found.
func LookupKeyword(maybeKeyword []byte) Token {
	upper := bytes.ToUpper(maybeKeyword)
	switch string(upper) {
	default:
		return Identifier
	case "INTEGER":
		return INTEGER
	case "REAL":
		return REAL
	case "COMPLEX":
		return COMPLEX
	case "LOGICAL":
		return LOGICAL
	case "CHARACTER":
		return CHARACTER
	case "DOUBLE":
		return DOUBLE
	case "PRECISION":
		return PRECISION
	case "DOUBLEPRECISION":
		return DOUBLEPRECISION
	case "DOUBLECOMPLEX":
		return DOUBLECOMPLEX
	case "PROGRAM":
		return PROGRAM
	case "END":
		return END
	case "ENDPROGRAM":
		return ENDPROGRAM
	case "SUBROUTINE":
		return SUBROUTINE
	case "ENDSUBROUTINE":
		return ENDSUBROUTINE
	case "FUNCTION":
		return FUNCTION
	case "ENDFUNCTION":
		return ENDFUNCTION
	case "ENTRY":
		return ENTRY
	case "IF":
		return IF
	case "THEN":
		return THEN
	case "ELSE":
		return ELSE
	case "ELSEIF":
		return ELSEIF
	case "ENDIF":
		return ENDIF
	case "DO":
		return DO
	case "ENDDO":
		return ENDDO
	case "WHILE":
		return WHILE
	case "GOTO":
		return GOTO
	case "CONTINUE":
		return CONTINUE
	case "RETURN":
		return RETURN
	case "STOP":
		return STOP
	case "PAUSE":
		return PAUSE
	case "READ":
		return READ
	case "WRITE":
		return WRITE
	case "PRINT":
		return PRINT
	case "OPEN":
		return OPEN
	case "CLOSE":
		return CLOSE
	case "INQUIRE":
		return INQUIRE
	case "BACKSPACE":
		return BACKSPACE
	case "REWIND":
		return REWIND
	case "ENDFILE":
		return ENDFILE
	case "FORMAT":
		return FORMAT
	case "IMPLICIT":
		return IMPLICIT
	case "PARAMETER":
		return PARAMETER
	case "DIMENSION":
		return DIMENSION
	case "DATA":
		return DATA
	case "EQUIVALENCE":
		return EQUIVALENCE
	case "COMMON":
		return COMMON
	case "EXTERNAL":
		return EXTERNAL
	case "INTRINSIC":
		return INTRINSIC
	case "SAVE":
		return SAVE
	case "CALL":
		return CALL
	case "ASSIGN":
		return ASSIGN
	case "ALLOCATE":
		return ALLOCATE
	case "DEALLOCATE":
		return DEALLOCATE
	}
}

// LookupDotOperator checks if the internal characters in a dot operator
// match with a token. Returns [Illegal] if no match found.
func LookupDotOperator(ident []byte) Token {
	upper := bytes.ToUpper(ident)
	switch string(upper) {
	default:
		return Illegal
	case "TRUE":
		return TRUE
	case "FALSE":
		return FALSE
	case "EQ":
		return EQ
	case "NE":
		return NE
	case "LT":
		return LT
	case "LE":
		return LE
	case "GT":
		return GT
	case "GE":
		return GE
	case "AND":
		return AND
	case "OR":
		return OR
	case "NOT":
		return NOT
	case "EQV":
		return EQV
	case "NEQV":
		return NEQV
	}
}
