// Package dtype defines the numeric types the translator reasons about, the
// promotion rules between them and their OpenCL C spelling.
package dtype

import "strconv"

// DType is a semantic numeric type. The zero value is Invalid.
type DType uint8

const (
	Invalid DType = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Complex64
	Complex128
	numTypes
)

var typeNames = [numTypes]string{
	Invalid:    "invalid",
	Int8:       "int8",
	Int16:      "int16",
	Int32:      "int32",
	Int64:      "int64",
	Uint8:      "uint8",
	Uint16:     "uint16",
	Uint32:     "uint32",
	Uint64:     "uint64",
	Float32:    "float32",
	Float64:    "float64",
	Complex64:  "complex64",
	Complex128: "complex128",
}

func (t DType) String() string {
	if t >= numTypes {
		return "DType(" + strconv.Itoa(int(t)) + ")"
	}
	return typeNames[t]
}

// IsInteger reports whether t is a signed or unsigned integer type.
func (t DType) IsInteger() bool { return t >= Int8 && t <= Uint64 }

// IsUnsigned reports whether t is an unsigned integer type.
func (t DType) IsUnsigned() bool { return t >= Uint8 && t <= Uint64 }

// IsFloat reports whether t is a real floating point type.
func (t DType) IsFloat() bool { return t == Float32 || t == Float64 }

// IsComplex reports whether t is a complex type.
func (t DType) IsComplex() bool { return t == Complex64 || t == Complex128 }

// Bits returns the storage width of t in bits. Complex widths count both components.
func (t DType) Bits() int {
	switch t {
	case Int8, Uint8:
		return 8
	case Int16, Uint16:
		return 16
	case Int32, Uint32, Float32:
		return 32
	case Int64, Uint64, Float64, Complex64:
		return 64
	case Complex128:
		return 128
	}
	return 0
}

// Component returns the real type of a complex type's parts. Other types are returned unchanged.
func (t DType) Component() DType {
	switch t {
	case Complex64:
		return Float32
	case Complex128:
		return Float64
	}
	return t
}

// ComplexOf returns the complex type whose components have type f.
func ComplexOf(f DType) DType {
	if f == Float64 || f == Complex128 {
		return Complex128
	}
	return Complex64
}

func signedOfBits(bits int) DType {
	switch {
	case bits <= 8:
		return Int8
	case bits <= 16:
		return Int16
	case bits <= 32:
		return Int32
	}
	return Int64
}

func unsignedOfBits(bits int) DType {
	switch {
	case bits <= 8:
		return Uint8
	case bits <= 16:
		return Uint16
	case bits <= 32:
		return Uint32
	}
	return Uint64
}

// Promote returns the type of a sum holding one unit value of each argument type.
//
//   - integers promote to the widest width involved. Mixing signed and unsigned
//     integers gives a signed type wide enough for both; uint64 mixed with a signed
//     type has no such integer and gives float64.
//   - any real operand makes the result real, with the width of the widest real
//     operand. Integer operands never widen a real result.
//   - any complex operand makes the result complex, with component width of the
//     widest real or complex component involved.
//
// Promote returns Invalid if no types are given or any type is Invalid.
func Promote(types ...DType) DType {
	if len(types) == 0 {
		return Invalid
	}
	var (
		signedBits, unsignedBits int
		floatBits                int
		anyComplex               bool
	)
	for _, t := range types {
		switch {
		case t == Invalid || t >= numTypes:
			return Invalid
		case t.IsUnsigned():
			unsignedBits = max(unsignedBits, t.Bits())
		case t.IsInteger():
			signedBits = max(signedBits, t.Bits())
		case t.IsFloat():
			floatBits = max(floatBits, t.Bits())
		case t.IsComplex():
			anyComplex = true
			floatBits = max(floatBits, t.Component().Bits())
		}
	}
	switch {
	case anyComplex:
		if floatBits > 32 {
			return Complex128
		}
		return Complex64
	case floatBits > 0:
		if floatBits > 32 {
			return Float64
		}
		return Float32
	case unsignedBits == 0:
		return signedOfBits(signedBits)
	case signedBits == 0:
		return unsignedOfBits(unsignedBits)
	case signedBits > unsignedBits:
		return signedOfBits(signedBits)
	case unsignedBits == 64:
		return Float64
	}
	return signedOfBits(2 * unsignedBits)
}
