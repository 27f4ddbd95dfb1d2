package dtype

// MappingError is returned when a type has no OpenCL C name.
type MappingError struct {
	Type DType
}

func (e *MappingError) Error() string {
	return "dtype: no OpenCL C type for " + e.Type.String()
}

var cTypes = map[DType]string{
	Int64:      "long",
	Uint64:     "unsigned long",
	Int32:      "int",
	Uint32:     "unsigned int",
	Int16:      "short int",
	Uint16:     "short unsigned int",
	Int8:       "signed char",
	Uint8:      "unsigned char",
	Float32:    "float",
	Float64:    "double",
	Complex64:  "cfloat_t",
	Complex128: "cdouble_t",
}

// CType returns the OpenCL C spelling of t.
func CType(t DType) (string, error) {
	name, ok := cTypes[t]
	if !ok {
		return "", &MappingError{Type: t}
	}
	return name, nil
}

// ComplexPrefix returns the name prefix of the pyopencl-complex.h helpers
// operating on t, "cfloat" or "cdouble". It returns an empty string for
// non-complex types.
func ComplexPrefix(t DType) string {
	switch t {
	case Complex64:
		return "cfloat"
	case Complex128:
		return "cdouble"
	}
	return ""
}
