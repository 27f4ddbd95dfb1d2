package ast

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
)

// A FieldFilter is used to filter fields when printing AST nodes.
// If it returns false, the field is excluded from the output.
type FieldFilter func(name string, value reflect.Value) bool

// NotNilFilter returns true for all fields that are not nil or zero-value.
// This is useful for excluding nil pointers, slices, empty strings and false bools from the output.
func NotNilFilter(_ string, v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return !v.IsNil()
	case reflect.Bool:
		return v.Bool()
	case reflect.String:
		return v.Len() > 0
	}
	return true
}

// Fprint prints the tree rooted at x to w in an indented format.
// If a non-nil FieldFilter f is provided, only fields for which f returns true are printed.
// Fprint is useful for debugging and testing.
func Fprint(w io.Writer, x any, f FieldFilter) error {
	p := &printer{
		output: w,
		filter: f,
		ptrmap: make(map[any]int),
	}
	p.print(reflect.ValueOf(x))
	return p.err
}

// Print calls Fprint(os.Stdout, x, NotNilFilter) for debugging convenience.
func Print(x any) error {
	return Fprint(os.Stdout, x, NotNilFilter)
}

type printer struct {
	output io.Writer
	filter FieldFilter
	ptrmap map[any]int
	indent int
	err    error
}

var stringerType = reflect.TypeFor[fmt.Stringer]()

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.output, format, args...)
}

func (p *printer) print(v reflect.Value) {
	if !v.IsValid() {
		p.printf("nil")
		return
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			p.printf("nil")
			return
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			p.printf("nil")
			return
		}
		ptr := v.Interface()
		if id, exists := p.ptrmap[ptr]; exists {
			p.printf("(obj @ %d)", id)
			return
		}
		p.ptrmap[ptr] = len(p.ptrmap)
		v = v.Elem()
	}

	t := v.Type()
	// Enumerations such as dtype.DType print by name.
	if v.Kind() != reflect.Struct && t.Implements(stringerType) && v.CanInterface() {
		p.printf("%s", v.Interface().(fmt.Stringer).String())
		return
	}

	switch v.Kind() {
	case reflect.Struct:
		p.printf("%s {", t.Name())
		p.indent++
		printed := false
		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			fv := v.Field(i)
			if !field.IsExported() {
				continue
			}
			if p.filter != nil && !p.filter(field.Name, fv) {
				continue
			}
			p.printf("\n")
			p.printIndent()
			p.printf("%s: ", field.Name)
			p.print(fv)
			printed = true
		}
		p.indent--
		if printed {
			p.printf("\n")
			p.printIndent()
		}
		p.printf("}")

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			p.printf("nil")
			return
		}
		p.printf("%s (len=%d) [", t.Elem().String(), v.Len())
		if v.Len() > 0 {
			p.indent++
			for i := 0; i < v.Len(); i++ {
				p.printf("\n")
				p.printIndent()
				p.printf("%d: ", i)
				p.print(v.Index(i))
			}
			p.indent--
			p.printf("\n")
			p.printIndent()
		}
		p.printf("]")

	case reflect.String:
		s := v.String()
		s = strings.ReplaceAll(s, "\t", "\\t")
		p.printf("%q", s)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		p.printf("%d", v.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		p.printf("%d", v.Uint())

	case reflect.Float32, reflect.Float64:
		p.printf("%g", v.Float())

	case reflect.Bool:
		p.printf("%t", v.Bool())

	default:
		p.printf("%v", v.Interface())
	}
}

func (p *printer) printIndent() {
	for i := 0; i < p.indent; i++ {
		p.printf("  ")
	}
}
