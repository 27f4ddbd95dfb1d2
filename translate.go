package fortran

import (
	"context"
	"log/slog"

	"github.com/1912158597-george/pyopencl/cgen"
	"github.com/1912158597-george/pyopencl/postpass"
	"github.com/1912158597-george/pyopencl/symbol"
)

// ArgKey names an argument of a subroutine.
type ArgKey struct {
	Subprogram string
	Arg        string
}

// CastKey names an argument position of a CALL to Callee, counted from zero.
type CastKey struct {
	Callee string
	Arg    int
}

// Options configures a translation. The zero value reads lenient fixed
// form source and applies no post pass.
type Options struct {
	SourceName string // used in error positions.
	FreeForm   bool
	Strict     bool
	// AddrSpaceHints places pointer arguments in an address space instead
	// of declaring them restrict.
	AddrSpaceHints map[ArgKey]cgen.AddressSpace
	// ForceCasts casts the address passed at a call site argument.
	ForceCasts map[CastKey]string
	PostPass   postpass.Pass
	Logger     *slog.Logger
}

// Result is a translated source.
type Result struct {
	Source   string
	Warnings []Warning
	Scopes   []*symbol.Scope
}

// Translate translates Fortran source into OpenCL C.
func Translate(source string, opts Options) (*Result, error) {
	return TranslateContext(context.Background(), source, opts)
}

// TranslateContext is like [Translate]; ctx bounds the post pass.
// Translation is all or nothing: the first error aborts it.
func TranslateContext(ctx context.Context, source string, opts Options) (*Result, error) {
	tree, err := Parse(opts.SourceName, source, opts.FreeForm, opts.Strict)
	if err != nil {
		return nil, err
	}
	var tr Translator
	tr.Reset(&opts)
	mod, err := tr.TranslateSource(tree)
	if err != nil {
		return nil, err
	}
	text := cgen.String(mod) + "\n"
	if opts.PostPass != nil {
		text, err = opts.PostPass.Transform(ctx, text)
		if err != nil {
			return nil, err
		}
	}
	return &Result{Source: text, Warnings: tr.Warnings(), Scopes: tr.Scopes()}, nil
}
