package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	fortran "github.com/1912158597-george/pyopencl"
	"github.com/1912158597-george/pyopencl/dtype"
	"github.com/1912158597-george/pyopencl/symbol"
)

type varsFilter struct {
	name    string
	typ     string
	verbose bool
}

func newVarsCmd(rf *rootFlags) *cobra.Command {
	var (
		sf     sourceFlags
		filter varsFilter
	)
	cmd := &cobra.Command{
		Use:   "vars file ...",
		Short: "List the names of each translated subroutine",
		Long: `List the names of each translated subroutine, one per line:

	SUB(name) KIND(TYPE:var(dims)) [flags]

KIND is ARG, DATA or LOCAL and TYPE is the OpenCL C type of the name.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rf.loadConfig()
			if err != nil {
				return err
			}
			inputs, err := readInputs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			filter.verbose = rf.verbose
			for _, in := range inputs {
				opts, err := options(rf, cfg, cmd.Flags(), &sf, in, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				res, err := fortran.TranslateContext(cmd.Context(), in.text, opts)
				if err != nil {
					return fmt.Errorf("%s: %w", in.name, err)
				}
				if err := writeScopes(cmd.OutOrStdout(), res.Scopes, filter); err != nil {
					return err
				}
			}
			return nil
		},
	}
	fs := cmd.Flags()
	sf.register(fs)
	fs.StringVar(&filter.name, "filter", "", "only names containing `text`")
	fs.StringVar(&filter.typ, "type", "", "only names of OpenCL C `type` (float, cdouble_t, ...)")
	return cmd
}

func writeScopes(w io.Writer, scopes []*symbol.Scope, filter varsFilter) error {
	for _, scope := range scopes {
		for _, name := range scope.KnownNames() {
			if filter.name != "" && !strings.Contains(name, strings.ToLower(filter.name)) {
				continue
			}
			typ := typeName(scope, name)
			if filter.typ != "" && !strings.EqualFold(typ, filter.typ) {
				continue
			}
			_, err := fmt.Fprintf(w, "SUB(%s) %s(%s:%s)%s\n",
				scope.Name(), kindOf(scope, name), typ, varText(scope, name), varFlags(scope, name, filter.verbose))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func kindOf(scope *symbol.Scope, name string) string {
	if scope.IsParam(name) {
		return "ARG"
	}
	if _, ok := scope.Initializer(name); ok {
		return "DATA"
	}
	return "LOCAL"
}

func typeName(scope *symbol.Scope, name string) string {
	t, err := scope.ResolveType(name)
	if err != nil {
		return "?"
	}
	if c, err := dtype.CType(t); err == nil {
		return c
	}
	return t.String()
}

func varText(scope *symbol.Scope, name string) string {
	if dims, ok := scope.ResolveShape(name); ok {
		return name + "(" + strings.Join(dims, ",") + ")"
	}
	return name
}

func varFlags(scope *symbol.Scope, name string, verbose bool) string {
	var parts []string
	if values, ok := scope.Initializer(name); ok {
		parts = append(parts, fmt.Sprintf("DATA/%s/", strings.Join(values, ",")))
	}
	if verbose {
		if _, ok := scope.DeclaredType(name); !ok {
			parts = append(parts, "IMPLICIT")
		}
		if scope.IsReferenced(name) {
			parts = append(parts, "REFERENCED")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}
