package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	fortran "github.com/1912158597-george/pyopencl"
	"github.com/1912158597-george/pyopencl/ast"
)

func newTreeCmd(rf *rootFlags) *cobra.Command {
	var (
		sf   sourceFlags
		raw  bool
		find string
	)
	cmd := &cobra.Command{
		Use:   "tree [file ...]",
		Short: "Print the parsed statement tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rf.loadConfig()
			if err != nil {
				return err
			}
			inputs, err := readInputs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			for _, in := range inputs {
				opts, err := options(rf, cfg, cmd.Flags(), &sf, in, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				src, err := fortran.Parse(in.name, in.text, opts.FreeForm, opts.Strict)
				if err != nil {
					return err
				}
				if find != "" {
					err = findStatements(cmd.OutOrStdout(), src, find)
				} else {
					err = writeTree(cmd.OutOrStdout(), src, raw)
				}
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
	sf.register(cmd.Flags())
	cmd.Flags().BoolVar(&raw, "raw", false, "dump the Go representation of the tree")
	cmd.Flags().StringVar(&find, "find", "", "only list statements of `kind` (call, do, assignment, ...) with their line")
	return cmd
}

func writeTree(w io.Writer, src *ast.Source, raw bool) error {
	if raw {
		return ast.Fprint(w, src, ast.NotNilFilter)
	}
	_, err := fmt.Fprint(w, ast.PrettyPrint(src))
	return err
}

// stmtKind names the statement type of n, such as "call" for *ast.Call.
func stmtKind(n ast.Node) string {
	kind := fmt.Sprintf("%T", n)
	return strings.ToLower(kind[strings.LastIndexByte(kind, '.')+1:])
}

func findStatements(w io.Writer, src *ast.Source, kind string) error {
	var err error
	ast.Inspect(src, func(n ast.Node) bool {
		stmt, ok := n.(ast.Statement)
		if !ok || err != nil {
			return false
		}
		if strings.EqualFold(stmtKind(stmt), kind) {
			_, err = fmt.Fprintf(w, "%s:%d: %s\n", src.Name, stmt.Info().Line, stmt.AppendString(nil))
		}
		return true
	})
	return err
}
