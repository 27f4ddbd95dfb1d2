package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	fortran "github.com/1912158597-george/pyopencl"
	"github.com/1912158597-george/pyopencl/config"
)

func newTranslateCmd(rf *rootFlags) *cobra.Command {
	var (
		sf       sourceFlags
		output   string
		hints    []string
		casts    []string
		postPass string
	)
	cmd := &cobra.Command{
		Use:   "translate [file ...]",
		Short: "Translate Fortran source to OpenCL C",
		Long: `Translate Fortran source to OpenCL C.

Each input is translated on its own and the results are written one after
the other. Hints and casts given on the command line add to those of the
configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rf.loadConfig()
			if err != nil {
				return err
			}
			for _, h := range hints {
				hint, err := parseHint(h)
				if err != nil {
					return err
				}
				cfg.AddrSpaceHints = append(cfg.AddrSpaceHints, hint)
			}
			for _, c := range casts {
				cast, err := parseCast(c)
				if err != nil {
					return err
				}
				cfg.ForceCasts = append(cfg.ForceCasts, cast)
			}
			if postPass != "" {
				cfg.PostPass = strings.Fields(postPass)
			}
			inputs, err := readInputs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			var out strings.Builder
			for _, in := range inputs {
				opts, err := options(rf, cfg, cmd.Flags(), &sf, in, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				res, err := fortran.TranslateContext(cmd.Context(), in.text, opts)
				if err != nil {
					return err
				}
				out.WriteString(res.Source)
			}
			if output != "" {
				return os.WriteFile(output, []byte(out.String()), 0o644)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out.String())
			return err
		},
	}
	fs := cmd.Flags()
	sf.register(fs)
	fs.StringVarP(&output, "output", "o", "", "write the translation to `file` instead of stdout")
	fs.StringArrayVar(&hints, "hint", nil, "address space of an argument, as `subprogram:arg=space` (repeatable)")
	fs.StringArrayVar(&casts, "cast", nil, "cast applied to a call argument, as `callee:index=cast` (repeatable)")
	fs.StringVar(&postPass, "post-pass", "", "`command` the translation is piped through")
	return cmd
}

// parseHint parses "subprogram:arg=space".
func parseHint(s string) (config.Hint, error) {
	target, space, ok := strings.Cut(s, "=")
	sub, arg, ok2 := strings.Cut(target, ":")
	if !ok || !ok2 || sub == "" || arg == "" || space == "" {
		return config.Hint{}, fmt.Errorf("hint %q: want subprogram:arg=space", s)
	}
	return config.Hint{Subprogram: sub, Arg: arg, Space: space}, nil
}

// parseCast parses "callee:index=cast". The index counts from zero.
func parseCast(s string) (config.Cast, error) {
	target, cast, ok := strings.Cut(s, "=")
	callee, index, ok2 := strings.Cut(target, ":")
	if !ok || !ok2 || callee == "" {
		return config.Cast{}, fmt.Errorf("cast %q: want callee:index=cast", s)
	}
	n, err := strconv.Atoi(index)
	if err != nil {
		return config.Cast{}, fmt.Errorf("cast %q: bad index: %w", s, err)
	}
	return config.Cast{Callee: callee, Arg: n, Cast: cast}, nil
}
