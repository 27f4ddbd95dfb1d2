package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	fortran "github.com/1912158597-george/pyopencl"
	"github.com/1912158597-george/pyopencl/config"
)

type rootFlags struct {
	verbose bool
	config  string
}

func newRootCmd() *cobra.Command {
	var rf rootFlags
	rootCmd := &cobra.Command{
		Use:   "f2cl",
		Short: "f2cl translates Fortran subroutines into OpenCL C",
		Long: `f2cl translates FORTRAN 77 and Fortran 90 subroutines into OpenCL C.

Commands:
  translate  Translate source files to OpenCL C
  vars       List the names of each translated subroutine
  tree       Print the parsed statement tree
  grep       Search logical source lines
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&rf.verbose, "verbose", "v", false, "log translation progress to stderr")
	rootCmd.PersistentFlags().StringVar(&rf.config, "config", "", "YAML configuration file")

	rootCmd.AddCommand(
		newTranslateCmd(&rf),
		newVarsCmd(&rf),
		newTreeCmd(&rf),
		newGrepCmd(),
	)
	return rootCmd
}

// logger writes warnings, and debug records when verbose, to w.
func (rf *rootFlags) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if rf.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (rf *rootFlags) loadConfig() (*config.File, error) {
	if rf.config == "" {
		return &config.File{}, nil
	}
	return config.LoadFile(rf.config)
}

// sourceFlags select how source files are read.
type sourceFlags struct {
	free   bool
	strict bool
}

func (sf *sourceFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&sf.free, "free", false, "read free form source (default from file extension)")
	fs.BoolVar(&sf.strict, "strict", true, "reject fixed form lines longer than 72 columns")
}

// apply overrides opts with the flags set on the command line. Without
// --free or a configured form, the form follows the extension of name.
func (sf *sourceFlags) apply(fs *pflag.FlagSet, opts *fortran.Options, name string) {
	switch {
	case fs.Changed("free"):
		opts.FreeForm = sf.free
	case !opts.FreeForm:
		opts.FreeForm = isFreeFormName(name)
	}
	if fs.Changed("strict") {
		opts.Strict = sf.strict
	}
}

func isFreeFormName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".f90", ".f95", ".f03", ".f08":
		return true
	}
	return false
}

type input struct {
	name string
	text string
}

// readInputs reads the named files. No names, or "-", read stdin.
func readInputs(stdin io.Reader, names []string) ([]input, error) {
	if len(names) == 0 {
		names = []string{"-"}
	}
	inputs := make([]input, 0, len(names))
	for _, name := range names {
		var data []byte
		var err error
		if name == "-" {
			data, err = io.ReadAll(stdin)
			name = "<stdin>"
		} else {
			data, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		inputs = append(inputs, input{name: name, text: string(data)})
	}
	return inputs, nil
}

// options builds the translation options for one input from the
// configuration file and the command line.
func options(rf *rootFlags, cfg *config.File, fs *pflag.FlagSet, sf *sourceFlags, in input, stderr io.Writer) (fortran.Options, error) {
	opts, err := cfg.Options()
	if err != nil {
		return opts, err
	}
	sf.apply(fs, &opts, in.name)
	opts.SourceName = in.name
	opts.Logger = rf.logger(stderr)
	return opts, nil
}
