// Package config loads translation settings from YAML:
//
//	free_form: false
//	strict: true
//	addr_space_hints:
//	  - {subprogram: hank107p, arg: p, space: constant}
//	force_casts:
//	  - {callee: hank107p, arg: 0, cast: "__constant cdouble_t *"}
//	post_pass: [cnd, "-"]
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	fortran "github.com/1912158597-george/pyopencl"
	"github.com/1912158597-george/pyopencl/cgen"
	"github.com/1912158597-george/pyopencl/postpass"
)

// File is the YAML form of the translation options.
type File struct {
	FreeForm       bool     `yaml:"free_form"`
	Strict         *bool    `yaml:"strict"` // true when absent.
	AddrSpaceHints []Hint   `yaml:"addr_space_hints"`
	ForceCasts     []Cast   `yaml:"force_casts"`
	PostPass       []string `yaml:"post_pass"` // command and arguments.
}

// Hint places argument Arg of Subprogram in an address space.
type Hint struct {
	Subprogram string `yaml:"subprogram"`
	Arg        string `yaml:"arg"`
	Space      string `yaml:"space"`
}

// Cast forces a cast on argument Arg, counted from zero, of calls to Callee.
type Cast struct {
	Callee string `yaml:"callee"`
	Arg    int    `yaml:"arg"`
	Cast   string `yaml:"cast"`
}

// Load decodes a configuration. Unknown keys are an error.
func Load(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &f, nil
}

// LoadFile reads the configuration at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// IsStrict reports the strict setting, which defaults to true.
func (f *File) IsStrict() bool { return f.Strict == nil || *f.Strict }

// Options converts the configuration to translation options. Names are
// case folded as Fortran names are.
func (f *File) Options() (fortran.Options, error) {
	opts := fortran.Options{FreeForm: f.FreeForm, Strict: f.IsStrict()}
	if len(f.AddrSpaceHints) > 0 {
		opts.AddrSpaceHints = make(map[fortran.ArgKey]cgen.AddressSpace, len(f.AddrSpaceHints))
	}
	for i, h := range f.AddrSpaceHints {
		space, ok := cgen.ParseAddressSpace(h.Space)
		if !ok {
			return opts, fmt.Errorf("config: addr_space_hints[%d]: unknown address space %q", i, h.Space)
		}
		if h.Subprogram == "" || h.Arg == "" {
			return opts, fmt.Errorf("config: addr_space_hints[%d]: subprogram and arg are required", i)
		}
		opts.AddrSpaceHints[fortran.ArgKey{Subprogram: fold(h.Subprogram), Arg: fold(h.Arg)}] = space
	}
	if len(f.ForceCasts) > 0 {
		opts.ForceCasts = make(map[fortran.CastKey]string, len(f.ForceCasts))
	}
	for i, c := range f.ForceCasts {
		if c.Callee == "" || strings.TrimSpace(c.Cast) == "" || c.Arg < 0 {
			return opts, fmt.Errorf("config: force_casts[%d]: callee, arg >= 0 and cast are required", i)
		}
		opts.ForceCasts[fortran.CastKey{Callee: fold(c.Callee), Arg: c.Arg}] = strings.TrimSpace(c.Cast)
	}
	if len(f.PostPass) > 0 {
		cmd, err := postpass.ParseCommand(f.PostPass)
		if err != nil {
			return opts, fmt.Errorf("config: %w", err)
		}
		opts.PostPass = cmd
	}
	return opts, nil
}

func fold(name string) string { return strings.ToLower(strings.TrimSpace(name)) }
