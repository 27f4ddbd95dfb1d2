package main

import (
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/spf13/cobra"

	fortran "github.com/1912158597-george/pyopencl"
)

// errNoMatch ends grep with a failing status and no message.
var errNoMatch = errors.New("no match")

type grepOptions struct {
	ignoreCase  bool
	lineNumbers bool
	noComments  bool
	after       int
	before      int
	context     int
	filesOnly   bool
	invert      bool
	start       int
	end         int
	noSep       bool
}

func newGrepCmd() *cobra.Command {
	var (
		sf sourceFlags
		o  grepOptions
	)
	cmd := &cobra.Command{
		Use:   "grep pattern file ...",
		Short: "Search logical source lines",
		Long: `Search logical source lines. Continuation lines are joined to the
statement they continue, so a pattern can match across them. Line numbers
are those of the first physical line of the statement.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := args[0]
			if o.ignoreCase {
				pattern = "(?i)" + pattern
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return fmt.Errorf("invalid pattern: %w", err)
			}
			if o.context > 0 {
				o.before, o.after = o.context, o.context
			}
			inputs, err := readInputs(cmd.InOrStdin(), args[1:])
			if err != nil {
				return err
			}
			matched := false
			for _, in := range inputs {
				free := isFreeFormName(in.name)
				if cmd.Flags().Changed("free") {
					free = sf.free
				}
				lines, err := fortran.ReadLogicalLines(in.name, in.text, free, sf.strict)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error reading %s: %v\n", in.name, err)
					continue
				}
				found, err := grepLines(cmd.OutOrStdout(), in.name, lines, re, &o, len(inputs) > 1)
				if err != nil {
					return err
				}
				matched = matched || found
			}
			if !matched {
				return errNoMatch
			}
			return nil
		},
	}
	fs := cmd.Flags()
	sf.register(fs)
	fs.BoolVarP(&o.ignoreCase, "ignore-case", "i", false, "case-insensitive matching")
	fs.BoolVarP(&o.lineNumbers, "line-number", "n", true, "show line numbers")
	fs.BoolVarP(&o.noComments, "no-comments", "c", false, "exclude comment lines from search")
	fs.IntVarP(&o.after, "after-context", "A", 0, "show `num` lines after match")
	fs.IntVarP(&o.before, "before-context", "B", 0, "show `num` lines before match")
	fs.IntVarP(&o.context, "context", "C", 0, "show `num` lines before and after match (overrides -A and -B)")
	fs.BoolVarP(&o.filesOnly, "files-with-matches", "l", false, "only print names of files with matches")
	fs.BoolVar(&o.invert, "invert-match", false, "show non-matching lines")
	fs.IntVarP(&o.start, "start", "s", 0, "first physical `line` searched (inclusive, 1-indexed)")
	fs.IntVarP(&o.end, "end", "e", 0, "last physical `line` searched (inclusive, 1-indexed)")
	fs.BoolVar(&o.noSep, "no-sep", false, "suppress -- separators between non-contiguous matches")
	return cmd
}

// lineText renders a logical line the way it reads in free form.
func lineText(ln fortran.LogicalLine) string {
	switch {
	case ln.Comment:
		return "! " + ln.Text
	case ln.Label != "":
		return ln.Label + " " + ln.Text
	}
	return ln.Text
}

// grepLines prints the matching lines of one file with their context and
// reports whether any line matched.
func grepLines(w io.Writer, name string, lines []fortran.LogicalLine, re *regexp.Regexp, o *grepOptions, showName bool) (bool, error) {
	var matches []int
	for i, ln := range lines {
		if o.start > 0 && ln.Line < o.start {
			continue
		}
		if o.end > 0 && ln.Line > o.end {
			continue
		}
		if o.noComments && ln.Comment {
			continue
		}
		if re.MatchString(lineText(ln)) != o.invert {
			matches = append(matches, i)
		}
	}
	if len(matches) == 0 {
		return false, nil
	}
	if o.filesOnly {
		_, err := fmt.Fprintln(w, name)
		return true, err
	}

	printLines := make(map[int]bool)
	contextLines := make(map[int]bool)
	mark := func(idx int) {
		if !printLines[idx] {
			contextLines[idx] = true
		}
		printLines[idx] = true
	}
	for _, m := range matches {
		printLines[m] = true
		delete(contextLines, m)
		for j := 1; j <= o.before && m-j >= 0; j++ {
			mark(m - j)
		}
		for j := 1; j <= o.after && m+j < len(lines); j++ {
			mark(m + j)
		}
	}

	prefix := ""
	if showName {
		prefix = name + ":"
	}
	lastPrinted := -1
	for i, ln := range lines {
		if !printLines[i] {
			continue
		}
		if lastPrinted >= 0 && i > lastPrinted+1 && !o.noSep && !onlyComments(lines[lastPrinted+1:i], o) {
			if _, err := fmt.Fprintln(w, "--"); err != nil {
				return true, err
			}
		}
		lastPrinted = i

		sep := ":"
		if contextLines[i] {
			sep = "-"
		}
		var err error
		if o.lineNumbers {
			_, err = fmt.Fprintf(w, "%s%d%s%s\n", prefix, ln.Line, sep, lineText(ln))
		} else {
			_, err = fmt.Fprintf(w, "%s%s\n", prefix, lineText(ln))
		}
		if err != nil {
			return true, err
		}
	}
	return true, nil
}

// onlyComments reports whether a gap between printed lines consists of
// comments skipped by -c, which does not warrant a separator.
func onlyComments(gap []fortran.LogicalLine, o *grepOptions) bool {
	if !o.noComments {
		return false
	}
	for _, ln := range gap {
		if !ln.Comment {
			return false
		}
	}
	return true
}
