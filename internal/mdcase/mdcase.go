// Package mdcase extracts translation test cases from Markdown documents.
//
// A case starts at a heading "Test: <name>" and holds one input fence
// (fortran or fortran-free), an optional yaml fence with translation
// options and at least one expectation fence (opencl, error or warning).
package mdcase

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Kind is the language of an expectation fence.
type Kind string

const (
	OpenCL  Kind = "opencl"  // exact translated source.
	Error   Kind = "error"   // substring of the translation error.
	Warning Kind = "warning" // one warning per line, "line N: msg".
)

const (
	inputFixed = "fortran"
	inputFree  = "fortran-free"
	configLang = "yaml"
)

// Expectation is one expectation fence of a case.
type Expectation struct {
	Kind    Kind
	Content string
	Line    int
}

// Case is one test case.
type Case struct {
	Name     string
	Line     int // line of the heading.
	Input    string
	FreeForm bool
	Config   string // yaml options, empty if absent.
	Expect   []Expectation
}

// Extract returns the cases of a Markdown document in document order.
func Extract(markdown []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))
	var cases []Case
	var current *Case
	finish := func() error {
		if current == nil {
			return nil
		}
		if err := validate(current); err != nil {
			return err
		}
		cases = append(cases, *current)
		return nil
	}
	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			name, ok := strings.CutPrefix(nodeText(n, markdown), "Test: ")
			if !ok {
				return ast.WalkContinue, nil
			}
			if err := finish(); err != nil {
				return ast.WalkStop, err
			}
			current = &Case{Name: strings.TrimSpace(name), Line: lineOf(n, markdown)}

		case *ast.FencedCodeBlock:
			lang := string(n.Language(markdown))
			line := lineOf(n, markdown)
			if current == nil {
				if lang != "" {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence outside of a test case", line, lang)
				}
				return ast.WalkContinue, nil
			}
			content := fenceContent(n, markdown)
			switch lang {
			case inputFixed, inputFree:
				if current.Input != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences in test %q", line, current.Name)
				}
				current.Input = content
				current.FreeForm = lang == inputFree
			case configLang:
				current.Config = content
			case string(OpenCL), string(Error), string(Warning):
				current.Expect = append(current.Expect, Expectation{Kind: Kind(lang), Content: content, Line: line})
			case "":
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language %q in test %q", line, lang, current.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return cases, nil
}

func validate(c *Case) error {
	if c.Input == "" {
		return fmt.Errorf("line %d: test %q has no input fence", c.Line, c.Name)
	}
	if len(c.Expect) == 0 {
		return fmt.Errorf("line %d: test %q has no expectation fences", c.Line, c.Name)
	}
	return nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// fenceContent returns the fence body. Fixed form input depends on its
// leading columns, so lines are kept verbatim.
func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

func lineOf(node ast.Node, source []byte) int {
	var start int
	switch n := node.(type) {
	case *ast.FencedCodeBlock:
		if n.Info != nil {
			start = n.Info.Segment.Start
		} else if n.Lines().Len() > 0 {
			start = n.Lines().At(0).Start
		}
	default:
		if n.Lines().Len() > 0 {
			start = n.Lines().At(0).Start
		}
	}
	return 1 + bytes.Count(source[:min(start, len(source))], []byte{'\n'})
}
