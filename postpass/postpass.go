// Package postpass holds text passes applied to generated OpenCL C source,
// such as the dimension pre-processor that resolves `dimension "fortran"`
// statements into explicit index arithmetic.
package postpass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Pass transforms generated source text.
type Pass interface {
	Transform(ctx context.Context, src string) (string, error)
}

// Identity returns the source unchanged.
type Identity struct{}

func (Identity) Transform(_ context.Context, src string) (string, error) { return src, nil }

// Command pipes the source through an external program: the source is
// written to its standard input and its standard output is the result.
type Command struct {
	Name string
	Args []string
	Dir  string // working directory, the current one if empty.
}

// ParseCommand returns a Command running argv[0] with the remaining arguments.
func ParseCommand(argv []string) (*Command, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, errors.New("postpass: empty command")
	}
	return &Command{Name: argv[0], Args: argv[1:]}, nil
}

func (c *Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

func (c *Command) Transform(ctx context.Context, src string) (string, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = strings.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("postpass %s: %w", c.Name, err)
		}
		return "", fmt.Errorf("postpass %s: %w\n%s", c.Name, err, msg)
	}
	return stdout.String(), nil
}

// Chain applies its passes in order.
type Chain []Pass

func (ch Chain) Transform(ctx context.Context, src string) (string, error) {
	var err error
	for _, p := range ch {
		if src, err = p.Transform(ctx, src); err != nil {
			return "", err
		}
	}
	return src, nil
}

// Func adapts a function to a Pass.
type Func func(ctx context.Context, src string) (string, error)

func (f Func) Transform(ctx context.Context, src string) (string, error) { return f(ctx, src) }
