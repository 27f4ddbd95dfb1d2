// Command f2cl translates Fortran subroutines into OpenCL C.
//
// Usage:
//
//	f2cl translate [flags] [file.f ...]
//	f2cl vars [flags] file.f ...
//	f2cl tree [flags] file.f ...
//	f2cl grep [flags] pattern file.f ...
//
// Files named "-", or no files at all, read standard input.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errNoMatch) {
			fmt.Fprintln(os.Stderr, "f2cl:", err)
		}
		os.Exit(1)
	}
}
