package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the command tree and maps its outcome to an exit status:
// 0 on success, 1 on any error including an interrupted run.
func run(args []string, stderr io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(stderr, "landscaper: interrupted")
	default:
		fmt.Fprintf(stderr, "landscaper: %v\n", err)
	}
	return 1
}
