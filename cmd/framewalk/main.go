// framewalk replays seeded walks against a display host and measures
// update-to-presentation latency.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/roach88/framewalk/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI with the given args and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := cli.NewRootCommand()
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err != nil {
		fmt.Fprintf(stderr, "framewalk: %v\n", err)
	}
	return cli.GetExitCode(err)
}
