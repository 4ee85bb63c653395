// Command pathguard checks shell commands and file paths issued by an AI
// agent before they run. It is meant to be installed as a pre-tool-use hook:
// it reads the tool call as JSON on stdin and exits 2 with the reason on
// stderr when the call must be blocked.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// exitCode is returned by commands that finish with a specific status after
// reporting to the user themselves.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// exitBlocked is the status host agents treat as "blocked, show stderr".
const exitBlocked exitCode = 2

// app carries the process state a command may touch, so tests can run
// commands in isolation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	env    []string
	getwd  func() (string, error)
	flags  flagValues
}

func newApp() *app {
	return &app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		env:    os.Environ(),
		getwd:  os.Getwd,
	}
}

func main() {
	os.Exit(run(os.Args[1:], newApp()))
}

// run executes the command line and returns the process exit status.
func run(args []string, a *app) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.Execute()

	var code exitCode
	switch {
	case err == nil:
		return 0
	case errors.As(err, &code):
		return int(code)
	default:
		fmt.Fprintf(a.stderr, "pathguard: %v\n", err)
		return 1
	}
}
