package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/gits/cmd/cli"
	"github.com/temirov/gits/internal/fanout"
)

const (
	exitErrorTemplateConstant = "gits: %v\n"
	fatalExitCodeConstant     = 1
)

// main executes the gits command-line application.
func main() {
	exitCode, exitMessage := exitStatus(cli.Execute())
	if len(exitMessage) > 0 {
		fmt.Fprint(os.Stderr, exitMessage)
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// exitStatus maps an execution error to the process exit code and the message printed on stderr.
// A failing command's own exit code is propagated silently.
func exitStatus(executionError error) (int, string) {
	if executionError == nil {
		return 0, ""
	}

	var exitStatusError fanout.ExitStatusError
	if errors.As(executionError, &exitStatusError) {
		return exitStatusError.ExitCode, ""
	}

	return fatalExitCodeConstant, fmt.Sprintf(exitErrorTemplateConstant, executionError)
}
