package fanout

import (
	"errors"
	"fmt"

	"github.com/temirov/gits/internal/execshell"
)

const (
	commandLaunchErrorTemplateConstant = "unable to run command in %s: %v"
	exitStatusErrorTemplateConstant    = "command exited with code %d"
)

// CommandLaunchError reports a target whose command could not be started.
// Targets before it have already run.
type CommandLaunchError struct {
	TargetPath string
	Cause      error
}

// Error describes the launch failure.
// Executor failures already name the command and its directory and are reported as is.
func (launchError CommandLaunchError) Error() string {
	var executionError execshell.CommandExecutionError
	if errors.As(launchError.Cause, &executionError) {
		return launchError.Cause.Error()
	}
	return fmt.Sprintf(commandLaunchErrorTemplateConstant, launchError.TargetPath, launchError.Cause)
}

// Unwrap exposes the underlying launch failure.
func (launchError CommandLaunchError) Unwrap() error {
	return launchError.Cause
}

// ExitStatusError carries a non-zero exit code the process should terminate with.
type ExitStatusError struct {
	ExitCode int
}

// Error describes the exit status.
func (statusError ExitStatusError) Error() string {
	return fmt.Sprintf(exitStatusErrorTemplateConstant, statusError.ExitCode)
}
