package execshell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the supplied command with its streams wired straight to the provided readers and writers.
// A process killed before reporting an exit status yields exit code 1.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandArguments := append([]string{}, command.Details.Arguments...)
	executable := exec.CommandContext(executionContext, string(command.Name), commandArguments...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if len(command.Details.EnvironmentVariables) > 0 {
		executable.Env = mergeEnvironment(os.Environ(), command.Details.EnvironmentVariables)
	}

	executable.Stdin = command.Details.StandardInput
	executable.Stdout = command.Details.StandardOutput
	executable.Stderr = command.Details.StandardError

	runError := executable.Run()
	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			exitCode := exitError.ExitCode()
			if exitCode < 0 {
				exitCode = abnormalTerminationExitCodeConstant
			}
			return ExecutionResult{ExitCode: exitCode}, nil
		}
		return ExecutionResult{}, runError
	}

	return ExecutionResult{ExitCode: 0}, nil
}

// ParseEnvironmentAssignments converts NAME=VALUE entries into a variable map.
// Blank entries are ignored; a later entry for the same name wins.
func ParseEnvironmentAssignments(assignments []string) (map[string]string, error) {
	environmentVariables := make(map[string]string, len(assignments))
	for _, assignment := range assignments {
		trimmedAssignment := strings.TrimSpace(assignment)
		if len(trimmedAssignment) == 0 {
			continue
		}
		variableName, variableValue, separatorFound := strings.Cut(trimmedAssignment, environmentAssignmentSeparatorConstant)
		if !separatorFound || len(strings.TrimSpace(variableName)) == 0 {
			return nil, fmt.Errorf(invalidEnvironmentAssignmentTemplate, ErrInvalidEnvironmentAssignment, assignment)
		}
		environmentVariables[strings.TrimSpace(variableName)] = variableValue
	}
	return environmentVariables, nil
}

func mergeEnvironment(inheritedEnvironment []string, environmentVariables map[string]string) []string {
	variableNames := make([]string, 0, len(environmentVariables))
	for variableName := range environmentVariables {
		variableNames = append(variableNames, variableName)
	}
	sort.Strings(variableNames)

	mergedEnvironment := append([]string{}, inheritedEnvironment...)
	for _, variableName := range variableNames {
		mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, variableName, environmentAssignmentSeparatorConstant, environmentVariables[variableName]))
	}
	return mergedEnvironment
}
