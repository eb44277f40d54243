package execshell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const (
	gitCommandNameConstant                     = "git"
	loggerNotConfiguredMessageConstant         = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant  = "shell executor command runner not configured"
	commandExecutionErrorTemplateConstant      = "unable to run %s in %s: %v"
	commandArgumentsJoinSeparatorConstant      = " "
	commandStartingMessageConstant             = "starting command"
	commandFinishedMessageConstant             = "command finished"
	commandLaunchFailedMessageConstant         = "command could not be run"
	logFieldCommandConstant                    = "command"
	logFieldWorkingDirectoryConstant           = "working_directory"
	logFieldExitCodeConstant                   = "exit_code"
	defaultWorkingDirectoryLabelConstant       = "current directory"
	abnormalTerminationExitCodeConstant        = 1
	environmentAssignmentSeparatorConstant     = "="
	environmentAssignmentTemplateConstant      = "%s%s%s"
	commandExecutionErrorCauseFallbackConstant = "unknown error"
	invalidEnvironmentAssignmentMessage        = "environment entries must look like NAME=VALUE"
	invalidEnvironmentAssignmentTemplate       = "%w: %q"
)

// CommandName identifies the executable launched for a ShellCommand.
type CommandName string

// CommandGit is the default executable.
const CommandGit CommandName = CommandName(gitCommandNameConstant)

var (
	// ErrLoggerNotConfigured indicates the executor was built without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the executor was built without a runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrInvalidEnvironmentAssignment indicates an environment entry without a variable name.
	ErrInvalidEnvironmentAssignment = errors.New(invalidEnvironmentAssignmentMessage)
)

// CommandDetails describes how a command is launched.
// Nil streams leave the corresponding child stream detached.
// EnvironmentVariables are added to the inherited environment and override inherited values.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        io.Reader
	StandardOutput       io.Writer
	StandardError        io.Writer
}

// ShellCommand pairs an executable with its launch details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// Label renders the command line for diagnostics.
func (command ShellCommand) Label() string {
	commandParts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
}

// ExecutionResult captures the observable outcome of a finished command.
type ExecutionResult struct {
	ExitCode int
}

// CommandRunner launches a ShellCommand and waits for it to exit.
//
// Implementations return an error only when the command could not be run at all;
// a command that ran and exited with a non-zero status is reported through ExecutionResult.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandExecutionError reports a command that could not be launched.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the launch failure.
func (executionError CommandExecutionError) Error() string {
	workingDirectory := executionError.Command.Details.WorkingDirectory
	if len(workingDirectory) == 0 {
		workingDirectory = defaultWorkingDirectoryLabelConstant
	}
	cause := commandExecutionErrorCauseFallbackConstant
	if executionError.Cause != nil {
		cause = executionError.Cause.Error()
	}
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, executionError.Command.Label(), workingDirectory, cause)
}

// Unwrap exposes the underlying launch failure.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// CommandEventObserver receives the lifecycle of every command a ShellExecutor runs.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	// CommandCompleted reports a command that ran, whatever its exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports a command that could not be launched.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}

// ShellExecutor runs commands through a CommandRunner, logging and reporting lifecycle events.
type ShellExecutor struct {
	logger   *zap.Logger
	runner   CommandRunner
	observer CommandEventObserver
}

// NewShellExecutor constructs a ShellExecutor. A nil observer discards lifecycle events.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, observer CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	if observer == nil {
		observer = noopCommandEventObserver{}
	}
	return &ShellExecutor{logger: logger, runner: runner, observer: observer}, nil
}

// Execute runs the command and returns its exit status.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logger.Debug(
		commandStartingMessageConstant,
		zap.String(logFieldCommandConstant, command.Label()),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
	executor.observer.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Debug(
			commandLaunchFailedMessageConstant,
			zap.String(logFieldCommandConstant, command.Label()),
			zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
			zap.Error(runError),
		)
		executor.observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.logger.Debug(
		commandFinishedMessageConstant,
		zap.String(logFieldCommandConstant, command.Label()),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
	)
	executor.observer.CommandCompleted(command, executionResult)

	return executionResult, nil
}
