package fanout

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/gits/internal/execshell"
	"github.com/temirov/gits/internal/repos/targets"
	"github.com/temirov/gits/internal/ui"
)

const (
	defaultSubcommandConstant           = "status"
	executorNotConfiguredMessage        = "fan-out orchestrator requires a command executor"
	headingWriteErrorTemplateConstant   = "unable to print heading for %s: %w"
	listWriteErrorTemplateConstant      = "unable to list %s: %w"
	runStartedMessageConstant           = "fan-out started"
	runFinishedMessageConstant          = "fan-out finished"
	targetFinishedMessageConstant       = "target finished"
	logFieldTargetCountConstant         = "target_count"
	logFieldTargetConstant              = "target"
	logFieldExitCodeConstant            = "exit_code"
	logFieldArgumentsConstant           = "arguments"
	logFieldExecutedTargetCountConstant = "executed_target_count"
)

// ErrExecutorNotConfigured indicates the orchestrator was built without a command executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessage)

// DefaultArguments returns the arguments used when the caller supplies none.
func DefaultArguments() []string {
	return []string{defaultSubcommandConstant}
}

// CommandExecutor runs a single external command.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Dependencies configures the collaborators of an Orchestrator.
type Dependencies struct {
	Logger         *zap.Logger
	Executor       CommandExecutor
	Formatter      ui.HeadingFormatter
	HeadingPrinter *ui.HeadingPrinter
	StandardInput  io.Reader
	StandardOutput io.Writer
	StandardError  io.Writer
}

// Options captures the per-invocation presentation and command settings.
type Options struct {
	// Executable names the program launched in every target; empty means git.
	Executable     execshell.CommandName
	ResolutionRoot string
	AbsolutePaths  bool
	HeadingPolicy  ui.HeadingPolicy
	// EnvironmentVariables are set for every launched command on top of the inherited environment.
	EnvironmentVariables map[string]string
}

// Summary reports the outcome of a run.
type Summary struct {
	ExecutedTargets int
	// LastExitCode is the exit code of the last executed target; earlier failures are not retained.
	LastExitCode int
}

// Orchestrator executes a command across a TargetSet sequentially.
type Orchestrator struct {
	dependencies Dependencies
	options      Options
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(dependencies Dependencies, options Options) (*Orchestrator, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.StandardOutput == nil {
		dependencies.StandardOutput = io.Discard
	}
	if dependencies.HeadingPrinter == nil {
		dependencies.HeadingPrinter = ui.NewHeadingPrinter(dependencies.StandardOutput, ui.HeadingPrinterConfiguration{})
	}
	if len(options.Executable) == 0 {
		options.Executable = execshell.CommandGit
	}
	return &Orchestrator{dependencies: dependencies, options: options}, nil
}

// Run executes the command in every target in order.
// A launch failure stops the run; non-zero exit codes do not.
func (orchestrator *Orchestrator) Run(executionContext context.Context, targetSet targets.TargetSet, arguments []string) (Summary, error) {
	commandArguments := append([]string{}, arguments...)
	if len(commandArguments) == 0 {
		commandArguments = DefaultArguments()
	}

	headingsEnabled := orchestrator.options.HeadingPolicy.Enabled(targetSet.Len())
	logger := orchestrator.dependencies.Logger
	logger.Debug(
		runStartedMessageConstant,
		zap.Int(logFieldTargetCountConstant, targetSet.Len()),
		zap.Strings(logFieldArgumentsConstant, commandArguments),
	)

	summary := Summary{}
	for _, repositoryRoot := range targetSet.Roots() {
		if headingsEnabled {
			label := orchestrator.dependencies.Formatter.Label(repositoryRoot.Path, orchestrator.options.ResolutionRoot, orchestrator.options.AbsolutePaths)
			if printError := orchestrator.dependencies.HeadingPrinter.PrintLabel(label); printError != nil {
				return summary, fmt.Errorf(headingWriteErrorTemplateConstant, repositoryRoot.Path, printError)
			}
		}

		command := execshell.ShellCommand{
			Name: orchestrator.options.Executable,
			Details: execshell.CommandDetails{
				Arguments:            commandArguments,
				WorkingDirectory:     repositoryRoot.Path,
				EnvironmentVariables: orchestrator.options.EnvironmentVariables,
				StandardInput:        orchestrator.dependencies.StandardInput,
				StandardOutput:       orchestrator.dependencies.StandardOutput,
				StandardError:        orchestrator.dependencies.StandardError,
			},
		}

		executionResult, executionError := orchestrator.dependencies.Executor.Execute(executionContext, command)
		if executionError != nil {
			return summary, CommandLaunchError{TargetPath: repositoryRoot.Path, Cause: executionError}
		}

		summary.ExecutedTargets++
		summary.LastExitCode = executionResult.ExitCode
		logger.Debug(
			targetFinishedMessageConstant,
			zap.String(logFieldTargetConstant, repositoryRoot.Path),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
		)

		if headingsEnabled {
			if printError := orchestrator.dependencies.HeadingPrinter.PrintRule(); printError != nil {
				return summary, fmt.Errorf(headingWriteErrorTemplateConstant, repositoryRoot.Path, printError)
			}
		}
	}

	logger.Debug(
		runFinishedMessageConstant,
		zap.Int(logFieldExecutedTargetCountConstant, summary.ExecutedTargets),
		zap.Int(logFieldExitCodeConstant, summary.LastExitCode),
	)
	return summary, nil
}

// List prints every target label without running anything. Labels are never colored.
func (orchestrator *Orchestrator) List(targetSet targets.TargetSet) error {
	listPrinter := ui.NewHeadingPrinter(orchestrator.dependencies.StandardOutput, ui.HeadingPrinterConfiguration{Style: ui.HeadingStylePlain})
	for _, repositoryRoot := range targetSet.Roots() {
		label := orchestrator.dependencies.Formatter.Label(repositoryRoot.Path, orchestrator.options.ResolutionRoot, orchestrator.options.AbsolutePaths)
		if printError := listPrinter.PrintLabel(label); printError != nil {
			return fmt.Errorf(listWriteErrorTemplateConstant, repositoryRoot.Path, printError)
		}
	}
	return nil
}
