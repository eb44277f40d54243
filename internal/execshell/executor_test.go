package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gits/internal/execshell"
)

const (
	testExecutionSuccessCaseNameConstant         = "success"
	testExecutionFailureCaseNameConstant         = "non_zero_exit_is_data"
	testExecutionRunnerErrorCaseNameConstant     = "runner_error"
	testCommandArgumentConstant                  = "status"
	testWorkingDirectoryConstant                 = "/workspace/repository"
	testLoggerInitializationCaseNameConstant     = "logger_validation"
	testRunnerInitializationCaseNameConstant     = "runner_validation"
	testSuccessfulInitializationCaseNameConstant = "successful_initialization"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

type recordingEventObserver struct {
	started   []execshell.ShellCommand
	completed []execshell.ExecutionResult
	failures  []error
}

func (observer *recordingEventObserver) CommandStarted(command execshell.ShellCommand) {
	observer.started = append(observer.started, command)
}

func (observer *recordingEventObserver) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	observer.completed = append(observer.completed, result)
}

func (observer *recordingEventObserver) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	observer.failures = append(observer.failures, failure)
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectError   error
		expectSuccess bool
	}{
		{
			name:        testLoggerInitializationCaseNameConstant,
			logger:      nil,
			runner:      &recordingCommandRunner{},
			expectError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:        testRunnerInitializationCaseNameConstant,
			logger:      zap.NewNop(),
			runner:      nil,
			expectError: execshell.ErrCommandRunnerNotConfigured,
		},
		{
			name:          testSuccessfulInitializationCaseNameConstant,
			logger:        zap.NewNop(),
			runner:        &recordingCommandRunner{},
			expectSuccess: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner, nil)
			if testCase.expectSuccess {
				require.NoError(testInstance, creationError)
				require.NotNil(testInstance, executor)
			} else {
				require.Error(testInstance, creationError)
				require.ErrorIs(testInstance, creationError, testCase.expectError)
			}
		})
	}
}

func TestShellExecutorExecuteBehavior(testInstance *testing.T) {
	runnerFailure := errors.New("exec: \"git\": executable file not found in $PATH")

	testCases := []struct {
		name              string
		runnerResult      execshell.ExecutionResult
		runnerError       error
		expectedExitCode  int
		expectLaunchError bool
		expectedCompleted int
		expectedFailures  int
	}{
		{
			name:              testExecutionSuccessCaseNameConstant,
			runnerResult:      execshell.ExecutionResult{ExitCode: 0},
			expectedExitCode:  0,
			expectedCompleted: 1,
		},
		{
			name:              testExecutionFailureCaseNameConstant,
			runnerResult:      execshell.ExecutionResult{ExitCode: 3},
			expectedExitCode:  3,
			expectedCompleted: 1,
		},
		{
			name:              testExecutionRunnerErrorCaseNameConstant,
			runnerError:       runnerFailure,
			expectLaunchError: true,
			expectedFailures:  1,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observerLogs := observer.New(zap.DebugLevel)
			eventObserver := &recordingEventObserver{}

			recordingRunner := &recordingCommandRunner{
				executionResult: testCase.runnerResult,
				executionError:  testCase.runnerError,
			}

			shellExecutor, creationError := execshell.NewShellExecutor(zap.New(observerCore), recordingRunner, eventObserver)
			require.NoError(testInstance, creationError)

			commandDetails := execshell.CommandDetails{Arguments: []string{testCommandArgumentConstant}, WorkingDirectory: testWorkingDirectoryConstant}
			executionResult, executionError := shellExecutor.Execute(context.Background(), execshell.ShellCommand{Name: execshell.CommandGit, Details: commandDetails})

			if testCase.expectLaunchError {
				require.Error(testInstance, executionError)
				require.ErrorIs(testInstance, executionError, runnerFailure)

				var launchError execshell.CommandExecutionError
				require.ErrorAs(testInstance, executionError, &launchError)
				require.Equal(testInstance, execshell.CommandGit, launchError.Command.Name)
				require.Contains(testInstance, launchError.Error(), "git status")
				require.Contains(testInstance, launchError.Error(), testWorkingDirectoryConstant)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.expectedExitCode, executionResult.ExitCode)
			}

			require.Len(testInstance, recordingRunner.recordedCommands, 1)
			require.Equal(testInstance, execshell.CommandGit, recordingRunner.recordedCommands[0].Name)
			require.Equal(testInstance, commandDetails.Arguments, recordingRunner.recordedCommands[0].Details.Arguments)
			require.Len(testInstance, eventObserver.started, 1)
			require.Len(testInstance, eventObserver.completed, testCase.expectedCompleted)
			require.Len(testInstance, eventObserver.failures, testCase.expectedFailures)
			require.Len(testInstance, observerLogs.All(), 2)
		})
	}
}

func TestShellCommandLabel(testInstance *testing.T) {
	command := execshell.ShellCommand{Name: "hub", Details: execshell.CommandDetails{Arguments: []string{"log", "--oneline"}}}
	require.Equal(testInstance, "hub log --oneline", command.Label())

	bareCommand := execshell.ShellCommand{Name: execshell.CommandGit}
	require.Equal(testInstance, "git", bareCommand.Label())
}

func TestParseEnvironmentAssignments(testInstance *testing.T) {
	testCases := []struct {
		name          string
		assignments   []string
		expected      map[string]string
		expectedError error
	}{
		{name: "empty", assignments: nil, expected: map[string]string{}},
		{
			name:        "values_may_contain_separators",
			assignments: []string{"GIT_PAGER=cat", " LESS = -R ", "GIT_CONFIG_PARAMETERS='core.editor=true'", ""},
			expected:    map[string]string{"GIT_PAGER": "cat", "LESS": " -R", "GIT_CONFIG_PARAMETERS": "'core.editor=true'"},
		},
		{name: "empty_value", assignments: []string{"GIT_PAGER="}, expected: map[string]string{"GIT_PAGER": ""}},
		{name: "later_entry_wins", assignments: []string{"GIT_PAGER=less", "GIT_PAGER=cat"}, expected: map[string]string{"GIT_PAGER": "cat"}},
		{name: "missing_separator", assignments: []string{"GIT_PAGER"}, expectedError: execshell.ErrInvalidEnvironmentAssignment},
		{name: "missing_name", assignments: []string{"=cat"}, expectedError: execshell.ErrInvalidEnvironmentAssignment},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			environmentVariables, parseError := execshell.ParseEnvironmentAssignments(testCase.assignments)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, parseError, testCase.expectedError)
				require.Nil(testInstance, environmentVariables)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expected, environmentVariables)
		})
	}
}
