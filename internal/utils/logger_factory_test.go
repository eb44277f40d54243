package utils_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gits/internal/utils"
)

const (
	testLoggerFactoryCaseSupportedFormatConstant   = "supported_log_level_%s_format_%s"
	testLoggerFactoryCaseUnsupportedLevelConstant  = "unsupported_log_level"
	testLoggerFactoryCaseUnsupportedFormatConstant = "unsupported_log_format"
	testLoggerFactorySubtestTemplateConstant       = "%d_%s"
	testInvalidLogLevelConstant                    = "invalid"
	testInvalidLogFormatConstant                   = "invalid"
	testLogMessageConstant                         = "logger_factory_test_message"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name                string
		requestedLogLevel   utils.LogLevel
		requestedLogFormat  utils.LogFormat
		expectError         bool
		expectStructuredLog bool
	}{
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelDebug, utils.LogFormatStructured),
			requestedLogLevel:   utils.LogLevelDebug,
			requestedLogFormat:  utils.LogFormatStructured,
			expectError:         false,
			expectStructuredLog: true,
		},
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelInfo, utils.LogFormatStructured),
			requestedLogLevel:   utils.LogLevelInfo,
			requestedLogFormat:  utils.LogFormatStructured,
			expectError:         false,
			expectStructuredLog: true,
		},
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelInfo, utils.LogFormatConsole),
			requestedLogLevel:   utils.LogLevelInfo,
			requestedLogFormat:  utils.LogFormatConsole,
			expectError:         false,
			expectStructuredLog: false,
		},
		{
			name:               testLoggerFactoryCaseUnsupportedLevelConstant,
			requestedLogLevel:  utils.LogLevel(testInvalidLogLevelConstant),
			requestedLogFormat: utils.LogFormatStructured,
			expectError:        true,
		},
		{
			name:               testLoggerFactoryCaseUnsupportedFormatConstant,
			requestedLogLevel:  utils.LogLevelInfo,
			requestedLogFormat: utils.LogFormat(testInvalidLogFormatConstant),
			expectError:        true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testLoggerFactorySubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			loggerFactory := utils.NewLoggerFactory()

			pipeReader, pipeWriter, pipeError := os.Pipe()
			require.NoError(testInstance, pipeError)

			originalStderr := os.Stderr
			os.Stderr = pipeWriter

			logger, creationError := loggerFactory.CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat)

			os.Stderr = originalStderr

			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)

				require.NoError(testInstance, pipeWriter.Close())
				require.NoError(testInstance, pipeReader.Close())
				return
			}

			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, logger)

			logger.Info(testLogMessageConstant)
			syncError := logger.Sync()
			if syncError != nil {
				require.True(testInstance, errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.EINVAL))
			}

			require.NoError(testInstance, pipeWriter.Close())

			capturedOutput, readError := io.ReadAll(pipeReader)
			require.NoError(testInstance, readError)
			require.NoError(testInstance, pipeReader.Close())

			trimmedOutput := bytes.TrimSpace(capturedOutput)
			require.NotEmpty(testInstance, trimmedOutput)
			require.Contains(testInstance, string(trimmedOutput), testLogMessageConstant)

			isJSONLog := json.Valid(trimmedOutput)
			if testCase.expectStructuredLog {
				require.True(testInstance, isJSONLog)
			} else {
				require.False(testInstance, isJSONLog)
			}
		})
	}
}

func TestLoggerFactoryCreateLoggerOmitsStacktraces(testInstance *testing.T) {
	pipeReader, pipeWriter, pipeError := os.Pipe()
	require.NoError(testInstance, pipeError)

	originalStderr := os.Stderr
	os.Stderr = pipeWriter
	logger, creationError := utils.NewLoggerFactory().CreateLogger(utils.LogLevelError, utils.LogFormatStructured)
	os.Stderr = originalStderr
	require.NoError(testInstance, creationError)

	logger.Error(testLogMessageConstant)
	_ = logger.Sync()
	require.NoError(testInstance, pipeWriter.Close())

	capturedOutput, readError := io.ReadAll(pipeReader)
	require.NoError(testInstance, readError)
	require.NoError(testInstance, pipeReader.Close())

	var entry map[string]any
	require.NoError(testInstance, json.Unmarshal(bytes.TrimSpace(capturedOutput), &entry))
	require.Equal(testInstance, testLogMessageConstant, entry["msg"])
	require.NotContains(testInstance, entry, "stacktrace")
}

func TestLoggerFactoryCreateFileLogger(testInstance *testing.T) {
	testCases := []struct {
		name                string
		requestedLogFormat  utils.LogFormat
		expectStructuredLog bool
	}{
		{name: "structured_file", requestedLogFormat: utils.LogFormatStructured, expectStructuredLog: true},
		{name: "console_file", requestedLogFormat: utils.LogFormatConsole, expectStructuredLog: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			logFilePath := filepath.Join(testInstance.TempDir(), "logs", "gits.log")

			logger, creationError := utils.NewLoggerFactory().Build(utils.LoggerConfiguration{
				Level:    utils.LogLevelDebug,
				Format:   testCase.requestedLogFormat,
				FilePath: logFilePath,
			})
			require.NoError(testInstance, creationError)

			logger.Debug(testLogMessageConstant)
			require.NoError(testInstance, logger.Sync())

			fileContent, readError := os.ReadFile(logFilePath)
			require.NoError(testInstance, readError)
			trimmedContent := bytes.TrimSpace(fileContent)
			require.Contains(testInstance, string(trimmedContent), testLogMessageConstant)
			require.Equal(testInstance, testCase.expectStructuredLog, json.Valid(trimmedContent))
		})
	}
}

func TestLoggerFactoryFileLoggerValidation(testInstance *testing.T) {
	loggerFactory := utils.NewLoggerFactory()

	_, pathError := loggerFactory.CreateFileLogger(utils.LogLevelInfo, utils.LogFormatConsole, "  ")
	require.ErrorIs(testInstance, pathError, utils.ErrLogFilePathMissing)

	_, levelError := loggerFactory.CreateFileLogger(utils.LogLevel(testInvalidLogLevelConstant), utils.LogFormatConsole, filepath.Join(testInstance.TempDir(), "gits.log"))
	require.Error(testInstance, levelError)
	require.True(testInstance, strings.Contains(levelError.Error(), testInvalidLogLevelConstant))
}

func TestLoggerFactoryChoices(testInstance *testing.T) {
	require.Equal(testInstance, []string{"debug", "info", "warn", "error"}, utils.LogLevelChoices())
	require.Equal(testInstance, []string{"structured", "console"}, utils.LogFormatChoices())
}
