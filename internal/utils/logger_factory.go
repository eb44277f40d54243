package utils

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	jsonZapEncodingStringConstant        = "json"
	consoleZapEncodingStringConstant     = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	logFilePathMissingMessageConstant    = "log file path is empty"
	logFileMaximumSizeMegabytes          = 10
	logFileMaximumBackups                = 5
	logFileMaximumAgeDays                = 7
)

// ErrLogFilePathMissing indicates a file logger was requested without a destination.
var ErrLogFilePathMissing = errors.New(logFilePathMissingMessageConstant)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

// LoggerConfiguration describes the diagnostic logger of a run.
type LoggerConfiguration struct {
	Level  LogLevel
	Format LogFormat
	// FilePath redirects diagnostics from stderr to a size-rotated file when set.
	FilePath string
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct{}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var logFormatEncodingMapping = map[LogFormat]string{
	LogFormatStructured: jsonZapEncodingStringConstant,
	LogFormatConsole:    consoleZapEncodingStringConstant,
}

// NewLoggerFactory constructs a new logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// LogLevelChoices lists the accepted log level values.
func LogLevelChoices() []string {
	return []string{logLevelDebugStringConstant, logLevelInfoStringConstant, logLevelWarnStringConstant, logLevelErrorStringConstant}
}

// LogFormatChoices lists the accepted log format values.
func LogFormatChoices() []string {
	return []string{logFormatStructuredStringConstant, logFormatConsoleStringConstant}
}

// Build produces a logger for the configuration, writing to a rotated file when FilePath is set.
func (factory *LoggerFactory) Build(configuration LoggerConfiguration) (*zap.Logger, error) {
	if len(strings.TrimSpace(configuration.FilePath)) > 0 {
		return factory.CreateFileLogger(configuration.Level, configuration.Format, configuration.FilePath)
	}
	return factory.CreateLogger(configuration.Level, configuration.Format)
}

// CreateLogger produces a zap.Logger writing to stderr honoring the requested log level and format.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLogLevel, encoding, resolveError := resolveLoggerSettings(requestedLogLevel, requestedLogFormat)
	if resolveError != nil {
		return nil, resolveError
	}

	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zapLogLevel)
	configuration.Encoding = encoding
	configuration.DisableStacktrace = true

	logger, buildError := configuration.Build()
	if buildError != nil {
		return nil, buildError
	}

	return logger, nil
}

// CreateFileLogger produces a zap.Logger appending to logFilePath, rotated by size.
func (factory *LoggerFactory) CreateFileLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat, logFilePath string) (*zap.Logger, error) {
	zapLogLevel, encoding, resolveError := resolveLoggerSettings(requestedLogLevel, requestedLogFormat)
	if resolveError != nil {
		return nil, resolveError
	}
	trimmedFilePath := strings.TrimSpace(logFilePath)
	if len(trimmedFilePath) == 0 {
		return nil, ErrLogFilePathMissing
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Clean(trimmedFilePath),
		MaxSize:    logFileMaximumSizeMegabytes,
		MaxBackups: logFileMaximumBackups,
		MaxAge:     logFileMaximumAgeDays,
		Compress:   true,
	}

	encoderConfiguration := zap.NewProductionEncoderConfig()
	encoderConfiguration.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfiguration.EncodeLevel = zapcore.LowercaseLevelEncoder

	var encoder zapcore.Encoder
	if encoding == jsonZapEncodingStringConstant {
		encoder = zapcore.NewJSONEncoder(encoderConfiguration)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfiguration)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(fileWriter), zap.NewAtomicLevelAt(zapLogLevel))
	return zap.New(core), nil
}

func resolveLoggerSettings(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (zapcore.Level, string, error) {
	zapLogLevel, levelExists := logLevelMapping[LogLevel(strings.ToLower(string(requestedLogLevel)))]
	if !levelExists {
		return zapcore.InfoLevel, "", fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	encoding, formatExists := logFormatEncodingMapping[LogFormat(strings.ToLower(string(requestedLogFormat)))]
	if !formatExists {
		return zapcore.InfoLevel, "", fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	return zapLogLevel, encoding, nil
}
