package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/gits/internal/execshell"
	"github.com/temirov/gits/internal/fanout"
	"github.com/temirov/gits/internal/repos/discovery"
	"github.com/temirov/gits/internal/repos/filesystem"
	"github.com/temirov/gits/internal/repos/targets"
	"github.com/temirov/gits/internal/ui"
	"github.com/temirov/gits/internal/utils"
	flagutils "github.com/temirov/gits/internal/utils/flags"
	pathutils "github.com/temirov/gits/internal/utils/path"
)

const (
	applicationNameConstant                 = "gits"
	applicationUsageConstant                = "gits [flags] [GIT_ARGS...]"
	applicationShortDescriptionConstant     = "Run one git command across many repositories"
	applicationLongDescriptionConstant      = "gits finds the git repositories under a directory (or the repository you are in) and runs the same git command in each of them, in a stable order. Without arguments it runs git status."
	applicationVersionTemplateConstant      = "gits version: {{.Version}}\n"
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured diagnostic log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured diagnostic log format."
	rootFlagNameConstant                    = "root"
	rootFlagUsageConstant                   = "Directory to search for repositories (default: current directory)."
	absolutePathFlagNameConstant            = "absolute-path"
	absolutePathFlagUsageConstant           = "Print headings as absolute paths."
	parentFlagNameConstant                  = "parent"
	parentFlagUsageConstant                 = "Also include repositories enclosing the current directory when the root is a repository."
	maxDepthFlagNameConstant                = "max-depth"
	maxDepthFlagUsageConstant               = "Maximum directory depth searched below the root (default: unlimited)."
	listFlagNameConstant                    = "list"
	listFlagUsageConstant                   = "List the repositories and exit without running a command."
	headingStyleFlagNameConstant            = "heading-style"
	headingStyleFlagUsageConstant           = "Heading decoration."
	colorFlagNameConstant                   = "color"
	colorFlagUsageConstant                  = "When to color headings."
	noHeadingFlagNameConstant               = "no-heading"
	noHeadingFlagUsageConstant              = "Never print headings."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	commonLogFileConfigKeyConstant          = commonConfigurationKeyConstant + ".log_file"
	headingsConfigurationKeyConstant        = "headings"
	headingsStyleConfigKeyConstant          = headingsConfigurationKeyConstant + ".style"
	headingsColorConfigKeyConstant          = headingsConfigurationKeyConstant + ".color"
	executionConfigurationKeyConstant       = "execution"
	executionExecutableConfigKeyConstant    = executionConfigurationKeyConstant + ".executable"
	executionEnvironmentConfigKeyConstant   = executionConfigurationKeyConstant + ".environment"
	environmentPrefixConstant               = "GITS"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	workingDirectoryErrorTemplateConstant   = "unable to determine working directory: %w"
	maxDepthErrorTemplateConstant           = "invalid --max-depth: %w"
	headingStyleErrorTemplateConstant       = "invalid heading style: %w"
	colorModeErrorTemplateConstant          = "invalid color mode: %w"
	environmentErrorTemplateConstant        = "invalid execution environment: %w"
	executorCreationErrorTemplateConstant   = "unable to prepare command execution: %w"
	resolverCreationErrorTemplateConstant   = "unable to prepare repository discovery: %w"
	runRequestedMessageConstant             = "gits invoked"
	logFieldArgumentsConstant               = "arguments"
	logFieldRootConstant                    = "root"
	logFieldListConstant                    = "list"
	loggerNotInitializedMessageConstant     = "logger not initialized"
)

var applicationVersion = "dev"

// ApplicationConfiguration describes the configuration read from the embedded defaults, files, and environment.
type ApplicationConfiguration struct {
	Common    ApplicationCommonConfiguration    `mapstructure:"common"`
	Headings  ApplicationHeadingsConfiguration  `mapstructure:"headings"`
	Execution ApplicationExecutionConfiguration `mapstructure:"execution"`
}

// ApplicationCommonConfiguration stores diagnostic logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`
}

// ApplicationHeadingsConfiguration stores heading presentation defaults.
type ApplicationHeadingsConfiguration struct {
	Style string `mapstructure:"style"`
	Color string `mapstructure:"color"`
}

// ApplicationExecutionConfiguration selects the executable run in each repository and its extra environment.
type ApplicationExecutionConfiguration struct {
	Executable  string   `mapstructure:"executable"`
	Environment []string `mapstructure:"environment"`
}

// Dependencies supplies the process-level collaborators of an Application.
// Zero values fall back to the operating system.
type Dependencies struct {
	StandardInput            io.Reader
	StandardOutput           io.Writer
	StandardError            io.Writer
	WorkingDirectoryProvider func() (string, error)
	EnvironmentLookup        utils.EnvironmentLookup
	TerminalProbe            ui.TerminalProbe
	CommandRunner            execshell.CommandRunner
	FileSystem               discovery.FileSystem
	HomeExpander             *pathutils.HomeExpander
}

type rootCommandOptions struct {
	root              string
	absolutePaths     bool
	includeAncestors  bool
	maximumDepth      int
	listOnly          bool
	headingStyleValue string
	colorModeValue    string
	suppressHeadings  bool
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	options               rootCommandOptions
	dependencies          Dependencies
}

// NewApplication assembles a CLI application bound to the current process.
func NewApplication() *Application {
	return NewApplicationWithDependencies(Dependencies{})
}

// NewApplicationWithDependencies assembles a CLI application with explicit process collaborators.
func NewApplicationWithDependencies(dependencies Dependencies) *Application {
	dependencies = withDefaultDependencies(dependencies)

	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		utils.UserConfigurationSearchPaths(applicationNameConstant, dependencies.EnvironmentLookup),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		dependencies:        dependencies,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationUsageConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       applicationVersion,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetVersionTemplate(applicationVersionTemplateConstant)
	cobraCommand.SetIn(dependencies.StandardInput)
	cobraCommand.SetOut(dependencies.StandardOutput)
	cobraCommand.SetErr(dependencies.StandardError)

	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", flagutils.FormatChoiceUsage(string(utils.LogLevelError), utils.LogLevelChoices(), logLevelFlagUsageConstant))
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", flagutils.FormatChoiceUsage(string(utils.LogFormatConsole), utils.LogFormatChoices(), logFormatFlagUsageConstant))

	rootFlags := cobraCommand.Flags()
	rootFlags.SetInterspersed(false)
	rootFlags.StringVar(&application.options.root, rootFlagNameConstant, "", rootFlagUsageConstant)
	rootFlags.BoolVar(&application.options.absolutePaths, absolutePathFlagNameConstant, false, absolutePathFlagUsageConstant)
	rootFlags.BoolVar(&application.options.includeAncestors, parentFlagNameConstant, false, parentFlagUsageConstant)
	rootFlags.IntVar(&application.options.maximumDepth, maxDepthFlagNameConstant, 0, maxDepthFlagUsageConstant)
	rootFlags.BoolVar(&application.options.listOnly, listFlagNameConstant, false, listFlagUsageConstant)
	rootFlags.StringVar(&application.options.headingStyleValue, headingStyleFlagNameConstant, "", flagutils.FormatChoiceUsage(string(ui.HeadingStyleRule), ui.HeadingStyleChoices(), headingStyleFlagUsageConstant))
	rootFlags.StringVar(&application.options.colorModeValue, colorFlagNameConstant, "", flagutils.FormatChoiceUsage(string(ui.ColorModeAuto), ui.ColorModeChoices(), colorFlagUsageConstant))
	rootFlags.BoolVar(&application.options.suppressHeadings, noHeadingFlagNameConstant, false, noHeadingFlagUsageConstant)

	application.rootCommand = cobraCommand

	return application
}

func withDefaultDependencies(dependencies Dependencies) Dependencies {
	if dependencies.StandardInput == nil {
		dependencies.StandardInput = os.Stdin
	}
	if dependencies.StandardOutput == nil {
		dependencies.StandardOutput = os.Stdout
	}
	if dependencies.StandardError == nil {
		dependencies.StandardError = os.Stderr
	}
	if dependencies.WorkingDirectoryProvider == nil {
		dependencies.WorkingDirectoryProvider = os.Getwd
	}
	if dependencies.EnvironmentLookup == nil {
		dependencies.EnvironmentLookup = os.LookupEnv
	}
	if dependencies.TerminalProbe == nil {
		standardOutputFile, isFile := dependencies.StandardOutput.(*os.File)
		if !isFile {
			standardOutputFile = nil
		}
		dependencies.TerminalProbe = ui.NewFileTerminalProbe(standardOutputFile)
	}
	if dependencies.CommandRunner == nil {
		dependencies.CommandRunner = execshell.NewOSCommandRunner()
	}
	if dependencies.FileSystem == nil {
		dependencies.FileSystem = filesystem.OSFileSystem{}
	}
	if dependencies.HomeExpander == nil {
		dependencies.HomeExpander = pathutils.NewHomeExpander()
	}
	return dependencies
}

// Execute runs the root command with the process arguments and ensures logger flushing.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(os.Args[1:])
}

// ExecuteWithArguments runs the root command with the provided arguments and ensures logger flushing.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	application.rootCommand.SetArgs(append([]string{}, arguments...))
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:       string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant:      string(utils.LogFormatConsole),
		commonLogFileConfigKeyConstant:        "",
		headingsStyleConfigKeyConstant:        string(ui.HeadingStyleRule),
		headingsColorConfigKeyConstant:        string(ui.ColorModeAuto),
		executionExecutableConfigKeyConstant:  string(execshell.CommandGit),
		executionEnvironmentConfigKeyConstant: []string{},
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.Build(utils.LoggerConfiguration{
		Level:    utils.LogLevel(application.configuration.Common.LogLevel),
		Format:   utils.LogFormat(application.configuration.Common.LogFormat),
		FilePath: application.configuration.Common.LogFile,
	})
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	workingDirectory, workingDirectoryError := application.dependencies.WorkingDirectoryProvider()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}

	explicitRoot := command.Flags().Changed(rootFlagNameConstant)
	resolutionRoot := workingDirectory
	if explicitRoot {
		resolutionRoot = application.resolveRootPath(application.options.root, workingDirectory)
	}

	depthLimit := discovery.UnlimitedDepth()
	if command.Flags().Changed(maxDepthFlagNameConstant) {
		limitedDepth, depthError := discovery.NewDepthLimit(application.options.maximumDepth)
		if depthError != nil {
			return fmt.Errorf(maxDepthErrorTemplateConstant, depthError)
		}
		depthLimit = limitedDepth
	}

	headingStyleValue := application.configuration.Headings.Style
	if command.Flags().Changed(headingStyleFlagNameConstant) {
		headingStyleValue = application.options.headingStyleValue
	}
	headingStyle, headingStyleError := ui.ParseHeadingStyle(headingStyleValue)
	if headingStyleError != nil {
		return fmt.Errorf(headingStyleErrorTemplateConstant, headingStyleError)
	}

	colorModeValue := application.configuration.Headings.Color
	if command.Flags().Changed(colorFlagNameConstant) {
		colorModeValue = application.options.colorModeValue
	}
	colorMode, colorModeError := ui.ParseColorMode(colorModeValue)
	if colorModeError != nil {
		return fmt.Errorf(colorModeErrorTemplateConstant, colorModeError)
	}

	environmentVariables, environmentError := execshell.ParseEnvironmentAssignments(application.configuration.Execution.Environment)
	if environmentError != nil {
		return fmt.Errorf(environmentErrorTemplateConstant, environmentError)
	}

	application.logger.Debug(
		runRequestedMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
		zap.String(logFieldRootConstant, resolutionRoot),
		zap.Bool(logFieldListConstant, application.options.listOnly),
	)

	repositoryDiscoverer := discovery.NewFilesystemRepositoryDiscovererWithFileSystem(application.dependencies.FileSystem, application.logger)
	resolver, resolverError := targets.NewResolver(repositoryDiscoverer, application.logger)
	if resolverError != nil {
		return fmt.Errorf(resolverCreationErrorTemplateConstant, resolverError)
	}

	targetSet, resolveError := resolver.Resolve(targets.DiscoveryConfiguration{
		Root:             resolutionRoot,
		WorkingDirectory: workingDirectory,
		MaximumDepth:     depthLimit,
		IncludeAncestors: application.options.includeAncestors,
	})
	if resolveError != nil {
		return resolveError
	}

	shellExecutor, executorError := execshell.NewShellExecutor(
		application.logger,
		application.dependencies.CommandRunner,
		ui.NewConsoleCommandEventLogger(application.logger),
	)
	if executorError != nil {
		return fmt.Errorf(executorCreationErrorTemplateConstant, executorError)
	}

	colorEnvironment := ui.NewColorEnvironment(application.dependencies.TerminalProbe.IsTerminal(), application.dependencies.EnvironmentLookup)
	headingPrinter := ui.NewHeadingPrinter(application.dependencies.StandardOutput, ui.HeadingPrinterConfiguration{
		Style:        headingStyle,
		ColorEnabled: colorMode.Enabled(colorEnvironment),
		RuleWidth:    ui.RuleWidth(application.dependencies.TerminalProbe),
	})

	orchestrator, orchestratorError := fanout.NewOrchestrator(
		fanout.Dependencies{
			Logger:         application.logger,
			Executor:       shellExecutor,
			Formatter:      ui.NewHeadingFormatter(nil),
			HeadingPrinter: headingPrinter,
			StandardInput:  application.dependencies.StandardInput,
			StandardOutput: application.dependencies.StandardOutput,
			StandardError:  application.dependencies.StandardError,
		},
		fanout.Options{
			Executable:     execshell.CommandName(strings.TrimSpace(application.configuration.Execution.Executable)),
			ResolutionRoot: resolutionRoot,
			AbsolutePaths:  application.options.absolutePaths,
			HeadingPolicy: ui.HeadingPolicy{
				IncludeAncestors: application.options.includeAncestors,
				AbsolutePaths:    application.options.absolutePaths,
				ExplicitRoot:     explicitRoot,
				Suppressed:       application.options.suppressHeadings,
			},
			EnvironmentVariables: environmentVariables,
		},
	)
	if orchestratorError != nil {
		return fmt.Errorf(executorCreationErrorTemplateConstant, orchestratorError)
	}

	if application.options.listOnly {
		return orchestrator.List(targetSet)
	}

	summary, runError := orchestrator.Run(command.Context(), targetSet, arguments)
	if runError != nil {
		return runError
	}
	if summary.LastExitCode != 0 {
		return fanout.ExitStatusError{ExitCode: summary.LastExitCode}
	}
	return nil
}

func (application *Application) resolveRootPath(rootValue string, workingDirectory string) string {
	expandedRoot := application.dependencies.HomeExpander.Expand(strings.TrimSpace(rootValue))
	if len(expandedRoot) == 0 {
		return workingDirectory
	}
	if filepath.IsAbs(expandedRoot) {
		return filepath.Clean(expandedRoot)
	}
	return filepath.Join(workingDirectory, expandedRoot)
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
