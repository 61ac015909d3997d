package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/crytic/solbuild/compilation/compilers"
	"github.com/crytic/solbuild/compilation/project"
	"github.com/crytic/solbuild/compilation/types"
	"github.com/crytic/solbuild/config"
	"github.com/crytic/solbuild/logging"
	"github.com/crytic/solbuild/logging/colors"
	"github.com/crytic/solbuild/utils"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cmdValidFlagArgs will return the flags of a command which have not been used yet, for dynamic completion. None of
// the commands accept positional arguments, so file completion is disabled.
func cmdValidFlagArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			// Include the "--" prefix so repeated completion keeps suggesting flags rather than positional arguments.
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateNoArgs returns a cobra.PositionalArgs which makes sure that no positional arguments are provided to the
// named command.
func cmdValidateNoArgs(commandName string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.NoArgs(cmd, args); err != nil {
			err = fmt.Errorf("%s does not accept any positional arguments, only flags and their associated values", commandName)
			cmdLogger.Error("Failed to validate args to the "+commandName+" command", err)
			return err
		}
		return nil
	}
}

// readProjectConfig resolves the project configuration of a command and navigates through the following
// possibilities:
// #1: We will search for either a custom config file (via --config) or the default (solbuild.json).
// If we find it, read it. If we can't read it, throw an error.
// #2: If a custom file was provided (--config was used), and we can't find the file, throw an error.
// #3: If solbuild.json can't be found, use the default project configuration.
// Returns the configuration and the directory relative paths in it are resolved against.
func readProjectConfig(cmd *cobra.Command) (*config.ProjectConfig, string, error) {
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", err
	}

	// If --config was not used, look for `solbuild.json` in the current work directory
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return nil, "", err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	_, existenceError := os.Stat(configPath)

	// Possibility #1: File was found
	if existenceError == nil {
		cmdLogger.Info("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
		projectConfig, err := config.ReadProjectConfigFromFile(configPath)
		if err != nil {
			return nil, "", err
		}
		return projectConfig, filepath.Dir(configPath), nil
	}

	// Possibility #2: If the --config flag was used, and we couldn't find the file, we'll throw an error
	if configFlagUsed {
		return nil, "", existenceError
	}

	// Possibility #3: --config flag was not used and solbuild.json was not found, so use the default project config
	cmdLogger.Warn(fmt.Sprintf("Unable to find the config file at %v, will use the default project configuration instead", configPath))
	return config.GetDefaultProjectConfig(), filepath.Dir(configPath), nil
}

// loadProjectConfig reads the project configuration of a command, applies the command's flags to it through
// applyFlags (which may be nil), and changes the working directory to the configuration's directory, since every path
// in a configuration is relative to it.
func loadProjectConfig(cmd *cobra.Command, applyFlags func(*cobra.Command, *config.ProjectConfig) error) (*config.ProjectConfig, error) {
	projectConfig, configDirectory, err := readProjectConfig(cmd)
	if err != nil {
		return nil, err
	}

	if applyFlags != nil {
		err = applyFlags(cmd, projectConfig)
		if err != nil {
			return nil, err
		}
	}

	err = os.Chdir(configDirectory)
	if err != nil {
		return nil, err
	}
	return projectConfig, nil
}

// setupGlobalLogger instantiates the GlobalLogger from the logging configuration. Console output goes to stdout, and
// when a log directory is configured, structured logs are also written to a `log-<run id>.log` file inside it.
// Returns a function closing the log file, if any.
func setupGlobalLogger(loggingConfig config.LoggingConfig) (func(), error) {
	if loggingConfig.NoColor {
		colors.DisableColor()
	}

	logging.GlobalLogger = logging.NewLogger(loggingConfig.Level)
	logging.GlobalLogger.AddWriter(os.Stdout, logging.UNSTRUCTURED, !loggingConfig.NoColor)

	if loggingConfig.LogDirectory == "" {
		return func() {}, nil
	}

	file, err := utils.CreateFile(loggingConfig.LogDirectory, "log-"+uuid.NewString()+".log")
	if err != nil {
		return nil, err
	}
	logging.GlobalLogger.AddWriter(file, logging.STRUCTURED, false)
	return func() {
		logging.GlobalLogger.RemoveWriter(file, logging.STRUCTURED, false)
		_ = file.Close()
	}, nil
}

// newProject discovers the compilers configured for a project and creates the Project. Compiler versions are
// memoized in the project's cache directory.
func newProject(ctx context.Context, projectConfig *config.ProjectConfig) (*project.Project, error) {
	logger := logging.GlobalLogger.NewSubLogger("module", logging.CLI_SERVICE)

	paths, err := projectConfig.Paths.ProjectPaths()
	if err != nil {
		return nil, err
	}

	// A version cache we cannot open only costs a `--version` call per binary, so it is not fatal.
	versionCache, err := compilers.OpenVersionCache(filepath.Join(paths.Cache, VersionCacheFilename))
	if err != nil {
		logger.Warn("Failed to open the compiler version cache", err)
		versionCache = nil
	} else {
		defer versionCache.Close()
	}

	registry, err := compilers.DiscoverCompilers(ctx, projectConfig.Compilation.Compilers, versionCache, logger)
	if err != nil {
		return nil, err
	}

	proj, err := project.NewProject(projectConfig, registry, logging.GlobalLogger)
	if err != nil {
		return nil, err
	}
	subscribeProgressLogging(proj, logger)
	return proj, nil
}

// subscribeProgressLogging logs the start and end of every compiler invocation of a project.
func subscribeProgressLogging(proj *project.Project, logger *logging.Logger) {
	proj.Reporter.InvocationStarted.Subscribe(func(event project.InvocationStartedEvent) error {
		logger.Info("Compiling ", event.Job.Set.Len(), " files with ", event.Job.Set.Language, " ",
			event.Job.Set.Version.String(), " (", event.Job.Set.Profile, ")")
		return nil
	})
	proj.Reporter.InvocationFinished.Subscribe(func(event project.InvocationFinishedEvent) error {
		if event.Err != nil {
			logger.Error("Compiler "+event.Job.Compiler.LongVersion()+" failed", event.Err)
			return nil
		}
		logger.Info("Compiled with ", event.Job.Compiler.LongVersion(), " in ", event.Duration.Round(time.Millisecond))
		return nil
	})
}

// diagnosticsLogBuffer renders diagnostics one per line, colored by severity.
func diagnosticsLogBuffer(diagnostics []types.Diagnostic) *logging.LogBuffer {
	buffer := logging.NewLogBuffer()
	for _, diagnostic := range diagnostics {
		color := colors.Cyan
		if diagnostic.IsError() {
			color = colors.Red
		} else if diagnostic.Severity.AtLeast(types.SeverityWarning) {
			color = colors.Yellow
		}
		buffer.Append("\n", color, diagnostic.String(), colors.Reset)
	}
	return buffer
}
