package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/crytic/solbuild/cmd/exitcodes"
	"github.com/crytic/solbuild/compilation/project"
	"github.com/crytic/solbuild/logging"
	"github.com/crytic/solbuild/logging/colors"
	"github.com/spf13/cobra"
)

// buildCmd represents the command provider for build
var buildCmd = &cobra.Command{
	Use:               "build",
	Short:             "Compiles a project",
	Long:              `Compiles every source file of a project whose inputs changed since the last build, and writes the resulting artifacts`,
	Args:              cmdValidateNoArgs("build"),
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunBuild,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the build command
	err := addBuildFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the build command", err)
	}

	// Add the build command and its associated flags to the root command
	rootCmd.AddCommand(buildCmd)
}

// cmdRunBuild executes the CLI build command
func cmdRunBuild(cmd *cobra.Command, args []string) error {
	projectConfig, err := loadProjectConfig(cmd, updateProjectConfigWithBuildFlags)
	if err != nil {
		cmdLogger.Error("Failed to run the build command", err)
		return err
	}

	closeLogger, err := setupGlobalLogger(projectConfig.Logging)
	if err != nil {
		cmdLogger.Error("Failed to run the build command", err)
		return err
	}
	defer closeLogger()

	// Stop dispatching compiler invocations on keyboard interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	proj, err := newProject(ctx, projectConfig)
	if err != nil {
		logging.GlobalLogger.Error("Failed to run the build command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	output, err := compileProject(ctx, proj)
	if err != nil {
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	// If the compilation reported errors, we'll want to return a special exit code
	if output.Failed() {
		return exitcodes.NewErrorWithExitCode(fmt.Errorf("compilation failed"), exitcodes.ExitCodeCompilationFailed)
	}
	return nil
}

// compileProject runs one compilation of a project, printing its diagnostics and a summary. Errors are logged before
// they are returned.
func compileProject(ctx context.Context, proj *project.Project) (*project.ProjectCompileOutput, error) {
	output, err := proj.Compile(ctx)
	if err != nil {
		logging.GlobalLogger.Error("Failed to compile the project", err)
		return nil, err
	}

	if diagnostics := output.Diagnostics(); len(diagnostics) > 0 {
		logging.GlobalLogger.Warn("Compilers reported ", len(diagnostics), " diagnostics:", diagnosticsLogBuffer(diagnostics))
	}

	compiled := len(output.CompiledArtifacts())
	cached := len(output.CachedArtifacts())
	if output.Failed() {
		logging.GlobalLogger.Error(colors.RedBold, colors.CROSS_MARK, " Compilation failed", colors.Reset, " after ", output.Invocations, " compiler invocations")
	} else if output.Invocations == 0 {
		logging.GlobalLogger.Info("No files changed, ", cached, " artifacts are up to date")
	} else {
		logging.GlobalLogger.Info(colors.GreenBold, colors.CHECK_MARK, " Compiled ", colors.Reset, output.Output.ContractCount(), " contracts into ",
			compiled, " artifacts with ", output.Invocations, " compiler invocations (", cached, " cached)")
	}
	return output, nil
}
