package cmd

import (
	"fmt"

	"github.com/crytic/solbuild/compilation/artifacts"
	"github.com/crytic/solbuild/config"
	"github.com/spf13/cobra"
)

// addBuildFlags adds the various flags for the build command
func addBuildFlags() error {
	return addCompilationFlags(buildCmd)
}

// addCompilationFlags adds the flags shared by every command which compiles a project to the given command.
func addCompilationFlags(command *cobra.Command) error {
	defaultConfig := config.GetDefaultProjectConfig()

	// Prevent alphabetical sorting of usage message
	command.Flags().SortFlags = false

	// Config file
	command.Flags().String("config", "", "path to config file")

	// Number of jobs
	command.Flags().Int("jobs", 0,
		fmt.Sprintf("maximum number of concurrent compiler invocations (unless a config file is provided, default is %d). 0 means one per CPU", defaultConfig.Compilation.Jobs))

	// Cache
	command.Flags().Bool("no-cache", false, "recompile every file, ignoring the results of previous runs")

	// Artifacts
	command.Flags().Bool("no-artifacts", false, "compile without writing artifacts or the cache")

	// Build info
	command.Flags().Bool("build-info", false,
		fmt.Sprintf("write a build info document per compiler invocation (unless a config file is provided, default is %t)", defaultConfig.Compilation.BuildInfo))

	// Artifact format
	command.Flags().String("format", "",
		fmt.Sprintf("artifact format, one of %v (unless a config file is provided, default is %q)", artifacts.GetSupportedFormats(), defaultConfig.Compilation.ArtifactFormat))

	// Compiler version
	command.Flags().String("compiler-version", "", "Solidity compiler version to use for every file")
	return nil
}

// updateProjectConfigWithBuildFlags will update the given projectConfig with any CLI arguments that were provided to
// a command compiling the project
func updateProjectConfigWithBuildFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update number of jobs
	if cmd.Flags().Changed("jobs") {
		projectConfig.Compilation.Jobs, err = cmd.Flags().GetInt("jobs")
		if err != nil {
			return err
		}
	}

	// Disable the cache
	if cmd.Flags().Changed("no-cache") {
		noCache, err := cmd.Flags().GetBool("no-cache")
		if err != nil {
			return err
		}
		projectConfig.Compilation.Cache = !noCache
	}

	// Disable artifacts
	if cmd.Flags().Changed("no-artifacts") {
		projectConfig.Compilation.NoArtifacts, err = cmd.Flags().GetBool("no-artifacts")
		if err != nil {
			return err
		}
	}

	// Update build info
	if cmd.Flags().Changed("build-info") {
		projectConfig.Compilation.BuildInfo, err = cmd.Flags().GetBool("build-info")
		if err != nil {
			return err
		}
	}

	// Update artifact format
	if cmd.Flags().Changed("format") {
		projectConfig.Compilation.ArtifactFormat, err = cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
	}

	// Update the pinned compiler version
	if cmd.Flags().Changed("compiler-version") {
		projectConfig.Compilation.CompilerVersion, err = cmd.Flags().GetString("compiler-version")
		if err != nil {
			return err
		}
	}
	return nil
}
