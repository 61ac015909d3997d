package cmd

import (
	"github.com/crytic/solbuild/config"
	"github.com/spf13/cobra"
)

// addInitFlags adds the various flags for the init command
func addInitFlags() error {
	// Output path for configuration
	initCmd.Flags().String("out", "", "output path for the new project configuration file")

	// Overwrite without prompting
	initCmd.Flags().Bool("force", false, "overwrite an existing configuration file without prompting")

	// Source directories
	initCmd.Flags().StringSlice("sources", []string{}, "directories holding the source files of the project")

	// Artifact format
	initCmd.Flags().String("format", "", "artifact format of the project")

	return nil
}

// updateProjectConfigWithInitFlags will update the given projectConfig with any CLI arguments that were provided to the init command
func updateProjectConfigWithInitFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update source directories
	if cmd.Flags().Changed("sources") {
		projectConfig.Paths.Sources, err = cmd.Flags().GetStringSlice("sources")
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

	// A configuration is only written if it can be read back
	return projectConfig.Validate()
}
