package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/crytic/solbuild/config"
	"github.com/crytic/solbuild/logging/colors"
	"github.com/crytic/solbuild/utils"
	"github.com/spf13/cobra"
)

// initCmd represents the command provider for init
var initCmd = &cobra.Command{
	Use:               "init",
	Short:             "Initializes a project configuration",
	Long:              `Writes a default project configuration and creates the source directories it names`,
	Args:              cmdValidateNoArgs("init"),
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunInit,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add flags to init command
	err := addInitFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the init command", err)
	}

	// Add the init command and its associated flags to the root command
	rootCmd.AddCommand(initCmd)
}

// cmdRunInit executes the init CLI command and updates the project configuration with any flags
func cmdRunInit(cmd *cobra.Command, args []string) error {
	outputPath, err := initOutputPath(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	projectConfig := config.GetDefaultProjectConfig()
	err = updateProjectConfigWithInitFlags(cmd, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	if utils.FileExists(outputPath) {
		overwrite, err := confirmOverwrite(cmd, outputPath)
		if err != nil {
			cmdLogger.Error("Failed to scan input", err)
			return err
		}
		if !overwrite {
			fmt.Fprintln(cmd.OutOrStdout(), "Operation canceled.")
			return nil
		}
	}

	err = projectConfig.WriteToFile(outputPath)
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	// Source directories are relative to the configuration file
	for _, sourceDirectory := range projectConfig.Paths.Sources {
		if !filepath.IsAbs(sourceDirectory) {
			sourceDirectory = filepath.Join(filepath.Dir(outputPath), projectConfig.Paths.Root, sourceDirectory)
		}
		if err = utils.MakeDirectory(sourceDirectory); err != nil {
			cmdLogger.Error("Failed to create the source directory ", sourceDirectory, err)
			return err
		}
	}

	cmdLogger.Info("Project configuration successfully output to: ", colors.Bold, outputPath, colors.Reset)
	return nil
}

// initOutputPath returns the absolute path the configuration is written to: the --out flag if used, or the default
// config file in the working directory.
func initOutputPath(cmd *cobra.Command) (string, error) {
	outputPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return "", err
	}
	if !cmd.Flags().Changed("out") {
		outputPath = DefaultProjectConfigFilename
	}
	return filepath.Abs(outputPath)
}

// confirmOverwrite prompts the user for confirmation before an existing configuration is replaced, unless --force
// was used.
func confirmOverwrite(cmd *cobra.Command, path string) (bool, error) {
	force, err := cmd.Flags().GetBool("force")
	if err != nil || force {
		return force, err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "The file %s already exists. Overwrite? (y/n): ", path)
	var response string
	if _, err := fmt.Fscan(cmd.InOrStdin(), &response); err != nil {
		return false, err
	}
	return response == "y" || response == "Y", nil
}
