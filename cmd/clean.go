package cmd

import (
	"os"

	"github.com/crytic/solbuild/compilation/cache"
	"github.com/crytic/solbuild/logging/colors"
	"github.com/crytic/solbuild/utils"
	"github.com/spf13/cobra"
)

// cleanCmd represents the command provider for clean
var cleanCmd = &cobra.Command{
	Use:               "clean",
	Short:             "Removes the artifacts and the cache of a project",
	Long:              `Removes the artifacts directory and the files cache of a project, so the next build compiles every file`,
	Args:              cmdValidateNoArgs("clean"),
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunClean,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Config file
	cleanCmd.Flags().String("config", "", "path to config file")

	// Add the clean command and its associated flags to the root command
	rootCmd.AddCommand(cleanCmd)
}

// cmdRunClean executes the CLI clean command
func cmdRunClean(cmd *cobra.Command, args []string) error {
	projectConfig, err := loadProjectConfig(cmd, nil)
	if err != nil {
		cmdLogger.Error("Failed to run the clean command", err)
		return err
	}

	paths, err := projectConfig.Paths.ProjectPaths()
	if err != nil {
		cmdLogger.Error("Failed to run the clean command", err)
		return err
	}

	// The build info directory lives inside the artifacts directory unless configured otherwise
	for _, directory := range []string{paths.Artifacts, paths.BuildInfo} {
		if err = utils.DeleteDirectory(directory); err != nil {
			cmdLogger.Error("Failed to remove ", directory, err)
			return err
		}
	}

	cachePath := cache.FilesCachePath(paths.Cache)
	if utils.FileExists(cachePath) {
		if err = os.Remove(cachePath); err != nil {
			cmdLogger.Error("Failed to remove ", cachePath, err)
			return err
		}
	}

	cmdLogger.Info("Removed the artifacts at ", colors.Bold, paths.Artifacts, colors.Reset, " and the cache at ", colors.Bold, cachePath, colors.Reset)
	return nil
}
