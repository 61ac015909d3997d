package cmd

import (
	"github.com/crytic/solbuild/compilation/compilers"
	"github.com/crytic/solbuild/compilation/project"
	"github.com/spf13/cobra"
)

// treeCmd represents the command provider for tree
var treeCmd = &cobra.Command{
	Use:               "tree",
	Short:             "Prints the import tree of a project",
	Long:              `Resolves the imports of every source file of a project and prints them as a tree`,
	Args:              cmdValidateNoArgs("tree"),
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunTree,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Config file
	treeCmd.Flags().String("config", "", "path to config file")

	// Add the tree command and its associated flags to the root command
	rootCmd.AddCommand(treeCmd)
}

// cmdRunTree executes the CLI tree command
func cmdRunTree(cmd *cobra.Command, args []string) error {
	projectConfig, err := loadProjectConfig(cmd, nil)
	if err != nil {
		cmdLogger.Error("Failed to run the tree command", err)
		return err
	}

	// Resolving the graph does not invoke any compiler, so none are discovered
	proj, err := project.NewProject(projectConfig, compilers.NewRegistry(), cmdLogger)
	if err != nil {
		cmdLogger.Error("Failed to run the tree command", err)
		return err
	}

	graph, err := proj.ResolveGraph()
	if err != nil {
		cmdLogger.Error("Failed to resolve the imports of the project", err)
		return err
	}
	if graph.Len() == 0 {
		cmdLogger.Warn("No source files found in ", projectConfig.Paths.Sources)
		return nil
	}
	return graph.WriteTree(cmd.OutOrStdout())
}
