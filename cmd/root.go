package cmd

import (
	"os"

	"github.com/crytic/solbuild/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// cmdLogger is the logger used by every command before a project configuration is loaded.
var cmdLogger = logging.NewLogger(zerolog.InfoLevel)

var rootCmd = &cobra.Command{
	Use:   "solbuild",
	Short: "A build orchestrator for Solidity and Vyper projects",
	Long:  "solbuild resolves the imports of a smart contract project, compiles it with every compiler version it requires, and caches the results between runs",
}

func init() {
	cmdLogger.AddWriter(os.Stdout, logging.UNSTRUCTURED, true)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
