package cmd

import (
	"fmt"

	"github.com/crytic/solbuild/version"
	"github.com/spf13/cobra"
)

// versionCmd represents the version command that displays build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Long: `Print the version of solbuild, the commit it was built from and the Go version used to compile it.

Use --short to print a single line.`,
	Args: cmdValidateNoArgs("version"),
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.GetInfo()
		short, err := cmd.Flags().GetBool("short")
		if err != nil {
			return err
		}
		if short {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), info.Short())
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), info.String())
		return err
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version")
	rootCmd.AddCommand(versionCmd)
}
