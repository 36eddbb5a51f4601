package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show version information of the remote Doorman server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		info, correlationID, err := cli.Info(cmd.Context())
		if err != nil {
			return logError(err, correlationID, "retrieving server info failed")
		}

		fmt.Printf("Service: %s\n", bold(info.Service))
		fmt.Printf("Version: %s\n", info.Version)
		fmt.Printf("Commit:  %s\n", info.CommitHash)
		fmt.Printf("About:   %s\n", info.About)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
