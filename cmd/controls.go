package cmd

import (
	"github.com/spf13/cobra"
)

var controlsCmd = &cobra.Command{
	Use:   "controls",
	Short: "Administrative access control commands",
	Long:  `View the access controls loaded on the server. Requires an authenticated admin session (doorman login).`,
}

func init() {
	rootCmd.AddCommand(controlsCmd)
}
