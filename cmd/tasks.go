package cmd

import (
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Administrative background task commands",
	Long:  `List, trigger and inspect background tasks on the server. Requires an authenticated admin session (doorman login).`,
}

func init() {
	rootCmd.AddCommand(tasksCmd)
}
