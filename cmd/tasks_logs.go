package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var tasksLogsLevel string

var tasksLogsCmd = &cobra.Command{
	Use:   "logs NAME",
	Short: "See logs of a background task's latest run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if name == "" {
			return fmt.Errorf("task name cannot be empty")
		}

		cli, err := getClient()
		if err != nil {
			return err
		}

		log.Debug().Msgf("Retrieving logs for task '%s'...", name)
		logs, err := cli.GetTaskLogs(cmd.Context(), name)
		if err != nil {
			return fmt.Errorf("retrieving task logs: %w", err)
		}

		log.Info().Msgf("Logs for task '%s':", name)
		fmt.Println("----------------------------------------")
		for _, entry := range logs {
			if tasksLogsLevel != "" && entry.Level != tasksLogsLevel {
				continue
			}
			fmt.Printf("%s | %s | %s\n",
				entry.Time.Format("15:04:05"),
				formatLogLevel(entry.Level),
				entry.Message)
		}
		return nil
	},
}

// formatLogLevel renders a task log level as a colored three-letter tag.
func formatLogLevel(level string) string {
	switch level {
	case "info":
		return color.GreenString("inf")
	case "warn":
		return color.YellowString("wrn")
	case "error":
		return color.RedString("err")
	case "debug":
		return color.New(color.Faint).Sprint("dbg")
	}
	return level
}

func init() {
	tasksCmd.AddCommand(tasksLogsCmd)

	tasksLogsCmd.Flags().StringVar(&tasksLogsLevel, "level", "", "Only show entries of this level (debug|info|warn|error)")
}
