package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/doorman-ac/doorman/pkg/client"
)

var (
	auditLogLimit         uint
	auditLogCorrelationID string
	auditLogActorID       string
	auditLogResourceType  string
	auditLogResourceID    string
)

var auditLogCmd = &cobra.Command{
	Use:     "log",
	Aliases: []string{"logs"},
	Short:   "Show recent access decisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Retrieving audit log entries...")
		entries, correlationID, err := cli.ListAudits(cmd.Context(), client.ListAuditsOpts{
			Limit:         auditLogLimit,
			CorrelationID: auditLogCorrelationID,
			ActorID:       auditLogActorID,
			ResourceType:  auditLogResourceType,
			ResourceID:    auditLogResourceID,
		})
		if err != nil {
			return logError(err, correlationID, "listing audit entries failed")
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Time", "Correlation", "Actor", "Resource", "Decision", "Level", "Reason"})

		for _, entry := range entries {
			decision := redCross + " denied"
			if entry.Allowed {
				decision = greenCheck + " allowed"
			}
			reason := entry.Reason
			if entry.Error != "" {
				reason = entry.Error
			}

			t.AppendRow(table.Row{
				entry.Time.Format("2006-01-02 15:04:05"),
				truncate(entry.ID, 12),
				entry.ActorID,
				entry.ResourceType + "/" + entry.ResourceID,
				decision,
				entry.AccessLevel,
				truncate(reason, 48),
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditLogCmd)

	auditLogCmd.Flags().UintVar(&auditLogLimit, "limit", 50, "Maximum number of entries to list")
	auditLogCmd.Flags().StringVar(&auditLogCorrelationID, "correlation-id", "", "Filter by correlation ID")
	auditLogCmd.Flags().StringVar(&auditLogActorID, "actor", "", "Filter by actor ID")
	auditLogCmd.Flags().StringVar(&auditLogResourceType, "resource-type", "", "Filter by resource type")
	auditLogCmd.Flags().StringVar(&auditLogResourceID, "resource-id", "", "Filter by resource ID")
}
