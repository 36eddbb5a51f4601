package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/doorman-ac/doorman/pkg/client"
)

var (
	controlsListLimit        uint
	controlsListOffset       uint
	controlsListSearch       string
	controlsListResourceType string
)

var controlsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List access controls on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Retrieving access controls...")
		resp, correlationID, err := cli.ListControls(cmd.Context(), client.ListControlsOpts{
			Limit:        controlsListLimit,
			Offset:       controlsListOffset,
			Search:       controlsListSearch,
			ResourceType: controlsListResourceType,
		})
		if err != nil {
			return logError(err, correlationID, "listing access controls failed")
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Resource", "Name", "Enabled", "Strategy", "Op", "Groups"})

		for _, control := range resp.Items {
			enabled := redCross
			if control.IsEnabled {
				enabled = greenCheck
			}

			t.AppendRow(table.Row{
				bold(control.Key().String()),
				truncate(control.Name, 40),
				enabled,
				control.Strategy,
				control.MainOperator,
				len(control.Groups),
			})
		}

		applyTableFormat(t)
		t.Render()

		fmt.Println(listingSummary(len(resp.Items), resp.Total))
		return nil
	},
}

// listingSummary renders the footer line under the controls table.
func listingSummary(shown, total int) string {
	return fmt.Sprintf("Showing %d of %s controls", shown, color.New(color.Bold).Sprint(total))
}

func init() {
	controlsCmd.AddCommand(controlsListCmd)

	controlsListCmd.Flags().UintVar(&controlsListLimit, "limit", 50, "Maximum number of controls to list")
	controlsListCmd.Flags().UintVar(&controlsListOffset, "offset", 0, "Offset into the listing")
	controlsListCmd.Flags().StringVar(&controlsListSearch, "search", "", "Filter by name or resource")
	controlsListCmd.Flags().StringVar(&controlsListResourceType, "resource-type", "", "Filter by resource type")
}
