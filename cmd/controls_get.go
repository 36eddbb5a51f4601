package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var controlsGetCmd = &cobra.Command{
	Use:   "get TYPE ID",
	Short: "Show a single access control",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		log.Debug().Msgf("Retrieving access control '%s/%s'...", args[0], args[1])
		control, correlationID, err := cli.GetControl(cmd.Context(), args[0], args[1])
		if err != nil {
			return logError(err, correlationID, "retrieving access control failed")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(control); err != nil {
			return fmt.Errorf("encoding control: %w", err)
		}
		return nil
	},
}

func init() {
	controlsCmd.AddCommand(controlsGetCmd)
}
