package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doorman-ac/doorman/internal/config"
)

var configValidateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Validate a Doorman config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return logError(err, "", fmt.Sprintf("config file '%s' is invalid", args[0]))
		}

		logSuccess("config file '%s' is valid (%d controls)", args[0], len(cfg.Controls))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
