package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/doorman-ac/doorman/internal/cliconfig"
	"github.com/doorman-ac/doorman/pkg/client"
)

var loginCmd = &cobra.Command{
	Use:   "login TOKEN",
	Short: "Store an admin session token for a Doorman server",
	Long: `Verifies an admin session token against the server and saves it locally so
	future administrative requests (audit logs, controls, tasks) are
	authenticated. Mint a token with 'doorman admin-token'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loginToken := args[0]
		if loginToken == "" {
			return fmt.Errorf("token cannot be empty")
		}

		server := viper.GetString(DoormanAddrKey)
		if server == "" {
			return fmt.Errorf("server address not configured, provide via --server or env")
		}
		u, err := url.Parse(server)
		if err != nil {
			return fmt.Errorf("parsing server URL: %w", err)
		}

		// probe an admin endpoint to verify the token before saving it
		cli := client.New(server, client.WithAuthToken(loginToken))

		log.Info().Msgf("Verifying session token against %q...", u.Host)
		if _, correlationID, err := cli.ListControls(cmd.Context(), client.ListControlsOpts{Limit: 1}); err != nil {
			return logError(err, correlationID, "session token rejected by server")
		}

		cfg, err := cliconfig.Load()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = &cliconfig.CLIConfig{}
		}
		if err := cfg.SetCredential(server, &cliconfig.Credential{Token: loginToken}); err != nil {
			return err
		}
		if err := cliconfig.Save(cfg); err != nil {
			return logError(err, "", "login succeeded but could not save credentials")
		}

		logSuccess("saved credentials for %s", bold(u.Host))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
