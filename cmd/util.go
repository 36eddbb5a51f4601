package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/doorman-ac/doorman/internal/cliconfig"
	"github.com/doorman-ac/doorman/pkg/client"
)

var (
	greenCheck = color.GreenString("✔")
	redCross   = color.RedString("✖")

	bold = color.New(color.Bold).SprintFunc()
)

// BeQuietError signals that the error has already been reported to the user
// and should not be logged again by Execute.
type BeQuietError struct{}

func (BeQuietError) Error() string {
	return "command failed"
}

func getClient() (*client.Client, error) {
	// we need the user to provide some server address first
	server := viper.GetString(DoormanAddrKey)
	if server == "" {
		return nil, fmt.Errorf("server address not configured, provide via --server or env")
	}

	var sessionToken string

	if cfg, err := cliconfig.Load(); err == nil {
		if credential, err := cfg.GetCredential(server); err == nil {
			sessionToken = credential.Token
		} else if !errors.Is(err, cliconfig.ErrCredentialNotFound) {
			return nil, err
		}
	}

	if envToken := os.Getenv("DOORMAN_TOKEN"); envToken != "" {
		sessionToken = envToken
	}

	return client.New(server, client.WithAuthToken(sessionToken)), nil
}

func logSuccess(format string, args ...any) {
	log.Info().Msgf(greenCheck+" "+format, args...)
}

func logError(err error, correlationID, short string) error {
	if correlationID != "" {
		log.Error().Msgf("%s %s (correlation ID: %s)", redCross, short, correlationID)
	} else {
		log.Error().Msgf("%s %s", redCross, short)
	}
	log.Error().Msgf("error: %v", err)
	return BeQuietError{}
}

func applyTableFormat(t table.Writer) {
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = false
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
