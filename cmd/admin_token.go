package cmd

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

var (
	adminTokenKey      string
	adminTokenSubject  string
	adminTokenValidity time.Duration
)

var adminTokenCmd = &cobra.Command{
	Use:   "admin-token",
	Short: "Mint an HMAC admin session token",
	Long: `Mints a signed session token with the admin role for the admin API.
	The signing key has to match the server's admin_signing_key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminTokenKey == "" {
			return fmt.Errorf("signing key cannot be empty")
		}

		now := time.Now()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":   adminTokenSubject,
			"roles": []string{"admin"},
			"iat":   now.Unix(),
			"exp":   now.Add(adminTokenValidity).Unix(),
		})

		signed, err := token.SignedString([]byte(adminTokenKey))
		if err != nil {
			return fmt.Errorf("signing token: %w", err)
		}

		fmt.Println(signed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminTokenCmd)

	adminTokenCmd.Flags().StringVarP(&adminTokenKey, "key", "k", "", "HMAC signing key (must match the server)")
	adminTokenCmd.Flags().StringVar(&adminTokenSubject, "subject", "admin", "Token subject")
	adminTokenCmd.Flags().DurationVar(&adminTokenValidity, "validity", 12*time.Hour, "Token validity duration")

	_ = adminTokenCmd.MarkFlagRequired("key")
}
