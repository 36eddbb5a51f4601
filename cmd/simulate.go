package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doorman-ac/doorman/internal/audit"
	"github.com/doorman-ac/doorman/internal/config"
	"github.com/doorman-ac/doorman/internal/service"
	"github.com/doorman-ac/doorman/internal/store"
)

var (
	simulateConfigPath string
	simulateFlags      requestFlags
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Evaluate an access request locally, without a server",
	Long: `Loads a Doorman config file, builds the simulated request context from flags
	(or a context file) and runs the evaluation locally. The full trace is
	printed the same way 'doorman why' renders remote traces.`,
	Example: `  # Would this student get access on a Saturday night?
  doorman simulate -f doorman.yaml --resource-type course --resource-id algebra-2 \
      -u user-1 --role student --date 2026-09-05 --time 22:30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(simulateConfigPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		req, err := simulateFlags.buildRequest()
		if err != nil {
			return err
		}

		// local evaluations are not audited
		svc := service.NewDecisionService(
			store.NewInMemoryControlStore(cfg.Controls),
			audit.NewNoopAuditor(),
		)

		result, err := svc.Evaluate(cmd.Context(), req)
		if err != nil {
			var httpErr *service.HTTPError
			if errors.As(err, &httpErr) {
				return httpErr.Wrapped
			}
			return err
		}

		printDecision(&service.ExplainResponse{
			Allowed:     result.Allowed,
			AccessLevel: result.AccessLevel,
			Reason:      result.Reason,
			Trace:       result.EvaluationTrace,
			Result:      result,
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVarP(&simulateConfigPath, "config", "f", "", "The Doorman config file to use")
	simulateFlags.bind(simulateCmd.Flags())

	_ = simulateCmd.MarkFlagRequired("config")
}
