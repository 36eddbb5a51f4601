package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/doorman-ac/doorman/internal/core"
	"github.com/doorman-ac/doorman/internal/service"
)

var (
	whyFlags       requestFlags
	whyGroupFilter string
	whyReplayID    string
)

var whyCmd = &cobra.Command{
	Use:   "why",
	Short: "Explain why an actor is allowed (or denied) access to a resource",
	Long: `Simulates an access request against the server and returns a detailed trace of
	the evaluation: every group, rule and condition with its outcome and reason.
	Useful for debugging why a specific actor is being denied or granted the
	wrong access level.

Note: This command requires a Doorman server to be running and reachable.
Also note that you need to be authenticated as admin to use this command.`,
	Example: `  # Why is this user denied access to course algebra-2?
  doorman why --resource-type course --resource-id algebra-2 -u user-1 --role student

  # Replay a past decision from the audit log
  doorman why --replay d1f3c...

  # Probe weekday gating with a simulated clock
  doorman why --resource-type course --resource-id algebra-2 -c ctx.yaml --date 2026-09-05 --time 22:30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		req, err := whyFlags.buildRequest()
		if err != nil {
			return err
		}

		resp, correlationID, err := cli.Explain(cmd.Context(), service.ExplainRequest{
			EvaluateRequest: req,
			ReplayID:        whyReplayID,
		})
		if err != nil {
			return logError(err, correlationID, "explain request failed")
		}

		printDecision(resp)
		return nil
	},
}

func printDecision(resp *service.ExplainResponse) {
	faint := color.New(color.Faint).SprintFunc()

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Printf("\n%s\n", bold("Evaluation Trace"))
	fmt.Println(faint("---------------------------------------------------"))

	if resp.Result != nil {
		for _, group := range resp.Result.GroupResults {
			if whyGroupFilter != "" && group.GroupName != whyGroupFilter {
				continue
			}

			icon := red("✖")
			if group.Result {
				icon = green("✔")
			}
			fmt.Printf("%s Group: %s %s\n", icon, bold(group.GroupName), cyan("["+string(group.Operator)+"]"))
			if group.Reason != "" {
				fmt.Printf("  %s\n", faint(group.Reason))
			}

			for _, rule := range group.RuleResults {
				ruleIcon := red("✖")
				if rule.Result {
					ruleIcon = green("✔")
				}
				level := ""
				if rule.AccessLevel != "" {
					level = faint(" -> " + string(rule.AccessLevel))
				}
				fmt.Printf("  %s Rule: %s %s%s\n", ruleIcon, bold(rule.RuleName), cyan("["+string(rule.Operator)+"]"), level)
				if rule.Reason != "" {
					fmt.Printf("      %s\n", faint(rule.Reason))
				}

				for _, cond := range rule.ConditionResults {
					condIcon := red("✖")
					if cond.Result {
						condIcon = green("✔")
					}
					fmt.Printf("    %s %s\n", condIcon, formatCondition(cond))
					if cond.Reason != "" {
						reason := cond.Reason
						if cond.Result {
							reason = faint(reason)
						} else {
							reason = yellow(reason)
						}
						fmt.Printf("      ↳ %s\n", reason)
					}
				}
			}

			fmt.Println()
		}
	} else {
		// replayed decisions only carry the flat trace lines
		for _, line := range resp.Trace {
			fmt.Printf("  %s\n", line)
		}
		fmt.Println()
	}

	fmt.Println(faint("---------------------------------------------------"))
	if resp.Allowed {
		fmt.Printf("Decision: %s (level: %s)\n", bold(green("allowed")), bold(string(resp.AccessLevel)))
	} else {
		fmt.Printf("Decision: %s\n", bold(red("denied")))
	}
	fmt.Printf("Reason: %s\n\n", resp.Reason)
}

func formatCondition(cond core.ConditionResult) string {
	op := string(cond.Operator)
	if cond.IsNegated {
		op = "NOT " + op
	}
	return fmt.Sprintf("%s %s %v", cond.FieldPath, op, cond.ExpectedValue)
}

func init() {
	rootCmd.AddCommand(whyCmd)

	whyFlags.bind(whyCmd.Flags())
	whyCmd.Flags().StringVarP(&whyGroupFilter, "filter-group", "g", "", "Filter output to a specific group name (optional)")
	whyCmd.Flags().StringVar(&whyReplayID, "replay", "", "Replay a past decision by correlation ID (optional)")
}
