package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/doorman-ac/doorman/internal/core"
	"github.com/doorman-ac/doorman/internal/engine"
)

var debugContextFlags requestFlags

// debugContextCmd dumps the resolved evaluation context so condition authors
// can see exactly which field paths resolve to which values.
var debugContextCmd = &cobra.Command{
	Use:   "context",
	Short: "Resolve and dump a simulated evaluation context",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := debugContextFlags.buildRequest()
		if err != nil {
			return err
		}

		var now core.Snapshot
		if req.Now != nil {
			if now, err = core.NewSnapshot(req.Now.Date, req.Now.Time, req.Now.Day); err != nil {
				return fmt.Errorf("invalid now override: %w", err)
			}
		} else {
			now = core.SnapshotAt(time.Now())
		}

		ectx := &core.EvaluationContext{
			ResourceType: req.ResourceType,
			ResourceID:   req.ResourceID,
			User:         req.User,
			Request:      req.Request,
			Now:          now,
		}

		spew.Dump(ectx)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Field Path", "Kind", "Value"})

		for _, path := range engine.KnownFields() {
			value, found := engine.Resolve(ectx, path)
			rendered := "(not set)"
			if found {
				rendered = fmt.Sprintf("%v", value)
			}
			t.AppendRow(table.Row{path, core.KindOf(path), rendered})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	debugCmd.AddCommand(debugContextCmd)

	debugContextFlags.bind(debugContextCmd.Flags())
}
