package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/hunkkit/hunk/verify"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [workload]",
		Short: "Validate every tier of the memory system",
		Long: `The check command optionally replays a workload, then validates the
hunk, zone and cache. Failures are reported per tier; a final consistency
check aborts the process if any tier is corrupt.

Example:
  hunkctl check
  hunkctl check workload.yaml --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args)
		},
	}
	return cmd
}

type tierStatus struct {
	Tier  string `json:"tier"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	sys, err := openSystem(cmd)
	if err != nil {
		return err
	}
	defer sys.Close()

	if len(args) == 1 {
		if _, err := runWorkloadFile(sys, args[0]); err != nil {
			return err
		}
	}

	results := verify.Run(sys.Tiers()...)
	if jsonOut {
		statuses := make([]tierStatus, 0, len(results))
		for _, r := range results {
			st := tierStatus{Tier: r.Tier, OK: r.OK()}
			if r.Err != nil {
				st.Error = r.Err.Error()
			}
			statuses = append(statuses, st)
		}
		if err := printJSON(statuses); err != nil {
			return err
		}
	} else {
		printInfo("\nValidation:\n")
		for _, r := range results {
			if r.OK() {
				printInfo("  ✓ %s\n", r.Tier)
			} else {
				printInfo("  ✗ %s: %v\n", r.Tier, r.Err)
			}
		}
	}

	if err := sys.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	sys.Check()
	return nil
}
