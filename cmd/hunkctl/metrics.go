package main

import (
	"fmt"
	"os"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/joshuapare/hunkkit/pkg/metrics"
)

func init() {
	rootCmd.AddCommand(newMetricsCmd())
}

func newMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics [workload]",
		Short: "Print memory system metrics in Prometheus text format",
		Long: `The metrics command optionally replays a workload, then prints one
Prometheus scrape of the hunk, zone and cache statistics.

Example:
  hunkctl metrics
  hunkctl metrics workload.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetrics(cmd, args)
		},
	}
	return cmd
}

func runMetrics(cmd *cobra.Command, args []string) error {
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

	families, err := metrics.NewRegistry(sys).Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(os.Stdout, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
