package main

import (
	"github.com/spf13/cobra"
)

var runEvery bool

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <workload>",
		Short: "Replay a workload script and print the inventories",
		Long: `The run command replays a YAML workload against a fresh memory system,
then prints the hunk, zone and cache inventories.

Example:
  hunkctl run workload.yaml
  hunkctl run workload.yaml --every --megs 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args)
		},
	}
	cmd.Flags().BoolVar(&runEvery, "every", false, "List every hunk allocation instead of grouping by name")
	return cmd
}

type runResult struct {
	Steps        int        `json:"steps"`
	ZoneFailures int        `json:"zoneFailures"`
	CacheMisses  int        `json:"cacheMisses"`
	System       SystemInfo `json:"system"`
}

func runRun(cmd *cobra.Command, args []string) error {
	sys, err := openSystem(cmd)
	if err != nil {
		return err
	}
	defer sys.Close()

	rep, err := runWorkloadFile(sys, args[0])
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(runResult{
			Steps:        rep.Steps,
			ZoneFailures: rep.ZoneFailures,
			CacheMisses:  rep.CacheMisses,
			System:       collectInfo(sys),
		})
	}

	printInfo("Ran %d steps (%d zone failures, %d cache misses)\n",
		rep.Steps, rep.ZoneFailures, rep.CacheMisses)
	sys.Print(runEvery)
	return nil
}
