package main

import (
	"runtime"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=..." at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("hunkctl {{.Version}}\n")
	rootCmd.AddCommand(newVersionCmd())
}

// BuildInfo identifies the binary.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Built   string `json:"built"`
	Go      string `json:"go"`
}

func buildInfo() BuildInfo {
	return BuildInfo{Version: version, Commit: commit, Built: date, Go: runtime.Version()}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildInfo()
			if jsonOut {
				return printJSON(info)
			}
			printInfo("hunkctl %s (commit %s, built %s, %s)\n", info.Version, info.Commit, info.Built, info.Go)
			return nil
		},
	}
}
