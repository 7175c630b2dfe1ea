package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/hunkkit/pkg/memsys"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Start the memory system and report its layout",
		Long: `The info command starts the arena, carves the zone and cache out of it,
and reports the resulting sizes.

Example:
  hunkctl info --megs 64
  hunkctl info --zmegs 8 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd)
		},
	}
	return cmd
}

// SystemInfo is the layout reported by info.
type SystemInfo struct {
	Arena        int `json:"arena"`
	Low          int `json:"low"`
	High         int `json:"high"`
	Free         int `json:"free"`
	Zone         int `json:"zone"`
	ZoneFree     int `json:"zoneFree"`
	CacheEntries int `json:"cacheEntries"`
	CacheBytes   int `json:"cacheBytes"`
}

func collectInfo(sys *memsys.System) SystemInfo {
	hs := sys.Hunk.Stats()
	zs := sys.Zone.Stats()
	cs := sys.Cache.Stats()
	return SystemInfo{
		Arena:        hs.Size,
		Low:          hs.Low,
		High:         hs.High,
		Free:         hs.Free,
		Zone:         zs.Size,
		ZoneFree:     zs.FreeBytes,
		CacheEntries: cs.Entries,
		CacheBytes:   cs.Bytes,
	}
}

func runInfo(cmd *cobra.Command) error {
	sys, err := openSystem(cmd)
	if err != nil {
		return err
	}
	defer sys.Close()

	info := collectInfo(sys)
	if jsonOut {
		return printJSON(info)
	}
	printSystemInfo(info)
	return nil
}

func printSystemInfo(info SystemInfo) {
	p := message.NewPrinter(language.English)
	printInfo("\nMemory System:\n")
	printInfo("  Arena: %s bytes\n", p.Sprintf("%d", info.Arena))
	printInfo("  Low:   %s bytes\n", p.Sprintf("%d", info.Low))
	printInfo("  High:  %s bytes\n", p.Sprintf("%d", info.High))
	printInfo("  Free:  %s bytes\n", p.Sprintf("%d", info.Free))
	printInfo("\nZone:\n")
	printInfo("  Size: %s bytes\n", p.Sprintf("%d", info.Zone))
	printInfo("  Free: %s bytes\n", p.Sprintf("%d", info.ZoneFree))
	printInfo("\nCache:\n")
	printInfo("  Entries: %d\n", info.CacheEntries)
	printInfo("  Bytes:   %s\n", p.Sprintf("%d", info.CacheBytes))
}
