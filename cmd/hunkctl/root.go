package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/hunkkit/console"
	"github.com/joshuapare/hunkkit/pkg/memsys"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool

	// Memory system flags
	megs         int
	zmegs        int
	zoneFraction float64
	minFrag      int
	configPath   string
	paranoid     bool
)

var rootCmd = &cobra.Command{
	Use:   "hunkctl",
	Short: "Drive and inspect a three-tier arena memory manager",
	Long: `hunkctl starts a hunk arena with its zone heap and LRU cache, optionally
replays a workload script against it, and reports the resulting layout,
validation results or metrics.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaults := memsys.DefaultOptions()

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")

	rootCmd.PersistentFlags().IntVar(&megs, "megs", defaults.Megs, "Arena size in MiB")
	rootCmd.PersistentFlags().IntVar(&zmegs, "zmegs", 0, "Zone size in MiB (overrides --zone-fraction)")
	rootCmd.PersistentFlags().
		Float64Var(&zoneFraction, "zone-fraction", defaults.ZoneFraction, "Share of the arena given to the zone")
	rootCmd.PersistentFlags().
		IntVar(&minFrag, "minfrag", defaults.MinFragment, "Zone split threshold in bytes (-1 for default)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML options file")
	rootCmd.PersistentFlags().BoolVar(&paranoid, "paranoid", false, "Validate every 1024 allocations")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// loadOptions merges the config file, if any, with flags set on the command
// line. Flags win.
func loadOptions(cmd *cobra.Command) (memsys.Options, error) {
	opts := memsys.DefaultOptions()
	if configPath != "" {
		var err error
		if opts, err = memsys.LoadOptions(configPath); err != nil {
			return opts, err
		}
	}

	changed := func(name string) bool {
		f := cmd.Flag(name)
		return f != nil && f.Changed
	}
	if configPath == "" || changed("megs") {
		opts.Megs = megs
	}
	if configPath == "" || changed("zmegs") {
		opts.ZoneMegs = zmegs
	}
	if configPath == "" || changed("zone-fraction") {
		opts.ZoneFraction = zoneFraction
	}
	if configPath == "" || changed("minfrag") {
		opts.MinFragment = minFrag
	}
	if configPath == "" || changed("paranoid") {
		opts.Paranoid = paranoid
	}
	return opts, opts.Validate()
}

// newConsole prints to stdout unless quiet, and logs to stderr when verbose.
func newConsole() *console.Console {
	var out io.Writer = os.Stdout
	if quiet {
		out = io.Discard
	}
	con := console.New(out)
	if verbose && !quiet {
		con.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return con
}

// openSystem starts a memory system configured from flags and config.
func openSystem(cmd *cobra.Command) (*memsys.System, error) {
	opts, err := loadOptions(cmd)
	if err != nil {
		return nil, err
	}
	printVerbose("Starting %d MiB arena\n", opts.Megs)
	sys, err := memsys.Open(opts, newConsole())
	if err != nil {
		return nil, fmt.Errorf("failed to start memory system: %w", err)
	}
	return sys, nil
}

// runWorkloadFile replays the workload at path against sys.
func runWorkloadFile(sys *memsys.System, path string) (memsys.Report, error) {
	w, err := memsys.LoadWorkload(path)
	if err != nil {
		return memsys.Report{}, err
	}
	printVerbose("Running %d steps from %s\n", len(w.Steps), path)
	rep, err := memsys.NewRunner(sys).Run(w)
	if err != nil {
		return rep, fmt.Errorf("workload %s: %w", path, err)
	}
	return rep, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
