package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"pixeldiff/internal/config"
	diffimage "pixeldiff/internal/diff/image"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type flags struct {
	threshold       float64
	includeAA       bool
	alpha           float64
	output          string
	jsonOutput      bool
	concurrency     int
	callbackURL     string
	callbackTimeout time.Duration
	debug           bool
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	defaults := diffimage.DefaultOptions()

	rootCmd := &cobra.Command{
		Use:   "diff <image1> <image2>",
		Short: "Perceptual image diff with anti-aliasing detection",
		Long: `Compare two images of the same size pixel by pixel in YIQ space and report
how many pixels differ beyond the threshold. With --include-aa, anti-aliased
edges are detected, drawn in yellow and left out of the count.

Examples:
  diff before.png after.png                       # Print a summary
  diff before.png after.png -o diff.png --json    # Save the diff, print JSON
  diff a.png b.png --threshold 0.05 --include-aa  # Stricter comparison`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return report(cmd, f, failure("Usage: %s", cmd.UseLine()))
			}
			return runDiff(cmd, f, args[0], args[1])
		},
	}

	fs := rootCmd.Flags()
	fs.Float64Var(&f.threshold, "threshold", config.EnvOrDefault("DIFF_THRESHOLD", defaults.Threshold), "Color difference threshold in [0,1] (env: DIFF_THRESHOLD)")
	fs.BoolVar(&f.includeAA, "include-aa", config.EnvOrDefault("DIFF_INCLUDE_AA", defaults.IncludeAA), "Detect anti-aliased pixels and exclude them from the count (env: DIFF_INCLUDE_AA)")
	fs.Float64Var(&f.alpha, "alpha", config.EnvOrDefault("DIFF_ALPHA", defaults.Alpha), "Opacity of unchanged pixels in the output (env: DIFF_ALPHA)")
	fs.StringVarP(&f.output, "output", "o", config.EnvOrDefault("DIFF_OUTPUT", ""), "Save the diff image to a path or s3:// URL (env: DIFF_OUTPUT)")
	fs.BoolVar(&f.jsonOutput, "json", config.EnvOrDefault("DIFF_JSON", false), "Print the result as JSON (env: DIFF_JSON)")
	fs.IntVar(&f.concurrency, "concurrency", config.EnvOrDefault("DIFF_CONCURRENCY", 0), "Worker goroutines, 0 for GOMAXPROCS (env: DIFF_CONCURRENCY)")
	fs.StringVar(&f.callbackURL, "callback-url", config.EnvOrDefault("CALLBACK_URL", ""), "PATCH the JSON result to this URL (env: CALLBACK_URL)")
	fs.DurationVar(&f.callbackTimeout, "callback-timeout", config.EnvOrDefault("CALLBACK_TIMEOUT", 10*time.Second), "Overall timeout of the callback (env: CALLBACK_TIMEOUT)")
	fs.BoolVar(&f.debug, "debug", config.EnvOrDefault("DEBUG", false), "Log diagnostics to stderr (env: DEBUG)")

	return rootCmd
}

func Execute() error {
	return newRootCmd().Execute()
}
