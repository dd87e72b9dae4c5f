package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/beacon-tools/beacon/internal/cli/config"
	"github.com/beacon-tools/beacon/internal/generator"
	"github.com/beacon-tools/beacon/internal/generator/diag"
)

var (
	generateJSON    bool
	generateVerbose bool
	generateDryRun  bool
)

func init() {
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Output diagnostics in JSON format")
	generateCmd.Flags().BoolVar(&generateVerbose, "verbose", false, "Show detailed generation output")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Synthesize without writing files")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Synthesize accessors for annotated fields",
	Long:  "Scan the configured packages for beacon markers and write one accessor file per annotated type",
	RunE: func(cmd *cobra.Command, args []string) error {
		startTime := time.Now()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		pipeline, err := newPipeline(cfg, generateDryRun, generateVerbose)
		if err != nil {
			return err
		}

		report, err := pipeline.Run(context.Background())
		if err != nil {
			return err
		}

		if generateJSON {
			return printJSONReport(report)
		}
		printReport(report, generateVerbose, time.Since(startTime))

		if report.HasErrors() {
			os.Exit(1)
		}
		return nil
	},
}

// newPipeline builds a pipeline from loaded configuration.
func newPipeline(cfg *config.Config, dryRun, verbose bool) (*generator.Pipeline, error) {
	log := zap.NewNop()
	if verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		log = dev
	}

	cacheDir := ""
	if cfg.Cache.Enabled {
		cacheDir = cfg.Cache.Dir
	}

	return generator.New(generator.Options{
		Patterns:     cfg.Source.Packages,
		Excludes:     cfg.Source.Excludes,
		Syntax:       cfg.SyntaxVersion(),
		EmitChanging: cfg.Generate.Changing,
		CacheDir:     cacheDir,
		Fingerprint:  cfg.Fingerprint(Version),
		DryRun:       dryRun,
		Log:          log,
	})
}

func printReport(report *generator.Report, verbose bool, elapsed time.Duration) {
	diag.Print(os.Stderr, report.Diagnostics)
	for _, e := range report.PackageErrors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}

	written := 0
	for _, f := range report.Files {
		if f.Written {
			written++
		}
		if verbose {
			status := "unchanged"
			switch {
			case f.Written:
				status = "written"
			case f.Cached:
				status = "cached"
			}
			fmt.Printf("  %s (%s)\n", f.Path, status)
		}
	}

	fmt.Printf("Generated %d file(s), %d written, in %s\n",
		len(report.Files), written, elapsed.Round(time.Millisecond))
	if report.Metrics != nil && verbose {
		fmt.Printf("Cache: %d hit(s), %d miss(es) (%.0f%% hit rate)\n",
			report.Metrics.CacheHits, report.Metrics.CacheMisses, report.Metrics.HitRate())
	}
}

func printJSONReport(report *generator.Report) error {
	out := struct {
		Files       []generator.FileOutput `json:"files"`
		Diagnostics []diag.Diagnostic      `json:"diagnostics"`
		Errors      []string               `json:"errors,omitempty"`
	}{
		Files:       report.Files,
		Diagnostics: report.Diagnostics,
		Errors:      report.PackageErrors,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	if report.HasErrors() {
		os.Exit(1)
	}
	return nil
}
