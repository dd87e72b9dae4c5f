package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/beacon-tools/beacon/internal/cli/config"
	"github.com/beacon-tools/beacon/internal/watch"
)

var watchVerbose bool

func init() {
	watchCmd.Flags().BoolVar(&watchVerbose, "verbose", false, "Show detailed generation output")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate on source changes",
	Long:  "Run an initial generation pass, then watch the project and regenerate whenever Go source changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		root, err := config.GetProjectRoot()
		if err != nil {
			return err
		}

		pipeline, err := newPipeline(cfg, false, watchVerbose)
		if err != nil {
			return err
		}

		runPass := func() {
			start := time.Now()
			report, err := pipeline.Run(context.Background())
			if err != nil {
				fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
				return
			}
			printReport(report, watchVerbose, time.Since(start))
		}

		runPass()

		watcher, err := watch.NewFileWatcher(root, []string{cfg.Cache.Dir}, nil, func(files []string) error {
			fmt.Printf("Changed: %d file(s), regenerating...\n", len(files))
			runPass()
			return nil
		})
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()

		fmt.Println("Watching for changes. Press Ctrl+C to stop.")
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		fmt.Println("\nStopping.")
		return nil
	},
}
