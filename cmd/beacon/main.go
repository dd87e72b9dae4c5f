package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "beacon",
		Short: "Observable property generator for Go",
		Long: `Beacon synthesizes change-notifying accessors for annotated struct fields.
Mark a field with //beacon:property (or a beacon struct tag), run beacon
generate, and get getters and setters that raise property notifications,
validate values, and broadcast changes.`,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
