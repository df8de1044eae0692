package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "oniria",
		Short:         "A local dream journal",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the journal (default ~/.oniria)")
	rootCmd.PersistentFlags().String("backend", "", "storage backend: sqlite or blob (default sqlite)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error, disabled (default info)")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(rmCmd())
	rootCmd.AddCommand(randomCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(narrateCmd())
	rootCmd.AddCommand(interpretCmd())
	rootCmd.AddCommand(similarCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
