package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	configPath   string
	storageFlag  string
	logLevelFlag string
	ephemeral    bool
)

var rootCmd = &cobra.Command{
	Use:   "search-launcher",
	Short: "Manage job-search profiles and open their searches",
	Long: "search-launcher keeps named keyword profiles and opens the matching job search, " +
		"either from the command line or through the local API used by the browser extension.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: list profiles
		return listCmd.RunE(cmd, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("search-launcher %s\n", version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default ~/.search-launcher/config.yaml)")
	pf.StringVar(&storageFlag, "storage", "", "storage backend: file, memory, keyring or postgres")
	pf.StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVar(&ephemeral, "ephemeral", false, "keep profiles in memory only")
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json or yaml")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(urlCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
