package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rca-agent",
	Short: "RCA Agent - retrieval-augmented incident recommendations",
	Long: `RCA Agent ingests root cause analysis documents from Cloud Storage,
indexes them for similarity search, and serves an HTTP API that recommends
solutions for new incidents based on historical data.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
