package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("RCA Agent %s\n", AppVersion)
			fmt.Printf("Build Time: %s\n", BuildTime)
			fmt.Printf("Git Commit: %s\n", GitCommit)

			if os.Getenv("GEMINI_API_KEY") == "" {
				fmt.Println()
				fmt.Println("Hint: GEMINI_API_KEY is not set")
				fmt.Println("  export GEMINI_API_KEY=your-api-key")
			}
		},
	}
}
