// Command directoryctl runs the directory pipeline and the media resolver
// outside the HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "directoryctl",
	Short:         "LaukaaInfo directory tooling",
	Long:          "Build the company directory JSON from the published sheet and resolve Google Drive images without running the API server.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
