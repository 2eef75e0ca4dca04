// Package main provides the entry point for the job recommender HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "recommender",
	Short: "Job Recommender HTTP API Server",
	Long:  "Job Recommender generates deterministic, explainable job recommendations for sponsorship-seeking candidates via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
