// Package main provides the entry point for the recipe-share HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "recipeshare",
	Short: "Recipe Share HTTP API Server",
	Long:  "Recipe Share rewrites imported recipes into original wording and shares them through private, single-use links via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
