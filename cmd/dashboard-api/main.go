// Package main provides the dashboard-api command: the HTTP server and note maintenance tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// @title Intern Dashboard API
// @version 1.0.0
// @description Intern performance dashboard backend
// @BasePath /api/v1
// @schemes http

var rootCmd = &cobra.Command{
	Use:           "dashboard-api",
	Short:         "Intern performance dashboard backend",
	Long:          "dashboard-api serves filtered intern performance views, aggregates, notes and exports over HTTP, and maintains the note files from the command line.",
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
