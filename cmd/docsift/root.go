package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docsift",
	Short: "Persona-driven document collection analysis",
	Long: `docsift ranks the sections of a document collection by how useful
they are to a given persona with a concrete job to be done, and refines the
best ones into short grounded excerpts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Configuration comes from the environment, with an
// optional .env file for local development.
func Execute() {
	godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
