// Package cli wires the cobra command tree. Commands resolve configuration
// from flags, environment variables, and xmlshred.yaml (in that order of
// precedence), then hand off to the services layer.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "xmlshred",
	Short: "XSD-driven XML shredder for PostgreSQL",
	Long: `xmlshred compiles an XML Schema into a relational table set, then shreds
XML documents into those tables. Repetition becomes child tables with
foreign keys and a RepeatIndex; nested singletons flatten into prefixed
columns; every document loads in its own transaction.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  12 - Schema error (schema not found, root element missing, apply failed)
  13 - One or more documents failed to load`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for xmlshred")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
