// Command pseudoctl is a local operator CLI for exercising the
// pseudonymization engine without the HTTP layer — useful for
// incident response (recovering a binding before TTL expiry) and for
// smoke-testing a detector change against a sample document.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pseudoctl",
	Short: "Operator CLI for the pseudonymization engine",
	Long: `pseudoctl drives the same pseudonymization engine the HTTP service
exposes, for local exercising and incident response:

  pseudoctl pseudonymize --file document.txt
  pseudoctl depseudonymize --session sess-123 --file preview.txt
  pseudoctl destroy-session sess-123
  pseudoctl serve`,
}

func main() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
