package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	depseudonymizeFile    string
	depseudonymizeSession string
)

var depseudonymizeCmd = &cobra.Command{
	Use:   "depseudonymize",
	Short: "Reverse tokens in a document back to their real values",
	Long: `Reads tokenised text (--file, or stdin if omitted) and --session, and
prints the original text with every resolvable token substituted back.
Tokens the session cache no longer holds a binding for are left as-is
and reported.`,
	RunE: runDepseudonymize,
}

func init() {
	rootCmd.AddCommand(depseudonymizeCmd)
	depseudonymizeCmd.Flags().StringVarP(&depseudonymizeFile, "file", "f", "", "input file (default: stdin)")
	depseudonymizeCmd.Flags().StringVarP(&depseudonymizeSession, "session", "s", "", "session id (required)")
	_ = depseudonymizeCmd.MarkFlagRequired("session")
}

func runDepseudonymize(cmd *cobra.Command, args []string) error {
	text, err := readInput(depseudonymizeFile)
	if err != nil {
		return err
	}

	engine, cleanup, err := buildEngine()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer cleanup()

	original, stats, err := engine.Depseudonymize(context.Background(), text, depseudonymizeSession)
	if err != nil {
		return fmt.Errorf("depseudonymize: %w", err)
	}

	return json.NewEncoder(os.Stdout).Encode(map[string]any{
		"original_text": original,
		"stats":         stats,
	})
}
