package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	pseudonymizeFile    string
	pseudonymizeSession string
)

var pseudonymizeCmd = &cobra.Command{
	Use:   "pseudonymize",
	Short: "Tokenise a document and print the preview mapping",
	Long: `Reads a document (--file, or stdin if omitted), runs it through the
detection pipeline, and prints the tokenised text, the session id, and
the preview mapping as JSON.`,
	RunE: runPseudonymize,
}

func init() {
	rootCmd.AddCommand(pseudonymizeCmd)
	pseudonymizeCmd.Flags().StringVarP(&pseudonymizeFile, "file", "f", "", "input file (default: stdin)")
	pseudonymizeCmd.Flags().StringVarP(&pseudonymizeSession, "session", "s", "", "session id to reuse (default: a new session is minted)")
}

func runPseudonymize(cmd *cobra.Command, args []string) error {
	text, err := readInput(pseudonymizeFile)
	if err != nil {
		return err
	}

	engine, cleanup, err := buildEngine()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer cleanup()

	result, err := engine.Pseudonymize(context.Background(), text, pseudonymizeSession)
	if err != nil {
		return fmt.Errorf("pseudonymize: %w", err)
	}

	return json.NewEncoder(os.Stdout).Encode(map[string]any{
		"pseudonymized_text": result.TokenisedText,
		"session_id":         result.SessionID,
		"mapping":            result.Mapping,
		"stats":              result.Stats,
	})
}

func readInput(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // G703: operator-supplied CLI path, not web input
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
