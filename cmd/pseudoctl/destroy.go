package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var destroySessionCmd = &cobra.Command{
	Use:   "destroy-session [SESSION_ID]",
	Short: "Atomically tear down every binding under a session",
	Long: `Removes every forward and reverse binding belonging to a session.
Future depseudonymize calls against that session id will leave its
tokens unresolved.`,
	Args: cobra.ExactArgs(1),
	RunE: runDestroySession,
}

func init() {
	rootCmd.AddCommand(destroySessionCmd)
}

func runDestroySession(cmd *cobra.Command, args []string) error {
	sessionID := args[0]

	engine, cleanup, err := buildEngine()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer cleanup()

	if err := engine.Destroy(context.Background(), sessionID); err != nil {
		return fmt.Errorf("destroy session %s: %w", sessionID, err)
	}

	fmt.Printf("session %s destroyed\n", sessionID)
	return nil
}
