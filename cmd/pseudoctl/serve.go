package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zerausir/pseudo-pas/internal/config"
	"github.com/Zerausir/pseudo-pas/internal/consent"
	"github.com/Zerausir/pseudo-pas/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the engine's HTTP server in the foreground",
	Long: `Equivalent to running the pseudoserver binary directly — useful when an
operator already has pseudoctl on PATH and wants the HTTP surface
without a second binary.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	engine, cleanup, err := buildEngine()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer cleanup()

	server := httpapi.New(httpapi.Options{
		Engine:          engine,
		Gate:            consent.New(),
		ManagementToken: cfg.ManagementToken,
	})

	addr := fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	fmt.Printf("pseudoctl serve: listening on %s\n", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
