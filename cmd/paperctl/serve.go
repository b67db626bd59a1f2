package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/Scholara/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		a, err := app.NewApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		errCh := make(chan error, 1)
		go func() { errCh <- a.Server.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.Server.Shutdown(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
