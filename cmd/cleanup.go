package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/calmcp/internal/config"
	"github.com/teemow/calmcp/internal/logging"
	"github.com/teemow/calmcp/internal/store"
)

func newCleanupCmd() *cobra.Command {
	var debugMode bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired credential records that cannot be refreshed",
		Long: `Delete stored OAuth credential records whose access token has expired
and that carry no refresh token. Records with a refresh token are kept
regardless of expiry, since they can still be renewed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("missing required environment variable: DATABASE_URL")
			}

			logger := logging.NewStderrLogger(debugMode)

			db, err := store.Open(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to open credential store: %w", err)
			}

			tokenStore := store.NewTokenStore(db, logger, cfg.TokenDefaultTTL)
			removed := tokenStore.CleanupExpiredTokens(context.Background())
			fmt.Printf("Removed %d expired credential record(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	return cmd
}
