package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/godilite/commhealth/internal/app"
	"github.com/godilite/commhealth/internal/config"
)

// NewMigrateCmd creates the response schema without starting the server.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), config.LoadFromEnv())
		},
	}
}

func runMigrations(ctx context.Context, cfg *config.Config) error {
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	db, _, err := app.OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("schema applied", zap.String("driver", cfg.DBDriver))
	return nil
}
