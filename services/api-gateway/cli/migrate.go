package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Dhairyashah5122/project-hotelrover/internal/postgres/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Connect to PostgreSQL and apply schema migrations.

Reads the DSN from --postgres-dsn flag, POSTGRES_DSN env var, or config file.
Applied versions are tracked in schema_migrations, so running the command
twice is safe. Pass --down N to roll back the last N migrations.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().Int("down", 0, "roll back this many migrations instead of applying")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	dsn := viper.GetString("postgres_dsn")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	steps, _ := cmd.Flags().GetInt("down")
	var version uint
	if steps > 0 {
		version, err = migrations.Down(pool, steps)
	} else {
		version, err = migrations.Up(pool)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
	return nil
}
