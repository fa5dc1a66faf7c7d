// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/tomtom215/videoparty/internal/config"
	"github.com/tomtom215/videoparty/internal/database"
	"github.com/tomtom215/videoparty/internal/logging"
)

// loadConfig is replaced in tests.
var loadConfig = config.LoadUnvalidated

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations to the configured database",
		Long: "Connects with the server's configuration (config.yaml and environment, " +
			"e.g. DATABASE_DRIVER, DUCKDB_PATH, DATABASE_URL) and applies pending migrations.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			db, err := database.Open(&cfg.Database)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := db.Close(); cerr != nil {
					logging.Warn().Err(cerr).Msg("Error closing database")
				}
			}()

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			applied, err := db.Migrate(ctx)
			if err != nil {
				return err
			}
			version, err := db.GetCurrentSchemaVersion(ctx)
			if err != nil {
				return err
			}

			if lo.Must(cmd.Flags().GetBool("quiet")) {
				return nil
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s), schema version %d (%s)\n",
				applied, version, cfg.Database.Driver)
			return err
		},
	}
	cmd.Flags().BoolP("quiet", "q", false, "Print nothing on success")
	return cmd
}
