package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/adapters/database"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/clients/postgres"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			pgClient, err := postgres.NewClient(&cfg.Database)
			if err != nil {
				log.Error().Err(err).Msg("Failed to initialize PostgreSQL client")
				return err
			}
			defer pgClient.Close()

			if err := database.Migrate(cmd.Context(), pgClient); err != nil {
				log.Error().Err(err).Msg("Migration failed")
				return err
			}
			log.Info().Msg("Database schema is up to date")
			return nil
		},
	}
}
