package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/adapters/database"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/adapters/search"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/clients/postgres"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/clients/typesense"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/observability"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/config"
)

const pageSize = 500

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	observability.InitLogger("test-indexer", cfg.Server.Env)

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Err(err).Str("interval", intervalValue).Msg("Invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Msg("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, reset); err != nil {
			log.Error().Err(err).Msg("Reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("next_run_in", interval).Msg("Reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, reset bool) error {
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	testRepo := database.NewTestAdapter(pgClient)
	labRepo := database.NewLabAdapter(pgClient)

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Info().Str("collection", typesense.TestsCollection).Msg("Deleting collection before reindex")
		if err := tsClient.DropTests(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to delete collection")
		}
	}

	if err := tsClient.InitSchema(ctx); err != nil {
		return err
	}

	index := search.NewTypesenseAdapter(tsClient)
	labNames := map[string]*string{}
	indexed, failed := 0, 0

	for offset := 0; ; offset += pageSize {
		tests, err := testRepo.List(ctx, repositories.TestFilter{
			OrderBy: repositories.TestOrderByName,
			Limit:   pageSize,
			Offset:  offset,
		})
		if err != nil {
			return err
		}

		if err := resolveLabNames(ctx, labRepo, tests, labNames); err != nil {
			log.Warn().Err(err).Msg("Failed to resolve lab names")
		}

		for _, test := range tests {
			var labName *string
			if test.LabID != nil {
				labName = labNames[*test.LabID]
			}
			if err := index.Index(ctx, test, labName); err != nil {
				failed++
				log.Warn().Err(err).Str("test_id", test.ID).Msg("Failed to index test")
				continue
			}
			indexed++
		}

		if len(tests) < pageSize {
			break
		}
	}

	log.Info().Int("indexed", indexed).Int("failed", failed).Msg("Indexed tests")
	return nil
}

// resolveLabNames fills names for owning labs not seen on earlier pages
func resolveLabNames(ctx context.Context, labRepo repositories.LabRepository, tests []*entities.Test, names map[string]*string) error {
	var missing []string
	for _, test := range tests {
		if test.LabID == nil {
			continue
		}
		if _, ok := names[*test.LabID]; !ok {
			names[*test.LabID] = nil
			missing = append(missing, *test.LabID)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	labs, err := labRepo.GetByIDs(ctx, missing)
	if err != nil {
		return err
	}
	for _, lab := range labs {
		name := lab.Name
		names[lab.ID] = &name
	}
	return nil
}
