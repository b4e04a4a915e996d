package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/adapters/database"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/adapters/search"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/repositories"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/clients/postgres"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/clients/typesense"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/observability"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/pkg/config"
)

type seedTest struct {
	name        string
	description string
	category    string
	price       int64
	duration    int
	testType    entities.TestType
}

type seedLab struct {
	name, address, city, state, pincode, phone, email string
	lat, lon                                          float64
}

var catalog = []seedTest{
	{"Complete Blood Count (CBC)", "A comprehensive blood test that evaluates your overall health and detects a variety of disorders.", "Blood Test", 299, 1, entities.TestTypeHome},
	{"Lipid Profile", "Measures cholesterol levels including HDL, LDL, and triglycerides.", "Blood Test", 399, 1, entities.TestTypeClinic},
	{"Blood Sugar (Fasting)", "Measures glucose levels after fasting for 8 hours.", "Diabetes Test", 149, 1, entities.TestTypeHome},
	{"HbA1c (Glycated Hemoglobin)", "Measures average blood sugar levels over the past 2-3 months.", "Diabetes Test", 499, 2, entities.TestTypeClinic},
	{"Thyroid Profile (T3, T4, TSH)", "Comprehensive thyroid function test to check hormone levels.", "Hormone Test", 599, 2, entities.TestTypeClinic},
	{"Vitamin D (25-Hydroxy)", "Measures the amount of vitamin D in your blood.", "Vitamin Test", 899, 2, entities.TestTypeClinic},
	{"Liver Function Test (LFT)", "Panel of tests to assess liver health and function.", "Liver Test", 449, 1, entities.TestTypeClinic},
	{"Kidney Function Test (KFT)", "Evaluates kidney health by measuring various substances in the blood.", "Kidney Test", 399, 1, entities.TestTypeClinic},
}

var labs = []seedLab{
	{"City Diagnostics Center", "123 Main Street, Sector 15", "Mumbai", "Maharashtra", "400070", "+91-22-1234-5678", "mumbai@citydiagnostics.com", 19.0760, 72.8777},
	{"Metro Health Labs", "456 Park Avenue, Koramangala", "Bangalore", "Karnataka", "560095", "+91-80-2345-6789", "bangalore@metrohealth.com", 12.9352, 77.6245},
	{"Prime Medical Laboratory", "789 MG Road, Connaught Place", "New Delhi", "Delhi", "110001", "+91-11-3456-7890", "delhi@primemedical.com", 28.6139, 77.2090},
	{"Wellness Diagnostic Hub", "321 Whitefield Main Road", "Bangalore", "Karnataka", "560066", "+91-80-4567-8901", "whitefield@wellnesshub.com", 12.9698, 77.7499},
	{"Alpha Health Diagnostics", "654 Andheri West, Link Road", "Mumbai", "Maharashtra", "400053", "+91-22-5678-9012", "andheri@alphahealth.com", 19.1334, 72.8267},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("seed", cfg.Server.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	ctx := context.Background()

	if err := database.Migrate(ctx, pgClient); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				booking_items,
				bookings,
				lab_tests,
				tests,
				labs
			CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to reset tables")
		}
	}

	var index repositories.TestSearchIndex
	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, skipping indexing")
		} else if err := tsClient.InitSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to init Typesense schema, skipping indexing")
		} else {
			index = search.NewTypesenseAdapter(tsClient)
		}
	}

	testRepo := database.NewTestAdapter(pgClient)
	labRepo := database.NewLabAdapter(pgClient)
	labTestRepo := database.NewLabTestAdapter(pgClient)
	now := time.Now()

	// 1. Generic tests, offered through lab links
	tests := make([]*entities.Test, 0, len(catalog))
	for _, s := range catalog {
		description := s.description
		duration := s.duration
		test := &entities.Test{
			ID:          uuid.New().String(),
			Name:        s.name,
			Description: &description,
			Category:    s.category,
			Price:       decimal.NewFromInt(s.price),
			Duration:    &duration,
			TestType:    s.testType,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := testRepo.Create(ctx, test); err != nil {
			log.Error().Err(err).Str("test", s.name).Msg("Failed to create test")
			continue
		}
		if index != nil {
			if err := index.Index(ctx, test, nil); err != nil {
				log.Warn().Err(err).Str("test", s.name).Msg("Failed to index test")
			}
		}
		tests = append(tests, test)
	}
	log.Info().Int("count", len(tests)).Msg("Created tests")

	// 2. Labs, verified so they are discoverable either way
	links := 0
	for _, s := range labs {
		email, lat, lon := s.email, s.lat, s.lon
		lab := &entities.Lab{
			ID:         uuid.New().String(),
			Name:       s.name,
			Address:    s.address,
			City:       s.city,
			State:      s.state,
			Pincode:    s.pincode,
			Phone:      s.phone,
			Email:      &email,
			Latitude:   &lat,
			Longitude:  &lon,
			IsActive:   true,
			IsVerified: true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := labRepo.Create(ctx, lab); err != nil {
			log.Error().Err(err).Str("lab", s.name).Msg("Failed to create lab")
			continue
		}

		// 3. Every lab offers every generic test at the catalog price
		for _, test := range tests {
			link := &entities.LabTest{
				ID:          uuid.New().String(),
				LabID:       lab.ID,
				TestID:      test.ID,
				IsAvailable: true,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := labTestRepo.Upsert(ctx, link); err != nil {
				log.Error().Err(err).Str("lab", s.name).Str("test", test.Name).Msg("Failed to link test")
				continue
			}
			links++
		}
	}

	log.Info().Int("labs", len(labs)).Int("links", links).Msg("Seeding completed")
}
