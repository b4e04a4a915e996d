package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/domain/entities"
	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/auth"
)

func newTokenCommand() *cobra.Command {
	var (
		subject string
		role    string
		labID   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			tokens, err := auth.NewTokenManager(jwtSecret(cfg), cfg.Auth.Issuer, cfg.Auth.TokenTTL)
			if err != nil {
				return err
			}

			principal := entities.Principal{ID: subject, Role: entities.Role(role)}
			if labID != "" {
				principal.LabID = &labID
			}

			token, err := tokens.Issue(principal)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "sub", "", "principal id")
	cmd.Flags().StringVar(&role, "role", string(entities.RoleUser), "USER, LAB or ADMIN")
	cmd.Flags().StringVar(&labID, "lab", "", "lab id for LAB principals")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}
