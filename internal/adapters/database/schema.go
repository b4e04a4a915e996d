package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/gauravkrj/MedicalLab-OnlineBooking/internal/infrastructure/clients/postgres"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema files in lexical order. Every
// statement is idempotent so Migrate is safe to run on each deploy.
func Migrate(ctx context.Context, client *postgres.Client) error {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		body, err := migrations.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		if _, err := client.DB().ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", file, err)
		}
		log.Info().Str("file", file).Msg("Applied migration")
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere in a column
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// anyOf matches col against a list of ids with a single array parameter
func anyOf(col string, ids []string) exp.LiteralExpression {
	return goqu.L("? = ANY(?)", goqu.C(col), pq.Array(ids))
}
