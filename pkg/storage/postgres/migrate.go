package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/riverqueue/river/riverdriver/riverdatabasesql"
	"github.com/riverqueue/river/rivermigrate"
)

// Migrated lists the versions applied by Migrate. Both are empty when the
// database was already up to date.
type Migrated struct {
	Tables []int64
	Queue  []int
}

// Migrate applies the goose migrations found at the root of fsys and then
// brings the River queue schema to its latest version.
func Migrate(ctx context.Context, db *sql.DB, fsys fs.FS) (Migrated, error) {
	var out Migrated

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return out, fmt.Errorf("could not create goose provider: %w", err)
	}
	applied, err := provider.Up(ctx)
	if err != nil {
		return out, fmt.Errorf("could not migrate tables: %w", err)
	}
	for _, r := range applied {
		out.Tables = append(out.Tables, r.Source.Version)
	}

	migrator, err := rivermigrate.New(riverdatabasesql.New(db), nil)
	if err != nil {
		return out, fmt.Errorf("could not create river migrator: %w", err)
	}
	// nil options migrate all the way up
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return out, fmt.Errorf("could not migrate river queue: %w", err)
	}
	for _, v := range res.Versions {
		out.Queue = append(out.Queue, v.Version)
	}

	return out, nil
}
