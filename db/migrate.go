package db

import (
	"context"
	"database/sql"
	"io/fs"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Migrate applies every `.up.sql` file in the migrations filesystem that hasn't been
// applied yet, in lexical order. Applied versions are tracked in the schema_migrations
// table so that restarting the service is safe.
func Migrate(ctx context.Context, db *sql.DB, migrations fs.FS) error {
	wrapMsg := "unable to apply database migrations"

	// Create the migration tracking table.
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		)
	`)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Find the migration files.
	var paths []string
	err = fs.WalkDir(migrations, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".up.sql") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	sort.Strings(paths)

	// Apply each migration that hasn't been applied yet.
	for _, path := range paths {
		err = applyMigration(ctx, db, migrations, path)
		if err != nil {
			return errors.Wrapf(err, "%s: %s", wrapMsg, path)
		}
	}

	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, migrations fs.FS, path string) error {

	// Skip the migration if it has been applied already.
	var applied bool
	err := db.QueryRowContext(
		ctx, "SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", path,
	).Scan(&applied)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	statements, err := fs.ReadFile(migrations, path)
	if err != nil {
		return err
	}

	// Apply the migration and record it in the same transaction.
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, string(statements))
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", path)
	if err != nil {
		return err
	}

	return tx.Commit()
}
