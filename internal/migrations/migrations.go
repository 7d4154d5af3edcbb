package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"slices"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// FS holds the schema files applied by `shopcart migrate`.
//
//go:embed *.up.sql
var FS embed.FS

type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Apply runs every *.up.sql file in name order. The files are idempotent, so
// Apply can run on every deploy.
func Apply(ctx context.Context, db Execer, logger *zap.Logger) ([]string, error) {
	names, err := fs.Glob(FS, "*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("fs.Glob: %w", err)
	}
	slices.Sort(names)

	for _, name := range names {
		script, err := FS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("FS.ReadFile[%s]: %w", name, err)
		}

		if _, err := db.Exec(ctx, string(script)); err != nil {
			return nil, fmt.Errorf("db.Exec[%s]: %w", name, err)
		}
		logger.Info("migration applied", zap.String("file", name))
	}

	return names, nil
}
