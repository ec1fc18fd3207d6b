package pg

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

// Postgres error codes skipped by ApplyDDL.
const (
	codeDuplicateObject = "42710"
	codeDuplicateTable  = "42P07"
)

// ApplyDDL executes the statement groups of GenerateDDL in key order. The DDL is expected to be
// idempotent; objects that already exist are skipped.
func ApplyDDL(ctx context.Context, db *sql.DB, ddl map[string]string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.L()
	}
	keys := make([]string, 0, len(ddl))
	for k := range ddl {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, stmt := range statements(ddl[k]) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && (pgErr.Code == codeDuplicateObject || pgErr.Code == codeDuplicateTable) {
					logger.Info("DDL skipped, object already exists",
						zap.String("group", k),
						zap.String("constraint", pgErr.ConstraintName),
						zap.String("message", strings.TrimSpace(pgErr.Message)),
					)
					continue
				}
				return pkgerrors.Wrapf(err, "apply DDL group %s", k)
			}
			logger.Debug("DDL applied", zap.String("group", k), zap.String("sql", stmt))
		}
	}
	return nil
}

// statements splits a group into single statements so one already existing object does not
// hide the rest of its group. Generated DDL never carries ';' inside literals it splits on.
func statements(group string) []string {
	var out []string
	for _, s := range strings.Split(group, ";\n") {
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ";"))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
