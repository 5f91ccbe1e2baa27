package testsupport

import (
	"context"
	"database/sql"
	"fmt"
)

// ExecFixtures runs each statement in order, stopping at the first failure.
func ExecFixtures(ctx context.Context, db *sql.DB, stmts ...string) error {
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("fixture %d: %w", i, err)
		}
	}
	return nil
}
