package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// BunInspector reads live column metadata from the connected database.
type BunInspector struct {
	db *bun.DB
}

// NewBunInspector constructs an inspector querying db.
func NewBunInspector(db *bun.DB) *BunInspector {
	return &BunInspector{db: db}
}

// Column implements Inspector. A missing table or column yields
// Column{Exists: false} and no error.
func (i *BunInspector) Column(ctx context.Context, table, column string) (Column, error) {
	col := Column{Table: table, Name: column}
	if i == nil || i.db == nil {
		return col, errors.New("schema: bun inspector requires a database")
	}

	var query string
	switch i.db.Dialect().Name() {
	case dialect.PG:
		query = `SELECT data_type FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = ? AND column_name = ?`
	case dialect.SQLite:
		query = `SELECT type FROM pragma_table_info(?) WHERE name = ?`
	default:
		return col, fmt.Errorf("%w: %s", ErrUnsupportedDialect, i.db.Dialect().Name())
	}

	var types []string
	if err := i.db.NewRaw(query, table, column).Scan(ctx, &types); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return col, nil
		}
		return col, fmt.Errorf("schema: inspect %s.%s: %w", table, column, err)
	}
	if len(types) == 0 {
		return col, nil
	}
	col.Exists = true
	col.Type = types[0]
	return col, nil
}
