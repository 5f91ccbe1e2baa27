package schema_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-translatable/internal/schema"
	"github.com/goliatone/go-translatable/pkg/testsupport"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestStaticInspector(t *testing.T) {
	insp := schema.NewStatic().Add("products", "title", "jsonb")

	col, err := insp.Column(context.Background(), "Products", " TITLE ")
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if !col.Exists || col.Type != "jsonb" {
		t.Fatalf("unexpected column %+v", col)
	}

	missing, err := insp.Column(context.Background(), "products", "body")
	if err != nil {
		t.Fatalf("Column missing: %v", err)
	}
	if missing.Exists {
		t.Fatalf("expected missing column to report Exists=false")
	}
}

type countingInspector struct {
	calls int
}

func (c *countingInspector) Column(_ context.Context, table, column string) (schema.Column, error) {
	c.calls++
	return schema.Column{Table: table, Name: column, Type: "text", Exists: true}, nil
}

func TestCachedInspectorQueriesOnce(t *testing.T) {
	inner := &countingInspector{}
	cached := schema.NewCached(inner)

	for i := 0; i < 3; i++ {
		if _, err := cached.Column(context.Background(), "products", "title"); err != nil {
			t.Fatalf("Column: %v", err)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected a single upstream lookup, got %d", inner.calls)
	}
}

func TestBunInspectorSQLite(t *testing.T) {
	ctx := context.Background()

	sqlDB, err := testsupport.NewSQLiteMemoryDB(t.Name())
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `CREATE TABLE products (id TEXT PRIMARY KEY, title JSONB, title_text VARCHAR DEFAULT '{}')`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	insp := schema.NewBunInspector(db)

	title, err := insp.Column(ctx, "products", "title")
	if err != nil {
		t.Fatalf("inspect title: %v", err)
	}
	if !title.Exists || title.Type != "JSONB" {
		t.Fatalf("unexpected title column %+v", title)
	}

	text, err := insp.Column(ctx, "products", "title_text")
	if err != nil {
		t.Fatalf("inspect title_text: %v", err)
	}
	if !text.Exists || text.Type != "VARCHAR" {
		t.Fatalf("unexpected title_text column %+v", text)
	}

	missing, err := insp.Column(ctx, "products", "nope")
	if err != nil {
		t.Fatalf("inspect missing: %v", err)
	}
	if missing.Exists {
		t.Fatalf("expected missing column, got %+v", missing)
	}
}
