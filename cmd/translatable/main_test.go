package main

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-translatable/pkg/testsupport"
)

func seedDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE products (id INTEGER PRIMARY KEY, title TEXT, body JSON)`,
		`INSERT INTO products (id, title, body) VALUES (1, '{"en":"Sample EN","de":"Sample DE"}', '{"en":"Body EN"}')`,
		`INSERT INTO products (id, title, body) VALUES (2, '{"en":"Other EN"}', '{"en":"Body plus","fr":"Corps"}')`,
		`INSERT INTO products (id, title, body) VALUES (3, '["broken"]', NULL)`,
	}
	if err := testsupport.ExecFixtures(context.Background(), db, stmts...); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

func baseArgs(dsn, column string) []string {
	return []string{"-env-file", "", "-driver", "sqlite", "-dsn", dsn, "-table", "products", "-column", column}
}

func TestInspectReportsStorageAndAccessors(t *testing.T) {
	dsn := seedDatabase(t)

	out, err := runCLI(t, append([]string{"inspect"}, baseArgs(dsn, "body")...)...)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(out, "products.body storage=json domain=locale fallback=de") {
		t.Fatalf("unexpected inspect output:\n%s", out)
	}
	if !strings.Contains(out, "body_en -> en") {
		t.Fatalf("expected body_en accessor:\n%s", out)
	}

	out, err = runCLI(t, append([]string{"inspect", "-channel"}, baseArgs(dsn, "title")...)...)
	if err != nil {
		t.Fatalf("inspect channel: %v", err)
	}
	if !strings.Contains(out, "storage=text domain=channel fallback=vev") || !strings.Contains(out, "title_ebay -> ebay") {
		t.Fatalf("unexpected channel output:\n%s", out)
	}

	if _, err := runCLI(t, append([]string{"inspect"}, baseArgs(dsn, "subtitle")...)...); err == nil {
		t.Fatalf("expected missing column to fail")
	}
}

func TestCheckReportsInvalidDocuments(t *testing.T) {
	dsn := seedDatabase(t)

	out, err := runCLI(t, append([]string{"check"}, baseArgs(dsn, "title")...)...)
	if err == nil {
		t.Fatalf("expected invalid documents error")
	}
	if !strings.Contains(out, "checked 3 rows, 1 invalid") {
		t.Fatalf("unexpected check output:\n%s", out)
	}
	if !strings.HasPrefix(out, "3 ") {
		t.Fatalf("expected row 3 reported first:\n%s", out)
	}

	out, err = runCLI(t, append([]string{"check"}, baseArgs(dsn, "body")...)...)
	if err != nil {
		t.Fatalf("check body: %v\n%s", err, out)
	}

	out, err = runCLI(t, append([]string{"check", "-strict"}, baseArgs(dsn, "body")...)...)
	if err == nil {
		t.Fatalf("expected fr to be rejected in strict mode:\n%s", out)
	}
}

func TestFilterModes(t *testing.T) {
	dsn := seedDatabase(t)

	cases := []struct {
		name   string
		column string
		flags  []string
		want   string
	}{
		{"text exact", "title", []string{"-mode", "exact", "-value", "Sample EN", "-key", "en"}, "1"},
		{"text exact other key", "title", []string{"-mode", "exact", "-value", "Sample DE", "-key", "en"}, ""},
		{"text value", "title", []string{"-value", "Other EN"}, "2"},
		{"text substring", "title", []string{"-mode", "substring", "-value", "EN"}, "1,2"},
		{"json value", "body", []string{"-value", "Corps"}, "2"},
		{"json exact default key", "body", []string{"-mode", "exact", "-value", "Body EN"}, "1"},
		{"forced text on json", "body", []string{"-storage", "text", "-mode", "substring", "-value", "plus"}, "2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"filter"}, baseArgs(dsn, tc.column)...)
			args = append(args, tc.flags...)
			out, err := runCLI(t, args...)
			if err != nil {
				t.Fatalf("filter: %v", err)
			}
			got := strings.Join(strings.Fields(out), ",")
			if got != tc.want {
				t.Fatalf("expected [%s], got [%s]", tc.want, got)
			}
		})
	}

	if _, err := runCLI(t, append(append([]string{"filter"}, baseArgs(dsn, "title")...), "-mode", "fuzzy")...); err == nil {
		t.Fatalf("expected unknown mode to fail")
	}
}

func TestRunRequiresCommand(t *testing.T) {
	if _, err := runCLI(t); err == nil {
		t.Fatalf("expected missing command error")
	}
	if _, err := runCLI(t, "sync"); err == nil {
		t.Fatalf("expected unknown command error")
	}
}
