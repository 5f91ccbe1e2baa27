package records_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/goliatone/go-translatable/internal/records"
	"github.com/goliatone/go-translatable/internal/values"
	"github.com/goliatone/go-translatable/pkg/testsupport"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type product struct {
	bun.BaseModel `bun:"table:products"`

	ID        int64             `bun:"id,pk,autoincrement"`
	Title     values.Values     `bun:"title,type:jsonb"`
	TitleText string            `bun:"title_text"`
	Notes     *string           `bun:"notes"`
	Labels    map[string]string `bun:"labels,type:json"`
}

type draft struct {
	bun.BaseModel `bun:"table:drafts"`

	ID    int64  `bun:"id,pk"`
	Title string `bun:"title"`
	saved bool
}

func (d *draft) IsNewRecord() bool { return !d.saved }

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqlDB, err := testsupport.NewSQLiteMemoryDB(t.Name())
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return bun.NewDB(sqlDB, sqlitedialect.New())
}

func TestTableMetadata(t *testing.T) {
	table, err := records.TableOf(newTestDB(t), (*product)(nil))
	if err != nil {
		t.Fatalf("TableOf: %v", err)
	}
	if table.Name() != "products" {
		t.Fatalf("expected table products, got %q", table.Name())
	}
	field, ok := table.Field("title")
	if !ok {
		t.Fatalf("expected title field")
	}
	if field.SQLType != "jsonb" {
		t.Fatalf("expected declared sql type, got %q", field.SQLType)
	}
	if field.Type != reflect.TypeOf(values.Values{}) {
		t.Fatalf("unexpected field type %v", field.Type)
	}
	if !field.JSONTagged() {
		t.Fatalf("expected title to be json tagged")
	}
	if text, _ := table.Field("title_text"); text.JSONTagged() || text.TaggedSQLType != "" {
		t.Fatalf("expected untagged title_text, got %+v", text)
	}
	if _, ok := table.Field("missing"); ok {
		t.Fatalf("expected missing field lookup to fail")
	}
	if pks := table.PrimaryKeys(); len(pks) != 1 || pks[0] != "id" {
		t.Fatalf("unexpected primary keys %v", pks)
	}
}

func TestTableGetSet(t *testing.T) {
	table, err := records.TableOf(newTestDB(t), product{})
	if err != nil {
		t.Fatalf("TableOf: %v", err)
	}
	rec := &product{}

	if err := table.Set(rec, "title", values.FromPairs("en", "Hello")); err != nil {
		t.Fatalf("Set title: %v", err)
	}
	if value, _ := rec.Title.Get("en"); value != "Hello" {
		t.Fatalf("expected title to be assigned, got %v", rec.Title.Map())
	}

	if err := table.Set(rec, "title_text", values.FromPairs("de", "Hallo")); err != nil {
		t.Fatalf("Set title_text: %v", err)
	}
	if rec.TitleText != `{"de":"Hallo"}` {
		t.Fatalf("expected encoded text, got %q", rec.TitleText)
	}

	if err := table.Set(rec, "notes", `{"en":"n"}`); err != nil {
		t.Fatalf("Set notes: %v", err)
	}
	if rec.Notes == nil || *rec.Notes != `{"en":"n"}` {
		t.Fatalf("expected pointer field to be set")
	}

	if err := table.Set(rec, "labels", `{"vev":"v"}`); err != nil {
		t.Fatalf("Set labels: %v", err)
	}
	if rec.Labels["vev"] != "v" {
		t.Fatalf("expected map field to be set, got %v", rec.Labels)
	}

	raw, err := table.Get(rec, "title_text")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if raw != `{"de":"Hallo"}` {
		t.Fatalf("unexpected raw value %#v", raw)
	}

	if err := table.Set(*rec, "title", nil); !errors.Is(err, records.ErrNotAddressable) {
		t.Fatalf("expected ErrNotAddressable, got %v", err)
	}
	if _, err := table.Get(rec, "nope"); !errors.Is(err, records.ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestTableIsNew(t *testing.T) {
	db := newTestDB(t)

	products, err := records.TableOf(db, (*product)(nil))
	if err != nil {
		t.Fatalf("TableOf: %v", err)
	}
	if !products.IsNew(&product{}) {
		t.Fatalf("zero primary key must be new")
	}
	if products.IsNew(&product{ID: 7}) {
		t.Fatalf("non-zero primary key must be persisted")
	}

	drafts, err := records.TableOf(db, (*draft)(nil))
	if err != nil {
		t.Fatalf("TableOf: %v", err)
	}
	if !drafts.IsNew(&draft{ID: 3}) {
		t.Fatalf("IsNewRecord must take precedence over primary keys")
	}
	if drafts.IsNew(&draft{saved: true}) {
		t.Fatalf("IsNewRecord=false must report persisted")
	}
}

func TestMapColumns(t *testing.T) {
	var cols records.Columns = records.MapColumns{}
	rec := &records.MapRecord{}

	if !cols.IsNew(rec) {
		t.Fatalf("expected new map record")
	}
	if err := cols.Set(rec, "title", "x"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := cols.Get(rec, "title")
	if err != nil || got != "x" {
		t.Fatalf("Get = (%v, %v)", got, err)
	}
	if _, err := cols.Get(struct{}{}, "title"); err == nil {
		t.Fatalf("expected error for foreign record type")
	}
}

func TestEncodesAsJSONString(t *testing.T) {
	notes := ""
	cases := []struct {
		name string
		typ  reflect.Type
		want bool
	}{
		{"string", reflect.TypeOf(""), true},
		{"string pointer", reflect.TypeOf(&notes), true},
		{"bytes", reflect.TypeOf([]byte(nil)), true},
		{"raw message", reflect.TypeOf(json.RawMessage(nil)), false},
		{"values", reflect.TypeOf(values.Values{}), false},
		{"string map", reflect.TypeOf(map[string]string(nil)), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := records.EncodesAsJSONString(tc.typ); got != tc.want {
				t.Fatalf("EncodesAsJSONString(%s) = %v, want %v", tc.typ, got, tc.want)
			}
		})
	}
}
