package testsupport

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteMemoryDB opens a named in-memory sqlite database. Connections
// sharing a name share the database, so tests pass a unique name (t.Name()).
func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	name = strings.NewReplacer("/", "_", " ", "_", "?", "_", "#", "_").Replace(strings.TrimSpace(name))
	if name == "" {
		name = "translatable"
	}
	return sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", name))
}
