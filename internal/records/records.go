package records

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

var (
	// ErrUnknownColumn is returned when a record has no field for a column.
	ErrUnknownColumn = errors.New("records: unknown column")
	// ErrNotAddressable is returned when a value is written to a record that
	// was not passed by pointer.
	ErrNotAddressable = errors.New("records: record must be a non-nil pointer")
)

// Columns reads and writes the raw column values of a record. It is the only
// view the translation engine has of persistence.
type Columns interface {
	Get(record any, column string) (any, error)
	Set(record any, column string, raw any) error
	IsNew(record any) bool
}

// NewRecordReporter lets a model decide whether it has been persisted.
type NewRecordReporter interface {
	IsNewRecord() bool
}

// Field describes the Go field behind a column.
type Field struct {
	Column  string
	GoName  string
	Type    reflect.Type
	SQLType string
	// TaggedSQLType is the type from the bun tag, empty when none was set.
	TaggedSQLType string
}

// JSONTagged reports whether bun encodes the field itself as JSON.
func (f Field) JSONTagged() bool {
	switch strings.ToLower(strings.TrimSpace(f.TaggedSQLType)) {
	case "json", "jsonb":
		return true
	default:
		return false
	}
}

// Table exposes the bun table metadata of a model type.
type Table struct {
	table *schema.Table
}

// TableOf resolves bun metadata for model. model may be a struct value or a
// pointer to one.
func TableOf(db *bun.DB, model any) (*Table, error) {
	if db == nil {
		return nil, errors.New("records: nil bun db")
	}
	typ := reflect.TypeOf(model)
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("records: model must be a struct, got %v", reflect.TypeOf(model))
	}
	return &Table{table: db.Table(typ)}, nil
}

// Name returns the SQL table name.
func (t *Table) Name() string { return t.table.Name }

// ModelName returns the Go type name, used in error messages.
func (t *Table) ModelName() string { return t.table.TypeName }

// Field returns metadata for column.
func (t *Table) Field(column string) (Field, bool) {
	field, ok := t.table.FieldMap[column]
	if !ok {
		return Field{}, false
	}
	sqlType := field.UserSQLType
	if sqlType == "" {
		sqlType = field.DiscoveredSQLType
	}
	return Field{
		Column:  field.Name,
		GoName:  field.GoName,
		Type:          field.StructField.Type,
		SQLType:       sqlType,
		TaggedSQLType: field.UserSQLType,
	}, true
}

// PrimaryKeys lists the primary key columns.
func (t *Table) PrimaryKeys() []string {
	out := make([]string, 0, len(t.table.PKs))
	for _, pk := range t.table.PKs {
		out = append(out, pk.Name)
	}
	return out
}

// Get returns the raw value stored in column.
func (t *Table) Get(record any, column string) (any, error) {
	field, ok := t.table.FieldMap[column]
	if !ok {
		return nil, fmt.Errorf("%w %q on %s", ErrUnknownColumn, column, t.table.TypeName)
	}
	strct, err := structValue(record, false)
	if err != nil {
		return nil, err
	}
	value := strct.FieldByIndex(field.Index)
	if value.Kind() == reflect.Pointer && value.IsNil() {
		return nil, nil
	}
	return value.Interface(), nil
}

// Set stores raw in column, converting it to the field type.
func (t *Table) Set(record any, column string, raw any) error {
	field, ok := t.table.FieldMap[column]
	if !ok {
		return fmt.Errorf("%w %q on %s", ErrUnknownColumn, column, t.table.TypeName)
	}
	strct, err := structValue(record, true)
	if err != nil {
		return err
	}
	dest := strct.FieldByIndex(field.Index)
	converted, err := Convert(raw, dest.Type())
	if err != nil {
		return fmt.Errorf("records: set %s.%s: %w", t.table.TypeName, column, err)
	}
	dest.Set(converted)
	return nil
}

// IsNew reports whether record has not been persisted. Models implementing
// NewRecordReporter decide for themselves; otherwise a record whose primary
// keys are all zero is new.
func (t *Table) IsNew(record any) bool {
	if reporter, ok := record.(NewRecordReporter); ok {
		return reporter.IsNewRecord()
	}
	if len(t.table.PKs) == 0 {
		return false
	}
	strct, err := structValue(record, false)
	if err != nil {
		return true
	}
	for _, pk := range t.table.PKs {
		if !strct.FieldByIndex(pk.Index).IsZero() {
			return false
		}
	}
	return true
}

func structValue(record any, settable bool) (reflect.Value, error) {
	value := reflect.ValueOf(record)
	if settable && (value.Kind() != reflect.Pointer || value.IsNil()) {
		return reflect.Value{}, ErrNotAddressable
	}
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return reflect.Value{}, ErrNotAddressable
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("records: expected struct, got %s", value.Kind())
	}
	return value, nil
}

// MapRecord is an in-memory record keyed by column name, for rows held
// outside of bun models.
type MapRecord struct {
	Persisted bool
	Values    map[string]any
}

// MapColumns implements Columns for *MapRecord.
type MapColumns struct{}

func (MapColumns) Get(record any, column string) (any, error) {
	rec, err := asMapRecord(record)
	if err != nil {
		return nil, err
	}
	return rec.Values[column], nil
}

func (MapColumns) Set(record any, column string, raw any) error {
	rec, err := asMapRecord(record)
	if err != nil {
		return err
	}
	if rec.Values == nil {
		rec.Values = make(map[string]any)
	}
	rec.Values[column] = raw
	return nil
}

func (MapColumns) IsNew(record any) bool {
	rec, err := asMapRecord(record)
	if err != nil {
		return true
	}
	return !rec.Persisted
}

func asMapRecord(record any) (*MapRecord, error) {
	rec, ok := record.(*MapRecord)
	if !ok || rec == nil {
		return nil, fmt.Errorf("records: expected *MapRecord, got %T", record)
	}
	return rec, nil
}
