package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	translatable "github.com/goliatone/go-translatable"
	"github.com/goliatone/go-translatable/internal/accessor"
	"github.com/goliatone/go-translatable/internal/codec"
	"github.com/goliatone/go-translatable/internal/keys"
	"github.com/goliatone/go-translatable/internal/query"
	"github.com/goliatone/go-translatable/internal/runtimeconfig"
	"github.com/goliatone/go-translatable/internal/schema"
	"github.com/goliatone/go-translatable/internal/validation"
)

const usage = `usage: translatable <command> [flags]

commands:
  inspect  classify a column and list the accessors it would generate
  check    validate the stored documents of a column
  filter   list row ids matching a translated value
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("translatable: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("command is required")
	}
	switch args[0] {
	case "inspect":
		return runInspect(ctx, args[1:], out)
	case "check":
		return runCheck(ctx, args[1:], out)
	case "filter":
		return runFilter(ctx, args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

type commonFlags struct {
	config  *string
	envFile *string
	driver  *string
	dsn     *string
	table   *string
	column  *string
}

func registerCommon(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config:  fs.String("config", "", "Path to a TOML config file"),
		envFile: fs.String("env-file", ".env", "Dotenv file loaded before reading TRANSLATABLE_* variables"),
		driver:  fs.String("driver", "", "Database driver (postgres or sqlite, defaults to config)"),
		dsn:     fs.String("dsn", "", "Database DSN (defaults to config)"),
		table:   fs.String("table", "", "Table holding the translated column"),
		column:  fs.String("column", "", "Translated column name"),
	}
}

func (c commonFlags) validate() error {
	if strings.TrimSpace(*c.table) == "" {
		return errors.New("-table is required")
	}
	if strings.TrimSpace(*c.column) == "" {
		return errors.New("-column is required")
	}
	return nil
}

func (c commonFlags) load() (runtimeconfig.Config, error) {
	if path := strings.TrimSpace(*c.envFile); path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return runtimeconfig.Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	cfg, err := translatable.LoadConfig(*c.config)
	if err != nil {
		return cfg, err
	}
	if driver := strings.TrimSpace(*c.driver); driver != "" {
		cfg.Database.Driver = driver
	}
	if dsn := strings.TrimSpace(*c.dsn); dsn != "" {
		cfg.Database.DSN = dsn
	}
	return cfg, nil
}

func openDB(cfg runtimeconfig.Config) (*bun.DB, error) {
	driver := runtimeconfig.NormalizeDriver(cfg.Database.Driver)
	if driver == "" {
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrDatabaseDriverUnknown, cfg.Database.Driver)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("database dsn is required")
	}
	switch driver {
	case "postgres":
		sqldb, err := sql.Open("pgx", cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		sqldb, err := sql.Open("sqlite3", cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}
}

func prepare(fs *flag.FlagSet, common commonFlags, args []string) (runtimeconfig.Config, *bun.DB, error) {
	if err := fs.Parse(args); err != nil {
		return runtimeconfig.Config{}, nil, err
	}
	if err := common.validate(); err != nil {
		return runtimeconfig.Config{}, nil, err
	}
	cfg, err := common.load()
	if err != nil {
		return cfg, nil, fmt.Errorf("config: %w", err)
	}
	db, err := openDB(cfg)
	if err != nil {
		return cfg, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, db, nil
}

func classify(ctx context.Context, db *bun.DB, table, column, override string) (codec.Kind, error) {
	if strings.TrimSpace(override) != "" {
		return codec.ParseKind(override), nil
	}
	col, err := schema.NewBunInspector(db).Column(ctx, table, column)
	if err != nil {
		return codec.KindText, err
	}
	if !col.Exists {
		return codec.KindText, fmt.Errorf("no such column '%s' in '%s' table", column, table)
	}
	return codec.Classify(col), nil
}

func runInspect(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	common := registerCommon(fs)
	channel := fs.Bool("channel", false, "Treat the column as channel keyed")

	cfg, db, err := prepare(fs, common, args)
	if err != nil {
		return err
	}
	defer db.Close()

	kind, err := classify(ctx, db, *common.table, *common.column, "")
	if err != nil {
		return err
	}

	binding := accessor.Binding{
		Attribute: *common.column,
		Table:     *common.table,
		Domain:    keys.DomainLocale,
		Kind:      kind,
		Fallback:  keys.Normalize(keys.DomainLocale, cfg.FallbackLocale),
		Keys:      keys.NormalizeAll(keys.DomainLocale, cfg.Locales),
	}
	if *channel {
		binding.Domain = keys.DomainChannel
		binding.Fallback = keys.Normalize(keys.DomainChannel, cfg.Channels.Default)
		binding.Keys = keys.NormalizeAll(keys.DomainChannel, cfg.Channels.Available)
	}

	fmt.Fprintf(out, "%s.%s storage=%s domain=%s fallback=%s\n",
		binding.Table, binding.Attribute, kind, binding.Domain, binding.Fallback)
	for _, key := range binding.Keys {
		fmt.Fprintf(out, "  %s -> %s\n", binding.AccessorName(key), key)
	}
	return nil
}

type rawRow struct {
	ID  string  `bun:"id"`
	Raw *string `bun:"raw"`
}

func runCheck(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	common := registerCommon(fs)
	idColumn := fs.String("id-column", "id", "Primary key column printed for failing rows")
	strict := fs.Bool("strict", false, "Reject keys outside the configured locales or channels")
	channel := fs.Bool("channel", false, "Use channels instead of locales for -strict")

	cfg, db, err := prepare(fs, common, args)
	if err != nil {
		return err
	}
	defer db.Close()

	var opts []validation.Option
	if *strict {
		allowed := keys.Strings(keys.NormalizeAll(keys.DomainLocale, cfg.Locales))
		if *channel {
			allowed = keys.Strings(keys.NormalizeAll(keys.DomainChannel, cfg.Channels.Available))
		}
		opts = append(opts, validation.WithAllowedKeys(allowed...))
	}
	validator, err := validation.NewValidator(opts...)
	if err != nil {
		return err
	}

	var rows []rawRow
	err = db.NewSelect().
		TableExpr("?", bun.Ident(*common.table)).
		ColumnExpr("CAST(? AS TEXT) AS id", bun.Ident(*idColumn)).
		ColumnExpr("CAST(? AS TEXT) AS raw", bun.Ident(*common.column)).
		OrderExpr("? ASC", bun.Ident(*idColumn)).
		Scan(ctx, &rows)
	if err != nil {
		return fmt.Errorf("read %s.%s: %w", *common.table, *common.column, err)
	}

	invalid := 0
	for _, row := range rows {
		var raw any
		if row.Raw != nil {
			raw = *row.Raw
		}
		if err := validator.Validate(raw); err != nil {
			invalid++
			for _, issue := range validation.Issues(err) {
				fmt.Fprintf(out, "%s %s: %s\n", row.ID, issue.Location, issue.Message)
			}
		}
	}
	fmt.Fprintf(out, "checked %d rows, %d invalid\n", len(rows), invalid)
	if invalid > 0 {
		return fmt.Errorf("%d invalid documents in %s.%s", invalid, *common.table, *common.column)
	}
	return nil
}

func runFilter(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("filter", flag.ContinueOnError)
	common := registerCommon(fs)
	idColumn := fs.String("id-column", "id", "Column printed for matching rows")
	value := fs.String("value", "", "Value to match")
	key := fs.String("key", "", "Key for exact matches (defaults to the default locale)")
	mode := fs.String("mode", "value", "Match mode: value, substring, or exact")
	storage := fs.String("storage", "", "Storage kind override (text or json)")

	cfg, db, err := prepare(fs, common, args)
	if err != nil {
		return err
	}
	defer db.Close()

	kind, err := classify(ctx, db, *common.table, *common.column, *storage)
	if err != nil {
		return err
	}
	const alias = "t"
	builder, err := query.NewBuilder(db.Dialect().Name(), *common.column, kind, query.WithTableAlias(alias))
	if err != nil {
		return err
	}

	var pred query.Predicate
	switch strings.ToLower(strings.TrimSpace(*mode)) {
	case "value":
		pred = builder.ContainsValue(*value)
	case "substring":
		pred = builder.ContainsSubstring(*value)
	case "exact":
		target := keys.Normalize(keys.DomainLocale, *key)
		if target == "" {
			target = keys.Normalize(keys.DomainLocale, cfg.DefaultLocale)
		}
		pred = builder.ExactFor(*value, target.String())
	default:
		return fmt.Errorf("unknown mode %q", *mode)
	}

	var ids []string
	q := db.NewSelect().
		TableExpr("? AS ?", bun.Ident(*common.table), bun.Ident(alias)).
		ColumnExpr("CAST(?.? AS TEXT)", bun.Ident(alias), bun.Ident(*idColumn)).
		OrderExpr("?.? ASC", bun.Ident(alias), bun.Ident(*idColumn))
	if err := pred(q).Scan(ctx, &ids); err != nil {
		return fmt.Errorf("filter %s.%s: %w", *common.table, *common.column, err)
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}
