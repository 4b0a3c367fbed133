package sql

import (
	"cmp"
	"context"
	"database/sql"
	"slices"
	"strings"

	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"
	"github.com/cockroachdb/errors"
	"github.com/go-openapi/inflect"
	"go.uber.org/zap"

	"github.com/syssam/modelgraph"
	"github.com/syssam/modelgraph/dialect"
	"github.com/syssam/modelgraph/graph"
	"github.com/syssam/modelgraph/load"
)

// Inspector reads tables and foreign keys from a live database and turns
// them into type descriptors: one type per table, one many-to-one edge per
// foreign key column and its one-to-many inverse on the referenced table.
type Inspector struct {
	db      *sql.DB
	dialect string
	schema  string
	log     *zap.Logger
}

// InspectOption configures an Inspector.
type InspectOption func(*Inspector) error

// WithSchema restricts inspection to the given database schema. It
// defaults to "public" on Postgres, the current database on MySQL and
// "main" on SQLite.
func WithSchema(name string) InspectOption {
	return func(i *Inspector) error {
		if name == "" {
			return modelgraph.NewConfigError("Schema", nil, "schema name cannot be empty")
		}
		i.schema = name
		return nil
	}
}

// WithLogger sets the inspector logger.
func WithLogger(l *zap.Logger) InspectOption {
	return func(i *Inspector) error {
		if l == nil {
			return modelgraph.NewConfigError("Logger", nil, "logger cannot be nil")
		}
		i.log = l
		return nil
	}
}

// NewInspector returns an inspector for db, which speaks the given dialect.
func NewInspector(db *sql.DB, name string, opts ...InspectOption) (*Inspector, error) {
	if db == nil {
		return nil, modelgraph.NewConfigError("DB", nil, "database cannot be nil")
	}
	d, ok := dialect.Normalize(name)
	if !ok {
		return nil, modelgraph.NewConfigError("Dialect", name, "unsupported dialect")
	}
	i := &Inspector{db: db, dialect: d, log: zap.NewNop()}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	i.log = i.log.Named("sql.inspector")
	return i, nil
}

// Dialect returns the normalized dialect of the inspector.
func (i *Inspector) Dialect() string { return i.dialect }

// foreignKey is one foreign key column.
type foreignKey struct {
	Table     string
	Column    string
	RefTable  string
	RefColumn string
}

// Schemas returns one descriptor per table, in table name order.
func (i *Inspector) Schemas(ctx context.Context) ([]*load.Schema, error) {
	ns, err := i.namespace(ctx)
	if err != nil {
		return nil, err
	}
	var (
		tables []string
		fks    []foreignKey
	)
	if i.dialect == dialect.SQLite {
		tables, fks, err = i.inspectSQLite(ctx, ns)
	} else {
		tables, fks, err = i.inspectInformationSchema(ctx, ns)
	}
	if err != nil {
		return nil, err
	}
	slices.Sort(tables)
	slices.SortStableFunc(fks, func(a, b foreignKey) int {
		return cmp.Or(cmp.Compare(a.Table, b.Table), cmp.Compare(a.Column, b.Column))
	})
	schemas := build(ns, tables, fks)
	i.log.Debug("database inspected",
		zap.String("dialect", i.dialect),
		zap.String("schema", ns),
		zap.Int("tables", len(tables)),
		zap.Int("foreign_keys", len(fks)),
	)
	return schemas, nil
}

// namespace returns the database schema to inspect.
func (i *Inspector) namespace(ctx context.Context) (string, error) {
	if i.schema != "" {
		return i.schema, nil
	}
	switch i.dialect {
	case dialect.Postgres:
		return "public", nil
	case dialect.SQLite:
		return "main", nil
	}
	var name sql.NullString
	if err := i.db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&name); err != nil {
		return "", errors.Wrap(err, "query current database")
	}
	if !name.Valid || name.String == "" {
		return "", errors.New("no database selected")
	}
	return name.String, nil
}

// inspectSQLite reads the schema through the atlas SQLite inspector.
func (i *Inspector) inspectSQLite(ctx context.Context, ns string) ([]string, []foreignKey, error) {
	drv, err := sqlite.Open(i.db)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open sqlite inspector")
	}
	s, err := drv.InspectSchema(ctx, ns, &schema.InspectOptions{})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "inspect schema %s", ns)
	}
	var (
		tables []string
		fks    []foreignKey
	)
	for _, t := range s.Tables {
		tables = append(tables, t.Name)
		for _, fk := range t.ForeignKeys {
			if fk.RefTable == nil {
				continue
			}
			for k, c := range fk.Columns {
				ref := "id"
				if k < len(fk.RefColumns) && fk.RefColumns[k] != nil {
					ref = fk.RefColumns[k].Name
				}
				fks = append(fks, foreignKey{Table: t.Name, Column: c.Name, RefTable: fk.RefTable.Name, RefColumn: ref})
			}
		}
	}
	return tables, fks, nil
}

// inspectInformationSchema reads the schema from the information_schema
// views of Postgres and MySQL.
func (i *Inspector) inspectInformationSchema(ctx context.Context, ns string) ([]string, []foreignKey, error) {
	tables, err := i.tables(ctx, ns)
	if err != nil {
		return nil, nil, err
	}
	fks, err := i.foreignKeys(ctx, ns)
	if err != nil {
		return nil, nil, err
	}
	return tables, fks, nil
}

const (
	pgTables = "SELECT table_name FROM information_schema.tables WHERE table_schema = $1 AND table_type = 'BASE TABLE' ORDER BY table_name"
	pgFKs    = `SELECT kcu.table_name, kcu.column_name, ccu.table_name, ccu.column_name
FROM information_schema.table_constraints AS tc
JOIN information_schema.key_column_usage AS kcu
  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
JOIN information_schema.constraint_column_usage AS ccu
  ON tc.constraint_name = ccu.constraint_name AND tc.table_schema = ccu.table_schema
WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = $1
ORDER BY kcu.table_name, kcu.ordinal_position`
	mysqlTables = "SELECT table_name FROM information_schema.tables WHERE table_schema = ? AND table_type = 'BASE TABLE' ORDER BY table_name"
	mysqlFKs    = `SELECT table_name, column_name, referenced_table_name, referenced_column_name
FROM information_schema.key_column_usage
WHERE table_schema = ? AND referenced_table_name IS NOT NULL
ORDER BY table_name, ordinal_position`
)

func (i *Inspector) tables(ctx context.Context, ns string) ([]string, error) {
	query := mysqlTables
	if i.dialect == dialect.Postgres {
		query = pgTables
	}
	rows, err := i.db.QueryContext(ctx, query, ns)
	if err != nil {
		return nil, errors.Wrap(err, "query tables")
	}
	defer rows.Close()
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scan table")
		}
		tables = append(tables, name)
	}
	return tables, errors.Wrap(rows.Err(), "query tables")
}

func (i *Inspector) foreignKeys(ctx context.Context, ns string) ([]foreignKey, error) {
	query := mysqlFKs
	if i.dialect == dialect.Postgres {
		query = pgFKs
	}
	rows, err := i.db.QueryContext(ctx, query, ns)
	if err != nil {
		return nil, errors.Wrap(err, "query foreign keys")
	}
	defer rows.Close()
	var fks []foreignKey
	for rows.Next() {
		var (
			fk foreignKey
			to sql.NullString
		)
		if err := rows.Scan(&fk.Table, &fk.Column, &fk.RefTable, &to); err != nil {
			return nil, errors.Wrap(err, "scan foreign key")
		}
		fk.RefColumn = "id"
		if to.Valid && to.String != "" {
			fk.RefColumn = to.String
		}
		fks = append(fks, fk)
	}
	return fks, errors.Wrap(rows.Err(), "query foreign keys")
}

// build converts tables and foreign keys into descriptors.
func build(module string, tables []string, fks []foreignKey) []*load.Schema {
	byTable := make(map[string]*load.Schema, len(tables))
	schemas := make([]*load.Schema, 0, len(tables))
	for _, t := range tables {
		s := &load.Schema{Name: TypeName(t), Module: module, Comment: "table " + t}
		byTable[t] = s
		schemas = append(schemas, s)
	}
	for _, fk := range fks {
		owner, ok := byTable[fk.Table]
		if !ok {
			continue
		}
		name := EdgeName(fk.Column)
		owner.Edges = append(owner.Edges, &load.Edge{
			Name:       name,
			Type:       TypeName(fk.RefTable),
			Unique:     true,
			Relation:   graph.M2O.String(),
			Columns:    []string{fk.Column},
			RefColumns: []string{fk.RefColumn},
		})
		ref, ok := byTable[fk.RefTable]
		if !ok {
			continue
		}
		inverse := inflect.Pluralize(inflect.Singularize(fk.Table))
		if hasEdge(ref, inverse) {
			inverse += "_" + name
		}
		ref.Edges = append(ref.Edges, &load.Edge{
			Name:       inverse,
			Type:       owner.Name,
			Inverse:    true,
			RefName:    name,
			Relation:   graph.O2M.String(),
			Columns:    []string{fk.RefColumn},
			RefColumns: []string{fk.Column},
		})
	}
	return schemas
}

func hasEdge(s *load.Schema, name string) bool {
	for _, e := range s.Edges {
		if e.Name == name {
			return true
		}
	}
	return false
}

// TypeName returns the type name of a table: the camel-cased singular of
// its name.
//
//	TypeName("blog_posts") // BlogPost
func TypeName(table string) string {
	return inflect.Camelize(inflect.Singularize(table))
}

// EdgeName returns the edge name of a foreign key column.
//
//	EdgeName("author_id") // author
func EdgeName(column string) string {
	if name := strings.TrimSuffix(column, "_id"); name != "" {
		return name
	}
	return column
}
