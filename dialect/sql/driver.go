package sql

import (
	"database/sql"

	"github.com/cockroachdb/errors"

	"github.com/syssam/modelgraph"
	"github.com/syssam/modelgraph/dialect"
)

// drivers maps a dialect to the database/sql driver registered for it.
// The drivers themselves are linked in by the binary.
var drivers = map[string]string{
	dialect.Postgres: "postgres",
	dialect.MySQL:    "mysql",
	dialect.SQLite:   "sqlite",
}

// Open opens a database of the given dialect with the matching driver
// and verifies the connection is usable.
func Open(name, source string) (*sql.DB, error) {
	d, ok := dialect.Normalize(name)
	if !ok {
		return nil, modelgraph.NewConfigError("Dialect", name, "unsupported dialect")
	}
	db, err := sql.Open(drivers[d], source)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", d)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "connect %s database", d)
	}
	return db, nil
}
