// Package sql introspects relational databases into type descriptors.
//
// An Inspector lists the tables and foreign keys of one database schema and
// emits a load.Schema per table, ready for registry.New:
//
//	db, err := sql.Open(dialect.SQLite, "file:app.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	i, err := sql.NewInspector(db, dialect.SQLite)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	schemas, err := i.Schemas(ctx)
//
// # Naming
//
// A table maps to the camel-cased singular of its name ("blog_posts" becomes
// BlogPost). A foreign key column maps to a many-to-one edge named after the
// column without its "_id" suffix. The referenced table receives the
// one-to-many inverse, named after the plural of the referencing table.
//
// # Dialect Support
//
//   - SQLite: sqlite_master and pragma_foreign_key_list
//   - PostgreSQL: information_schema, schema "public" by default
//   - MySQL: information_schema, the current database by default
//
// Drivers are not imported by this package; the binary links lib/pq,
// go-sql-driver/mysql or modernc.org/sqlite.
package sql
