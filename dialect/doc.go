// Package dialect names the database dialects modelgraph can introspect.
//
// # Supported Dialects
//
//   - Postgres: PostgreSQL database
//   - MySQL: MySQL/MariaDB database
//   - SQLite: SQLite database
//
// # Dialect Constants
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// Driver names that extend a dialect name, such as "sqlite3", normalize to
// the dialect:
//
//	name, ok := dialect.Normalize("sqlite3") // "sqlite", true
//
// # Sub-packages
//
//   - dialect/sql: table and foreign key introspection into type descriptors
package dialect
