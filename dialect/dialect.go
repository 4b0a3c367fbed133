package dialect

import "strings"

// Dialect names for external usage.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// Dialects lists the supported dialects.
var Dialects = []string{Postgres, MySQL, SQLite}

// Normalize maps a dialect or driver name to one of the supported dialects.
func Normalize(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, d := range Dialects {
		if strings.HasPrefix(name, d) {
			return d, true
		}
	}
	if name == "pgx" {
		return Postgres, true
	}
	return name, false
}
