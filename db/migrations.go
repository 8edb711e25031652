// Package db bundles the SQL migrations so the server and tests apply the
// same schema.
package db

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrations embed.FS

// UpMigrations returns the contents of every *.up.sql file in lexical order.
func UpMigrations() ([]string, error) {
	names, err := fs.Glob(migrations, "migrations/*_*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		payload, err := migrations.ReadFile(name)
		if err != nil {
			return nil, err
		}
		out = append(out, string(payload))
	}
	return out, nil
}
