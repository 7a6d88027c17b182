// Package schemas provides embedded SQL migration files.
package schemas

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

// Migrations contains all SQL migration files.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Statements returns the migration files in name order.
func Statements() ([]string, error) {
	paths, err := fs.Glob(Migrations, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("fs.Glob() > %w", err)
	}
	sort.Strings(paths)

	statements := make([]string, 0, len(paths))
	for _, path := range paths {
		data, err := Migrations.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("Migrations.ReadFile(%s) > %w", path, err)
		}
		statements = append(statements, string(data))
	}
	return statements, nil
}
