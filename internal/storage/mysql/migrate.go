package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	driver "github.com/go-sql-driver/mysql"
)

// MultiStatementDSN returns dsn with multiStatements enabled, which the
// migration files need.
func MultiStatementDSN(dsn string) (string, error) {
	c, err := driver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	c.MultiStatements = true
	return c.FormatDSN(), nil
}

// ApplyMigrations executes every *.sql file in dir in lexical order and
// returns the files applied. Statements must be idempotent.
func ApplyMigrations(ctx context.Context, db *sql.DB, dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := db.ExecContext(ctx, string(b)); err != nil {
			return nil, fmt.Errorf("exec %s: %w", filepath.Base(f), err)
		}
	}
	return files, nil
}
