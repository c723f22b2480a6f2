package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/godror/godror" // Oracle driver for the migrate CLI
)

// NewMigrateOracleDB opens a plain database/sql connection for migrations.
// The migrate path uses godror while the API server stays on go-ora.
func NewMigrateOracleDB(connString string) (*sql.DB, error) {
	db, err := sql.Open("godror", connString)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping database: %w", err)
	}

	return db, nil
}

// RunMigrations executes every .up.sql file in migrationsDir in
// lexicographic order. Statements are split on the "/" delimiter line so a
// single file can carry several DDL statements, Oracle-style.
func RunMigrations(db *sql.DB, migrationsDir string) error {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("could not read migrations directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".up.sql") {
			names = append(names, file.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", name, err)
		}

		for _, stmt := range splitStatements(string(content)) {
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("could not execute migration %s: %w", name, err)
			}
		}
	}

	return nil
}

func splitStatements(content string) []string {
	var stmts []string
	for _, chunk := range strings.Split(content, "\n/\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			stmts = append(stmts, chunk)
		}
	}
	return stmts
}
