package shared

import (
	"database/sql"
	"embed"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var schemaFS embed.FS

// Migration pairs the up and down scripts for one cache schema revision.
type Migration struct {
	Version int
	Up      string
	Down    string
}

// loadMigrations collects the embedded schema scripts, pairing each
// NNNN_*_up.sql with its NNNN_*_down.sql counterpart. Returned slice is
// sorted ascending by revision. A revision missing either half is an error.
func loadMigrations() ([]Migration, error) {
	entries, err := schemaFS.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("reading embedded schema scripts: %w", err)
	}

	byVersion := map[int]*Migration{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}

		script, err := schemaFS.ReadFile(path.Join("sql", name))
		if err != nil {
			return nil, fmt.Errorf("reading schema script %s: %w", name, err)
		}

		m := byVersion[version]
		if m == nil {
			m = &Migration{Version: version}
			byVersion[version] = m
		}
		switch {
		case strings.HasSuffix(name, "_up.sql"):
			m.Up = string(script)
		case strings.HasSuffix(name, "_down.sql"):
			m.Down = string(script)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("cache schema revision %d is missing its up or down script", m.Version)
		}
		migrations = append(migrations, *m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// RunMigrations brings the cache schema up to date, applying every embedded
// revision not yet recorded in schema_migrations. Safe to call on each open.
func RunMigrations(db *sql.DB) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	ledger := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(ledger); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := runScript(db, m.Up, m.Version, false); err != nil {
			return fmt.Errorf("applying cache schema revision %d: %w", m.Version, err)
		}
	}

	return nil
}

// RollbackMigration reverses the newest applied cache schema revision.
func RollbackMigration(db *sql.DB) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	var newest sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&newest); err != nil {
		return fmt.Errorf("reading applied revisions: %w", err)
	}
	if !newest.Valid {
		return fmt.Errorf("cache schema has no applied revisions")
	}

	for _, m := range migrations {
		if int64(m.Version) == newest.Int64 {
			if err := runScript(db, m.Down, m.Version, true); err != nil {
				return fmt.Errorf("rolling back cache schema revision %d: %w", m.Version, err)
			}
			return nil
		}
	}

	return fmt.Errorf("applied revision %d has no embedded script", newest.Int64)
}

func appliedVersions(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("reading applied revisions: %w", err)
	}
	defer rows.Close()

	applied := map[int]bool{}
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scanning applied revision: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// runScript executes one schema script statement by statement inside a single
// transaction, then records (up) or erases (down) the revision in the ledger.
func runScript(db *sql.DB, script string, version int, down bool) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(script) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt, err)
		}
	}

	if down {
		_, err = tx.Exec("DELETE FROM schema_migrations WHERE version = ?", version)
	} else {
		_, err = tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version)
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

// splitStatements breaks a script on semicolons, stripping -- comments and
// blank lines, so sqlite sees exactly one statement per Exec.
func splitStatements(script string) []string {
	var statements []string
	for _, raw := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(raw, "\n") {
			if idx := strings.Index(line, "--"); idx >= 0 {
				line = line[:idx]
			}
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		if stmt := strings.Join(lines, "\n"); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}
