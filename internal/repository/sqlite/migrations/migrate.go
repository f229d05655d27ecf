package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"

	"task-manager/internal/logging"
)

//go:embed *.sql
var migrationsFS embed.FS

// GoMigrationFunc applies or reverts a migration written in Go inside tx.
type GoMigrationFunc func(tx *sql.Tx) error

// Migration represents a database migration.
// SQL migrations carry Up/Down text, Go migrations carry UpFunc/DownFunc.
type Migration struct {
	Version  int
	Name     string
	Up       string
	Down     string
	UpFunc   GoMigrationFunc
	DownFunc GoMigrationFunc
}

var goMigrations = map[int]Migration{}

// RegisterGoMigration registers a Go migration. It is meant to be called from init.
func RegisterGoMigration(version int, up, down GoMigrationFunc) {
	if _, exists := goMigrations[version]; exists {
		panic(fmt.Sprintf("migrations: duplicate Go migration version %d", version))
	}
	goMigrations[version] = Migration{
		Version:  version,
		Name:     fmt.Sprintf("%06d (go)", version),
		UpFunc:   up,
		DownFunc: down,
	}
}

// RunMigrations executes all pending migrations
func RunMigrations(ctx context.Context, db *sql.DB) error {
	if err := createMigrationsTable(ctx, db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	if err := checkDirty(ctx, db); err != nil {
		return err
	}

	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}
		logging.Debugf("applying migration %s\n", migration.Name)
		if err := applyMigration(ctx, db, migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// Rollback reverts applied migrations newer than target, newest first.
func Rollback(ctx context.Context, db *sql.DB, target int) error {
	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if migration.Version <= target || !applied[migration.Version] {
			continue
		}
		logging.Debugf("reverting migration %s\n", migration.Name)
		if err := revertMigration(ctx, db, migration); err != nil {
			return fmt.Errorf("failed to revert migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// CurrentVersion returns the highest applied migration version, or 0.
func CurrentVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version sql.NullInt64
	err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM migrations WHERE dirty = FALSE").Scan(&version)
	if err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}

func createMigrationsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		dirty BOOLEAN DEFAULT FALSE
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func checkDirty(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, "SELECT version FROM migrations WHERE dirty = TRUE ORDER BY version")
	if err != nil {
		return fmt.Errorf("failed to check migration state: %w", err)
	}
	defer rows.Close()

	var dirty []int
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return err
		}
		dirty = append(dirty, version)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(dirty) > 0 {
		return fmt.Errorf("database is in a dirty state, failed migration(s): %v; fix the schema manually and delete the rows from the migrations table", dirty)
	}
	return nil
}

func loadMigrations() ([]Migration, error) {
	entries, err := migrationsFS.ReadDir(".")
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var migrations []Migration
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}

		version := extractVersion(entry.Name())
		if version == 0 {
			continue
		}

		upSQL, err := migrationsFS.ReadFile(entry.Name())
		if err != nil {
			return nil, err
		}

		downFile := strings.Replace(entry.Name(), ".up.sql", ".down.sql", 1)
		downSQL, err := migrationsFS.ReadFile(downFile)
		if err != nil {
			return nil, err
		}

		seen[version] = true
		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(entry.Name(), ".up.sql"),
			Up:      string(upSQL),
			Down:    string(downSQL),
		})
	}

	for version, migration := range goMigrations {
		if seen[version] {
			return nil, fmt.Errorf("migration version %d is defined both in SQL and Go", version)
		}
		migrations = append(migrations, migration)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func getAppliedMigrations(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// applyMigration marks the version dirty, runs it in a transaction, then clears the mark.
// A failure leaves the dirty row behind so the next run refuses to continue.
func applyMigration(ctx context.Context, db *sql.DB, migration Migration) error {
	if _, err := db.ExecContext(ctx, "INSERT INTO migrations (version, dirty) VALUES (?, TRUE)", migration.Version); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if migration.UpFunc != nil {
		err = migration.UpFunc(tx)
	} else {
		_, err = tx.ExecContext(ctx, migration.Up)
	}
	if err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, "UPDATE migrations SET dirty = FALSE WHERE version = ?", migration.Version); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func revertMigration(ctx context.Context, db *sql.DB, migration Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if migration.DownFunc != nil {
		err = migration.DownFunc(tx)
	} else {
		_, err = tx.ExecContext(ctx, migration.Down)
	}
	if err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM migrations WHERE version = ?", migration.Version); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func extractVersion(filename string) int {
	var version int
	fmt.Sscanf(filename, "%d_", &version)
	return version
}
