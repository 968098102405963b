package mysql

import (
	"cmp"
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one numbered schema script.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrator applies embedded schema scripts and records them in schema_migrations.
type Migrator struct {
	db     *sql.DB
	source fs.FS
}

// NewMigrator creates a migrator over the embedded team token schema.
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db, source: migrationFiles}
}

// Up applies every script newer than the recorded version and returns how
// many ran. MySQL commits DDL implicitly, so scripts must be re-runnable.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	migrations, err := loadMigrations(m.source)
	if err != nil {
		return 0, fmt.Errorf("loading migrations: %w", err)
	}

	current, err := m.Version(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, mig := range migrations {
		if mig.Version <= current {
			continue
		}
		if err := m.apply(ctx, mig); err != nil {
			return applied, fmt.Errorf("applying migration %d (%s): %w", mig.Version, mig.Name, err)
		}
		applied++
	}
	return applied, nil
}

// Version returns the highest applied version, 0 on a fresh database.
func (m *Migrator) Version(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := m.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version)
	if err != nil {
		if isMissingTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return int(version.Int64), nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
		return err
	}

	// 001 creates schema_migrations, so the record goes last
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE applied_at = VALUES(applied_at)`,
		mig.Version, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("recording version: %w", err)
	}

	return tx.Commit()
}

// loadMigrations reads NNN_name.sql files from the root "migrations"
// directory of src, ordered by version.
func loadMigrations(src fs.FS) ([]Migration, error) {
	files, err := fs.Glob(src, "migrations/*.sql")
	if err != nil {
		return nil, err
	}

	migrations := make([]Migration, 0, len(files))
	seen := make(map[int]string, len(files))
	for _, file := range files {
		base := strings.TrimSuffix(path.Base(file), ".sql")
		num, name, ok := strings.Cut(base, "_")
		if !ok {
			return nil, fmt.Errorf("migration %s: want NNN_name.sql", file)
		}
		version, err := strconv.Atoi(num)
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("migration %s: bad version %q", file, num)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration %s: version %d already used by %s", file, version, prev)
		}
		seen[version] = file

		body, err := fs.ReadFile(src, file)
		if err != nil {
			return nil, err
		}
		migrations = append(migrations, Migration{Version: version, Name: name, SQL: string(body)})
	}

	slices.SortFunc(migrations, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	return migrations, nil
}

// isMissingTable reports ER_NO_SUCH_TABLE.
func isMissingTable(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1146
}
