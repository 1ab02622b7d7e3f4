package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const pingTimeout = 5 * time.Second

func Connect(ctx context.Context, databaseURL string, maxConns int32) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open users db: %w", err)
	}
	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("users db pool: %w", err)
	}
	if maxConns > 0 {
		pool.SetMaxOpenConns(int(maxConns))
		pool.SetMaxIdleConns(max(1, int(maxConns)/4))
	}
	pool.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping users db: %w", err)
	}
	return db, nil
}

type schemaMigration struct {
	Name      string    `gorm:"column:name;primaryKey"`
	AppliedAt time.Time `gorm:"column:applied_at"`
}

func (schemaMigration) TableName() string { return "auth_schema_migrations" }

// RunMigrations applies each embedded file at most once. A file and its
// bookkeeping row commit together.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	names, err := migrationNames(migrationFS)
	if err != nil {
		return err
	}
	conn := db.WithContext(ctx)
	if err := conn.Exec(`CREATE TABLE IF NOT EXISTS auth_schema_migrations (
		name text PRIMARY KEY,
		applied_at timestamptz NOT NULL
	)`).Error; err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}
	for _, name := range names {
		if err := applyMigration(conn, name); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(conn *gorm.DB, name string) error {
	return conn.Transaction(func(tx *gorm.DB) error {
		var done schemaMigration
		err := tx.Where("name = ?", name).Take(&done).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		raw, err := migrationFS.ReadFile(path.Join("migrations", name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		for _, stmt := range strings.Split(string(raw), ";") {
			if stmt = strings.TrimSpace(stmt); stmt == "" {
				continue
			}
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
		}
		return tx.Create(&schemaMigration{Name: name, AppliedAt: time.Now().UTC()}).Error
	})
}

func migrationNames(fsys fs.FS) ([]string, error) {
	matches, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, path.Base(m))
	}
	slices.Sort(names)
	return names, nil
}
