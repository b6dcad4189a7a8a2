package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"budget/config"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/go-sql-driver/mysql"
)

//go:embed migrations
var migrationsFS embed.FS

// Direction selects which way Migrate moves the schema.
type Direction int

const (
	Up Direction = iota
	Down
)

// Migrate applies (Up) or rolls back (Down) every embedded migration for the
// configured driver. It uses its own connection, separate from the pool.
func Migrate(cfg config.DatabaseConfig, dir Direction) error {
	m, closeDB, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer closeDB()
	defer m.Close()

	switch dir {
	case Down:
		err = m.Down()
	default:
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr == nil {
		slog.Info("schema migrated", "driver", driverName(cfg), "version", version, "dirty", dirty)
	}
	return nil
}

func newMigrator(cfg config.DatabaseConfig) (*migrate.Migrate, func(), error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, nil, err
	}
	name := driverName(cfg)
	if name == DriverMySQL {
		dsn += "&multiStatements=true"
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open migration database: %w", err)
	}
	closeDB := func() { db.Close() }

	var m *migrate.Migrate
	src, err := iofs.New(migrationsFS, "migrations/"+name)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("create iofs source: %w", err)
	}

	switch name {
	case DriverMySQL:
		driver, derr := migratemysql.WithInstance(db, &migratemysql.Config{})
		if derr != nil {
			closeDB()
			return nil, nil, fmt.Errorf("create mysql driver: %w", derr)
		}
		m, err = migrate.NewWithInstance("iofs", src, "mysql", driver)
	default:
		driver, derr := migratepostgres.WithInstance(db, &migratepostgres.Config{})
		if derr != nil {
			closeDB()
			return nil, nil, fmt.Errorf("create postgres driver: %w", derr)
		}
		m, err = migrate.NewWithInstance("iofs", src, "postgres", driver)
	}
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, closeDB, nil
}
