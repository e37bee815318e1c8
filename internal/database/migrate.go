package database

import (
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies every pending migration for the connection's dialect.
// The driver name is taken from the sqlx handle ("mysql" or "sqlite").
// The migrate instance is deliberately not closed: closing it would close db.
func Migrate(db *sqlx.DB) error {
	var (
		driver migratedb.Driver
		err    error
	)
	dialect := db.DriverName()
	switch dialect {
	case "mysql":
		driver, err = mysql.WithInstance(db.DB, &mysql.Config{})
	case "sqlite":
		driver, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	default:
		return fmt.Errorf("migrate: unsupported driver %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("error creating %s migration driver: %w", dialect, err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("error opening embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dialect, driver)
	if err != nil {
		return fmt.Errorf("error creating migration instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("migration state is up to date")
			return nil
		}
		return fmt.Errorf("error running migrations: %w", err)
	}
	log.Println("ran migrations successfully")
	return nil
}
