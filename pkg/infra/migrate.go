package infra

import (
	"fmt"

	"github.com/cenkalti/backoff"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	postgres_wrapper "github.com/equitix/exchange-core/pkg/infra/postgres"
	"gorm.io/gorm"
)

// Migrate brings the schema at connStr up to the latest version in source.
// A dirty version is forced back one step and retried.
func Migrate(source string, connStr string) error {
	mg, err := migrate.New(source, connStr)
	if err != nil {
		return fmt.Errorf("create migration: %w", err)
	}
	defer mg.Close()

	version, dirty, err := mg.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return err
	}
	if dirty {
		if err := mg.Force(int(version) - 1); err != nil {
			return err
		}
	}

	if err := mg.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// ConnectAndMigrate waits for the database, then runs migrations. Used by
// integration setups where postgres may still be starting.
func ConnectAndMigrate(cfg *postgres_wrapper.PostgresConfig, source string) (*gorm.DB, error) {
	var db *gorm.DB
	err := backoff.Retry(func() error {
		var err error
		db, err = postgres_wrapper.InitPostgres(cfg)
		return err
	}, backoff.NewExponentialBackOff())
	if err != nil {
		return nil, err
	}

	if err := Migrate(source, cfg.MigrationConnURL); err != nil {
		return nil, err
	}
	return db, nil
}
