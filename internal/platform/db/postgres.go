package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Postgres wraps DB connectivity.
// Keep transaction helpers here to support outbox + state consistency.
type Postgres struct {
	DB *gorm.DB
}

func Connect(dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}
	return wrap(db, "postgres")
}

// ConnectSQLite opens a file-backed SQLite database. Regional deployments
// without a Postgres server run on this driver.
func ConnectSQLite(path string) (*Postgres, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open gorm sqlite: %w", err)
	}
	return wrap(db, "sqlite")
}

// Open dispatches on the configured driver name.
func Open(driver string, postgresDSN string, sqlitePath string) (*Postgres, error) {
	switch driver {
	case "", "postgres":
		return Connect(postgresDSN)
	case "sqlite":
		return ConnectSQLite(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

func wrap(db *gorm.DB, driver string) (*Postgres, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve %s sql db handle: %w", driver, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return &Postgres{DB: db}, nil
}

func (p *Postgres) Close() error {
	if p == nil || p.DB == nil {
		return nil
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
