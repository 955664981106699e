package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// DB is a key-value table on PostgreSQL or SQLite. The same statements
// run on both.
type DB struct {
	conn   *sql.DB
	driver string
	logger logrus.FieldLogger
}

func Connect(driver, dsn string, logger logrus.FieldLogger) (*DB, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if driver == DriverSQLite {
		conn.SetMaxOpenConns(1) // sqlite
		conn.SetConnMaxLifetime(0)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	d := &DB{
		conn:   conn,
		driver: driver,
		logger: logger.WithFields(logrus.Fields{"component": "db", "driver": driver}),
	}
	d.logger.Info("connected")
	return d, nil
}

// OpenSQLite opens path, or a private in-memory database for ":memory:".
func OpenSQLite(path string, logger logrus.FieldLogger) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	return Connect(DriverSQLite, dsn, logger)
}

func (d *DB) Driver() string {
	return d.driver
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	return d.conn.PingContext(ctx)
}

func (d *DB) Migrate() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}

	for _, entry := range entries {
		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		if _, err := d.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", entry.Name(), err)
		}
		d.logger.WithField("migration", entry.Name()).Info("applied migration")
	}
	return nil
}

func (d *DB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := d.conn.QueryRowContext(ctx, `SELECT value FROM kv WHERE name = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("getting %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Set stores value as text; values are JSON.
func (d *DB) Set(ctx context.Context, key string, value []byte) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO kv (name, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

func (d *DB) Remove(ctx context.Context, key string) error {
	_, err := d.conn.ExecContext(ctx, `DELETE FROM kv WHERE name = $1`, key)
	if err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}
