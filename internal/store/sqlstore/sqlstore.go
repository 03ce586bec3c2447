package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect names accepted by Open.
const (
	SQLite   = "sqlite3"
	Postgres = "postgres"
	MySQL    = "mysql"
)

type dialect struct {
	driver string
	create string
	load   string
	upsert string
}

var dialects = map[string]dialect{
	SQLite: {
		driver: "sqlite3",
		create: `CREATE TABLE IF NOT EXISTS shop_kv (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		)`,
		load:   `SELECT v FROM shop_kv WHERE k = ?`,
		upsert: `INSERT INTO shop_kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
	},
	Postgres: {
		driver: "pgx",
		create: `CREATE TABLE IF NOT EXISTS shop_kv (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		)`,
		load:   `SELECT v FROM shop_kv WHERE k = $1`,
		upsert: `INSERT INTO shop_kv (k, v) VALUES ($1, $2) ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v`,
	},
	MySQL: {
		driver: "mysql",
		create: `CREATE TABLE IF NOT EXISTS shop_kv (
			k VARCHAR(191) PRIMARY KEY,
			v LONGTEXT NOT NULL
		)`,
		load:   `SELECT v FROM shop_kv WHERE k = ?`,
		upsert: `INSERT INTO shop_kv (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)`,
	},
}

// Store keeps the blob in one row of the shop_kv table.
type Store struct {
	db  *sql.DB
	d   dialect
	key string
}

// Open connects with the driver for name, pings, and creates the table if
// needed.
func Open(ctx context.Context, name, dsn, key string) (*Store, error) {
	d, ok := dialects[name]
	if !ok {
		return nil, fmt.Errorf("sqlstore: unknown dialect %q", name)
	}
	if key == "" {
		return nil, errors.New("sqlstore: empty key")
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if name == SQLite {
		// sqlite serializes writers anyway; one connection also keeps
		// ":memory:" databases from splitting across the pool.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("ping %s: %w", name, err)
	}
	s := &Store{db: db, d: d, key: key}
	if err := s.migrate(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.d.create); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) ([]byte, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, s.d.load, s.key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("select: %w", err)
	}
	return []byte(v), true, nil
}

func (s *Store) Save(ctx context.Context, data []byte) error {
	if _, err := s.db.ExecContext(ctx, s.d.upsert, s.key, string(data)); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
