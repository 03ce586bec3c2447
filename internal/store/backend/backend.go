// Package backend picks and opens the store.Store named by config.
package backend

import (
	"context"
	"fmt"
	"io"

	"github.com/Makepad-fr/shop/internal/config"
	"github.com/Makepad-fr/shop/internal/store"
	"github.com/Makepad-fr/shop/internal/store/filestore"
	"github.com/Makepad-fr/shop/internal/store/redisstore"
	"github.com/Makepad-fr/shop/internal/store/sqlstore"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the configured store and a Closer that releases it. The
// Closer is never nil.
func Open(ctx context.Context, cfg *config.Config) (store.Store, io.Closer, error) {
	switch cfg.Store {
	case config.StoreFile, "":
		s, err := filestore.New(cfg.DataDir, cfg.StoreKey)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil

	case config.StoreMemory:
		return store.NewMemory(), nopCloser{}, nil

	case config.StoreRedis:
		s, err := redisstore.Open(ctx, cfg.RedisURL, cfg.StoreKey)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	case config.StoreSQLite, config.StorePostgres, config.StoreMySQL:
		s, err := sqlstore.Open(ctx, sqlDialect(cfg.Store), cfg.DatabaseURL, cfg.StoreKey)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}

func sqlDialect(name string) string {
	switch name {
	case config.StoreSQLite:
		return sqlstore.SQLite
	case config.StorePostgres:
		return sqlstore.Postgres
	default:
		return sqlstore.MySQL
	}
}
