package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/AntonStoeckl/userbooks-store-go/config"
	"github.com/AntonStoeckl/userbooks-store-go/userbooks"
	"github.com/AntonStoeckl/userbooks-store-go/userbooks/postgresengine"
)

var (
	errUnknownAdapter     = errors.New("unknown adapter")
	errUnknownStrategy    = errors.New("unknown strategy")
	errReplicaUnsupported = errors.New("adapter does not support a read replica")
)

// openStore connects with the configured adapter and returns the Store and a function releasing its connections.
func openStore(ctx context.Context, cfg Config, options ...postgresengine.Option) (*postgresengine.Store, func(), error) {
	switch cfg.Adapter {
	case adapterPGX:
		return openPGXStore(ctx, cfg, options...)
	case adapterSQL:
		return openSQLStore(ctx, cfg, options...)
	case adapterSQLX:
		if cfg.UseReplica {
			return nil, nil, errors.Join(errReplicaUnsupported, fmt.Errorf("%q", cfg.Adapter))
		}

		db, err := config.PostgresSQLX(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}

		store, err := postgresengine.NewStoreFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return store, func() { _ = db.Close() }, nil
	default:
		return nil, nil, errors.Join(errUnknownAdapter, fmt.Errorf("%q", cfg.Adapter))
	}
}

func openPGXStore(ctx context.Context, cfg Config, options ...postgresengine.Option) (*postgresengine.Store, func(), error) {
	pool, err := config.PostgresPGXPool(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.UseReplica {
		store, storeErr := postgresengine.NewStoreFromPGXPool(pool, options...)
		if storeErr != nil {
			pool.Close()
			return nil, nil, storeErr
		}

		return store, pool.Close, nil
	}

	replica, err := config.PostgresPGXPool(ctx, cfg.ReplicaDSN)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	closeAll := func() {
		replica.Close()
		pool.Close()
	}

	store, err := postgresengine.NewStoreFromPGXPoolWithReplica(pool, replica, options...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	return store, closeAll, nil
}

func openSQLStore(ctx context.Context, cfg Config, options ...postgresengine.Option) (*postgresengine.Store, func(), error) {
	db, err := config.PostgresSQLDB(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.UseReplica {
		store, storeErr := postgresengine.NewStoreFromSQLDB(db, options...)
		if storeErr != nil {
			_ = db.Close()
			return nil, nil, storeErr
		}

		return store, func() { _ = db.Close() }, nil
	}

	replica, err := config.PostgresSQLDB(ctx, cfg.ReplicaDSN)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	closeAll := func() {
		_ = replica.Close()
		_ = db.Close()
	}

	store, err := postgresengine.NewStoreFromSQLDBWithReplica(db, replica, options...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	return store, closeAll, nil
}

// newServices returns the user and book services of the named persistence strategy.
func newServices(strategy string, store *postgresengine.Store) (userbooks.UserService, userbooks.BookService, error) {
	switch strategy {
	case strategyRepository:
		return postgresengine.NewRepositoryUserService(store), postgresengine.NewRepositoryBookService(store), nil
	case strategyTemplate:
		return postgresengine.NewTemplateUserService(store), postgresengine.NewTemplateBookService(store), nil
	default:
		return nil, nil, errors.Join(errUnknownStrategy, fmt.Errorf("%q", strategy))
	}
}
