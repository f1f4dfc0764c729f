package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

// Badger stores values in an embedded on-disk database
type Badger struct {
	db     *badger.DB
	logger *zap.Logger
}

// OpenBadger opens (or creates) the database at path
func OpenBadger(path string, logger *zap.Logger) (*Badger, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	return openBadger(opts, logger)
}

// OpenBadgerInMemory opens a database that is never written to disk
func OpenBadgerInMemory(logger *zap.Logger) (*Badger, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	return openBadger(opts, logger)
}

func openBadger(opts badger.Options, logger *zap.Logger) (*Badger, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open badger at %q: %w", opts.Dir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("Opened badger store", zap.String("path", opts.Dir), zap.Bool("in_memory", opts.InMemory))
	return &Badger{db: db, logger: logger}, nil
}

func (b *Badger) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		b.logger.Error("Failed to read key", zap.String("key", key), zap.Error(err))
		return "", err
	}
	return string(value), nil
}

func (b *Badger) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		b.logger.Error("Failed to write key", zap.String("key", key), zap.Error(err))
	}
	return err
}

func (b *Badger) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		b.logger.Error("Failed to delete key", zap.String("key", key), zap.Error(err))
	}
	return err
}

func (b *Badger) Close() error {
	return b.db.Close()
}
