// Package cache stores fetched upstream payloads on disk, keyed by
// resource id and revision, so re-runs after a failed validation do
// not refetch unchanged data.
package cache

import (
	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"
)

type Cache struct {
	db *badger.DB
}

func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions
	opts.Dir = dir
	opts.ValueDir = dir
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening cache in %s", dir)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached payload, or ok=false when the key is absent.
func (c *Cache) Get(key string) ([]byte, bool, error) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})
	if err != nil {
		return nil, false, errors.Wrapf(err, "cache get %q", key)
	}
	return data, data != nil, nil
}

func (c *Cache) Put(key string, data []byte) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	return errors.Wrapf(err, "cache put %q", key)
}
