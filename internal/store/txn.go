package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Txn is one transaction over the whole store. Obtain it from Store.Update or Store.View.
type Txn struct {
	txn *badger.Txn
}

// get returns a copy of the value stored at key, or ErrNotFound.
func (tx *Txn) get(key []byte) ([]byte, error) {
	item, err := tx.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get key: %w", err)
	}
	return item.ValueCopy(nil)
}

// exists reports whether key is present.
func (tx *Txn) exists(key []byte) (bool, error) {
	_, err := tx.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check key: %w", err)
	}
	return true, nil
}

// set writes value at key. Badger keeps a reference to both slices until commit,
// so callers must not reuse them.
func (tx *Txn) set(key, value []byte) error {
	if err := tx.txn.Set(key, value); err != nil {
		return fmt.Errorf("set key: %w", err)
	}
	return nil
}

// delete removes key.
func (tx *Txn) delete(key []byte) error {
	if err := tx.txn.Delete(key); err != nil {
		return fmt.Errorf("delete key: %w", err)
	}
	return nil
}

// getJSON decodes the value at key into dest.
func (tx *Txn) getJSON(key []byte, dest any) error {
	item, err := tx.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get key: %w", err)
	}
	return item.Value(func(val []byte) error {
		return unmarshalRecord(val, dest)
	})
}

func unmarshalRecord(val []byte, dest any) error {
	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	return nil
}

// setJSON encodes value and writes it at key.
func (tx *Txn) setJSON(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return tx.set(key, data)
}

// scanPrefix calls fn for every key starting with prefix, in key order,
// starting at seek. fn returns false to stop.
func (tx *Txn) scanPrefix(prefix, seek []byte, withValues bool, fn func(item *badger.Item) (bool, error)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = withValues

	it := tx.txn.NewIterator(opts)
	defer it.Close()

	if seek == nil {
		seek = prefix
	}
	for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
		more, err := fn(it.Item())
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}
