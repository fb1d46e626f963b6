package store

import (
	"context"
	"errors"
	"time"
)

// Singleton stores exactly one record of type T under a fixed key.
// The record is created on first access from a defaults function that runs
// inside the creating transaction, so it may read or write other collections.
type Singleton[T any] struct {
	store    *Store
	name     string
	key      []byte
	defaults func(tx *Txn, now time.Time) (*T, error)
}

func newSingleton[T any](s *Store, name string, defaults func(tx *Txn, now time.Time) (*T, error)) *Singleton[T] {
	return &Singleton[T]{
		store:    s,
		name:     name,
		key:      []byte(name + ":singleton"),
		defaults: defaults,
	}
}

// GetIn returns the record, or ErrNotFound when it has never been created.
func (sg *Singleton[T]) GetIn(tx *Txn) (*T, error) {
	var v T
	if err := tx.getJSON(sg.key, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetOrCreateIn returns the record, creating it from defaults if absent.
// Reports whether it was created by this call. Two transactions racing to
// create it conflict at commit; the replayed loser then reads the winner's record.
func (sg *Singleton[T]) GetOrCreateIn(tx *Txn) (*T, bool, error) {
	v, err := sg.GetIn(tx)
	if err == nil {
		return v, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	v, err = sg.defaults(tx, sg.store.now())
	if err != nil {
		return nil, false, err
	}
	if err := sg.PutIn(tx, v); err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// PutIn replaces the record.
func (sg *Singleton[T]) PutIn(tx *Txn, v *T) error {
	return tx.setJSON(sg.key, v)
}

// GetOrCreate returns the record, creating it on first access.
// Concurrent first calls in this process share one creating transaction.
func (sg *Singleton[T]) GetOrCreate(ctx context.Context) (*T, error) {
	_, err, _ := sg.store.flight.Do(sg.name, func() (any, error) {
		return nil, sg.store.Update(ctx, func(tx *Txn) error {
			_, created, err := sg.GetOrCreateIn(tx)
			if err == nil && created && sg.store.logger != nil {
				sg.store.logger.Info("singleton created", "name", sg.name)
			}
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	// Each caller decodes its own copy.
	var v *T
	err = sg.store.View(ctx, func(tx *Txn) error {
		var err error
		v, err = sg.GetIn(tx)
		return err
	})
	return v, err
}

// Put replaces the record.
func (sg *Singleton[T]) Put(ctx context.Context, v *T) error {
	return sg.store.Update(ctx, func(tx *Txn) error {
		return sg.PutIn(tx, v)
	})
}
