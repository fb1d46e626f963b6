package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
)

type indexKind int

const (
	// uniqueIndex maps one value to one record; writes that would map a value
	// to a second record fail with ErrAlreadyExists.
	uniqueIndex indexKind = iota
	// multiIndex maps one value to any number of records and supports range scans.
	multiIndex
)

// Index defines a secondary index on an entity.
type Index[T any] struct {
	name            string
	kind            indexKind
	keyGen          func(*T) []string
	lookupTransform func(string) string // Optional transformation for lookups
}

// Range selects index values between Min and Max, both inclusive.
// An empty bound is open.
type Range struct {
	Min string
	Max string
}

// Exact selects a single index value.
func Exact(value string) Range {
	return Range{Min: value, Max: value}
}

// AtMost selects every index value up to and including max.
func AtMost(maxValue string) Range {
	return Range{Max: maxValue}
}

// Entity provides generic CRUD operations over one collection.
// Every operation has a transaction-scoped form (suffix In) so several
// collections can be changed atomically inside one Store.Update.
type Entity[T any] struct {
	store   *Store
	prefix  string
	indexes []Index[T]
}

// NewEntity creates a new Entity instance for type T under a key prefix.
func NewEntity[T any](s *Store, prefix string) *Entity[T] {
	return &Entity[T]{
		store:   s,
		prefix:  prefix,
		indexes: make([]Index[T], 0),
	}
}

// WithUniqueIndex adds a unique secondary index.
func (e *Entity[T]) WithUniqueIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{name: name, kind: uniqueIndex, keyGen: keyGen})
	return e
}

// WithUniqueIndexTransform adds a unique index whose lookup values are passed
// through lookupTransform first (case folding, normalization).
func (e *Entity[T]) WithUniqueIndexTransform(name string, keyGen func(*T) []string, lookupTransform func(string) string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:            name,
		kind:            uniqueIndex,
		keyGen:          keyGen,
		lookupTransform: lookupTransform,
	})
	return e
}

// WithIndex adds a non-unique index that supports value and range scans.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{name: name, kind: multiIndex, keyGen: keyGen})
	return e
}

func (e *Entity[T]) index(name string) (Index[T], error) {
	for _, idx := range e.indexes {
		if idx.name == name {
			return idx, nil
		}
	}
	return Index[T]{}, fmt.Errorf("unknown index %q on %s", name, e.prefix)
}

// GetIn retrieves an entity by ID inside tx.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) GetIn(tx *Txn, id string) (*T, error) {
	key := buildKey(e.prefix, id)
	defer releaseKey(key)

	var entity T
	if err := tx.getJSON(key, &entity); err != nil {
		return nil, err
	}
	return &entity, nil
}

// CreateIn creates a new entity with the given ID inside tx.
// Returns ErrAlreadyExists if the ID or a unique index value is taken.
func (e *Entity[T]) CreateIn(tx *Txn, id string, entity *T) error {
	exists, err := tx.exists([]byte(e.prefix + id))
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyExists
	}

	if err := e.checkUnique(tx, id, entity); err != nil {
		return err
	}
	return e.write(tx, id, entity, nil)
}

// UpdateIn replaces an existing entity inside tx.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) UpdateIn(tx *Txn, id string, entity *T) error {
	old, err := e.GetIn(tx, id)
	if err != nil {
		return err
	}

	if err := e.checkUnique(tx, id, entity); err != nil {
		return err
	}
	return e.write(tx, id, entity, old)
}

// PutIn creates or replaces an entity inside tx.
func (e *Entity[T]) PutIn(tx *Txn, id string, entity *T) error {
	old, err := e.GetIn(tx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if err := e.checkUnique(tx, id, entity); err != nil {
		return err
	}
	return e.write(tx, id, entity, old)
}

// DeleteIn removes an entity and its index entries inside tx.
// Reports whether anything was deleted; a missing ID is not an error.
func (e *Entity[T]) DeleteIn(tx *Txn, id string) (bool, error) {
	old, err := e.GetIn(tx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := e.deleteIndexes(tx, id, old); err != nil {
		return false, err
	}
	if err := tx.delete([]byte(e.prefix + id)); err != nil {
		return false, err
	}
	return true, nil
}

// TouchIn rewrites a record unchanged. Any concurrent transaction that read
// or writes the record then conflicts with this one at commit.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) TouchIn(tx *Txn, id string) error {
	key := []byte(e.prefix + id)
	val, err := tx.get(key)
	if err != nil {
		return err
	}
	return tx.set(key, val)
}

// LookupIn resolves a unique index value to its entity inside tx.
// Returns ErrNotFound if no entity holds the value.
func (e *Entity[T]) LookupIn(tx *Txn, indexName, value string) (*T, error) {
	idx, err := e.index(indexName)
	if err != nil {
		return nil, err
	}
	if idx.kind != uniqueIndex {
		return nil, fmt.Errorf("index %q is not unique, use Scan", indexName)
	}
	if idx.lookupTransform != nil {
		value = idx.lookupTransform(value)
	}

	key := buildIndexKey(e.prefix, indexName, value)
	id, err := tx.get(key)
	releaseKey(key)
	if err != nil {
		return nil, err
	}
	return e.GetIn(tx, string(id))
}

// ScanIn returns the entities whose index value falls in r, ordered by index value.
func (e *Entity[T]) ScanIn(tx *Txn, indexName string, r Range) ([]*T, error) {
	idx, err := e.index(indexName)
	if err != nil {
		return nil, err
	}
	if idx.lookupTransform != nil {
		if r.Min != "" {
			r.Min = idx.lookupTransform(r.Min)
		}
		if r.Max != "" {
			r.Max = idx.lookupTransform(r.Max)
		}
	}

	base := indexBase(e.prefix, indexName)
	seek := append(slices.Clone(base), r.Min...)

	var ids []string
	err = tx.scanPrefix(base, seek, idx.kind == uniqueIndex, func(item *badger.Item) (bool, error) {
		rest := item.Key()[len(base):]

		var value, id string
		if idx.kind == multiIndex {
			var ok bool
			value, id, ok = splitMultiValue(rest)
			if !ok {
				return true, nil
			}
		} else {
			value = string(rest)
			v, err := item.ValueCopy(nil)
			if err != nil {
				return false, fmt.Errorf("read index value: %w", err)
			}
			id = string(v)
		}

		if r.Max != "" && value > r.Max {
			return false, nil
		}
		ids = append(ids, id)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	results := make([]*T, 0, len(ids))
	for _, id := range ids {
		entity, err := e.GetIn(tx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, nil
}

// ListIn returns every entity in the collection, ordered by ID.
func (e *Entity[T]) ListIn(tx *Txn) ([]*T, error) {
	prefix := []byte(e.prefix)
	idxPrefix := []byte(e.prefix + "idx:")

	results := make([]*T, 0)
	err := tx.scanPrefix(prefix, nil, true, func(item *badger.Item) (bool, error) {
		if bytes.HasPrefix(item.Key(), idxPrefix) {
			return true, nil
		}

		entity := new(T)
		if err := item.Value(func(val []byte) error {
			return unmarshalRecord(val, entity)
		}); err != nil {
			return false, err
		}
		results = append(results, entity)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// checkUnique fails if any unique index value of entity belongs to another record.
func (e *Entity[T]) checkUnique(tx *Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		if idx.kind != uniqueIndex {
			continue
		}
		for _, value := range idx.keyGen(entity) {
			key := buildIndexKey(e.prefix, idx.name, value)
			owner, err := tx.get(key)
			releaseKey(key)

			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("check index key: %w", err)
			}
			if string(owner) != id {
				return fmt.Errorf("index %s conflict on key %s: %w", idx.name, value, ErrAlreadyExists)
			}
		}
	}
	return nil
}

// write stores entity and swaps its index entries from old (may be nil) to the new values.
func (e *Entity[T]) write(tx *Txn, id string, entity, old *T) error {
	if old != nil {
		if err := e.deleteIndexes(tx, id, old); err != nil {
			return err
		}
	}

	if err := tx.setJSON([]byte(e.prefix+id), entity); err != nil {
		return err
	}

	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(entity) {
			if idx.kind == uniqueIndex {
				if err := tx.set(indexKey(e.prefix, idx.name, value), []byte(id)); err != nil {
					return fmt.Errorf("set index key: %w", err)
				}
				continue
			}
			if err := tx.set(multiIndexKey(e.prefix, idx.name, value, id), []byte(id)); err != nil {
				return fmt.Errorf("set index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) deleteIndexes(tx *Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(entity) {
			key := indexKey(e.prefix, idx.name, value)
			if idx.kind == multiIndex {
				key = multiIndexKey(e.prefix, idx.name, value, id)
			}
			if err := tx.delete(key); err != nil {
				return fmt.Errorf("delete index key: %w", err)
			}
		}
	}
	return nil
}

// Context-scoped conveniences, each running in its own transaction.

// Get retrieves an entity by ID.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	var entity *T
	err := e.store.View(ctx, func(tx *Txn) error {
		var err error
		entity, err = e.GetIn(tx, id)
		return err
	})
	return entity, err
}

// Create creates a new entity with the given ID.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	return e.store.Update(ctx, func(tx *Txn) error {
		return e.CreateIn(tx, id, entity)
	})
}

// Update replaces an existing entity.
func (e *Entity[T]) Update(ctx context.Context, id string, entity *T) error {
	return e.store.Update(ctx, func(tx *Txn) error {
		return e.UpdateIn(tx, id, entity)
	})
}

// Put creates or replaces an entity.
func (e *Entity[T]) Put(ctx context.Context, id string, entity *T) error {
	return e.store.Update(ctx, func(tx *Txn) error {
		return e.PutIn(tx, id, entity)
	})
}

// Delete deletes an entity by ID.
// This operation is idempotent - it does not return an error if the entity does not exist.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	return e.store.Update(ctx, func(tx *Txn) error {
		_, err := e.DeleteIn(tx, id)
		return err
	})
}

// Lookup resolves a unique index value to its entity.
func (e *Entity[T]) Lookup(ctx context.Context, indexName, value string) (*T, error) {
	var entity *T
	err := e.store.View(ctx, func(tx *Txn) error {
		var err error
		entity, err = e.LookupIn(tx, indexName, value)
		return err
	})
	return entity, err
}

// Scan returns the entities whose index value falls in r.
func (e *Entity[T]) Scan(ctx context.Context, indexName string, r Range) ([]*T, error) {
	var entities []*T
	err := e.store.View(ctx, func(tx *Txn) error {
		var err error
		entities, err = e.ScanIn(tx, indexName, r)
		return err
	})
	return entities, err
}

// List returns every entity in the collection.
func (e *Entity[T]) List(ctx context.Context) ([]*T, error) {
	var entities []*T
	err := e.store.View(ctx, func(tx *Txn) error {
		var err error
		entities, err = e.ListIn(tx)
		return err
	})
	return entities, err
}
