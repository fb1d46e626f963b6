package store

import (
	"bytes"
	"sync"
)

// multiSep separates the indexed value from the record id in non-unique index keys.
// Ids never contain it, so the last occurrence splits the key unambiguously.
const multiSep = 0x00

// keyPool provides reusable byte slices for building database keys.
var keyPool = sync.Pool{
	New: func() any {
		// prefix + "idx:" + index name + value + id fits comfortably.
		return make([]byte, 0, 256)
	},
}

// buildKey constructs prefix+suffix in a pooled buffer.
// Only for reads. Callers MUST call releaseKey when done with the key.
func buildKey(prefix, suffix string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	buf = append(buf, prefix...)
	buf = append(buf, suffix...)
	return buf
}

// indexBase returns the key prefix shared by every entry of one index.
func indexBase(prefix, indexName string) []byte {
	buf := make([]byte, 0, len(prefix)+len(indexName)+64)
	buf = append(buf, prefix...)
	buf = append(buf, "idx:"...)
	buf = append(buf, indexName...)
	buf = append(buf, ':')
	return buf
}

// buildIndexKey constructs the key of a unique index entry in a pooled buffer.
// Only for reads. Callers MUST call releaseKey when done with the key.
func buildIndexKey(prefix, indexName, value string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	buf = append(buf, prefix...)
	buf = append(buf, "idx:"...)
	buf = append(buf, indexName...)
	buf = append(buf, ':')
	buf = append(buf, value...)
	return buf
}

// indexKey returns a freshly allocated unique index key. Used for writes:
// badger holds on to written keys until commit, so they can't come from the pool.
func indexKey(prefix, indexName, value string) []byte {
	buf := indexBase(prefix, indexName)
	return append(buf, value...)
}

// multiIndexKey returns a freshly allocated non-unique index key.
func multiIndexKey(prefix, indexName, value, id string) []byte {
	buf := indexKey(prefix, indexName, value)
	buf = append(buf, multiSep)
	return append(buf, id...)
}

// splitMultiValue splits the part of a non-unique index key after its base
// into the indexed value and the record id.
func splitMultiValue(rest []byte) (value, id string, ok bool) {
	i := bytes.LastIndexByte(rest, multiSep)
	if i < 0 {
		return "", "", false
	}
	return string(rest[:i]), string(rest[i+1:]), true
}

// releaseKey returns a key buffer to the pool for reuse.
// After calling this, the key slice must not be used.
func releaseKey(key []byte) {
	// Avoid keeping oversized buffers in the pool.
	if cap(key) <= 512 {
		keyPool.Put(key[:0]) //nolint:staticcheck // slice header copy is fine here
	}
}
