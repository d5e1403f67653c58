// Package localcache is a bbolt-backed write-through cache, grounded
// directly on db/bolt/bolt.go's bucket-plus-JSON-marshal helper shape.
// It offers an ETag cache and a per-partition slug counter. cmd/ldpserver
// opens and closes the store; no ResourceService implementation or handler
// in this repository calls its ETag or slug methods.
package localcache

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const etagBucket = "etags"
const countersBucket = "counters"

// Store wraps a bbolt database with the two buckets this repository needs.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the cache file at path and ensures both buckets
// exist, mirroring db/bolt.Open followed by CreateBucket.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	s := &Store{db: db}
	for _, bucket := range []string{etagBucket, countersBucket} {
		if err := s.createBucket(bucket); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) createBucket(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", name, err)
		}
		return nil
	})
}

// Close releases the underlying file handle.
func (s *Store) Close() error { return s.db.Close() }

type etagEntry struct {
	ETag     string    `json:"etag"`
	CachedAt time.Time `json:"cachedAt"`
}

// PutETag records the ETag last computed for internalID.
func (s *Store) PutETag(internalID, etag string, now time.Time) error {
	data, err := json.Marshal(etagEntry{ETag: etag, CachedAt: now})
	if err != nil {
		return fmt.Errorf("failed to marshal etag entry: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(etagBucket)).Put([]byte(internalID), data)
	})
}

// GetETag returns the cached ETag for internalID, or ("", false) on a miss.
func (s *Store) GetETag(internalID string) (string, bool) {
	var entry etagEntry
	found := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(etagBucket)).Get([]byte(internalID))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil
		}
		found = true
		return nil
	})
	return entry.ETag, found
}

// InvalidateETag drops the cached ETag for internalID.
func (s *Store) InvalidateETag(internalID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(etagBucket)).Delete([]byte(internalID))
	})
}

// NextSlug atomically increments and returns the server's slug counter for
// a partition. Each partition gets its own nested bucket so counters don't
// collide across partitions.
func (s *Store) NextSlug(partition string) (uint64, error) {
	var next uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		counters := tx.Bucket([]byte(countersBucket))
		b, err := counters.CreateBucketIfNotExists([]byte(partition))
		if err != nil {
			return err
		}
		n, err := b.NextSequence()
		if err != nil {
			return err
		}
		next = n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to allocate slug counter for %s: %w", partition, err)
	}
	return next, nil
}
