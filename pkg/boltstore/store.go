// Package boltstore is a bbolt-backed ignore store for single-user setups
// that do not want a SQLite file.
package boltstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/shunichi-ikebuchi/card-reconciler/pkg/model"
)

// ErrInvalidKey is returned when a card name or id cannot be used as a key.
var ErrInvalidKey = errors.New("invalid key")

// BucketIgnored holds one nested bucket per card and competency.
const BucketIgnored = "ignored"

// ignoredRecord is the value stored for each ignored id.
type ignoredRecord struct {
	IgnoredAt time.Time `json:"ignoredAt"`
}

// Store wraps a bbolt database.
type Store struct {
	db *bolt.DB
}

// New opens the database at dbPath and initializes buckets.
func New(dbPath string) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(BucketIgnored)); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", BucketIgnored, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func sessionKey(cardName string, competency model.Competency) ([]byte, error) {
	if cardName == "" || competency.IsZero() {
		return nil, ErrInvalidKey
	}
	return []byte(competency.String() + "/" + cardName), nil
}

// GetIgnoredIDs returns the ignored ids of a card for one competency, sorted.
func (s *Store) GetIgnoredIDs(ctx context.Context, cardName string, competency model.Competency) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := sessionKey(cardName, competency)
	if err != nil {
		return nil, err
	}

	var ids []string
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketIgnored)).Bucket(key)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get ignored ids: %w", err)
	}

	// bbolt iterates keys in byte order already; sort keeps the contract explicit.
	sort.Strings(ids)
	return ids, nil
}

// AddIgnoredID records an ignored id.
func (s *Store) AddIgnoredID(ctx context.Context, cardName string, competency model.Competency, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := sessionKey(cardName, competency)
	if err != nil {
		return err
	}
	if id == "" {
		return ErrInvalidKey
	}

	data, err := json.Marshal(ignoredRecord{IgnoredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket([]byte(BucketIgnored)).CreateBucketIfNotExists(key)
		if err != nil {
			return fmt.Errorf("failed to create session bucket: %w", err)
		}
		if b.Get([]byte(id)) != nil {
			return nil
		}
		return b.Put([]byte(id), data)
	})
}

// RemoveIgnoredID deletes an ignored id. Removing an absent id is a no-op.
func (s *Store) RemoveIgnoredID(ctx context.Context, cardName string, competency model.Competency, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := sessionKey(cardName, competency)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketIgnored)).Bucket(key)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(id))
	})
}

// IgnoredAt returns when an id was ignored.
func (s *Store) IgnoredAt(cardName string, competency model.Competency, id string) (time.Time, bool, error) {
	key, err := sessionKey(cardName, competency)
	if err != nil {
		return time.Time{}, false, err
	}

	var rec ignoredRecord
	var found bool
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketIgnored)).Bucket(key)
		if b == nil {
			return nil
		}
		data := b.Get([]byte(id))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read ignored id: %w", err)
	}

	return rec.IgnoredAt, found, nil
}
