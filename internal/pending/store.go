// Package pending persists provisional send receipts whose permanent
// Message-ID could not be resolved before the retry budget ran out. A later
// `reconcile` run retries them against the live mailbox, so a slow remote
// index no longer makes a row permanently unreachable for replies.
package pending

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var bucketPending = []byte("pending_reconcile")

// Entry is one unresolved receipt, keyed back to its sheet row.
type Entry struct {
	ID        string    `json:"id"`
	Row       int       `json:"row"`
	Email     string    `json:"email"`
	GmailID   string    `json:"gmail_id"`
	ThreadID  string    `json:"thread_id"`
	Subject   string    `json:"subject"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists pending entries in BoltDB.
type Store struct {
	db *bolt.DB
}

// NewStore creates the pending bucket if needed.
func NewStore(db *bolt.DB) (*Store, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPending)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pending bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Put saves an entry, assigning an id on first save.
func (s *Store) Put(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
		e.CreatedAt = time.Now()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal pending entry: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPending).Put([]byte(e.ID), data)
	})
}

// List returns all pending entries ordered by row.
func (s *Store) List(ctx context.Context) ([]*Entry, error) {
	var entries []*Entry

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketPending).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			entries = append(entries, &e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Row < entries[j].Row })
	return entries, nil
}

// Delete removes a resolved entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPending).Delete([]byte(id))
	})
}
