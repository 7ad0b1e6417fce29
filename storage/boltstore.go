// Package storage is the reference adapter implementing the persistence
// contract (policy.ContactStore, policy.GrantStore, policy.MessageStore,
// policy.VaultFileStore) against go.etcd.io/bbolt for structured metadata
// and the local filesystem for vault file blobs.
//
// This adapter sits outside the hard core's local-persistence scope, but is
// wired here so the persistence contract has a concrete, testable
// implementation, following node/store/db.go's bucket-per-entity bbolt
// usage.
//
// DB owns the bbolt connection; each of Contacts/Grants/Messages/Files
// returns a thin view satisfying exactly one policy.*Store interface, since
// the four contracts share method names (List, Get) that cannot all live
// on a single Go type.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketContacts = []byte("contacts")
	bucketGrants   = []byte("grants")
	bucketMessages = []byte("messages")
)

// DB owns the bbolt database and the vault's files/ directory.
type DB struct {
	dir string
	db  *bolt.DB
	log *slog.Logger
}

// Open opens (creating if absent) the bbolt database and files directory
// under dataDir.
func Open(dataDir string) (*DB, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("storage: data dir required")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir %s: %w", dataDir, err)
	}
	if err := os.MkdirAll(filepath.Join(dataDir, "files"), 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir files: %w", err)
	}

	path := filepath.Join(dataDir, "kv.db")
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("storage: open bbolt: %w", err)
	}

	d := &DB{dir: dataDir, db: bdb, log: slog.Default()}
	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketContacts, bucketGrants, bucketMessages} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Contacts returns a policy.ContactStore view over this database.
func (d *DB) Contacts() *ContactStore { return &ContactStore{d: d} }

// Grants returns a policy.GrantStore view over this database.
func (d *DB) Grants() *GrantStore { return &GrantStore{d: d} }

// Messages returns a policy.MessageStore view over this database.
func (d *DB) Messages() *MessageStore { return &MessageStore{d: d} }

// Files returns a policy.VaultFileStore view rooted at dataDir/files.
func (d *DB) Files() *VaultFileStore { return &VaultFileStore{root: filepath.Join(d.dir, "files")} }
