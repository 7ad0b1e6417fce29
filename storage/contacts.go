package storage

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/google/uuid"

	"holivault.dev/core/policy"
)

// ContactStore implements policy.ContactStore against a shared DB.
type ContactStore struct{ d *DB }

type contactRecord struct {
	ID        string  `json:"id"`
	Alias     string  `json:"alias"`
	State     int     `json:"state"`
	PubkeyHex string  `json:"pubkey_hex,omitempty"`
	DM        *dmJSON `json:"dm,omitempty"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
}

type dmJSON struct {
	SessionID string `json:"session_id"`
	KeyHex    string `json:"key_hex"`
}

func encodeContact(c policy.Contact) ([]byte, error) {
	rec := contactRecord{
		ID:        c.ID,
		Alias:     c.Alias,
		State:     int(c.State),
		CreatedAt: c.CreatedAt.UnixMilli(),
		UpdatedAt: c.UpdatedAt.UnixMilli(),
	}
	if c.Pubkey != nil {
		rec.PubkeyHex = hex.EncodeToString(c.Pubkey[:])
	}
	if c.DM != nil {
		rec.DM = &dmJSON{SessionID: c.DM.SessionID, KeyHex: hex.EncodeToString(c.DM.Key[:])}
	}
	return json.Marshal(rec)
}

func decodeContact(b []byte) (policy.Contact, error) {
	var rec contactRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return policy.Contact{}, err
	}
	c := policy.Contact{
		ID:        rec.ID,
		Alias:     rec.Alias,
		State:     policy.ContactState(rec.State),
		CreatedAt: time.UnixMilli(rec.CreatedAt),
		UpdatedAt: time.UnixMilli(rec.UpdatedAt),
	}
	if rec.PubkeyHex != "" {
		raw, err := hex.DecodeString(rec.PubkeyHex)
		if err != nil || len(raw) != 32 {
			return policy.Contact{}, fmt.Errorf("storage: bad pubkey hex")
		}
		var pk [32]byte
		copy(pk[:], raw)
		c.Pubkey = &pk
	}
	if rec.DM != nil {
		raw, err := hex.DecodeString(rec.DM.KeyHex)
		if err != nil || len(raw) != 32 {
			return policy.Contact{}, fmt.Errorf("storage: bad dm key hex")
		}
		var key [32]byte
		copy(key[:], raw)
		c.DM = &policy.DMConfig{SessionID: rec.DM.SessionID, Key: key}
	}
	return c, nil
}

func (s *ContactStore) List() ([]policy.Contact, error) {
	var out []policy.Contact
	err := s.d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketContacts).ForEach(func(_, v []byte) error {
			c, err := decodeContact(v)
			if err != nil {
				return err
			}
			out = append(out, c)
			return nil
		})
	})
	return out, err
}

func (s *ContactStore) Add(alias string, pubkey *[32]byte) (policy.Contact, error) {
	now := time.Now()
	c := policy.Contact{
		ID:        uuid.New().String(),
		Alias:     alias,
		State:     policy.ContactActive,
		Pubkey:    pubkey,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b, err := encodeContact(c)
	if err != nil {
		return policy.Contact{}, err
	}
	err = s.d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketContacts).Put([]byte(c.ID), b)
	})
	if err != nil {
		return policy.Contact{}, err
	}
	return c, nil
}

func (s *ContactStore) mutate(id string, fn func(*policy.Contact)) error {
	return s.d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketContacts)
		v := b.Get([]byte(id))
		if v == nil {
			return fmt.Errorf("storage: contact %q not found", id)
		}
		c, err := decodeContact(v)
		if err != nil {
			return err
		}
		fn(&c)
		c.UpdatedAt = time.Now()
		enc, err := encodeContact(c)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), enc)
	})
}

func (s *ContactStore) BindPubkey(id string, pubkey [32]byte) error {
	return s.mutate(id, func(c *policy.Contact) { c.Pubkey = &pubkey })
}

func (s *ContactStore) SetDM(id string, dm policy.DMConfig) error {
	return s.mutate(id, func(c *policy.Contact) { c.DM = &dm })
}

func (s *ContactStore) Rename(id, alias string) error {
	return s.mutate(id, func(c *policy.Contact) { c.Alias = alias })
}

func (s *ContactStore) SetState(id string, state policy.ContactState) error {
	return s.mutate(id, func(c *policy.Contact) { c.State = state })
}

// Remove deletes the contact record outright — the kill-switch. There is
// no tombstone: once gone, any pairwise key material it carried (DM.Key)
// is gone with it.
func (s *ContactStore) Remove(id string) error {
	return s.d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketContacts).Delete([]byte(id))
	})
}
