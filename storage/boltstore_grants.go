package storage

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"holivault.dev/core/policy"
)

// GrantStore implements policy.GrantStore against a shared DB.
type GrantStore struct{ d *DB }

// MessageStore implements policy.MessageStore against a shared DB.
type MessageStore struct{ d *DB }

type grantRecord struct {
	ProjectID      string   `json:"project_id"`
	AllowedPubkeys []string `json:"allowed_pubkeys"`
	AutoAdmit      bool     `json:"auto_admit"`
	CreatedAt      int64    `json:"created_at"`
	UpdatedAt      int64    `json:"updated_at"`
}

func encodeGrant(g policy.ProjectGrant) ([]byte, error) {
	rec := grantRecord{
		ProjectID: g.ProjectID,
		AutoAdmit: g.AutoAdmit,
		CreatedAt: g.CreatedAt.UnixMilli(),
		UpdatedAt: g.UpdatedAt.UnixMilli(),
	}
	for pk := range g.AllowedPubkeys {
		rec.AllowedPubkeys = append(rec.AllowedPubkeys, hex.EncodeToString(pk[:]))
	}
	return json.Marshal(rec)
}

func decodeGrant(b []byte) (policy.ProjectGrant, error) {
	var rec grantRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return policy.ProjectGrant{}, err
	}
	g := policy.ProjectGrant{
		ProjectID:      rec.ProjectID,
		AutoAdmit:      rec.AutoAdmit,
		AllowedPubkeys: make(map[[32]byte]struct{}, len(rec.AllowedPubkeys)),
		CreatedAt:      time.UnixMilli(rec.CreatedAt),
		UpdatedAt:      time.UnixMilli(rec.UpdatedAt),
	}
	for _, h := range rec.AllowedPubkeys {
		raw, err := hex.DecodeString(h)
		if err != nil || len(raw) != 32 {
			return policy.ProjectGrant{}, fmt.Errorf("storage: bad allowed pubkey hex")
		}
		var pk [32]byte
		copy(pk[:], raw)
		g.AllowedPubkeys[pk] = struct{}{}
	}
	return g, nil
}

func (s *GrantStore) Get(projectID string) (policy.ProjectGrant, bool, error) {
	var out policy.ProjectGrant
	var found bool
	err := s.d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketGrants).Get([]byte(projectID))
		if v == nil {
			return nil
		}
		g, err := decodeGrant(v)
		if err != nil {
			return err
		}
		out, found = g, true
		return nil
	})
	return out, found, err
}

func (s *GrantStore) mutateGrant(projectID string, fn func(*policy.ProjectGrant)) error {
	return s.d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketGrants)
		now := time.Now()
		var g policy.ProjectGrant
		if v := b.Get([]byte(projectID)); v != nil {
			var err error
			g, err = decodeGrant(v)
			if err != nil {
				return err
			}
		} else {
			g = policy.ProjectGrant{ProjectID: projectID, AllowedPubkeys: map[[32]byte]struct{}{}, CreatedAt: now}
		}
		fn(&g)
		g.UpdatedAt = now
		enc, err := encodeGrant(g)
		if err != nil {
			return err
		}
		return b.Put([]byte(projectID), enc)
	})
}

func (s *GrantStore) Allow(projectID string, pubkey [32]byte) error {
	return s.mutateGrant(projectID, func(g *policy.ProjectGrant) {
		if g.AllowedPubkeys == nil {
			g.AllowedPubkeys = map[[32]byte]struct{}{}
		}
		g.AllowedPubkeys[pubkey] = struct{}{}
	})
}

func (s *GrantStore) RemoveAllow(projectID string, pubkey [32]byte) error {
	return s.mutateGrant(projectID, func(g *policy.ProjectGrant) {
		delete(g.AllowedPubkeys, pubkey)
	})
}

// SetAutoAdmit is idempotent: calling it twice with the same value leaves
// only the second call's UpdatedAt.
func (s *GrantStore) SetAutoAdmit(projectID string, on bool) error {
	return s.mutateGrant(projectID, func(g *policy.ProjectGrant) {
		g.AutoAdmit = on
	})
}

func (s *GrantStore) RemoveGrant(projectID string) error {
	return s.d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketGrants).Delete([]byte(projectID))
	})
}

// --- MessageStore ---

type messageRecord struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Sender    string `json:"sender"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

func messageKey(projectID, id string) []byte {
	return []byte(projectID + "/" + id)
}

func (s *MessageStore) Save(m policy.Message) error {
	rec := messageRecord{
		ID: m.ID, ProjectID: m.ProjectID, Sender: m.Sender,
		Type: m.Type, Content: m.Content, Timestamp: m.Timestamp.UnixMilli(),
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMessages).Put(messageKey(m.ProjectID, m.ID), b)
	})
}

// List returns all messages stored for projectID, ordered by key, that is
// by the byte order of the caller-supplied message IDs (bbolt keeps keys
// sorted). This is insertion order only when the IDs themselves sort by
// creation time.
func (s *MessageStore) List(projectID string) ([]policy.Message, error) {
	prefix := []byte(projectID + "/")
	var out []policy.Message
	err := s.d.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketMessages).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var rec messageRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, policy.Message{
				ID: rec.ID, ProjectID: rec.ProjectID, Sender: rec.Sender,
				Type: rec.Type, Content: rec.Content, Timestamp: time.UnixMilli(rec.Timestamp),
			})
		}
		return nil
	})
	return out, err
}
