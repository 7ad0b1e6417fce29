// Package policy implements pure decision functions over persisted contact
// and grant state, plus the persistence-contract types the core reads and
// writes through. Nothing in this package performs network I/O. The host
// evaluates these functions against whatever a ContactStore/GrantStore
// implementation currently reports and passes the results to VaultLobby,
// which itself only uses the ContactState type.
package policy

import "time"

// ContactState is the lifecycle state of a Contact.
type ContactState int

const (
	ContactUnknown ContactState = iota
	ContactActive
	ContactPaused
	ContactBlocked
)

func (s ContactState) String() string {
	switch s {
	case ContactActive:
		return "active"
	case ContactPaused:
		return "paused"
	case ContactBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// DMConfig is the session identity + key a Contact uses for direct
// messaging, established once by FriendHandshake (C8) and never
// renegotiated afterward.
type DMConfig struct {
	SessionID string
	Key       [32]byte
}

// Contact is one entry in the persisted address book. A Contact with a nil
// Pubkey is local-only; with a Pubkey and DM set, it is DM-capable.
type Contact struct {
	ID        string
	Alias     string
	State     ContactState
	Pubkey    *[32]byte
	DM        *DMConfig
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectGrant records which pubkeys may join a vault's lobby and whether
// matching knocks are admitted automatically.
type ProjectGrant struct {
	ProjectID      string
	AllowedPubkeys map[[32]byte]struct{}
	AutoAdmit      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Message is one persisted chat/file-event record.
type Message struct {
	ID        string
	ProjectID string
	Sender    string
	Type      string
	Content   string
	Timestamp time.Time
}

// ManifestEntry is one file's metadata in a vault file listing.
type ManifestEntry struct {
	Path         string
	Size         uint64
	ContentType  string
	LastModified time.Time
}

// Manifest is a snapshot of a vault's file listing, exchanged over the
// `manifest`/`sync` rendezvous actions to let two replicas reconcile
// missing files.
type Manifest struct {
	Files       []ManifestEntry
	GeneratedAt time.Time
}
