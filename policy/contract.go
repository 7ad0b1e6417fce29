package policy

// ContactStore is the persistence contract the core invokes for contact
// operations. Implementations own durability; the core only reads and
// requests mutations.
type ContactStore interface {
	List() ([]Contact, error)
	Add(alias string, pubkey *[32]byte) (Contact, error)
	BindPubkey(id string, pubkey [32]byte) error
	SetDM(id string, dm DMConfig) error
	Rename(id, alias string) error
	SetState(id string, state ContactState) error
	// Remove is the kill-switch: it MUST delete any pairwise key material
	// along with the record, making future authenticated traffic under
	// that relationship impossible.
	Remove(id string) error
}

// GrantStore is the persistence contract for per-project access grants.
type GrantStore interface {
	Get(projectID string) (ProjectGrant, bool, error)
	Allow(projectID string, pubkey [32]byte) error
	RemoveAllow(projectID string, pubkey [32]byte) error
	SetAutoAdmit(projectID string, on bool) error
	RemoveGrant(projectID string) error
}

// MessageStore persists chat/file-event records for history/replay.
type MessageStore interface {
	Save(Message) error
	List(projectID string) ([]Message, error)
}

// VaultFileStore persists a project's files. Every path passed in MUST
// already have been through SanitizeRelPath by the caller — this contract
// does not re-validate it; path sanitization is the persistence adapter's
// job, not the core's.
type VaultFileStore interface {
	Save(projectID string, relPath string, blob []byte) error
	Read(projectID string, relPath string) ([]byte, error)
	List(projectID string) ([]string, error)
}
