package rendezvous

// DefaultHandshakeTimeoutMS bounds how long a joiner waits in the capability
// room for the inviter's contact-info before giving up.
const DefaultHandshakeTimeoutMS = 30_000

// Role distinguishes the two FriendHandshake participants. The inviter
// pre-generates the dm config and is authoritative over it; the joiner
// contributes nothing beyond its own identity.
type Role int

const (
	RoleInviter Role = iota
	RoleJoiner
)

// FriendHandshake runs component C8: two peers meet in a capability-token
// room, each announces a contact-info message on join, and the first
// accepted exchange produces an Accepted outcome carrying the dm config the
// host persists as a new Contact.
//
// FriendHandshake never touches a Room itself. The host wires
// Room.OnPeerJoin to OnPeerJoined and Room.On("contact-info", ...) to
// OnContactInfo, sending whatever payload each method returns.
type FriendHandshake struct {
	role        Role
	self        Identity
	dm          *DM // set only for RoleInviter
	timeoutMS   int64
	createdAtMS int64
	done        bool
}

// NewFriendHandshake constructs a handshake for one side of the room. dm
// must be non-nil for RoleInviter (the inviter pre-generates it before
// minting the room token) and is ignored for RoleJoiner.
func NewFriendHandshake(role Role, self Identity, dm *DM, nowMS int64) (*FriendHandshake, error) {
	if role == RoleInviter && dm == nil {
		return nil, fmtErrorf("rendezvous: inviter must pre-generate a dm config")
	}
	return &FriendHandshake{
		role:        role,
		self:        self,
		dm:          dm,
		timeoutMS:   DefaultHandshakeTimeoutMS,
		createdAtMS: nowMS,
	}, nil
}

// OnPeerJoined is the room's on_peer_join callback: it returns the
// contact-info payload to send (addressed to peer, not broadcast). A nil
// payload with a nil error means "nothing to send" — the handshake already
// concluded.
func (h *FriendHandshake) OnPeerJoined(peer string) ([]byte, error) {
	if h.done {
		return nil, nil
	}
	info := ContactInfo{Pubkey: h.self.Pubkey, Name: h.self.Name}
	if h.role == RoleInviter {
		info.DM = h.dm
	}
	return encodeContactInfo(info)
}

// OnContactInfo processes an inbound contact-info message. The first one
// accepted wins; later joins or duplicate messages are ignored (nil, nil).
// A joiner that receives a contact-info with no dm reports
// HandshakeMissingDmError — the inviter's message is malformed or stale.
func (h *FriendHandshake) OnContactInfo(peer string, payload []byte) (*Accepted, error) {
	if h.done {
		return nil, nil
	}
	info, err := decodeContactInfo(payload)
	if err != nil {
		return nil, err
	}

	if h.role == RoleJoiner {
		if info.DM == nil {
			return nil, &HandshakeMissingDmError{}
		}
		h.done = true
		return &Accepted{Peer: peer, Pubkey: info.Pubkey, Name: info.Name, DM: *info.DM}, nil
	}

	// Inviter is authoritative over the dm: its own pre-generated config is
	// what gets persisted, regardless of anything the joiner's message
	// claims to carry.
	h.done = true
	return &Accepted{Peer: peer, Pubkey: info.Pubkey, Name: info.Name, DM: *h.dm}, nil
}

// Tick reports a timeout once a joiner has waited past timeoutMS with no
// accepted exchange. The inviter has no timeout: it keeps listening on the
// room until the host explicitly leaves it.
func (h *FriendHandshake) Tick(nowMS int64) error {
	if h.role != RoleJoiner || h.done {
		return nil
	}
	if nowMS-h.createdAtMS > h.timeoutMS {
		return &HandshakeTimeoutError{}
	}
	return nil
}

// Done reports whether an Accepted outcome has already been produced.
func (h *FriendHandshake) Done() bool { return h.done }
