// Package rendezvous implements the two short-lived signaling state
// machines that bootstrap a Session: FriendHandshake (C8), exchanging
// contact cards over a capability-token room, and VaultLobby (C9), the
// public-room knock/admit choreography gating a project vault.
//
// Neither machine touches a transport directly. Both are driven by the host
// feeding room events in (OnPeerJoined, OnMessage-style methods) and acting
// on the values they return (a payload to send, an outcome to apply) —
// the same ordered-event-stream shape as session.Session, following
// node/p2p/handshake.go's request/response exchange but recast as
// synchronous return values instead of blocked reads on a net.Conn.
package rendezvous

import "fmt"

// Room is the pub/sub rendezvous contract a host implements over its
// transport (the untrusted broadcast bus named in the overview). peer=""
// in Send means broadcast to the whole room.
type Room interface {
	Send(action string, payload []byte, peer string) error
	On(action string, handler func(payload []byte, peer string))
	OnPeerJoin(handler func(peer string))
	OnPeerLeave(handler func(peer string))
	Leave() error
}

// Identity is the contact card a peer presents during FriendHandshake.
type Identity struct {
	Pubkey [32]byte
	Name   string
}

// DM is the session identity + key FriendHandshake establishes once and
// hands to the persistence layer via policy.DMConfig.
type DM struct {
	SessionID string
	Key       [32]byte
}

// ContactInfo is the handshake message exchanged over the rendezvous room.
// DM is only present when the inviter sends it; a joiner's contact-info
// never carries one.
type ContactInfo struct {
	Pubkey [32]byte
	Name   string
	DM     *DM
}

// Accepted is FriendHandshake's terminal outcome: the peer's identity plus
// the dm config the host should persist against it.
type Accepted struct {
	Peer   string
	Pubkey [32]byte
	Name   string
	DM     DM
}

// Knock is the message a guest sends into a vault's public lobby room.
type Knock struct {
	Pubkey [32]byte
	Name   string
}

// HandshakeMissingDmError is returned when a joiner receives a contact-info
// message lacking a dm — the inviter's peer is misbehaving or stale.
type HandshakeMissingDmError struct{}

func (e *HandshakeMissingDmError) Error() string { return "rendezvous: contact-info missing dm" }

// HandshakeTimeoutError is returned by a joiner's Tick once the rendezvous
// has run past its timeout without an accepted contact-info.
type HandshakeTimeoutError struct{}

func (e *HandshakeTimeoutError) Error() string { return "rendezvous: handshake timed out" }

// AdmitAuthorityError is returned by OnKnock on a guest-role lobby: only the
// host role handles knocks and admits. (Admit on a guest-role lobby panics
// instead of returning this error.)
type AdmitAuthorityError struct{}

func (e *AdmitAuthorityError) Error() string { return "rendezvous: only the host role may admit" }

func fmtErrorf(format string, args ...any) error { return fmt.Errorf(format, args...) }
