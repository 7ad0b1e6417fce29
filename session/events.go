// Package session assembles the wire codec, the encrypted envelope, the
// chat and file-transfer engines, backpressure, and the heartbeat keeper
// into the one-to-one keyed channel a caller drives over an already-open
// ordered byte duplex (components C3-C7).
//
// Follows the shape of the node/p2p peer state machine: Session plays the
// role of one peer connection, HandleIncoming plays the role of peer.go's
// per-message dispatch, but returns an ordered event slice instead of
// invoking callbacks — every inbound byte chunk produces a deterministic,
// replayable list of outcomes instead of mutating shared peer state in
// place.
package session

import (
	"holivault.dev/core/wire"
)

// EventKind tags the variant carried by an Event.
type EventKind int

const (
	EventMessage EventKind = iota
	EventFileOffered
	EventFileProgress
	EventFileReceived
	EventFileRejected
	EventFileAborted
	EventDisconnected
	EventEncryptionMismatch
	EventEncryptionError
	EventProtocolError
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventFileOffered:
		return "file_offered"
	case EventFileProgress:
		return "file_progress"
	case EventFileReceived:
		return "file_received"
	case EventFileRejected:
		return "file_rejected"
	case EventFileAborted:
		return "file_aborted"
	case EventDisconnected:
		return "disconnected"
	case EventEncryptionMismatch:
		return "encryption_mismatch"
	case EventEncryptionError:
		return "encryption_error"
	case EventProtocolError:
		return "protocol_error"
	default:
		return "unknown"
	}
}

// Sender distinguishes a Message event's origin.
type Sender int

const (
	SenderSelf Sender = iota
	SenderPeer
)

// DisconnectReason explains why a session closed.
type DisconnectReason int

const (
	ReasonTransportClosed DisconnectReason = iota
	ReasonSilent
	ReasonExplicit
)

func (r DisconnectReason) String() string {
	switch r {
	case ReasonTransportClosed:
		return "transport_closed"
	case ReasonSilent:
		return "silent"
	case ReasonExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// Event is one outcome of HandleIncoming, Tick, or a send_* call. Only the
// fields relevant to Kind are populated; the rest are zero.
type Event struct {
	Kind EventKind

	// EventMessage
	Sender Sender
	Text   string

	// EventFileProgress, EventFileReceived, EventFileRejected, EventFileAborted
	TransferID     wire.TransferID
	Meta           wire.FileOffer
	ReceivedBytes  uint64
	Data           []byte
	Reason         string

	// EventDisconnected
	DisconnectReason DisconnectReason
	Detail           string

	// EventEncryptionError, EventProtocolError
	Err error
}
