package session

import (
	"fmt"

	"holivault.dev/core/wire"
)

// ProtocolError is fatal to the session carrying it: out-of-order/duplicate
// file chunks, a duplicate FileOffer id, or a second FileEnd for the same
// transfer.
type ProtocolError struct {
	Detail string
}

func (e *ProtocolError) Error() string { return fmt.Sprintf("session: protocol error: %s", e.Detail) }

// TransferError describes a file-transfer outcome that is not a protocol
// violation: a reject, a local cancel, or an accept timeout. No Session
// method returns it: OfferFile returns as soon as the offer is queued, and
// rejects and accept timeouts reach the sender as EventFileRejected events.
type TransferError struct {
	ID     wire.TransferID
	Reason string
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("session: transfer %x: %s", e.ID, e.Reason)
}

// ClosedError is returned by send_* calls made after Close.
type ClosedError struct{}

func (e *ClosedError) Error() string { return "session: closed" }
