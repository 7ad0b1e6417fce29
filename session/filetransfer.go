package session

import (
	"holivault.dev/core/wire"
)

// Defaults for component C5.
const (
	DefaultAcceptTimeoutMS    = 10_000
	DefaultAutoAcceptMaxBytes = 50 << 20 // 50 MiB
	MaxChunks                 = 1 << 28
)

type outState int

const (
	outAwaitAccept outState = iota
	outStreaming
	outDone
	outAborted
)

type inState int

const (
	inDeciding inState = iota
	inReceiving
	inDone
	inAborted
)

type outgoingTransfer struct {
	meta           wire.FileOffer
	data           []byte
	state          outState
	nextChunkIndex uint64
	offset         uint64
	createdAtMS    int64
}

type incomingTransfer struct {
	meta          wire.FileOffer
	state         inState
	receivedBytes uint64
	buf           []byte
	nextChunk     uint64
}

// FileDecision lets a caller decide accept/reject for an inbound offer. A
// nil decision function falls back to the auto-accept policy
// (size <= AutoAcceptMaxBytes).
type FileDecision func(wire.FileOffer) (accept bool, reason string)

type fileTransferEngine struct {
	out      map[wire.TransferID]*outgoingTransfer
	outOrder []wire.TransferID
	in       map[wire.TransferID]*incomingTransfer

	acceptTimeoutMS    int64
	autoAcceptMaxBytes uint64
	decide             FileDecision
	// manual, when true, defers every inbound offer's decision to an
	// explicit AcceptFile/RejectFile call from the host instead of the
	// decide callback or the size-based auto-accept policy.
	manual bool
}

func newFileTransferEngine(acceptTimeoutMS int64, autoAcceptMaxBytes uint64, decide FileDecision, manual bool) *fileTransferEngine {
	return &fileTransferEngine{
		out:                map[wire.TransferID]*outgoingTransfer{},
		in:                 map[wire.TransferID]*incomingTransfer{},
		acceptTimeoutMS:    acceptTimeoutMS,
		autoAcceptMaxBytes: autoAcceptMaxBytes,
		decide:             decide,
		manual:             manual,
	}
}

// offer starts an outgoing transfer and returns the FileOffer frame to send.
func (e *fileTransferEngine) offer(meta wire.FileOffer, data []byte, nowMS int64) (wire.Frame, error) {
	if _, exists := e.out[meta.ID]; exists {
		return wire.Frame{}, &ProtocolError{Detail: "duplicate outbound transfer id"}
	}
	if meta.Size > 0 && (meta.Size+wire.ChunkMax-1)/wire.ChunkMax > MaxChunks {
		return wire.Frame{}, &ProtocolError{Detail: "offer implies too many chunks"}
	}
	payload, err := wire.EncodeFileOffer(meta)
	if err != nil {
		return wire.Frame{}, err
	}
	e.out[meta.ID] = &outgoingTransfer{meta: meta, data: data, state: outAwaitAccept, createdAtMS: nowMS}
	e.outOrder = append(e.outOrder, meta.ID)
	return wire.Frame{Type: wire.TypeFileOffer, Payload: payload}, nil
}

// onOffer handles an inbound FileOffer: it records the transfer and returns
// the frame (Accept or Reject) the receiver sends back. When the engine is
// in manual mode, no frame is produced yet and the host must follow up with
// AcceptFile/RejectFile once it has a decision.
func (e *fileTransferEngine) onOffer(meta wire.FileOffer) (*wire.Frame, error) {
	if _, exists := e.in[meta.ID]; exists {
		return nil, &ProtocolError{Detail: "duplicate inbound transfer id"}
	}
	if meta.Size > 0 && (meta.Size+wire.ChunkMax-1)/wire.ChunkMax > MaxChunks {
		return nil, &ProtocolError{Detail: "offer implies too many chunks"}
	}

	t := &incomingTransfer{meta: meta, state: inDeciding}
	e.in[meta.ID] = t

	if e.manual {
		return nil, nil
	}

	accept, reason := e.decision(meta)
	return e.applyDecision(t, accept, reason)
}

func (e *fileTransferEngine) applyDecision(t *incomingTransfer, accept bool, reason string) (*wire.Frame, error) {
	if !accept {
		t.state = inAborted
		payload, err := wire.EncodeFileReject(wire.FileReject{ID: t.meta.ID, Reason: reason})
		if err != nil {
			return nil, err
		}
		return &wire.Frame{Type: wire.TypeFileReject, Payload: payload}, nil
	}
	t.state = inReceiving
	payload, err := wire.EncodeFileAccept(wire.FileAccept{ID: t.meta.ID})
	if err != nil {
		return nil, err
	}
	return &wire.Frame{Type: wire.TypeFileAccept, Payload: payload}, nil
}

// acceptFile and rejectFile resolve a manual-mode pending decision.
func (e *fileTransferEngine) acceptFile(id wire.TransferID) (*wire.Frame, error) {
	t, ok := e.in[id]
	if !ok || t.state != inDeciding {
		return nil, &ProtocolError{Detail: "accept_file for transfer not pending a decision"}
	}
	return e.applyDecision(t, true, "")
}

func (e *fileTransferEngine) rejectFile(id wire.TransferID, reason string) (*wire.Frame, error) {
	t, ok := e.in[id]
	if !ok || t.state != inDeciding {
		return nil, &ProtocolError{Detail: "reject_file for transfer not pending a decision"}
	}
	return e.applyDecision(t, false, reason)
}

func (e *fileTransferEngine) decision(meta wire.FileOffer) (bool, string) {
	if e.decide != nil {
		return e.decide(meta)
	}
	if meta.Size <= e.autoAcceptMaxBytes {
		return true, ""
	}
	return false, "File too large"
}

// onAccept handles an inbound FileAccept for one of our outgoing transfers.
// If the transfer no longer exists (it was locally cancelled already), the
// late accept is answered with a synthesized Reject rather than an error.
func (e *fileTransferEngine) onAccept(id wire.TransferID) (*wire.Frame, error) {
	t, ok := e.out[id]
	if !ok || t.state == outAborted {
		payload, err := wire.EncodeFileReject(wire.FileReject{ID: id, Reason: "transfer no longer offered"})
		if err != nil {
			return nil, err
		}
		return &wire.Frame{Type: wire.TypeFileReject, Payload: payload}, nil
	}
	if t.state != outAwaitAccept {
		return nil, &ProtocolError{Detail: "accept for transfer not awaiting one"}
	}
	t.state = outStreaming
	return nil, nil
}

// onReject handles an inbound FileReject for one of our outgoing transfers.
func (e *fileTransferEngine) onReject(id wire.TransferID, reason string) (Event, error) {
	t, ok := e.out[id]
	if !ok {
		return Event{}, &ProtocolError{Detail: "reject for unknown transfer"}
	}
	t.state = outAborted
	return Event{Kind: EventFileRejected, TransferID: id, Reason: reason}, nil
}

// onChunk handles an inbound FileChunk. A gap, duplicate, or overflow is
// fatal: the caller should close the whole session.
func (e *fileTransferEngine) onChunk(c wire.FileChunk) (*Event, error) {
	t, ok := e.in[c.ID]
	if !ok || t.state != inReceiving {
		return nil, &ProtocolError{Detail: "chunk for transfer not receiving"}
	}
	if c.ChunkIndex != t.nextChunk {
		t.state = inAborted
		return nil, &ProtocolError{Detail: "out-of-order chunk index"}
	}
	if t.receivedBytes+uint64(len(c.Bytes)) > t.meta.Size {
		t.state = inAborted
		return nil, &ProtocolError{Detail: "transfer exceeds offered size"}
	}
	t.buf = append(t.buf, c.Bytes...)
	t.receivedBytes += uint64(len(c.Bytes))
	t.nextChunk++
	return &Event{Kind: EventFileProgress, TransferID: c.ID, ReceivedBytes: t.receivedBytes, Meta: t.meta}, nil
}

// onEnd handles an inbound FileEnd, completing the receiver-side transfer.
func (e *fileTransferEngine) onEnd(id wire.TransferID) (Event, error) {
	t, ok := e.in[id]
	if !ok || t.state == inDone {
		return Event{}, &ProtocolError{Detail: "duplicate or unknown FileEnd"}
	}
	if t.state != inReceiving {
		return Event{}, &ProtocolError{Detail: "FileEnd for transfer not receiving"}
	}
	t.state = inDone
	return Event{Kind: EventFileReceived, TransferID: id, Meta: t.meta, Data: t.buf}, nil
}

// cancel implements cancel_file: idempotent, sender or receiver side.
func (e *fileTransferEngine) cancel(id wire.TransferID) *wire.Frame {
	if t, ok := e.out[id]; ok {
		if t.state == outAwaitAccept || t.state == outStreaming {
			t.state = outAborted
			payload, _ := wire.EncodeFileReject(wire.FileReject{ID: id, Reason: "user aborted"})
			return &wire.Frame{Type: wire.TypeFileReject, Payload: payload}
		}
		return nil
	}
	if t, ok := e.in[id]; ok {
		if t.state == inDeciding || t.state == inReceiving {
			t.state = inAborted
			payload, _ := wire.EncodeFileReject(wire.FileReject{ID: id, Reason: "user aborted"})
			return &wire.Frame{Type: wire.TypeFileReject, Payload: payload}
		}
	}
	return nil
}

// tick scans outgoing transfers for an elapsed accept timeout, synthesizing
// a local reject for each one found.
func (e *fileTransferEngine) tick(nowMS int64) []Event {
	var events []Event
	for _, id := range e.outOrder {
		t := e.out[id]
		if t.state != outAwaitAccept {
			continue
		}
		if nowMS-t.createdAtMS > e.acceptTimeoutMS {
			t.state = outAborted
			events = append(events, Event{Kind: EventFileRejected, TransferID: id, Reason: "accept timeout"})
		}
	}
	return events
}

// nextChunkFrame produces the next outbound frame across streaming
// transfers (a FileChunk, or FileEnd once a transfer's data is exhausted),
// honoring backpressure. It returns nil when there is nothing to send.
func (e *fileTransferEngine) nextChunkFrame(canSend func() bool) (*wire.Frame, error) {
	for _, id := range e.outOrder {
		t := e.out[id]
		if t.state != outStreaming {
			continue
		}
		if t.offset >= uint64(len(t.data)) {
			t.state = outDone
			payload, err := wire.EncodeFileEnd(wire.FileEnd{ID: id})
			if err != nil {
				return nil, err
			}
			return &wire.Frame{Type: wire.TypeFileEnd, Payload: payload}, nil
		}
		if !canSend() {
			continue
		}
		end := t.offset + wire.ChunkMax
		if end > uint64(len(t.data)) {
			end = uint64(len(t.data))
		}
		chunk := wire.FileChunk{ID: id, ChunkIndex: t.nextChunkIndex, Bytes: t.data[t.offset:end]}
		payload, err := wire.EncodeFileChunk(chunk)
		if err != nil {
			return nil, err
		}
		t.offset = end
		t.nextChunkIndex++
		return &wire.Frame{Type: wire.TypeFileChunk, Payload: payload}, nil
	}
	return nil, nil
}

// abortAll tears down every in-flight transfer on session close, producing
// an EventFileAborted for any inbound transfer still deciding or receiving.
func (e *fileTransferEngine) abortAll() []Event {
	var events []Event
	for id, t := range e.in {
		if t.state == inReceiving || t.state == inDeciding {
			events = append(events, Event{Kind: EventFileAborted, TransferID: id, Meta: t.meta})
		}
	}
	return events
}
