package session

import (
	"fmt"

	"holivault.dev/core/crypto"
	"holivault.dev/core/envelope"
	"holivault.dev/core/wire"
)

// Options configures a new Session. The zero value uses every protocol
// default.
type Options struct {
	Codec wire.Codec

	HeartbeatPeriodMS  int64
	HeartbeatTimeoutMS int64

	AcceptTimeoutMS    int64
	AutoAcceptMaxBytes uint64
	FileDecision       FileDecision
	ManualFileAccept   bool
}

func (o Options) withDefaults() Options {
	if o.HeartbeatPeriodMS == 0 {
		o.HeartbeatPeriodMS = DefaultHeartbeatPeriod
	}
	if o.HeartbeatTimeoutMS == 0 {
		o.HeartbeatTimeoutMS = DefaultHeartbeatTimeout
	}
	if o.AcceptTimeoutMS == 0 {
		o.AcceptTimeoutMS = DefaultAcceptTimeoutMS
	}
	if o.AutoAcceptMaxBytes == 0 {
		o.AutoAcceptMaxBytes = DefaultAutoAcceptMaxBytes
	}
	return o
}

// Session is the one-to-one keyed channel a caller drives over an
// already-open ordered byte duplex (components C3-C7). It owns no transport:
// the host feeds it inbound bytes via HandleIncoming and drains outbound
// bytes via PollOutgoing.
type Session struct {
	codec wire.Codec
	box   *envelope.Box

	readBuf []byte
	outbox  []wire.Frame

	chat  chatEngine
	files *fileTransferEngine
	hb    *heartbeatKeeper
	bp    backpressure

	lastTickMS int64
	closed     bool
}

// New constructs a pre-key Session. Call InstallKey before sending or
// receiving any non-heartbeat frame.
func New(opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{
		codec: opts.Codec,
		files: newFileTransferEngine(opts.AcceptTimeoutMS, opts.AutoAcceptMaxBytes, opts.FileDecision, opts.ManualFileAccept),
		hb:    newHeartbeatKeeper(opts.HeartbeatPeriodMS, opts.HeartbeatTimeoutMS),
	}
}

// InstallKey provisions the session's AEAD key. Session-key negotiation
// itself is out of scope: the caller supplies 32 already-agreed bytes,
// typically derived from a capability token or a higher-layer key exchange.
func (s *Session) InstallKey(aead crypto.AEADProvider, key []byte) error {
	box, err := envelope.NewBox(aead, key, s.codec)
	if err != nil {
		return err
	}
	s.box = box
	return nil
}

// Keyed reports whether an AEAD key has been installed.
func (s *Session) Keyed() bool { return s.box != nil }

// Close drops the key and in-flight transfer state. Any inbound transfer
// still deciding or receiving is reported as an EventFileAborted. Subsequent send_* calls fail with
// *ClosedError; HandleIncoming on a closed session is a no-op.
func (s *Session) Close() []Event {
	if s.closed {
		return nil
	}
	s.closed = true
	events := s.files.abortAll()
	s.box = nil
	s.outbox = nil
	return events
}

// NotifyHighWater and NotifyLowWater let the host push buffered-amount
// crossings without the session ever polling a getter (component C6).
func (s *Session) NotifyHighWater() { s.bp.notifyHighWater() }
func (s *Session) NotifyLowWater()  { s.bp.notifyLowWater() }

// NotifyTransportClosed tells the session its duplex went away.
func (s *Session) NotifyTransportClosed() []Event {
	s.bp.onTransportClosed()
	events := s.Close()
	return append(events, Event{Kind: EventDisconnected, DisconnectReason: ReasonTransportClosed})
}

// SendText enqueues a ChatText frame and returns the synchronous local echo
// event.
func (s *Session) SendText(text string) (Event, error) {
	if s.closed {
		return Event{}, &ClosedError{}
	}
	frame, echo, err := s.chat.outbound(text)
	if err != nil {
		return Event{}, err
	}
	s.enqueue(frame)
	return echo, nil
}

// OfferFile enqueues a FileOffer for data and returns its TransferID.
// nowMS seeds the accept-timeout clock for this transfer; the host must
// keep calling Tick with the same clock afterward for the 10 s timeout to
// fire correctly.
func (s *Session) OfferFile(meta wire.FileOffer, data []byte, nowMS int64) (wire.TransferID, error) {
	if s.closed {
		return wire.TransferID{}, &ClosedError{}
	}
	meta.Size = uint64(len(data))
	frame, err := s.files.offer(meta, data, nowMS)
	if err != nil {
		return wire.TransferID{}, err
	}
	s.enqueue(frame)
	return meta.ID, nil
}

// AcceptFile resolves a manual-mode pending inbound offer.
func (s *Session) AcceptFile(id wire.TransferID) error {
	if s.closed {
		return &ClosedError{}
	}
	frame, err := s.files.acceptFile(id)
	if err != nil {
		return err
	}
	if frame != nil {
		s.enqueue(*frame)
	}
	return nil
}

// RejectFile resolves a manual-mode pending inbound offer with reason.
func (s *Session) RejectFile(id wire.TransferID, reason string) error {
	if s.closed {
		return &ClosedError{}
	}
	frame, err := s.files.rejectFile(id, reason)
	if err != nil {
		return err
	}
	if frame != nil {
		s.enqueue(*frame)
	}
	return nil
}

// CancelFile is idempotent at both sender and receiver.
func (s *Session) CancelFile(id wire.TransferID) error {
	if s.closed {
		return &ClosedError{}
	}
	if frame := s.files.cancel(id); frame != nil {
		s.enqueue(frame)
	}
	return nil
}

func (s *Session) enqueue(f wire.Frame) {
	s.outbox = append(s.outbox, f)
}

// Tick advances the heartbeat watchdog and the file-transfer accept-timeout
// clock. The host must call this at least once per heartbeat interval.
func (s *Session) Tick(nowMS int64) []Event {
	if s.closed {
		return nil
	}
	s.lastTickMS = nowMS

	var events []Event
	events = append(events, s.files.tick(nowMS)...)

	ping, timedOut := s.hb.tick(nowMS)
	if timedOut {
		events = append(events, s.Close()...)
		events = append(events, Event{Kind: EventDisconnected, DisconnectReason: ReasonSilent})
		return events
	}
	if ping != nil {
		s.enqueue(*ping)
	}
	return events
}

// PollOutgoing dequeues the next frame's wire bytes, wrapping it in the
// encrypted envelope if a key is installed. It returns nil when there is
// nothing ready to send (because the outbox is empty, or the only pending
// work is a file chunk blocked on backpressure).
func (s *Session) PollOutgoing() []byte {
	if s.closed {
		return nil
	}
	if len(s.outbox) > 0 {
		f := s.outbox[0]
		s.outbox = s.outbox[1:]
		return s.encode(f)
	}
	chunk, err := s.files.nextChunkFrame(s.bp.canSend)
	if err != nil || chunk == nil {
		return nil
	}
	return s.encode(*chunk)
}

func (s *Session) encode(f wire.Frame) []byte {
	if s.box != nil && f.Type != wire.TypeEnvelope {
		wrapped, err := s.box.Wrap(f)
		if err != nil {
			return nil
		}
		f = wrapped
	}
	return s.codec.Encode(nil, f)
}

// HandleIncoming feeds bytes received from the transport and returns the
// ordered events they produced. It is safe to call with arbitrarily split
// byte chunks: incomplete frames are buffered until the next call completes
// them.
func (s *Session) HandleIncoming(data []byte) []Event {
	if s.closed {
		return nil
	}
	s.readBuf = append(s.readBuf, data...)

	var events []Event
	for {
		frame, n, err := s.codec.Decode(s.readBuf)
		if err != nil {
			events = append(events, s.fatal(EventProtocolError, err)...)
			return events
		}
		if frame == nil {
			return events
		}
		s.readBuf = s.readBuf[n:]

		evs, fatalErr := s.dispatch(*frame)
		events = append(events, evs...)
		if fatalErr != nil {
			kind := EventProtocolError
			if _, isDecrypt := fatalErr.(*envelope.DecryptError); isDecrypt {
				kind = EventEncryptionError
			}
			events = append(events, s.fatal(kind, fatalErr)...)
			return events
		}
	}
}

// fatal closes the session and appends the triggering error event plus a
// Disconnected{Explicit} event, per the fatal-error contract.
func (s *Session) fatal(kind EventKind, err error) []Event {
	events := []Event{{Kind: kind, Err: err}}
	events = append(events, s.Close()...)
	events = append(events, Event{Kind: EventDisconnected, DisconnectReason: ReasonExplicit, Detail: err.Error()})
	return events
}

// dispatch routes one decoded outer frame, transparently unwrapping the
// envelope when keyed.
func (s *Session) dispatch(f wire.Frame) ([]Event, error) {
	if s.box != nil {
		alreadyReported := s.box.MismatchReported
		inner, ok, err := s.box.Unwrap(f)
		if err != nil {
			if _, isMismatch := err.(*envelope.MismatchError); isMismatch {
				if alreadyReported {
					return nil, nil
				}
				return []Event{{Kind: EventEncryptionMismatch, Err: err}}, nil
			}
			return nil, err
		}
		if !ok {
			return nil, nil // replay, silently dropped
		}
		return s.dispatchInner(*inner)
	}
	return s.dispatchInner(f)
}

func (s *Session) dispatchInner(f wire.Frame) ([]Event, error) {
	switch f.Type {
	case wire.TypePing:
		hb, err := wire.DecodeHeartbeat(f.Payload)
		if err != nil {
			return nil, err
		}
		pong := s.hb.onPing(s.lastTickMS, hb)
		s.enqueue(*pong)
		return nil, nil

	case wire.TypePong:
		s.hb.onPong(s.lastTickMS)
		return nil, nil

	case wire.TypeChatText:
		ev, err := s.chat.inbound(f.Payload)
		if err != nil {
			return nil, err
		}
		return []Event{ev}, nil

	case wire.TypeFileOffer:
		offer, err := wire.DecodeFileOffer(f.Payload)
		if err != nil {
			return nil, err
		}
		frame, err := s.files.onOffer(offer)
		if err != nil {
			return nil, err
		}
		if frame != nil {
			s.enqueue(*frame)
			return nil, nil
		}
		return []Event{{Kind: EventFileOffered, TransferID: offer.ID, Meta: offer}}, nil

	case wire.TypeFileAccept:
		acc, err := wire.DecodeFileAccept(f.Payload)
		if err != nil {
			return nil, err
		}
		frame, err := s.files.onAccept(acc.ID)
		if err != nil {
			return nil, err
		}
		if frame != nil {
			s.enqueue(*frame)
		}
		return nil, nil

	case wire.TypeFileReject:
		rej, err := wire.DecodeFileReject(f.Payload)
		if err != nil {
			return nil, err
		}
		ev, err := s.files.onReject(rej.ID, rej.Reason)
		if err != nil {
			return nil, err
		}
		return []Event{ev}, nil

	case wire.TypeFileChunk:
		chunk, err := wire.DecodeFileChunk(f.Payload)
		if err != nil {
			return nil, err
		}
		ev, err := s.files.onChunk(chunk)
		if err != nil {
			return nil, err
		}
		if ev == nil {
			return nil, nil
		}
		return []Event{*ev}, nil

	case wire.TypeFileEnd:
		end, err := wire.DecodeFileEnd(f.Payload)
		if err != nil {
			return nil, err
		}
		ev, err := s.files.onEnd(end.ID)
		if err != nil {
			return nil, err
		}
		return []Event{ev}, nil

	case wire.TypeProtocolError:
		msg, err := wire.DecodeProtocolError(f.Payload)
		if err != nil {
			return nil, err
		}
		return []Event{{Kind: EventProtocolError, Err: fmt.Errorf("peer: %s", msg.Reason)}}, nil

	default:
		// Unknown type: a forward-compatibility slot, dropped silently.
		return nil, nil
	}
}
