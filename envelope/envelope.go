// Package envelope implements the authenticated-encryption wrapper around a
// wire.Frame: a 0x50 EncryptedEnvelope whose payload is nonce(24B) ‖
// ciphertext, where the plaintext is a complete inner frame starting at its
// type byte.
//
// Follows node/p2p/envelope.go, which wraps outbound p2p messages in a
// length-prefixed authenticated frame; this package keeps that wrap/unwrap
// shape but swaps the MAC-then-encrypt construction there for a single AEAD
// call, and adds a per-direction monotone counter in place of an implicit
// sequence number.
package envelope

import (
	"fmt"

	"holivault.dev/core/crypto"
	"holivault.dev/core/wire"
)

// Direction distinguishes the two counters a session tracks: one per
// traffic direction, so neither peer's writes are serialized against the
// other's.
type Direction byte

const (
	Outbound Direction = 0
	Inbound  Direction = 1
)

const (
	nonceSize  = 24
	counterLen = nonceSize - 1 // 23 bytes, big-endian
)

// MismatchError reports an inbound frame that arrived unencrypted (or
// mistyped) after a key was installed. Reported to the caller exactly once
// per session — see Box.MismatchReported.
type MismatchError struct {
	GotType byte
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("envelope: expected type=0x50, got type=%#02x", e.GotType)
}

// DecryptError wraps an AEAD authentication failure. It never carries the
// ciphertext or key; only that verification failed.
type DecryptError struct {
	Err error
}

func (e *DecryptError) Error() string { return fmt.Sprintf("envelope: decrypt: %v", e.Err) }
func (e *DecryptError) Unwrap() error  { return e.Err }

// NonceExhaustedError is fatal: the counter for one direction has reached
// its maximum value, and Wrap refuses to wrap it around. The session
// carrying it MUST close rather than reuse a nonce.
type NonceExhaustedError struct{ Direction Direction }

func (e *NonceExhaustedError) Error() string {
	return fmt.Sprintf("envelope: nonce counter exhausted (direction=%d)", e.Direction)
}

// Box owns the per-session AEAD key and the two monotone counters. A nil Key
// means the session is pre-key: Wrap/Unwrap are not called in that phase.
type Box struct {
	AEAD crypto.AEADProvider
	Key  []byte

	outboundCounter uint64Counter
	highestInbound  uint64Counter
	haveInbound     bool

	// MismatchReported is set the first time Unwrap rejects a non-0x50
	// inbound frame, so the caller emits EncryptionMismatch only once.
	MismatchReported bool

	codec wire.Codec
}

// NewBox constructs a Box bound to aead and key. key must be aead.KeySize()
// bytes.
func NewBox(aead crypto.AEADProvider, key []byte, codec wire.Codec) (*Box, error) {
	if len(key) != aead.KeySize() {
		return nil, fmt.Errorf("envelope: key must be %d bytes, got %d", aead.KeySize(), len(key))
	}
	return &Box{AEAD: aead, Key: key, codec: codec}, nil
}

// uint64Counter is a 23-byte big-endian counter represented as uint64: its
// 64 bits fill the low 8 bytes of the counter field and the upper 15 bytes
// stay zero (already far beyond any session's realistic frame count; the
// top byte of the 24-byte nonce carries Direction instead of counter bits).
type uint64Counter = uint64

func nonceFor(dir Direction, counter uint64Counter) []byte {
	n := make([]byte, nonceSize)
	n[0] = byte(dir)
	for i := 0; i < counterLen; i++ {
		shift := uint(counterLen-1-i) * 8
		if shift < 64 {
			n[1+i] = byte(counter >> shift)
		}
	}
	return n
}

// Wrap encrypts inner under the session key and the next outbound counter
// value, returning the outer 0x50 Frame ready for wire.Codec.Encode.
func (b *Box) Wrap(inner wire.Frame) (wire.Frame, error) {
	if b.outboundCounter == ^uint64(0) {
		return wire.Frame{}, &NonceExhaustedError{Direction: Outbound}
	}
	nonce := nonceFor(Outbound, b.outboundCounter)
	b.outboundCounter++

	plaintext := b.codec.EncodeInner(inner)
	aad := outerHeaderAAD(wire.TypeEnvelope)

	ciphertext, err := b.AEAD.Seal(nil, b.Key, nonce, plaintext, aad)
	if err != nil {
		return wire.Frame{}, fmt.Errorf("envelope: seal: %w", err)
	}
	payload := make([]byte, 0, len(nonce)+len(ciphertext))
	payload = append(payload, nonce...)
	payload = append(payload, ciphertext...)
	return wire.Frame{Type: wire.TypeEnvelope, Payload: payload}, nil
}

// Unwrap decrypts an inbound 0x50 Frame and returns the inner Frame it
// carried. A non-0x50 frame sets MismatchReported and returns a
// *MismatchError; AEAD failure returns *DecryptError; a non-monotone inbound
// counter is treated as a replay and silently dropped (ok=false, err=nil).
func (b *Box) Unwrap(outer wire.Frame) (inner *wire.Frame, ok bool, err error) {
	if outer.Type != wire.TypeEnvelope {
		b.MismatchReported = true
		return nil, false, &MismatchError{GotType: outer.Type}
	}
	if len(outer.Payload) < nonceSize {
		return nil, false, fmt.Errorf("envelope: payload too short for nonce")
	}
	nonce := outer.Payload[:nonceSize]
	ciphertext := outer.Payload[nonceSize:]

	aad := outerHeaderAAD(wire.TypeEnvelope)
	plaintext, derr := b.AEAD.Open(nil, b.Key, nonce, ciphertext, aad)
	if derr != nil {
		return nil, false, &DecryptError{Err: derr}
	}

	ctr := counterFromNonce(nonce)
	if b.haveInbound && ctr <= b.highestInbound {
		// Duplicate or out-of-order counter: authenticated but a replay.
		// Duplicates are dropped silently.
		return nil, false, nil
	}
	b.highestInbound = ctr
	b.haveInbound = true

	frame, ferr := b.codec.DecodeInner(plaintext)
	if ferr != nil {
		return nil, false, ferr
	}
	return frame, true, nil
}

func counterFromNonce(nonce []byte) uint64 {
	var v uint64
	for i := 0; i < counterLen; i++ {
		v = v<<8 | uint64(nonce[1+i])
	}
	return v
}

// outerHeaderAAD binds the envelope ciphertext to the outer frame's fixed
// header fields (aad=header_of_outer_frame). Flags are always zero
// (wire.Codec rejects nonzero flags), so the AAD reduces to the
// magic/version/type/flags bytes a receiver would reconstruct identically.
func outerHeaderAAD(frameType byte) []byte {
	return []byte{0x48, 0x4F, wire.ProtocolVersion, frameType, 0x00}
}
