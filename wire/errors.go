package wire

import "fmt"

// CodecErrorKind enumerates the ways a frame can fail to decode, mirroring
// the failure taxonomy p2p.ReadError carries for its own transport framing
// (magic mismatch, truncation, checksum) but adapted to this protocol's
// varint/cap-based framing.
type CodecErrorKind int

const (
	BadMagic CodecErrorKind = iota
	BadVersion
	UnknownType
	NonMinimalVarint
	LenExceedsCap
	TruncatedPayload
	FieldLengthExceedsCap
	NonUTF8Text
	FlagBitsReserved
)

func (k CodecErrorKind) String() string {
	switch k {
	case BadMagic:
		return "bad_magic"
	case BadVersion:
		return "bad_version"
	case UnknownType:
		return "unknown_type"
	case NonMinimalVarint:
		return "non_minimal_varint"
	case LenExceedsCap:
		return "len_exceeds_cap"
	case TruncatedPayload:
		return "truncated_payload"
	case FieldLengthExceedsCap:
		return "field_length_exceeds_cap"
	case NonUTF8Text:
		return "non_utf8_text"
	case FlagBitsReserved:
		return "flag_bits_reserved"
	default:
		return "unknown"
	}
}

// CodecError is returned by Decode and by payload-field parsing for every
// malformed-input case. The caller distinguishes recoverable vs. fatal
// handling by inspecting Kind.
type CodecError struct {
	Kind CodecErrorKind
	Err  error
}

func (e *CodecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wire: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("wire: %s", e.Kind)
}

func (e *CodecError) Unwrap() error { return e.Err }

func newCodecError(kind CodecErrorKind, format string, args ...any) *CodecError {
	return &CodecError{Kind: kind, Err: fmt.Errorf(format, args...)}
}
