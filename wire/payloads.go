package wire

import (
	"fmt"
	"unicode/utf8"
)

// Field and size caps. These are fixed constants; the only configurable
// limit is the whole-frame cap, which Codec.MaxFrameLen overrides in place
// of FrameMax.
const (
	ChatMax       = 64 << 10 // 64 KiB
	ChunkMax      = 64 << 10 // 64 KiB
	FileMax       = 2 << 30  // 2 GiB
	FilenameMax   = 1 << 10  // 1 KiB
	MimeMax       = 256
	RejectReasonMax = 256
	ProtoErrorMax = 1 << 10 // 1 KiB

	TransferIDLen = 16
)

// TransferID is a sender-chosen identifier, unique within a session.
type TransferID [TransferIDLen]byte

func (id TransferID) String() string {
	return fmt.Sprintf("%x", id[:])
}

// ChatText is the payload of TypeChatText.
type ChatText struct {
	Text string
}

func EncodeChatText(m ChatText) ([]byte, error) {
	if len(m.Text) > ChatMax {
		return nil, newCodecError(FieldLengthExceedsCap, "chat text %d > %d", len(m.Text), ChatMax)
	}
	return []byte(m.Text), nil
}

func DecodeChatText(payload []byte) (ChatText, error) {
	if len(payload) > ChatMax {
		return ChatText{}, newCodecError(FieldLengthExceedsCap, "chat text %d > %d", len(payload), ChatMax)
	}
	if !utf8.Valid(payload) {
		return ChatText{}, newCodecError(NonUTF8Text, "invalid utf8")
	}
	return ChatText{Text: string(payload)}, nil
}

// FileOffer is the payload of TypeFileOffer.
type FileOffer struct {
	ID       TransferID
	Filename string
	Mime     string
	Size     uint64
}

func EncodeFileOffer(o FileOffer) ([]byte, error) {
	if len(o.Filename) > FilenameMax {
		return nil, newCodecError(FieldLengthExceedsCap, "filename %d > %d", len(o.Filename), FilenameMax)
	}
	if len(o.Mime) > MimeMax {
		return nil, newCodecError(FieldLengthExceedsCap, "mime %d > %d", len(o.Mime), MimeMax)
	}
	out := make([]byte, 0, TransferIDLen+len(o.Filename)+len(o.Mime)+16)
	out = append(out, o.ID[:]...)
	out = putVarBytes(out, []byte(o.Filename))
	out = putVarBytes(out, []byte(o.Mime))
	out = PutUvarint(out, o.Size)
	return out, nil
}

func DecodeFileOffer(payload []byte) (FileOffer, error) {
	if len(payload) < TransferIDLen {
		return FileOffer{}, newCodecError(TruncatedPayload, "file offer id")
	}
	var id TransferID
	copy(id[:], payload[:TransferIDLen])
	rest := payload[TransferIDLen:]

	name, rest, err := takeVarString(rest, FilenameMax)
	if err != nil {
		return FileOffer{}, err
	}
	mime, rest, err := takeVarString(rest, MimeMax)
	if err != nil {
		return FileOffer{}, err
	}
	size, _, err := Uvarint(rest)
	if err != nil {
		return FileOffer{}, newCodecError(NonMinimalVarint, "%v", err)
	}
	return FileOffer{ID: id, Filename: name, Mime: mime, Size: size}, nil
}

// FileAccept is the payload of TypeFileAccept.
type FileAccept struct {
	ID TransferID
}

func EncodeFileAccept(a FileAccept) ([]byte, error) {
	out := make([]byte, TransferIDLen)
	copy(out, a.ID[:])
	return out, nil
}

func DecodeFileAccept(payload []byte) (FileAccept, error) {
	if len(payload) != TransferIDLen {
		return FileAccept{}, newCodecError(TruncatedPayload, "file accept id")
	}
	var id TransferID
	copy(id[:], payload)
	return FileAccept{ID: id}, nil
}

// FileReject is the payload of TypeFileReject.
type FileReject struct {
	ID     TransferID
	Reason string
}

func EncodeFileReject(r FileReject) ([]byte, error) {
	if len(r.Reason) > RejectReasonMax {
		return nil, newCodecError(FieldLengthExceedsCap, "reject reason %d > %d", len(r.Reason), RejectReasonMax)
	}
	out := make([]byte, 0, TransferIDLen+len(r.Reason)+4)
	out = append(out, r.ID[:]...)
	out = putVarBytes(out, []byte(r.Reason))
	return out, nil
}

func DecodeFileReject(payload []byte) (FileReject, error) {
	if len(payload) < TransferIDLen {
		return FileReject{}, newCodecError(TruncatedPayload, "file reject id")
	}
	var id TransferID
	copy(id[:], payload[:TransferIDLen])
	reason, _, err := takeVarString(payload[TransferIDLen:], RejectReasonMax)
	if err != nil {
		return FileReject{}, err
	}
	return FileReject{ID: id, Reason: reason}, nil
}

// FileChunk is the payload of TypeFileChunk.
type FileChunk struct {
	ID         TransferID
	ChunkIndex uint64
	Bytes      []byte
}

func EncodeFileChunk(c FileChunk) ([]byte, error) {
	if len(c.Bytes) > ChunkMax {
		return nil, newCodecError(FieldLengthExceedsCap, "chunk %d > %d", len(c.Bytes), ChunkMax)
	}
	out := make([]byte, 0, TransferIDLen+len(c.Bytes)+16)
	out = append(out, c.ID[:]...)
	out = PutUvarint(out, c.ChunkIndex)
	out = append(out, c.Bytes...)
	return out, nil
}

func DecodeFileChunk(payload []byte) (FileChunk, error) {
	if len(payload) < TransferIDLen {
		return FileChunk{}, newCodecError(TruncatedPayload, "file chunk id")
	}
	var id TransferID
	copy(id[:], payload[:TransferIDLen])
	rest := payload[TransferIDLen:]
	idx, n, err := Uvarint(rest)
	if err != nil {
		return FileChunk{}, newCodecError(NonMinimalVarint, "%v", err)
	}
	data := rest[n:]
	if len(data) > ChunkMax {
		return FileChunk{}, newCodecError(FieldLengthExceedsCap, "chunk %d > %d", len(data), ChunkMax)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return FileChunk{ID: id, ChunkIndex: idx, Bytes: out}, nil
}

// FileEnd is the payload of TypeFileEnd.
type FileEnd struct {
	ID TransferID
}

func EncodeFileEnd(e FileEnd) ([]byte, error) {
	out := make([]byte, TransferIDLen)
	copy(out, e.ID[:])
	return out, nil
}

func DecodeFileEnd(payload []byte) (FileEnd, error) {
	if len(payload) != TransferIDLen {
		return FileEnd{}, newCodecError(TruncatedPayload, "file end id")
	}
	var id TransferID
	copy(id[:], payload)
	return FileEnd{ID: id}, nil
}

// ProtocolErrorMsg is the payload of TypeProtocolError.
type ProtocolErrorMsg struct {
	Reason string
}

func EncodeProtocolError(m ProtocolErrorMsg) ([]byte, error) {
	if len(m.Reason) > ProtoErrorMax {
		return nil, newCodecError(FieldLengthExceedsCap, "protocol error %d > %d", len(m.Reason), ProtoErrorMax)
	}
	return []byte(m.Reason), nil
}

func DecodeProtocolError(payload []byte) (ProtocolErrorMsg, error) {
	if len(payload) > ProtoErrorMax {
		return ProtocolErrorMsg{}, newCodecError(FieldLengthExceedsCap, "protocol error %d > %d", len(payload), ProtoErrorMax)
	}
	if !utf8.Valid(payload) {
		return ProtocolErrorMsg{}, newCodecError(NonUTF8Text, "invalid utf8")
	}
	return ProtocolErrorMsg{Reason: string(payload)}, nil
}

// Ping/Pong carry either an empty payload or an 8-byte big-endian ms
// timestamp (§4.1, §4.7).
type Heartbeat struct {
	TimestampMS uint64
	HasTimestamp bool
}

func EncodeHeartbeat(h Heartbeat) []byte {
	if !h.HasTimestamp {
		return nil
	}
	return be64(h.TimestampMS)
}

func DecodeHeartbeat(payload []byte) (Heartbeat, error) {
	if len(payload) == 0 {
		return Heartbeat{}, nil
	}
	ts, _, err := takeBE64(payload)
	if err != nil {
		return Heartbeat{}, err
	}
	return Heartbeat{TimestampMS: ts, HasTimestamp: true}, nil
}
