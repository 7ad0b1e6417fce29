package wire

import "testing"

func TestVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20, 1<<64 - 1}
	for _, v := range cases {
		b := PutUvarint(nil, v)
		got, n, err := Uvarint(b)
		if err != nil {
			t.Fatalf("Uvarint(%d): %v", v, err)
		}
		if n != len(b) {
			t.Fatalf("Uvarint(%d): consumed %d want %d", v, n, len(b))
		}
		if got != v {
			t.Fatalf("Uvarint(%d): got %d", v, got)
		}
	}
}

func TestVarintNonMinimal(t *testing.T) {
	// 0x80, 0x00 encodes 0 using two bytes; minimal form is just 0x00.
	_, _, err := Uvarint([]byte{0x80, 0x00})
	if err == nil {
		t.Fatalf("expected non-minimal varint to fail")
	}
}

func TestVarintTooLong(t *testing.T) {
	b := make([]byte, 11)
	for i := range b {
		b[i] = 0x80
	}
	_, _, err := Uvarint(b)
	if err == nil {
		t.Fatalf("expected overlong varint to fail")
	}
}

func TestFrameEncodeDecodeRoundTrip(t *testing.T) {
	f := Frame{Type: TypeChatText, Payload: []byte("hello")}
	buf := Codec{}.Encode(nil, f)

	want := []byte{0x48, 0x4F, 0x01, 0x10, 0x00, 0x05, 'h', 'e', 'l', 'l', 'o'}
	if len(buf) != len(want) {
		t.Fatalf("encoded length = %d, want %d", len(buf), len(want))
	}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d = %#02x, want %#02x", i, buf[i], want[i])
		}
	}

	got, n, err := Codec{}.Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d, want %d", n, len(buf))
	}
	if got.Type != f.Type || string(got.Payload) != string(f.Payload) {
		t.Fatalf("decoded frame mismatch: %+v", got)
	}
}

func TestDecodeIncompleteReturnsNilNilNil(t *testing.T) {
	full := Codec{}.Encode(nil, Frame{Type: TypePing, Payload: []byte("12345678")})
	for i := 0; i < len(full); i++ {
		f, n, err := Codec{}.Decode(full[:i])
		if err != nil {
			t.Fatalf("partial decode at %d: unexpected error %v", i, err)
		}
		if f != nil || n != 0 {
			t.Fatalf("partial decode at %d: expected incomplete, got frame=%v n=%d", i, f, n)
		}
	}
	f, n, err := Codec{}.Decode(full)
	if err != nil || f == nil || n != len(full) {
		t.Fatalf("full decode failed: f=%v n=%d err=%v", f, n, err)
	}
}

func TestDecodeSplitAcrossCallsMatchesSingleCall(t *testing.T) {
	frames := []Frame{
		{Type: TypeChatText, Payload: []byte("hi")},
		{Type: TypePing, Payload: be64(12345)},
		{Type: TypeFileEnd, Payload: make([]byte, TransferIDLen)},
	}
	var stream []byte
	for _, fr := range frames {
		stream = Codec{}.Encode(stream, fr)
	}

	// Decode in one shot.
	var oneShot []Frame
	buf := append([]byte(nil), stream...)
	for len(buf) > 0 {
		f, n, err := Codec{}.Decode(buf)
		if err != nil {
			t.Fatalf("one-shot decode: %v", err)
		}
		if f == nil {
			t.Fatalf("one-shot decode: unexpected incomplete")
		}
		oneShot = append(oneShot, *f)
		buf = buf[n:]
	}

	// Decode split into 3-byte chunks, re-buffering between calls.
	var split []Frame
	var pending []byte
	for i := 0; i < len(stream); i += 3 {
		end := i + 3
		if end > len(stream) {
			end = len(stream)
		}
		pending = append(pending, stream[i:end]...)
		for {
			f, n, err := Codec{}.Decode(pending)
			if err != nil {
				t.Fatalf("split decode: %v", err)
			}
			if f == nil {
				break
			}
			split = append(split, *f)
			pending = pending[n:]
		}
	}

	if len(split) != len(oneShot) {
		t.Fatalf("split produced %d frames, one-shot produced %d", len(split), len(oneShot))
	}
	for i := range oneShot {
		if split[i].Type != oneShot[i].Type || string(split[i].Payload) != string(oneShot[i].Payload) {
			t.Fatalf("frame %d mismatch: %+v vs %+v", i, split[i], oneShot[i])
		}
	}
}

func TestDecodeBadMagic(t *testing.T) {
	_, _, err := Codec{}.Decode([]byte{0x00, 0x00, 0x01, 0x01, 0x00, 0x00})
	if err == nil {
		t.Fatalf("expected bad magic error")
	}
	ce, ok := err.(*CodecError)
	if !ok || ce.Kind != BadMagic {
		t.Fatalf("expected BadMagic, got %v", err)
	}
}

func TestDecodeLenExceedsCap(t *testing.T) {
	var buf []byte
	buf = append(buf, magic0, magic1, ProtocolVersion, TypeChatText, 0x00)
	buf = PutUvarint(buf, FrameMax+1)
	_, _, err := Codec{}.Decode(buf)
	ce, ok := err.(*CodecError)
	if !ok || ce.Kind != LenExceedsCap {
		t.Fatalf("expected LenExceedsCap, got %v", err)
	}
}

func TestFileOfferEncodeDecodeRoundTrip(t *testing.T) {
	o := FileOffer{Filename: "a.bin", Mime: "application/octet-stream", Size: 100000}
	o.ID[0] = 0x01
	b, err := EncodeFileOffer(o)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeFileOffer(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != o {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, o)
	}
}

func TestFilenameExceedsCap(t *testing.T) {
	_, err := EncodeFileOffer(FileOffer{Filename: string(make([]byte, FilenameMax+1))})
	ce, ok := err.(*CodecError)
	if !ok || ce.Kind != FieldLengthExceedsCap {
		t.Fatalf("expected FieldLengthExceedsCap, got %v", err)
	}
}

func TestChatTextExactCapSucceedsCapPlusOneFails(t *testing.T) {
	exact := ChatText{Text: string(make([]byte, ChatMax))}
	if _, err := EncodeChatText(exact); err != nil {
		t.Fatalf("exact cap should succeed: %v", err)
	}
	tooBig := ChatText{Text: string(make([]byte, ChatMax+1))}
	_, err := EncodeChatText(tooBig)
	ce, ok := err.(*CodecError)
	if !ok || ce.Kind != FieldLengthExceedsCap {
		t.Fatalf("expected FieldLengthExceedsCap, got %v", err)
	}
}

func TestFileChunkExactCapSucceedsCapPlusOneFails(t *testing.T) {
	exact := FileChunk{Bytes: make([]byte, ChunkMax)}
	if _, err := EncodeFileChunk(exact); err != nil {
		t.Fatalf("exact cap should succeed: %v", err)
	}
	tooBig := FileChunk{Bytes: make([]byte, ChunkMax+1)}
	_, err := EncodeFileChunk(tooBig)
	ce, ok := err.(*CodecError)
	if !ok || ce.Kind != FieldLengthExceedsCap {
		t.Fatalf("expected FieldLengthExceedsCap, got %v", err)
	}
}
