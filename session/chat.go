package session

import "holivault.dev/core/wire"

// chatEngine implements C4: single-frame, non-fragmented text messages.
// Kept stateless beyond what Session already tracks; there is no dedup
// table because ChatText carries no id for the core to key on — the host's
// persistence layer is responsible for any message-level dedup it needs.
type chatEngine struct{}

// outbound builds the frame for a local send_text call and the synthetic
// local echo event that accompanies it.
func (chatEngine) outbound(text string) (wire.Frame, Event, error) {
	payload, err := wire.EncodeChatText(wire.ChatText{Text: text})
	if err != nil {
		return wire.Frame{}, Event{}, err
	}
	frame := wire.Frame{Type: wire.TypeChatText, Payload: payload}
	echo := Event{Kind: EventMessage, Sender: SenderSelf, Text: text}
	return frame, echo, nil
}

// inbound decodes a received ChatText frame into a peer Message event.
func (chatEngine) inbound(payload []byte) (Event, error) {
	ct, err := wire.DecodeChatText(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: EventMessage, Sender: SenderPeer, Text: ct.Text}, nil
}
