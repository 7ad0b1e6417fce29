package rendezvous

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
)

// NewRendezvousToken mints a fresh "holi-fr-<base64url(16B)>" capability
// token naming a one-time FriendHandshake room. Anyone holding the token can
// join the room; nothing else authenticates it.
func NewRendezvousToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "holi-fr-" + base64.RawURLEncoding.EncodeToString(buf), nil
}

type contactInfoWire struct {
	Pubkey [32]byte `json:"pubkey"`
	Name   string   `json:"name"`
	DM     *dmWire  `json:"dm,omitempty"`
}

type dmWire struct {
	SessionID string   `json:"session_id"`
	Key       [32]byte `json:"key"`
}

func encodeContactInfo(info ContactInfo) ([]byte, error) {
	w := contactInfoWire{Pubkey: info.Pubkey, Name: info.Name}
	if info.DM != nil {
		w.DM = &dmWire{SessionID: info.DM.SessionID, Key: info.DM.Key}
	}
	return json.Marshal(w)
}

func decodeContactInfo(payload []byte) (ContactInfo, error) {
	var w contactInfoWire
	if err := json.Unmarshal(payload, &w); err != nil {
		return ContactInfo{}, fmtErrorf("rendezvous: decode contact-info: %w", err)
	}
	info := ContactInfo{Pubkey: w.Pubkey, Name: w.Name}
	if w.DM != nil {
		info.DM = &DM{SessionID: w.DM.SessionID, Key: w.DM.Key}
	}
	return info, nil
}

type knockWire struct {
	Pubkey [32]byte `json:"pubkey"`
	Name   string   `json:"name"`
}

func encodeKnock(k Knock) ([]byte, error) {
	return json.Marshal(knockWire{Pubkey: k.Pubkey, Name: k.Name})
}

func decodeKnock(payload []byte) (Knock, error) {
	var w knockWire
	if err := json.Unmarshal(payload, &w); err != nil {
		return Knock{}, fmtErrorf("rendezvous: decode knock: %w", err)
	}
	return Knock{Pubkey: w.Pubkey, Name: w.Name}, nil
}

type admitWire struct {
	EncryptedSecret []byte `json:"encrypted_secret"`
}

func encodeAdmit(secret []byte) ([]byte, error) {
	return json.Marshal(admitWire{EncryptedSecret: secret})
}

func decodeAdmit(payload []byte) ([]byte, error) {
	var w admitWire
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmtErrorf("rendezvous: decode admit: %w", err)
	}
	return w.EncryptedSecret, nil
}
