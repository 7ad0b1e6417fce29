package rendezvous

import "testing"

func mustToken(t *testing.T) string {
	t.Helper()
	tok, err := NewRendezvousToken()
	if err != nil {
		t.Fatalf("NewRendezvousToken: %v", err)
	}
	if len(tok) < len("holi-fr-") || tok[:8] != "holi-fr-" {
		t.Fatalf("token = %q, want holi-fr- prefix", tok)
	}
	return tok
}

// S5 — friend handshake converges on the inviter's dm regardless of what
// the joiner sends.
func TestFriendHandshakeConvergesOnInviterDM(t *testing.T) {
	mustToken(t)

	dm := &DM{SessionID: "sess-1", Key: [32]byte{1, 2, 3}}
	inviter, err := NewFriendHandshake(RoleInviter, Identity{Pubkey: [32]byte{0xA}, Name: "alice"}, dm, 0)
	if err != nil {
		t.Fatalf("NewFriendHandshake inviter: %v", err)
	}
	joiner, err := NewFriendHandshake(RoleJoiner, Identity{Pubkey: [32]byte{0xB}, Name: "bob"}, nil, 0)
	if err != nil {
		t.Fatalf("NewFriendHandshake joiner: %v", err)
	}

	joinerPayload, err := joiner.OnPeerJoined("inviter-peer")
	if err != nil {
		t.Fatalf("joiner OnPeerJoined: %v", err)
	}
	inviterPayload, err := inviter.OnPeerJoined("joiner-peer")
	if err != nil {
		t.Fatalf("inviter OnPeerJoined: %v", err)
	}

	acceptedByInviter, err := inviter.OnContactInfo("joiner-peer", joinerPayload)
	if err != nil {
		t.Fatalf("inviter OnContactInfo: %v", err)
	}
	if acceptedByInviter.Pubkey != (Identity{Pubkey: [32]byte{0xB}}.Pubkey) || acceptedByInviter.DM != *dm {
		t.Fatalf("inviter accepted = %+v", acceptedByInviter)
	}

	acceptedByJoiner, err := joiner.OnContactInfo("inviter-peer", inviterPayload)
	if err != nil {
		t.Fatalf("joiner OnContactInfo: %v", err)
	}
	if acceptedByJoiner.DM != *dm {
		t.Fatalf("joiner accepted dm = %+v, want %+v", acceptedByJoiner.DM, *dm)
	}
	if acceptedByJoiner.Name != "alice" {
		t.Fatalf("joiner accepted name = %q", acceptedByJoiner.Name)
	}
}

func TestFriendHandshakeJoinerRejectsMissingDM(t *testing.T) {
	joiner, err := NewFriendHandshake(RoleJoiner, Identity{Name: "bob"}, nil, 0)
	if err != nil {
		t.Fatalf("NewFriendHandshake: %v", err)
	}
	payload, _ := encodeContactInfo(ContactInfo{Name: "alice"})
	_, err = joiner.OnContactInfo("peer", payload)
	if _, ok := err.(*HandshakeMissingDmError); !ok {
		t.Fatalf("err = %v, want HandshakeMissingDmError", err)
	}
}

func TestFriendHandshakeJoinerTimesOut(t *testing.T) {
	joiner, err := NewFriendHandshake(RoleJoiner, Identity{Name: "bob"}, nil, 0)
	if err != nil {
		t.Fatalf("NewFriendHandshake: %v", err)
	}
	if err := joiner.Tick(DefaultHandshakeTimeoutMS + 1); err == nil {
		t.Fatalf("Tick past timeout did not error")
	}
}

func TestFriendHandshakeInviterNeverTimesOut(t *testing.T) {
	inviter, err := NewFriendHandshake(RoleInviter, Identity{Name: "alice"}, &DM{}, 0)
	if err != nil {
		t.Fatalf("NewFriendHandshake: %v", err)
	}
	if err := inviter.Tick(DefaultHandshakeTimeoutMS * 100); err != nil {
		t.Fatalf("inviter Tick errored: %v", err)
	}
}

func TestFriendHandshakeSecondContactInfoIgnored(t *testing.T) {
	dm := &DM{SessionID: "s"}
	inviter, _ := NewFriendHandshake(RoleInviter, Identity{Name: "alice"}, dm, 0)
	payload, _ := encodeContactInfo(ContactInfo{Name: "bob"})

	first, err := inviter.OnContactInfo("peer-1", payload)
	if err != nil || first == nil {
		t.Fatalf("first OnContactInfo = %+v, %v", first, err)
	}
	second, err := inviter.OnContactInfo("peer-2", payload)
	if err != nil || second != nil {
		t.Fatalf("second OnContactInfo = %+v, %v, want nil, nil", second, err)
	}
}

func TestNewFriendHandshakeInviterRequiresDM(t *testing.T) {
	if _, err := NewFriendHandshake(RoleInviter, Identity{}, nil, 0); err == nil {
		t.Fatalf("expected error for inviter without dm")
	}
}
