package rendezvous

import (
	"testing"

	"holivault.dev/core/policy"
)

func TestVaultLobbyBlockedKnockDropped(t *testing.T) {
	host := NewVaultLobby(RoleHost, "proj-1")
	guest := NewVaultLobby(RoleGuest, "proj-1")

	payload, err := guest.Knock(Identity{Pubkey: [32]byte{0x9}, Name: "eve"})
	if err != nil {
		t.Fatalf("Knock: %v", err)
	}
	outcome, k, err := host.OnKnock("eve-peer", payload, policy.ContactBlocked, false)
	if err != nil {
		t.Fatalf("OnKnock: %v", err)
	}
	if outcome != KnockDropped {
		t.Fatalf("outcome = %v, want KnockDropped", outcome)
	}
	if k.Name != "eve" {
		t.Fatalf("knock = %+v", k)
	}
}

// S6 — an allowed, auto-admit pubkey is reported KnockAutoAdmitted, and the
// payload Admit builds for the knocking peer carries the wrapped secret back
// to the guest intact. Admit only builds the payload; sending it to that
// peer rather than broadcasting is the caller's Room.Send, not checked here.
func TestVaultLobbyAutoAdmitAddressedToKnockingPeer(t *testing.T) {
	host := NewVaultLobby(RoleHost, "proj-1")
	guest := NewVaultLobby(RoleGuest, "proj-1")

	payload, err := guest.Knock(Identity{Pubkey: [32]byte{0x1}, Name: "bob"})
	if err != nil {
		t.Fatalf("Knock: %v", err)
	}
	outcome, k, err := host.OnKnock("bob-peer", payload, policy.ContactUnknown, true)
	if err != nil {
		t.Fatalf("OnKnock: %v", err)
	}
	if outcome != KnockAutoAdmitted {
		t.Fatalf("outcome = %v, want KnockAutoAdmitted", outcome)
	}

	wrapped := []byte("wrapped-vault-secret")
	admitPayload, err := host.Admit("bob-peer", wrapped)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}

	secret, err := guest.OnAdmit(admitPayload)
	if err != nil {
		t.Fatalf("OnAdmit: %v", err)
	}
	if string(secret) != string(wrapped) {
		t.Fatalf("secret = %q, want %q", secret, wrapped)
	}
	_ = k
}

func TestVaultLobbyUnknownUnallowedKnockIsPending(t *testing.T) {
	host := NewVaultLobby(RoleHost, "proj-1")
	guest := NewVaultLobby(RoleGuest, "proj-1")

	payload, _ := guest.Knock(Identity{Pubkey: [32]byte{0x2}, Name: "carol"})
	outcome, _, err := host.OnKnock("carol-peer", payload, policy.ContactUnknown, false)
	if err != nil {
		t.Fatalf("OnKnock: %v", err)
	}
	if outcome != KnockPending {
		t.Fatalf("outcome = %v, want KnockPending", outcome)
	}
}

func TestVaultLobbyAdmitByGuestPanics(t *testing.T) {
	guest := NewVaultLobby(RoleGuest, "proj-1")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic calling Admit on a guest lobby")
		}
	}()
	guest.Admit("peer", []byte("x"))
}

func TestVaultLobbyOnKnockByGuestReturnsAuthorityError(t *testing.T) {
	guest := NewVaultLobby(RoleGuest, "proj-1")
	_, _, err := guest.OnKnock("peer", nil, policy.ContactUnknown, false)
	if _, ok := err.(*AdmitAuthorityError); !ok {
		t.Fatalf("err = %v, want AdmitAuthorityError", err)
	}
}
