package rendezvous

import "holivault.dev/core/policy"

// LobbyRole distinguishes the vault owner running the lobby room from a
// guest trying to join it.
type LobbyRole int

const (
	RoleGuest LobbyRole = iota
	RoleHost
)

// KnockOutcome classifies what a host does with an inbound knock.
type KnockOutcome int

const (
	// KnockDropped means the knocking pubkey is blocked; the host sends
	// nothing back and the knock leaves no trace in the room.
	KnockDropped KnockOutcome = iota
	// KnockPending means the knock needs a human decision: the host should
	// surface it and wait for an explicit Admit or a drop.
	KnockPending
	// KnockAutoAdmitted means the grant allows this pubkey and has
	// auto-admit on; the host should immediately wrap a vault secret and
	// call Admit.
	KnockAutoAdmitted
)

// VaultLobby runs component C9: the public room a vault's host publishes
// project membership to. Guests knock; the host consults policy and either
// drops, defers, or auto-admits. Admit always addresses the knocking peer
// directly — it is never broadcast.
type VaultLobby struct {
	role      LobbyRole
	projectID string
}

// NewVaultLobby constructs a lobby participant for one project.
func NewVaultLobby(role LobbyRole, projectID string) *VaultLobby {
	return &VaultLobby{role: role, projectID: projectID}
}

// Knock is the guest side: the payload to send once it has joined the
// lobby room.
func (l *VaultLobby) Knock(self Identity) ([]byte, error) {
	return encodeKnock(Knock{Pubkey: self.Pubkey, Name: self.Name})
}

// OnKnock is the host side. contactState and autoAdmit are whatever the
// host's policy.Policy currently reports for the knocking pubkey —
// VaultLobby itself owns no persistence and makes no store calls, so the
// host resolves these (via policy.Policy.ContactStateFor and
// ShouldAutoAdmitFor) before calling in.
//
// A blocked contact's knock is silently dropped. An allowed pubkey with
// auto-admit on is reported KnockAutoAdmitted so the host can immediately
// wrap a vault secret and call Admit; everything else is KnockPending for a
// human decision.
func (l *VaultLobby) OnKnock(peer string, payload []byte, contactState policy.ContactState, autoAdmit bool) (KnockOutcome, Knock, error) {
	if l.role != RoleHost {
		return KnockDropped, Knock{}, &AdmitAuthorityError{}
	}
	k, err := decodeKnock(payload)
	if err != nil {
		return KnockDropped, Knock{}, err
	}
	if contactState == policy.ContactBlocked {
		return KnockDropped, k, nil
	}
	if autoAdmit {
		return KnockAutoAdmitted, k, nil
	}
	return KnockPending, k, nil
}

// Admit is the host side: it encodes encryptedSecret (wrapped by a higher
// layer — VaultLobby has no opinion on the wrapping primitive beyond
// requiring it bound to the guest's identity) into the payload to send
// addressed to peer. Calling Admit on a non-host lobby is a programmer
// error and panics, mirroring the authority assertion the design calls for.
func (l *VaultLobby) Admit(peer string, encryptedSecret []byte) ([]byte, error) {
	if l.role != RoleHost {
		panic("rendezvous: Admit called on a guest-role VaultLobby")
	}
	return encodeAdmit(encryptedSecret)
}

// OnAdmit is the guest side: it unwraps the still-encrypted vault secret
// from the host's admit payload. Unwrapping the secret itself belongs to a
// higher layer that holds the guest's private key.
func (l *VaultLobby) OnAdmit(payload []byte) ([]byte, error) {
	return decodeAdmit(payload)
}
