package policy

// ContactStateOf is the pure contact_state lookup: unknown if no contact
// carries this pubkey.
func ContactStateOf(contacts []Contact, pubkey [32]byte) ContactState {
	for _, c := range contacts {
		if c.Pubkey != nil && *c.Pubkey == pubkey {
			return c.State
		}
	}
	return ContactUnknown
}

// IsAllowed reports whether pubkey is a member of grant's allow-list.
// A missing grant (found=false, as returned by GrantStore.Get) allows
// nothing — callers must check found themselves before relying on a zero
// ProjectGrant.
func IsAllowed(grant ProjectGrant, pubkey [32]byte) bool {
	if grant.AllowedPubkeys == nil {
		return false
	}
	_, ok := grant.AllowedPubkeys[pubkey]
	return ok
}

// ShouldAutoAdmit is the should_auto_admit decision: auto-admit requires
// both the grant's AutoAdmit flag and allow-list membership.
func ShouldAutoAdmit(grant ProjectGrant, pubkey [32]byte) bool {
	return grant.AutoAdmit && IsAllowed(grant, pubkey)
}

// Policy wraps a ContactStore and GrantStore to provide the named mutators,
// each transactional with respect to the underlying store.
type Policy struct {
	Contacts ContactStore
	Grants   GrantStore
}

func (p Policy) Allow(projectID string, pubkey [32]byte) error {
	return p.Grants.Allow(projectID, pubkey)
}

func (p Policy) RemoveAllow(projectID string, pubkey [32]byte) error {
	return p.Grants.RemoveAllow(projectID, pubkey)
}

func (p Policy) SetAutoAdmit(projectID string, on bool) error {
	return p.Grants.SetAutoAdmit(projectID, on)
}

func (p Policy) BlockContact(id string) error {
	return p.Contacts.SetState(id, ContactBlocked)
}

// RemoveContact is the kill-switch: it deletes the contact's pairwise key
// material via ContactStore.Remove.
func (p Policy) RemoveContact(id string) error {
	return p.Contacts.Remove(id)
}

// ContactStateFor loads the current contact list and evaluates
// ContactStateOf against it.
func (p Policy) ContactStateFor(pubkey [32]byte) (ContactState, error) {
	contacts, err := p.Contacts.List()
	if err != nil {
		return ContactUnknown, err
	}
	return ContactStateOf(contacts, pubkey), nil
}

// IsAllowedFor loads projectID's grant and evaluates IsAllowed against it.
// A missing grant is "not allowed", not an error.
func (p Policy) IsAllowedFor(projectID string, pubkey [32]byte) (bool, error) {
	grant, found, err := p.Grants.Get(projectID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return IsAllowed(grant, pubkey), nil
}

// ShouldAutoAdmitFor loads projectID's grant and evaluates ShouldAutoAdmit.
func (p Policy) ShouldAutoAdmitFor(projectID string, pubkey [32]byte) (bool, error) {
	grant, found, err := p.Grants.Get(projectID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return ShouldAutoAdmit(grant, pubkey), nil
}
