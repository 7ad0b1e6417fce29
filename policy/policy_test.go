package policy

import "testing"

func pub(b byte) [32]byte {
	var p [32]byte
	p[0] = b
	return p
}

func TestContactStateOf(t *testing.T) {
	a := pub(1)
	contacts := []Contact{{Pubkey: &a, State: ContactPaused}}
	if got := ContactStateOf(contacts, a); got != ContactPaused {
		t.Fatalf("got %v want paused", got)
	}
	if got := ContactStateOf(contacts, pub(2)); got != ContactUnknown {
		t.Fatalf("got %v want unknown", got)
	}
}

func TestIsAllowedAndAutoAdmit(t *testing.T) {
	b := pub(9)
	grant := ProjectGrant{AllowedPubkeys: map[[32]byte]struct{}{b: {}}, AutoAdmit: true}
	if !IsAllowed(grant, b) {
		t.Fatalf("expected allowed")
	}
	if IsAllowed(grant, pub(10)) {
		t.Fatalf("expected not allowed")
	}
	if !ShouldAutoAdmit(grant, b) {
		t.Fatalf("expected auto-admit")
	}
	grant.AutoAdmit = false
	if ShouldAutoAdmit(grant, b) {
		t.Fatalf("expected no auto-admit when flag is off")
	}
}

func TestIsAllowedNilGrant(t *testing.T) {
	if IsAllowed(ProjectGrant{}, pub(1)) {
		t.Fatalf("zero-value grant should allow nothing")
	}
}

func TestDiffManifest(t *testing.T) {
	local := Manifest{Files: []ManifestEntry{
		{Path: "a.txt", Size: 10},
		{Path: "b.txt", Size: 20},
	}}
	remote := Manifest{Files: []ManifestEntry{
		{Path: "a.txt", Size: 10},
		{Path: "c.txt", Size: 30},
	}}
	diff := DiffManifest(local, remote)
	if len(diff.Missing) != 1 || diff.Missing[0] != "c.txt" {
		t.Fatalf("missing = %v", diff.Missing)
	}
	if len(diff.Extra) != 1 || diff.Extra[0] != "b.txt" {
		t.Fatalf("extra = %v", diff.Extra)
	}
	if len(diff.Stale) != 0 {
		t.Fatalf("stale = %v", diff.Stale)
	}
}
