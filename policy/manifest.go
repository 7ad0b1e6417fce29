package policy

// ManifestDiff is the result of reconciling a local file listing against a
// peer's over the `manifest`/`sync`/`req-files` rendezvous actions, following
// the store.Manifest/SchemaVersion comparison pattern in node/store/manifest.go.
type ManifestDiff struct {
	// Missing are paths present in remote but absent locally — candidates
	// for a req-files request.
	Missing []string
	// Stale are paths present in both but with a different size or a
	// newer remote LastModified.
	Stale []string
	// Extra are paths present locally but absent from remote.
	Extra []string
}

// DiffManifest compares a local and remote Manifest by path. It is a pure
// function: no filesystem or network access, so it is trivially testable
// and safe to call speculatively before committing to a transfer.
func DiffManifest(local, remote Manifest) ManifestDiff {
	localByPath := make(map[string]ManifestEntry, len(local.Files))
	for _, f := range local.Files {
		localByPath[f.Path] = f
	}
	remoteByPath := make(map[string]ManifestEntry, len(remote.Files))
	for _, f := range remote.Files {
		remoteByPath[f.Path] = f
	}

	var diff ManifestDiff
	for path, rf := range remoteByPath {
		lf, ok := localByPath[path]
		if !ok {
			diff.Missing = append(diff.Missing, path)
			continue
		}
		if lf.Size != rf.Size || rf.LastModified.After(lf.LastModified) {
			diff.Stale = append(diff.Stale, path)
		}
	}
	for path := range localByPath {
		if _, ok := remoteByPath[path]; !ok {
			diff.Extra = append(diff.Extra, path)
		}
	}
	return diff
}
