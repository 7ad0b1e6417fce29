package main

import (
	"bytes"
	"testing"

	"holivault.dev/core/policy"
	"holivault.dev/core/storage"
)

func TestRunDryRunPrintsConfigAndExits(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{"--dry-run", "--datadir", dir}, &out, &errOut)
	if code != 0 {
		t.Fatalf("code=%d, stderr=%s", code, errOut.String())
	}
	if !bytes.Contains(out.Bytes(), []byte(`"data_dir"`)) {
		t.Fatalf("stdout = %s, want data_dir field", out.String())
	}
}

func TestRunInvalidLogLevelExitsTwo(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{"--dry-run", "--datadir", dir, "--log-level", "bogus"}, &out, &errOut)
	if code != 2 {
		t.Fatalf("code=%d, want 2", code)
	}
}

func TestReportStateCountsContactsAndProjectFiles(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.Open(dir)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	defer db.Close()

	if _, err := db.Contacts().Add("alice", nil); err != nil {
		t.Fatalf("Add contact: %v", err)
	}
	if err := db.Files().Save("proj-1", "notes.txt", []byte("hi")); err != nil {
		t.Fatalf("Save file: %v", err)
	}

	pol := policy.Policy{Contacts: db.Contacts(), Grants: db.Grants()}
	var out bytes.Buffer
	if err := reportState(&out, db, pol, "proj-1"); err != nil {
		t.Fatalf("reportState: %v", err)
	}
	text := out.String()
	if !bytes.Contains([]byte(text), []byte("contacts: count=1")) {
		t.Fatalf("output = %q, want contacts: count=1", text)
	}
	if !bytes.Contains([]byte(text), []byte("files=1")) {
		t.Fatalf("output = %q, want files=1", text)
	}
}

func TestLogLevelOfUnknownDefaultsToInfo(t *testing.T) {
	if logLevelOf("nonsense") != logLevelOf("info") {
		t.Fatalf("unknown level did not default to info")
	}
}
