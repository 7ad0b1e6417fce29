package vaultcfg

import "testing"

func TestValidateConfigOK(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateConfigRejectsEmptyDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = ""
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateConfigRejectsBadLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "verbose"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateConfigRejectsTimeoutNotExceedingPeriod(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeartbeatTimeout = cfg.HeartbeatPeriod
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error")
	}
}
