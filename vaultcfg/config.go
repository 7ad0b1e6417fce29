// Package vaultcfg holds the flat, validated configuration shared by the
// adapter layer (storage, cmd/vaultd) — the session/wire/rendezvous core
// itself takes its tunables as explicit constructor arguments and has no
// notion of a "config file".
package vaultcfg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	DataDir          string        `json:"data_dir"`
	LogLevel         string        `json:"log_level"`
	HeartbeatPeriod  time.Duration `json:"heartbeat_period"`
	HeartbeatTimeout time.Duration `json:"heartbeat_timeout"`
	AcceptTimeout    time.Duration `json:"accept_timeout"`
	AutoAcceptMaxMB  int           `json:"auto_accept_max_mb"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".holivault"
	}
	return filepath.Join(home, ".holivault")
}

func DefaultConfig() Config {
	return Config{
		DataDir:          DefaultDataDir(),
		LogLevel:         "info",
		HeartbeatPeriod:  5 * time.Second,
		HeartbeatTimeout: 20 * time.Second,
		AcceptTimeout:    10 * time.Second,
		AutoAcceptMaxMB:  50,
	}
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("data_dir is required")
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	if cfg.HeartbeatPeriod <= 0 {
		return errors.New("heartbeat_period must be > 0")
	}
	if cfg.HeartbeatTimeout <= cfg.HeartbeatPeriod {
		return errors.New("heartbeat_timeout must exceed heartbeat_period")
	}
	if cfg.AcceptTimeout <= 0 {
		return errors.New("accept_timeout must be > 0")
	}
	if cfg.AutoAcceptMaxMB < 0 {
		return errors.New("auto_accept_max_mb must be >= 0")
	}
	return nil
}
