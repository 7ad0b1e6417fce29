// Command vaultd is the reference host process for a sovereign-vault
// endpoint: it owns the local bbolt + filesystem persistence adapter and
// reports the effective session configuration a real transport layer would
// wire session.Session, rendezvous.FriendHandshake, and rendezvous.VaultLobby
// against. It does not open any network socket itself — the transport (the
// "already-open ordered byte duplex" the core expects) is out of scope here;
// like the p2p node's own skeleton main, it stops at local state and waits
// on a signal instead of driving a real network loop.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"holivault.dev/core/policy"
	"holivault.dev/core/storage"
	"holivault.dev/core/vaultcfg"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	defaults := vaultcfg.DefaultConfig()
	cfg := defaults

	fs := flag.NewFlagSet("vaultd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.DataDir, "datadir", defaults.DataDir, "vault data directory")
	fs.StringVar(&cfg.LogLevel, "log-level", defaults.LogLevel, "log level: debug|info|warn|error")
	fs.DurationVar(&cfg.HeartbeatPeriod, "heartbeat-period", defaults.HeartbeatPeriod, "session heartbeat ping interval")
	fs.DurationVar(&cfg.HeartbeatTimeout, "heartbeat-timeout", defaults.HeartbeatTimeout, "session liveness timeout")
	fs.DurationVar(&cfg.AcceptTimeout, "accept-timeout", defaults.AcceptTimeout, "file-offer accept timeout")
	fs.IntVar(&cfg.AutoAcceptMaxMB, "auto-accept-max-mb", defaults.AutoAcceptMaxMB, "auto-accept file size ceiling in MiB")
	project := fs.String("project", "", "project id to report file/contact counts for (optional)")
	dryRun := fs.Bool("dry-run", false, "print effective config and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := vaultcfg.Validate(cfg); err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevelOf(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if err := printConfig(stdout, cfg); err != nil {
		_, _ = fmt.Fprintf(stderr, "config encode failed: %v\n", err)
		return 1
	}
	if *dryRun {
		return 0
	}

	db, err := storage.Open(cfg.DataDir)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "storage open failed: %v\n", err)
		return 2
	}
	defer db.Close()

	pol := policy.Policy{Contacts: db.Contacts(), Grants: db.Grants()}
	if err := reportState(stdout, db, pol, *project); err != nil {
		_, _ = fmt.Fprintf(stderr, "state report failed: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprintln(stdout, "vaultd: ready, no transport attached")
	<-ctx.Done()
	_, _ = fmt.Fprintln(stdout, "vaultd: stopped")
	return 0
}

func reportState(w io.Writer, db *storage.DB, pol policy.Policy, project string) error {
	contacts, err := pol.Contacts.List()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "contacts: count=%d\n", len(contacts))

	if project == "" {
		return nil
	}
	grant, found, err := pol.Grants.Get(project)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "project %q: grant_found=%v auto_admit=%v allowed=%d\n", project, found, grant.AutoAdmit, len(grant.AllowedPubkeys))

	files, err := db.Files().List(project)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "project %q: files=%d\n", project, len(files))
	return nil
}

func printConfig(w io.Writer, cfg vaultcfg.Config) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

func logLevelOf(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
