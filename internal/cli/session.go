package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jlmalone/redo/internal/canonical"
	"github.com/jlmalone/redo/internal/changelog"
	"github.com/jlmalone/redo/internal/config"
	"github.com/jlmalone/redo/internal/signing"
	"github.com/jlmalone/redo/internal/store"
)

// session bundles the open store, the loaded config, and the local
// signing identity for the duration of one command.
type session struct {
	cfg *config.Config
	st  *store.Store
	key *signing.Keypair // nil when no key file exists
}

// openSession loads config, opens the database, and reads the identity
// key file if present. Commands that author events additionally require
// requireKey.
func openSession(opts *RootOptions) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	dbPath := cfg.Database
	if opts.Database != "" {
		dbPath = opts.Database
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "create database directory", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}

	s := &session{cfg: cfg, st: st}

	if data, err := os.ReadFile(cfg.KeyFile); err == nil {
		kp, err := signing.FromSeedHex(strings.TrimSpace(string(data)))
		if err != nil {
			st.Close()
			return nil, WrapExitError(ExitCommandError, "load identity key", err)
		}
		s.key = &kp
	}

	return s, nil
}

func (s *session) Close() {
	if s.st != nil {
		s.st.Close()
	}
}

// requireKey fails with guidance when no identity exists yet.
func (s *session) requireKey() error {
	if s.key == nil {
		return NewExitError(ExitCommandError, "no identity key found; run `redo keygen` first")
	}
	return nil
}

// mint authors, signs, addresses, and appends one event. The Lamport
// counter advances past everything in the local log, and the current
// heads are recorded as parents for audit.
func (s *session) mint(ctx context.Context, action changelog.Action, taskID string, data canonical.Object) (changelog.Entry, error) {
	if err := s.requireKey(); err != nil {
		return changelog.Entry{}, err
	}

	last, err := s.st.LastLamport(ctx)
	if err != nil {
		return changelog.Entry{}, WrapExitError(ExitCommandError, "read lamport clock", err)
	}
	heads, err := s.st.Heads(ctx)
	if err != nil {
		return changelog.Entry{}, WrapExitError(ExitCommandError, "read log heads", err)
	}

	e := changelog.Entry{
		Version: changelog.Version,
		Parents: heads,
		Timestamp: changelog.Timestamp{
			Lamport: last + 1,
			Wall:    changelog.FormatWall(time.Now()),
		},
		Author: changelog.Author{
			UserID:    s.key.UserID(),
			DeviceID:  s.cfg.Author.DeviceID,
			Name:      s.cfg.Author.Name,
			PublicKey: s.key.PublicHex,
		},
		Action: action,
		TaskID: taskID,
		Data:   data,
	}

	// Sign first, then mint the address: the signature is part of the
	// id preimage.
	sig, err := signing.SignEntry(e, s.key.Private)
	if err != nil {
		return changelog.Entry{}, WrapExitError(ExitCommandError, "sign event", err)
	}
	e.Signature = sig

	id, err := e.Address()
	if err != nil {
		return changelog.Entry{}, WrapExitError(ExitCommandError, "address event", err)
	}
	e.ID = id

	if _, err := s.st.Append(ctx, e); err != nil {
		return changelog.Entry{}, WrapExitError(ExitCommandError, "append event", err)
	}

	slog.Debug("appended event",
		"id", e.ID,
		"action", string(e.Action),
		"task", e.TaskID,
		"lamport", e.Timestamp.Lamport)

	return e, nil
}

// newTaskID mints a fresh aggregate identifier.
func newTaskID() string {
	return uuid.NewString()
}
