package keeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/xraph/keeper/credential"
	"github.com/xraph/keeper/plugin"
	"github.com/xraph/keeper/principal"
	"github.com/xraph/keeper/snapshot"
)

// Session holds the current principal for a single user. It is safe for
// concurrent use: queries take a read lock, and logins are serialized so
// that overlapping calls commit in the order they started.
type Session struct {
	directory credential.Directory
	store     snapshot.Store
	codec     snapshot.Codec
	navigator Navigator
	plugins   *plugin.Registry
	logger    *slog.Logger
	config    Config

	loginMu sync.Mutex

	mu      sync.RWMutex
	current *principal.Principal
}

// NewSession creates a session. WithDirectory and WithSnapshotStore are
// required. The session starts unauthenticated; call Restore to rehydrate a
// persisted principal.
func NewSession(opts ...Option) (*Session, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if o.directory == nil {
		return nil, ErrDirectoryRequired
	}
	if o.store == nil {
		return nil, ErrSnapshotStoreRequired
	}
	return &Session{
		directory: o.directory,
		store:     o.store,
		codec:     o.codec,
		navigator: o.navigator,
		plugins:   o.registry,
		logger:    o.logger,
		config:    o.config,
	}, nil
}

// Login verifies handle and secret against the directory. Bad credentials
// return false with a nil error and leave the session unchanged. On success
// the principal is persisted first and then committed, so a store failure
// returns false with the error and the session is again unchanged.
func (s *Session) Login(ctx context.Context, handle, secret string) (bool, error) {
	s.loginMu.Lock()
	defer s.loginMu.Unlock()

	if err := s.wait(ctx); err != nil {
		return false, err
	}

	// Same folding as principal.NormalizeHandle; the secret is not trimmed.
	handle = strings.TrimSpace(handle)
	if handle == "" {
		s.rejectLogin(ctx, handle)
		return false, nil
	}

	entry, err := s.directory.Lookup(ctx, handle)
	if errors.Is(err, credential.ErrNotFound) {
		s.rejectLogin(ctx, handle)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("keeper: lookup %q: %w", handle, err)
	}
	if !entry.Verify(secret) {
		s.rejectLogin(ctx, handle)
		return false, nil
	}

	p := entry.Principal.Clone()
	data, err := s.codec.Encode(p)
	if err != nil {
		return false, fmt.Errorf("keeper: encode snapshot: %w", err)
	}
	if err := s.store.SaveSnapshot(ctx, s.config.SnapshotKey, data); err != nil {
		return false, fmt.Errorf("keeper: save snapshot: %w", err)
	}

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()

	s.logger.Info("login succeeded",
		slog.String("principal_id", p.ID),
		slog.String("role", p.Role.String()),
	)
	if s.plugins != nil {
		s.plugins.EmitLoginSucceeded(ctx, p)
	}
	return true, nil
}

func (s *Session) wait(ctx context.Context) error {
	if s.config.LoginDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.config.LoginDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Session) rejectLogin(ctx context.Context, handle string) {
	s.logger.Info("login rejected", slog.String("handle", principal.NormalizeHandle(handle)))
	if s.plugins != nil {
		s.plugins.EmitLoginFailed(ctx, handle)
	}
}

// Logout clears the principal, removes the snapshot, and navigates to the
// landing path. It is idempotent. The in-memory principal is always cleared;
// a store failure is returned after navigation has been signalled.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()

	err := s.store.DeleteSnapshot(ctx, s.config.SnapshotKey)
	if err != nil {
		s.logger.Warn("delete snapshot failed", slog.String("error", err.Error()))
		err = fmt.Errorf("keeper: delete snapshot: %w", err)
	}

	s.navigator.Navigate(ctx, Redirect{To: s.config.LandingPath})

	if prev != nil {
		s.logger.Info("logged out", slog.String("principal_id", prev.ID))
	}
	if s.plugins != nil {
		s.plugins.EmitLoggedOut(ctx, prev)
	}
	return err
}

// Restore rehydrates the principal from the snapshot store and reports
// whether the session is now authenticated. A snapshot that fails to decode
// is deleted. Restore never returns an error; failures degrade to logged out.
func (s *Session) Restore(ctx context.Context) bool {
	data, err := s.store.LoadSnapshot(ctx, s.config.SnapshotKey)
	if errors.Is(err, snapshot.ErrNotFound) {
		return false
	}
	if err != nil {
		// The slot may be fine; leave it for the next attempt.
		s.logger.Warn("load snapshot failed", slog.String("error", err.Error()))
		return false
	}

	p, err := s.codec.Decode(data)
	if err != nil {
		s.logger.Warn("discarding unreadable snapshot", slog.String("error", err.Error()))
		if derr := s.store.DeleteSnapshot(ctx, s.config.SnapshotKey); derr != nil {
			s.logger.Warn("delete snapshot failed", slog.String("error", derr.Error()))
		}
		if s.plugins != nil {
			s.plugins.EmitSnapshotDiscarded(ctx, err)
		}
		return false
	}

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()

	s.logger.Debug("session restored", slog.String("principal_id", p.ID))
	if s.plugins != nil {
		s.plugins.EmitSessionRestored(ctx, p)
	}
	return true
}

// IsAuthenticated reports whether a principal is current.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// IsAuthorized reports whether the current principal's role is any of
// roles. It is false when unauthenticated or when roles is empty.
func (s *Session) IsAuthorized(roles ...principal.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.Role.In(roles...)
}

// HasPermission reports whether the current principal holds perm exactly.
func (s *Session) HasPermission(perm principal.Permission) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.HasPermission(perm)
}

// Principal returns a copy of the current principal.
func (s *Session) Principal() (*principal.Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	return s.current.Clone(), true
}

// Config returns the session's effective configuration.
func (s *Session) Config() Config { return s.config }

// Close notifies plugins of shutdown. The persisted snapshot is kept.
func (s *Session) Close(ctx context.Context) error {
	if s.plugins != nil {
		s.plugins.EmitShutdown(ctx)
	}
	return nil
}
