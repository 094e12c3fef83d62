// Package plugin defines the plugin system for keeper.
// Plugins are notified of session lifecycle events (login, logout, restore,
// guard decisions) and can react with logging, metrics, tracing, etc.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/xraph/keeper/principal"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Session lifecycle hooks
// ──────────────────────────────────────────────────

// LoginSucceeded is called after a principal is committed by login.
type LoginSucceeded interface {
	OnLoginSucceeded(ctx context.Context, p *principal.Principal) error
}

// LoginFailed is called when a login is rejected for bad credentials.
type LoginFailed interface {
	OnLoginFailed(ctx context.Context, handle string) error
}

// LoggedOut is called after logout. p is nil if no principal was active.
type LoggedOut interface {
	OnLoggedOut(ctx context.Context, p *principal.Principal) error
}

// SessionRestored is called when a snapshot is rehydrated at startup.
type SessionRestored interface {
	OnSessionRestored(ctx context.Context, p *principal.Principal) error
}

// SnapshotDiscarded is called when a persisted snapshot fails to decode
// and is thrown away.
type SnapshotDiscarded interface {
	OnSnapshotDiscarded(ctx context.Context, reason error) error
}

// ──────────────────────────────────────────────────
// Guard hooks
// ──────────────────────────────────────────────────

// AfterGuard is called after the route guard evaluates a path.
// The result parameter is *keeper.Result (passed as any to avoid an import cycle).
type AfterGuard interface {
	OnAfterGuard(ctx context.Context, path string, result any) error
}

// ──────────────────────────────────────────────────
// Shutdown hook
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
