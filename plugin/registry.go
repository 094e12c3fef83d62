package plugin

import (
	"context"
	"log/slog"
	"sync"

	"github.com/xraph/keeper/principal"
)

// entry pairs a hook with the plugin name for logging.
type entry[H any] struct {
	name string
	hook H
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	loginSucceeded    []entry[LoginSucceeded]
	loginFailed       []entry[LoginFailed]
	loggedOut         []entry[LoggedOut]
	sessionRestored   []entry[SessionRestored]
	snapshotDiscarded []entry[SnapshotDiscarded]
	afterGuard        []entry[AfterGuard]
	shutdown          []entry[Shutdown]
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order. Registering a
// name that is already present is a no-op.
func (r *Registry) Register(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	for _, existing := range r.plugins {
		if existing.Name() == name {
			return
		}
	}
	r.plugins = append(r.plugins, p)

	if h, ok := p.(LoginSucceeded); ok {
		r.loginSucceeded = append(r.loginSucceeded, entry[LoginSucceeded]{name, h})
	}
	if h, ok := p.(LoginFailed); ok {
		r.loginFailed = append(r.loginFailed, entry[LoginFailed]{name, h})
	}
	if h, ok := p.(LoggedOut); ok {
		r.loggedOut = append(r.loggedOut, entry[LoggedOut]{name, h})
	}
	if h, ok := p.(SessionRestored); ok {
		r.sessionRestored = append(r.sessionRestored, entry[SessionRestored]{name, h})
	}
	if h, ok := p.(SnapshotDiscarded); ok {
		r.snapshotDiscarded = append(r.snapshotDiscarded, entry[SnapshotDiscarded]{name, h})
	}
	if h, ok := p.(AfterGuard); ok {
		r.afterGuard = append(r.afterGuard, entry[AfterGuard]{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, entry[Shutdown]{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Plugin(nil), r.plugins...)
}

// EmitLoginSucceeded notifies all plugins that implement LoginSucceeded.
func (r *Registry) EmitLoginSucceeded(ctx context.Context, p *principal.Principal) {
	r.mu.RLock()
	hooks := r.loginSucceeded
	r.mu.RUnlock()
	for _, e := range hooks {
		if err := e.hook.OnLoginSucceeded(ctx, p.Clone()); err != nil {
			r.logHookError("OnLoginSucceeded", e.name, err)
		}
	}
}

// EmitLoginFailed notifies all plugins that implement LoginFailed.
func (r *Registry) EmitLoginFailed(ctx context.Context, handle string) {
	r.mu.RLock()
	hooks := r.loginFailed
	r.mu.RUnlock()
	for _, e := range hooks {
		if err := e.hook.OnLoginFailed(ctx, handle); err != nil {
			r.logHookError("OnLoginFailed", e.name, err)
		}
	}
}

// EmitLoggedOut notifies all plugins that implement LoggedOut.
func (r *Registry) EmitLoggedOut(ctx context.Context, p *principal.Principal) {
	r.mu.RLock()
	hooks := r.loggedOut
	r.mu.RUnlock()
	for _, e := range hooks {
		if err := e.hook.OnLoggedOut(ctx, p.Clone()); err != nil {
			r.logHookError("OnLoggedOut", e.name, err)
		}
	}
}

// EmitSessionRestored notifies all plugins that implement SessionRestored.
func (r *Registry) EmitSessionRestored(ctx context.Context, p *principal.Principal) {
	r.mu.RLock()
	hooks := r.sessionRestored
	r.mu.RUnlock()
	for _, e := range hooks {
		if err := e.hook.OnSessionRestored(ctx, p.Clone()); err != nil {
			r.logHookError("OnSessionRestored", e.name, err)
		}
	}
}

// EmitSnapshotDiscarded notifies all plugins that implement SnapshotDiscarded.
func (r *Registry) EmitSnapshotDiscarded(ctx context.Context, reason error) {
	r.mu.RLock()
	hooks := r.snapshotDiscarded
	r.mu.RUnlock()
	for _, e := range hooks {
		if err := e.hook.OnSnapshotDiscarded(ctx, reason); err != nil {
			r.logHookError("OnSnapshotDiscarded", e.name, err)
		}
	}
}

// EmitAfterGuard notifies all plugins that implement AfterGuard.
func (r *Registry) EmitAfterGuard(ctx context.Context, path string, result any) {
	r.mu.RLock()
	hooks := r.afterGuard
	r.mu.RUnlock()
	for _, e := range hooks {
		if err := e.hook.OnAfterGuard(ctx, path, result); err != nil {
			r.logHookError("OnAfterGuard", e.name, err)
		}
	}
}

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	hooks := r.shutdown
	r.mu.RUnlock()
	for _, e := range hooks {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated; they must not block the session.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
