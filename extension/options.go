package extension

import (
	"log/slog"

	"github.com/xraph/keeper"
	"github.com/xraph/keeper/plugin"
	"github.com/xraph/keeper/store"
)

// ExtOption configures the keeper Forge extension.
type ExtOption func(*Extension)

// WithStore sets the persistence backend.
func WithStore(s store.Store) ExtOption {
	return func(e *Extension) {
		e.store = s
	}
}

// WithConfig sets the extension configuration.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithKeeperOptions adds session and guard options. They are applied after
// the extension's own, so they override the policy file.
func WithKeeperOptions(opts ...keeper.Option) ExtOption {
	return func(e *Extension) {
		e.keeperOpts = append(e.keeperOpts, opts...)
	}
}

// WithPolicyFile loads config, rules and users from path.
func WithPolicyFile(path string) ExtOption {
	return func(e *Extension) {
		e.config.PolicyFile = path
	}
}

// WithPlugin registers a lifecycle hook plugin.
func WithPlugin(x plugin.Plugin) ExtOption {
	return func(e *Extension) {
		e.plugins = append(e.plugins, x)
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithDisableRoutes disables the registration of HTTP routes.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) {
		e.config.DisableRoutes = true
	}
}

// WithDisableMigrate disables auto-migration on start.
func WithDisableMigrate() ExtOption {
	return func(e *Extension) {
		e.config.DisableMigrate = true
	}
}
