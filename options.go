package keeper

import (
	"log/slog"

	"github.com/xraph/keeper/checklog"
	"github.com/xraph/keeper/credential"
	"github.com/xraph/keeper/plugin"
	"github.com/xraph/keeper/rule"
	"github.com/xraph/keeper/snapshot"
)

// options collects settings shared by NewSession and NewGuard. Each
// constructor reads the fields it needs and ignores the rest, so one option
// slice can build both.
type options struct {
	directory credential.Directory
	store     snapshot.Store
	codec     snapshot.Codec
	navigator Navigator
	logger    *slog.Logger
	config    Config
	registry  *plugin.Registry
	plugins   []plugin.Plugin
	rules     *rule.Table
	checkLogs checklog.Store
}

// Option is a functional option for NewSession and NewGuard.
type Option func(*options)

// WithDirectory sets the credential directory logins are verified against.
func WithDirectory(d credential.Directory) Option {
	return func(o *options) { o.directory = d }
}

// WithSnapshotStore sets where the principal is persisted.
func WithSnapshotStore(s snapshot.Store) Option {
	return func(o *options) { o.store = s }
}

// WithCodec sets the snapshot codec. Defaults to snapshot.JSON.
func WithCodec(c snapshot.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithNavigator sets the receiver of redirect signals.
func WithNavigator(n Navigator) Option {
	return func(o *options) { o.navigator = n }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithConfig sets the configuration. Zero fields take defaults.
func WithConfig(c Config) Option {
	return func(o *options) { o.config = c }
}

// WithRegistry shares an existing plugin registry, typically between a
// session and its guard.
func WithRegistry(r *plugin.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithPlugin registers a plugin.
func WithPlugin(x plugin.Plugin) Option {
	return func(o *options) { o.plugins = append(o.plugins, x) }
}

// WithRules sets the guard's rule table.
func WithRules(t *rule.Table) Option {
	return func(o *options) { o.rules = t }
}

// WithCheckLog records every guard check into s.
func WithCheckLog(s checklog.Store) Option {
	return func(o *options) { o.checkLogs = s }
}

func buildOptions(opts []Option) (*options, error) {
	o := &options{
		codec:  snapshot.JSON{},
		logger: slog.Default(),
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.config = o.config.withDefaults()
	if err := o.config.Validate(); err != nil {
		return nil, err
	}
	if o.navigator == nil {
		o.navigator = noopNavigator{}
	}
	if o.registry == nil && len(o.plugins) > 0 {
		o.registry = plugin.NewRegistry(o.logger)
	}
	for _, x := range o.plugins {
		o.registry.Register(x)
	}
	return o, nil
}
