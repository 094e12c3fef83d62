// Package extension provides a Forge extension entry point for keeper.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	"github.com/xraph/keeper"
	"github.com/xraph/keeper/api"
	"github.com/xraph/keeper/cache"
	"github.com/xraph/keeper/checklog"
	"github.com/xraph/keeper/credential"
	"github.com/xraph/keeper/middleware"
	"github.com/xraph/keeper/plugin"
	"github.com/xraph/keeper/policyfile"
	"github.com/xraph/keeper/rule"
	"github.com/xraph/keeper/snapshot"
	"github.com/xraph/keeper/store"
	"github.com/xraph/keeper/store/memory"
	"github.com/xraph/keeper/store/mongo"
	"github.com/xraph/keeper/store/postgres"
	"github.com/xraph/keeper/store/redis"
	"github.com/xraph/keeper/store/sqlite"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "keeper"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Single-user access-control session and role/permission route guard"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts keeper as a Forge extension.
type Extension struct {
	config     Config
	store      store.Store
	session    *keeper.Session
	guard      *keeper.Guard
	apiHandler *api.API
	logger     *slog.Logger
	keeperOpts []keeper.Option
	plugins    []plugin.Plugin
}

// New creates a keeper Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Session returns the session.
func (e *Extension) Session() *keeper.Session { return e.session }

// Guard returns the route guard.
func (e *Extension) Guard() *keeper.Guard { return e.guard }

// Store returns the persistence backend.
func (e *Extension) Store() store.Store { return e.store }

// API returns the API handler.
func (e *Extension) API() *api.API { return e.apiHandler }

// Middleware returns a Forge middleware that guards every request with the
// extension's session.
func (e *Extension) Middleware() forge.Middleware {
	return middleware.Guard(e.guard, middleware.Static(e.session))
}

// Register implements [forge.Extension]. It builds the session and guard,
// registers them in the DI container, and optionally registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	if err := vessel.Provide(fapp.Container(), func() (*keeper.Session, error) {
		return e.session, nil
	}); err != nil {
		return fmt.Errorf("keeper: register session in container: %w", err)
	}
	if err := vessel.Provide(fapp.Container(), func() (*keeper.Guard, error) {
		return e.guard, nil
	}); err != nil {
		return fmt.Errorf("keeper: register guard in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := e.loadConfig(fapp); err != nil {
		return err
	}

	// Resolve the store: option, then DI container, then config driver.
	if e.store == nil {
		if s, err := forge.Inject[store.Store](fapp.Container()); err == nil {
			e.store = s
		}
	}
	if e.store == nil {
		s, err := e.storeFromConfig(fapp)
		if err != nil {
			return err
		}
		e.store = s
	}

	opts, err := e.buildOptions(logger)
	if err != nil {
		return err
	}

	sess, err := keeper.NewSession(opts...)
	if err != nil {
		return fmt.Errorf("keeper: create session: %w", err)
	}
	guard, err := keeper.NewGuard(opts...)
	if err != nil {
		return fmt.Errorf("keeper: create guard: %w", err)
	}
	e.session = sess
	e.guard = guard

	var checkLogs checklog.Store
	if !e.config.DisableCheckLog {
		checkLogs = e.store
	}
	e.apiHandler = api.New(sess, guard, checkLogs, fapp.Router())

	// Register HTTP routes unless disabled.
	if !e.config.DisableRoutes {
		if err := e.apiHandler.RegisterRoutes(fapp.Router()); err != nil {
			return fmt.Errorf("keeper: register routes: %w", err)
		}
	}

	return nil
}

// loadConfig merges the config manager's "extensions.keeper" (or "keeper")
// section under the programmatic config, then applies defaults.
func (e *Extension) loadConfig(fapp forge.App) error {
	var cfg Config
	loader := forge.NewExtensionConfigLoader(fapp, fapp.Logger())
	if err := loader.LoadConfig(ExtensionName, &cfg, e.config, DefaultConfig(), e.config.RequireConfig); err != nil {
		return fmt.Errorf("keeper: load config: %w", err)
	}
	e.config = cfg.withDefaults()
	return nil
}

func (e *Extension) buildOptions(logger *slog.Logger) ([]keeper.Option, error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry := plugin.NewRegistry(logger)
	for _, x := range e.plugins {
		registry.Register(x)
	}

	opts := []keeper.Option{
		keeper.WithLogger(logger),
		keeper.WithSnapshotStore(e.store),
		keeper.WithRegistry(registry),
	}
	if !e.config.DisableCheckLog {
		opts = append(opts, keeper.WithCheckLog(e.store))
	}

	var dir credential.Directory = credential.Demo()
	if e.config.PolicyFile != "" {
		doc, err := policyfile.Load(e.config.PolicyFile)
		if err != nil {
			return nil, fmt.Errorf("keeper: load policy file: %w", err)
		}
		table, err := doc.RuleTable()
		if err != nil {
			return nil, fmt.Errorf("keeper: load policy file: %w", err)
		}
		static, err := doc.Directory()
		if err != nil {
			return nil, fmt.Errorf("keeper: load policy file: %w", err)
		}
		dir = static
		opts = append(opts, keeper.WithConfig(doc.Config), keeper.WithRules(table))
	} else {
		opts = append(opts, keeper.WithRules(rule.Defaults()))
	}

	if ttl := e.config.DirectoryCacheTTL; ttl > 0 {
		dir = cache.NewDirectory(dir, cache.WithTTL(ttl), cache.WithMissTTL(ttl/10))
	}
	opts = append(opts, keeper.WithDirectory(dir))

	if e.config.SigningKey != "" {
		codec, err := snapshot.NewSigned([]byte(e.config.SigningKey))
		if err != nil {
			return nil, fmt.Errorf("keeper: snapshot signing: %w", err)
		}
		opts = append(opts, keeper.WithCodec(codec))
	}

	return append(opts, e.keeperOpts...), nil
}

// storeFromConfig builds the backend named by Config.StoreDriver.
func (e *Extension) storeFromConfig(fapp forge.App) (store.Store, error) {
	switch e.config.StoreDriver {
	case "", DriverMemory:
		return memory.New(), nil
	case DriverRedis:
		return redis.Dial(e.config.RedisAddr, e.config.RedisPassword, e.config.RedisDB), nil
	case DriverSQLite, DriverPostgres, DriverMongo:
		db, err := forge.Inject[*grove.DB](fapp.Container())
		if err != nil {
			return nil, fmt.Errorf("keeper: %s driver needs a grove.DB in the container: %w", e.config.StoreDriver, err)
		}
		switch e.config.StoreDriver {
		case DriverSQLite:
			return sqlite.New(db), nil
		case DriverPostgres:
			return postgres.New(db), nil
		default:
			return mongo.New(db), nil
		}
	default:
		return nil, fmt.Errorf("keeper: unknown store driver %q", e.config.StoreDriver)
	}
}

// Start runs migrations if enabled and restores the persisted session.
func (e *Extension) Start(ctx context.Context) error {
	if e.session == nil {
		return errors.New("keeper: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.store.Migrate(ctx); err != nil {
			return fmt.Errorf("keeper: migration failed: %w", err)
		}
	}

	if !e.config.DisableRestore {
		e.session.Restore(ctx)
	}
	return nil
}

// Stop notifies plugins and closes the store. The session snapshot is kept
// for the next start.
func (e *Extension) Stop(ctx context.Context) error {
	if e.session == nil {
		return nil
	}
	if err := e.session.Close(ctx); err != nil {
		return err
	}
	return e.store.Close()
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("keeper: extension not initialized")
	}
	return e.store.Ping(ctx)
}

// Handler returns the HTTP handler for all API routes.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// RegisterRoutes registers all keeper API routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) error {
	if e.apiHandler != nil {
		return e.apiHandler.RegisterRoutes(router)
	}
	return nil
}
