package extension

import "time"

// Store driver names accepted by Config.StoreDriver.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverRedis    = "redis"
)

// Config holds the keeper extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// the app's config manager (under "extensions.keeper" or "keeper" keys).
// Programmatic non-zero fields win over loaded ones.
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// DisableRestore skips rehydrating the session snapshot on start.
	DisableRestore bool `json:"disable_restore" mapstructure:"disable_restore" yaml:"disable_restore"`

	// DisableCheckLog stops the guard from recording check logs.
	DisableCheckLog bool `json:"disable_check_log" mapstructure:"disable_check_log" yaml:"disable_check_log"`

	// PolicyFile is a YAML or TOML file with session config, rules and
	// users. Empty means the built-in rules and demo accounts.
	PolicyFile string `json:"policy_file" mapstructure:"policy_file" yaml:"policy_file"`

	// StoreDriver selects the backend when no store is provided through an
	// option or the DI container: memory (default), sqlite, postgres and
	// mongo use the grove.DB registered in the container; redis dials
	// RedisAddr.
	StoreDriver string `json:"store_driver" mapstructure:"store_driver" yaml:"store_driver"`

	// RedisAddr, RedisPassword and RedisDB configure the redis driver.
	RedisAddr     string `json:"redis_addr" mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `json:"-" mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int    `json:"redis_db" mapstructure:"redis_db" yaml:"redis_db"`

	// SigningKey, when set, signs snapshots as HS256 tokens. It must be at
	// least 32 bytes.
	SigningKey string `json:"-" mapstructure:"signing_key" yaml:"signing_key"`

	// DirectoryCacheTTL, when positive, caches credential lookups for that
	// long. Unknown handles are cached for a tenth of it.
	DirectoryCacheTTL time.Duration `json:"directory_cache_ttl" mapstructure:"directory_cache_ttl" yaml:"directory_cache_ttl"`

	// RequireConfig requires config to be present in the config manager.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StoreDriver == "" {
		c.StoreDriver = d.StoreDriver
	}
	if c.RedisAddr == "" {
		c.RedisAddr = d.RedisAddr
	}
	return c
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		StoreDriver: DriverMemory,
		RedisAddr:   "localhost:6379",
	}
}
