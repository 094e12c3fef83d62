package keeper

import (
	"fmt"
	"time"

	"github.com/xraph/keeper/snapshot"
)

// UnmatchedPolicy decides what happens to paths no rule covers.
type UnmatchedPolicy string

const (
	// UnmatchedAllow lets every unmatched path through, even without a
	// principal. This is the default.
	UnmatchedAllow UnmatchedPolicy = "allow"

	// UnmatchedRequireAuth lets unmatched paths through only for an
	// authenticated session.
	UnmatchedRequireAuth UnmatchedPolicy = "require_auth"
)

// Config holds configuration for sessions and guards.
type Config struct {
	// SnapshotKey is the store slot the principal is persisted under.
	// Defaults to "session-identity".
	SnapshotKey string `json:"snapshot_key,omitempty" yaml:"snapshot_key,omitempty" toml:"snapshot_key,omitempty"`

	// LoginDelay is an artificial latency applied before credentials are
	// checked. Zero means none.
	LoginDelay time.Duration `json:"login_delay,omitempty" yaml:"login_delay,omitempty" toml:"login_delay,omitempty"`

	// LoginPath receives unauthenticated requests for protected paths.
	LoginPath string `json:"login_path,omitempty" yaml:"login_path,omitempty" toml:"login_path,omitempty"`

	// UnauthorizedPath receives authenticated requests that a rule denies.
	UnauthorizedPath string `json:"unauthorized_path,omitempty" yaml:"unauthorized_path,omitempty" toml:"unauthorized_path,omitempty"`

	// LandingPath is where logout navigates.
	LandingPath string `json:"landing_path,omitempty" yaml:"landing_path,omitempty" toml:"landing_path,omitempty"`

	// UnmatchedPolicy defaults to UnmatchedAllow.
	UnmatchedPolicy UnmatchedPolicy `json:"unmatched_policy,omitempty" yaml:"unmatched_policy,omitempty" toml:"unmatched_policy,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SnapshotKey:      snapshot.DefaultKey,
		LoginPath:        "/login",
		UnauthorizedPath: "/unauthorized",
		LandingPath:      "/",
		UnmatchedPolicy:  UnmatchedAllow,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SnapshotKey == "" {
		c.SnapshotKey = d.SnapshotKey
	}
	if c.LoginPath == "" {
		c.LoginPath = d.LoginPath
	}
	if c.UnauthorizedPath == "" {
		c.UnauthorizedPath = d.UnauthorizedPath
	}
	if c.LandingPath == "" {
		c.LandingPath = d.LandingPath
	}
	if c.UnmatchedPolicy == "" {
		c.UnmatchedPolicy = d.UnmatchedPolicy
	}
	return c
}

// Validate checks field values after defaults are applied.
func (c Config) Validate() error {
	switch c.UnmatchedPolicy {
	case "", UnmatchedAllow, UnmatchedRequireAuth:
	default:
		return fmt.Errorf("keeper: unknown unmatched policy %q", c.UnmatchedPolicy)
	}
	if c.LoginDelay < 0 {
		return fmt.Errorf("keeper: login delay must not be negative")
	}
	return nil
}
