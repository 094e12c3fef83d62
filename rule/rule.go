// Package rule defines AuthorizationRule, the static mapping from a route
// prefix to the roles and permissions required to reach it, and the Table
// that selects the most specific rule for a path.
package rule

import (
	"errors"
	"fmt"

	"github.com/xraph/keeper/principal"
)

// Rule gates every path that starts with Pattern.
type Rule struct {
	// Name is an optional label used in logs and audit entries.
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`

	// Pattern is a plain string prefix. "/admin" also matches "/administrator".
	Pattern string `json:"pattern" yaml:"pattern" toml:"pattern"`

	// AllowedRoles must be non-empty.
	AllowedRoles []principal.Role `json:"allowed_roles" yaml:"allowed_roles" toml:"allowed_roles"`

	// RequiredPermissions must all be held. Empty means role check only.
	RequiredPermissions principal.PermissionSet `json:"required_permissions,omitempty" yaml:"required_permissions,omitempty" toml:"required_permissions,omitempty"`
}

// Validate checks the rule's static invariants.
func (r *Rule) Validate() error {
	if r.Pattern == "" {
		return errors.New("rule: pattern is required")
	}
	if len(r.AllowedRoles) == 0 {
		return fmt.Errorf("rule %q: at least one allowed role is required", r.Pattern)
	}
	for _, role := range r.AllowedRoles {
		if !role.Valid() {
			return fmt.Errorf("rule %q: invalid role %d", r.Pattern, uint8(role))
		}
	}
	return nil
}

// Label returns Name if set, otherwise Pattern.
func (r *Rule) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Pattern
}

// AllowsRole reports whether role is in AllowedRoles.
func (r *Rule) AllowsRole(role principal.Role) bool {
	return role.In(r.AllowedRoles...)
}

// Clone returns a deep copy of r.
func (r *Rule) Clone() *Rule {
	cp := *r
	cp.AllowedRoles = append([]principal.Role(nil), r.AllowedRoles...)
	cp.RequiredPermissions = r.RequiredPermissions.Clone()
	return &cp
}
