// Package principal defines the authenticated identity held by a session:
// its closed Role enumeration and its set of Permission tokens.
package principal

import (
	"errors"
	"strings"
)

// Principal is the authenticated identity of a session.
type Principal struct {
	ID            string        `json:"id" yaml:"id" toml:"id"`
	DisplayName   string        `json:"display_name" yaml:"display_name" toml:"display_name"`
	ContactHandle string        `json:"contact_handle" yaml:"contact_handle" toml:"contact_handle"`
	Role          Role          `json:"role" yaml:"role" toml:"role"`
	Permissions   PermissionSet `json:"permissions" yaml:"permissions" toml:"permissions"`
}

// Validate checks the fields a principal must carry.
func (p *Principal) Validate() error {
	if p == nil {
		return errors.New("principal: nil principal")
	}
	if p.ID == "" {
		return errors.New("principal: id is required")
	}
	if strings.TrimSpace(p.ContactHandle) == "" {
		return errors.New("principal: contact handle is required")
	}
	if !p.Role.Valid() {
		return errors.New("principal: role is invalid")
	}
	return nil
}

// HasPermission reports whether perm is in the principal's permission set.
func (p *Principal) HasPermission(perm Permission) bool {
	return p != nil && p.Permissions.Has(perm)
}

// Clone returns a deep copy of p.
func (p *Principal) Clone() *Principal {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Permissions = p.Permissions.Clone()
	return &cp
}

// Equal reports whether p and other have identical fields.
func (p *Principal) Equal(other *Principal) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.ID == other.ID &&
		p.DisplayName == other.DisplayName &&
		p.ContactHandle == other.ContactHandle &&
		p.Role == other.Role &&
		p.Permissions.Equal(other.Permissions)
}

// NormalizeHandle folds a contact handle for case-insensitive comparison.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}
