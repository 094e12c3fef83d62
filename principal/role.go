package principal

import (
	"fmt"
	"strings"
)

// Role is the coarse-grained category of a principal. The set is closed.
type Role uint8

// Roles. The zero value is not a valid role.
const (
	RoleAdmin Role = iota + 1
	RoleAuditor
	RoleProjectOwner
	RoleServiceProvider
	RoleGuest
)

var roleNames = map[Role]string{
	RoleAdmin:           "admin",
	RoleAuditor:         "auditor",
	RoleProjectOwner:    "projectOwner",
	RoleServiceProvider: "serviceProvider",
	RoleGuest:           "guest",
}

// Roles returns every valid role in declaration order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleAuditor, RoleProjectOwner, RoleServiceProvider, RoleGuest}
}

// ParseRole parses the text form of a role. Both camelCase ("projectOwner")
// and snake_case ("project_owner") spellings are accepted.
func ParseRole(s string) (Role, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	for r, name := range roleNames {
		if strings.ToLower(name) == norm {
			return r, nil
		}
	}
	return 0, fmt.Errorf("principal: unknown role %q", s)
}

// MustParseRole is like ParseRole but panics on error.
func MustParseRole(s string) Role {
	r, err := ParseRole(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// String returns the canonical text form, or "unknown".
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// In reports whether r is a member of roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("principal: cannot marshal invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(data []byte) error {
	parsed, err := ParseRole(string(data))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
