package principal

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Permission is a fine-grained capability token such as "admin.access".
// Matching is exact: there are no wildcards or hierarchies.
type Permission string

// PermissionSet is an unordered set of permission tokens.
// The zero value is an empty set ready for reads; use NewPermissionSet or
// Add to populate it.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from tokens, dropping duplicates and empty
// tokens.
func NewPermissionSet(perms ...Permission) PermissionSet {
	s := make(PermissionSet, len(perms))
	for _, p := range perms {
		if p != "" {
			s[p] = struct{}{}
		}
	}
	return s
}

// Add inserts p into the set.
func (s PermissionSet) Add(p Permission) {
	if p != "" {
		s[p] = struct{}{}
	}
}

// Has reports whether p is a member of the set.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// ContainsAll reports whether s is a superset of required.
func (s PermissionSet) ContainsAll(required PermissionSet) bool {
	for p := range required {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// Missing returns the members of required absent from s, sorted.
func (s PermissionSet) Missing(required PermissionSet) []Permission {
	var out []Permission
	for p := range required {
		if !s.Has(p) {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}

// Sorted returns the members in lexical order.
func (s PermissionSet) Sorted() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy of s.
func (s PermissionSet) Clone() PermissionSet {
	out := make(PermissionSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

// Equal reports whether s and other hold the same tokens.
func (s PermissionSet) Equal(other PermissionSet) bool {
	return len(s) == len(other) && s.ContainsAll(other)
}

// MarshalJSON encodes the set as a sorted array.
func (s PermissionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of tokens.
func (s *PermissionSet) UnmarshalJSON(data []byte) error {
	var perms []Permission
	if err := json.Unmarshal(data, &perms); err != nil {
		return err
	}
	*s = NewPermissionSet(perms...)
	return nil
}

// MarshalYAML encodes the set as a sorted sequence.
func (s PermissionSet) MarshalYAML() (any, error) {
	return s.Sorted(), nil
}

// UnmarshalYAML decodes a sequence of tokens.
func (s *PermissionSet) UnmarshalYAML(unmarshal func(any) error) error {
	var perms []Permission
	if err := unmarshal(&perms); err != nil {
		return err
	}
	*s = NewPermissionSet(perms...)
	return nil
}

// UnmarshalTOML decodes an array of tokens.
func (s *PermissionSet) UnmarshalTOML(data any) error {
	items, ok := data.([]any)
	if !ok {
		return fmt.Errorf("principal: permissions must be an array, got %T", data)
	}
	perms := make([]Permission, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return fmt.Errorf("principal: permission must be a string, got %T", item)
		}
		perms = append(perms, Permission(str))
	}
	*s = NewPermissionSet(perms...)
	return nil
}

// MarshalTOML encodes the set as a sorted array.
func (s PermissionSet) MarshalTOML() ([]byte, error) {
	return json.Marshal(s.Sorted())
}
