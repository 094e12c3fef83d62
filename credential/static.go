package credential

import (
	"context"
	"fmt"

	"github.com/xraph/keeper/id"
	"github.com/xraph/keeper/principal"
)

// Compile-time interface check.
var _ Directory = (*Static)(nil)

// Static is an in-process, read-only directory.
type Static struct {
	entries map[string]*Entry
}

// NewStatic validates entries and indexes them by folded handle. An entry
// without a principal ID is given a generated "prin_" TypeID.
// Two entries whose handles differ only by case are rejected.
func NewStatic(entries ...Entry) (*Static, error) {
	s := &Static{entries: make(map[string]*Entry, len(entries))}
	for i := range entries {
		e := entries[i].Clone()
		if e.Principal.ID == "" {
			e.Principal.ID = id.NewPrincipalID().String()
		}
		if err := e.Principal.Validate(); err != nil {
			return nil, fmt.Errorf("credential: entry %d: %w", i, err)
		}
		if e.Secret == "" && e.SecretHash == "" {
			return nil, fmt.Errorf("credential: entry %q has no secret", e.Principal.ContactHandle)
		}
		key := principal.NormalizeHandle(e.Principal.ContactHandle)
		if _, dup := s.entries[key]; dup {
			return nil, fmt.Errorf("credential: duplicate handle %q", e.Principal.ContactHandle)
		}
		s.entries[key] = e
	}
	return s, nil
}

// MustNewStatic is like NewStatic but panics on error.
func MustNewStatic(entries ...Entry) *Static {
	s, err := NewStatic(entries...)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns a copy of the entry for handle.
func (s *Static) Lookup(_ context.Context, handle string) (*Entry, error) {
	e, ok := s.entries[principal.NormalizeHandle(handle)]
	if !ok {
		return nil, fmt.Errorf("%q: %w", handle, ErrNotFound)
	}
	return e.Clone(), nil
}

// Len returns the number of entries.
func (s *Static) Len() int { return len(s.entries) }

// Entries returns a copy of every entry.
func (s *Static) Entries() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e.Clone())
	}
	return out
}
