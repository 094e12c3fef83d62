// Package checklog defines the guard audit log Entry entity.
package checklog

import (
	"time"

	"github.com/xraph/keeper/id"
)

// Entry records one route-guard evaluation.
type Entry struct {
	ID          id.CheckLogID `json:"id" db:"id"`
	TenantID    string        `json:"tenant_id" db:"tenant_id"`
	AppID       string        `json:"app_id" db:"app_id"`
	PrincipalID string        `json:"principal_id,omitempty" db:"principal_id"`
	Role        string        `json:"role,omitempty" db:"role"`
	Path        string        `json:"path" db:"path"`
	// Rule is the pattern of the governing rule, empty when none matched.
	Rule        string        `json:"rule,omitempty" db:"rule"`
	Decision    string        `json:"decision" db:"decision"`
	Reason      string        `json:"reason,omitempty" db:"reason"`
	RedirectTo  string        `json:"redirect_to,omitempty" db:"redirect_to"`
	EvalTimeNs  int64         `json:"eval_time_ns" db:"eval_time_ns"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying check logs.
type QueryFilter struct {
	TenantID    string     `json:"tenant_id,omitempty"`
	PrincipalID string     `json:"principal_id,omitempty"`
	Path        string     `json:"path,omitempty"`
	Decision    string     `json:"decision,omitempty"`
	After       *time.Time `json:"after,omitempty"`
	Before      *time.Time `json:"before,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	Offset      int        `json:"offset,omitempty"`
}

// Matches reports whether e satisfies every set field of f, ignoring
// pagination. Backends without a query language use it to filter.
func (f *QueryFilter) Matches(e *Entry) bool {
	if f == nil {
		return true
	}
	if f.TenantID != "" && e.TenantID != f.TenantID {
		return false
	}
	if f.PrincipalID != "" && e.PrincipalID != f.PrincipalID {
		return false
	}
	if f.Path != "" && e.Path != f.Path {
		return false
	}
	if f.Decision != "" && e.Decision != f.Decision {
		return false
	}
	if f.After != nil && !e.CreatedAt.After(*f.After) {
		return false
	}
	if f.Before != nil && !e.CreatedAt.Before(*f.Before) {
		return false
	}
	return true
}
