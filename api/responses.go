package api

import (
	"github.com/xraph/keeper"
	"github.com/xraph/keeper/principal"
	"github.com/xraph/keeper/rule"
)

// SessionResponse describes the session state.
type SessionResponse struct {
	Authenticated bool                 `json:"authenticated" description:"Whether a principal is current"`
	Principal     *principal.Principal `json:"principal,omitempty" description:"Current principal"`
}

// LogoutResponse carries the navigation target after logout.
type LogoutResponse struct {
	Redirect keeper.Redirect `json:"redirect" description:"Where the client should navigate"`
}

// AuthorizeResponse answers a role query.
type AuthorizeResponse struct {
	Authorized bool `json:"authorized" description:"Whether the principal holds any requested role"`
}

// PermissionResponse answers a permission query.
type PermissionResponse struct {
	Permission string `json:"permission" description:"Queried token"`
	Granted    bool   `json:"granted" description:"Whether the principal holds the token"`
}

// EvaluateResponse is the guard's decision for a path.
type EvaluateResponse struct {
	Allowed     bool     `json:"allowed" description:"Whether navigation may proceed"`
	Decision    string   `json:"decision" description:"Decision code"`
	Reason      string   `json:"reason,omitempty" description:"Human-readable reason"`
	Path        string   `json:"path" description:"Evaluated path"`
	Rule        string   `json:"rule,omitempty" description:"Pattern of the governing rule"`
	RedirectTo  string   `json:"redirect_to,omitempty" description:"Redirect URL with from parameter"`
	Roles       []string `json:"allowed_roles,omitempty" description:"Roles the governing rule admits"`
	Permissions []string `json:"required_permissions,omitempty" description:"Permissions the governing rule requires"`
	EvalTimeNs  int64    `json:"eval_time_ns" description:"Evaluation time in nanoseconds"`
}

// RuleResponse describes one authorization rule.
type RuleResponse struct {
	Name        string   `json:"name,omitempty" description:"Rule label"`
	Pattern     string   `json:"pattern" description:"Path prefix"`
	Roles       []string `json:"allowed_roles" description:"Roles the rule admits"`
	Permissions []string `json:"required_permissions,omitempty" description:"Permissions the rule requires"`
}

// ListResponse wraps a list of items with pagination metadata.
type ListResponse[T any] struct {
	Items  []T   `json:"items" description:"List of items"`
	Total  int64 `json:"total" description:"Total count"`
	Limit  int   `json:"limit" description:"Page size"`
	Offset int   `json:"offset" description:"Page offset"`
}

func toRuleResponse(r *rule.Rule) RuleResponse {
	resp := RuleResponse{Name: r.Name, Pattern: r.Pattern}
	for _, role := range r.AllowedRoles {
		resp.Roles = append(resp.Roles, role.String())
	}
	for _, p := range r.RequiredPermissions.Sorted() {
		resp.Permissions = append(resp.Permissions, string(p))
	}
	return resp
}

func toEvaluateResponse(res *keeper.Result) *EvaluateResponse {
	resp := &EvaluateResponse{
		Allowed:    res.Allowed,
		Decision:   string(res.Decision),
		Reason:     res.Reason,
		Path:       res.Path,
		EvalTimeNs: res.EvalTimeNs,
	}
	if res.Rule != nil {
		rr := toRuleResponse(res.Rule)
		resp.Rule = rr.Pattern
		resp.Roles = rr.Roles
		resp.Permissions = rr.Permissions
	}
	if res.Redirect != nil {
		resp.RedirectTo = res.Redirect.URL()
	}
	return resp
}
