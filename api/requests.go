package api

// ──────────────────────────────────────────────────
// Session requests
// ──────────────────────────────────────────────────

// LoginRequest is the body for a login.
type LoginRequest struct {
	Handle string `json:"handle" description:"Contact handle, matched case-insensitively"`
	Secret string `json:"secret" description:"Secret for the handle"`
}

// AuthorizeRequest asks whether the session holds any of the roles.
type AuthorizeRequest struct {
	Roles []string `json:"roles" description:"Role names; any one suffices"`
}

// PermissionRequest is the path parameter for a permission query.
type PermissionRequest struct {
	Token string `path:"token" description:"Permission token, e.g. admin.access"`
}

// ──────────────────────────────────────────────────
// Guard requests
// ──────────────────────────────────────────────────

// EvaluateRequest asks the guard to decide a path for the current session.
type EvaluateRequest struct {
	Path string `json:"path" description:"Requested path"`
}

// ──────────────────────────────────────────────────
// Check log requests
// ──────────────────────────────────────────────────

// ListCheckLogsRequest holds query parameters for querying check logs.
type ListCheckLogsRequest struct {
	PrincipalID string `query:"principal_id" description:"Filter by principal ID"`
	Path        string `query:"path" description:"Filter by exact path"`
	Decision    string `query:"decision" description:"Filter by decision"`
	After       string `query:"after" description:"After timestamp (RFC3339)"`
	Before      string `query:"before" description:"Before timestamp (RFC3339)"`
	Limit       int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset      int    `query:"offset" description:"Results to skip"`
}

// GetSessionRequest has no parameters.
type GetSessionRequest struct{}

// ListRulesRequest has no parameters.
type ListRulesRequest struct{}
