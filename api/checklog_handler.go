package api

import (
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/keeper/checklog"
)

func (a *API) registerCheckLogRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("check-logs"))

	return g.GET("/checklogs", a.listCheckLogs,
		forge.WithSummary("Query check logs"),
		forge.WithDescription("Returns route guard audit logs, newest first, with optional filters."),
		forge.WithOperationID("listCheckLogs"),
		forge.WithRequestSchema(ListCheckLogsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check log list", ListResponse[*checklog.Entry]{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listCheckLogs(ctx forge.Context, req *ListCheckLogsRequest) (*ListResponse[*checklog.Entry], error) {
	filter := &checklog.QueryFilter{
		TenantID:    tenantFromContext(ctx),
		PrincipalID: req.PrincipalID,
		Path:        req.Path,
		Decision:    req.Decision,
		Limit:       defaultLimit(req.Limit),
		Offset:      req.Offset,
	}

	if req.After != "" {
		t, err := time.Parse(time.RFC3339, req.After)
		if err != nil {
			return nil, forge.BadRequest("invalid after timestamp")
		}
		filter.After = &t
	}
	if req.Before != "" {
		t, err := time.Parse(time.RFC3339, req.Before)
		if err != nil {
			return nil, forge.BadRequest("invalid before timestamp")
		}
		filter.Before = &t
	}

	logs, err := a.checkLogs.ListCheckLogs(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.checkLogs.CountCheckLogs(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*checklog.Entry]{
		Items:  logs,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

// tenantFromContext scopes queries to the Forge organization when one is set.
func tenantFromContext(ctx forge.Context) string {
	if s, ok := forge.ScopeFrom(ctx.Context()); ok {
		return s.OrgID()
	}
	return ""
}
