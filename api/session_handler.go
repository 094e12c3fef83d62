package api

import (
	"net/http"
	"strings"

	"github.com/xraph/forge"

	"github.com/xraph/keeper"
	"github.com/xraph/keeper/principal"
)

func (a *API) registerSessionRoutes(router forge.Router) error {
	g := router.Group("/v1/session", forge.WithGroupTags("session"))

	if err := g.POST("/login", a.login,
		forge.WithSummary("Log in"),
		forge.WithDescription("Verifies a handle and secret. Returns 200 with the principal on success and 401 on bad credentials."),
		forge.WithOperationID("sessionLogin"),
		forge.WithRequestSchema(LoginRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Logged in", SessionResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/logout", a.logout,
		forge.WithSummary("Log out"),
		forge.WithDescription("Clears the principal and its snapshot. Idempotent."),
		forge.WithOperationID("sessionLogout"),
		forge.WithResponseSchema(http.StatusOK, "Logged out", LogoutResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("", a.getSession,
		forge.WithSummary("Get session"),
		forge.WithDescription("Returns whether a principal is current, and the principal."),
		forge.WithOperationID("sessionGet"),
		forge.WithResponseSchema(http.StatusOK, "Session state", SessionResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/authorize", a.authorize,
		forge.WithSummary("Role query"),
		forge.WithDescription("Reports whether the principal holds any of the given roles."),
		forge.WithOperationID("sessionAuthorize"),
		forge.WithRequestSchema(AuthorizeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Role query result", AuthorizeResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/permissions/:token", a.hasPermission,
		forge.WithSummary("Permission query"),
		forge.WithDescription("Reports whether the principal holds the exact permission token."),
		forge.WithOperationID("sessionHasPermission"),
		forge.WithResponseSchema(http.StatusOK, "Permission query result", PermissionResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) login(ctx forge.Context, req *LoginRequest) (*SessionResponse, error) {
	if strings.TrimSpace(req.Handle) == "" {
		return nil, forge.BadRequest("handle is required")
	}

	ok, err := a.session.Login(ctx.Context(), req.Handle, req.Secret)
	if err != nil {
		return nil, mapError(err)
	}
	if !ok {
		resp := &SessionResponse{}
		return resp, ctx.JSON(http.StatusUnauthorized, resp)
	}

	resp := a.sessionResponse()
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) logout(ctx forge.Context, _ *GetSessionRequest) (*LogoutResponse, error) {
	if err := a.session.Logout(ctx.Context()); err != nil {
		return nil, mapError(err)
	}
	resp := &LogoutResponse{Redirect: keeper.Redirect{To: a.session.Config().LandingPath}}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) getSession(ctx forge.Context, _ *GetSessionRequest) (*SessionResponse, error) {
	resp := a.sessionResponse()
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) authorize(ctx forge.Context, req *AuthorizeRequest) (*AuthorizeResponse, error) {
	if len(req.Roles) == 0 {
		return nil, forge.BadRequest("roles cannot be empty")
	}
	roles, err := parseRoles(req.Roles)
	if err != nil {
		return nil, err
	}

	resp := &AuthorizeResponse{Authorized: a.session.IsAuthorized(roles...)}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) hasPermission(ctx forge.Context, _ *PermissionRequest) (*PermissionResponse, error) {
	token := ctx.Param("token")
	if token == "" {
		return nil, forge.BadRequest("permission token is required")
	}

	resp := &PermissionResponse{
		Permission: token,
		Granted:    a.session.HasPermission(principal.Permission(token)),
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) sessionResponse() *SessionResponse {
	p, ok := a.session.Principal()
	return &SessionResponse{Authenticated: ok, Principal: p}
}
