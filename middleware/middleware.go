// Package middleware provides HTTP route-guard middleware for keeper.
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/keeper"
	"github.com/xraph/keeper/principal"
)

// SessionResolver finds the session a request acts under. It returns nil
// for an anonymous request.
type SessionResolver func(ctx forge.Context) *keeper.Session

// FromContext resolves the session stored with keeper.WithSession.
func FromContext(ctx forge.Context) *keeper.Session {
	s, _ := keeper.SessionFromContext(ctx.Context())
	return s
}

// Static resolves every request to s. Single-user hosts use it.
func Static(s *keeper.Session) SessionResolver {
	return func(forge.Context) *keeper.Session { return s }
}

// Guard runs the route guard on every request path. A denied request is
// answered with a 302 to the login or unauthorized path, carrying the
// original path in the "from" query parameter.
func Guard(g *keeper.Guard, resolve SessionResolver) forge.Middleware {
	if resolve == nil {
		resolve = FromContext
	}
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			res := g.Check(ctx.Context(), resolve(ctx), ctx.Request().URL.Path)
			if res.Allowed {
				return next(ctx)
			}
			ctx.SetHeader("Location", res.Redirect.URL())
			ctx.Response().WriteHeader(http.StatusFound)
			return nil
		}
	}
}

// RequireRole allows the request only if the session's role is any of
// roles. It answers 401 without a principal and 403 otherwise.
func RequireRole(resolve SessionResolver, roles ...principal.Role) forge.Middleware {
	if resolve == nil {
		resolve = FromContext
	}
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			s := resolve(ctx)
			if s == nil || !s.IsAuthenticated() {
				return denyResponse(ctx, http.StatusUnauthorized, keeper.ErrNotAuthenticated)
			}
			if !s.IsAuthorized(roles...) {
				return denyResponse(ctx, http.StatusForbidden, keeper.ErrAccessDenied)
			}
			return next(ctx)
		}
	}
}

// RequirePermission allows the request only if the session holds every
// listed permission.
func RequirePermission(resolve SessionResolver, perms ...principal.Permission) forge.Middleware {
	if resolve == nil {
		resolve = FromContext
	}
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			s := resolve(ctx)
			if s == nil || !s.IsAuthenticated() {
				return denyResponse(ctx, http.StatusUnauthorized, keeper.ErrNotAuthenticated)
			}
			for _, p := range perms {
				if !s.HasPermission(p) {
					return denyResponse(ctx, http.StatusForbidden, keeper.ErrAccessDenied)
				}
			}
			return next(ctx)
		}
	}
}

func denyResponse(ctx forge.Context, status int, err error) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(status)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": err.Error()})
}
