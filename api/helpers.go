package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/keeper/principal"
)

// mapError maps store and directory failures surfaced by the session to
// Forge HTTP errors. Bad credentials never reach it; Login reports them as
// false.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return forge.NewHTTPError(http.StatusServiceUnavailable, "request cancelled")
	}
	return forge.InternalError(fmt.Errorf("keeper: %w", err))
}

func parseRoles(names []string) ([]principal.Role, error) {
	roles := make([]principal.Role, 0, len(names))
	for _, n := range names {
		r, err := principal.ParseRole(n)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("unknown role %q", n))
		}
		roles = append(roles, r)
	}
	return roles, nil
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
