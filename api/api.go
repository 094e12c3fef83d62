// Package api provides HTTP handlers for the keeper session and route guard.
package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/keeper"
	"github.com/xraph/keeper/checklog"
)

// API wires all keeper HTTP handlers together.
type API struct {
	session   *keeper.Session
	guard     *keeper.Guard
	checkLogs checklog.Store
	router    forge.Router
}

// New creates an API over a session and its guard. checkLogs may be nil, in
// which case the check log routes are not registered.
func New(session *keeper.Session, guard *keeper.Guard, checkLogs checklog.Store, router forge.Router) *API {
	return &API{session: session, guard: guard, checkLogs: checkLogs, router: router}
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	if a.router == nil {
		a.router = forge.NewRouter()
	}
	if err := a.RegisterRoutes(a.router); err != nil {
		panic("keeper: register routes: " + err.Error())
	}
	return a.router.Handler()
}

// RegisterRoutes registers all API routes into the given Forge router.
func (a *API) RegisterRoutes(router forge.Router) error {
	registerers := []func(forge.Router) error{
		a.registerSessionRoutes,
		a.registerGuardRoutes,
	}
	if a.checkLogs != nil {
		registerers = append(registerers, a.registerCheckLogRoutes)
	}
	for _, fn := range registerers {
		if err := fn(router); err != nil {
			return err
		}
	}
	return nil
}
