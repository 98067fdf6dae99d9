package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/staffdesk/core/session"
)

// sessionMiddleware rejects requests once the dashboard session is logged out,
// even when their token is still valid.
func sessionMiddleware(store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if !store.Authenticated() {
				return session.ErrNotAuthenticated
			}
			return next(ctx)
		}
	}
}
