package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type sessionApi struct {
	*Server
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := sessionApi{s}

	sg := g.Group("/session")

	// un-authed endpoints
	sg.POST("/login", api.login)

	// authed endpoints
	ag := sg.Group("", jwt)
	ag.GET("", api.retrieve)
	ag.POST("/logout", api.logout)
	ag.POST("/token-refresh", api.refreshToken, sessionMiddleware(s.deps.SessionSvc.Store()))

	g.GET("/debug", api.debug, jwt, sessionMiddleware(s.deps.SessionSvc.Store()))
}

// Handlers

func (api *sessionApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	res, err := api.deps.SessionSvc.Login(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	token, err := GenerateToken(api.deps.Conf, NewClaims(api.deps.Conf, data.Username))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Count: res.Count, Shape: res.Shape})
}

func (api *sessionApi) logout(ctx echo.Context) error {
	if err := api.deps.SessionSvc.Logout(); err != nil {
		return errors.Wrap(err, "logging out")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Logged out."})
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	store := api.deps.SessionSvc.Store()
	return ctx.JSON(http.StatusOK, SessionResponse{
		Authenticated: store.Authenticated(),
		Username:      contextActor(ctx).Username,
		Records:       len(store.Records()),
		Version:       store.Version(),
	})
}

func (api *sessionApi) refreshToken(ctx echo.Context) error {
	token, err := api.newRefreshedToken(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *sessionApi) debug(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.deps.SessionSvc.Diagnostics())
}
