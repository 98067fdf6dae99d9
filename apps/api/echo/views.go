package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/staffdesk/core/employee"
)

const (
	defaultTopEarners = 5
	defaultCityLimit  = 10
)

type viewApi struct {
	*Server
}

func registerViewAPI(g *echo.Group, authed []echo.MiddlewareFunc, s *Server) {
	api := viewApi{s}

	vg := g.Group("/views", authed...)
	vg.GET("/stats", api.stats)
	vg.GET("/groups", api.groups)
	vg.GET("/top", api.top)
	vg.GET("/salary-ranges", api.salaryRanges)
	vg.GET("/breakdown", api.breakdown)
	vg.GET("/cities", api.cities)
	vg.GET("/markers", api.markers)
}

// Handlers

func (api *viewApi) stats(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.deps.EmployeeSvc.Stats())
}

func (api *viewApi) groups(ctx echo.Context) error {
	by := ctx.QueryParam("by")
	if by == "" {
		by = employee.FieldCity
	}
	groups, err := api.deps.EmployeeSvc.Groups(by)
	if err != nil {
		return errors.Wrap(err, "grouping employees")
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *viewApi) top(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.deps.EmployeeSvc.TopEarners(queryInt(ctx, "n", defaultTopEarners)))
}

func (api *viewApi) salaryRanges(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.deps.EmployeeSvc.SalaryRanges())
}

func (api *viewApi) breakdown(ctx echo.Context) error {
	by := ctx.QueryParam("by")
	if by == "" {
		by = employee.FieldDesignation
	}
	rows, err := api.deps.EmployeeSvc.Breakdown(by)
	if err != nil {
		return errors.Wrap(err, "computing breakdown")
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *viewApi) cities(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.deps.EmployeeSvc.CityCounts(queryInt(ctx, "limit", defaultCityLimit)))
}

func (api *viewApi) markers(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.deps.EmployeeSvc.Markers())
}
