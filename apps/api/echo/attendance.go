package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/staffdesk/core/attendance"
)

type attendanceApi struct {
	*Server
}

func registerAttendanceAPI(g *echo.Group, authed []echo.MiddlewareFunc, s *Server) {
	api := attendanceApi{s}

	ag := g.Group("/attendance", authed...)
	ag.GET("", api.day)
	ag.POST("", api.mark)
	ag.GET("/month", api.month)
}

// Handlers

// day lists the marks of ?date= (today by default).
func (api *attendanceApi) day(ctx echo.Context) error {
	date := ctx.QueryParam("date")
	if date == "" {
		date = time.Now().Format(attendance.DateLayout)
	}
	day, err := api.deps.AttendanceSvc.Day(date)
	if err != nil {
		return errors.Wrap(err, "getting attendance")
	}
	return ctx.JSON(http.StatusOK, day)
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	var data attendance.NewMark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMark")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	if err := api.deps.AttendanceSvc.Mark(data.Date, data.EmployeeID, data.Status); err != nil {
		return errors.Wrap(err, "marking attendance")
	}

	day, err := api.deps.AttendanceSvc.Day(data.Date)
	if err != nil {
		return errors.Wrap(err, "getting attendance")
	}
	return ctx.JSON(http.StatusOK, day)
}

func (api *attendanceApi) month(ctx echo.Context) error {
	now := time.Now()
	m, err := api.deps.AttendanceSvc.Month(queryInt(ctx, "year", now.Year()), queryInt(ctx, "month", int(now.Month())))
	if err != nil {
		return errors.Wrap(err, "getting monthly attendance")
	}
	return ctx.JSON(http.StatusOK, m)
}
