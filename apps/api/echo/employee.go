package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/staffdesk/core/employee"
	"github.com/trezcool/staffdesk/core/report"
	photosvc "github.com/trezcool/staffdesk/services/photo"
)

type employeeApi struct {
	*Server
}

func registerEmployeeAPI(g *echo.Group, authed []echo.MiddlewareFunc, s *Server) {
	api := employeeApi{s}

	eg := g.Group("/employees", authed...)
	eg.GET("", api.query)

	// detail endpoints
	dg := eg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/export", api.export)
	dg.GET("/slip", api.slip)

	dg.GET("/photo", api.retrievePhoto)
	dg.PUT("/photo", api.updatePhoto)
	dg.DELETE("/photo", api.destroyPhoto)
}

// Handlers

func (api *employeeApi) query(ctx echo.Context) error {
	var filter employee.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	page, err := api.deps.EmployeeSvc.Query(
		filter,
		bindOrderings(ctx),
		queryInt(ctx, pageParam, 1),
		queryInt(ctx, pageSizeParam, api.deps.EmployeeSvc.PageSize()),
	)
	if err != nil {
		return errors.Wrap(err, "querying employees")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *employeeApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	emp, err := api.deps.EmployeeSvc.GetByID(id)
	if err != nil {
		return errors.Wrap(err, "getting employee")
	}
	return ctx.JSON(http.StatusOK, emp)
}

func (api *employeeApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data employee.UpdateEmployee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEmployee")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	emp, err := api.deps.EmployeeSvc.Update(id, data)
	if err != nil {
		return errors.Wrap(err, "updating employee")
	}
	return ctx.JSON(http.StatusOK, emp)
}

func (api *employeeApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.deps.EmployeeSvc.Delete(id); err != nil {
		return errors.Wrap(err, "deleting employee")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *employeeApi) export(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	doc, err := api.deps.ReportSvc.ExportEmployee(id)
	if err != nil {
		return errors.Wrap(err, "exporting employee")
	}
	return attachment(ctx, doc)
}

func (api *employeeApi) slip(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(ctx.QueryParam("format"))
	if err != nil {
		return err
	}
	doc, err := api.deps.ReportSvc.RenderSlip(id, format)
	if err != nil {
		return errors.Wrap(err, "rendering salary slip")
	}
	return attachment(ctx, doc)
}

func (api *employeeApi) retrievePhoto(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	photo, ok := api.deps.SessionSvc.Store().Photo(id)
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, PhotoResponse{ID: id, Photo: photo})
}

func (api *employeeApi) updatePhoto(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if _, err := api.deps.EmployeeSvc.GetByID(id); err != nil {
		return err
	}
	var data PhotoRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PhotoRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	photo, err := photosvc.Process(data.Photo)
	if err != nil {
		return err
	}
	if err := api.deps.SessionSvc.Store().SetPhoto(id, photo); err != nil {
		return errors.Wrap(err, "saving photo")
	}
	return ctx.JSON(http.StatusOK, PhotoResponse{ID: id, Photo: photo})
}

func (api *employeeApi) destroyPhoto(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.deps.SessionSvc.Store().SetPhoto(id, ""); err != nil {
		return errors.Wrap(err, "removing photo")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// attachment sends a rendered document as a download.
func attachment(ctx echo.Context, doc *report.Document) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+doc.Filename+`"`)
	return ctx.Blob(http.StatusOK, doc.ContentType, doc.Body)
}
