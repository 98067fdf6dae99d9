package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/staffdesk/core"
	"github.com/trezcool/staffdesk/core/report"
)

type reportApi struct {
	*Server
}

func registerReportAPI(g *echo.Group, authed []echo.MiddlewareFunc, s *Server) {
	api := reportApi{s}

	rg := g.Group("/reports", authed...)
	rg.GET("/:kind", api.render)
	rg.POST("/:kind/email", api.email)
}

// Handlers

func (api *reportApi) render(ctx echo.Context) error {
	kind, err := report.ParseKind(ctx.Param("kind"))
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(ctx.QueryParam("format"))
	if err != nil {
		return err
	}
	doc, err := api.deps.ReportSvc.Render(kind, format)
	if err != nil {
		return errors.Wrap(err, "rendering report")
	}
	return attachment(ctx, doc)
}

// email sends the rendered report as an attachment; delivery happens in the background.
func (api *reportApi) email(ctx echo.Context) error {
	kind, err := report.ParseKind(ctx.Param("kind"))
	if err != nil {
		return err
	}
	var data EmailReportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EmailReportRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	format, err := report.ParseFormat(data.Format)
	if err != nil {
		return err
	}

	doc, err := api.deps.ReportSvc.Render(kind, format)
	if err != nil {
		return errors.Wrap(err, "rendering report")
	}
	msg := &core.EmailMessage{
		To:          data.Recipients(),
		Subject:     fmt.Sprintf("%s report", kind),
		TextContent: fmt.Sprintf("Please find the %s report (%s) attached.", kind, doc.Filename),
	}
	if err := msg.Attach(bytes.NewReader(doc.Body), doc.Filename, doc.ContentType); err != nil {
		return errors.Wrap(err, "attaching report")
	}
	api.deps.MailSvc.SendMessages(msg)

	return ctx.JSON(http.StatusAccepted, SuccessResponse{Success: "Report " + doc.Filename + " is on its way."})
}
