package echoapi

import (
	"net/mail"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/staffdesk/core"
	"github.com/trezcool/staffdesk/core/employee"
	"github.com/trezcool/staffdesk/core/session"
)

const (
	orderingParam = "ordering"
	pageParam     = "page"
	pageSizeParam = "page_size"
)

type (
	LoginResponse struct {
		Token string         `json:"token"`
		Count int            `json:"count"`
		Shape employee.Shape `json:"shape"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	SessionResponse struct {
		Authenticated bool   `json:"authenticated"`
		Username      string `json:"username"`
		Records       int    `json:"records"`
		Version       uint64 `json:"version"`
	}

	PhotoRequest struct {
		Photo string `json:"photo" validate:"required"`
	}

	PhotoResponse struct {
		ID    int    `json:"id"`
		Photo string `json:"photo"`
	}

	EmailReportRequest struct {
		To     []string `json:"to" validate:"required,min=1,dive,email"`
		Format string   `json:"format"`
	}
)

// LoginRequest holds the dashboard credentials.
type LoginRequest = session.Credentials

func (r *PhotoRequest) Validate(validate *validator.Validate) error {
	r.Photo = strings.TrimSpace(r.Photo)
	return validate.Struct(r)
}

func (r *EmailReportRequest) Validate(validate *validator.Validate) error {
	for i, addr := range r.To {
		r.To[i] = core.CleanString(addr, true /* lower */)
	}
	return validate.Struct(r)
}

func (r EmailReportRequest) Recipients() []mail.Address {
	addrs := make([]mail.Address, 0, len(r.To))
	for _, to := range r.To {
		addrs = append(addrs, mail.Address{Address: to})
	}
	return addrs
}

// bindOrderings reads `?ordering=-salary,name`.
func bindOrderings(ctx echo.Context) []core.Ordering {
	return core.ParseOrderings(ctx.QueryParam(orderingParam))
}

// queryInt reads an integer query param; missing or invalid values yield def.
func queryInt(ctx echo.Context, name string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(ctx.QueryParam(name)))
	if err != nil {
		return def
	}
	return n
}

func pathID(ctx echo.Context) (int, error) {
	return employee.ParseID(ctx.Param("id"))
}
