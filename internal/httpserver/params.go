package httpserver

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/multisite_shop/internal/service"
	"github.com/Skotchmaster/multisite_shop/internal/transport"
)

func pathID(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, service.Validationf("%s %q is not a valid id", name, raw)
	}
	return uint(id), nil
}

func queryID(c echo.Context, name string) (*uint, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, service.Validationf("%s %q is not a valid id", name, raw)
	}
	v := uint(id)
	return &v, nil
}

func bindBody(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return service.Validationf("invalid body")
	}
	return nil
}

func bindPage(c echo.Context) (transport.PageRequest, error) {
	var r transport.PageRequest
	err := echo.QueryParamsBinder(c).
		Int("pageNumber", &r.PageNumber).
		Int("pageSize", &r.PageSize).
		String("orderBy", &r.OrderBy).
		Bool("descending", &r.Descending).
		String("search", &r.Search).
		BindError()
	if err != nil {
		return r, service.Validationf("invalid paging parameters")
	}
	return r, nil
}
