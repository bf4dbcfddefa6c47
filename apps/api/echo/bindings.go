package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/bursar/core"
)

var (
	pageParam    = "page"
	perPageParam = "per_page"

	errNotAnInteger = "must be a positive integer"
)

// bindPage reads the pagination query params. Missing params are left to the service defaults.
func bindPage(ctx echo.Context) (core.PageRequest, error) {
	var page core.PageRequest
	var flds []core.FieldError

	parse := func(param string, dst *int) {
		val := ctx.QueryParam(param)
		if val == "" {
			return
		}
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			flds = append(flds, core.FieldError{Field: param, Error: errNotAnInteger})
			return
		}
		*dst = n
	}
	parse(pageParam, &page.Page)
	parse(perPageParam, &page.PerPage)

	if len(flds) > 0 {
		return core.PageRequest{}, core.NewValidationError(nil, flds...)
	}
	return page, nil
}
