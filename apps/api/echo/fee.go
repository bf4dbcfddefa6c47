package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func registerFeeAPI(g *echo.Group, s *Server) {
	g.GET("/fees", s.listFees)
}

func (s *Server) listFees(ctx echo.Context) error {
	page, err := bindPage(ctx)
	if err != nil {
		return err
	}
	fees, err := s.feeSvc.List(ctx.Request().Context(), page)
	if err != nil {
		return errors.Wrap(err, "listing fees")
	}
	return s.render(ctx, http.StatusOK, fees)
}
