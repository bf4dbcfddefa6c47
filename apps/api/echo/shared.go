package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/bursar/core/user"
)

type (
	authContext struct {
		User user.User         `json:"user"`
		Role user.Capabilities `json:"role"`
	}

	sharedContext struct {
		Auth              authContext `json:"auth"`
		NotificationCount int         `json:"notification_count"`
	}

	envelope struct {
		Data   interface{}   `json:"data"`
		Shared sharedContext `json:"shared"`
	}
)

// render sends data along with the shared context. The pending count is read at this point,
// after the handler's own writes.
func (s *Server) render(ctx echo.Context, code int, data interface{}) error {
	act, ok := getContextActor(ctx)
	if !ok {
		return errUnauthorized
	}
	shared, err := s.sharedContext(ctx, act)
	if err != nil {
		return err
	}
	return ctx.JSON(code, envelope{Data: data, Shared: shared})
}

func (s *Server) sharedContext(ctx echo.Context, act actor) (sharedContext, error) {
	count, err := s.subSvc.PendingCount(ctx.Request().Context())
	if err != nil {
		return sharedContext{}, errors.Wrap(err, "getting notification count")
	}
	return sharedContext{
		Auth:              authContext{User: act.User, Role: act.Caps},
		NotificationCount: count,
	}, nil
}

// errorShared returns the shared context for error responses of authenticated requests.
func (s *Server) errorShared(ctx echo.Context) (sharedContext, bool) {
	act, ok := getContextActor(ctx)
	if !ok {
		return sharedContext{}, false
	}
	shared, err := s.sharedContext(ctx, act)
	if err != nil {
		return sharedContext{}, false
	}
	return shared, true
}

func (s *Server) shared(ctx echo.Context) error {
	return s.render(ctx, http.StatusOK, nil)
}
