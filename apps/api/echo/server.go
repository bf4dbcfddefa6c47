package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kat-co/vala"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/bursar/core"
	"github.com/trezcool/bursar/core/fee"
	"github.com/trezcool/bursar/core/submission"
	"github.com/trezcool/bursar/core/user"
)

type Server struct {
	app      *echo.Echo
	conf     *core.Config
	logger   core.Logger
	errors   chan error
	shutdown chan os.Signal

	usrSvc *user.Service
	feeSvc *fee.Service
	subSvc *submission.Service
}

func NewServer(
	conf *core.Config,
	logger core.Logger,
	usrSvc *user.Service,
	feeSvc *fee.Service,
	subSvc *submission.Service,
) *Server {
	vala.BeginValidation().Validate(
		vala.IsNotNil(conf, "conf"),
		vala.IsNotNil(logger, "logger"),
		vala.IsNotNil(usrSvc, "usrSvc"),
		vala.IsNotNil(feeSvc, "feeSvc"),
		vala.IsNotNil(subSvc, "subSvc"),
	).CheckAndPanic()

	s := &Server{
		app:      echo.New(),
		conf:     conf,
		logger:   logger,
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
		usrSvc:   usrSvc,
		feeSvc:   feeSvc,
		subSvc:   subSvc,
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Debug = s.conf.Debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.signalShutdown, s.errorShared)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.Server.DisableRequestLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.GET("/", home)

	v1 := s.app.Group("/v1", middleware.JWTWithConfig(newJWTConfig(s.conf)), actorMiddleware(s.usrSvc))
	v1.GET("/shared", s.shared)

	registerFeeAPI(v1, s)
	registerSubmissionAPI(v1, s)
}

// Start listens on the configured address. Errors other than a closed server are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// Close stops the server immediately.
func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Bursar API!")
}
