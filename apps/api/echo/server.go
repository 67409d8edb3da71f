package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/admin"
	"github.com/tecliberacion/campus/core/catalog"
	"github.com/tecliberacion/campus/core/dashboard"
	"github.com/tecliberacion/campus/core/enrollment"
	"github.com/tecliberacion/campus/core/grading"
	"github.com/tecliberacion/campus/core/student"
	"github.com/tecliberacion/campus/core/teacher"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		SignalShutdown func()

		StudentSvc    *student.Service
		AdminSvc      *admin.Service
		TeacherSvc    *teacher.Service
		CatalogSvc    *catalog.Service
		EnrollmentSvc *enrollment.Service
		GradingSvc    *grading.Service
		DashboardSvc  *dashboard.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	api := s.app.Group("/api")
	jwtConf := newJWTConfig(conf)
	jwt := middleware.JWTWithConfig(jwtConf)

	registerAuthAPI(api, jwt, s.opts)
	registerStudentAPI(api, jwt, s.opts)
	registerTeacherAPI(api, jwt, s.opts)
	registerCatalogAPI(api, jwt, s.opts)
	registerEnrollmentAPI(api, jwt, s.opts)
	registerGradingAPI(api, jwt, s.opts)
	registerStatsAPI(api, jwt, s.opts)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Campus API!")
}
