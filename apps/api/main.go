package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/tecliberacion/campus/apps/api/echo"
	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/admin"
	"github.com/tecliberacion/campus/core/catalog"
	"github.com/tecliberacion/campus/core/dashboard"
	"github.com/tecliberacion/campus/core/enrollment"
	"github.com/tecliberacion/campus/core/grading"
	"github.com/tecliberacion/campus/core/student"
	"github.com/tecliberacion/campus/core/teacher"
	emailsvc "github.com/tecliberacion/campus/services/email"
	logsvc "github.com/tecliberacion/campus/services/logger"
	"github.com/tecliberacion/campus/storage/database"
)

func main() {
	conf := core.NewConfig()

	std := log.New(os.Stdout, fmt.Sprintf("%s API : ", conf.AppName), log.LstdFlags|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!(conf.Debug || conf.TestMode))

	if err := run(conf, logger); err != nil {
		logger.Fatal("running server", err)
	}
}

func run(conf *core.Config, logger core.Logger) error {
	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if err = database.Migrate(db); err != nil {
		return err
	}

	// set up validation
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	studentRepo := database.NewStudentRepository(db)
	enrollmentRepo := database.NewEnrollmentRepository(db)
	gradingRepo := database.NewGradingRepository(db)

	studentSvc := student.NewService(db, studentRepo, mailSvc, conf)
	adminSvc := admin.NewService(database.NewAdminRepository(db))
	teacherSvc := teacher.NewService(database.NewTeacherRepository(db))
	catalogSvc := catalog.NewService(database.NewCatalogRepository(db))
	enrollmentSvc := enrollment.NewService(db, enrollmentRepo, gradingRepo)
	gradingSvc := grading.NewService(db, gradingRepo, enrollmentRepo, mailSvc, conf)
	dashboardSvc := dashboard.NewService(database.NewDashboardRepository(db))

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(&echoapi.Options{
		Address:        conf.Server.Address(),
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		SignalShutdown: func() { shutdown <- syscall.SIGTERM },

		StudentSvc:    studentSvc,
		AdminSvc:      adminSvc,
		TeacherSvc:    teacherSvc,
		CatalogSvc:    catalogSvc,
		EnrollmentSvc: enrollmentSvc,
		GradingSvc:    gradingSvc,
		DashboardSvc:  dashboardSvc,
	})
	go app.Start()

	<-shutdown
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Stop(ctx)
}
