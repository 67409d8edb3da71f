package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/admin"
	"github.com/tecliberacion/campus/core/catalog"
	"github.com/tecliberacion/campus/core/dashboard"
	"github.com/tecliberacion/campus/core/enrollment"
	"github.com/tecliberacion/campus/core/grading"
	"github.com/tecliberacion/campus/core/student"
	"github.com/tecliberacion/campus/core/teacher"
	emailsvc "github.com/tecliberacion/campus/services/email"
	inmemdb "github.com/tecliberacion/campus/storage/database/inmem"
)

var (
	testConf = &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Campus",
		SecretKey: "secret",
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

type httpErr struct {
	Error string `json:"error"`
}

// testLogger drops everything; the error handler only logs server errors.
type testLogger struct{}

func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

type testApp struct {
	server Server

	db            *inmemdb.DB
	studentSvc    *student.Service
	adminSvc      *admin.Service
	teacherSvc    *teacher.Service
	catalogSvc    *catalog.Service
	enrollmentSvc *enrollment.Service
	gradingSvc    *grading.Service
}

func setup(t *testing.T) *testApp {
	t.Helper()
	emailsvc.ClearSentMessages()

	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	db := inmemdb.NewDB()
	stdRepo := inmemdb.NewStudentRepository(db)
	admRepo := inmemdb.NewAdminRepository(db)
	tchRepo := inmemdb.NewTeacherRepository(db)
	catRepo := inmemdb.NewCatalogRepository(db)
	enrRepo := inmemdb.NewEnrollmentRepository(db)
	grdRepo := inmemdb.NewGradingRepository(db)

	mailSvc := emailsvc.NewConsoleService(testConf)

	app := &testApp{
		db:            db,
		studentSvc:    student.NewService(db, stdRepo, mailSvc, testConf),
		adminSvc:      admin.NewService(admRepo),
		teacherSvc:    teacher.NewService(tchRepo),
		catalogSvc:    catalog.NewService(catRepo),
		enrollmentSvc: enrollment.NewService(db, enrRepo, grdRepo),
		gradingSvc:    grading.NewService(db, grdRepo, enrRepo, mailSvc, testConf),
	}
	app.server = NewServer(&Options{
		DisableReqLogs: true,
		Conf:           testConf,
		Logger:         testLogger{},
		Validate:       validate,
		Translator:     translator,
		StudentSvc:     app.studentSvc,
		AdminSvc:       app.adminSvc,
		TeacherSvc:     app.teacherSvc,
		CatalogSvc:     app.catalogSvc,
		EnrollmentSvc:  app.enrollmentSvc,
		GradingSvc:     app.gradingSvc,
		DashboardSvc:   dashboard.NewService(inmemdb.NewDashboardRepository(db)),
	})
	return app
}

// fixtures

func (app *testApp) createAdmin(t *testing.T) admin.Admin {
	t.Helper()
	adm, err := app.adminSvc.UpdateOrCreate(context.Background(), "Root Admin", "admin@test.cd", "adminpwd")
	if err != nil {
		t.Fatalf("createAdmin() failed: %v", err)
	}
	return adm
}

func (app *testApp) createStudent(t *testing.T, noControl string, adminID int) student.Student {
	t.Helper()
	std, err := app.studentSvc.Create(context.Background(), student.NewStudent{
		FirstName:     "Ana",
		LastName:      "García",
		ControlNumber: noControl,
		Email:         noControl + "@test.cd",
	}, adminID)
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return std
}

func (app *testApp) createTeacher(t *testing.T, email string) teacher.Teacher {
	t.Helper()
	tch, err := app.teacherSvc.Create(context.Background(), teacher.NewTeacher{
		FirstName: "Luis",
		LastName:  "Pérez",
		Email:     email,
		Password:  "teacherpwd",
	})
	if err != nil {
		t.Fatalf("createTeacher() failed: %v", err)
	}
	return tch
}

func (app *testApp) createCourse(t *testing.T, name string) catalog.Course {
	t.Helper()
	c, err := app.catalogSvc.CreateCourse(context.Background(), catalog.CourseData{Name: name})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return c
}

func (app *testApp) createAssignment(t *testing.T, teacherID, courseID int, group string) grading.CourseAssignment {
	t.Helper()
	a, err := app.gradingSvc.CreateAssignment(context.Background(), grading.NewCourseAssignment{
		TeacherID:  teacherID,
		CourseID:   courseID,
		GroupLabel: group,
		Period:     "2026-1",
	})
	if err != nil {
		t.Fatalf("createAssignment() failed: %v", err)
	}
	return a
}

// tokens

func getToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token, err := GenerateToken(claims, testConf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func adminToken(t *testing.T, adm admin.Admin) string {
	return getToken(t, getAdminClaims(adm, testConf))
}

func studentToken(t *testing.T, std student.Student) string {
	return getToken(t, getStudentClaims(std, testConf))
}

func teacherToken(t *testing.T, tch teacher.Teacher) string {
	return getToken(t, getTeacherClaims(tch, testConf))
}

// requests

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
