package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecliberacion/campus/core/enrollment"
)

func TestAuthApi_Login(t *testing.T) {
	app := setup(t)
	adm := app.createAdmin(t)
	app.createStudent(t, "ctl001", adm.ID)

	errAuthFailed := httpErr{Error: "authentication failed"}

	tests := []httpTest{
		{
			name:     "student logs in with control number",
			method:   http.MethodPost,
			path:     "/api/login",
			body:     marchallObj(t, LoginRequest{Username: "ctl001", Password: "ctl001"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "admin logs in with email",
			method:   http.MethodPost,
			path:     "/api/login",
			body:     marchallObj(t, LoginRequest{Username: "admin@test.cd", Password: "adminpwd"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong password",
			method:   http.MethodPost,
			path:     "/api/login",
			body:     marchallObj(t, LoginRequest{Username: "ctl001", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, errAuthFailed),
		},
		{
			name:     "unknown username",
			method:   http.MethodPost,
			path:     "/api/login",
			body:     marchallObj(t, LoginRequest{Username: "ghost@test.cd", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, errAuthFailed),
		},
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/api/login",
			body:     marchallObj(t, LoginRequest{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var res TokenResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
				assert.NotEmpty(t, res.Token)
			}
		})
	}
}

func TestAuthApi_LoginTeacher(t *testing.T) {
	app := setup(t)
	app.createTeacher(t, "luis@test.cd")

	req, rec := newRequest(http.MethodPost, "/api/login-teacher",
		marchallObj(t, TeacherLoginRequest{Email: "luis@test.cd", Password: "teacherpwd"}))
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Token)

	t.Run("wrong password", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/login-teacher",
			marchallObj(t, TeacherLoginRequest{Email: "luis@test.cd", Password: "nope"}))
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"})}
		checkCodeAndData(t, tt, rec)
	})
}

func TestAuthApi_Profile(t *testing.T) {
	app := setup(t)
	adm := app.createAdmin(t)
	std := app.createStudent(t, "ctl001", adm.ID)
	tch := app.createTeacher(t, "luis@test.cd")

	t.Run("requires a token", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/profile")
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("student profile", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/profile", studentToken(t, std))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var res map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Contains(t, res, "student")
		assert.Contains(t, res, "courses")
		assert.Contains(t, res, "exams")
		assert.NotContains(t, res, "current_course")
	})

	t.Run("student profile carries the enrollments and the course in progress", func(t *testing.T) {
		course := app.createCourse(t, "B1")
		_, err := app.enrollmentSvc.Assign(context.Background(), std.ID, course.ID, enrollment.CourseAssignmentData{
			Status: enrollment.StatusInProgress,
		})
		require.NoError(t, err)

		req, rec := newAuthRequest(http.MethodGet, "/api/profile", studentToken(t, std))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var res map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Contains(t, res, "current_course")

		var courses []enrollment.Enrollment
		require.NoError(t, json.Unmarshal(res["courses"], &courses))
		require.Len(t, courses, 1)
		assert.Equal(t, course.ID, courses[0].CourseID)

		var exams []enrollment.ExamEnrollment
		require.NoError(t, json.Unmarshal(res["exams"], &exams))
		assert.Empty(t, exams)
	})

	t.Run("teacher profile", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/profile", teacherToken(t, tch))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "teacher")
	})

	t.Run("admin profile", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/profile", adminToken(t, adm))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "admin")
	})
}

func TestAuthApi_TokenRefresh(t *testing.T) {
	app := setup(t)
	adm := app.createAdmin(t)
	std := app.createStudent(t, "ctl001", adm.ID)

	req, rec := newAuthRequest(http.MethodPost, "/api/token-refresh", studentToken(t, std))
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Token)
}

func TestAuthApi_ChangePassword(t *testing.T) {
	app := setup(t)
	adm := app.createAdmin(t)
	std := app.createStudent(t, "ctl001", adm.ID)

	t.Run("admins have no student password", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/api/change-password", adminToken(t, adm),
			marchallObj(t, map[string]string{"current_password": "adminpwd", "new_password": "newpass1"}))
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("wrong current password", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/api/change-password", studentToken(t, std),
			marchallObj(t, map[string]string{"current_password": "nope", "new_password": "newpass1"}))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("happy path", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/api/change-password", studentToken(t, std),
			marchallObj(t, map[string]string{"current_password": "ctl001", "new_password": "newpass1"}))
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, SuccessResponse{Success: "Password has been changed."})}
		checkCodeAndData(t, tt, rec)
	})
}
