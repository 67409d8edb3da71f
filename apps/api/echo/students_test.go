package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecliberacion/campus/core/batch"
	"github.com/tecliberacion/campus/core/student"
)

func newStudentBody(noControl string) student.NewStudent {
	return student.NewStudent{
		FirstName:     "Ana",
		LastName:      "García",
		ControlNumber: noControl,
		Email:         noControl + "@test.cd",
	}
}

func TestStudentApi_Create(t *testing.T) {
	app := setup(t)
	adm := app.createAdmin(t)
	token := adminToken(t, adm)

	tests := []httpTest{
		{
			name:     "requires a token",
			method:   http.MethodPost,
			path:     "/api/admin/users",
			body:     marchallObj(t, newStudentBody("ctl001")),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "happy path",
			method:   http.MethodPost,
			path:     "/api/admin/users",
			body:     marchallObj(t, newStudentBody("ctl001")),
			token:    token,
			wantCode: http.StatusCreated,
		},
		{
			name:     "malformed control number",
			method:   http.MethodPost,
			path:     "/api/admin/users",
			body:     marchallObj(t, newStudentBody("x!")),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"control_number": "must be a valid control number (6 to 12 letters or digits)"}),
		},
		{
			name:     "duplicate control number",
			method:   http.MethodPost,
			path:     "/api/admin/users",
			body:     marchallObj(t, newStudentBody("ctl001")),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"control_number": student.ErrControlNumberExists.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var std student.Student
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &std))
				assert.NotZero(t, std.ID)
				assert.Equal(t, adm.ID, std.AdminID)
			}
		})
	}
}

func TestStudentApi_BulkCreate(t *testing.T) {
	app := setup(t)
	adm := app.createAdmin(t)
	app.createStudent(t, "ctl001", adm.ID)
	token := adminToken(t, adm)

	req, rec := newAuthRequest(http.MethodPost, "/api/admin/users/bulk", token,
		marchallObj(t, []student.NewStudent{
			newStudentBody("ctl001"), // taken
			newStudentBody("ctl002"),
			newStudentBody("ctl003"),
		}))
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res batch.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Successful)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Details, 1)
	assert.Equal(t, "ctl001", res.Details[0].ControlNumber)

	t.Run("one malformed row rejects the request", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/users/bulk", token,
			marchallObj(t, []student.NewStudent{
				newStudentBody("ctl004"),
				newStudentBody("x!"),
			}))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStudentApi_Query(t *testing.T) {
	app := setup(t)
	adm := app.createAdmin(t)
	app.createStudent(t, "ctl002", adm.ID)
	app.createStudent(t, "ctl001", adm.ID)
	token := adminToken(t, adm)

	req, rec := newAuthRequest(http.MethodGet, "/api/admin/users?ordering=-control_number", token)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var students []student.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
	require.Len(t, students, 2)
	assert.Equal(t, "ctl002", students[0].ControlNumber)
	assert.Equal(t, "ctl001", students[1].ControlNumber)
}

func TestStudentApi_RetrieveUpdateDestroy(t *testing.T) {
	app := setup(t)
	adm := app.createAdmin(t)
	std := app.createStudent(t, "ctl001", adm.ID)
	token := adminToken(t, adm)
	path := fmt.Sprintf("/api/admin/users/%d", std.ID)

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, token)
		app.server.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, std)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("update keeps omitted fields", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, token,
			marchallObj(t, map[string]string{"first_name": "Anita"}))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var updated student.Student
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "Anita", updated.FirstName)
		assert.Equal(t, std.LastName, updated.LastName)
		assert.Equal(t, std.Email, updated.Email)
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, path, token)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, path, token)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
