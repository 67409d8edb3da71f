package student_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/student"
	emailsvc "github.com/tecliberacion/campus/services/email"
	inmemdb "github.com/tecliberacion/campus/storage/database/inmem"
)

var testConf = &core.Config{
	AppName:  "Campus",
	TestMode: true,
}

func setup(t *testing.T) (*student.Service, *inmemdb.DB) {
	t.Helper()
	emailsvc.ClearSentMessages()
	db := inmemdb.NewDB()
	repo := inmemdb.NewStudentRepository(db)
	svc := student.NewService(db, repo, emailsvc.NewConsoleService(testConf), testConf)
	return svc, db
}

func newStudent(noControl string) student.NewStudent {
	return student.NewStudent{
		FirstName:     "Ana",
		LastName:      "García",
		ControlNumber: noControl,
		Email:         noControl + "@test.cd",
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	std, err := svc.Create(ctx, newStudent("ctl001"), 1)
	require.NoError(t, err)
	assert.NotZero(t, std.ID)
	assert.Equal(t, 1, std.AdminID)

	t.Run("control number defaults as the password", func(t *testing.T) {
		assert.NoError(t, std.CheckPassword("ctl001"))
		assert.Error(t, std.CheckPassword("nope"))
	})

	t.Run("explicit password wins over the default", func(t *testing.T) {
		ns := newStudent("ctl002")
		ns.Password = "s3cret"
		std, err := svc.Create(ctx, ns, 1)
		require.NoError(t, err)
		assert.NoError(t, std.CheckPassword("s3cret"))
	})

	t.Run("duplicate control number is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, newStudent("ctl001"), 1)
		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
	})
}

func TestService_BulkCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("all rows created", func(t *testing.T) {
		svc, _ := setup(t)

		res, err := svc.BulkCreate(ctx, []student.NewStudent{
			newStudent("ctl101"), newStudent("ctl102"), newStudent("ctl103"),
		}, 1)
		require.NoError(t, err)

		assert.NotEmpty(t, res.OperationID)
		assert.Equal(t, 3, res.Successful)
		assert.Equal(t, 0, res.Failed)
		assert.Empty(t, res.Details)

		students, err := svc.QueryAll(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, students, 3)
		assert.Len(t, emailsvc.SentMessages, 3)
	})

	t.Run("duplicates fail alone, the rest go through", func(t *testing.T) {
		svc, _ := setup(t)
		_, err := svc.Create(ctx, newStudent("ctl201"), 1)
		require.NoError(t, err)
		emailsvc.ClearSentMessages()

		res, err := svc.BulkCreate(ctx, []student.NewStudent{
			newStudent("ctl201"), // already registered
			newStudent("ctl202"),
			newStudent("ctl202"), // in-batch duplicate
		}, 1)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Successful)
		assert.Equal(t, 2, res.Failed)
		require.Len(t, res.Details, 2)
		assert.Equal(t, "ctl201", res.Details[0].ControlNumber)
		assert.Equal(t, "ctl202", res.Details[1].ControlNumber)
		for _, d := range res.Details {
			assert.Equal(t, student.ErrControlNumberExists.Error(), d.Error)
		}

		// only the created row gets a welcome email
		require.Len(t, emailsvc.SentMessages, 1)
		assert.Equal(t, "ctl202@test.cd", emailsvc.SentMessages[0].To[0].Address)
	})
}

func TestService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	std, err := svc.Create(ctx, newStudent("ctl301"), 1)
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, std.ID, student.ChangePassword{
		CurrentPassword: "wrong",
		NewPassword:     "newpass1",
	})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)

	err = svc.ChangePassword(ctx, std.ID, student.ChangePassword{
		CurrentPassword: "ctl301",
		NewPassword:     "newpass1",
	})
	require.NoError(t, err)

	std, err = svc.GetByID(ctx, std.ID)
	require.NoError(t, err)
	assert.NoError(t, std.CheckPassword("newpass1"))
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	std, err := svc.Create(ctx, newStudent("ctl401"), 1)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, std.ID))
	_, err = svc.GetByID(ctx, std.ID)
	assert.Equal(t, student.ErrNotFound, errors.Cause(err))
}
