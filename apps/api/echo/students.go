package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core/student"
)

type studentApi struct {
	opts *Options
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := studentApi{opts: opts}

	ug := g.Group("/admin/users", jwt, adminMiddleware())
	ug.GET("", api.query)
	ug.POST("", api.create)
	ug.POST("/bulk", api.bulkCreate)
	ug.GET("/:id", api.retrieve)
	ug.PUT("/:id", api.update)
	ug.DELETE("/:id", api.destroy)
	ug.GET("/:id/courses", api.queryCourses)
	ug.GET("/:id/exams", api.queryExams)
}

func (api *studentApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.opts.StudentSvc.QueryAll(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	std, err := api.opts.StudentSvc.Create(ctx.Request().Context(), data, claims.PrincipalID())
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

// bulkCreate registers many students at once; per-row control number
// conflicts are reported in the result details, everything else aborts.
func (api *studentApi) bulkCreate(ctx echo.Context) error {
	var rows []student.NewStudent
	if err := ctx.Bind(&rows); err != nil {
		return errors.Wrap(err, "binding to []NewStudent")
	}
	for i := range rows {
		if err := rows[i].Validate(api.opts.Validate); err != nil {
			return err
		}
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	res, err := api.opts.StudentSvc.BulkCreate(ctx.Request().Context(), rows, claims.PrincipalID())
	if err != nil {
		return errors.Wrap(err, "bulk creating students")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	std, err := api.opts.StudentSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}

	orig, err := api.opts.StudentSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	if err := data.Validate(orig, api.opts.Validate); err != nil {
		return err
	}

	std, err := api.opts.StudentSvc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.opts.StudentSvc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) queryCourses(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	enrollments, err := api.opts.EnrollmentSvc.ListForStudent(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *studentApi) queryExams(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	enrollments, err := api.opts.EnrollmentSvc.ListExamsForStudent(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying exam enrollments")
	}
	return ctx.JSON(http.StatusOK, enrollments)
}
