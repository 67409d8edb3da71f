package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core/grading"
)

type gradingApi struct {
	opts *Options
}

func registerGradingAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := gradingApi{opts: opts}

	// admin: teaching group management
	ag := g.Group("/admin/course-assignments", jwt, adminMiddleware())
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)

	// teacher portal
	tg := g.Group("/teacher", jwt, teacherMiddleware())
	tg.GET("/groups", api.queryGroups)
	tg.GET("/groups/:id/students", api.groupRoster)
	tg.POST("/grades", api.recordGrade)
	tg.GET("/groups/:id/export", api.exportGrades)
}

func (api *gradingApi) query(ctx echo.Context) error {
	assignments, err := api.opts.GradingSvc.ListAssignments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying course assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *gradingApi) create(ctx echo.Context) error {
	var data grading.NewCourseAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourseAssignment")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	assignment, err := api.opts.GradingSvc.CreateAssignment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course assignment")
	}
	return ctx.JSON(http.StatusCreated, assignment)
}

func (api *gradingApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	assignment, err := api.opts.GradingSvc.GetAssignment(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == grading.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course assignment by ID")
	}
	return ctx.JSON(http.StatusOK, assignment)
}

func (api *gradingApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data grading.UpdateCourseAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourseAssignment")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	assignment, err := api.opts.GradingSvc.UpdateAssignment(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == grading.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating course assignment")
	}
	return ctx.JSON(http.StatusOK, assignment)
}

// destroy deletes a teaching group. Groups that still hold grade records
// answer 409 until the client retries with ?force=true.
func (api *gradingApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	force := boolQueryParam(ctx, "force")

	if err := api.opts.GradingSvc.DeleteAssignment(ctx.Request().Context(), id, force); err != nil {
		if errors.Cause(err) == grading.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Teacher portal handlers

func (api *gradingApi) queryGroups(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	assignments, err := api.opts.GradingSvc.ListAssignmentsForTeacher(ctx.Request().Context(), claims.PrincipalID())
	if err != nil {
		return errors.Wrap(err, "querying teacher groups")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *gradingApi) groupRoster(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	roster, err := api.opts.GradingSvc.GroupRoster(ctx.Request().Context(), id, claims.PrincipalID())
	if err != nil {
		if errors.Cause(err) == grading.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying group roster")
	}
	return ctx.JSON(http.StatusOK, roster)
}

func (api *gradingApi) recordGrade(ctx echo.Context) error {
	var data grading.RecordGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecordGrade")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	// a teacher may only grade their own groups
	assignment, err := api.opts.GradingSvc.GetAssignment(ctx.Request().Context(), data.CourseAssignmentID)
	if err != nil {
		if errors.Cause(err) == grading.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course assignment by ID")
	}
	if assignment.TeacherID != claims.PrincipalID() {
		return errHttpForbidden
	}

	rec, err := api.opts.GradingSvc.RecordGrade(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording grade")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *gradingApi) exportGrades(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	export, err := api.opts.GradingSvc.ExportGroupGrades(ctx.Request().Context(), id, claims.PrincipalID())
	if err != nil {
		if errors.Cause(err) == grading.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, export)
}
