package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core/enrollment"
)

type enrollmentApi struct {
	opts *Options
}

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := enrollmentApi{opts: opts}

	ag := g.Group("/admin", jwt, adminMiddleware())
	ag.POST("/users/:id/courses/:courseID", api.assignCourse)
	ag.POST("/users/:id/exams/:examID", api.assignExam)
	ag.PUT("/user-courses/:id", api.updateEnrollment)
	ag.DELETE("/user-courses/:id", api.destroyEnrollment)
	ag.PUT("/user-exams/:id", api.updateExamEnrollment)
	ag.DELETE("/user-exams/:id", api.destroyExamEnrollment)
	ag.POST("/bulk-assign-course", api.bulkAssign)
	ag.POST("/bulk-remove-course", api.bulkRemove)
}

func (api *enrollmentApi) assignCourse(ctx echo.Context) error {
	studentID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	courseID, err := pathID(ctx, "courseID")
	if err != nil {
		return err
	}

	var data enrollment.CourseAssignmentData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseAssignmentData")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	enr, err := api.opts.EnrollmentSvc.Assign(ctx.Request().Context(), studentID, courseID, data)
	if err != nil {
		switch errors.Cause(err) {
		case enrollment.ErrStudentNotFound, enrollment.ErrCourseNotFound:
			return errHttpNotFound
		}
		return errors.Wrap(err, "assigning course")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *enrollmentApi) assignExam(ctx echo.Context) error {
	studentID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	examID, err := pathID(ctx, "examID")
	if err != nil {
		return err
	}

	var data enrollment.ExamAssignmentData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ExamAssignmentData")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	enr, err := api.opts.EnrollmentSvc.AssignExam(ctx.Request().Context(), studentID, examID, data)
	if err != nil {
		if errors.Cause(err) == enrollment.ErrStudentNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "assigning exam")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *enrollmentApi) updateEnrollment(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data enrollment.CourseAssignmentData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseAssignmentData")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	enr, err := api.opts.EnrollmentSvc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == enrollment.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating enrollment")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) destroyEnrollment(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.opts.EnrollmentSvc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == enrollment.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting enrollment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *enrollmentApi) updateExamEnrollment(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data enrollment.ExamAssignmentData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ExamAssignmentData")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	enr, err := api.opts.EnrollmentSvc.UpdateExam(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == enrollment.ErrExamNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating exam enrollment")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) destroyExamEnrollment(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.opts.EnrollmentSvc.DeleteExam(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == enrollment.ErrExamNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting exam enrollment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// bulkAssign enrolls many students in one course. Per-row conflicts are
// reported in the result details; anything else rolls the batch back.
func (api *enrollmentApi) bulkAssign(ctx echo.Context) error {
	var data enrollment.BulkCourseAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkCourseAssignment")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	res, err := api.opts.EnrollmentSvc.BulkAssign(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == enrollment.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "bulk assigning course")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *enrollmentApi) bulkRemove(ctx echo.Context) error {
	var data enrollment.BulkCourseRemoval
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkCourseRemoval")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	res, err := api.opts.EnrollmentSvc.BulkRemove(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "bulk removing course")
	}
	return ctx.JSON(http.StatusOK, res)
}
