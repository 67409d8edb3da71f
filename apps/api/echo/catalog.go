package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core/catalog"
)

type catalogApi struct {
	opts *Options
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := catalogApi{opts: opts}

	cg := g.Group("/admin/courses", jwt, adminMiddleware())
	cg.GET("", api.queryCourses)
	cg.POST("", api.createCourse)
	cg.GET("/:id", api.retrieveCourse)
	cg.PUT("/:id", api.updateCourse)
	cg.DELETE("/:id", api.destroyCourse)

	eg := g.Group("/admin/exams", jwt, adminMiddleware())
	eg.GET("", api.queryExams)
	eg.POST("", api.createExam)
	eg.GET("/:id", api.retrieveExam)
	eg.PUT("/:id", api.updateExam)
	eg.DELETE("/:id", api.destroyExam)
}

func (api *catalogApi) queryCourses(ctx echo.Context) error {
	courses, err := api.opts.CatalogSvc.QueryAllCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *catalogApi) createCourse(ctx echo.Context) error {
	var data catalog.CourseData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseData")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	c, err := api.opts.CatalogSvc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *catalogApi) retrieveCourse(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	c, err := api.opts.CatalogSvc.GetCourse(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == catalog.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *catalogApi) updateCourse(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data catalog.CourseData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseData")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	c, err := api.opts.CatalogSvc.UpdateCourse(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == catalog.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *catalogApi) destroyCourse(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.opts.CatalogSvc.DeleteCourse(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == catalog.ErrCourseNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) queryExams(ctx echo.Context) error {
	exams, err := api.opts.CatalogSvc.QueryAllExams(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying exams")
	}
	return ctx.JSON(http.StatusOK, exams)
}

func (api *catalogApi) createExam(ctx echo.Context) error {
	var data catalog.ExamData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ExamData")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	e, err := api.opts.CatalogSvc.CreateExam(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *catalogApi) retrieveExam(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	e, err := api.opts.CatalogSvc.GetExam(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == catalog.ErrExamNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding exam by ID")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *catalogApi) updateExam(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data catalog.ExamData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ExamData")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	e, err := api.opts.CatalogSvc.UpdateExam(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == catalog.ErrExamNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating exam")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *catalogApi) destroyExam(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.opts.CatalogSvc.DeleteExam(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == catalog.ErrExamNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting exam")
	}
	return ctx.NoContent(http.StatusNoContent)
}
