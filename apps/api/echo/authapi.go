package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/enrollment"
	"github.com/tecliberacion/campus/core/student"
)

type authApi struct {
	opts *Options
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := authApi{opts: opts}

	// un-authed endpoints
	// TODO: rate limit `/login` & `/login-teacher`
	g.POST("/login", api.login)
	g.POST("/login-teacher", api.loginTeacher)

	// authed endpoints
	ag := g.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/profile", api.profile)
	ag.PUT("/profile", api.updateProfile)
	ag.PUT("/change-password", api.changePassword)
}

// login authenticates a student by control number, falling back to an admin
// account when the username matches an admin email.
func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	var claims *Claims
	std, err := api.opts.StudentSvc.GetByControlNumber(ctx.Request().Context(), data.Username)
	switch {
	case err == nil:
		if err = std.CheckPassword(data.Password); err != nil {
			return errAuthenticationFailed
		}
		claims = getStudentClaims(std, api.opts.Conf)
	case errors.Cause(err) == student.ErrNotFound:
		adm, aErr := api.opts.AdminSvc.GetByEmail(ctx.Request().Context(), data.Username)
		if aErr != nil {
			return errAuthenticationFailed
		}
		if aErr = adm.CheckPassword(data.Password); aErr != nil {
			return errAuthenticationFailed
		}
		claims = getAdminClaims(adm, api.opts.Conf)
	default:
		return errors.Wrap(err, "finding student by control number")
	}

	token, err := GenerateToken(claims, api.opts.Conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *authApi) loginTeacher(ctx echo.Context) error {
	var data TeacherLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TeacherLoginRequest")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	tch, err := api.opts.TeacherSvc.GetByEmail(ctx.Request().Context(), data.Email)
	if err != nil {
		return errAuthenticationFailed
	}
	if err = tch.CheckPassword(data.Password); err != nil {
		return errAuthenticationFailed
	}

	token, err := GenerateToken(getTeacherClaims(tch, api.opts.Conf), api.opts.Conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.opts)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *authApi) profile(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	switch {
	case claims.IsStudent:
		std, err := api.opts.StudentSvc.GetByID(ctx.Request().Context(), claims.PrincipalID())
		if err != nil {
			return errors.Wrap(err, "finding student by ID")
		}
		courses, err := api.opts.EnrollmentSvc.ListForStudent(ctx.Request().Context(), std.ID)
		if err != nil {
			return errors.Wrap(err, "listing enrollments")
		}
		exams, err := api.opts.EnrollmentSvc.ListExamsForStudent(ctx.Request().Context(), std.ID)
		if err != nil {
			return errors.Wrap(err, "listing exam enrollments")
		}
		res := echo.Map{"student": std, "courses": courses, "exams": exams}
		if cur, err := api.opts.EnrollmentSvc.CurrentForStudent(ctx.Request().Context(), std.ID); err == nil {
			res["current_course"] = cur
		} else if errors.Cause(err) != enrollment.ErrNotFound {
			return errors.Wrap(err, "finding current enrollment")
		}
		return ctx.JSON(http.StatusOK, res)
	case claims.IsTeacher:
		tch, err := api.opts.TeacherSvc.GetByID(ctx.Request().Context(), claims.PrincipalID())
		if err != nil {
			return errors.Wrap(err, "finding teacher by ID")
		}
		return ctx.JSON(http.StatusOK, echo.Map{"teacher": tch})
	case claims.IsAdmin:
		adm, err := api.opts.AdminSvc.GetByID(ctx.Request().Context(), claims.PrincipalID())
		if err != nil {
			return errors.Wrap(err, "finding admin by ID")
		}
		return ctx.JSON(http.StatusOK, echo.Map{"admin": adm})
	}
	return errUnauthorized
}

func (api *authApi) updateProfile(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if !claims.IsStudent {
		return errHttpForbidden
	}

	var data student.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	std, err := api.opts.StudentSvc.UpdateProfile(ctx.Request().Context(), claims.PrincipalID(), data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *authApi) changePassword(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if !claims.IsStudent {
		return errHttpForbidden
	}

	var data student.ChangePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	if err := api.opts.StudentSvc.ChangePassword(ctx.Request().Context(), claims.PrincipalID(), data); err != nil {
		if _, ok := errors.Cause(err).(*core.ValidationError); ok {
			return err
		}
		return errors.Wrap(err, "changing password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been changed."})
}
