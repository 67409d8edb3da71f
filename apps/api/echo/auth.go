package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/admin"
	"github.com/tecliberacion/campus/core/student"
	"github.com/tecliberacion/campus/core/teacher"
)

const tokenContextKey = "principalToken"

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT. Exactly
// one of the Is* flags is set; each portal's middleware checks its own.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	IsStudent    bool   `json:"is_student,omitempty"` // -> STUDENT PORTAL
	IsTeacher    bool   `json:"is_teacher,omitempty"` // -> TEACHER PORTAL
	IsAdmin      bool   `json:"is_admin,omitempty"`   // -> ADMIN PORTAL
}

// PrincipalID parses the token subject back into the principal's row ID.
func (c Claims) PrincipalID() int {
	id, _ := strconv.Atoi(c.Subject)
	return id
}

func newClaims(id int, name, email string, conf *core.Config, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(id),
			Audience:  "Campus",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Name:         name,
		Email:        email,
	}
}

func getStudentClaims(std student.Student, conf *core.Config, origIat ...int64) *Claims {
	claims := newClaims(std.ID, std.FirstName+" "+std.LastName, std.Email, conf, origIat...)
	claims.IsStudent = true
	return claims
}

func getTeacherClaims(tch teacher.Teacher, conf *core.Config, origIat ...int64) *Claims {
	claims := newClaims(tch.ID, tch.FirstName+" "+tch.LastName, tch.Email, conf, origIat...)
	claims.IsTeacher = true
	return claims
}

func getAdminClaims(adm admin.Admin, conf *core.Config, origIat ...int64) *Claims {
	claims := newClaims(adm.ID, adm.Name, adm.Email, conf, origIat...)
	claims.IsAdmin = true
	return claims
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// refreshToken reissues a token for the authenticated principal as long as
// the original issue time is within the refresh window.
func refreshToken(ctx echo.Context, opts *Options) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(opts.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	var newClms *Claims
	switch {
	case claims.IsStudent:
		std, err := opts.StudentSvc.GetByID(ctx.Request().Context(), claims.PrincipalID())
		if err != nil {
			return "", errors.Wrap(err, "finding student by ID")
		}
		newClms = getStudentClaims(std, opts.Conf, claims.OrigIssuedAt)
	case claims.IsTeacher:
		tch, err := opts.TeacherSvc.GetByID(ctx.Request().Context(), claims.PrincipalID())
		if err != nil {
			return "", errors.Wrap(err, "finding teacher by ID")
		}
		newClms = getTeacherClaims(tch, opts.Conf, claims.OrigIssuedAt)
	case claims.IsAdmin:
		adm, err := opts.AdminSvc.GetByID(ctx.Request().Context(), claims.PrincipalID())
		if err != nil {
			return "", errors.Wrap(err, "finding admin by ID")
		}
		newClms = getAdminClaims(adm, opts.Conf, claims.OrigIssuedAt)
	default:
		return "", errUnauthorized
	}

	token, err := GenerateToken(newClms, opts.Conf)
	return token, errors.Wrap(err, "generating token")
}
