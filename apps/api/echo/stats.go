package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type statsApi struct {
	opts *Options
}

func registerStatsAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := statsApi{opts: opts}
	g.GET("/admin/stats", api.stats, jwt, adminMiddleware())
}

func (api *statsApi) stats(ctx echo.Context) error {
	stats, err := api.opts.DashboardSvc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
