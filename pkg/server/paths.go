package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"junkfactory/pkg/guard"
	"junkfactory/pkg/log"
	"junkfactory/pkg/models"
)

// checkPath handles GET /paths/check, the browse contract: a picked directory
// is accepted only if the path guard allows it.
func (srv *Server) checkPath(ctx echo.Context) error {
	path := ctx.QueryParam("path")

	abs, err := srv.engine.AcceptDirectory(path)
	if err != nil {
		var rejected guard.RejectedError
		if !errors.As(err, &rejected) {
			log.Error().Err(err).Str("path", path).Msg("Failed to check path")
			return errorJSON(ctx, http.StatusInternalServerError, "failed to check path")
		}
		return ctx.JSON(http.StatusOK, models.PathCheckResponse{Path: path, Allowed: false, Reason: rejected.Reason})
	}

	return ctx.JSON(http.StatusOK, models.PathCheckResponse{Path: abs, Allowed: true})
}

// getVolume handles GET /volume.
func (srv *Server) getVolume(ctx echo.Context) error {
	path := ctx.QueryParam("path")
	if path == "" {
		return errorJSON(ctx, http.StatusBadRequest, "path is required")
	}
	if srv.volumes == nil {
		return errorJSON(ctx, http.StatusNotImplemented, "volume reporting is not available")
	}

	usage, err := srv.volumes.Usage(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to get disk usage")
		return errorJSON(ctx, http.StatusInternalServerError, "failed to get disk usage")
	}
	return ctx.JSON(http.StatusOK, usage)
}
