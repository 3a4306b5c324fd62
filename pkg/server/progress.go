package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"junkfactory/pkg/models"
)

// pollProgress handles GET /progress. Every event is returned exactly once.
func (srv *Server) pollProgress(ctx echo.Context) error {
	events := srv.engine.PollProgress()
	if events == nil {
		events = []models.ProgressEvent{}
	}
	return ctx.JSON(http.StatusOK, models.ProgressResponse{Events: events})
}

// getStatus handles GET /status.
func (srv *Server) getStatus(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, models.StatusResponse{
		State:   string(srv.engine.State()),
		Busy:    srv.engine.Busy(),
		Version: srv.version,
	})
}
