package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"junkfactory/pkg/engine"
	"junkfactory/pkg/log"
	"junkfactory/pkg/models"
)

// submitAllocation handles POST /allocations.
func (srv *Server) submitAllocation(ctx echo.Context) error {
	var body models.SubmitRequest
	if err := ctx.Bind(&body); err != nil {
		log.Warn().Err(err).Msg("Malformed allocation request")
		return errorJSON(ctx, http.StatusBadRequest, "malformed request body")
	}

	unit, err := models.ParseUnit(body.Unit)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, err.Error())
	}

	id, err := srv.engine.Submit(body.Directory, body.Filename, body.Size, unit, body.UseSparse)
	switch {
	case errors.Is(err, engine.ErrBusy):
		return errorJSON(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidRequest):
		return errorJSON(ctx, http.StatusBadRequest, err.Error())
	case err != nil:
		log.Error().Err(err).Msg("Failed to submit allocation")
		return errorJSON(ctx, http.StatusInternalServerError, "failed to submit allocation")
	}

	return ctx.JSON(http.StatusAccepted, models.SubmitResponse{ID: id})
}

// listAllocations handles GET /allocations.
func (srv *Server) listAllocations(ctx echo.Context) error {
	limit := srv.historyLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return errorJSON(ctx, http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	response := models.HistoryResponse{Allocations: []models.AllocationRecord{}}
	if srv.history == nil {
		return ctx.JSON(http.StatusOK, response)
	}

	records, err := srv.history.List(ctx.Request().Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list allocations")
		return errorJSON(ctx, http.StatusInternalServerError, "failed to list allocations")
	}
	if records != nil {
		response.Allocations = records
	}
	return ctx.JSON(http.StatusOK, response)
}
