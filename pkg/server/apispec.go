package server

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed api.yml
var apiSpec []byte

func (srv *Server) serveAPISpec(ctx echo.Context) error {
	return ctx.Blob(http.StatusOK, "application/yaml", apiSpec)
}
