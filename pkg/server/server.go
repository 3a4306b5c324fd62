package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"junkfactory/pkg/engine"
	"junkfactory/pkg/log"
	"junkfactory/pkg/models"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	shutdownTimeout = 10
	// DefaultHistoryLimit is used when GET /allocations has no limit.
	DefaultHistoryLimit = 20
)

// Engine is the allocation engine driven by the control surface.
type Engine interface {
	Submit(directory, filename string, size float64, unit models.Unit, useSparse bool) (string, error)
	PollProgress() []models.ProgressEvent
	State() engine.State
	Busy() bool
	Wait()
	AcceptDirectory(path string) (string, error)
}

// History lists finished allocations.
type History interface {
	List(ctx context.Context, limit int) ([]models.AllocationRecord, error)
}

// VolumeReporter reports disk usage for a path.
type VolumeReporter interface {
	Usage(path string) (*models.DiskUsage, error)
}

// Server is the HTTP control surface of one engine.
type Server struct {
	echo         *echo.Echo
	engine       Engine
	history      History
	volumes      VolumeReporter
	version      string
	historyLimit int
}

// New creates a server. history may be nil.
func New(eng Engine, history History, volumes VolumeReporter, version string) *Server {
	srv := &Server{
		echo:         echo.New(),
		engine:       eng,
		history:      history,
		volumes:      volumes,
		version:      version,
		historyLimit: DefaultHistoryLimit,
	}
	srv.setupRoutes()
	return srv
}

// SetHistoryLimit changes the default page size of GET /allocations.
func (srv *Server) SetHistoryLimit(limit int) {
	if limit > 0 {
		srv.historyLimit = limit
	}
}

// Handler exposes the router, mainly for tests.
func (srv *Server) Handler() http.Handler {
	return srv.echo
}

// Start serves on addr until SIGINT or SIGTERM, then shuts down gracefully.
func (srv *Server) Start(addr string) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", addr).
			Str("version", srv.version).
			Msg("Starting junkfactory server")

		if err := srv.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("Server startup failed")
		return err
	case <-quit:
	}

	return srv.Shutdown()
}

// Shutdown stops accepting requests and waits for the in-flight allocation.
func (srv *Server) Shutdown() error {
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout*time.Second)
	defer cancel()

	if err := srv.echo.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
		return err
	}

	if srv.engine.Busy() {
		log.Info().Msg("Waiting for the running allocation to finish")
	}
	srv.engine.Wait()

	log.Info().Msg("Shutdown complete")
	return nil
}

func (srv *Server) setupRoutes() {
	srv.echo.HideBanner = true
	srv.echo.HidePort = true
	srv.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogMethod:  true,
		LogURI:     true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			log.Debug().Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).
				Dur("latency", v.Latency).Msg("Request served")
			return nil
		},
	}))
	srv.echo.Use(middleware.Recover())

	srv.echo.GET("/api.yml", srv.serveAPISpec)
	srv.echo.POST("/allocations", srv.submitAllocation)
	srv.echo.GET("/allocations", srv.listAllocations)
	srv.echo.GET("/progress", srv.pollProgress)
	srv.echo.GET("/status", srv.getStatus)
	srv.echo.GET("/paths/check", srv.checkPath)
	srv.echo.GET("/volume", srv.getVolume)
}

func errorJSON(ctx echo.Context, status int, message string) error {
	return ctx.JSON(status, models.ErrorResponse{Error: message})
}
