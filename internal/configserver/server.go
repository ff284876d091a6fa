// Package configserver runs the local companion server that collects
// OAuth/manual-token FHIR server configuration from a browser form and
// stores it as JSON config files for the request executor.
package configserver

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/notekit/notekit/internal/fhirconfig"
	"github.com/notekit/notekit/internal/platform/middleware"
)

//go:embed form.html
var formHTML []byte

// Server is the config-collection HTTP server. It shares no mutable state
// beyond the on-disk config directory; concurrent saves to the same name are
// last-write-wins.
type Server struct {
	store  *fhirconfig.Store
	logger zerolog.Logger
	echo   *echo.Echo
	quit   chan struct{}
}

func New(store *fhirconfig.Store, logger zerolog.Logger) *Server {
	s := &Server{
		store:  store,
		logger: logger,
		quit:   make(chan struct{}),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	// The form may be served from anywhere during a connectathon, so the
	// API is CORS-open.
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/", s.Index)
	e.GET("/list-configs", s.ListConfigs)
	e.POST("/save-config", s.SaveConfig)
	e.POST("/select-config", s.SelectConfig)
	e.POST("/delete-config", s.DeleteConfig)
	e.POST("/shutdown", s.Shutdown)

	s.echo = e
	return s
}

// Handler exposes the route tree for tests.
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) Index(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, formHTML)
}

func (s *Server) ListConfigs(c echo.Context) error {
	configs, err := s.store.List()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if configs == nil {
		configs = []*fhirconfig.Config{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"configs": configs})
}

func (s *Server) SaveConfig(c echo.Context) error {
	var raw map[string]interface{}
	if err := c.Bind(&raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cfg, err := s.store.Save(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.logger.Info().Str("name", cfg.Name).Str("mode", cfg.Mode).Msg("configuration saved")
	return c.JSON(http.StatusOK, map[string]interface{}{"saved": cfg})
}

// SelectConfig returns the named configuration so the form can load it for
// editing. It keeps no hidden selection state; the executor's selection
// rules are the only selection mechanism.
func (s *Server) SelectConfig(c echo.Context) error {
	name, err := bindName(c)
	if err != nil {
		return err
	}
	cfg, err := s.store.Load(name)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"config": cfg})
}

func (s *Server) DeleteConfig(c echo.Context) error {
	name, err := bindName(c)
	if err != nil {
		return err
	}
	if err := s.store.Delete(name); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	s.logger.Info().Str("name", name).Msg("configuration deleted")
	return c.JSON(http.StatusOK, map[string]interface{}{"deleted": name})
}

// Shutdown acknowledges the request, then stops the server.
func (s *Server) Shutdown(c echo.Context) error {
	err := c.JSON(http.StatusOK, map[string]interface{}{"shuttingDown": true})
	select {
	case <-s.quit:
	default:
		close(s.quit)
	}
	return err
}

func bindName(c echo.Context) (string, error) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.Name == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "\"name\" is required")
	}
	return body.Name, nil
}

// Run serves on the given port until /shutdown is called or the process
// receives SIGINT/SIGTERM.
func (s *Server) Run(port string) error {
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + port
		s.logger.Info().Str("addr", addr).Str("configDir", s.store.Dir()).Msg("starting config server")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("config server error: %w", err)
	case <-sig:
	case <-s.quit:
	}

	s.logger.Info().Msg("shutting down config server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("config server shutdown failed: %w", err)
	}
	s.logger.Info().Msg("config server stopped")
	return nil
}
