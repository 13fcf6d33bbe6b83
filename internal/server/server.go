// Package server exposes the console state and the GENESIS uplink as a JSON
// API. Handlers are thin: validation and status mapping here, all state
// transitions in ops, all model traffic in uplink.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sparkos/internal/config"
	"sparkos/internal/logging"
	"sparkos/internal/ops"
	"sparkos/internal/uplink"
)

type Server struct {
	cfg        *config.Config
	engine     *ops.Engine
	dispatcher *uplink.Dispatcher
	advisor    *uplink.Advisor
	applier    *uplink.Applier
	router     *gin.Engine
}

// New wires the API around an ops engine and a model generator. The
// generator is an interface so tests run without network.
func New(cfg *config.Config, engine *ops.Engine, gen uplink.Generator) *Server {
	s := &Server{
		cfg:        cfg,
		engine:     engine,
		dispatcher: uplink.NewDispatcher(gen),
		advisor:    uplink.NewAdvisor(gen),
		applier:    uplink.NewApplier(engine),
	}
	s.dispatcher.SetModels(uplink.ModelsFromConfig(cfg))
	s.router = s.buildRouter()
	return s
}

// ApplyConfig picks up reloadable tunables from a fresh config, currently
// the per-tier model overrides.
func (s *Server) ApplyConfig(cfg *config.Config) {
	s.dispatcher.SetModels(uplink.ModelsFromConfig(cfg))
}

// Router exposes the handler tree for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains within the configured
// shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.GetReadTimeout(),
		WriteTimeout: s.cfg.GetWriteTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Server("listening on %s", s.cfg.Server.Addr)
		logging.Audit().ServerEvent(logging.AuditServerStart, s.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logging.ServerError("listener failed: %v", err)
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.GetShutdownTimeout())
	defer cancel()
	logging.Server("shutting down")
	logging.Audit().ServerEvent(logging.AuditServerStop, s.cfg.Server.Addr)
	return srv.Shutdown(shutdownCtx)
}

// errorBody is the uniform error envelope.
func errorBody(err error) gin.H {
	return gin.H{"error": err.Error()}
}

// statusFor maps engine sentinels onto HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ops.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ops.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, ops.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, uplink.ErrUnknownAction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), errorBody(err))
}
