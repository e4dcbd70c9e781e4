package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/akolanti/FormFlow/internal/adapter/utils"
	"github.com/akolanti/FormFlow/internal/config"
	"github.com/akolanti/FormFlow/internal/handlers"
	"github.com/akolanti/FormFlow/internal/middleware"
	"github.com/akolanti/FormFlow/pkg/logger_i"
)

var (
	server  *http.Server
	_logger = logger_i.NewLogger("Server")
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	// StopWorkspace stops every poller and the history refresher.
	StopWorkspace func()
	CloseServices context.CancelFunc
}

// RegisterRoutes mounts the workspace API on r.
func RegisterRoutes(r chi.Router, h *handlers.Handler, limiter *middleware.IPRateLimiter) {
	wrap := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.WrapWith(limiter, next)
	}

	r.Get("/healthz", wrap(handlers.GetHandler))
	r.Post("/uploads", wrap(h.PostUploadHandler))
	r.Get("/jobs/{id}", wrap(h.GetJobHandler))
	r.Delete("/jobs/{id}", wrap(h.DeleteJobHandler))
	r.Get("/history", wrap(h.GetHistoryHandler))
	r.Route("/forms/{id}", func(r chi.Router) {
		r.Get("/results", wrap(h.GetResultHandler))
		r.Get("/export/{format}", wrap(h.GetExportHandler))
		r.Get("/image", wrap(h.GetImageHandler))
		r.Delete("/", wrap(h.DeleteFormHandler))
	})
}

func CreateServer(listenAddr string, h *handlers.Handler) {
	r := utils.GetRouter()
	RegisterRoutes(r.Router, h, middleware.DefaultLimiter())

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err, "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		if server != nil {
			server.SetKeepAlivesEnabled(false)
			if err := server.Shutdown(ctx); err != nil {
				_logger.Error("Could not shutdown gracefully", "error", err)
			}
		}

		if shutdownParams.StopWorkspace != nil {
			shutdownParams.StopWorkspace()
		}
		// closes the redis clients
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully shut down")
	case <-ctx.Done():
		_logger.Info("Force shut down")
		os.Exit(1)
	}
}
