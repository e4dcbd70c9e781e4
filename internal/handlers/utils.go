package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akolanti/FormFlow/internal/adapter"
	"github.com/akolanti/FormFlow/internal/config"
	"github.com/akolanti/FormFlow/internal/formsclient"
	"github.com/akolanti/FormFlow/internal/sourcetext"
	"github.com/akolanti/FormFlow/internal/workspace"
	"github.com/akolanti/FormFlow/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

const (
	notReadyMessage = "Processing not finished"
	backendMessage  = "The extraction service is unavailable. Please try again."
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already out, only log
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string) {
	writeJsonResponse(w, httpCode, adapter.ToErrorResponse(httpCode, message))
}

// writeServiceError maps workspace and backend errors onto HTTP answers.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	log := logRH.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	var apiErr *formsclient.APIError
	switch {
	case errors.Is(err, sourcetext.ErrEmptyFile),
		errors.Is(err, sourcetext.ErrFileTooLarge),
		errors.Is(err, sourcetext.ErrUnsupportedType),
		errors.Is(err, sourcetext.ErrUnreadablePDF):
		WriteErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, workspace.ErrUnknownView), errors.Is(err, workspace.ErrUnknownFormat),
		errors.Is(err, formsclient.ErrInvalidID):
		WriteErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, workspace.ErrJobNotFound):
		WriteErrorResponse(w, http.StatusNotFound, "Job not found")
	case formsclient.IsNotReady(err):
		WriteErrorResponse(w, http.StatusNotFound, formsclient.UserMessage(err, notReadyMessage))
	case errors.As(err, &apiErr):
		log.Warn("backend call failed", "status", apiErr.StatusCode, "error", err)
		WriteErrorResponse(w, http.StatusBadGateway, formsclient.UserMessage(err, fallback))
	case errors.Is(err, context.Canceled):
		log.Debug("request cancelled", "error", err)
	default:
		log.Error("backend unreachable", "error", err)
		WriteErrorResponse(w, http.StatusBadGateway, fallback)
	}
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.Warn("context error", "traceId", ctx.Value(config.TRACE_ID_KEY), "error", ctx.Err())
		return false
	}
	return true
}
