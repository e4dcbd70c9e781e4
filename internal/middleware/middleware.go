package middleware

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/akolanti/FormFlow/internal/metrics"
	"github.com/akolanti/FormFlow/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
	limiter    *IPRateLimiter
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

// WrapWith runs trace injection and rate limiting in front of next and
// records the request metric.
func WrapWith(limiter *IPRateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		re := processRequest(requestResponseStruct{req: r, writer: rec, limiter: limiter})

		if !re.badRequest.isBadRequest {
			next(rec, re.req)
		}
		metrics.HttpRequestsTotal.WithLabelValues(routePattern(re.req, r), strconv.Itoa(rec.Status)).Inc()
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		handleBadRequest(re)
		return re
	}
	re = rateLimiter(re)
	if re.badRequest.isBadRequest {
		handleBadRequest(re)
	}
	return re
}

// routePattern keeps the label set bounded: /jobs/{id} instead of one series per id.
func routePattern(handled, original *http.Request) string {
	if handled == nil {
		handled = original
	}
	if rctx := chi.RouteContext(handled.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return original.URL.Path
}
