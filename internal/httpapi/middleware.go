package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/metrics"
)

// accessLog records one log line and one metrics sample per request. The
// route label is the chi pattern so scan ids do not explode cardinality.
func (r *Router) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

		next.ServeHTTP(ww, req)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rc := chi.RouteContext(req.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(req.Method, route).Observe(elapsed.Seconds())

		r.logger.Debug("http request",
			zap.String("method", req.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", middleware.GetReqID(req.Context())),
		)
	})
}
