package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/llm"
	"github.com/pankaj-dahiya-devops/cloud-dome/internal/store"
)

var (
	errBadRequest    = errors.New("bad request")
	errMissingFields = errors.New("awsAccountId, awsAccessKey and awsSecretKey are required")
)

// handlerFunc is an API handler that leaves failure responses to wrap.
type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap bounds the request body and turns a handler error into a JSON
// {"error": "..."} response with the matching status.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)

		err := h(w, req)
		if err == nil {
			return
		}

		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			r.logger.Error("request failed",
				zap.String("path", req.URL.Path),
				zap.Int("status", status),
				zap.Error(err),
			)
		}
		render.Status(req, status)
		render.JSON(w, req, map[string]string{"error": publicMessage(err)})
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errMissingFields), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, llm.ErrLLMUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text sent to the client. Missing fields always
// answer with the same static message.
func publicMessage(err error) string {
	if errors.Is(err, errMissingFields) {
		return errMissingFields.Error()
	}
	return err.Error()
}
