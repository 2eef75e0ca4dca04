package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/windrush/job-recommender/internal/recommend"
)

// HTTPStatus returns the appropriate HTTP status code for an error
// surfaced by the recommendation service.
func HTTPStatus(err error) int {
	var (
		validation  *recommend.ValidationError
		notFound    *recommend.NotFoundError
		unavailable *recommend.UpstreamUnavailableError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// serviceError maps a service error to an HTTP error response. Internal
// errors are logged but not echoed to the client.
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("internal error", zap.Error(err))
		s.errorResponse(w, status, "Internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}
