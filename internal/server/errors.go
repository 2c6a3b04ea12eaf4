package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	goHash "github.com/MrEthical07/goHash"
	"github.com/MrEthical07/goHash/internal/server/handler"
	"github.com/MrEthical07/goHash/password"
)

// retryAfterSeconds is advertised when the memory budget is exhausted.
const retryAfterSeconds = 1

// mapError converts an engine error into the response the client sees. Errors
// without a mapping are logged and become a generic 500.
func (s *Server) mapError(r *http.Request, err error) error {
	var decodeErr *password.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		return handler.ClientErr(http.StatusBadRequest, "malformed hash: "+decodeErr.Field)
	case errors.Is(err, password.ErrMalformedHash):
		return handler.ClientErr(http.StatusBadRequest, "malformed hash")
	case errors.Is(err, password.ErrCostLimit):
		return handler.ClientErr(http.StatusUnprocessableEntity, "hash cost exceeds server limits")
	case errors.Is(err, goHash.ErrOverloaded):
		return handler.Error{
			Code:       http.StatusServiceUnavailable,
			Messages:   []string{"server busy, retry later"},
			RetryAfter: retryAfterSeconds,
		}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return handler.ClientErr(http.StatusServiceUnavailable, "request canceled")
	case errors.Is(err, goHash.ErrAdmissionUnavailable),
		errors.Is(err, password.ErrRandomnessUnavailable),
		errors.Is(err, goHash.ErrEngineNotReady):
		s.logger.ErrorContext(r.Context(), "engine unavailable",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		return handler.ClientErr(http.StatusServiceUnavailable, "service unavailable")
	}

	s.logger.ErrorContext(r.Context(), "request failed",
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	return err
}
