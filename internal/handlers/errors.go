package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
	"github.com/chairtime/booking-engine/internal/httperr"
)

// writeDomainError maps scheduling errors onto HTTP statuses. A conflict
// carries the nearest free alternatives so the client can offer a re-pick
// without another round trip.
func writeDomainError(c *gin.Context, err error) {

	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		c.JSON(http.StatusConflict, gin.H{
			"error_code":   "time_conflict",
			"message":      "The requested time is no longer available.",
			"alternatives": ce.Alternatives,
		})
		return
	}

	var ie *domain.InvalidIntervalError
	if errors.As(err, &ie) {
		httperr.Unprocessable(c, "invalid_interval", ie.Reason)
		return
	}

	switch {
	case errors.Is(err, domain.ErrConflict):
		httperr.Write(c, http.StatusConflict, "time_conflict", "The requested time is no longer available.")

	case errors.Is(err, domain.ErrStaleVersion):
		httperr.PreconditionFailed(c, "stale_version", "The appointment changed underneath you. Reload and retry.")

	case errors.Is(err, domain.ErrProviderNotFound):
		httperr.NotFound(c, "provider_not_found", "Provider not found.")

	case errors.Is(err, domain.ErrNotFound):
		httperr.NotFound(c, "not_found", "Resource not found.")

	case errors.Is(err, domain.ErrInvalidTransition):
		httperr.Unprocessable(c, "invalid_transition", err.Error())

	case errors.Is(err, domain.ErrStorageUnavailable):
		httperr.Unavailable(c, "storage_unavailable", "Storage is temporarily unavailable. Try again.")

	default:
		httperr.Internal(c, "internal_error", "Unexpected error.")
	}
}
