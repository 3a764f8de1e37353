package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
	"github.com/chairtime/booking-engine/internal/httperr"
	"github.com/chairtime/booking-engine/internal/httpresp"
	scheduling "github.com/chairtime/booking-engine/internal/usecase/scheduling"
)

// ======================================================
// HANDLER
// ======================================================

type AvailabilityHandler struct {
	repo           domain.Repository
	availabilityUC *scheduling.GetAvailability
}

func NewAvailabilityHandler(
	repo domain.Repository,
	availabilityUC *scheduling.GetAvailability,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		repo:           repo,
		availabilityUC: availabilityUC,
	}
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// ======================================================
// SERVICES
// ======================================================

func (h *AvailabilityHandler) ListServices(c *gin.Context) {
	providerID, ok := paramUint(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_provider_id", "Invalid provider id.")
		return
	}

	provider, err := h.repo.GetProviderByID(c.Request.Context(), providerID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	services, err := h.repo.ListActiveServices(c.Request.Context(), provider.ID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"provider": provider,
		"services": services,
	})
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	providerID, ok := paramUint(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_provider_id", "Invalid provider id.")
		return
	}

	serviceIDStr := c.Query("service_id")
	from := c.Query("from")
	if serviceIDStr == "" || from == "" {
		httperr.BadRequest(c, "missing_params", "service_id and from are required.")
		return
	}

	serviceID, err := strconv.ParseUint(serviceIDStr, 10, 32)
	if err != nil || serviceID == 0 {
		httperr.BadRequest(c, "invalid_service_id", "Invalid service id.")
		return
	}

	days, err := h.availabilityUC.Execute(
		c.Request.Context(),
		providerID,
		uint(serviceID),
		from,
		c.Query("to"),
	)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	httpresp.List(c, days)
}
