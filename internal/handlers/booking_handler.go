package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
	"github.com/chairtime/booking-engine/internal/httperr"
	scheduling "github.com/chairtime/booking-engine/internal/usecase/scheduling"
	"github.com/chairtime/booking-engine/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

// BookingHandler is the public, unauthenticated surface: guests book by
// provider id and look their booking up by confirmation code.
type BookingHandler struct {
	repo   domain.Repository
	bookUC *scheduling.BookAppointment
}

func NewBookingHandler(
	repo domain.Repository,
	bookUC *scheduling.BookAppointment,
) *BookingHandler {
	return &BookingHandler{
		repo:   repo,
		bookUC: bookUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type GuestBookingRequest struct {
	GuestName  string `json:"guest_name" binding:"required"`
	GuestEmail string `json:"guest_email" binding:"omitempty,email"`
	GuestPhone string `json:"guest_phone"`
	ServiceID  uint   `json:"service_id" binding:"required"`
	Date       string `json:"date" binding:"required"` // YYYY-MM-DD
	Time       string `json:"time" binding:"required"` // HH:mm
	Notes      string `json:"notes"`
}

// ======================================================
// CREATE (GUEST)
// ======================================================

func (h *BookingHandler) CreateGuestBooking(c *gin.Context) {
	providerID, ok := paramUint(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_provider_id", "Invalid provider id.")
		return
	}

	var req GuestBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if req.GuestEmail != "" && !validators.IsEmailDomainValid(req.GuestEmail) {
		httperr.BadRequest(c, "invalid_email", "Email domain does not exist.")
		return
	}

	result, err := h.bookUC.Execute(c.Request.Context(), scheduling.BookInput{
		ProviderID: providerID,
		ServiceID:  req.ServiceID,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		GuestPhone: req.GuestPhone,
		Date:       req.Date,
		Time:       req.Time,
		Notes:      req.Notes,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"appointment":       result.Appointment,
		"confirmation_code": result.ConfirmationCode,
	})
}

// ======================================================
// LOOKUP BY CODE
// ======================================================

func (h *BookingHandler) GetByConfirmationCode(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if code == "" {
		httperr.BadRequest(c, "invalid_code", "Invalid confirmation code.")
		return
	}

	gb, err := h.repo.GetGuestBookingByCode(c.Request.Context(), code)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	ap, err := h.repo.GetAppointmentByID(c.Request.Context(), gb.AppointmentID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guest_booking": gb,
		"appointment":   ap,
	})
}
