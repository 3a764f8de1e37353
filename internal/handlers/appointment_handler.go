package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chairtime/booking-engine/internal/httperr"
	"github.com/chairtime/booking-engine/internal/httpresp"
	"github.com/chairtime/booking-engine/internal/middleware"
	scheduling "github.com/chairtime/booking-engine/internal/usecase/scheduling"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	bookUC       *scheduling.BookAppointment
	rescheduleUC *scheduling.RescheduleAppointment
	confirmUC    *scheduling.ConfirmAppointment
	cancelUC     *scheduling.CancelAppointment
	completeUC   *scheduling.CompleteAppointment
	noShowUC     *scheduling.MarkNoShow
	convertUC    *scheduling.ConvertGuestBooking
	listUC       *scheduling.ListAppointmentsByDate
}

func NewAppointmentHandler(
	bookUC *scheduling.BookAppointment,
	rescheduleUC *scheduling.RescheduleAppointment,
	confirmUC *scheduling.ConfirmAppointment,
	cancelUC *scheduling.CancelAppointment,
	completeUC *scheduling.CompleteAppointment,
	noShowUC *scheduling.MarkNoShow,
	convertUC *scheduling.ConvertGuestBooking,
	listUC *scheduling.ListAppointmentsByDate,
) *AppointmentHandler {
	return &AppointmentHandler{
		bookUC:       bookUC,
		rescheduleUC: rescheduleUC,
		confirmUC:    confirmUC,
		cancelUC:     cancelUC,
		completeUC:   completeUC,
		noShowUC:     noShowUC,
		convertUC:    convertUC,
		listUC:       listUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ServiceID uint   `json:"service_id" binding:"required"`
	ClientID  *uint  `json:"client_id"`
	Date      string `json:"date" binding:"required"` // YYYY-MM-DD
	Time      string `json:"time" binding:"required"` // HH:mm
	Notes     string `json:"notes"`
}

type RescheduleRequest struct {
	Date    string `json:"date" binding:"required"`
	Time    string `json:"time" binding:"required"`
	Version int64  `json:"version" binding:"required"`
}

type VersionedRequest struct {
	Version int64 `json:"version" binding:"required"`
}

type CancelRequest struct {
	Version int64  `json:"version" binding:"required"`
	Reason  string `json:"reason"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	providerID := c.MustGet(middleware.ContextProviderID).(uint)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	clientID := req.ClientID
	if clientID == nil {
		clientID = &userID
	}

	result, err := h.bookUC.Execute(c.Request.Context(), scheduling.BookInput{
		ProviderID: providerID,
		ServiceID:  req.ServiceID,
		ClientID:   clientID,
		Date:       req.Date,
		Time:       req.Time,
		Notes:      req.Notes,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result.Appointment)
}

// ======================================================
// LIST BY DATE
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	providerID := c.MustGet(middleware.ContextProviderID).(uint)

	// empty date defaults inside the use case, where the provider's
	// timezone is known
	items, err := h.listUC.Execute(c.Request.Context(), providerID, c.Query("date"))
	if err != nil {
		writeDomainError(c, err)
		return
	}

	httpresp.List(c, items)
}

// ======================================================
// LIFECYCLE
// ======================================================

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	var req VersionedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "version is required.")
		return
	}

	ap, err := h.confirmUC.Execute(c.Request.Context(), id, req.Version)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "date, time and version are required.")
		return
	}

	ap, err := h.rescheduleUC.Execute(
		c.Request.Context(),
		id,
		req.Version,
		scheduling.RescheduleInput{Date: req.Date, Time: req.Time},
	)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "version is required.")
		return
	}

	ap, err := h.cancelUC.Execute(c.Request.Context(), id, req.Version, req.Reason)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	var req VersionedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "version is required.")
		return
	}

	ap, err := h.completeUC.Execute(c.Request.Context(), id, req.Version)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) NoShow(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	var req VersionedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "version is required.")
		return
	}

	ap, err := h.noShowUC.Execute(c.Request.Context(), id, req.Version)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

// ======================================================
// GUEST CONVERSION
// ======================================================

func (h *AppointmentHandler) ConvertGuestBooking(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, ok := paramUint(c, "id")
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid guest booking id.")
		return
	}

	gb, err := h.convertUC.Execute(c.Request.Context(), id, userID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	httpresp.OK(c, gb)
}
