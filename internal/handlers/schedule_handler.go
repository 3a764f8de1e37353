package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chairtime/booking-engine/internal/httperr"
	"github.com/chairtime/booking-engine/internal/httpresp"
	"github.com/chairtime/booking-engine/internal/middleware"
	"github.com/chairtime/booking-engine/internal/models"
	scheduling "github.com/chairtime/booking-engine/internal/usecase/scheduling"
)

// ======================================================
// HANDLER
// ======================================================

type ScheduleHandler struct {
	scheduleUC *scheduling.ManageSchedule
}

func NewScheduleHandler(scheduleUC *scheduling.ManageSchedule) *ScheduleHandler {
	return &ScheduleHandler{scheduleUC: scheduleUC}
}

// ======================================================
// REQUESTS
// ======================================================

type WeeklyHoursRow struct {
	Weekday    int    `json:"weekday"`
	StartTime  string `json:"start_time" binding:"required"`
	EndTime    string `json:"end_time" binding:"required"`
	BreakStart string `json:"break_start"`
	BreakEnd   string `json:"break_end"`
	Active     bool   `json:"active"`
}

type SetWeeklyHoursRequest struct {
	Hours []WeeklyHoursRow `json:"hours" binding:"required"`
}

type AddExceptionRequest struct {
	Date      string `json:"date" binding:"required"` // YYYY-MM-DD
	Closed    bool   `json:"closed"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason"`
}

// ======================================================
// WEEKLY HOURS
// ======================================================

func (h *ScheduleHandler) GetWeeklyHours(c *gin.Context) {
	providerID := c.MustGet(middleware.ContextProviderID).(uint)

	rows, err := h.scheduleUC.ListWeeklyHours(c.Request.Context(), providerID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	httpresp.List(c, rows)
}

func (h *ScheduleHandler) PutWeeklyHours(c *gin.Context) {
	providerID := c.MustGet(middleware.ContextProviderID).(uint)

	var req SetWeeklyHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	rows := make([]models.ProviderAvailability, 0, len(req.Hours))
	for _, r := range req.Hours {
		rows = append(rows, models.ProviderAvailability{
			Weekday:    r.Weekday,
			StartTime:  r.StartTime,
			EndTime:    r.EndTime,
			BreakStart: r.BreakStart,
			BreakEnd:   r.BreakEnd,
			Active:     r.Active,
		})
	}

	if err := h.scheduleUC.SetWeeklyHours(c.Request.Context(), providerID, rows); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// ======================================================
// EXCEPTIONS
// ======================================================

func (h *ScheduleHandler) ListExceptions(c *gin.Context) {
	providerID := c.MustGet(middleware.ContextProviderID).(uint)

	rows, err := h.scheduleUC.ListExceptions(
		c.Request.Context(),
		providerID,
		c.Query("from"),
		c.Query("to"),
	)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	httpresp.List(c, rows)
}

func (h *ScheduleHandler) AddException(c *gin.Context) {
	providerID := c.MustGet(middleware.ContextProviderID).(uint)

	var req AddExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	ex := &models.AvailabilityException{
		ProviderID: providerID,
		Date:       req.Date,
		Closed:     req.Closed,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Reason:     req.Reason,
	}

	if err := h.scheduleUC.AddException(c.Request.Context(), ex); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ex)
}

func (h *ScheduleHandler) RemoveException(c *gin.Context) {
	providerID := c.MustGet(middleware.ContextProviderID).(uint)
	date := c.Param("date")

	if err := h.scheduleUC.RemoveException(c.Request.Context(), providerID, date); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
