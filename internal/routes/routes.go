package routes

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/chairtime/booking-engine/internal/audit"
	"github.com/chairtime/booking-engine/internal/config"
	"github.com/chairtime/booking-engine/internal/handlers"
	"github.com/chairtime/booking-engine/internal/infra/cache"
	infraRepo "github.com/chairtime/booking-engine/internal/infra/repository"
	"github.com/chairtime/booking-engine/internal/middleware"
	"github.com/chairtime/booking-engine/internal/notify"

	domain "github.com/chairtime/booking-engine/internal/domain/scheduling"
	ucScheduling "github.com/chairtime/booking-engine/internal/usecase/scheduling"
)

// newSlotCache connects to Redis when configured. The cache is optional:
// a failed connection degrades to uncached slot generation.
func newSlotCache(cfg *config.Config) *cache.SlotCache {
	if cfg.RedisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Println("invalid REDIS_URL, slot cache disabled:", err)
		return nil
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Println("redis unreachable, slot cache disabled:", err)
		return nil
	}

	return cache.NewSlotCache(rdb)
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	schedulingRepo := infraRepo.NewSchedulingGormRepository(db)
	slotCache := newSlotCache(cfg)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	notifyDispatcher := notify.NewDispatcher(notify.LogSender{})

	clock := domain.SystemClock()

	// ======================================================
	// USE CASES
	// ======================================================
	availabilityUC := ucScheduling.NewGetAvailability(
		schedulingRepo,
		slotCache,
		clock,
		cfg.SlotStepMinutes,
	)

	bookUC := ucScheduling.NewBookAppointment(
		schedulingRepo,
		slotCache,
		notifyDispatcher,
		auditDispatcher,
		clock,
		cfg.BookingAutoConfirm,
		cfg.SlotStepMinutes,
	)

	rescheduleUC := ucScheduling.NewRescheduleAppointment(
		schedulingRepo,
		slotCache,
		notifyDispatcher,
		auditDispatcher,
		clock,
		cfg.SlotStepMinutes,
	)

	confirmUC := ucScheduling.NewConfirmAppointment(
		schedulingRepo,
		notifyDispatcher,
		auditDispatcher,
	)

	cancelUC := ucScheduling.NewCancelAppointment(
		schedulingRepo,
		slotCache,
		notifyDispatcher,
		auditDispatcher,
		clock,
	)

	completeUC := ucScheduling.NewCompleteAppointment(
		schedulingRepo,
		auditDispatcher,
		clock,
	)

	noShowUC := ucScheduling.NewMarkNoShow(
		schedulingRepo,
		auditDispatcher,
		clock,
	)

	convertUC := ucScheduling.NewConvertGuestBooking(
		schedulingRepo,
		auditDispatcher,
	)

	listByDateUC := ucScheduling.NewListAppointmentsByDate(schedulingRepo, clock)

	scheduleUC := ucScheduling.NewManageSchedule(
		schedulingRepo,
		slotCache,
		auditDispatcher,
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	availabilityHandler := handlers.NewAvailabilityHandler(schedulingRepo, availabilityUC)
	bookingHandler := handlers.NewBookingHandler(schedulingRepo, bookUC)

	appointmentHandler := handlers.NewAppointmentHandler(
		bookUC,
		rescheduleUC,
		confirmUC,
		cancelUC,
		completeUC,
		noShowUC,
		convertUC,
		listByDateUC,
	)

	scheduleHandler := handlers.NewScheduleHandler(scheduleUC)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/providers/:id/services", availabilityHandler.ListServices)
			publicAPI.GET("/providers/:id/availability", availabilityHandler.GetAvailability)
			publicAPI.POST("/providers/:id/appointments", bookingHandler.CreateGuestBooking)

			publicAPI.GET("/guest-bookings/:code", bookingHandler.GetByConfirmationCode)
		}

		// ------------------------------
		// PRIVATE
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.POST("/me/appointments", appointmentHandler.Create)
			secured.GET("/me/appointments", appointmentHandler.ListByDate)
			secured.PATCH("/me/appointments/:id/confirm", appointmentHandler.Confirm)
			secured.PATCH("/me/appointments/:id/reschedule", appointmentHandler.Reschedule)
			secured.PATCH("/me/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/me/appointments/:id/complete", appointmentHandler.Complete)
			secured.PATCH("/me/appointments/:id/no-show", appointmentHandler.NoShow)

			secured.POST("/me/guest-bookings/:id/convert", appointmentHandler.ConvertGuestBooking)

			secured.GET("/me/availability", scheduleHandler.GetWeeklyHours)
			secured.PUT("/me/availability", scheduleHandler.PutWeeklyHours)
			secured.GET("/me/availability/exceptions", scheduleHandler.ListExceptions)
			secured.POST("/me/availability/exceptions", scheduleHandler.AddException)
			secured.DELETE("/me/availability/exceptions/:date", scheduleHandler.RemoveException)
		}
	}
}
