package update_booking_status

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RoomInventory/internal/api/handlers"
	"github.com/m04kA/SMC-RoomInventory/internal/api/middleware"
	"github.com/m04kA/SMC-RoomInventory/internal/service/bookings"
	"github.com/m04kA/SMC-RoomInventory/internal/service/bookings/models"
	"github.com/m04kA/SMC-RoomInventory/internal/service/ratelimit"
	"github.com/m04kA/SMC-RoomInventory/pkg/workerpool"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidStatus      = "некорректный статус бронирования"
	msgInvalidTransition  = "переход в указанный статус невозможен"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgLockTimeout        = "номер сейчас занят другой операцией, повторите запрос"
)

type Handler struct {
	service BookingService
	limiter RateLimiter
	pool    WorkerPool
	logger  Logger
}

func NewHandler(service BookingService, limiter RateLimiter, pool WorkerPool, logger Logger) *Handler {
	return &Handler{
		service: service,
		limiter: limiter,
		pool:    pool,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/status
// Body: {"status": "confirmed" | "checked_in" | "completed"}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if err := h.limiter.Allow(ratelimit.ActionStatus, identity); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/status - Rate limited: identity=%s", identity)
		handlers.RespondRateLimited(w, err)
		return
	}

	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/status - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req models.UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.Actor = middleware.GetActor(r.Context())

	var booking *models.BookingResponse
	err = h.pool.Do(r.Context(), func(ctx context.Context) error {
		var err error
		booking, err = h.service.UpdateStatus(ctx, bookingID, &req)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/status - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("PATCH /bookings/{id}/status - Access denied: booking_id=%d, user_id=%d",
				bookingID, req.Actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id}/status - Invalid status: booking_id=%d, status=%s", bookingID, req.Status)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, bookings.ErrInvalidTransition):
			h.logger.Warn("PATCH /bookings/{id}/status - Invalid transition: booking_id=%d, %v", bookingID, err)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, bookings.ErrLockTimeout):
			h.logger.Warn("PATCH /bookings/{id}/status - Lock timeout: booking_id=%d", bookingID)
			handlers.RespondBusy(w, msgLockTimeout)

		case errors.Is(err, workerpool.ErrPoolBusy):
			h.logger.Warn("PATCH /bookings/{id}/status - Worker pool busy: booking_id=%d", bookingID)
			handlers.RespondBusy(w, "")

		default:
			h.logger.Error("PATCH /bookings/{id}/status - Failed to update status: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/status - Status updated: booking_id=%d, status=%s", bookingID, booking.Status)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
