package cancel_booking

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RoomInventory/internal/api/handlers"
	"github.com/m04kA/SMC-RoomInventory/internal/api/middleware"
	"github.com/m04kA/SMC-RoomInventory/internal/service/ratelimit"
	cancelBooking "github.com/m04kA/SMC-RoomInventory/internal/usecase/cancel_booking"
	"github.com/m04kA/SMC-RoomInventory/pkg/workerpool"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные параметры отмены"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgCannotCancel       = "бронирование не может быть отменено"
	msgLockTimeout        = "номер сейчас занят другой операцией, повторите запрос"
)

type Handler struct {
	useCase CancelBookingUseCase
	limiter RateLimiter
	pool    WorkerPool
	logger  Logger
}

func NewHandler(useCase CancelBookingUseCase, limiter RateLimiter, pool WorkerPool, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		limiter: limiter,
		pool:    pool,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if err := h.limiter.Allow(ratelimit.ActionCancel, identity); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/cancel - Rate limited: identity=%s", identity)
		handlers.RespondRateLimited(w, err)
		return
	}

	// Извлекаем bookingId из URL
	vars := mux.Vars(r)
	bookingIDStr := vars["bookingId"]

	bookingID, err := strconv.ParseInt(bookingIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/cancel - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	// Тело необязательно
	var req CancelBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("PATCH /bookings/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	actor := middleware.GetActor(r.Context())
	useCaseReq := req.ToUseCaseRequest(bookingID, actor)

	var result *cancelBooking.Response
	err = h.pool.Do(r.Context(), func(ctx context.Context) error {
		var err error
		result, err = h.useCase.Execute(ctx, useCaseReq)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, cancelBooking.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/cancel - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, cancelBooking.ErrAccessDenied):
			h.logger.Warn("PATCH /bookings/{id}/cancel - Access denied: booking_id=%d, user_id=%d",
				bookingID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, cancelBooking.ErrBookingNotCancellable):
			h.logger.Warn("PATCH /bookings/{id}/cancel - Cannot cancel: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgCannotCancel)

		case errors.Is(err, cancelBooking.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id}/cancel - Invalid input: booking_id=%d, %v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, cancelBooking.ErrLockTimeout):
			h.logger.Warn("PATCH /bookings/{id}/cancel - Lock timeout: booking_id=%d", bookingID)
			handlers.RespondBusy(w, msgLockTimeout)

		case errors.Is(err, workerpool.ErrPoolBusy):
			h.logger.Warn("PATCH /bookings/{id}/cancel - Worker pool busy: booking_id=%d", bookingID)
			handlers.RespondBusy(w, "")

		default:
			h.logger.Error("PATCH /bookings/{id}/cancel - Failed to cancel booking: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/cancel - Booking cancelled successfully: booking_id=%d, user_id=%d, refund=%d%%",
		bookingID, actor.UserID, result.RefundPercent)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
