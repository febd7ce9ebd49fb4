package get_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RoomInventory/internal/api/handlers"
	"github.com/m04kA/SMC-RoomInventory/internal/api/middleware"
	"github.com/m04kA/SMC-RoomInventory/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgNotFound         = "бронирование не найдено"
	msgForbidden        = "бронирование принадлежит другому гостю"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{bookingId}
// Гость видит только свои брони, персонал отеля - любые
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil || bookingID <= 0 {
		h.logger.Warn("GET /bookings/{id} - Invalid booking ID: %q", mux.Vars(r)["bookingId"])
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actor := middleware.GetActor(r.Context())

	booking, err := h.service.GetByID(r.Context(), bookingID, actor)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("GET /bookings/{id} - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /bookings/{id} - Guest %d is not the owner of booking %d", actor.UserID, bookingID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /bookings/{id} - Failed to load booking: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if actor.Override && booking.UserID != actor.UserID {
		h.logger.Info("GET /bookings/{id} - Staff %d viewed booking %d of guest %d", actor.UserID, bookingID, booking.UserID)
	}

	h.logger.Info("GET /bookings/{id} - booking_id=%d, room_id=%d, status=%s, stay=%s..%s",
		bookingID, booking.RoomID, booking.Status, booking.CheckIn, booking.CheckOut)

	// статус брони меняется отменой и заселением, кэшировать ответ нельзя
	w.Header().Set("Cache-Control", "no-store")
	handlers.RespondJSON(w, http.StatusOK, booking)
}
