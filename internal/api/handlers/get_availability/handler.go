package get_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RoomInventory/internal/api/handlers"
	refreshAvailability "github.com/m04kA/SMC-RoomInventory/internal/usecase/refresh_availability"
)

const (
	msgInvalidRoomID    = "некорректный ID номера"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidDateRange = "некорректный период"
	msgRoomNotFound     = "номер не найден"
	msgLockTimeout      = "номер сейчас занят другой операцией, повторите запрос"
)

type Handler struct {
	useCase AvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase AvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/rooms/{roomId}/availability
// Query params: checkIn, checkOut (YYYY-MM-DD, опционально; по умолчанию ближайшая ночь)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(mux.Vars(r)["roomId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /rooms/{id}/availability - Invalid room ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRoomID)
		return
	}

	query := r.URL.Query()
	req, err := ToUseCaseRequest(roomID, query.Get("checkIn"), query.Get("checkOut"))
	if err != nil {
		h.logger.Warn("GET /rooms/{id}/availability - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req, nil)
	if err != nil {
		switch {
		case errors.Is(err, refreshAvailability.ErrRoomNotFound):
			handlers.RespondNotFound(w, msgRoomNotFound)
		case errors.Is(err, refreshAvailability.ErrInvalidDateRange), errors.Is(err, refreshAvailability.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidDateRange)
		case errors.Is(err, refreshAvailability.ErrLockTimeout):
			handlers.RespondBusy(w, msgLockTimeout)
		default:
			h.logger.Error("GET /rooms/{id}/availability - Failed: room_id=%d, error=%v", roomID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
