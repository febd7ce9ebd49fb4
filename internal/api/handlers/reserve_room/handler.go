package reserve_room

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-RoomInventory/internal/api/handlers"
	"github.com/m04kA/SMC-RoomInventory/internal/api/middleware"
	"github.com/m04kA/SMC-RoomInventory/internal/service/ratelimit"
	reserveRoom "github.com/m04kA/SMC-RoomInventory/internal/usecase/reserve_room"
	"github.com/m04kA/SMC-RoomInventory/pkg/workerpool"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "некорректные параметры бронирования"
	msgInvalidDateRange   = "некорректный период проживания"
	msgTooManyGuests      = "гостей больше, чем вмещают выбранные номера"
	msgRoomNotFound       = "номер не найден"
	msgRoomInactive       = "номер закрыт для бронирования"
	msgRoomNotAvailable   = "на выбранные даты свободных номеров нет"
	msgLockTimeout        = "номер сейчас бронируют другие гости, повторите запрос"
)

type Handler struct {
	useCase ReserveRoomUseCase
	limiter RateLimiter
	pool    WorkerPool
	logger  Logger
}

func NewHandler(useCase ReserveRoomUseCase, limiter RateLimiter, pool WorkerPool, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		limiter: limiter,
		pool:    pool,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if err := h.limiter.Allow(ratelimit.ActionReserve, identity); err != nil {
		h.logger.Warn("POST /bookings - Rate limited: identity=%s", identity)
		handlers.RespondRateLimited(w, err)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ReserveRoomRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	var result *reserveRoom.Response
	err = h.pool.Do(r.Context(), func(ctx context.Context) error {
		var err error
		result, err = h.useCase.Execute(ctx, useCaseReq)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, reserveRoom.ErrRoomNotAvailable):
			h.logger.Warn("POST /bookings - Room not available: user_id=%d, room_id=%d", userID, req.RoomID)
			handlers.RespondConflict(w, msgRoomNotAvailable)

		case errors.Is(err, reserveRoom.ErrRoomNotFound):
			h.logger.Warn("POST /bookings - Room not found: room_id=%d", req.RoomID)
			handlers.RespondNotFound(w, msgRoomNotFound)

		case errors.Is(err, reserveRoom.ErrRoomInactive):
			h.logger.Warn("POST /bookings - Room inactive: room_id=%d", req.RoomID)
			handlers.RespondConflict(w, msgRoomInactive)

		case errors.Is(err, reserveRoom.ErrInvalidDateRange):
			h.logger.Warn("POST /bookings - Invalid date range: user_id=%d, %v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidDateRange)

		case errors.Is(err, reserveRoom.ErrTooManyGuests):
			h.logger.Warn("POST /bookings - Too many guests: user_id=%d, room_id=%d", userID, req.RoomID)
			handlers.RespondBadRequest(w, msgTooManyGuests)

		case errors.Is(err, reserveRoom.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, %v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, reserveRoom.ErrLockTimeout):
			h.logger.Warn("POST /bookings - Lock timeout: room_id=%d", req.RoomID)
			handlers.RespondBusy(w, msgLockTimeout)

		case errors.Is(err, workerpool.ErrPoolBusy):
			h.logger.Warn("POST /bookings - Worker pool busy: room_id=%d", req.RoomID)
			handlers.RespondBusy(w, "")

		default:
			h.logger.Error("POST /bookings - Failed to reserve room: user_id=%d, room_id=%d, error=%v",
				userID, req.RoomID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, user_id=%d, room_id=%d",
		result.ID, userID, req.RoomID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
