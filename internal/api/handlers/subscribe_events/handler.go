package subscribe_events

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RoomInventory/internal/api/handlers"
	"github.com/m04kA/SMC-RoomInventory/internal/api/middleware"
	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/service/broadcast"
	"github.com/m04kA/SMC-RoomInventory/internal/service/ratelimit"
	refreshAvailability "github.com/m04kA/SMC-RoomInventory/internal/usecase/refresh_availability"
)

// DefaultHeartbeat интервал комментариев-пингов, чтобы прокси не закрывали соединение
const DefaultHeartbeat = 15 * time.Second

const (
	msgInvalidRoomID    = "некорректный ID номера"
	msgInvalidHotelID   = "некорректный ID отеля"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidDateRange = "некорректный период"
	msgRoomNotFound     = "номер не найден"
	msgLockTimeout      = "номер сейчас занят другой операцией, повторите запрос"
	msgUnavailable      = "подписка временно недоступна"
)

type Handler struct {
	broadcaster Broadcaster
	refresher   AvailabilityUseCase
	limiter     RateLimiter
	heartbeat   time.Duration
	logger      Logger
}

func NewHandler(broadcaster Broadcaster, refresher AvailabilityUseCase, limiter RateLimiter, heartbeat time.Duration, logger Logger) *Handler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Handler{
		broadcaster: broadcaster,
		refresher:   refresher,
		limiter:     limiter,
		heartbeat:   heartbeat,
		logger:      logger,
	}
}

// HandleRoom GET /api/v1/rooms/{roomId}/events
// Query params: checkIn, checkOut (YYYY-MM-DD, опционально) - интервал для REFRESH
// Поток начинается с REFRESH; события, закоммиченные до снимка, уже учтены в нём и не отправляются
func (h *Handler) HandleRoom(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if err := h.limiter.Allow(ratelimit.ActionSubscribe, identity); err != nil {
		h.logger.Warn("GET /rooms/{id}/events - Rate limited: identity=%s", identity)
		handlers.RespondRateLimited(w, err)
		return
	}

	roomID, err := strconv.ParseInt(mux.Vars(r)["roomId"], 10, 64)
	if err != nil || roomID <= 0 {
		h.logger.Warn("GET /rooms/{id}/events - Invalid room ID: %v", mux.Vars(r)["roomId"])
		handlers.RespondBadRequest(w, msgInvalidRoomID)
		return
	}

	req, err := parseRange(roomID, r)
	if err != nil {
		h.logger.Warn("GET /rooms/{id}/events - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Подписка до снимка: ни одно событие после снимка не потеряется
	sub, err := h.broadcaster.Subscribe(broadcast.RoomTopic(roomID))
	if err != nil {
		h.logger.Error("GET /rooms/{id}/events - Subscribe failed: room_id=%d, error=%v", roomID, err)
		handlers.RespondBusy(w, msgUnavailable)
		return
	}
	defer h.broadcaster.Unsubscribe(sub)

	_, err = h.refresher.Execute(r.Context(), req, func(ev domain.Event) {
		h.broadcaster.Deliver(sub, ev)
	})
	if err != nil {
		switch {
		case errors.Is(err, refreshAvailability.ErrRoomNotFound):
			handlers.RespondNotFound(w, msgRoomNotFound)
		case errors.Is(err, refreshAvailability.ErrInvalidDateRange), errors.Is(err, refreshAvailability.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidDateRange)
		case errors.Is(err, refreshAvailability.ErrLockTimeout):
			handlers.RespondBusy(w, msgLockTimeout)
		default:
			h.logger.Error("GET /rooms/{id}/events - Refresh failed: room_id=%d, error=%v", roomID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /rooms/{id}/events - Subscribed: room_id=%d, subscription=%s", roomID, sub.ID)
	h.serve(r.Context(), newStream(w), sub, true)
	h.logger.Info("GET /rooms/{id}/events - Closed: room_id=%d, subscription=%s", roomID, sub.ID)
}

// HandleHotel GET /api/v1/hotels/{hotelId}/events
func (h *Handler) HandleHotel(w http.ResponseWriter, r *http.Request) {
	hotelID, err := strconv.ParseInt(mux.Vars(r)["hotelId"], 10, 64)
	if err != nil || hotelID <= 0 {
		h.logger.Warn("GET /hotels/{id}/events - Invalid hotel ID: %v", mux.Vars(r)["hotelId"])
		handlers.RespondBadRequest(w, msgInvalidHotelID)
		return
	}

	sub, err := h.broadcaster.Subscribe(broadcast.HotelTopic(hotelID))
	if err != nil {
		h.logger.Error("GET /hotels/{id}/events - Subscribe failed: hotel_id=%d, error=%v", hotelID, err)
		handlers.RespondBusy(w, msgUnavailable)
		return
	}
	defer h.broadcaster.Unsubscribe(sub)

	h.logger.Info("GET /hotels/{id}/events - Subscribed: hotel_id=%d, subscription=%s", hotelID, sub.ID)
	h.serve(r.Context(), newStream(w), sub, false)
	h.logger.Info("GET /hotels/{id}/events - Closed: hotel_id=%d, subscription=%s", hotelID, sub.ID)
}

// serve перекладывает события подписки в поток до отключения клиента или закрытия подписки
func (h *Handler) serve(ctx context.Context, s *stream, sub *broadcast.Subscription, awaitRefresh bool) {
	if err := s.flush(); err != nil {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if err := s.ping(); err != nil {
				return
			}

		case ev, ok := <-sub.C():
			if !ok {
				reason := "closed"
				if err := sub.Err(); err != nil {
					reason = err.Error()
				}
				h.logger.Warn("Events: subscription=%s closed: %s", sub.ID, reason)
				_ = s.resync(reason)
				return
			}

			if awaitRefresh {
				if ev.Type != domain.EventRefresh {
					continue
				}
				awaitRefresh = false
			}

			if err := s.event(ev); err != nil {
				return
			}
		}
	}
}

func parseRange(roomID int64, r *http.Request) (*refreshAvailability.Request, error) {
	req := &refreshAvailability.Request{RoomID: roomID}
	query := r.URL.Query()

	if v := query.Get("checkIn"); v != "" {
		t, err := time.Parse(domain.DateFormat, v)
		if err != nil {
			return nil, err
		}
		req.CheckIn = t
	}
	if v := query.Get("checkOut"); v != "" {
		t, err := time.Parse(domain.DateFormat, v)
		if err != nil {
			return nil, err
		}
		req.CheckOut = t
	}
	return req, nil
}
