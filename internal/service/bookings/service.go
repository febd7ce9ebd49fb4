package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/infra/storage"
	"github.com/m04kA/SMC-RoomInventory/internal/service/bookings/models"
	"github.com/m04kA/SMC-RoomInventory/internal/service/cancellation"
	"github.com/m04kA/SMC-RoomInventory/internal/service/roomlock"
)

// Service сервис для работы с бронированиями: чтение, смена статуса, расчёт возврата
type Service struct {
	bookingRepo  BookingRepository
	roomRepo     RoomRepository
	section      CriticalSection
	resolver     SettingsResolver
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	roomRepo RoomRepository,
	section CriticalSection,
	resolver SettingsResolver,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	return &Service{
		bookingRepo:  bookingRepo,
		roomRepo:     roomRepo,
		section:      section,
		resolver:     resolver,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
// Пользователь видит только своё бронирование, персонал отеля - любое
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, actor.UserID)

	booking, err := s.getAccessible(ctx, "GetByID", id, actor)
	if err != nil {
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking), nil
}

// GetRoomBookings возвращает все бронирования комнаты; доступно только персоналу отеля
func (s *Service) GetRoomBookings(ctx context.Context, roomID int64, actor domain.Actor) (*models.BookingListResponse, error) {
	s.logger.Info("GetRoomBookings: fetching bookings for room=%d, user=%d", roomID, actor.UserID)

	if !actor.Override {
		s.logger.Warn("GetRoomBookings: access denied for user=%d to room=%d", actor.UserID, roomID)
		return nil, ErrAccessDenied
	}

	if _, err := s.roomRepo.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			s.logger.Warn("GetRoomBookings: room id=%d not found", roomID)
			return nil, ErrRoomNotFound
		}
		s.logger.Error("GetRoomBookings: repository error for room id=%d: %v", roomID, err)
		return nil, fmt.Errorf("%w: GetRoomBookings - repository error: %v", ErrInternal, err)
	}

	bookings, err := s.bookingRepo.ListByRoom(ctx, roomID)
	if err != nil {
		s.logger.Error("GetRoomBookings: repository error for room=%d: %v", roomID, err)
		return nil, fmt.Errorf("%w: GetRoomBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetRoomBookings: successfully fetched %d bookings for room=%d", len(bookings), roomID)
	return models.FromDomainBookingList(bookings), nil
}

// GetUserBookings возвращает историю бронирований пользователя
// Чужую историю видит только персонал
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, requested by user=%d", req.UserID, req.Actor.UserID)

	if req.Actor.UserID != req.UserID && !req.Actor.Override {
		s.logger.Warn("GetUserBookings: access denied for user=%d to bookings of user=%d", req.Actor.UserID, req.UserID)
		return nil, ErrAccessDenied
	}

	var status *domain.BookingStatus
	if req.Status != nil {
		parsed, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		status = &parsed
	}

	bookings, err := s.bookingRepo.ListByUser(ctx, req.UserID, status)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// Quote считает возврат при отмене прямо сейчас, не меняя бронирование
func (s *Service) Quote(ctx context.Context, id int64, actor domain.Actor) (*models.QuoteResponse, error) {
	s.logger.Info("Quote: booking id=%d, user=%d", id, actor.UserID)

	booking, err := s.getAccessible(ctx, "Quote", id, actor)
	if err != nil {
		return nil, err
	}

	if !booking.CanBeCancelled() {
		s.logger.Warn("Quote: booking id=%d cannot be cancelled, status=%s", id, booking.Status)
		return nil, fmt.Errorf("%w: booking in status %s cannot be cancelled", ErrInvalidTransition, booking.Status)
	}

	room, err := s.roomRepo.GetByID(ctx, booking.RoomID)
	if err != nil {
		s.logger.Error("Quote: failed to get room id=%d: %v", booking.RoomID, err)
		return nil, fmt.Errorf("%w: Quote - failed to get room: %v", ErrInternal, err)
	}
	settings := s.resolver.Resolve(ctx, room)

	quote, err := cancellation.Evaluate(cancellation.Input{
		Policy:     settings.Policy,
		CheckIn:    booking.CheckIn,
		TotalPrice: booking.TotalPrice,
		Now:        s.timeProvider.Now(),
		Location:   settings.Location,
	})
	if err != nil {
		s.logger.Error("Quote: failed to evaluate booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Quote - evaluate: %v", ErrInternal, err)
	}

	s.logger.Info("Quote: booking id=%d, policy=%s, refund=%d%%", id, quote.Policy, quote.RefundPercent)
	return models.FromQuote(booking.ID, quote), nil
}

// UpdateStatus переводит бронирование по машине состояний
// Доступно только персоналу отеля. Отмена идёт через отдельный сценарий с расчётом возврата.
// Заселение выводит бронь из активных, поэтому публикуется ROOM_AVAILABLE.
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s by user=%d",
		bookingID, req.Status, req.Actor.UserID)

	if !req.Actor.Override {
		s.logger.Warn("UpdateStatus: access denied for user=%d to booking id=%d", req.Actor.UserID, bookingID)
		return nil, ErrAccessDenied
	}

	// Валидируем и конвертируем статус
	target, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}
	if target == domain.StatusCancelled || target == domain.StatusPending {
		s.logger.Warn("UpdateStatus: status=%s is not set directly, booking id=%d", target, bookingID)
		return nil, fmt.Errorf("%w: status %s cannot be set directly", ErrInvalidTransition, target)
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, s.repoError("UpdateStatus", bookingID, err)
	}

	var updated *domain.Booking

	err = s.section.Run(ctx, booking.RoomID, func(txCtx context.Context, locked *domain.Room) (*roomlock.Change, error) {
		current, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			return nil, err
		}
		if !current.Status.CanTransitionTo(target) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, target)
		}

		updated, err = s.bookingRepo.TransitionStatus(txCtx, bookingID, current.Status, target)
		if err != nil {
			return nil, err
		}

		if !current.IsActive() || updated.IsActive() {
			return nil, nil
		}

		occupied, err := s.bookingRepo.SumActiveOverlappingUnits(txCtx, locked.ID, current.CheckIn, current.CheckOut)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to count overlapping bookings: %v", ErrInternal, err)
		}
		remaining := locked.TotalUnits - occupied

		return &roomlock.Change{
			Type:           domain.EventRoomAvailable,
			RemainingUnits: remaining,
			Message: fmt.Sprintf("Room %d: booking %d is %s, %d unit(s) left for %s - %s",
				locked.ID, bookingID, target, remaining,
				current.CheckIn.Format(domain.DateFormat), current.CheckOut.Format(domain.DateFormat)),
		}, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTransition), errors.Is(err, storage.ErrStatusConflict):
			s.logger.Warn("UpdateStatus: booking id=%d: %v", bookingID, err)
			if errors.Is(err, ErrInvalidTransition) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		case errors.Is(err, roomlock.ErrLockTimeout):
			s.logger.Warn("UpdateStatus: booking id=%d lock timeout: %v", bookingID, err)
			return nil, fmt.Errorf("%w: %v", ErrLockTimeout, err)
		default:
			return nil, s.repoError("UpdateStatus", bookingID, err)
		}
	}

	s.logger.Info("UpdateStatus: successfully updated booking id=%d to status=%s", bookingID, updated.Status)
	return models.FromDomainBooking(updated), nil
}

// Вспомогательные методы

// getAccessible читает бронирование и проверяет права доступа actor
func (s *Service) getAccessible(ctx context.Context, op string, id int64, actor domain.Actor) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.repoError(op, id, err)
	}

	if !actor.CanAccess(booking) {
		s.logger.Warn("%s: access denied for user=%d to booking id=%d", op, actor.UserID, id)
		return nil, ErrAccessDenied
	}

	return booking, nil
}

func (s *Service) repoError(op string, id int64, err error) error {
	if errors.Is(err, storage.ErrBookingNotFound) {
		s.logger.Warn("%s: booking id=%d not found", op, id)
		return ErrBookingNotFound
	}
	if errors.Is(err, ErrInternal) {
		s.logger.Error("%s: booking id=%d: %v", op, id, err)
		return err
	}
	s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}
