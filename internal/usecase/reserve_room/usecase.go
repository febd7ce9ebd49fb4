package reserve_room

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/infra/storage"
	"github.com/m04kA/SMC-RoomInventory/internal/service/roomlock"
)

// Исходы бронирования для метрик
const (
	outcomeBooked       = "booked"
	outcomeNotAvailable = "not_available"
	outcomeLockTimeout  = "lock_timeout"
	outcomeRejected     = "rejected"
	outcomeError        = "error"
)

// UseCase use case бронирования номера
type UseCase struct {
	roomRepo     RoomRepository
	bookingRepo  BookingRepository
	section      CriticalSection
	resolver     SettingsResolver
	metrics      Metrics
	timeProvider TimeProvider
	opts         Options
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	roomRepo RoomRepository,
	bookingRepo BookingRepository,
	section CriticalSection,
	resolver SettingsResolver,
	metrics Metrics,
	timeProvider TimeProvider,
	opts Options,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	if opts.MaxStayNights == 0 {
		opts.MaxStayNights = domain.DefaultMaxStayNights
	}
	return &UseCase{
		roomRepo:     roomRepo,
		bookingRepo:  bookingRepo,
		section:      section,
		resolver:     resolver,
		metrics:      metrics,
		timeProvider: timeProvider,
		opts:         opts,
		logger:       logger,
	}
}

// Execute бронирует номер
// Подсчёт пересекающихся броней и вставка выполняются в критической секции комнаты,
// событие ROOM_BOOKED публикуется после коммита
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("Reserve: user=%d, room=%d, checkIn=%s, checkOut=%s, guests=%d, units=%d",
		req.UserID, req.RoomID, req.CheckIn.Format(domain.DateFormat), req.CheckOut.Format(domain.DateFormat),
		req.GuestCount, req.Units)

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.opts.MaxStayNights); err != nil {
		uc.logger.Warn("Reserve: validation failed: %v", err)
		uc.observe(outcomeRejected)
		return nil, err
	}

	// 2. Получаем комнату
	room, err := uc.roomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, uc.fail(req, err)
	}
	if !room.Active {
		uc.logger.Warn("Reserve: room id=%d is not active", req.RoomID)
		uc.observe(outcomeRejected)
		return nil, ErrRoomInactive
	}

	// 3. Часовой пояс и тариф отеля; "сегодня" считается по времени отеля
	settings := uc.resolver.Resolve(ctx, room)
	if err := validateCheckInNotInPast(req.CheckIn, uc.timeProvider.Now(), settings.Location); err != nil {
		uc.logger.Warn("Reserve: %v", err)
		uc.observe(outcomeRejected)
		return nil, err
	}

	if err := validateGuests(room, req.GuestCount, req.Units); err != nil {
		uc.logger.Warn("Reserve: %v", err)
		uc.observe(outcomeRejected)
		return nil, err
	}

	status := domain.StatusPending
	if uc.opts.AutoConfirm {
		status = domain.StatusConfirmed
	}

	var (
		result    *domain.Booking
		remaining int
	)

	// 4. Критическая секция комнаты: посчитать занятость -> вставить
	err = uc.section.Run(ctx, req.RoomID, func(txCtx context.Context, locked *domain.Room) (*roomlock.Change, error) {
		occupied, err := uc.bookingRepo.SumActiveOverlappingUnits(txCtx, locked.ID, req.CheckIn, req.CheckOut)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to count overlapping bookings: %v", ErrInternal, err)
		}

		if occupied+req.Units > locked.TotalUnits {
			uc.logger.Warn("Reserve: room id=%d not available, %d/%d units taken, %d requested",
				locked.ID, occupied, locked.TotalUnits, req.Units)
			return nil, ErrRoomNotAvailable
		}

		stay := domain.Interval{CheckIn: req.CheckIn, CheckOut: req.CheckOut}
		booking := &domain.Booking{
			RoomID:     locked.ID,
			HotelID:    locked.HotelID,
			UserID:     req.UserID,
			CheckIn:    req.CheckIn,
			CheckOut:   req.CheckOut,
			GuestCount: req.GuestCount,
			Units:      req.Units,
			Status:     status,
			TotalPrice: totalPrice(locked.NightlyPrice, stay.Nights(), req.Units),
			Policy:     settings.Policy,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		remaining = locked.TotalUnits - occupied - req.Units

		return &roomlock.Change{
			Type:           domain.EventRoomBooked,
			RemainingUnits: remaining,
			Message: fmt.Sprintf("Room %d booked for %s - %s, %d unit(s) left",
				locked.ID, req.CheckIn.Format(domain.DateFormat), req.CheckOut.Format(domain.DateFormat), remaining),
		}, nil
	})

	if err != nil {
		return nil, uc.fail(req, err)
	}

	uc.observe(outcomeBooked)
	uc.logger.Info("Reserve: successfully created booking id=%d, room=%d, status=%s, remaining=%d",
		result.ID, result.RoomID, result.Status, remaining)

	return &Response{
		ID:                 result.ID,
		RoomID:             result.RoomID,
		HotelID:            result.HotelID,
		UserID:             result.UserID,
		CheckIn:            result.CheckIn,
		CheckOut:           result.CheckOut,
		GuestCount:         result.GuestCount,
		Units:              result.Units,
		Status:             string(result.Status),
		TotalPrice:         result.TotalPrice,
		CancellationPolicy: string(result.Policy),
		RemainingUnits:     remaining,
		CreatedAt:          result.CreatedAt,
	}, nil
}

// fail переводит ошибки хранилища и блокировки в ошибки usecase
func (uc *UseCase) fail(req *Request, err error) error {
	switch {
	case errors.Is(err, ErrRoomNotAvailable):
		uc.observe(outcomeNotAvailable)
		return ErrRoomNotAvailable
	case errors.Is(err, storage.ErrRoomNotFound):
		uc.logger.Warn("Reserve: room id=%d not found", req.RoomID)
		uc.observe(outcomeRejected)
		return ErrRoomNotFound
	case errors.Is(err, roomlock.ErrLockTimeout):
		uc.logger.Warn("Reserve: room id=%d lock timeout: %v", req.RoomID, err)
		uc.observe(outcomeLockTimeout)
		return fmt.Errorf("%w: %v", ErrLockTimeout, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		uc.logger.Warn("Reserve: room id=%d request cancelled: %v", req.RoomID, err)
		uc.observe(outcomeError)
		return err
	default:
		uc.logger.Error("Reserve: room id=%d failed: %v", req.RoomID, err)
		uc.observe(outcomeError)
		if errors.Is(err, ErrInternal) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

func (uc *UseCase) observe(outcome string) {
	if uc.metrics != nil {
		uc.metrics.IncReservation(outcome)
	}
}
