package refresh_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/infra/storage"
	"github.com/m04kA/SMC-RoomInventory/internal/service/roomlock"
)

// UseCase use case снимка доступности комнаты (REFRESH)
type UseCase struct {
	roomRepo     RoomRepository
	bookingRepo  BookingRepository
	section      CriticalSection
	resolver     SettingsResolver
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	roomRepo RoomRepository,
	bookingRepo BookingRepository,
	section CriticalSection,
	resolver SettingsResolver,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	return &UseCase{
		roomRepo:     roomRepo,
		bookingRepo:  bookingRepo,
		section:      section,
		resolver:     resolver,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute считает оставшиеся номера на интервал и текущий номер события комнаты
// Без deliver снимок читается без блокировки комнаты и может отстать от идущей брони.
// С deliver снимок берётся в критической секции: REFRESH уходит подписчику внутри неё,
// поэтому все последующие события комнаты имеют больший номер.
func (uc *UseCase) Execute(ctx context.Context, req *Request, deliver DeliverFunc) (*Response, error) {
	uc.logger.Info("RefreshAvailability: room=%d, checkIn=%s, checkOut=%s",
		req.RoomID, req.CheckIn.Format(domain.DateFormat), req.CheckOut.Format(domain.DateFormat))

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RefreshAvailability: validation failed: %v", err)
		return nil, err
	}

	if req.CheckIn.IsZero() {
		room, err := uc.roomRepo.GetByID(ctx, req.RoomID)
		if err != nil {
			return nil, uc.fail(req, err)
		}
		settings := uc.resolver.Resolve(ctx, room)
		req.CheckIn, req.CheckOut = defaultRange(uc.timeProvider.Now(), settings.Location)
	}

	var (
		resp *Response
		err  error
	)
	if deliver == nil {
		resp, err = uc.read(ctx, req)
	} else {
		resp, err = uc.readLocked(ctx, req, deliver)
	}
	if err != nil {
		return nil, uc.fail(req, err)
	}

	uc.logger.Info("RefreshAvailability: room=%d remaining=%d/%d, seq=%d",
		resp.RoomID, resp.RemainingUnits, resp.TotalUnits, resp.Sequence)
	return resp, nil
}

// read снимок для простого чтения, без блокировки комнаты
func (uc *UseCase) read(ctx context.Context, req *Request) (*Response, error) {
	room, err := uc.roomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	return uc.snapshot(ctx, room, req)
}

// readLocked снимок под блокировкой комнаты с доставкой REFRESH
func (uc *UseCase) readLocked(ctx context.Context, req *Request, deliver DeliverFunc) (*Response, error) {
	var resp *Response

	err := uc.section.Run(ctx, req.RoomID, func(txCtx context.Context, locked *domain.Room) (*roomlock.Change, error) {
		var err error
		resp, err = uc.snapshot(txCtx, locked, req)
		if err != nil {
			return nil, err
		}

		deliver(domain.Event{
			Version:        domain.EventVersion,
			Type:           domain.EventRefresh,
			RoomID:         resp.RoomID,
			HotelID:        resp.HotelID,
			RemainingUnits: resp.RemainingUnits,
			Sequence:       resp.Sequence,
			Message: fmt.Sprintf("Room %d has %d of %d unit(s) free for %s - %s",
				resp.RoomID, resp.RemainingUnits, resp.TotalUnits,
				req.CheckIn.Format(domain.DateFormat), req.CheckOut.Format(domain.DateFormat)),
			OccurredAt: uc.timeProvider.Now().UTC(),
		})

		// инвентарь не меняется: без номера события и публикации
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (uc *UseCase) snapshot(ctx context.Context, room *domain.Room, req *Request) (*Response, error) {
	occupied, err := uc.bookingRepo.SumActiveOverlappingUnits(ctx, room.ID, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count overlapping bookings: %v", ErrInternal, err)
	}

	remaining := room.TotalUnits - occupied
	if remaining < 0 || !room.Active {
		remaining = 0
	}

	return &Response{
		RoomID:         room.ID,
		HotelID:        room.HotelID,
		CheckIn:        req.CheckIn,
		CheckOut:       req.CheckOut,
		TotalUnits:     room.TotalUnits,
		RemainingUnits: remaining,
		Sequence:       room.EventSeq,
		Active:         room.Active,
	}, nil
}

func (uc *UseCase) fail(req *Request, err error) error {
	switch {
	case errors.Is(err, storage.ErrRoomNotFound):
		uc.logger.Warn("RefreshAvailability: room id=%d not found", req.RoomID)
		return ErrRoomNotFound
	case errors.Is(err, roomlock.ErrLockTimeout):
		uc.logger.Warn("RefreshAvailability: room id=%d lock timeout: %v", req.RoomID, err)
		return fmt.Errorf("%w: %v", ErrLockTimeout, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		uc.logger.Error("RefreshAvailability: room id=%d failed: %v", req.RoomID, err)
		if errors.Is(err, ErrInternal) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
