package cancel_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/infra/storage"
	"github.com/m04kA/SMC-RoomInventory/internal/service/cancellation"
	"github.com/m04kA/SMC-RoomInventory/internal/service/roomlock"
)

// Исходы отмены для метрик
const (
	outcomeCancelled      = "cancelled"
	outcomeNotCancellable = "not_cancellable"
	outcomeLockTimeout    = "lock_timeout"
	outcomeRejected       = "rejected"
	outcomeError          = "error"
)

// UseCase use case отмены бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	roomRepo     RoomRepository
	section      CriticalSection
	resolver     SettingsResolver
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	roomRepo RoomRepository,
	section CriticalSection,
	resolver SettingsResolver,
	metrics Metrics,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		roomRepo:     roomRepo,
		section:      section,
		resolver:     resolver,
		metrics:      metrics,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute отменяет бронирование и возвращает рассчитанный возврат
// Повторное чтение, расчёт и смена статуса выполняются в критической секции комнаты
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("Cancel: booking=%d, user=%d, override=%t", req.BookingID, req.Actor.UserID, req.Actor.Override)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("Cancel: validation failed: %v", err)
		uc.observe(outcomeRejected)
		return nil, err
	}

	// 1. Бронь и права доступа
	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, uc.fail(req, err)
	}

	if !req.Actor.CanAccess(booking) {
		uc.logger.Warn("Cancel: access denied for user=%d to booking id=%d", req.Actor.UserID, req.BookingID)
		uc.observe(outcomeRejected)
		return nil, ErrAccessDenied
	}

	if !booking.CanBeCancelled() {
		uc.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", req.BookingID, booking.Status)
		uc.observe(outcomeNotCancellable)
		return nil, ErrBookingNotCancellable
	}

	// 2. Настройки отеля запрашиваются до входа в секцию: под блокировкой нет сетевых вызовов
	room, err := uc.roomRepo.GetByID(ctx, booking.RoomID)
	if err != nil {
		return nil, uc.fail(req, err)
	}
	settings := uc.resolver.Resolve(ctx, room)

	var (
		cancelled *domain.Booking
		quote     *cancellation.Quote
		remaining int
	)

	// 3. Критическая секция: перечитать -> рассчитать возврат -> сменить статус
	err = uc.section.Run(ctx, booking.RoomID, func(txCtx context.Context, locked *domain.Room) (*roomlock.Change, error) {
		current, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			return nil, err
		}
		if !current.CanBeCancelled() {
			return nil, fmt.Errorf("%w: status changed to %s", ErrBookingNotCancellable, current.Status)
		}

		now := uc.timeProvider.Now()
		quote, err = cancellation.Evaluate(cancellation.Input{
			Policy:     settings.Policy,
			CheckIn:    current.CheckIn,
			TotalPrice: current.TotalPrice,
			Now:        now,
			Location:   settings.Location,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: failed to evaluate refund: %v", ErrInternal, err)
		}

		// занятость считается до отмены: current ещё активна и входит в сумму
		occupied, err := uc.bookingRepo.SumActiveOverlappingUnits(txCtx, locked.ID, current.CheckIn, current.CheckOut)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to count overlapping bookings: %v", ErrInternal, err)
		}
		remaining = locked.TotalUnits - (occupied - current.Units)

		// изменение последним шагом секции
		cancelled, err = uc.bookingRepo.Cancel(txCtx, current.ID, current.Status, domain.Cancellation{
			Reason:        req.Reason,
			CancelledAt:   now.UTC(),
			RefundPercent: quote.RefundPercent,
			RefundAmount:  quote.RefundAmount,
		})
		if err != nil {
			return nil, err
		}

		return &roomlock.Change{
			Type:           domain.EventRoomAvailable,
			RemainingUnits: remaining,
			Message: fmt.Sprintf("Room %d released for %s - %s, %d unit(s) left",
				locked.ID, current.CheckIn.Format(domain.DateFormat), current.CheckOut.Format(domain.DateFormat), remaining),
		}, nil
	})

	if err != nil {
		return nil, uc.fail(req, err)
	}

	uc.observe(outcomeCancelled)
	uc.logger.Info("Cancel: successfully cancelled booking id=%d, policy=%s, refund=%d%% (%.2f)",
		cancelled.ID, quote.Policy, quote.RefundPercent, quote.RefundAmount)

	return &Response{
		BookingID:          cancelled.ID,
		RoomID:             cancelled.RoomID,
		Status:             string(cancelled.Status),
		CancellationPolicy: string(quote.Policy),
		RefundPercent:      quote.RefundPercent,
		RefundAmount:       quote.RefundAmount,
		Deadline:           quote.Deadline,
		Timeline:           quote.Timeline,
		CancelledAt:        *cancelled.CancelledAt,
		RemainingUnits:     remaining,
	}, nil
}

// fail переводит ошибки хранилища и блокировки в ошибки usecase
func (uc *UseCase) fail(req *Request, err error) error {
	switch {
	case errors.Is(err, storage.ErrBookingNotFound):
		uc.logger.Warn("Cancel: booking id=%d not found", req.BookingID)
		uc.observe(outcomeRejected)
		return ErrBookingNotFound
	case errors.Is(err, ErrBookingNotCancellable), errors.Is(err, storage.ErrStatusConflict):
		uc.logger.Warn("Cancel: booking id=%d is no longer cancellable: %v", req.BookingID, err)
		uc.observe(outcomeNotCancellable)
		return ErrBookingNotCancellable
	case errors.Is(err, roomlock.ErrLockTimeout):
		uc.logger.Warn("Cancel: booking id=%d lock timeout: %v", req.BookingID, err)
		uc.observe(outcomeLockTimeout)
		return fmt.Errorf("%w: %v", ErrLockTimeout, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		uc.logger.Warn("Cancel: booking id=%d request cancelled: %v", req.BookingID, err)
		uc.observe(outcomeError)
		return err
	default:
		uc.logger.Error("Cancel: booking id=%d failed: %v", req.BookingID, err)
		uc.observe(outcomeError)
		if errors.Is(err, ErrInternal) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

func (uc *UseCase) observe(outcome string) {
	if uc.metrics != nil {
		uc.metrics.IncCancellation(outcome)
	}
}
