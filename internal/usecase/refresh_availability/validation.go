package refresh_availability

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
)

// maxRangeNights ограничение интервала снимка
const maxRangeNights = 366

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.RoomID <= 0 {
		return fmt.Errorf("%w: roomID must be positive", ErrInvalidInput)
	}

	if req.CheckIn.IsZero() != req.CheckOut.IsZero() {
		return fmt.Errorf("%w: checkIn and checkOut must be set together", ErrInvalidDateRange)
	}

	if req.CheckIn.IsZero() {
		return nil
	}

	req.CheckIn = domain.NormalizeDate(req.CheckIn)
	req.CheckOut = domain.NormalizeDate(req.CheckOut)

	stay := domain.Interval{CheckIn: req.CheckIn, CheckOut: req.CheckOut}
	if !stay.IsValid() {
		return fmt.Errorf("%w: checkOut must be after checkIn", ErrInvalidDateRange)
	}
	if stay.Nights() > maxRangeNights {
		return fmt.Errorf("%w: range is longer than %d nights", ErrInvalidDateRange, maxRangeNights)
	}

	return nil
}

// defaultRange одна ночь с сегодняшнего дня по времени отеля
func defaultRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	today := domain.DateOf(now, loc)
	return today, today.AddDate(0, 0, 1)
}
