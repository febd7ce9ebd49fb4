package reserve_room

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
)

// validateRequest валидирует входные данные запроса и нормализует даты
func validateRequest(req *Request, maxStayNights int) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.RoomID <= 0 {
		return fmt.Errorf("%w: roomID must be positive", ErrInvalidInput)
	}

	if req.Units == 0 {
		req.Units = domain.DefaultUnitsRequested
	}
	if req.Units < 0 || req.Units > domain.MaxUnitsPerBooking {
		return fmt.Errorf("%w: units must be between 1 and %d", ErrInvalidInput, domain.MaxUnitsPerBooking)
	}

	if req.GuestCount < 1 {
		return fmt.Errorf("%w: guestCount must be positive", ErrInvalidInput)
	}

	if req.CheckIn.IsZero() || req.CheckOut.IsZero() {
		return fmt.Errorf("%w: checkIn and checkOut are required", ErrInvalidDateRange)
	}

	req.CheckIn = domain.NormalizeDate(req.CheckIn)
	req.CheckOut = domain.NormalizeDate(req.CheckOut)

	stay := domain.Interval{CheckIn: req.CheckIn, CheckOut: req.CheckOut}
	if !stay.IsValid() {
		return fmt.Errorf("%w: checkOut must be after checkIn", ErrInvalidDateRange)
	}

	if maxStayNights > 0 && stay.Nights() > maxStayNights {
		return fmt.Errorf("%w: stay is longer than %d nights", ErrInvalidDateRange, maxStayNights)
	}

	return nil
}

// validateCheckInNotInPast проверяет, что заезд не раньше сегодняшнего дня по времени отеля
func validateCheckInNotInPast(checkIn, now time.Time, loc *time.Location) error {
	today := domain.DateOf(now, loc)
	if checkIn.Before(today) {
		return fmt.Errorf("%w: checkIn %s is in the past (today is %s)",
			ErrInvalidDateRange, checkIn.Format(domain.DateFormat), today.Format(domain.DateFormat))
	}
	return nil
}

// validateGuests проверяет вместимость запрошенных номеров
func validateGuests(room *domain.Room, guestCount, units int) error {
	if guestCount > room.MaxGuests(units) {
		return fmt.Errorf("%w: %d guests, %d unit(s) fit %d", ErrTooManyGuests, guestCount, units, room.MaxGuests(units))
	}
	return nil
}

// totalPrice считает nightlyPrice * nights * units с округлением до копеек half-up
func totalPrice(nightlyPrice float64, nights, units int) float64 {
	return decimal.NewFromFloat(nightlyPrice).
		Mul(decimal.NewFromInt(int64(nights))).
		Mul(decimal.NewFromInt(int64(units))).
		Round(2).
		InexactFloat64()
}
