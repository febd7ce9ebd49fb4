package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCheckedIn BookingStatus = "checked_in"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// transitions допустимые переходы статусов бронирования
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn: {StatusCompleted},
}

// Booking represents a room reservation for the half-open interval [CheckIn, CheckOut)
type Booking struct {
	ID         int64
	RoomID     int64
	HotelID    int64
	UserID     int64
	CheckIn    time.Time // дата заезда (включительно), полночь UTC
	CheckOut   time.Time // дата выезда (не включительно), полночь UTC
	GuestCount int
	Units      int // сколько номеров данного типа занимает бронь
	Status     BookingStatus
	TotalPrice float64
	Policy     CancellationPolicy // тариф на момент бронирования

	CancellationReason *string
	CancelledAt        *time.Time
	RefundPercent      *int
	RefundAmount       *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Cancellation данные отмены, которые сохраняются вместе со сменой статуса
type Cancellation struct {
	Reason        string
	CancelledAt   time.Time
	RefundPercent int
	RefundAmount  float64
}

// IsActive returns true if the booking occupies inventory
func (b *Booking) IsActive() bool {
	return b.Status.IsActive()
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status.CanTransitionTo(StatusCancelled)
}

// Interval returns the stay as a date interval
func (b *Booking) Interval() Interval {
	return Interval{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

// Nights returns the number of nights of the stay
func (b *Booking) Nights() int {
	return b.Interval().Nights()
}

// IsActive returns true for statuses that count toward occupancy
func (s BookingStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal returns true if no further transitions are possible
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo проверяет переход по машине состояний брони
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseBookingStatus конвертирует строку в BookingStatus с валидацией
func ParseBookingStatus(s string) (BookingStatus, bool) {
	status := BookingStatus(s)
	switch status {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCompleted, StatusCancelled:
		return status, true
	default:
		return "", false
	}
}
