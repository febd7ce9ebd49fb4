package domain

// Default configuration values
const (
	DefaultUnitsRequested     = 1
	DefaultMaxStayNights      = 30
	DefaultCancellationPolicy = PolicyModerate
)

// CheckInHour час заезда по местному времени отеля
const CheckInHour = 15

// Business validation constants
const (
	MaxUnitsPerBooking          = 10
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы, которые занимают инвентарь комнаты
// Используется при подсчёте пересекающихся бронирований
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}
