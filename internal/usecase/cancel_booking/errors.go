package cancel_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("cancel_booking: booking not found")

	// ErrAccessDenied возвращается, когда отменяет не владелец и без прав менеджера
	ErrAccessDenied = errors.New("cancel_booking: access denied")

	// ErrBookingNotCancellable возвращается для броней вне статусов pending/confirmed
	ErrBookingNotCancellable = errors.New("cancel_booking: booking cannot be cancelled")

	// ErrLockTimeout возвращается, если блокировку комнаты не удалось получить вовремя
	ErrLockTimeout = errors.New("cancel_booking: room lock timeout")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancel_booking: invalid input")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("cancel_booking: internal error")
)
