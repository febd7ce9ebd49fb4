package refresh_availability

import "errors"

var (
	// ErrRoomNotFound возвращается, когда комната не найдена
	ErrRoomNotFound = errors.New("refresh_availability: room not found")

	// ErrInvalidDateRange возвращается при некорректном интервале дат
	ErrInvalidDateRange = errors.New("refresh_availability: invalid date range")

	// ErrLockTimeout возвращается, если блокировку комнаты не удалось получить вовремя
	ErrLockTimeout = errors.New("refresh_availability: room lock timeout")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("refresh_availability: invalid input")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("refresh_availability: internal error")
)
