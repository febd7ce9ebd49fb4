package storage

import "errors"

// Общие ошибки хранилищ: их возвращают и memory, и postgres реализации
var (
	// ErrRoomNotFound комната не найдена
	ErrRoomNotFound = errors.New("storage: room not found")

	// ErrBookingNotFound бронирование не найдено
	ErrBookingNotFound = errors.New("storage: booking not found")

	// ErrStatusConflict статус брони изменился между чтением и записью
	ErrStatusConflict = errors.New("storage: booking status conflict")

	// ErrLockTimeout не удалось дождаться блокировки строки
	ErrLockTimeout = errors.New("storage: lock timeout")
)
