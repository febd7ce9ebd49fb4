package reserve_room

import "errors"

var (
	// ErrRoomNotAvailable возвращается, когда на даты не осталось свободных номеров
	ErrRoomNotAvailable = errors.New("reserve_room: room is not available for these dates")

	// ErrRoomNotFound возвращается, когда комната не найдена
	ErrRoomNotFound = errors.New("reserve_room: room not found")

	// ErrRoomInactive возвращается, когда комната снята с продажи
	ErrRoomInactive = errors.New("reserve_room: room is not active")

	// ErrInvalidDateRange возвращается при некорректных датах заезда/выезда
	ErrInvalidDateRange = errors.New("reserve_room: invalid date range")

	// ErrTooManyGuests возвращается, когда гости не помещаются в запрошенные номера
	ErrTooManyGuests = errors.New("reserve_room: guest count exceeds room capacity")

	// ErrLockTimeout возвращается, когда не удалось дождаться блокировки комнаты; запрос можно повторить
	ErrLockTimeout = errors.New("reserve_room: room is busy, retry later")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reserve_room: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reserve_room: internal error")
)
