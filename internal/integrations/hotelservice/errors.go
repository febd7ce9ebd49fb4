package hotelservice

import "errors"

var (
	// ErrHotelNotFound возвращается, когда отель не найден
	ErrHotelNotFound = errors.New("hotelservice client: hotel not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("hotelservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("hotelservice client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation
	// HotelService недоступен, следует использовать настройки комнаты и зону по умолчанию
	ErrServiceDegraded = errors.New("hotelservice unavailable: graceful degradation applied")
)
