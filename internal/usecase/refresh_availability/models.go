package refresh_availability

import "time"

// Request модель запроса снимка доступности
// Пустой интервал означает одну ночь начиная с сегодняшнего дня по времени отеля
type Request struct {
	RoomID   int64
	CheckIn  time.Time
	CheckOut time.Time
}

// Response снимок доступности комнаты
type Response struct {
	RoomID         int64
	HotelID        int64
	CheckIn        time.Time
	CheckOut       time.Time
	TotalUnits     int
	RemainingUnits int
	Sequence       int64 // номер последнего события комнаты на момент снимка
	Active         bool
}
