package reserve_room

import "time"

// Options настройки бронирования из конфигурации
type Options struct {
	AutoConfirm   bool // сразу confirmed, без отдельного шага подтверждения
	MaxStayNights int
}

// Request модель запроса на бронирование
type Request struct {
	UserID     int64
	RoomID     int64
	CheckIn    time.Time // дата заезда (включительно)
	CheckOut   time.Time // дата выезда (не включительно)
	GuestCount int
	Units      int // 0 - один номер
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID                 int64
	RoomID             int64
	HotelID            int64
	UserID             int64
	CheckIn            time.Time
	CheckOut           time.Time
	GuestCount         int
	Units              int
	Status             string
	TotalPrice         float64
	CancellationPolicy string
	RemainingUnits     int // свободно номеров на эти даты после брони
	CreatedAt          time.Time
}
