package hotelservice

// HotelSettings настройки отеля из HotelService
type HotelSettings struct {
	ID                 int64   `json:"id"`
	Timezone           string  `json:"timezone"`           // IANA, например "Europe/Moscow"
	CancellationPolicy *string `json:"cancellationPolicy"` // переопределяет тариф комнат, если задан
}

// ErrorResponse модель ошибки от HotelService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
