package domain

import "time"

// EventVersion версия формата события; меняется при несовместимых изменениях полей
const EventVersion = 1

// EventType тип события об изменении инвентаря
type EventType string

const (
	EventRoomBooked    EventType = "ROOM_BOOKED"
	EventRoomAvailable EventType = "ROOM_AVAILABLE"
	EventRefresh       EventType = "REFRESH"
)

// Event событие об изменении доступности комнаты
// Поля сериализуются в JSON и уходят подписчикам за пределы процесса
type Event struct {
	Version        int       `json:"version"`
	Type           EventType `json:"type"`
	RoomID         int64     `json:"roomId"`
	HotelID        int64     `json:"hotelId"`
	RemainingUnits int       `json:"remainingUnits"`
	Sequence       int64     `json:"sequence"`
	Message        string    `json:"message"`
	OccurredAt     time.Time `json:"occurredAt"`
}
