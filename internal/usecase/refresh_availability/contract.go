package refresh_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/service/hotels"
	"github.com/m04kA/SMC-RoomInventory/internal/service/roomlock"
)

// RoomRepository интерфейс репозитория комнат
type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// SumActiveOverlappingUnits сумма номеров активных броней, пересекающих [checkIn, checkOut)
	SumActiveOverlappingUnits(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (int, error)
}

// CriticalSection критическая секция комнаты
type CriticalSection interface {
	Run(ctx context.Context, roomID int64, fn roomlock.Func) error
}

// SettingsResolver определяет часовой пояс отеля
type SettingsResolver interface {
	Resolve(ctx context.Context, room *domain.Room) hotels.Settings
}

// DeliverFunc получатель снимка; вызывается под блокировкой комнаты и не должен блокироваться
type DeliverFunc func(ev domain.Event)

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
