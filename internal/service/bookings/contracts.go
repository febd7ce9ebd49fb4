package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/service/hotels"
	"github.com/m04kA/SMC-RoomInventory/internal/service/roomlock"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByRoom(ctx context.Context, roomID int64) ([]*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	SumActiveOverlappingUnits(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (int, error)
	TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (*domain.Booking, error)
}

// RoomRepository интерфейс репозитория комнат
type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
}

// CriticalSection критическая секция комнаты
type CriticalSection interface {
	Run(ctx context.Context, roomID int64, fn roomlock.Func) error
}

// SettingsResolver определяет часовой пояс и тариф отеля
type SettingsResolver interface {
	Resolve(ctx context.Context, room *domain.Room) hotels.Settings
}

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
