package hotels

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/integrations/hotelservice"
)

// HotelClient интерфейс клиента HotelService
type HotelClient interface {
	GetHotelSettingsWithGracefulDegradation(ctx context.Context, hotelID int64) (*hotelservice.HotelSettings, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Settings настройки, в которых принимается решение по брони комнаты
type Settings struct {
	Location *time.Location // часовой пояс отеля: от него считаются "сегодня" и 15:00 заезда
	Policy   domain.CancellationPolicy
}

// Resolver определяет часовой пояс и тариф отмены для комнаты
// Источник - HotelService; при его недоступности используются тариф комнаты и зона по умолчанию
type Resolver struct {
	client          HotelClient
	defaultLocation *time.Location
	logger          Logger

	locations sync.Map // имя зоны -> *time.Location
}

// NewResolver создает Resolver; client может быть nil, тогда HotelService не опрашивается
func NewResolver(client HotelClient, defaultLocation *time.Location, logger Logger) *Resolver {
	if defaultLocation == nil {
		defaultLocation = time.UTC
	}
	return &Resolver{
		client:          client,
		defaultLocation: defaultLocation,
		logger:          logger,
	}
}

// Resolve возвращает настройки комнаты; никогда не возвращает ошибку
func (r *Resolver) Resolve(ctx context.Context, room *domain.Room) Settings {
	settings := Settings{
		Location: r.defaultLocation,
		Policy:   room.CancellationPolicy,
	}
	if !settings.Policy.IsValid() {
		settings.Policy = domain.DefaultCancellationPolicy
	}

	if r.client == nil {
		return settings
	}

	hotel, err := r.client.GetHotelSettingsWithGracefulDegradation(ctx, room.HotelID)
	if err != nil {
		r.logger.Warn("ResolveHotel: hotel_id=%d, using room defaults: %v", room.HotelID, err)
		return settings
	}

	if hotel.Timezone != "" {
		if loc, ok := r.location(hotel.Timezone); ok {
			settings.Location = loc
		} else {
			r.logger.Warn("ResolveHotel: hotel_id=%d has unknown timezone %q", room.HotelID, hotel.Timezone)
		}
	}

	if hotel.CancellationPolicy != nil {
		if policy, ok := domain.ParseCancellationPolicy(*hotel.CancellationPolicy); ok {
			settings.Policy = policy
		} else {
			r.logger.Warn("ResolveHotel: hotel_id=%d has unknown policy %q", room.HotelID, *hotel.CancellationPolicy)
		}
	}

	return settings
}

func (r *Resolver) location(name string) (*time.Location, bool) {
	if cached, ok := r.locations.Load(name); ok {
		return cached.(*time.Location), true
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, false
	}
	r.locations.Store(name, loc)
	return loc, true
}
