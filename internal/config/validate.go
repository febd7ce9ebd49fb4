package config

import (
	"fmt"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/service/broadcast"
)

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port %d out of range", ErrInvalidConfig, c.Server.HTTPPort)
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("%w: database.host and database.dbname are required for postgres", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown database.driver %q", ErrInvalidConfig, c.Database.Driver)
	}

	if c.Engine.LockTimeoutMs < 0 || c.Engine.Workers < 0 || c.Engine.MaxStayNights < 0 {
		return fmt.Errorf("%w: engine values must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Engine.Location(); err != nil {
		return fmt.Errorf("%w: engine.default_timezone: %v", ErrInvalidConfig, err)
	}

	switch c.RateLimit.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.RateLimit.RedisAddr == "" {
			return fmt.Errorf("%w: rate_limit.redis_addr is required for redis backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown rate_limit.backend %q", ErrInvalidConfig, c.RateLimit.Backend)
	}
	if c.RateLimit.ReserveLimit < 0 || c.RateLimit.CancelLimit < 0 || c.RateLimit.StatusLimit < 0 || c.RateLimit.SubscribeLimit < 0 {
		return fmt.Errorf("%w: rate limits must not be negative", ErrInvalidConfig)
	}
	if c.RateLimit.BucketTTLSeconds < c.RateLimit.WindowSeconds {
		return fmt.Errorf("%w: rate_limit.bucket_ttl_seconds must be >= window_seconds", ErrInvalidConfig)
	}

	if _, ok := broadcast.ParseOverflowPolicy(c.Broadcast.OverflowPolicy); !ok {
		return fmt.Errorf("%w: unknown broadcast.overflow_policy %q", ErrInvalidConfig, c.Broadcast.OverflowPolicy)
	}
	if c.Broadcast.Kafka.Enabled && len(c.Broadcast.Kafka.Brokers) == 0 {
		return fmt.Errorf("%w: broadcast.kafka.brokers is required when kafka is enabled", ErrInvalidConfig)
	}

	if c.HotelService.Enabled && c.HotelService.URL == "" {
		return fmt.Errorf("%w: hotel_service.url is required when enabled", ErrInvalidConfig)
	}

	seen := make(map[int64]struct{}, len(c.Rooms))
	for i, r := range c.Rooms {
		if r.ID <= 0 || r.HotelID <= 0 {
			return fmt.Errorf("%w: rooms[%d]: id and hotel_id must be positive", ErrInvalidConfig, i)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: rooms[%d]: duplicate id %d", ErrInvalidConfig, i, r.ID)
		}
		seen[r.ID] = struct{}{}

		if r.TotalUnits <= 0 || r.NightlyPrice < 0 {
			return fmt.Errorf("%w: rooms[%d]: total_units must be positive and nightly_price not negative", ErrInvalidConfig, i)
		}
		if r.CancellationPolicy != "" {
			if _, ok := domain.ParseCancellationPolicy(r.CancellationPolicy); !ok {
				return fmt.Errorf("%w: rooms[%d]: unknown cancellation_policy %q", ErrInvalidConfig, i, r.CancellationPolicy)
			}
		}
	}

	return nil
}

// DomainRooms конвертирует начальные данные в доменные комнаты
func (c *Config) DomainRooms() []domain.Room {
	rooms := make([]domain.Room, 0, len(c.Rooms))
	for _, r := range c.Rooms {
		policy := domain.DefaultCancellationPolicy
		if p, ok := domain.ParseCancellationPolicy(r.CancellationPolicy); ok {
			policy = p
		}
		active := true
		if r.Active != nil {
			active = *r.Active
		}
		capacity := r.Capacity
		if capacity == 0 {
			capacity = defaultRoomCapacity
		}
		rooms = append(rooms, domain.Room{
			ID:                 r.ID,
			HotelID:            r.HotelID,
			NightlyPrice:       r.NightlyPrice,
			TotalUnits:         r.TotalUnits,
			Capacity:           capacity,
			Active:             active,
			CancellationPolicy: policy,
		})
	}
	return rooms
}
