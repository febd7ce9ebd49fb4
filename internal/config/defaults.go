package config

import (
	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/service/broadcast"
	"github.com/m04kA/SMC-RoomInventory/internal/service/roomlock"
)

const (
	defaultHTTPPort        = 8080
	defaultReadTimeout     = 10
	defaultWriteTimeout    = 10
	defaultIdleTimeout     = 60
	defaultShutdownTimeout = 10

	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 300

	defaultWorkers                = 32
	defaultWorkerAcquireTimeoutMs = 500
	defaultTimezone               = "UTC"

	defaultReserveLimit   = 5
	defaultCancelLimit    = 5
	defaultStatusLimit    = 30
	defaultSubscribeLimit = 60
	defaultWindowSeconds  = 3600

	defaultRedisTimeoutMs = 200

	defaultHeartbeatSeconds = 15
	defaultKafkaTopic       = "room-availability"
	defaultKafkaBatchMs     = 10
	defaultKafkaBatchSize   = 100
	defaultKafkaWriteMs     = 5000

	defaultHotelServiceTimeout = 2

	defaultRoomCapacity = 2
)

// applyDefaults заполняет незаданные поля
func (c *Config) applyDefaults() {
	setInt(&c.Server.HTTPPort, defaultHTTPPort)
	setInt(&c.Server.ReadTimeout, defaultReadTimeout)
	setInt(&c.Server.WriteTimeout, defaultWriteTimeout)
	setInt(&c.Server.IdleTimeout, defaultIdleTimeout)
	setInt(&c.Server.ShutdownTimeout, defaultShutdownTimeout)

	setString(&c.Database.Driver, DriverMemory)
	setString(&c.Database.SSLMode, "disable")
	setInt(&c.Database.MaxOpenConns, defaultMaxOpenConns)
	setInt(&c.Database.MaxIdleConns, defaultMaxIdleConns)
	setInt(&c.Database.ConnMaxLifetime, defaultConnMaxLifetime)

	setString(&c.Logs.Level, "info")

	setString(&c.Metrics.ServiceName, "smc-roominventory")
	setString(&c.Metrics.Path, "/metrics")

	setInt(&c.Engine.LockTimeoutMs, int(roomlock.DefaultTimeout.Milliseconds()))
	setInt(&c.Engine.MaxStayNights, domain.DefaultMaxStayNights)
	setInt(&c.Engine.Workers, defaultWorkers)
	setInt(&c.Engine.WorkerAcquireTimeoutMs, defaultWorkerAcquireTimeoutMs)
	setString(&c.Engine.DefaultTimezone, defaultTimezone)

	setString(&c.RateLimit.Backend, BackendMemory)
	setInt(&c.RateLimit.ReserveLimit, defaultReserveLimit)
	setInt(&c.RateLimit.CancelLimit, defaultCancelLimit)
	setInt(&c.RateLimit.StatusLimit, defaultStatusLimit)
	setInt(&c.RateLimit.SubscribeLimit, defaultSubscribeLimit)
	setInt(&c.RateLimit.WindowSeconds, defaultWindowSeconds)
	setInt(&c.RateLimit.BucketTTLSeconds, c.RateLimit.WindowSeconds)
	setInt(&c.RateLimit.RedisTimeoutMs, defaultRedisTimeoutMs)

	setInt(&c.Broadcast.QueueSize, broadcast.DefaultQueueSize)
	setString(&c.Broadcast.OverflowPolicy, string(broadcast.OverflowDisconnect))
	setInt(&c.Broadcast.HeartbeatSeconds, defaultHeartbeatSeconds)
	setString(&c.Broadcast.Kafka.Topic, defaultKafkaTopic)
	setInt(&c.Broadcast.Kafka.BatchTimeoutMs, defaultKafkaBatchMs)
	setInt(&c.Broadcast.Kafka.BatchSize, defaultKafkaBatchSize)
	setInt(&c.Broadcast.Kafka.WriteTimeoutMs, defaultKafkaWriteMs)

	setInt(&c.HotelService.Timeout, defaultHotelServiceTimeout)
}

func setInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func setString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}
