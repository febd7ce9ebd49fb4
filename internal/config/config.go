package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath переменная окружения с путём к файлу конфигурации
const EnvConfigPath = "CONFIG_PATH"

// DefaultPath путь к конфигурации по умолчанию
const DefaultPath = "config.toml"

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Rate limit backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ErrInvalidConfig возвращается, если конфигурация не прошла проверку
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Server       Server       `toml:"server"`
	Database     Database     `toml:"database"`
	Logs         Logs         `toml:"logs"`
	Metrics      Metrics      `toml:"metrics"`
	Engine       Engine       `toml:"engine"`
	RateLimit    RateLimit    `toml:"rate_limit"`
	Broadcast    Broadcast    `toml:"broadcast"`
	HotelService HotelService `toml:"hotel_service"`
	Rooms        []Room       `toml:"rooms"`
}

// Server таймауты в секундах
type Server struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type Database struct {
	Driver          string `toml:"driver"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type Logs struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type Metrics struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// Engine параметры бронирования и критической секции
type Engine struct {
	LockTimeoutMs          int    `toml:"lock_timeout_ms"`
	AutoConfirm            bool   `toml:"auto_confirm"`
	MaxStayNights          int    `toml:"max_stay_nights"`
	Workers                int    `toml:"workers"`
	WorkerAcquireTimeoutMs int    `toml:"worker_acquire_timeout_ms"`
	DefaultTimezone        string `toml:"default_timezone"`
}

func (e Engine) LockTimeout() time.Duration {
	return time.Duration(e.LockTimeoutMs) * time.Millisecond
}

func (e Engine) WorkerAcquireTimeout() time.Duration {
	return time.Duration(e.WorkerAcquireTimeoutMs) * time.Millisecond
}

// Location зона по умолчанию для отелей без собственных настроек
func (e Engine) Location() (*time.Location, error) {
	return time.LoadLocation(e.DefaultTimezone)
}

// RateLimit лимиты на окно WindowSeconds; 0 отключает лимит действия
type RateLimit struct {
	Backend          string `toml:"backend"`
	ReserveLimit     int    `toml:"reserve_limit"`
	CancelLimit      int    `toml:"cancel_limit"`
	StatusLimit      int    `toml:"status_limit"`
	SubscribeLimit   int    `toml:"subscribe_limit"`
	WindowSeconds    int    `toml:"window_seconds"`
	BucketTTLSeconds int    `toml:"bucket_ttl_seconds"`
	MaxEntries       int    `toml:"max_entries"`
	RedisAddr        string `toml:"redis_addr"`
	RedisPassword    string `toml:"redis_password"`
	RedisDB          int    `toml:"redis_db"`
	RedisTimeoutMs   int    `toml:"redis_timeout_ms"`
}

func (r RateLimit) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

func (r RateLimit) BucketTTL() time.Duration {
	return time.Duration(r.BucketTTLSeconds) * time.Second
}

type Broadcast struct {
	QueueSize        int    `toml:"queue_size"`
	OverflowPolicy   string `toml:"overflow_policy"`
	HeartbeatSeconds int    `toml:"heartbeat_seconds"`
	Kafka            Kafka  `toml:"kafka"`
}

type Kafka struct {
	Enabled        bool     `toml:"enabled"`
	Brokers        []string `toml:"brokers"`
	Topic          string   `toml:"topic"`
	BatchTimeoutMs int      `toml:"batch_timeout_ms"`
	BatchSize      int      `toml:"batch_size"`
	WriteTimeoutMs int      `toml:"write_timeout_ms"`
}

// HotelService Timeout в секундах
type HotelService struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// Room начальные данные комнаты для хранилища в памяти
type Room struct {
	ID                 int64   `toml:"id"`
	HotelID            int64   `toml:"hotel_id"`
	NightlyPrice       float64 `toml:"nightly_price"`
	TotalUnits         int     `toml:"total_units"`
	Capacity           int     `toml:"capacity"`
	Active             *bool   `toml:"active"`
	CancellationPolicy string  `toml:"cancellation_policy"`
}

// Load читает конфигурацию из файла, путь из CONFIG_PATH имеет приоритет
func Load(path string) (*Config, error) {
	if env := os.Getenv(EnvConfigPath); env != "" {
		path = env
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
