package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SMC-RoomInventory/internal/api/handlers/cancel_booking"
	cancellationQuoteHandler "github.com/m04kA/SMC-RoomInventory/internal/api/handlers/cancellation_quote"
	getAvailabilityHandler "github.com/m04kA/SMC-RoomInventory/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SMC-RoomInventory/internal/api/handlers/get_booking"
	getRoomBookingsHandler "github.com/m04kA/SMC-RoomInventory/internal/api/handlers/get_room_bookings"
	getUserBookingsHandler "github.com/m04kA/SMC-RoomInventory/internal/api/handlers/get_user_bookings"
	reserveRoomHandler "github.com/m04kA/SMC-RoomInventory/internal/api/handlers/reserve_room"
	subscribeEventsHandler "github.com/m04kA/SMC-RoomInventory/internal/api/handlers/subscribe_events"
	updateBookingStatusHandler "github.com/m04kA/SMC-RoomInventory/internal/api/handlers/update_booking_status"
	"github.com/m04kA/SMC-RoomInventory/internal/api/middleware"
	"github.com/m04kA/SMC-RoomInventory/internal/config"
	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/infra/messaging/kafkarelay"
	"github.com/m04kA/SMC-RoomInventory/internal/infra/ratelimit/redislimit"
	"github.com/m04kA/SMC-RoomInventory/internal/infra/storage/booking"
	"github.com/m04kA/SMC-RoomInventory/internal/infra/storage/memory"
	"github.com/m04kA/SMC-RoomInventory/internal/infra/storage/room"
	"github.com/m04kA/SMC-RoomInventory/internal/integrations/hotelservice"
	"github.com/m04kA/SMC-RoomInventory/internal/service/bookings"
	"github.com/m04kA/SMC-RoomInventory/internal/service/broadcast"
	"github.com/m04kA/SMC-RoomInventory/internal/service/hotels"
	"github.com/m04kA/SMC-RoomInventory/internal/service/ratelimit"
	"github.com/m04kA/SMC-RoomInventory/internal/service/roomlock"
	cancelBookingUC "github.com/m04kA/SMC-RoomInventory/internal/usecase/cancel_booking"
	refreshAvailabilityUC "github.com/m04kA/SMC-RoomInventory/internal/usecase/refresh_availability"
	reserveRoomUC "github.com/m04kA/SMC-RoomInventory/internal/usecase/reserve_room"
	"github.com/m04kA/SMC-RoomInventory/pkg/dbmetrics"
	"github.com/m04kA/SMC-RoomInventory/pkg/logger"
	"github.com/m04kA/SMC-RoomInventory/pkg/metrics"
	"github.com/m04kA/SMC-RoomInventory/pkg/txmanager"
	"github.com/m04kA/SMC-RoomInventory/pkg/workerpool"
)

// Хранилище выбирается конфигурацией: память процесса или PostgreSQL
type roomStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Room, error)
	NextEventSeq(ctx context.Context, id int64) (int64, error)
	Upsert(ctx context.Context, room domain.Room) error
}

type bookingStore interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByRoom(ctx context.Context, roomID int64) ([]*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	SumActiveOverlappingUnits(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (int, error)
	TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64, from domain.BookingStatus, c domain.Cancellation) (*domain.Booking, error)
}

type txManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-RoomInventory...")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName, prometheus.DefaultRegisterer)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	defaultLocation, err := cfg.Engine.Location()
	if err != nil {
		log.Fatal("Invalid default timezone: %v", err)
	}

	// Хранилище
	var (
		roomRepository    roomStore
		bookingRepository bookingStore
		txMgr             txManager
	)

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		var wrappedDB *dbmetrics.DB
		if cfg.Metrics.Enabled {
			wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, metricsCollector, cfg.Database.DBName, stopMetricsCh)
			log.Info("Database metrics collection started")
		} else {
			wrappedDB = dbmetrics.Wrap(db, nil)
		}

		roomRepository = room.NewRepository(wrappedDB)
		bookingRepository = booking.NewRepository(wrappedDB)
		// lock_timeout строк не дольше ожидания блокировки в процессе
		txMgr = txmanager.NewTransactionManager(wrappedDB, cfg.Engine.LockTimeout())

	default:
		store := memory.NewStore()
		roomRepository = store.Rooms()
		bookingRepository = store.Bookings()
		txMgr = memory.TxManager{}
		log.Info("Using in-memory storage")
	}

	// Начальные данные комнат
	for _, r := range cfg.DomainRooms() {
		if err := roomRepository.Upsert(context.Background(), r); err != nil {
			log.Fatal("Failed to seed room id=%d: %v", r.ID, err)
		}
	}
	if len(cfg.Rooms) > 0 {
		log.Info("Seeded %d rooms", len(cfg.Rooms))
	}

	// Рассылка событий
	overflowPolicy, _ := broadcast.ParseOverflowPolicy(cfg.Broadcast.OverflowPolicy)
	broadcaster := broadcast.New(cfg.Broadcast.QueueSize, overflowPolicy, metricsCollector, log)

	relayCtx, stopRelay := context.WithCancel(context.Background())
	var (
		relay   *kafkarelay.Relay
		relayWG sync.WaitGroup
	)
	if cfg.Broadcast.Kafka.Enabled {
		writer := kafkarelay.NewWriter(kafkarelay.Config{
			Brokers:      cfg.Broadcast.Kafka.Brokers,
			Topic:        cfg.Broadcast.Kafka.Topic,
			BatchTimeout: time.Duration(cfg.Broadcast.Kafka.BatchTimeoutMs) * time.Millisecond,
			BatchSize:    cfg.Broadcast.Kafka.BatchSize,
		})
		relay = kafkarelay.NewRelay(broadcaster, writer,
			time.Duration(cfg.Broadcast.Kafka.WriteTimeoutMs)*time.Millisecond, metricsCollector, log)

		relayWG.Add(1)
		go func() {
			defer relayWG.Done()
			if err := relay.Run(relayCtx); err != nil {
				log.Error("Kafka relay stopped: %v", err)
			}
		}()
		log.Info("Kafka relay enabled (brokers=%v, topic=%s)", cfg.Broadcast.Kafka.Brokers, cfg.Broadcast.Kafka.Topic)
	}

	// Критическая секция комнаты
	lockTable := roomlock.NewTable(cfg.Engine.LockTimeout(), metricsCollector)
	section := roomlock.NewSection(lockTable, roomRepository, txMgr, broadcaster, nil, log)

	// Настройки отелей
	var resolver *hotels.Resolver
	if cfg.HotelService.Enabled {
		hotelClient := hotelservice.NewClient(
			cfg.HotelService.URL,
			time.Duration(cfg.HotelService.Timeout)*time.Second,
			log,
		)
		resolver = hotels.NewResolver(hotelClient, defaultLocation, log)
		log.Info("HotelService client initialized (url=%s timeout=%ds)", cfg.HotelService.URL, cfg.HotelService.Timeout)
	} else {
		resolver = hotels.NewResolver(nil, defaultLocation, log)
	}

	// Лимитер запросов
	var checker ratelimit.Checker
	switch cfg.RateLimit.Backend {
	case config.BackendRedis:
		redisClient := redislimit.NewClient(cfg.RateLimit.RedisAddr, cfg.RateLimit.RedisPassword, cfg.RateLimit.RedisDB)
		defer redisClient.Close()
		checker = redislimit.NewLimiter(redisClient, time.Duration(cfg.RateLimit.RedisTimeoutMs)*time.Millisecond, log)
		log.Info("Rate limiter backed by redis (addr=%s)", cfg.RateLimit.RedisAddr)
	default:
		checker = ratelimit.NewLimiter(cfg.RateLimit.MaxEntries, cfg.RateLimit.BucketTTL(), nil)
	}

	window := cfg.RateLimit.Window()
	guard := ratelimit.NewGuard(checker, map[string]ratelimit.Rule{
		ratelimit.ActionReserve:   {Limit: cfg.RateLimit.ReserveLimit, Window: window},
		ratelimit.ActionCancel:    {Limit: cfg.RateLimit.CancelLimit, Window: window},
		ratelimit.ActionStatus:    {Limit: cfg.RateLimit.StatusLimit, Window: window},
		ratelimit.ActionSubscribe: {Limit: cfg.RateLimit.SubscribeLimit, Window: window},
	}, metricsCollector, log)

	pool := workerpool.New(cfg.Engine.Workers, cfg.Engine.WorkerAcquireTimeout())

	// Инициализируем сервисы и use cases
	bookingSvc := bookings.NewService(bookingRepository, roomRepository, section, resolver, nil, log)

	reserveRoomUseCase := reserveRoomUC.NewUseCase(
		roomRepository,
		bookingRepository,
		section,
		resolver,
		metricsCollector,
		nil,
		reserveRoomUC.Options{
			AutoConfirm:   cfg.Engine.AutoConfirm,
			MaxStayNights: cfg.Engine.MaxStayNights,
		},
		log,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingRepository,
		roomRepository,
		section,
		resolver,
		metricsCollector,
		nil,
		log,
	)
	refreshAvailabilityUseCase := refreshAvailabilityUC.NewUseCase(
		roomRepository,
		bookingRepository,
		section,
		resolver,
		nil,
		log,
	)

	// Инициализируем handlers
	reserveRoom := reserveRoomHandler.NewHandler(reserveRoomUseCase, guard, pool, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, guard, pool, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, guard, pool, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancellationQuote := cancellationQuoteHandler.NewHandler(bookingSvc, log)
	getRoomBookings := getRoomBookingsHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getAvailability := getAvailabilityHandler.NewHandler(refreshAvailabilityUseCase, log)
	subscribeEvents := subscribeEventsHandler.NewHandler(
		broadcaster,
		refreshAvailabilityUseCase,
		guard,
		time.Duration(cfg.Broadcast.HeartbeatSeconds)*time.Second,
		log,
	)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Identity)

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Снимок доступности комнаты
	api.HandleFunc("/rooms/{roomId}/availability", getAvailability.Handle).Methods(http.MethodGet)

	// Поток событий доступности
	api.HandleFunc("/rooms/{roomId}/events", subscribeEvents.HandleRoom).Methods(http.MethodGet)
	api.HandleFunc("/hotels/{hotelId}/events", subscribeEvents.HandleHotel).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", reserveRoom.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/cancellation-quote", cancellationQuote.Handle).Methods(http.MethodGet)

	// История бронирований пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Управление (для персонала отеля) ---
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/rooms/{roomId}/bookings", getRoomBookings.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Закрываем подписки: SSE-обработчики завершаются, иначе Shutdown ждёт их до таймаута
	stopRelay()
	broadcaster.Close()
	relayWG.Wait()
	if relay != nil {
		if err := relay.Close(); err != nil {
			log.Error("Failed to close kafka writer: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
