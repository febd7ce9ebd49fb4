package roomlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/infra/storage"
)

// RoomRepository интерфейс репозитория комнат
type RoomRepository interface {
	GetForUpdate(ctx context.Context, roomID int64) (*domain.Room, error)
	NextEventSeq(ctx context.Context, roomID int64) (int64, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Publisher получатель событий после коммита
type Publisher interface {
	Publish(ev domain.Event)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальное время
type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Change изменение инвентаря, о котором нужно сообщить подписчикам
type Change struct {
	Type           domain.EventType
	RemainingUnits int
	Message        string
}

// Func тело критической секции; возвращает nil Change, если инвентарь не изменился
type Func func(ctx context.Context, room *domain.Room) (*Change, error)

// Section критическая секция комнаты
//
// Порядок: блокировка комнаты в процессе -> транзакция -> SELECT ... FOR UPDATE строки комнаты ->
// fn -> номер события в той же транзакции -> коммит -> публикация -> снятие блокировки.
// Публикация под блокировкой даёт подписчикам события комнаты в порядке коммитов.
type Section struct {
	locks        *Table
	rooms        RoomRepository
	txManager    TransactionManager
	publisher    Publisher
	timeProvider TimeProvider
	logger       Logger
}

// NewSection создает критическую секцию
func NewSection(
	locks *Table,
	rooms RoomRepository,
	txManager TransactionManager,
	publisher Publisher,
	timeProvider TimeProvider,
	logger Logger,
) *Section {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	return &Section{
		locks:        locks,
		rooms:        rooms,
		txManager:    txManager,
		publisher:    publisher,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Run выполняет fn под блокировкой комнаты roomID
// Ошибки ожидания блокировки (в процессе или в БД) возвращаются как ErrLockTimeout
func (s *Section) Run(ctx context.Context, roomID int64, fn Func) error {
	release, err := s.locks.Acquire(ctx, roomID)
	if err != nil {
		s.logger.Warn("RoomLock: room=%d: %v", roomID, err)
		return err
	}
	defer release()

	var event *domain.Event

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		room, err := s.rooms.GetForUpdate(txCtx, roomID)
		if err != nil {
			return err
		}

		change, err := fn(txCtx, room)
		if err != nil || change == nil {
			return err
		}

		seq, err := s.rooms.NextEventSeq(txCtx, roomID)
		if err != nil {
			return fmt.Errorf("roomlock: next event sequence room=%d: %w", roomID, err)
		}

		event = &domain.Event{
			Version:        domain.EventVersion,
			Type:           change.Type,
			RoomID:         room.ID,
			HotelID:        room.HotelID,
			RemainingUnits: change.RemainingUnits,
			Sequence:       seq,
			Message:        change.Message,
			OccurredAt:     s.timeProvider.Now().UTC(),
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, storage.ErrLockTimeout) && !errors.Is(err, ErrLockTimeout) {
			s.logger.Warn("RoomLock: room=%d: row lock timeout: %v", roomID, err)
			return fmt.Errorf("%w: %v", ErrLockTimeout, err)
		}
		return err
	}

	if event != nil && s.publisher != nil {
		s.publisher.Publish(*event)
	}
	return nil
}
