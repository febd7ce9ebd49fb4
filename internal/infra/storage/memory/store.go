package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/infra/storage"
)

// Store хранилище комнат и бронирований в памяти процесса
// Используется при одноинстансном развёртывании и в тестах; блокировку комнаты даёт roomlock.Table
type Store struct {
	mu       sync.RWMutex
	rooms    map[int64]*domain.Room
	bookings map[int64]*domain.Booking
	nextID   int64
	now      func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		rooms:    make(map[int64]*domain.Room),
		bookings: make(map[int64]*domain.Booking),
		now:      time.Now,
	}
}

// AddRoom добавляет или заменяет комнату
func (s *Store) AddRoom(room domain.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = &room
}

// Rooms возвращает репозиторий комнат
func (s *Store) Rooms() *RoomRepository {
	return &RoomRepository{store: s}
}

// Bookings возвращает репозиторий бронирований
func (s *Store) Bookings() *BookingRepository {
	return &BookingRepository{store: s}
}

// TxManager транзакции хранилища в памяти: каждая операция атомарна сама по себе
// Отката нет. Тело критической секции должно делать единственное изменение последним шагом,
// иначе ошибка после него оставит изменение без события.
type TxManager struct{}

// Do выполняет fn без транзакции
func (TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// RoomRepository репозиторий комнат в памяти
type RoomRepository struct {
	store *Store
}

// GetByID получает комнату по ID
func (r *RoomRepository) GetByID(_ context.Context, id int64) (*domain.Room, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	room, ok := r.store.rooms[id]
	if !ok {
		return nil, storage.ErrRoomNotFound
	}
	copied := *room
	return &copied, nil
}

// GetForUpdate то же, что GetByID: сериализацию по комнате обеспечивает вызывающий
func (r *RoomRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Room, error) {
	return r.GetByID(ctx, id)
}

// NextEventSeq увеличивает счётчик событий комнаты
func (r *RoomRepository) NextEventSeq(_ context.Context, id int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	room, ok := r.store.rooms[id]
	if !ok {
		return 0, storage.ErrRoomNotFound
	}
	room.EventSeq++
	return room.EventSeq, nil
}

// Upsert добавляет комнату или обновляет её, сохраняя счётчик событий
func (r *RoomRepository) Upsert(_ context.Context, room domain.Room) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if existing, ok := r.store.rooms[room.ID]; ok {
		room.EventSeq = existing.EventSeq
	}
	r.store.rooms[room.ID] = &room
	return nil
}

// BookingRepository репозиторий бронирований в памяти
type BookingRepository struct {
	store *Store
}

// Create сохраняет бронирование и присваивает ему ID
func (r *BookingRepository) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.rooms[booking.RoomID]; !ok {
		return nil, storage.ErrRoomNotFound
	}

	r.store.nextID++
	now := r.store.now().UTC()

	stored := *booking
	stored.ID = r.store.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.store.bookings[stored.ID] = &stored

	booking.ID = stored.ID
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return booking, nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	b, ok := r.store.bookings[id]
	if !ok {
		return nil, storage.ErrBookingNotFound
	}
	return copyBooking(b), nil
}

// SumActiveOverlappingUnits суммирует Units активных бронирований комнаты, пересекающих [checkIn, checkOut)
func (r *BookingRepository) SumActiveOverlappingUnits(_ context.Context, roomID int64, checkIn, checkOut time.Time) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	requested := domain.Interval{CheckIn: checkIn, CheckOut: checkOut}
	sum := 0
	for _, b := range r.store.bookings {
		if b.RoomID != roomID || !b.IsActive() {
			continue
		}
		if b.Interval().Overlaps(requested) {
			sum += b.Units
		}
	}
	return sum, nil
}

// TransitionStatus меняет статус, только если текущий равен from
func (r *BookingRepository) TransitionStatus(_ context.Context, id int64, from, to domain.BookingStatus) (*domain.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.bookings[id]
	if !ok {
		return nil, storage.ErrBookingNotFound
	}
	if b.Status != from {
		return nil, storage.ErrStatusConflict
	}
	b.Status = to
	b.UpdatedAt = r.store.now().UTC()
	return copyBooking(b), nil
}

// Cancel переводит бронирование в cancelled и сохраняет данные отмены
func (r *BookingRepository) Cancel(_ context.Context, id int64, from domain.BookingStatus, c domain.Cancellation) (*domain.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.bookings[id]
	if !ok {
		return nil, storage.ErrBookingNotFound
	}
	if b.Status != from {
		return nil, storage.ErrStatusConflict
	}

	reason := c.Reason
	cancelledAt := c.CancelledAt
	percent := c.RefundPercent
	amount := c.RefundAmount

	b.Status = domain.StatusCancelled
	b.CancellationReason = &reason
	b.CancelledAt = &cancelledAt
	b.RefundPercent = &percent
	b.RefundAmount = &amount
	b.UpdatedAt = r.store.now().UTC()
	return copyBooking(b), nil
}

// ListByRoom возвращает бронирования комнаты (для проверок инварианта в тестах и админки)
func (r *BookingRepository) ListByRoom(_ context.Context, roomID int64) ([]*domain.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*domain.Booking, 0)
	for _, b := range r.store.bookings {
		if b.RoomID == roomID {
			out = append(out, copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListByUser возвращает бронирования пользователя, status == nil означает все статусы
func (r *BookingRepository) ListByUser(_ context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*domain.Booking, 0)
	for _, b := range r.store.bookings {
		if b.UserID != userID || (status != nil && b.Status != *status) {
			continue
		}
		out = append(out, copyBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func copyBooking(b *domain.Booking) *domain.Booking {
	c := *b
	if b.CancellationReason != nil {
		v := *b.CancellationReason
		c.CancellationReason = &v
	}
	if b.CancelledAt != nil {
		v := *b.CancelledAt
		c.CancelledAt = &v
	}
	if b.RefundPercent != nil {
		v := *b.RefundPercent
		c.RefundPercent = &v
	}
	if b.RefundAmount != nil {
		v := *b.RefundAmount
		c.RefundAmount = &v
	}
	return &c
}
