package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/infra/storage"
	"github.com/m04kA/SMC-RoomInventory/pkg/dbmetrics"
	"github.com/m04kA/SMC-RoomInventory/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"room_id",
	"hotel_id",
	"user_id",
	"check_in",
	"check_out",
	"guest_count",
	"units",
	"status",
	"total_price",
	"cancellation_policy",
	"cancellation_reason",
	"cancelled_at",
	"refund_percent",
	"refund_amount",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями в PostgreSQL
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Вызывается внутри критической секции комнаты, транзакция берётся из контекста
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"room_id",
			"hotel_id",
			"user_id",
			"check_in",
			"check_out",
			"guest_count",
			"units",
			"status",
			"total_price",
			"cancellation_policy",
		).
		Values(
			booking.RoomID,
			booking.HotelID,
			booking.UserID,
			booking.CheckIn,
			booking.CheckOut,
			booking.GuestCount,
			booking.Units,
			booking.Status,
			booking.TotalPrice,
			booking.Policy,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// SumActiveOverlappingUnits суммирует units активных бронирований комнаты, пересекающих [checkIn, checkOut)
// Полуоткрытые интервалы: бронь с check_out = checkIn не пересекается
func (r *Repository) SumActiveOverlappingUnits(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	activeStatuses := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		activeStatuses[i] = string(s)
	}

	query, args, err := psqlbuilder.Select("COALESCE(SUM(units), 0)").
		From("bookings").
		Where(squirrel.Eq{"room_id": roomID}).
		Where(squirrel.Eq{"status": activeStatuses}).
		Where(squirrel.Lt{"check_in": checkOut}).
		Where(squirrel.Gt{"check_out": checkIn}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: SumActiveOverlappingUnits - build select query: %v", ErrBuildQuery, err)
	}

	var sum int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("%w: SumActiveOverlappingUnits - scan sum: %v", ErrScanRow, err)
	}

	return sum, nil
}

// TransitionStatus меняет статус бронирования, если текущий статус равен from (compare-and-set)
func (r *Repository) TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: TransitionStatus - build update query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.conflictOrNotFound(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: TransitionStatus - execute update: %v", ErrExecQuery, err)
	}

	return booking, nil
}

// Cancel переводит бронирование из статуса from в cancelled и сохраняет причину и возврат
func (r *Repository) Cancel(ctx context.Context, id int64, from domain.BookingStatus, c domain.Cancellation) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", c.Reason).
		Set("cancelled_at", c.CancelledAt).
		Set("refund_percent", c.RefundPercent).
		Set("refund_amount", c.RefundAmount).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.conflictOrNotFound(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	return booking, nil
}

// ListByRoom возвращает бронирования комнаты, новые в конце
func (r *Repository) ListByRoom(ctx context.Context, roomID int64) ([]*domain.Booking, error) {
	return r.list(ctx, "ListByRoom", squirrel.Eq{"room_id": roomID})
}

// ListByUser возвращает бронирования пользователя, status == nil означает все статусы
func (r *Repository) ListByUser(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	where := squirrel.Eq{"user_id": userID}
	if status != nil {
		where["status"] = *status
	}
	return r.list(ctx, "ListByUser", where)
}

func (r *Repository) list(ctx context.Context, op string, where squirrel.Eq) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(where).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return bookings, nil
}

// conflictOrNotFound различает отсутствие брони и устаревший статус после неудачного CAS
func (r *Repository) conflictOrNotFound(ctx context.Context, id int64) error {
	_, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return storage.ErrStatusConflict
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.RoomID,
		&booking.HotelID,
		&booking.UserID,
		&booking.CheckIn,
		&booking.CheckOut,
		&booking.GuestCount,
		&booking.Units,
		&booking.Status,
		&booking.TotalPrice,
		&booking.Policy,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&booking.RefundPercent,
		&booking.RefundAmount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CheckIn = domain.NormalizeDate(booking.CheckIn)
	booking.CheckOut = domain.NormalizeDate(booking.CheckOut)
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}
