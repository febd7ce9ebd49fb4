package room

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/infra/storage"
	"github.com/m04kA/SMC-RoomInventory/pkg/dbmetrics"
	"github.com/m04kA/SMC-RoomInventory/pkg/psqlbuilder"
)

var roomColumns = []string{
	"id",
	"hotel_id",
	"nightly_price",
	"total_units",
	"capacity",
	"active",
	"cancellation_policy",
	"event_seq",
}

// Repository репозиторий комнат в PostgreSQL
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория комнат
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает комнату по ID без блокировки
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate получает комнату и блокирует её строку до конца транзакции (SELECT ... FOR UPDATE)
// Ожидание ограничено lock_timeout транзакции; при его срабатывании возвращается storage.ErrLockTimeout
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*domain.Room, error) {
	return r.get(ctx, id, dbmetrics.IsInTransaction(ctx))
}

// NextEventSeq увеличивает счётчик событий комнаты и возвращает новое значение
func (r *Repository) NextEventSeq(ctx context.Context, id int64) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("rooms").
		Set("event_seq", squirrel.Expr("event_seq + 1")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING event_seq").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: NextEventSeq - build update query: %v", ErrBuildQuery, err)
	}

	var seq int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, storage.ErrRoomNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: NextEventSeq - execute update: %v", ErrExecQuery, err)
	}

	return seq, nil
}

// Upsert создает комнату или обновляет её параметры; event_seq существующей комнаты не меняется
func (r *Repository) Upsert(ctx context.Context, room domain.Room) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("rooms").
		Columns("id", "hotel_id", "nightly_price", "total_units", "capacity", "active", "cancellation_policy").
		Values(room.ID, room.HotelID, room.NightlyPrice, room.TotalUnits, room.Capacity, room.Active, room.CancellationPolicy).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			hotel_id = EXCLUDED.hotel_id,
			nightly_price = EXCLUDED.nightly_price,
			total_units = EXCLUDED.total_units,
			capacity = EXCLUDED.capacity,
			active = EXCLUDED.active,
			cancellation_policy = EXCLUDED.cancellation_policy`).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

func (r *Repository) get(ctx context.Context, id int64, forUpdate bool) (*domain.Room, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(roomColumns...).
		From("rooms").
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var room domain.Room
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&room.ID,
		&room.HotelID,
		&room.NightlyPrice,
		&room.TotalUnits,
		&room.Capacity,
		&room.Active,
		&room.CancellationPolicy,
		&room.EventSeq,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrRoomNotFound
	}
	if storage.IsLockNotAvailable(err) {
		return nil, fmt.Errorf("%w: GetForUpdate - room=%d: %v", storage.ErrLockTimeout, id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan room: %v", ErrScanRow, err)
	}

	return &room, nil
}
