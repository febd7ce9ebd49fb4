package booking

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/infra/storage"
)

var (
	checkIn  = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	checkOut = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	created  = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
)

func newRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewRepository(db), mock
}

func bookingRow(id int64, status domain.BookingStatus) *sqlmock.Rows {
	return sqlmock.NewRows(bookingColumns).AddRow(
		id, int64(1), int64(10), int64(7), checkIn, checkOut, 2, 1,
		string(status), 160.0, string(domain.PolicyModerate),
		nil, nil, nil, nil, created, created,
	)
}

func TestSumActiveOverlappingUnits_Query(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COALESCE(SUM(units), 0) FROM bookings WHERE room_id = $1 AND status IN ($2,$3) AND check_in < $4 AND check_out > $5",
	)).
		WithArgs(int64(1), "pending", "confirmed", checkOut, checkIn).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(2))

	sum, err := repo.SumActiveOverlappingUnits(context.Background(), 1, checkIn, checkOut)
	require.NoError(t, err)
	assert.Equal(t, 2, sum)
}

func TestCreate_ReturnsGeneratedFields(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectQuery(`INSERT INTO bookings .* RETURNING id, created_at, updated_at`).
		WithArgs(int64(1), int64(10), int64(7), checkIn, checkOut, 2, 1, "pending", 160.0, "MODERATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), created, created))

	b, err := repo.Create(context.Background(), &domain.Booking{
		RoomID: 1, HotelID: 10, UserID: 7, CheckIn: checkIn, CheckOut: checkOut,
		GuestCount: 2, Units: 1, Status: domain.StatusPending, TotalPrice: 160, Policy: domain.PolicyModerate,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), b.ID)
	assert.Equal(t, created, b.CreatedAt)
}

func TestTransitionStatus_CompareAndSet(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3 RETURNING id, room_id,",
	)).
		WithArgs("confirmed", int64(5), "pending").
		WillReturnRows(bookingRow(5, domain.StatusConfirmed))

	b, err := repo.TransitionStatus(context.Background(), 5, domain.StatusPending, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, b.Status)
	assert.Equal(t, checkIn, b.CheckIn)
	assert.Nil(t, b.CancelledAt)
}

func TestTransitionStatus_NoRowsMapsToConflictOrNotFound(t *testing.T) {
	tests := []struct {
		name    string
		current *sqlmock.Rows
		wantErr error
	}{
		{
			name:    "status changed concurrently",
			current: bookingRow(5, domain.StatusCancelled),
			wantErr: storage.ErrStatusConflict,
		},
		{
			name:    "booking does not exist",
			current: sqlmock.NewRows(bookingColumns),
			wantErr: storage.ErrBookingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepository(t)

			mock.ExpectQuery(`UPDATE bookings SET status`).
				WithArgs("confirmed", int64(5), "pending").
				WillReturnRows(sqlmock.NewRows(bookingColumns))
			mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
				WithArgs(int64(5)).
				WillReturnRows(tt.current)

			_, err := repo.TransitionStatus(context.Background(), 5, domain.StatusPending, domain.StatusConfirmed)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCancel_StoresRefundWithCompareAndSet(t *testing.T) {
	repo, mock := newRepository(t)
	at := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE bookings SET status = $1, cancellation_reason = $2, cancelled_at = $3, refund_percent = $4, refund_amount = $5, updated_at = NOW() WHERE id = $6 AND status = $7",
	)).
		WithArgs("cancelled", "plans changed", at, 50, 80.0, int64(5), "confirmed").
		WillReturnRows(bookingRow(5, domain.StatusCancelled))

	b, err := repo.Cancel(context.Background(), 5, domain.StatusConfirmed, domain.Cancellation{
		Reason: "plans changed", CancelledAt: at, RefundPercent: 50, RefundAmount: 80,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, b.Status)
}

func TestCancel_StaleStatusIsConflict(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectQuery(`UPDATE bookings SET status`).WillReturnRows(sqlmock.NewRows(bookingColumns))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(bookingRow(5, domain.StatusCheckedIn))

	_, err := repo.Cancel(context.Background(), 5, domain.StatusConfirmed, domain.Cancellation{Reason: "x", CancelledAt: created})
	assert.ErrorIs(t, err, storage.ErrStatusConflict)
}

func TestListByUser_StatusFilter(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE status = $1 AND user_id = $2 ORDER BY id ASC")).
		WithArgs("confirmed", int64(7)).
		WillReturnRows(bookingRow(1, domain.StatusConfirmed).AddRow(
			int64(2), int64(1), int64(10), int64(7), checkIn, checkOut, 1, 1,
			"confirmed", 80.0, "STRICT", nil, nil, nil, nil, created, created,
		))

	status := domain.StatusConfirmed
	list, err := repo.ListByUser(context.Background(), 7, &status)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.PolicyStrict, list[1].Policy)
}

func TestListByRoom_Empty(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE room_id = $1 ORDER BY id ASC")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(bookingColumns))

	list, err := repo.ListByRoom(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGetByID_ScansNullableCancellation(t *testing.T) {
	repo, mock := newRepository(t)
	at := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(bookingColumns).AddRow(
			int64(9), int64(1), int64(10), int64(7), checkIn, checkOut, 2, 1,
			"cancelled", 160.0, "FLEXIBLE", "plans changed", at, 100, 160.0, created, created,
		))

	b, err := repo.GetByID(context.Background(), 9)
	require.NoError(t, err)
	require.NotNil(t, b.CancellationReason)
	assert.Equal(t, "plans changed", *b.CancellationReason)
	require.NotNil(t, b.RefundPercent)
	assert.Equal(t, 100, *b.RefundPercent)
	assert.Equal(t, at, *b.CancelledAt)
}
