package refresh_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/infra/storage/memory"
	"github.com/m04kA/SMC-RoomInventory/internal/service/broadcast"
	"github.com/m04kA/SMC-RoomInventory/internal/service/hotels"
	"github.com/m04kA/SMC-RoomInventory/internal/service/roomlock"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func day(s string) time.Time {
	t, err := time.Parse(domain.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

var now = time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC)

type fixture struct {
	store       *memory.Store
	table       *roomlock.Table
	section     *roomlock.Section
	broadcaster *broadcast.Broadcaster
	uc          *UseCase
}

func newFixture(t *testing.T, loc *time.Location) *fixture {
	t.Helper()

	store := memory.NewStore()
	store.AddRoom(domain.Room{ID: 1, HotelID: 10, NightlyPrice: 80, TotalUnits: 3, Capacity: 2, Active: true})
	clock := fixedClock{now: now}
	b := broadcast.New(16, broadcast.OverflowDisconnect, nil, nopLogger{})
	table := roomlock.NewTable(200*time.Millisecond, nil)
	section := roomlock.NewSection(table, store.Rooms(), memory.TxManager{}, b, clock, nopLogger{})

	return &fixture{
		store:       store,
		table:       table,
		section:     section,
		broadcaster: b,
		uc:          NewUseCase(store.Rooms(), store.Bookings(), section, hotels.NewResolver(nil, loc, nopLogger{}), clock, nopLogger{}),
	}
}

func (f *fixture) seed(t *testing.T, in, out string, units int, status domain.BookingStatus) {
	t.Helper()
	_, err := f.store.Bookings().Create(context.Background(), &domain.Booking{
		RoomID: 1, HotelID: 10, UserID: 1, CheckIn: day(in), CheckOut: day(out),
		GuestCount: 1, Units: units, Status: status, TotalPrice: 80,
	})
	require.NoError(t, err)
}

func (f *fixture) bump(t *testing.T) {
	t.Helper()
	err := f.section.Run(context.Background(), 1, func(context.Context, *domain.Room) (*roomlock.Change, error) {
		return &roomlock.Change{Type: domain.EventRoomBooked}, nil
	})
	require.NoError(t, err)
}

func TestRefresh_CountsActiveOverlaps(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, "2024-06-01", "2024-06-03", 1, domain.StatusPending)
	f.seed(t, "2024-06-02", "2024-06-04", 1, domain.StatusConfirmed)
	f.seed(t, "2024-06-01", "2024-06-05", 1, domain.StatusCancelled)
	f.seed(t, "2024-06-03", "2024-06-04", 1, domain.StatusPending) // примыкает к интервалу

	resp, err := f.uc.Execute(context.Background(), &Request{RoomID: 1, CheckIn: day("2024-06-01"), CheckOut: day("2024-06-03")}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.TotalUnits)
	assert.Equal(t, 1, resp.RemainingUnits)
	assert.True(t, resp.Active)
}

func TestRefresh_DeliversSnapshotBeforeLaterEvents(t *testing.T) {
	f := newFixture(t, nil)
	f.bump(t)
	f.bump(t)

	sub, err := f.broadcaster.Subscribe(broadcast.RoomTopic(1))
	require.NoError(t, err)

	resp, err := f.uc.Execute(context.Background(), &Request{RoomID: 1, CheckIn: day("2024-06-01"), CheckOut: day("2024-06-02")},
		func(ev domain.Event) { f.broadcaster.Deliver(sub, ev) })
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Sequence)

	f.bump(t)

	refresh := <-sub.C()
	assert.Equal(t, domain.EventRefresh, refresh.Type)
	assert.Equal(t, int64(2), refresh.Sequence)
	assert.Equal(t, 3, refresh.RemainingUnits)

	next := <-sub.C()
	assert.Equal(t, int64(3), next.Sequence)

	// REFRESH не увеличивает счётчик
	room, err := f.store.Rooms().GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), room.EventSeq)
}

func TestRefresh_DefaultRangeUsesHotelToday(t *testing.T) {
	// 2024-05-01 22:00 UTC = 2024-05-02 01:00 в UTC+3
	f := newFixture(t, time.FixedZone("UTC+3", 3*3600))

	resp, err := f.uc.Execute(context.Background(), &Request{RoomID: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, day("2024-05-02"), resp.CheckIn)
	assert.Equal(t, day("2024-05-03"), resp.CheckOut)
}

func TestRefresh_InactiveRoomHasNoUnits(t *testing.T) {
	f := newFixture(t, nil)
	f.store.AddRoom(domain.Room{ID: 2, HotelID: 10, TotalUnits: 5, Capacity: 2, Active: false})

	resp, err := f.uc.Execute(context.Background(), &Request{RoomID: 2, CheckIn: day("2024-06-01"), CheckOut: day("2024-06-02")}, nil)
	require.NoError(t, err)
	assert.False(t, resp.Active)
	assert.Equal(t, 0, resp.RemainingUnits)
}

func TestRefresh_Errors(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.uc.Execute(context.Background(), &Request{RoomID: 404}, nil)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = f.uc.Execute(context.Background(), &Request{RoomID: 404, CheckIn: day("2024-06-01"), CheckOut: day("2024-06-02")}, nil)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = f.uc.Execute(context.Background(), &Request{RoomID: 1, CheckIn: day("2024-06-02"), CheckOut: day("2024-06-01")}, nil)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = f.uc.Execute(context.Background(), &Request{RoomID: 1, CheckIn: day("2024-06-02")}, nil)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = f.uc.Execute(context.Background(), &Request{RoomID: 0}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRefresh_PlainReadDoesNotTakeRoomLock(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, "2024-06-01", "2024-06-03", 2, domain.StatusConfirmed)

	// бронь в процессе держит блокировку комнаты
	release, err := f.table.Acquire(context.Background(), 1)
	require.NoError(t, err)
	defer release()

	start := time.Now()
	resp, err := f.uc.Execute(context.Background(), &Request{RoomID: 1, CheckIn: day("2024-06-01"), CheckOut: day("2024-06-02")}, nil)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 200*time.Millisecond)
	assert.Equal(t, 1, resp.RemainingUnits)
	assert.Equal(t, 1, f.table.Len())
}

func TestRefresh_DeliveryWaitsForRoomLock(t *testing.T) {
	f := newFixture(t, nil)

	release, err := f.table.Acquire(context.Background(), 1)
	require.NoError(t, err)
	defer release()

	delivered := false
	_, err = f.uc.Execute(context.Background(), &Request{RoomID: 1, CheckIn: day("2024-06-01"), CheckOut: day("2024-06-02")},
		func(domain.Event) { delivered = true })
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.False(t, delivered)
}
