package get_room_bookings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RoomInventory/internal/api/middleware"
	"github.com/m04kA/SMC-RoomInventory/internal/domain"
	"github.com/m04kA/SMC-RoomInventory/internal/service/bookings"
	"github.com/m04kA/SMC-RoomInventory/internal/service/bookings/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// fakeService пускает только персонал, как настоящий сервис
type fakeService struct {
	err error
}

func (f *fakeService) GetRoomBookings(_ context.Context, roomID int64, actor domain.Actor) (*models.BookingListResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !actor.Override {
		return nil, bookings.ErrAccessDenied
	}
	return &models.BookingListResponse{Bookings: []models.BookingResponse{{ID: 1, RoomID: roomID}, {ID: 2, RoomID: roomID}}}, nil
}

func serve(svc BookingService, path, role string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Use(middleware.Identity)
	r.HandleFunc("/api/v1/rooms/{roomId}/bookings", NewHandler(svc, nopLogger{}).Handle).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(middleware.HeaderUserID, "3")
	if role != "" {
		req.Header.Set(middleware.HeaderUserRole, role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandle_StaffListsBookings(t *testing.T) {
	w := serve(&fakeService{}, "/api/v1/rooms/4/bookings", "staff")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.BookingListResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Bookings, 2)
	assert.Equal(t, int64(4), resp.Bookings[0].RoomID)
}

func TestHandle_Errors(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, serve(&fakeService{}, "/api/v1/rooms/4/bookings", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(&fakeService{}, "/api/v1/rooms/x/bookings", "staff").Code)
	assert.Equal(t, http.StatusNotFound, serve(&fakeService{err: bookings.ErrRoomNotFound}, "/api/v1/rooms/4/bookings", "staff").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(&fakeService{err: bookings.ErrInternal}, "/api/v1/rooms/4/bookings", "staff").Code)
}
