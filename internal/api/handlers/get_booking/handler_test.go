package get_booking

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

type fakeService struct {
	actor domain.Actor
	err   error
}

func (f *fakeService) GetByID(_ context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
	f.actor = actor
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingResponse{ID: id, Status: "confirmed"}, nil
}

func serve(svc BookingService, path, role string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Use(middleware.Identity)
	r.HandleFunc("/api/v1/bookings/{bookingId}", NewHandler(svc, nopLogger{}).Handle).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(middleware.HeaderUserID, "7")
	if role != "" {
		req.Header.Set(middleware.HeaderUserRole, role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandle_GetBooking(t *testing.T) {
	svc := &fakeService{}
	w := serve(svc, "/api/v1/bookings/15", "manager")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, int64(7), svc.actor.UserID)
	assert.True(t, svc.actor.Override)

	var resp models.BookingResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, int64(15), resp.ID)
}

func TestHandle_Errors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, serve(&fakeService{}, "/api/v1/bookings/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(&fakeService{}, "/api/v1/bookings/0", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(&fakeService{err: bookings.ErrBookingNotFound}, "/api/v1/bookings/1", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(&fakeService{err: bookings.ErrAccessDenied}, "/api/v1/bookings/1", "").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(&fakeService{err: bookings.ErrInternal}, "/api/v1/bookings/1", "").Code)
}
