package get_availability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	refreshAvailability "github.com/m04kA/SMC-RoomInventory/internal/usecase/refresh_availability"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeUseCase struct {
	req *refreshAvailability.Request
	err error
}

func (f *fakeUseCase) Execute(_ context.Context, req *refreshAvailability.Request, _ refreshAvailability.DeliverFunc) (*refreshAvailability.Response, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &refreshAvailability.Response{
		RoomID:         req.RoomID,
		HotelID:        3,
		CheckIn:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:       time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		TotalUnits:     4,
		RemainingUnits: 1,
		Sequence:       9,
		Active:         true,
	}, nil
}

func serve(uc AvailabilityUseCase, path string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/rooms/{roomId}/availability", NewHandler(uc, nopLogger{}).Handle).Methods(http.MethodGet)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandle_Availability(t *testing.T) {
	uc := &fakeUseCase{}
	w := serve(uc, "/api/v1/rooms/5/availability?checkIn=2024-06-01&checkOut=2024-06-03")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), uc.req.RoomID)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), uc.req.CheckIn)

	var resp AvailabilityResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "2024-06-01", resp.CheckIn)
	assert.Equal(t, "2024-06-03", resp.CheckOut)
	assert.Equal(t, 1, resp.RemainingUnits)
	assert.Equal(t, int64(9), resp.Sequence)
}

func TestHandle_DefaultRange(t *testing.T) {
	uc := &fakeUseCase{}
	w := serve(uc, "/api/v1/rooms/5/availability")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, uc.req.CheckIn.IsZero())
	assert.True(t, uc.req.CheckOut.IsZero())
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		path   string
		status int
	}{
		{"bad room id", nil, "/api/v1/rooms/abc/availability", http.StatusBadRequest},
		{"bad date", nil, "/api/v1/rooms/1/availability?checkIn=01.06.2024", http.StatusBadRequest},
		{"not found", refreshAvailability.ErrRoomNotFound, "/api/v1/rooms/1/availability", http.StatusNotFound},
		{"bad range", refreshAvailability.ErrInvalidDateRange, "/api/v1/rooms/1/availability", http.StatusBadRequest},
		{"lock timeout", refreshAvailability.ErrLockTimeout, "/api/v1/rooms/1/availability", http.StatusServiceUnavailable},
		{"internal", refreshAvailability.ErrInternal, "/api/v1/rooms/1/availability", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(&fakeUseCase{err: tt.err}, tt.path)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
