package hotelservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestClient_GetHotelSettings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/internal/hotels/1/settings":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":1,"timezone":"Europe/Moscow","cancellationPolicy":"STRICT"}`))
		case "/internal/hotels/2/settings":
			w.WriteHeader(http.StatusNotFound)
		case "/internal/hotels/3/settings":
			_, _ = w.Write([]byte(`{not json`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nopLogger{})
	ctx := context.Background()

	settings, err := c.GetHotelSettings(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), settings.ID)
	assert.Equal(t, "Europe/Moscow", settings.Timezone)
	require.NotNil(t, settings.CancellationPolicy)
	assert.Equal(t, "STRICT", *settings.CancellationPolicy)

	_, err = c.GetHotelSettings(ctx, 2)
	assert.ErrorIs(t, err, ErrHotelNotFound)

	_, err = c.GetHotelSettings(ctx, 3)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = c.GetHotelSettings(ctx, 4)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestClient_GracefulDegradation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/internal/hotels/2/settings" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	c := NewClient(srv.URL, time.Second, nopLogger{})

	_, err := c.GetHotelSettingsWithGracefulDegradation(context.Background(), 2)
	assert.ErrorIs(t, err, ErrHotelNotFound)
	assert.NotErrorIs(t, err, ErrServiceDegraded)

	_, err = c.GetHotelSettingsWithGracefulDegradation(context.Background(), 1)
	assert.ErrorIs(t, err, ErrServiceDegraded)

	// сервис недоступен совсем
	srv.Close()
	_, err = c.GetHotelSettingsWithGracefulDegradation(context.Background(), 1)
	assert.ErrorIs(t, err, ErrServiceDegraded)
}
