package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
)

func TestIdentity(t *testing.T) {
	tests := []struct {
		name         string
		headers      map[string]string
		remoteAddr   string
		wantIdentity string
		wantActor    domain.Actor
	}{
		{
			name:         "authenticated user",
			headers:      map[string]string{HeaderUserID: "42", "X-Forwarded-For": "9.9.9.9"},
			remoteAddr:   "10.0.0.1:5555",
			wantIdentity: "user:42",
			wantActor:    domain.Actor{UserID: 42},
		},
		{
			name:         "first forwarded address",
			headers:      map[string]string{"X-Forwarded-For": " 1.2.3.4 , 10.0.0.2"},
			remoteAddr:   "10.0.0.1:5555",
			wantIdentity: "ip:1.2.3.4",
		},
		{
			name:         "peer address",
			remoteAddr:   "10.0.0.1:5555",
			wantIdentity: "ip:10.0.0.1",
		},
		{
			name:         "invalid user id falls back to ip",
			headers:      map[string]string{HeaderUserID: "abc"},
			remoteAddr:   "10.0.0.1:5555",
			wantIdentity: "ip:10.0.0.1",
		},
		{
			name:         "staff role",
			headers:      map[string]string{HeaderUserID: "7", HeaderUserRole: "Manager"},
			remoteAddr:   "10.0.0.1:5555",
			wantIdentity: "user:7",
			wantActor:    domain.Actor{UserID: 7, Override: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				identity string
				actor    domain.Actor
			)
			h := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				identity = GetIdentity(r.Context())
				actor = GetActor(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.wantIdentity, identity)
			assert.Equal(t, tt.wantActor, actor)
		})
	}
}

func TestAuth(t *testing.T) {
	h := Identity(Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		require.True(t, ok)
		assert.Equal(t, int64(5), userID)
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUserID, "5")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type fakeHTTPMetrics struct {
	mu    sync.Mutex
	calls []string
}

func (m *fakeHTTPMetrics) ObserveHTTPRequest(method, route, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, method+" "+route+" "+status)
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := &fakeHTTPMetrics{}
	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.HandleFunc("/bookings/{bookingId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bookings/17", nil))

	require.Len(t, m.calls, 1)
	assert.Equal(t, "GET /bookings/{bookingId} 404", m.calls[0])
}

func TestRequestID(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(HeaderRequestID))
}
