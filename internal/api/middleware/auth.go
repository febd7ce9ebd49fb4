package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-RoomInventory/internal/api/handlers"
	"github.com/m04kA/SMC-RoomInventory/internal/domain"
)

// Заголовки, которые проставляет API gateway после аутентификации
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

const msgMissingUserID = "отсутствует ID пользователя"

type contextKey int

const (
	userIDKey contextKey = iota
	actorKey
	identityKey
)

// staffRoles роли персонала отеля: могут работать с чужими бронированиями
var staffRoles = map[string]struct{}{
	"admin":   {},
	"manager": {},
	"staff":   {},
}

// Identity определяет инициатора запроса
// Идентичность для лимитера: user:<id> для аутентифицированных, иначе ip:<адрес>
// из первого значения X-Forwarded-For или адреса соединения
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var actor domain.Actor
		if userID, ok := parseUserID(r.Header.Get(HeaderUserID)); ok {
			actor.UserID = userID
			ctx = context.WithValue(ctx, userIDKey, userID)
		}
		_, actor.Override = staffRoles[strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole)))]
		ctx = context.WithValue(ctx, actorKey, actor)

		identity := "ip:" + ClientIP(r)
		if actor.UserID > 0 {
			identity = "user:" + strconv.FormatInt(actor.UserID, 10)
		}
		ctx = context.WithValue(ctx, identityKey, identity)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Auth пропускает только запросы с X-User-ID
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserID(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		if userID, ok := parseUserID(r.Header.Get(HeaderUserID)); ok {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
			return
		}
		handlers.RespondUnauthorized(w, msgMissingUserID)
	})
}

// GetUserID возвращает ID пользователя из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// GetActor возвращает инициатора запроса
func GetActor(ctx context.Context) domain.Actor {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	if !ok {
		userID, _ := GetUserID(ctx)
		return domain.Actor{UserID: userID}
	}
	return actor
}

// GetIdentity возвращает ключ идентичности для лимитера
func GetIdentity(ctx context.Context) string {
	if identity, ok := ctx.Value(identityKey).(string); ok {
		return identity
	}
	return "ip:unknown"
}

// ClientIP первый адрес из X-Forwarded-For, иначе адрес соединения
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func parseUserID(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}
