package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-RoomInventory/internal/service/ratelimit"
)

const (
	msgInternalError      = "внутренняя ошибка сервера"
	msgTooManyRequests    = "слишком много запросов, повторите позже"
	msgServiceUnavailable = "сервис перегружен, повторите позже"
)

// busyRetryAfter подсказка клиенту при перегрузке пула или таймауте блокировки
const busyRetryAfter = time.Second

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// DecodeJSON декодирует тело запроса, отклоняя неизвестные поля
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// RespondError отправляет ответ с ошибкой
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Code: status, Message: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondConflict(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusConflict, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// RespondTooManyRequests 429 с заголовком Retry-After в целых секундах
func RespondTooManyRequests(w http.ResponseWriter, retryAfter time.Duration, message string) {
	w.Header().Set("Retry-After", RetryAfterSeconds(retryAfter))
	RespondError(w, http.StatusTooManyRequests, message)
}

// RespondServiceUnavailable 503 с заголовком Retry-After; клиент может повторить запрос
func RespondServiceUnavailable(w http.ResponseWriter, retryAfter time.Duration, message string) {
	w.Header().Set("Retry-After", RetryAfterSeconds(retryAfter))
	RespondError(w, http.StatusServiceUnavailable, message)
}

// RespondRateLimited отвечает на отказ лимитера, беря подсказку из *ratelimit.RateLimitError
func RespondRateLimited(w http.ResponseWriter, err error) {
	retryAfter := ratelimit.DefaultRetryAfter
	var rlErr *ratelimit.RateLimitError
	if errors.As(err, &rlErr) && rlErr.RetryAfter > 0 {
		retryAfter = rlErr.RetryAfter
	}
	RespondTooManyRequests(w, retryAfter, msgTooManyRequests)
}

// RespondBusy отвечает на перегрузку пула обработчиков или таймаут блокировки комнаты
func RespondBusy(w http.ResponseWriter, message string) {
	if message == "" {
		message = msgServiceUnavailable
	}
	RespondServiceUnavailable(w, busyRetryAfter, message)
}

// RetryAfterSeconds округляет длительность вверх до целых секунд, минимум 1
func RetryAfterSeconds(d time.Duration) string {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
