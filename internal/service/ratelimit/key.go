package ratelimit

// Действия, для которых настраиваются лимиты
const (
	ActionReserve   = "reserve"
	ActionCancel    = "cancel"
	ActionStatus    = "status"
	// подписка на поток комнаты берёт блокировку комнаты ради REFRESH
	ActionSubscribe = "subscribe"
)

// Key строит ключ бакета вида prefix:identity
// identity - "user:<id>" для аутентифицированного запроса, иначе "ip:<address>"
func Key(prefix, identity string) string {
	return prefix + ":" + identity
}
