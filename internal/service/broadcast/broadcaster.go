package broadcast

import (
	"sync"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
)

// DefaultQueueSize размер очереди подписчика по умолчанию
const DefaultQueueSize = 64

// OverflowPolicy поведение при переполнении очереди подписчика
type OverflowPolicy string

const (
	// OverflowDisconnect закрывает подписку; клиент переподключается и запрашивает REFRESH
	OverflowDisconnect OverflowPolicy = "disconnect"
	// OverflowDropOldest выбрасывает самое старое событие из очереди
	OverflowDropOldest OverflowPolicy = "drop_oldest"
)

// ParseOverflowPolicy конвертирует строку конфигурации в политику
func ParseOverflowPolicy(s string) (OverflowPolicy, bool) {
	switch OverflowPolicy(s) {
	case OverflowDisconnect, OverflowDropOldest:
		return OverflowPolicy(s), true
	case "":
		return OverflowDisconnect, true
	default:
		return "", false
	}
}

// Metrics интерфейс метрик брокера
type Metrics interface {
	IncBroadcastEvent(eventType string)
	IncBroadcastDropped(reason string)
	SetSubscribers(n int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Broadcaster рассылает события инвентаря подписчикам топиков
// Publish никогда не блокируется на медленном подписчике
type Broadcaster struct {
	mu     sync.RWMutex
	topics map[string]map[string]*Subscription
	count  int
	closed bool

	queueSize int
	policy    OverflowPolicy
	metrics   Metrics
	logger    Logger
}

// New создает брокер
func New(queueSize int, policy OverflowPolicy, metrics Metrics, logger Logger) *Broadcaster {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if policy == "" {
		policy = OverflowDisconnect
	}
	return &Broadcaster{
		topics:    make(map[string]map[string]*Subscription),
		queueSize: queueSize,
		policy:    policy,
		metrics:   metrics,
		logger:    logger,
	}
}

// Subscribe создает подписку на топик
func (b *Broadcaster) Subscribe(topic string) (*Subscription, error) {
	if topic == "" {
		return nil, ErrInvalidTopic
	}

	sub := newSubscription(uuid.NewString(), topic, b.queueSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[string]*Subscription)
		b.topics[topic] = subs
	}
	subs[sub.ID] = sub
	b.count++
	count := b.count
	b.mu.Unlock()

	b.setSubscribers(count)
	b.logger.Info("Subscribe: id=%s topic=%s", sub.ID, topic)
	return sub, nil
}

// Unsubscribe удаляет подписку и закрывает её канал; повторный вызов ничего не делает
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.detach(sub)
	sub.close(nil)
}

// Publish рассылает событие в топики комнаты, отеля и общий
func (b *Broadcaster) Publish(ev domain.Event) {
	if b.metrics != nil {
		b.metrics.IncBroadcastEvent(string(ev.Type))
	}

	var overflowed []*Subscription

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	for _, topic := range []string{RoomTopic(ev.RoomID), HotelTopic(ev.HotelID), TopicAll} {
		for _, sub := range b.topics[topic] {
			_, overflow := sub.offer(ev, b.policy)
			if overflow {
				overflowed = append(overflowed, sub)
			}
		}
	}
	b.mu.RUnlock()

	b.handleOverflow(overflowed)
}

// Deliver отправляет событие одному подписчику (REFRESH при подключении)
func (b *Broadcaster) Deliver(sub *Subscription, ev domain.Event) bool {
	delivered, overflow := sub.offer(ev, b.policy)
	if overflow {
		b.handleOverflow([]*Subscription{sub})
	}
	return delivered
}

// Subscribers возвращает количество живых подписок
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Close закрывает все подписки
func (b *Broadcaster) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	topics := b.topics
	b.topics = make(map[string]map[string]*Subscription)
	b.count = 0
	b.mu.Unlock()

	for _, subs := range topics {
		for _, sub := range subs {
			sub.close(ErrClosed)
		}
	}
	b.setSubscribers(0)
}

func (b *Broadcaster) handleOverflow(subs []*Subscription) {
	for _, sub := range subs {
		if b.policy == OverflowDropOldest {
			if b.metrics != nil {
				b.metrics.IncBroadcastDropped("drop_oldest")
			}
			continue
		}
		b.detach(sub)
		if b.metrics != nil {
			b.metrics.IncBroadcastDropped("disconnect")
		}
		b.logger.Warn("Publish: subscriber id=%s topic=%s disconnected, queue overflow", sub.ID, sub.Topic)
	}
}

func (b *Broadcaster) detach(sub *Subscription) {
	b.mu.Lock()
	subs, ok := b.topics[sub.Topic]
	if !ok {
		b.mu.Unlock()
		return
	}
	if _, ok := subs[sub.ID]; !ok {
		b.mu.Unlock()
		return
	}
	delete(subs, sub.ID)
	if len(subs) == 0 {
		delete(b.topics, sub.Topic)
	}
	b.count--
	count := b.count
	b.mu.Unlock()

	b.setSubscribers(count)
}

func (b *Broadcaster) setSubscribers(n int) {
	if b.metrics != nil {
		b.metrics.SetSubscribers(n)
	}
}
