package broadcast

import (
	"sync"

	"github.com/m04kA/SMC-RoomInventory/internal/domain"
)

// Subscription подписка на топик с ограниченной очередью
// Канал C закрывается при отписке, переполнении или остановке брокера; причина в Err
type Subscription struct {
	ID    string
	Topic string

	mu     sync.Mutex
	ch     chan domain.Event
	closed bool
	err    error
}

func newSubscription(id, topic string, queueSize int) *Subscription {
	return &Subscription{
		ID:    id,
		Topic: topic,
		ch:    make(chan domain.Event, queueSize),
	}
}

// C возвращает канал событий
func (s *Subscription) C() <-chan domain.Event {
	return s.ch
}

// Err возвращает причину закрытия: nil для обычной отписки
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// offer кладёт событие в очередь, не блокируясь
// overflow сообщает, что очередь была полна и сработала политика переполнения
func (s *Subscription) offer(ev domain.Event, policy OverflowPolicy) (delivered, overflow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, false
	}

	select {
	case s.ch <- ev:
		return true, false
	default:
	}

	if policy != OverflowDropOldest {
		s.closeLocked(ErrSubscriberOverflow)
		return false, true
	}

	// отправляет только владелец s.mu, поэтому после чтения одного события место есть
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- ev:
		return true, true
	default:
		return false, true
	}
}

func (s *Subscription) close(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked(err)
}

func (s *Subscription) closeLocked(err error) bool {
	if s.closed {
		return false
	}
	s.closed = true
	s.err = err
	close(s.ch)
	return true
}
